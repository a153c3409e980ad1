package server

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tagmaker/internal/db"
	"tagmaker/internal/handlers"
	"tagmaker/internal/handlers/api"
	"tagmaker/internal/middleware"
	"tagmaker/internal/tagging"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, database *db.DB, processor *tagging.Processor) error {
	authMiddleware := middleware.NewAuthMiddleware(s.Cfg)
	requireAdmin := authMiddleware.RequireAdmin

	excluded := processor.ExcludedSubstrings()
	adminHandler := handlers.NewAdminHandler(database, processor, processor.Settings(), excluded)
	ruleAPI := api.NewRuleHandler(database, excluded)
	articleAPI := api.NewArticleHandler(processor, database)

	if s.Cfg.OIDCIssuer != "" {
		authHandler, err := handlers.NewAuthHandler(ctx, s.Cfg)
		if err != nil {
			return err
		}
		s.App.Get("/auth/login", authHandler.Login)
		s.App.Get("/auth/callback", authHandler.Callback)
		s.App.Get("/auth/logout", authHandler.Logout)
	} else {
		slog.Info("OIDC login disabled, set OIDC_ISSUER to enable the admin login")
	}

	s.App.Get("/healthz", func(c fiber.Ctx) error {
		if err := database.Pool.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).SendString("database unavailable")
		}
		return c.SendString("ok")
	})
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	s.App.Get("/", func(c fiber.Ctx) error {
		return c.Redirect().To("/admin")
	})

	// Admin page
	admin := s.App.Group("/admin", requireAdmin)
	admin.Get("/", adminHandler.Index)
	admin.Get("/preview", adminHandler.Preview)
	admin.Post("/blocked", adminHandler.AddBlocked)
	admin.Post("/blocked/import", adminHandler.ImportBlocked)
	admin.Post("/blocked/clear", adminHandler.ClearBlocked)
	admin.Delete("/blocked/:id", adminHandler.DeleteBlocked)
	admin.Post("/substitutions", adminHandler.AddSubstitution)
	admin.Post("/substitutions/import", adminHandler.ImportSubstitutions)
	admin.Post("/substitutions/clear", adminHandler.ClearSubstitutions)
	admin.Put("/substitutions/:id", adminHandler.UpdateSubstitution)
	admin.Delete("/substitutions/:id", adminHandler.DeleteSubstitution)

	// JSON API
	apiGroup := s.App.Group("/api", requireAdmin)
	apiGroup.Get("/rules", ruleAPI.List)
	apiGroup.Post("/rules/blocked", ruleAPI.AddBlocked)
	apiGroup.Post("/rules/blocked/import", ruleAPI.ImportBlocked)
	apiGroup.Delete("/rules/blocked", ruleAPI.ClearBlocked)
	apiGroup.Delete("/rules/blocked/:id", ruleAPI.DeleteBlocked)
	apiGroup.Post("/rules/substitutions", ruleAPI.AddSubstitution)
	apiGroup.Post("/rules/substitutions/import", ruleAPI.ImportSubstitutions)
	apiGroup.Delete("/rules/substitutions", ruleAPI.ClearSubstitutions)
	apiGroup.Put("/rules/substitutions/:id", ruleAPI.UpdateSubstitution)
	apiGroup.Delete("/rules/substitutions/:id", ruleAPI.DeleteSubstitution)

	// CMS hooks and per-article tools
	apiGroup.Post("/articles/:id/saved", articleAPI.Saved)
	apiGroup.Post("/articles/:id/transition", articleAPI.Transition)
	apiGroup.Get("/articles/:id/keywords/preview", articleAPI.Preview)
	apiGroup.Post("/articles/:id/keywords/process", articleAPI.Process)
	apiGroup.Get("/articles/:id/tags", articleAPI.Tags)

	return nil
}
