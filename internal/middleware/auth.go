package middleware

import (
	"crypto/subtle"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"tagmaker/internal/config"
)

// Locals keys set by RequireAdmin.
const (
	LocalAdmin = "admin"
)

// AuthMiddleware guards the admin and API routes.
type AuthMiddleware struct {
	cfg  *config.Config
	open bool
}

// NewAuthMiddleware creates a new auth middleware instance. With neither
// OIDC nor an API token configured every request is let through.
func NewAuthMiddleware(cfg *config.Config) *AuthMiddleware {
	open := cfg.OIDCIssuer == "" && cfg.APIToken == ""
	if open {
		slog.Warn("no OIDC_ISSUER or API_TOKEN configured, admin and API routes are unauthenticated")
	}
	return &AuthMiddleware{cfg: cfg, open: open}
}

// RequireAdmin accepts a matching bearer token or a logged-in admin session.
// API requests without either get a 401, browser requests are sent to login.
func (m *AuthMiddleware) RequireAdmin(c fiber.Ctx) error {
	if m.open {
		c.Locals(LocalAdmin, "anonymous")
		return c.Next()
	}

	if m.cfg.APIToken != "" {
		if token, ok := bearerToken(c.Get(fiber.HeaderAuthorization)); ok &&
			subtle.ConstantTimeCompare([]byte(token), []byte(m.cfg.APIToken)) == 1 {
			c.Locals(LocalAdmin, "api-token")
			return c.Next()
		}
	}

	sess := session.FromContext(c)
	if sess != nil {
		if sub, _ := sess.Get("user_sub").(string); sub != "" {
			email, _ := sess.Get("user_email").(string)
			if !m.cfg.IsAdminEmail(email) {
				return m.deny(c, fiber.StatusForbidden, "admin access required")
			}
			c.Locals(LocalAdmin, email)
			return c.Next()
		}
	}

	if isAPIRequest(c) || m.cfg.OIDCIssuer == "" {
		return m.deny(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if sess != nil {
		sess.Set("redirect_after_login", c.OriginalURL())
	}
	return c.Redirect().To("/auth/login")
}

func (m *AuthMiddleware) deny(c fiber.Ctx, status int, message string) error {
	if isAPIRequest(c) {
		return c.Status(status).JSON(fiber.Map{
			"status": "error",
			"error":  message,
		})
	}
	return fiber.NewError(status, message)
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

func isAPIRequest(c fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}
