// Package api serves the JSON endpoints: keyword rule management for admin
// scripts and the article hooks a CMS calls when posts are saved or published.
package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"tagmaker/internal/db"
	"tagmaker/internal/tagging"
)

// jsonSuccess returns a 200 response with data wrapped in the standard envelope.
func jsonSuccess(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonCreated is jsonSuccess for a newly stored rule.
func jsonCreated(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}

// taggingError maps tagging failures to API responses. A missing image or
// missing keywords is the article's state, not a server fault, so both are 422.
func taggingError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, db.ErrArticleNotFound):
		return jsonError(c, fiber.StatusNotFound, "article not found")
	case errors.Is(err, tagging.ErrNoImage):
		return jsonError(c, fiber.StatusUnprocessableEntity, "article has no image")
	case errors.Is(err, tagging.ErrNoKeywords):
		return jsonError(c, fiber.StatusUnprocessableEntity, "image has no IPTC keywords")
	}
	return jsonError(c, fiber.StatusInternalServerError, "failed to process article")
}
