package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/lumina-gallery/lumina/auth"
	handler "github.com/lumina-gallery/lumina/handlers"
	"github.com/lumina-gallery/lumina/middleware"
)

func SetupRoutes(app *fiber.App, h *handler.Handler, verifier *auth.Verifier) {
	app.Use(cors.New())

	api := app.Group("/api", logger.New())
	api.Get("/health", h.Health)

	// Everything below requires a valid bearer token.
	api.Use(middleware.AuthMiddleware(verifier))

	images := api.Group("/images")
	images.Post("/upload", h.UploadImage)
	images.Post("/upload/bulk", h.UploadImagesBulk)
	images.Get("/", h.GetImages)
	images.Get("/:id", h.GetImage)
	images.Delete("/:id", h.DeleteImage)
	images.Patch("/:id", h.UpdateImageMetadata)
	images.Get("/:id/similar", h.GetSimilarImages)

	api.Get("/tags/recent", h.GetRecentTags)
	api.Get("/colors/popular", h.GetPopularColors)
}
