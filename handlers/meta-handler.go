package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lumina-gallery/lumina/middleware"
)

const (
	recentTagsLimit    = 6
	popularColorsLimit = 8
)

func (h *Handler) GetRecentTags(c *fiber.Ctx) error {
	ownerID, err := middleware.OwnerID(c)
	if err != nil {
		return h.unauthorized(c)
	}

	tags, err := h.svc.RecentTags(c.Context(), ownerID, recentTagsLimit)
	if err != nil {
		return h.fail(c, err)
	}

	return ok(c, "Recent tags fetched", fiber.Map{
		"tags":  tags,
		"count": len(tags),
	})
}

func (h *Handler) GetPopularColors(c *fiber.Ctx) error {
	ownerID, err := middleware.OwnerID(c)
	if err != nil {
		return h.unauthorized(c)
	}

	colors, err := h.svc.PopularColors(c.Context(), ownerID, popularColorsLimit)
	if err != nil {
		return h.fail(c, err)
	}

	return ok(c, "Popular colors fetched", fiber.Map{
		"colors": colors,
		"count":  len(colors),
	})
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return ok(c, "healthy", fiber.Map{"service": "lumina"})
}
