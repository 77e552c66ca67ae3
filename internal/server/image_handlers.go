package server

import (
	"quayside/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetImage handles GET /api/images/:hash. The optional "variant" query
// selects "webp" or "thumb"; the default is the JPEG master.
func (s *Server) GetImage(c *fiber.Ctx) error {
	hash := c.Params("hash")
	variant := c.Query("variant")

	path, err := s.imageService.ResolveForServing(hash, variant)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	c.Set("Cache-Control", "public, max-age=31536000, immutable")
	return c.SendFile(path)
}
