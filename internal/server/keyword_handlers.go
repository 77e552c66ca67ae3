package server

import (
	"quayside/internal/models"
	"quayside/internal/validation"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) keywordList(c *fiber.Ctx, barrelType models.BarrelType) error {
	userID := c.Locals("userID").(uint)

	words, err := s.keywordService.List(c.Context(), userID, barrelType)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"keywords": words})
}

func (s *Server) keywordAdd(c *fiber.Ctx, barrelType models.BarrelType) error {
	userID := c.Locals("userID").(uint)

	word := c.Params("word")
	if err := validation.ValidateKeyword(word); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	words, err := s.keywordService.Add(c.Context(), userID, barrelType, word)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"keywords": words})
}

func (s *Server) keywordRemove(c *fiber.Ctx, barrelType models.BarrelType) error {
	userID := c.Locals("userID").(uint)

	word := c.Params("word")
	words, err := s.keywordService.Remove(c.Context(), userID, barrelType, word)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"keywords": words})
}

// GetAlertwords handles GET /api/user/alertwords
func (s *Server) GetAlertwords(c *fiber.Ctx) error {
	return s.keywordList(c, models.BarrelTypeAlertKeywords)
}

// AddAlertword handles POST /api/user/alertwords/add/:word
func (s *Server) AddAlertword(c *fiber.Ctx) error {
	return s.keywordAdd(c, models.BarrelTypeAlertKeywords)
}

// RemoveAlertword handles POST /api/user/alertwords/remove/:word
func (s *Server) RemoveAlertword(c *fiber.Ctx) error {
	return s.keywordRemove(c, models.BarrelTypeAlertKeywords)
}

// GetMutewords handles GET /api/user/mutewords
func (s *Server) GetMutewords(c *fiber.Ctx) error {
	return s.keywordList(c, models.BarrelTypeMuteKeywords)
}

// AddMuteword handles POST /api/user/mutewords/add/:word
func (s *Server) AddMuteword(c *fiber.Ctx) error {
	return s.keywordAdd(c, models.BarrelTypeMuteKeywords)
}

// RemoveMuteword handles POST /api/user/mutewords/remove/:word
func (s *Server) RemoveMuteword(c *fiber.Ctx) error {
	return s.keywordRemove(c, models.BarrelTypeMuteKeywords)
}
