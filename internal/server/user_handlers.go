package server

import (
	"quayside/internal/models"
	"quayside/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userService.GetUserByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		DisplayName string `json:"display_name"`
		Bio         string `json:"bio"`
		Avatar      string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:      userID,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Avatar:      req.Avatar,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:id. Returns the public header only;
// a blocked relationship hides the user entirely.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	requesterID := c.Locals("userID").(uint)
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	blocks, err := s.relations.GetBlocks(c.Context(), requesterID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if blocks[targetID] {
		return models.RespondWithAppError(c, models.NewNotFoundError("User", targetID))
	}

	header, err := s.relations.GetUser(c.Context(), targetID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if header == nil {
		return models.RespondWithAppError(c, models.NewNotFoundError("User", targetID))
	}
	return c.JSON(header)
}

// GetAllUsers handles GET /api/users
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	users, err := s.userService.ListUsers(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// SetAccessLevel handles POST /api/users/:id/accesslevel
func (s *Server) SetAccessLevel(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Level int `json:"level"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.SetAccessLevel(c.Context(), targetID, models.AccessLevel(req.Level))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// BlockUser handles POST /api/users/:id/block
func (s *Server) BlockUser(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.relations.Block(c.Context(), userID, targetID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User blocked"})
}

// UnblockUser handles POST /api/users/:id/unblock
func (s *Server) UnblockUser(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.relations.Unblock(c.Context(), userID, targetID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User unblocked"})
}

// MuteUser handles POST /api/users/:id/mute
func (s *Server) MuteUser(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.relations.Mute(c.Context(), userID, targetID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User muted"})
}

// UnmuteUser handles POST /api/users/:id/unmute
func (s *Server) UnmuteUser(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.relations.Unmute(c.Context(), userID, targetID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User unmuted"})
}
