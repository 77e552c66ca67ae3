package server

import (
	"io"

	"quayside/internal/models"
	"quayside/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFezTypes handles GET /api/fez/types
func (s *Server) GetFezTypes(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"types": s.fezService.FezTypes()})
}

// CreateFez handles POST /api/fez/create
func (s *Server) CreateFez(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var input service.CreateFezInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	view, err := s.fezService.CreateFez(c.Context(), userID, input)
	return respondView(c, view, err, fiber.StatusCreated)
}

// GetFez handles GET /api/fez/:id
func (s *Server) GetFez(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	fezID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	view, err := s.fezService.GetFez(c.Context(), fezID, userID)
	return respondView(c, view, err, fiber.StatusOK)
}

// GetOpenFezzes handles GET /api/fez/open
func (s *Server) GetOpenFezzes(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	views, err := s.fezService.OpenFezzes(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"fezzes": views})
}

// GetJoinedFezzes handles GET /api/fez/joined
func (s *Server) GetJoinedFezzes(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	views, err := s.fezService.JoinedFezzes(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"fezzes": views})
}

// GetOwnedFezzes handles GET /api/fez/owner
func (s *Server) GetOwnedFezzes(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	views, err := s.fezService.OwnedFezzes(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"fezzes": views})
}

// JoinFez handles POST /api/fez/:id/join
func (s *Server) JoinFez(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	fezID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	view, err := s.fezService.Join(c.Context(), fezID, userID)
	return respondView(c, view, err, fiber.StatusCreated)
}

// UnjoinFez handles POST /api/fez/:id/unjoin
func (s *Server) UnjoinFez(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	fezID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	view, err := s.fezService.Unjoin(c.Context(), fezID, userID)
	return respondView(c, view, err, fiber.StatusOK)
}

// OwnerAddUser handles POST /api/fez/:id/user/:userId/add
func (s *Server) OwnerAddUser(c *fiber.Ctx) error {
	ownerID := c.Locals("userID").(uint)
	fezID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	view, err := s.fezService.OwnerAdd(c.Context(), fezID, ownerID, targetID)
	return respondView(c, view, err, fiber.StatusOK)
}

// OwnerRemoveUser handles POST /api/fez/:id/user/:userId/remove
func (s *Server) OwnerRemoveUser(c *fiber.Ctx) error {
	ownerID := c.Locals("userID").(uint)
	fezID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	view, err := s.fezService.OwnerRemove(c.Context(), fezID, ownerID, targetID)
	return respondView(c, view, err, fiber.StatusOK)
}

// UpdateFez handles POST /api/fez/:id/update
func (s *Server) UpdateFez(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	fezID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var input service.UpdateFezInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	view, err := s.fezService.UpdateFez(c.Context(), fezID, userID, input)
	return respondView(c, view, err, fiber.StatusOK)
}

// CancelFez handles POST /api/fez/:id/cancel
func (s *Server) CancelFez(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	fezID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	view, err := s.fezService.CancelFez(c.Context(), fezID, userID)
	return respondView(c, view, err, fiber.StatusOK)
}

// CreateFezPost handles POST /api/fez/:id/post. Accepts JSON, or multipart
// form data with an optional "image" file part.
func (s *Server) CreateFezPost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	fezID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var input service.FezPostInput
	if form, formErr := c.MultipartForm(); formErr == nil && form != nil {
		if texts := form.Value["text"]; len(texts) > 0 {
			input.Text = texts[0]
		}
		if files := form.File["image"]; len(files) > 0 {
			f, openErr := files[0].Open()
			if openErr != nil {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewValidationError("Could not read uploaded image"))
			}
			content, readErr := io.ReadAll(f)
			_ = f.Close()
			if readErr != nil {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewValidationError("Could not read uploaded image"))
			}
			hash, storeErr := s.imageService.Store(userID, content)
			if storeErr != nil {
				return models.RespondWithAppError(c, storeErr)
			}
			input.ImageRef = hash
		}
	} else if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	view, err := s.fezService.AddPost(c.Context(), fezID, userID, input)
	return respondView(c, view, err, fiber.StatusCreated)
}

// DeleteFezPost handles POST /api/fez/post/:postId/delete
func (s *Server) DeleteFezPost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	view, err := s.fezService.DeletePost(c.Context(), postID, userID)
	return respondView(c, view, err, fiber.StatusOK)
}

// FavoriteFez handles POST /api/fez/:id/favorite
func (s *Server) FavoriteFez(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	fezID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.fezService.Bookmark(c.Context(), fezID, userID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Fez bookmarked"})
}

// UnfavoriteFez handles POST /api/fez/:id/unfavorite
func (s *Server) UnfavoriteFez(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	fezID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.fezService.Unbookmark(c.Context(), fezID, userID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Fez bookmark removed"})
}
