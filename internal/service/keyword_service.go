package service

import (
	"context"

	"quayside/internal/models"
	"quayside/internal/repository"
)

// keywordAttrKey is the attribute-map key keyword barrels store their words
// under. Keyword barrels have no members; the word list is the payload.
const keywordAttrKey = "keywords"

// KeywordService manages a user's alert and mute keyword lists, each stored
// as a singleton barrel of the corresponding type.
type KeywordService struct {
	barrelRepo repository.BarrelRepository
}

// NewKeywordService creates a new keyword service
func NewKeywordService(barrelRepo repository.BarrelRepository) *KeywordService {
	return &KeywordService{barrelRepo: barrelRepo}
}

func keywordBarrelName(barrelType models.BarrelType) string {
	if barrelType == models.BarrelTypeMuteKeywords {
		return "Muted Keywords"
	}
	return "Alert Keywords"
}

// List returns the user's keywords of the given type, in insertion order.
func (s *KeywordService) List(ctx context.Context, userID uint, barrelType models.BarrelType) ([]string, error) {
	barrel, err := s.barrelRepo.GetOwnerBarrel(ctx, userID, barrelType)
	if err != nil {
		return nil, err
	}
	if barrel == nil {
		return []string{}, nil
	}
	words := barrel.AttributeList(keywordAttrKey)
	if words == nil {
		return []string{}, nil
	}
	return append([]string{}, words...), nil
}

// Add appends a keyword and returns the updated list. Adding an existing
// keyword is a no-op.
func (s *KeywordService) Add(ctx context.Context, userID uint, barrelType models.BarrelType, word string) ([]string, error) {
	barrel, err := s.barrelRepo.GetOwnerBarrel(ctx, userID, barrelType)
	if err != nil {
		return nil, err
	}
	if barrel == nil {
		barrel = &models.Barrel{
			OwnerID:   userID,
			Type:      barrelType,
			Name:      keywordBarrelName(barrelType),
			MemberIDs: models.UintList{},
		}
		if err := s.barrelRepo.Create(ctx, barrel); err != nil {
			return nil, err
		}
	}
	if barrel.AddAttributeListValue(keywordAttrKey, word) {
		if err := s.barrelRepo.Save(ctx, barrel); err != nil {
			return nil, err
		}
	}
	return append([]string{}, barrel.AttributeList(keywordAttrKey)...), nil
}

// Remove deletes a keyword and returns the updated list. Removing an absent
// keyword is a no-op.
func (s *KeywordService) Remove(ctx context.Context, userID uint, barrelType models.BarrelType, word string) ([]string, error) {
	barrel, err := s.barrelRepo.GetOwnerBarrel(ctx, userID, barrelType)
	if err != nil {
		return nil, err
	}
	if barrel == nil {
		return []string{}, nil
	}
	if barrel.RemoveAttributeListValue(keywordAttrKey, word) {
		if err := s.barrelRepo.Save(ctx, barrel); err != nil {
			return nil, err
		}
	}
	words := barrel.AttributeList(keywordAttrKey)
	if words == nil {
		return []string{}, nil
	}
	return append([]string{}, words...), nil
}
