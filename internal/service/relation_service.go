// Package service contains the application's business logic.
package service

import (
	"context"

	"quayside/internal/cache"
	"quayside/internal/models"
	"quayside/internal/repository"
)

// RelationService manages user block and mute relationships. Blocks and
// mutes are stored as barrels (one block-list and one mute-list barrel per
// user), fronted by a Redis read-through cache of the resolved ID sets.
type RelationService struct {
	barrelRepo repository.BarrelRepository
	userRepo   repository.UserRepository
}

// NewRelationService creates a new relation service
func NewRelationService(barrelRepo repository.BarrelRepository, userRepo repository.UserRepository) *RelationService {
	return &RelationService{
		barrelRepo: barrelRepo,
		userRepo:   userRepo,
	}
}

// GetBlocks returns the set of user IDs invisible to userID. Blocking is
// bidirectional: the set contains users userID has blocked and users who
// have blocked userID.
func (s *RelationService) GetBlocks(ctx context.Context, userID uint) (map[uint]bool, error) {
	var ids []uint
	err := cache.Aside(ctx, cache.BlocksKey(userID), &ids, cache.BlocksTTL, func() error {
		fetched, fetchErr := s.fetchBlockIDs(ctx, userID)
		if fetchErr != nil {
			return fetchErr
		}
		ids = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idSet(ids), nil
}

// GetMutes returns the set of user IDs userID has muted. Unlike blocks,
// muting is one-directional.
func (s *RelationService) GetMutes(ctx context.Context, userID uint) (map[uint]bool, error) {
	var ids []uint
	err := cache.Aside(ctx, cache.MutesKey(userID), &ids, cache.MutesTTL, func() error {
		barrel, fetchErr := s.barrelRepo.GetOwnerBarrel(ctx, userID, models.BarrelTypeMutes)
		if fetchErr != nil {
			return fetchErr
		}
		if barrel == nil {
			ids = []uint{}
			return nil
		}
		ids = append([]uint{}, barrel.MemberIDs...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idSet(ids), nil
}

// GetHeaders returns public header projections keyed by user ID.
func (s *RelationService) GetHeaders(ctx context.Context, ids []uint) (map[uint]models.UserHeader, error) {
	headers, err := s.userRepo.GetHeaders(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.UserHeader, len(headers))
	for _, h := range headers {
		byID[h.UserID] = h
	}
	return byID, nil
}

// GetUser returns the header for a single user, or nil if unknown.
func (s *RelationService) GetUser(ctx context.Context, userID uint) (*models.UserHeader, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	header := user.Header()
	return &header, nil
}

// Block adds targetID to userID's block list.
func (s *RelationService) Block(ctx context.Context, userID, targetID uint) error {
	if userID == targetID {
		return models.NewValidationError("You cannot block yourself")
	}
	if err := s.requireUser(ctx, targetID); err != nil {
		return err
	}
	barrel, err := s.ensureOwnerBarrel(ctx, userID, models.BarrelTypeBlocks, "Blocked Users")
	if err != nil {
		return err
	}
	if !barrel.AddMember(targetID) {
		return nil
	}
	if err := s.barrelRepo.Save(ctx, barrel); err != nil {
		return err
	}
	cache.InvalidateBlocks(ctx, userID)
	cache.InvalidateBlocks(ctx, targetID)
	return nil
}

// Unblock removes targetID from userID's block list.
func (s *RelationService) Unblock(ctx context.Context, userID, targetID uint) error {
	barrel, err := s.barrelRepo.GetOwnerBarrel(ctx, userID, models.BarrelTypeBlocks)
	if err != nil {
		return err
	}
	if barrel == nil || !barrel.RemoveMember(targetID) {
		return nil
	}
	if err := s.barrelRepo.Save(ctx, barrel); err != nil {
		return err
	}
	cache.InvalidateBlocks(ctx, userID)
	cache.InvalidateBlocks(ctx, targetID)
	return nil
}

// Mute adds targetID to userID's mute list.
func (s *RelationService) Mute(ctx context.Context, userID, targetID uint) error {
	if userID == targetID {
		return models.NewValidationError("You cannot mute yourself")
	}
	if err := s.requireUser(ctx, targetID); err != nil {
		return err
	}
	barrel, err := s.ensureOwnerBarrel(ctx, userID, models.BarrelTypeMutes, "Muted Users")
	if err != nil {
		return err
	}
	if !barrel.AddMember(targetID) {
		return nil
	}
	if err := s.barrelRepo.Save(ctx, barrel); err != nil {
		return err
	}
	cache.InvalidateMutes(ctx, userID)
	return nil
}

// Unmute removes targetID from userID's mute list.
func (s *RelationService) Unmute(ctx context.Context, userID, targetID uint) error {
	barrel, err := s.barrelRepo.GetOwnerBarrel(ctx, userID, models.BarrelTypeMutes)
	if err != nil {
		return err
	}
	if barrel == nil || !barrel.RemoveMember(targetID) {
		return nil
	}
	if err := s.barrelRepo.Save(ctx, barrel); err != nil {
		return err
	}
	cache.InvalidateMutes(ctx, userID)
	return nil
}

// fetchBlockIDs resolves the bidirectional block set from barrels: members
// of userID's own block-list barrel plus owners of block-list barrels that
// contain userID.
func (s *RelationService) fetchBlockIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}

	own, err := s.barrelRepo.GetOwnerBarrel(ctx, userID, models.BarrelTypeBlocks)
	if err != nil {
		return nil, err
	}
	if own != nil {
		ids = append(ids, own.MemberIDs...)
	}

	all, err := s.barrelRepo.ListByType(ctx, models.BarrelTypeBlocks)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].OwnerID != userID && all[i].HasMember(userID) {
			ids = append(ids, all[i].OwnerID)
		}
	}

	return ids, nil
}

func (s *RelationService) ensureOwnerBarrel(ctx context.Context, ownerID uint, barrelType models.BarrelType, name string) (*models.Barrel, error) {
	barrel, err := s.barrelRepo.GetOwnerBarrel(ctx, ownerID, barrelType)
	if err != nil {
		return nil, err
	}
	if barrel != nil {
		return barrel, nil
	}
	barrel = &models.Barrel{
		OwnerID:   ownerID,
		Type:      barrelType,
		Name:      name,
		MemberIDs: models.UintList{},
	}
	if err := s.barrelRepo.Create(ctx, barrel); err != nil {
		return nil, err
	}
	return barrel, nil
}

func (s *RelationService) requireUser(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewTargetNotFoundError(userID)
	}
	return nil
}

func idSet(ids []uint) map[uint]bool {
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
