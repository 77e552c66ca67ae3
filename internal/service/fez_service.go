package service

import (
	"context"
	"time"

	"quayside/internal/middleware"
	"quayside/internal/models"
	"quayside/internal/repository"
	"quayside/internal/validation"
)

// deletedUserName is displayed for roster members whose account no longer
// exists. The slot still counts toward capacity.
const deletedUserName = "@deleted"

// FezService manages the lifecycle of group activities (fezzes): creation,
// joining with capacity-bounded waitlists, owner roster management, and the
// attached discussion thread. Every read surface is filtered through the
// requester's block relationships before capacity is resolved.
type FezService struct {
	barrelRepo repository.BarrelRepository
	postRepo   repository.FezPostRepository
	relations  *RelationService
}

// NewFezService creates a new fez service
func NewFezService(barrelRepo repository.BarrelRepository, postRepo repository.FezPostRepository, relations *RelationService) *FezService {
	return &FezService{
		barrelRepo: barrelRepo,
		postRepo:   postRepo,
		relations:  relations,
	}
}

// CreateFezInput holds the data for creating a fez
type CreateFezInput struct {
	Title       string `json:"title"`
	FezType     string `json:"fez_type"`
	Info        string `json:"info"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Location    string `json:"location"`
	MinCapacity int    `json:"min_capacity"`
	MaxCapacity int    `json:"max_capacity"`
}

// UpdateFezInput holds the data for updating a fez. All metadata fields are
// replaced; the roster is untouched.
type UpdateFezInput = CreateFezInput

// FezPostInput holds the data for adding a discussion post to a fez.
type FezPostInput struct {
	Text     string `json:"text"`
	ImageRef string `json:"image_ref,omitempty"`
}

func (in *CreateFezInput) validate() error {
	if err := validation.ValidateFezTitle(in.Title); err != nil {
		return models.NewValidationError(err.Error())
	}
	if !models.ValidFezType(in.FezType) {
		return models.NewValidationError("Unknown fez type")
	}
	if err := validation.ValidateFezInfo(in.Info); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidateFezLocation(in.Location); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidateFezCapacity(in.MinCapacity, in.MaxCapacity); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidateFezTime(in.StartTime); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidateFezTime(in.EndTime); err != nil {
		return models.NewValidationError(err.Error())
	}
	return nil
}

func (in *CreateFezInput) info() models.FezInfo {
	return models.FezInfo{
		FezType:     in.FezType,
		Info:        in.Info,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Location:    in.Location,
		MinCapacity: in.MinCapacity,
		MaxCapacity: in.MaxCapacity,
	}
}

// FezTypes returns the activity-type labels offered at creation.
func (s *FezService) FezTypes() []string {
	return append([]string{}, models.FezTypes...)
}

// CreateFez creates a fez barrel owned by ownerID. The owner joins
// automatically as the first roster member.
func (s *FezService) CreateFez(ctx context.Context, ownerID uint, input CreateFezInput) (*models.FezView, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	barrel := &models.Barrel{
		OwnerID:   ownerID,
		Type:      models.BarrelTypeFriendFez,
		Name:      input.Title,
		MemberIDs: models.UintList{ownerID},
	}
	input.info().ApplyToBarrel(barrel)

	if err := s.barrelRepo.Create(ctx, barrel); err != nil {
		middleware.FezOperations.WithLabelValues("create", "error").Inc()
		return nil, err
	}
	middleware.FezOperations.WithLabelValues("create", "success").Inc()

	return s.buildView(ctx, barrel, ownerID, false)
}

// GetFez returns the full view of a fez, including its discussion thread.
// Fezzes whose owner is in the requester's block set are reported as not
// found rather than forbidden, so the relationship is not disclosed.
func (s *FezService) GetFez(ctx context.Context, fezID, requesterID uint) (*models.FezView, error) {
	barrel, err := s.loadFez(ctx, fezID)
	if err != nil {
		return nil, err
	}
	blocks, err := s.relations.GetBlocks(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if blocks[barrel.OwnerID] && barrel.OwnerID != requesterID {
		return nil, models.NewNotFoundError("Fez", fezID)
	}
	return s.buildView(ctx, barrel, requesterID, true)
}

// Join appends userID to the fez roster. Whether the user lands in the
// active list or the waitlist is decided at read time by capacity
// resolution, never stored. Joining twice is a no-op.
func (s *FezService) Join(ctx context.Context, fezID, userID uint) (*models.FezView, error) {
	barrel, err := s.loadFez(ctx, fezID)
	if err != nil {
		return nil, err
	}
	blocks, err := s.relations.GetBlocks(ctx, userID)
	if err != nil {
		return nil, err
	}
	if blocks[barrel.OwnerID] {
		return nil, models.NewNotFoundError("Fez", fezID)
	}
	info, err := models.FezInfoFromBarrel(barrel)
	if err != nil {
		return nil, err
	}
	if info.Cancelled {
		return nil, models.NewValidationError("Fez has been cancelled")
	}

	if barrel.AddMember(userID) {
		if err := s.barrelRepo.Save(ctx, barrel); err != nil {
			middleware.FezOperations.WithLabelValues("join", "error").Inc()
			return nil, err
		}
	}
	middleware.FezOperations.WithLabelValues("join", "success").Inc()

	return s.buildView(ctx, barrel, userID, false)
}

// Unjoin removes userID from the fez roster. Removal preserves the order of
// the remaining members, so the head of the waitlist is promoted naturally
// at the next read. Leaving a fez you are not in is a no-op.
func (s *FezService) Unjoin(ctx context.Context, fezID, userID uint) (*models.FezView, error) {
	barrel, err := s.loadFez(ctx, fezID)
	if err != nil {
		return nil, err
	}
	if barrel.RemoveMember(userID) {
		if err := s.barrelRepo.Save(ctx, barrel); err != nil {
			middleware.FezOperations.WithLabelValues("unjoin", "error").Inc()
			return nil, err
		}
	}
	middleware.FezOperations.WithLabelValues("unjoin", "success").Inc()

	return s.buildView(ctx, barrel, userID, false)
}

// OwnerAdd lets the fez owner add another user to the roster. Unlike Join,
// adding an existing member is an error, as is naming a user that does not
// exist.
func (s *FezService) OwnerAdd(ctx context.Context, fezID, ownerID, targetID uint) (*models.FezView, error) {
	barrel, err := s.loadOwnedFez(ctx, fezID, ownerID)
	if err != nil {
		return nil, err
	}
	target, err := s.relations.GetUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, models.NewTargetNotFoundError(targetID)
	}
	if !barrel.AddMember(targetID) {
		return nil, models.NewAlreadyMemberError(targetID)
	}
	if err := s.barrelRepo.Save(ctx, barrel); err != nil {
		middleware.FezOperations.WithLabelValues("owner_add", "error").Inc()
		return nil, err
	}
	middleware.FezOperations.WithLabelValues("owner_add", "success").Inc()

	return s.buildView(ctx, barrel, ownerID, false)
}

// OwnerRemove lets the fez owner remove a user from the roster. Removing a
// non-member is an error.
func (s *FezService) OwnerRemove(ctx context.Context, fezID, ownerID, targetID uint) (*models.FezView, error) {
	barrel, err := s.loadOwnedFez(ctx, fezID, ownerID)
	if err != nil {
		return nil, err
	}
	if !barrel.RemoveMember(targetID) {
		return nil, models.NewNotMemberError(targetID)
	}
	if err := s.barrelRepo.Save(ctx, barrel); err != nil {
		middleware.FezOperations.WithLabelValues("owner_remove", "error").Inc()
		return nil, err
	}
	middleware.FezOperations.WithLabelValues("owner_remove", "success").Inc()

	return s.buildView(ctx, barrel, ownerID, false)
}

// UpdateFez replaces the fez metadata wholesale. Only the owner may update.
// Shrinking the capacity does not remove anyone; the tail of the roster
// simply resolves to the waitlist on subsequent reads.
func (s *FezService) UpdateFez(ctx context.Context, fezID, ownerID uint, input UpdateFezInput) (*models.FezView, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	barrel, err := s.loadOwnedFez(ctx, fezID, ownerID)
	if err != nil {
		return nil, err
	}
	prev, err := models.FezInfoFromBarrel(barrel)
	if err != nil {
		return nil, err
	}

	next := input.info()
	next.Cancelled = prev.Cancelled
	barrel.Name = input.Title
	next.ApplyToBarrel(barrel)

	if err := s.barrelRepo.Save(ctx, barrel); err != nil {
		middleware.FezOperations.WithLabelValues("update", "error").Inc()
		return nil, err
	}
	middleware.FezOperations.WithLabelValues("update", "success").Inc()

	return s.buildView(ctx, barrel, ownerID, false)
}

// CancelFez marks a fez as cancelled. The barrel and its discussion thread
// are kept; views of a cancelled fez carry a cancellation marker on the
// textual fields and empty rosters. Cancelling twice is a no-op.
func (s *FezService) CancelFez(ctx context.Context, fezID, ownerID uint) (*models.FezView, error) {
	barrel, err := s.loadOwnedFez(ctx, fezID, ownerID)
	if err != nil {
		return nil, err
	}
	if barrel.AttributeValue(models.FezAttrCancelled) != "true" {
		barrel.SetAttributeValue(models.FezAttrCancelled, "true")
		if err := s.barrelRepo.Save(ctx, barrel); err != nil {
			middleware.FezOperations.WithLabelValues("cancel", "error").Inc()
			return nil, err
		}
	}
	middleware.FezOperations.WithLabelValues("cancel", "success").Inc()

	return s.buildView(ctx, barrel, ownerID, false)
}

// JoinedFezzes returns views of every fez the user is on the roster of,
// including waitlisted ones.
func (s *FezService) JoinedFezzes(ctx context.Context, userID uint) ([]models.FezView, error) {
	barrels, err := s.barrelRepo.ListByType(ctx, models.BarrelTypeFriendFez)
	if err != nil {
		return nil, err
	}
	joined := barrels[:0]
	for i := range barrels {
		if barrels[i].HasMember(userID) {
			joined = append(joined, barrels[i])
		}
	}
	return s.buildViews(ctx, joined, userID)
}

// OwnedFezzes returns views of every fez the user owns.
func (s *FezService) OwnedFezzes(ctx context.Context, userID uint) ([]models.FezView, error) {
	barrels, err := s.barrelRepo.ListByOwnerAndType(ctx, userID, models.BarrelTypeFriendFez)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, barrels, userID)
}

// OpenFezzes returns joinable fezzes for the requester: not cancelled, not
// owned by a blocked user, with at least one open slot, and not already in
// the past. Recently started fezzes stay listed for an hour.
func (s *FezService) OpenFezzes(ctx context.Context, requesterID uint) ([]models.FezView, error) {
	barrels, err := s.barrelRepo.ListByType(ctx, models.BarrelTypeFriendFez)
	if err != nil {
		return nil, err
	}
	blocks, err := s.relations.GetBlocks(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-time.Hour)
	open := barrels[:0]
	for i := range barrels {
		b := &barrels[i]
		if blocks[b.OwnerID] {
			continue
		}
		info, infoErr := models.FezInfoFromBarrel(b)
		if infoErr != nil || info.Cancelled {
			continue
		}
		if info.MaxCapacity > 0 && len(b.MemberIDs) >= info.MaxCapacity {
			continue
		}
		if !info.StartsAfter(cutoff) {
			continue
		}
		open = append(open, *b)
	}
	return s.buildViews(ctx, open, requesterID)
}

// AddPost appends a discussion post to a fez. Only roster members may post,
// waitlisted members included.
func (s *FezService) AddPost(ctx context.Context, fezID, authorID uint, input FezPostInput) (*models.FezView, error) {
	if err := validation.ValidatePostText(input.Text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	barrel, err := s.loadFez(ctx, fezID)
	if err != nil {
		return nil, err
	}
	blocks, err := s.relations.GetBlocks(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if blocks[barrel.OwnerID] {
		return nil, models.NewNotFoundError("Fez", fezID)
	}
	if !barrel.HasMember(authorID) {
		return nil, models.NewNotMemberError(authorID)
	}

	post := &models.FezPost{
		BarrelID: barrel.ID,
		AuthorID: authorID,
		Text:     input.Text,
		ImageRef: input.ImageRef,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.buildView(ctx, barrel, authorID, true)
}

// DeletePost deletes a discussion post. Only the post's author may delete
// it; the fez owner gets no special power here.
func (s *FezService) DeletePost(ctx context.Context, postID, requesterID uint) (*models.FezView, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != requesterID {
		return nil, models.NewForbiddenError("Only the author can delete a post")
	}
	barrel, err := s.loadFez(ctx, post.BarrelID)
	if err != nil {
		return nil, err
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return nil, err
	}
	return s.buildView(ctx, barrel, requesterID, true)
}

// Bookmark adds a fez to the user's bookmarks barrel.
func (s *FezService) Bookmark(ctx context.Context, fezID, userID uint) error {
	if _, err := s.loadFez(ctx, fezID); err != nil {
		return err
	}
	barrel, err := s.relations.ensureOwnerBarrel(ctx, userID, models.BarrelTypeBookmarks, "Bookmarked Fezzes")
	if err != nil {
		return err
	}
	if !barrel.AddMember(fezID) {
		return nil
	}
	return s.barrelRepo.Save(ctx, barrel)
}

// Unbookmark removes a fez from the user's bookmarks barrel.
func (s *FezService) Unbookmark(ctx context.Context, fezID, userID uint) error {
	barrel, err := s.barrelRepo.GetOwnerBarrel(ctx, userID, models.BarrelTypeBookmarks)
	if err != nil {
		return err
	}
	if barrel == nil || !barrel.RemoveMember(fezID) {
		return nil
	}
	return s.barrelRepo.Save(ctx, barrel)
}

// loadFez fetches a barrel and verifies it is a friendfez. A barrel of any
// other type yields a wrong-category error rather than not-found, since the
// ID did resolve.
func (s *FezService) loadFez(ctx context.Context, fezID uint) (*models.Barrel, error) {
	barrel, err := s.barrelRepo.GetByID(ctx, fezID)
	if err != nil {
		return nil, err
	}
	if barrel.Type != models.BarrelTypeFriendFez {
		return nil, models.NewWrongCategoryError(models.BarrelTypeFriendFez)
	}
	return barrel, nil
}

func (s *FezService) loadOwnedFez(ctx context.Context, fezID, ownerID uint) (*models.Barrel, error) {
	barrel, err := s.loadFez(ctx, fezID)
	if err != nil {
		return nil, err
	}
	if barrel.OwnerID != ownerID {
		return nil, models.NewForbiddenError("Only the fez owner can do that")
	}
	return barrel, nil
}

// buildView assembles the externally visible representation of a fez for a
// particular requester: resolve member headers in join order, mask blocked
// members, then split at capacity. Masking runs before the capacity split so
// blocked members still hold their slots.
func (s *FezService) buildView(ctx context.Context, barrel *models.Barrel, requesterID uint, includePosts bool) (*models.FezView, error) {
	info, err := models.FezInfoFromBarrel(barrel)
	if err != nil {
		return nil, err
	}
	blocks, err := s.relations.GetBlocks(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.assembleView(ctx, barrel, info, requesterID, blocks, includePosts)
}

// buildViews assembles views for a batch of barrels, fetching the
// requester's block set once. Barrels with corrupt payloads are skipped
// rather than failing the whole listing.
func (s *FezService) buildViews(ctx context.Context, barrels []models.Barrel, requesterID uint) ([]models.FezView, error) {
	blocks, err := s.relations.GetBlocks(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	views := make([]models.FezView, 0, len(barrels))
	for i := range barrels {
		info, infoErr := models.FezInfoFromBarrel(&barrels[i])
		if infoErr != nil {
			middleware.Logger.Warn("skipping fez with corrupt payload", "fez_id", barrels[i].ID)
			continue
		}
		view, viewErr := s.assembleView(ctx, &barrels[i], info, requesterID, blocks, false)
		if viewErr != nil {
			return nil, viewErr
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *FezService) assembleView(ctx context.Context, barrel *models.Barrel, info models.FezInfo, requesterID uint, blocks map[uint]bool, includePosts bool) (*models.FezView, error) {
	headers, err := s.relations.GetHeaders(ctx, barrel.MemberIDs)
	if err != nil {
		return nil, err
	}

	monkeys := make([]models.SeaMonkey, 0, len(barrel.MemberIDs))
	for _, id := range barrel.MemberIDs {
		if h, ok := headers[id]; ok {
			monkeys = append(monkeys, models.SeaMonkey{UserID: h.UserID, Username: h.Username})
		} else {
			monkeys = append(monkeys, models.SeaMonkey{UserID: id, Username: deletedUserName})
		}
	}
	masked := models.MaskSeaMonkeys(monkeys, blocks)
	active, waiting := models.ResolveCapacity(masked, info.MaxCapacity)

	bookmarked, err := s.isBookmarked(ctx, requesterID, barrel.ID)
	if err != nil {
		return nil, err
	}

	view := &models.FezView{
		FezID:        barrel.ID,
		OwnerID:      barrel.OwnerID,
		Title:        barrel.Name,
		FezType:      info.FezType,
		Info:         info.Info,
		StartTime:    models.FezTimeString(info.StartTime),
		EndTime:      models.FezTimeString(info.EndTime),
		Location:     info.Location,
		MinCapacity:  info.MinCapacity,
		MaxCapacity:  info.MaxCapacity,
		Cancelled:    info.Cancelled,
		Bookmarked:   bookmarked,
		Participants: active,
		Waitlist:     waiting,
	}

	if info.Cancelled {
		view.Title = models.CancelledPrefix + view.Title
		if view.Info != "" {
			view.Info = models.CancelledPrefix + view.Info
		}
		view.Participants = []models.SeaMonkey{}
		view.Waitlist = []models.SeaMonkey{}
	}

	if includePosts && !info.Cancelled {
		posts, postsErr := s.threadFor(ctx, barrel.ID, requesterID, blocks)
		if postsErr != nil {
			return nil, postsErr
		}
		view.Posts = posts
	}

	return view, nil
}

// threadFor returns the fez discussion thread visible to the requester:
// ascending by creation time, with posts by blocked or muted authors
// removed entirely rather than redacted.
func (s *FezService) threadFor(ctx context.Context, fezID, requesterID uint, blocks map[uint]bool) ([]models.FezPost, error) {
	mutes, err := s.relations.GetMutes(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	excluded := make([]uint, 0, len(blocks)+len(mutes))
	for id := range blocks {
		excluded = append(excluded, id)
	}
	for id := range mutes {
		if !blocks[id] {
			excluded = append(excluded, id)
		}
	}
	return s.postRepo.ListForFez(ctx, fezID, excluded)
}

func (s *FezService) isBookmarked(ctx context.Context, userID, fezID uint) (bool, error) {
	barrel, err := s.barrelRepo.GetOwnerBarrel(ctx, userID, models.BarrelTypeBookmarks)
	if err != nil {
		return false, err
	}
	return barrel != nil && barrel.HasMember(fezID), nil
}
