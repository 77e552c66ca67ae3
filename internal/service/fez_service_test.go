package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"quayside/internal/models"
	"quayside/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fezFixture struct {
	db        *gorm.DB
	barrels   repository.BarrelRepository
	posts     repository.FezPostRepository
	users     repository.UserRepository
	relations *RelationService
	fezzes    *FezService
}

func newFezFixture(t *testing.T) *fezFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Barrel{}, &models.FezPost{}))

	barrels := repository.NewBarrelRepository(db)
	posts := repository.NewFezPostRepository(db)
	users := repository.NewUserRepository(db)
	relations := NewRelationService(barrels, users)

	return &fezFixture{
		db:        db,
		barrels:   barrels,
		posts:     posts,
		users:     users,
		relations: relations,
		fezzes:    NewFezService(barrels, posts, relations),
	}
}

func (f *fezFixture) createUser(t *testing.T, name string) *models.User {
	t.Helper()
	user := &models.User{
		Username:    name,
		Email:       name + "@example.com",
		Password:    "x",
		AccessLevel: models.AccessVerified,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func validInput(maxCapacity int) CreateFezInput {
	start := time.Now().Add(24 * time.Hour)
	return CreateFezInput{
		Title:       "Trivia Night",
		FezType:     "gaming",
		Info:        "Bring your own dice",
		StartTime:   strconv.FormatInt(start.Unix(), 10),
		EndTime:     strconv.FormatInt(start.Add(2*time.Hour).Unix(), 10),
		Location:    "Deck 5 lounge",
		MinCapacity: 1,
		MaxCapacity: maxCapacity,
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok, "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func TestCreateFezOwnerJoinsAutomatically(t *testing.T) {
	f := newFezFixture(t)
	owner := f.createUser(t, "owner")
	ctx := context.Background()

	view, err := f.fezzes.CreateFez(ctx, owner.ID, validInput(3))
	require.NoError(t, err)

	assert.Equal(t, owner.ID, view.OwnerID)
	require.Len(t, view.Participants, 3)
	assert.Equal(t, owner.ID, view.Participants[0].UserID)
	assert.Equal(t, models.AvailableSlot(), view.Participants[1])
	assert.Equal(t, models.AvailableSlot(), view.Participants[2])
	assert.Empty(t, view.Waitlist)
}

func TestCreateFezRejectsUnknownType(t *testing.T) {
	f := newFezFixture(t)
	owner := f.createUser(t, "owner")

	input := validInput(3)
	input.FezType = "heist"

	_, err := f.fezzes.CreateFez(context.Background(), owner.ID, input)
	assertCode(t, err, "VALIDATION_ERROR")
}

func TestJoinOverflowsToWaitlistInJoinOrder(t *testing.T) {
	f := newFezFixture(t)
	owner := f.createUser(t, "owner")
	bob := f.createUser(t, "bob")
	carol := f.createUser(t, "carol")
	ctx := context.Background()

	view, err := f.fezzes.CreateFez(ctx, owner.ID, validInput(2))
	require.NoError(t, err)

	_, err = f.fezzes.Join(ctx, view.FezID, bob.ID)
	require.NoError(t, err)

	view, err = f.fezzes.Join(ctx, view.FezID, carol.ID)
	require.NoError(t, err)

	require.Len(t, view.Participants, 2)
	assert.Equal(t, owner.ID, view.Participants[0].UserID)
	assert.Equal(t, bob.ID, view.Participants[1].UserID)
	require.Len(t, view.Waitlist, 1)
	assert.Equal(t, carol.ID, view.Waitlist[0].UserID)
}

func TestJoinIsIdempotent(t *testing.T) {
	f := newFezFixture(t)
	owner := f.createUser(t, "owner")
	bob := f.createUser(t, "bob")
	ctx := context.Background()

	view, err := f.fezzes.CreateFez(ctx, owner.ID, validInput(4))
	require.NoError(t, err)

	_, err = f.fezzes.Join(ctx, view.FezID, bob.ID)
	require.NoError(t, err)
	view, err = f.fezzes.Join(ctx, view.FezID, bob.ID)
	require.NoError(t, err)

	count := 0
	for _, m := range view.Participants {
		if m.UserID == bob.ID {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestUnjoinPromotesWaitlistHead(t *testing.T) {
	f := newFezFixture(t)
	owner := f.createUser(t, "owner")
	bob := f.createUser(t, "bob")
	carol := f.createUser(t, "carol")
	ctx := context.Background()

	view, err := f.fezzes.CreateFez(ctx, owner.ID, validInput(2))
	require.NoError(t, err)
	_, err = f.fezzes.Join(ctx, view.FezID, bob.ID)
	require.NoError(t, err)
	_, err = f.fezzes.Join(ctx, view.FezID, carol.ID)
	require.NoError(t, err)

	view, err = f.fezzes.Unjoin(ctx, view.FezID, bob.ID)
	require.NoError(t, err)

	require.Len(t, view.Participants, 2)
	assert.Equal(t, owner.ID, view.Participants[0].UserID)
	assert.Equal(t, carol.ID, view.Participants[1].UserID)
	assert.Empty(t, view.Waitlist)
}

func TestUnjoinNonMemberIsNoOp(t *testing.T) {
	f := newFezFixture(t)
	owner := f.createUser(t, "owner")
	bob := f.createUser(t, "bob")
	ctx := context.Background()

	view, err := f.fezzes.CreateFez(ctx, owner.ID, validInput(2))
	require.NoError(t, err)

	got, err := f.fezzes.Unjoin(ctx, view.FezID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.Participants[0].UserID)
}

func TestOwnerAddRejectsExistingMember(t *testing.T) {
	f := newFezFixture(t)
	owner := f.createUser(t, "owner")
	bob := f.createUser(t, "bob")
	ctx := context.Background()

	view, err := f.fezzes.CreateFez(ctx, owner.ID, validInput(4))
	require.NoError(t, err)

	_, err = f.fezzes.OwnerAdd(ctx, view.FezID, owner.ID, bob.ID)
	require.NoError(t, err)

	_, err = f.fezzes.OwnerAdd(ctx, view.FezID, owner.ID, bob.ID)
	assertCode(t, err, "ALREADY_MEMBER")
}

func TestOwnerAddRejectsUnknownTarget(t *testing.T) {
	f := newFezFixture(t)
	owner := f.createUser(t, "owner")
	ctx := context.Background()

	view, err := f.fezzes.CreateFez(ctx, owner.ID, validInput(4))
	require.NoError(t, err)

	_, err = f.fezzes.OwnerAdd(ctx, view.FezID, owner.ID, 999)
	assertCode(t, err, "TARGET_NOT_FOUND")
}

func TestOwnerOperationsForbiddenForNonOwner(t *testing.T) {
	f := newFezFixture(t)
	owner := f.createUser(t, "owner")
	bob := f.createUser(t, "bob")
	carol := f.createUser(t, "carol")
	ctx := context.Background()

	view, err := f.fezzes.CreateFez(ctx, owner.ID, validInput(4))
	require.NoError(t, err)

	_, err = f.fezzes.OwnerAdd(ctx, view.FezID, bob.ID, carol.ID)
	assertCode(t, err, "FORBIDDEN")

	_, err = f.fezzes.OwnerRemove(ctx, view.FezID, bob.ID, owner.ID)
	assertCode(t, err, "FORBIDDEN")

	_, err = f.fezzes.UpdateFez(ctx, view.FezID, bob.ID, validInput(4))
	assertCode(t, err, "FORBIDDEN")

	_, err = f.fezzes.CancelFez(ctx, view.FezID, bob.ID)
	assertCode(t, err, "FORBIDDEN")
}

func TestOwnerRemoveRejectsNonMember(t *testing.T) {
	f := newFezFixture(t)
	owner := f.createUser(t, "owner")
	bob := f.createUser(t, "bob")
	ctx := context.Background()

	view, err := f.fezzes.CreateFez(ctx, owner.ID, validInput(4))
	require.NoError(t, err)

	_, err = f.fezzes.OwnerRemove(ctx, view.FezID, owner.ID, bob.ID)
	assertCode(t, err, "NOT_MEMBER")
}

func TestJoinWrongBarrelCategory(t *testing.T) {
	f := newFezFixture(t)
	owner := f.createUser(t, "owner")
	bob := f.createUser(t, "bob")
	ctx := context.Background()

	blocks := &models.Barrel{OwnerID: owner.ID, Type: models.BarrelTypeBlocks, Name: "Blocked Users"}
	require.NoError(t, f.barrels.Create(ctx, blocks))

	_, err := f.fezzes.Join(ctx, blocks.ID, bob.ID)
	assertCode(t, err, "WRONG_CATEGORY")
}

func TestGetFezMissingCapacityIsInvariantViolation(t *testing.T) {
	f := newFezFixture(t)
	owner := f.createUser(t, "owner")
	ctx := context.Background()

	view, err := f.fezzes.CreateFez(ctx, owner.ID, validInput(4))
	require.NoError(t, err)

	barrel, err := f.barrels.GetByID(ctx, view.FezID)
	require.NoError(t, err)
	delete(barrel.Attributes, models.FezAttrMaxCapacity)
	require.NoError(t, f.barrels.Save(ctx, barrel))

	_, err = f.fezzes.GetFez(ctx, view.FezID, owner.ID)
	assertCode(t, err, "INVARIANT_VIOLATION")
}

func TestUpdateShrinkingCapacityResplitsAtRead(t *testing.T) {
	f := newFezFixture(t)
	owner := f.createUser(t, "owner")
	bob := f.createUser(t, "bob")
	carol := f.createUser(t, "carol")
	ctx := context.Background()

	view, err := f.fezzes.CreateFez(ctx, owner.ID, validInput(3))
	require.NoError(t, err)
	_, err = f.fezzes.Join(ctx, view.FezID, bob.ID)
	require.NoError(t, err)
	_, err = f.fezzes.Join(ctx, view.FezID, carol.ID)
	require.NoError(t, err)

	shrunk := validInput(2)
	view, err = f.fezzes.UpdateFez(ctx, view.FezID, owner.ID, shrunk)
	require.NoError(t, err)

	// Nobody was removed; the tail simply waits now.
	require.Len(t, view.Participants, 2)
	require.Len(t, view.Waitlist, 1)
	assert.Equal(t, carol.ID, view.Waitlist[0].UserID)
}

func TestCancelFez(t *testing.T) {
	f := newFezFixture(t)
	owner := f.createUser(t, "owner")
	bob := f.createUser(t, "bob")
	ctx := context.Background()

	view, err := f.fezzes.CreateFez(ctx, owner.ID, validInput(3))
	require.NoError(t, err)

	view, err = f.fezzes.CancelFez(ctx, view.FezID, owner.ID)
	require.NoError(t, err)

	assert.True(t, view.Cancelled)
	assert.Equal(t, models.CancelledPrefix+"Trivia Night", view.Title)
	assert.Empty(t, view.Participants)
	assert.Empty(t, view.Waitlist)

	// Cancelling again is a no-op.
	_, err = f.fezzes.CancelFez(ctx, view.FezID, owner.ID)
	require.NoError(t, err)

	// Cancelled fezzes cannot be joined.
	_, err = f.fezzes.Join(ctx, view.FezID, bob.ID)
	assertCode(t, err, "VALIDATION_ERROR")
}

func TestGetFezHiddenWhenOwnerBlocked(t *testing.T) {
	f := newFezFixture(t)
	owner := f.createUser(t, "owner")
	bob := f.createUser(t, "bob")
	ctx := context.Background()

	view, err := f.fezzes.CreateFez(ctx, owner.ID, validInput(3))
	require.NoError(t, err)

	require.NoError(t, f.relations.Block(ctx, bob.ID, owner.ID))

	_, err = f.fezzes.GetFez(ctx, view.FezID, bob.ID)
	assertCode(t, err, "NOT_FOUND")

	_, err = f.fezzes.Join(ctx, view.FezID, bob.ID)
	assertCode(t, err, "NOT_FOUND")
}

func TestViewMasksBlockedMembersButKeepsTheirSlots(t *testing.T) {
	f := newFezFixture(t)
	owner := f.createUser(t, "owner")
	bob := f.createUser(t, "bob")
	carol := f.createUser(t, "carol")
	ctx := context.Background()

	view, err := f.fezzes.CreateFez(ctx, owner.ID, validInput(2))
	require.NoError(t, err)
	_, err = f.fezzes.Join(ctx, view.FezID, bob.ID)
	require.NoError(t, err)
	_, err = f.fezzes.Join(ctx, view.FezID, carol.ID)
	require.NoError(t, err)

	// Carol blocks bob; bob is not the owner, so the fez stays visible but
	// bob's roster slot is redacted and still occupies capacity.
	require.NoError(t, f.relations.Block(ctx, carol.ID, bob.ID))

	got, err := f.fezzes.GetFez(ctx, view.FezID, carol.ID)
	require.NoError(t, err)
	require.Len(t, got.Participants, 2)
	assert.Equal(t, owner.ID, got.Participants[0].UserID)
	assert.Equal(t, models.BlockedSlot(), got.Participants[1])
	require.Len(t, got.Waitlist, 1)
	assert.Equal(t, carol.ID, got.Waitlist[0].UserID)
}

func TestOpenFezzesFiltering(t *testing.T) {
	f := newFezFixture(t)
	owner := f.createUser(t, "owner")
	rival := f.createUser(t, "rival")
	bob := f.createUser(t, "bob")
	ctx := context.Background()

	open, err := f.fezzes.CreateFez(ctx, owner.ID, validInput(3))
	require.NoError(t, err)

	full, err := f.fezzes.CreateFez(ctx, owner.ID, validInput(1))
	require.NoError(t, err)

	cancelled, err := f.fezzes.CreateFez(ctx, owner.ID, validInput(3))
	require.NoError(t, err)
	_, err = f.fezzes.CancelFez(ctx, cancelled.FezID, owner.ID)
	require.NoError(t, err)

	hidden, err := f.fezzes.CreateFez(ctx, rival.ID, validInput(3))
	require.NoError(t, err)
	require.NoError(t, f.relations.Block(ctx, bob.ID, rival.ID))

	views, err := f.fezzes.OpenFezzes(ctx, bob.ID)
	require.NoError(t, err)

	ids := make(map[uint]bool)
	for _, v := range views {
		ids[v.FezID] = true
	}
	assert.True(t, ids[open.FezID])
	assert.False(t, ids[full.FezID], "full fez should not be listed")
	assert.False(t, ids[cancelled.FezID], "cancelled fez should not be listed")
	assert.False(t, ids[hidden.FezID], "blocked owner's fez should not be listed")
}

func TestJoinedAndOwnedListings(t *testing.T) {
	f := newFezFixture(t)
	owner := f.createUser(t, "owner")
	bob := f.createUser(t, "bob")
	ctx := context.Background()

	mine, err := f.fezzes.CreateFez(ctx, owner.ID, validInput(1))
	require.NoError(t, err)
	theirs, err := f.fezzes.CreateFez(ctx, bob.ID, validInput(3))
	require.NoError(t, err)
	_, err = f.fezzes.Join(ctx, theirs.FezID, owner.ID)
	require.NoError(t, err)

	joined, err := f.fezzes.JoinedFezzes(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, joined, 2, "joined includes owned and waitlisted fezzes")

	owned, err := f.fezzes.OwnedFezzes(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, mine.FezID, owned[0].FezID)
}

func TestAddPostRequiresMembership(t *testing.T) {
	f := newFezFixture(t)
	owner := f.createUser(t, "owner")
	stranger := f.createUser(t, "stranger")
	ctx := context.Background()

	view, err := f.fezzes.CreateFez(ctx, owner.ID, validInput(3))
	require.NoError(t, err)

	_, err = f.fezzes.AddPost(ctx, view.FezID, stranger.ID, FezPostInput{Text: "hi"})
	assertCode(t, err, "NOT_MEMBER")
}

func TestWaitlistedMemberCanPost(t *testing.T) {
	f := newFezFixture(t)
	owner := f.createUser(t, "owner")
	bob := f.createUser(t, "bob")
	ctx := context.Background()

	view, err := f.fezzes.CreateFez(ctx, owner.ID, validInput(1))
	require.NoError(t, err)
	_, err = f.fezzes.Join(ctx, view.FezID, bob.ID)
	require.NoError(t, err)

	got, err := f.fezzes.AddPost(ctx, view.FezID, bob.ID, FezPostInput{Text: "still waiting"})
	require.NoError(t, err)
	require.Len(t, got.Posts, 1)
	assert.Equal(t, "still waiting", got.Posts[0].Text)
}

func TestThreadExcludesMutedAuthors(t *testing.T) {
	f := newFezFixture(t)
	owner := f.createUser(t, "owner")
	bob := f.createUser(t, "bob")
	ctx := context.Background()

	view, err := f.fezzes.CreateFez(ctx, owner.ID, validInput(3))
	require.NoError(t, err)
	_, err = f.fezzes.Join(ctx, view.FezID, bob.ID)
	require.NoError(t, err)

	_, err = f.fezzes.AddPost(ctx, view.FezID, owner.ID, FezPostInput{Text: "from owner"})
	require.NoError(t, err)
	_, err = f.fezzes.AddPost(ctx, view.FezID, bob.ID, FezPostInput{Text: "from bob"})
	require.NoError(t, err)

	require.NoError(t, f.relations.Mute(ctx, owner.ID, bob.ID))

	got, err := f.fezzes.GetFez(ctx, view.FezID, owner.ID)
	require.NoError(t, err)
	require.Len(t, got.Posts, 1)
	assert.Equal(t, "from owner", got.Posts[0].Text)

	// Bob still sees both posts.
	got, err = f.fezzes.GetFez(ctx, view.FezID, bob.ID)
	require.NoError(t, err)
	assert.Len(t, got.Posts, 2)
}

func TestDeletePostAuthorOnly(t *testing.T) {
	f := newFezFixture(t)
	owner := f.createUser(t, "owner")
	bob := f.createUser(t, "bob")
	ctx := context.Background()

	view, err := f.fezzes.CreateFez(ctx, owner.ID, validInput(3))
	require.NoError(t, err)
	_, err = f.fezzes.Join(ctx, view.FezID, bob.ID)
	require.NoError(t, err)

	got, err := f.fezzes.AddPost(ctx, view.FezID, bob.ID, FezPostInput{Text: "mine"})
	require.NoError(t, err)
	postID := got.Posts[0].ID

	// Even the fez owner cannot delete someone else's post.
	_, err = f.fezzes.DeletePost(ctx, postID, owner.ID)
	assertCode(t, err, "FORBIDDEN")

	got, err = f.fezzes.DeletePost(ctx, postID, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Posts)
}

func TestBookmarkReflectedInView(t *testing.T) {
	f := newFezFixture(t)
	owner := f.createUser(t, "owner")
	bob := f.createUser(t, "bob")
	ctx := context.Background()

	view, err := f.fezzes.CreateFez(ctx, owner.ID, validInput(3))
	require.NoError(t, err)

	require.NoError(t, f.fezzes.Bookmark(ctx, view.FezID, bob.ID))

	got, err := f.fezzes.GetFez(ctx, view.FezID, bob.ID)
	require.NoError(t, err)
	assert.True(t, got.Bookmarked)

	require.NoError(t, f.fezzes.Unbookmark(ctx, view.FezID, bob.ID))
	got, err = f.fezzes.GetFez(ctx, view.FezID, bob.ID)
	require.NoError(t, err)
	assert.False(t, got.Bookmarked)
}

func TestViewShowsDeletedUserPlaceholder(t *testing.T) {
	f := newFezFixture(t)
	owner := f.createUser(t, "owner")
	bob := f.createUser(t, "bob")
	ctx := context.Background()

	view, err := f.fezzes.CreateFez(ctx, owner.ID, validInput(3))
	require.NoError(t, err)
	_, err = f.fezzes.Join(ctx, view.FezID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, f.db.Unscoped().Delete(&models.User{}, bob.ID).Error)

	got, err := f.fezzes.GetFez(ctx, view.FezID, owner.ID)
	require.NoError(t, err)
	require.Len(t, got.Participants, 3)
	assert.Equal(t, deletedUserName, got.Participants[1].Username)
	assert.Equal(t, bob.ID, got.Participants[1].UserID)
}
