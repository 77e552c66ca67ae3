package service

import (
	"context"
	"testing"

	"quayside/internal/models"
	"quayside/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newRelationFixture(t *testing.T) (*RelationService, repository.UserRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Barrel{}, &models.FezPost{}))

	users := repository.NewUserRepository(db)
	return NewRelationService(repository.NewBarrelRepository(db), users), users
}

func createUser(t *testing.T, users repository.UserRepository, name string) *models.User {
	t.Helper()
	user := &models.User{Username: name, Email: name + "@example.com", Password: "x"}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func TestBlockIsBidirectional(t *testing.T) {
	relations, users := newRelationFixture(t)
	ctx := context.Background()
	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	require.NoError(t, relations.Block(ctx, alice.ID, bob.ID))

	aliceBlocks, err := relations.GetBlocks(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, aliceBlocks[bob.ID])

	// Bob never blocked anyone, but alice's block reaches him too.
	bobBlocks, err := relations.GetBlocks(ctx, bob.ID)
	require.NoError(t, err)
	assert.True(t, bobBlocks[alice.ID])
}

func TestUnblockClearsBothDirections(t *testing.T) {
	relations, users := newRelationFixture(t)
	ctx := context.Background()
	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	require.NoError(t, relations.Block(ctx, alice.ID, bob.ID))
	require.NoError(t, relations.Unblock(ctx, alice.ID, bob.ID))

	aliceBlocks, err := relations.GetBlocks(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, aliceBlocks)

	bobBlocks, err := relations.GetBlocks(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobBlocks)
}

func TestBlockSelfRejected(t *testing.T) {
	relations, users := newRelationFixture(t)
	alice := createUser(t, users, "alice")

	err := relations.Block(context.Background(), alice.ID, alice.ID)
	assertCode(t, err, "VALIDATION_ERROR")
}

func TestBlockUnknownTargetRejected(t *testing.T) {
	relations, users := newRelationFixture(t)
	alice := createUser(t, users, "alice")

	err := relations.Block(context.Background(), alice.ID, 999)
	assertCode(t, err, "TARGET_NOT_FOUND")
}

func TestBlockTwiceIsNoOp(t *testing.T) {
	relations, users := newRelationFixture(t)
	ctx := context.Background()
	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	require.NoError(t, relations.Block(ctx, alice.ID, bob.ID))
	require.NoError(t, relations.Block(ctx, alice.ID, bob.ID))

	blocks, err := relations.GetBlocks(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, blocks, 1)
}

func TestMuteIsOneDirectional(t *testing.T) {
	relations, users := newRelationFixture(t)
	ctx := context.Background()
	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	require.NoError(t, relations.Mute(ctx, alice.ID, bob.ID))

	aliceMutes, err := relations.GetMutes(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, aliceMutes[bob.ID])

	bobMutes, err := relations.GetMutes(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobMutes)

	require.NoError(t, relations.Unmute(ctx, alice.ID, bob.ID))
	aliceMutes, err = relations.GetMutes(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, aliceMutes)
}

func TestGetHeaders(t *testing.T) {
	relations, users := newRelationFixture(t)
	ctx := context.Background()
	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	headers, err := relations.GetHeaders(ctx, []uint{alice.ID, bob.ID, 999})
	require.NoError(t, err)
	assert.Len(t, headers, 2)
	assert.Equal(t, "alice", headers[alice.ID].Username)
	assert.Equal(t, "bob", headers[bob.ID].Username)
}
