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

func newKeywordFixture(t *testing.T) *KeywordService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Barrel{}))
	return NewKeywordService(repository.NewBarrelRepository(db))
}

func TestKeywordAddListRemove(t *testing.T) {
	svc := newKeywordFixture(t)
	ctx := context.Background()

	words, err := svc.List(ctx, 1, models.BarrelTypeAlertKeywords)
	require.NoError(t, err)
	assert.Empty(t, words)

	words, err = svc.Add(ctx, 1, models.BarrelTypeAlertKeywords, "towel")
	require.NoError(t, err)
	assert.Equal(t, []string{"towel"}, words)

	words, err = svc.Add(ctx, 1, models.BarrelTypeAlertKeywords, "monkey")
	require.NoError(t, err)
	assert.Equal(t, []string{"towel", "monkey"}, words)

	// Duplicate add is a no-op.
	words, err = svc.Add(ctx, 1, models.BarrelTypeAlertKeywords, "towel")
	require.NoError(t, err)
	assert.Equal(t, []string{"towel", "monkey"}, words)

	words, err = svc.Remove(ctx, 1, models.BarrelTypeAlertKeywords, "towel")
	require.NoError(t, err)
	assert.Equal(t, []string{"monkey"}, words)

	// Removing an absent word is a no-op.
	words, err = svc.Remove(ctx, 1, models.BarrelTypeAlertKeywords, "gone")
	require.NoError(t, err)
	assert.Equal(t, []string{"monkey"}, words)
}

func TestKeywordListsAreIndependent(t *testing.T) {
	svc := newKeywordFixture(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, 1, models.BarrelTypeAlertKeywords, "alert")
	require.NoError(t, err)
	_, err = svc.Add(ctx, 1, models.BarrelTypeMuteKeywords, "mute")
	require.NoError(t, err)
	_, err = svc.Add(ctx, 2, models.BarrelTypeAlertKeywords, "other")
	require.NoError(t, err)

	words, err := svc.List(ctx, 1, models.BarrelTypeAlertKeywords)
	require.NoError(t, err)
	assert.Equal(t, []string{"alert"}, words)

	words, err = svc.List(ctx, 1, models.BarrelTypeMuteKeywords)
	require.NoError(t, err)
	assert.Equal(t, []string{"mute"}, words)
}
