package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	BlocksKeyPrefix     = "blocks:%d"
	MutesKeyPrefix      = "mutes:%d"
	UserHeaderKeyPrefix = "header:%d"
	FezOpenKey          = "fez:open"
)

const (
	BlocksTTL     = 5 * time.Minute
	MutesTTL      = 5 * time.Minute
	UserHeaderTTL = 10 * time.Minute
	FezOpenTTL    = 30 * time.Second
)

func BlocksKey(userID uint) string {
	return fmt.Sprintf(BlocksKeyPrefix, userID)
}

func MutesKey(userID uint) string {
	return fmt.Sprintf(MutesKeyPrefix, userID)
}

func UserHeaderKey(userID uint) string {
	return fmt.Sprintf(UserHeaderKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateBlocks(ctx context.Context, userID uint) {
	// Blocking is bidirectional, so both parties' cached sets are stale. The
	// caller invalidates the other party separately when it knows the ID.
	Invalidate(ctx, BlocksKey(userID))
}

func InvalidateMutes(ctx context.Context, userID uint) {
	Invalidate(ctx, MutesKey(userID))
}

func InvalidateUserHeader(ctx context.Context, userID uint) {
	Invalidate(ctx, UserHeaderKey(userID))
}
