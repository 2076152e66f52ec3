package repo

import (
	"context"

	"github.com/anthropics/feishu-trigger-bot/internal/biz/domain"
)

// UserRepo is the user profile repository interface.
type UserRepo interface {
	// Upsert creates the (user, chat) profile if absent and always
	// refreshes the name fields, last write wins.
	Upsert(ctx context.Context, userID, chatID int64, firstName, lastName string) error

	// IncrementCount adds one to the user's message counter.
	IncrementCount(ctx context.Context, userID, chatID int64) error

	// ChatStats returns per-user counters for a chat, highest count first.
	ChatStats(ctx context.Context, chatID int64) ([]domain.UserStat, error)
}
