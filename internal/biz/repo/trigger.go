package repo

import (
	"context"

	"github.com/anthropics/feishu-trigger-bot/internal/biz/domain"
)

// TriggerRepo is the trigger repository interface.
// Responsible for trigger/response persistence (SQLite).
type TriggerRepo interface {
	// Add inserts the cross-product of triggers and responses for a chat.
	// Pairs that already exist are returned as conflicts; the remaining
	// pairs are still inserted and the batch commits as one transaction.
	Add(ctx context.Context, triggers, responses []string, chatID int64) ([]domain.TriggerPair, error)

	// Delete removes the matching (trigger, response) rows. Absent rows
	// are not an error.
	Delete(ctx context.Context, triggers, responses []string, chatID int64) error

	// Merge copies every response under fromTrigger to toTrigger without
	// deleting fromTrigger's own rows. Pairs that collide with existing
	// toTrigger rows are returned as conflicts.
	Merge(ctx context.Context, fromTrigger, toTrigger string, chatID int64) ([]domain.TriggerPair, error)

	// Clear deletes all rows for a trigger in a chat.
	Clear(ctx context.Context, trigger string, chatID int64) error

	// Responses lists all responses registered under a trigger.
	Responses(ctx context.Context, trigger string, chatID int64) ([]string, error)

	// Triggers lists the distinct triggers of one chat.
	Triggers(ctx context.Context, chatID int64) ([]string, error)

	// AllTriggers lists distinct (trigger, chat) pairs across all chats,
	// for a global index rebuild.
	AllTriggers(ctx context.Context) ([]domain.ChatTrigger, error)
}
