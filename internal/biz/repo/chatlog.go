package repo

import (
	"context"

	"github.com/anthropics/feishu-trigger-bot/internal/biz/domain"
)

// ChatLogRepo is the append-only message log repository interface.
type ChatLogRepo interface {
	// LogMessage appends one log entry. A duplicate update id fails with
	// domain.ErrConflict and leaves the existing row untouched.
	LogMessage(ctx context.Context, entry *domain.LogEntry) error

	// SearchText returns messages of a chat whose text contains every
	// keyword as a substring, at most limit rows. Rows follow the id
	// order produced by the first keyword's result set, not time order;
	// callers that want newest-first must re-sort. Zero keywords yield
	// zero rows.
	SearchText(ctx context.Context, keywords []string, chatID int64, limit int) ([]domain.SearchRow, error)

	// RecentEdits returns the edit histories of the most recently edited
	// limit distinct messages. Each message's rows (original plus
	// revisions) are ordered oldest first.
	RecentEdits(ctx context.Context, chatID int64, limit int) ([]domain.HistoryRow, error)
}
