package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/anthropics/feishu-trigger-bot/internal/biz/domain"
	"github.com/anthropics/feishu-trigger-bot/internal/biz/repo"
)

// userRepo implements the user profile repository on SQLite
type userRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sql.DB) repo.UserRepo {
	return &userRepo{db: db}
}

// Upsert creates the profile if absent, then refreshes the name fields.
// Two statements, one transaction; the final state always carries the
// latest names.
func (r *userRepo) Upsert(ctx context.Context, userID, chatID int64, firstName, lastName string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO userinfo (first_name, last_name, user_id, chat_id) VALUES (?, ?, ?, ?)
	`, firstName, lastName, userID, chatID)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE userinfo SET first_name = ?, last_name = ? WHERE user_id = ? AND chat_id = ?
	`, firstName, lastName, userID, chatID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// IncrementCount adds one to the user's message counter.
func (r *userRepo) IncrementCount(ctx context.Context, userID, chatID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE userinfo SET count = count + 1 WHERE user_id = ? AND chat_id = ?
	`, userID, chatID)
	if err != nil {
		return fmt.Errorf("failed to increment count: %w", err)
	}
	return nil
}

// ChatStats returns per-user counters for a chat, highest count first.
func (r *userRepo) ChatStats(ctx context.Context, chatID int64) ([]domain.UserStat, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT first_name, last_name, user_id, count
		FROM userinfo
		WHERE chat_id = ?
		ORDER BY count DESC
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.UserStat
	for rows.Next() {
		var s domain.UserStat
		var firstName, lastName sql.NullString
		if err := rows.Scan(&firstName, &lastName, &s.UserID, &s.Count); err != nil {
			return nil, fmt.Errorf("failed to scan stat: %w", err)
		}
		s.FirstName = firstName.String
		s.LastName = lastName.String
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
