package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/anthropics/feishu-trigger-bot/internal/biz/domain"
	"github.com/anthropics/feishu-trigger-bot/internal/biz/repo"
)

// triggerRepo implements the trigger repository on SQLite
type triggerRepo struct {
	db *sql.DB
}

// NewTriggerRepo creates a new trigger repository
func NewTriggerRepo(db *sql.DB) repo.TriggerRepo {
	return &triggerRepo{db: db}
}

// Add inserts the cross-product of triggers and responses in one
// transaction. INSERT OR IGNORE with a rows-affected check turns each
// duplicate pair into a reported conflict instead of aborting the batch.
func (r *triggerRepo) Add(ctx context.Context, triggers, responses []string, chatID int64) ([]domain.TriggerPair, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO triggers (trigger, text, chat_id) VALUES (?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	var conflicts []domain.TriggerPair
	for _, trigger := range triggers {
		for _, response := range responses {
			res, err := stmt.ExecContext(ctx, trigger, response, chatID)
			if err != nil {
				return nil, fmt.Errorf("failed to insert trigger: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				conflicts = append(conflicts, domain.TriggerPair{Trigger: trigger, Response: response})
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return conflicts, nil
}

// Delete removes the matching rows; missing rows are not an error.
func (r *triggerRepo) Delete(ctx context.Context, triggers, responses []string, chatID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, trigger := range triggers {
		for _, response := range responses {
			_, err := tx.ExecContext(ctx, `
				DELETE FROM triggers WHERE trigger = ? AND text = ? AND chat_id = ?
			`, trigger, response, chatID)
			if err != nil {
				return fmt.Errorf("failed to delete trigger: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Merge copies fromTrigger's responses to toTrigger. Collisions with
// existing toTrigger rows are reported, fromTrigger keeps its own rows.
func (r *triggerRepo) Merge(ctx context.Context, fromTrigger, toTrigger string, chatID int64) ([]domain.TriggerPair, error) {
	responses, err := r.Responses(ctx, fromTrigger, chatID)
	if err != nil {
		return nil, err
	}

	conflicts, err := r.Add(ctx, []string{toTrigger}, responses, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to merge trigger: %w", err)
	}
	return conflicts, nil
}

// Clear deletes every row for a trigger in a chat.
func (r *triggerRepo) Clear(ctx context.Context, trigger string, chatID int64) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM triggers WHERE trigger = ? AND chat_id = ?
	`, trigger, chatID)
	if err != nil {
		return fmt.Errorf("failed to clear trigger: %w", err)
	}
	return nil
}

// Responses lists all responses registered under a trigger.
func (r *triggerRepo) Responses(ctx context.Context, trigger string, chatID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT text FROM triggers WHERE trigger = ? AND chat_id = ?
	`, trigger, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query responses: %w", err)
	}
	defer rows.Close()

	var responses []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		responses = append(responses, text)
	}
	return responses, rows.Err()
}

// Triggers lists the distinct triggers of one chat.
func (r *triggerRepo) Triggers(ctx context.Context, chatID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT trigger FROM triggers WHERE chat_id = ?
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query triggers: %w", err)
	}
	defer rows.Close()

	var triggers []string
	for rows.Next() {
		var trigger string
		if err := rows.Scan(&trigger); err != nil {
			return nil, fmt.Errorf("failed to scan trigger: %w", err)
		}
		triggers = append(triggers, trigger)
	}
	return triggers, rows.Err()
}

// AllTriggers lists distinct (trigger, chat) pairs across all chats.
func (r *triggerRepo) AllTriggers(ctx context.Context) ([]domain.ChatTrigger, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT trigger, chat_id FROM triggers
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query all triggers: %w", err)
	}
	defer rows.Close()

	var entries []domain.ChatTrigger
	for rows.Next() {
		var e domain.ChatTrigger
		if err := rows.Scan(&e.Trigger, &e.ChatID); err != nil {
			return nil, fmt.Errorf("failed to scan trigger: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
