package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/anthropics/feishu-trigger-bot/internal/biz/domain"
	"github.com/anthropics/feishu-trigger-bot/internal/biz/repo"
)

// chatLogRepo implements the message log repository on SQLite
type chatLogRepo struct {
	db *sql.DB
}

// NewChatLogRepo creates a new chat log repository
func NewChatLogRepo(db *sql.DB) repo.ChatLogRepo {
	return &chatLogRepo{db: db}
}

// LogMessage appends one row. update_id is the primary key, so a
// duplicate insert affects zero rows and surfaces as ErrConflict.
func (r *chatLogRepo) LogMessage(ctx context.Context, entry *domain.LogEntry) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO chats (update_id, message_id, text, chat_id, user_id, time, edited)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.UpdateID, entry.MessageID, entry.Text, entry.ChatID, entry.UserID, entry.Time.Unix(), entry.Edited)
	if err != nil {
		return fmt.Errorf("failed to log message: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update %d: %w", entry.UpdateID, domain.ErrConflict)
	}
	return nil
}

// SearchText computes, per keyword, the set of update ids whose text
// contains the keyword (case-sensitive substring via instr), intersects
// the sets, and fetches the joined rows. Iteration follows the first
// keyword's result order restricted to the intersection; rows are not
// time-sorted here, that is the caller's job.
func (r *chatLogRepo) SearchText(ctx context.Context, keywords []string, chatID int64, limit int) ([]domain.SearchRow, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	first, err := r.keywordIDs(ctx, chatID, keywords[0])
	if err != nil {
		return nil, err
	}

	matched := make(map[int64]bool, len(first))
	for _, id := range first {
		matched[id] = true
	}
	for _, keyword := range keywords[1:] {
		ids, err := r.keywordIDs(ctx, chatID, keyword)
		if err != nil {
			return nil, err
		}
		hits := make(map[int64]bool, len(ids))
		for _, id := range ids {
			if matched[id] {
				hits[id] = true
			}
		}
		matched = hits
	}

	var result []domain.SearchRow
	for _, id := range first {
		if !matched[id] {
			continue
		}
		row := r.db.QueryRowContext(ctx, `
			SELECT userinfo.first_name, userinfo.last_name, chats.time, chats.text
			FROM chats
			LEFT JOIN userinfo ON chats.user_id = userinfo.user_id AND chats.chat_id = userinfo.chat_id
			WHERE chats.update_id = ? AND chats.chat_id = ?
		`, id, chatID)

		var sr domain.SearchRow
		var firstName, lastName sql.NullString
		var unix int64
		if err := row.Scan(&firstName, &lastName, &unix, &sr.Text); err != nil {
			if err == sql.ErrNoRows {
				continue
			}
			return nil, fmt.Errorf("failed to fetch search row: %w", err)
		}
		sr.FirstName = firstName.String
		sr.LastName = lastName.String
		sr.Time = time.Unix(unix, 0)

		result = append(result, sr)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

// keywordIDs returns the update ids of a chat whose text contains the
// keyword as a substring.
func (r *chatLogRepo) keywordIDs(ctx context.Context, chatID int64, keyword string) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT update_id FROM chats WHERE chat_id = ? AND instr(text, ?) > 0
	`, chatID, keyword)
	if err != nil {
		return nil, fmt.Errorf("failed to query keyword: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan update id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RecentEdits finds the most recently edited limit distinct message ids,
// then returns each message's full log history oldest first so the edit
// chain reads chronologically.
func (r *chatLogRepo) RecentEdits(ctx context.Context, chatID int64, limit int) ([]domain.HistoryRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT message_id, MAX(time) AS last_edit
		FROM chats
		WHERE chat_id = ? AND edited = 1
		GROUP BY message_id
		ORDER BY last_edit DESC
		LIMIT ?
	`, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query edited messages: %w", err)
	}
	defer rows.Close()

	var messageIDs []int64
	for rows.Next() {
		var id int64
		var lastEdit int64
		if err := rows.Scan(&id, &lastEdit); err != nil {
			return nil, fmt.Errorf("failed to scan message id: %w", err)
		}
		messageIDs = append(messageIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var result []domain.HistoryRow
	for _, messageID := range messageIDs {
		history, err := r.messageHistory(ctx, chatID, messageID)
		if err != nil {
			return nil, err
		}
		result = append(result, history...)
	}
	return result, nil
}

func (r *chatLogRepo) messageHistory(ctx context.Context, chatID, messageID int64) ([]domain.HistoryRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT userinfo.first_name, userinfo.last_name, chats.time, chats.text, chats.edited
		FROM chats
		LEFT JOIN userinfo ON chats.user_id = userinfo.user_id AND chats.chat_id = userinfo.chat_id
		WHERE chats.message_id = ? AND chats.chat_id = ?
		ORDER BY chats.time
	`, messageID, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query message history: %w", err)
	}
	defer rows.Close()

	var history []domain.HistoryRow
	for rows.Next() {
		var h domain.HistoryRow
		var firstName, lastName sql.NullString
		var unix int64
		if err := rows.Scan(&firstName, &lastName, &unix, &h.Text, &h.Edited); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		h.FirstName = firstName.String
		h.LastName = lastName.String
		h.Time = time.Unix(unix, 0)
		history = append(history, h)
	}
	return history, rows.Err()
}
