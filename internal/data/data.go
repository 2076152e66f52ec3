package data

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/anthropics/feishu-trigger-bot/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// Repositories contains all store-backed repositories. They share one
// SQLite database; every mutation commits before the call returns.
type Repositories struct {
	Trigger repo.TriggerRepo
	User    repo.UserRepo
	ChatLog repo.ChatLogRepo

	db *sql.DB
}

// NewRepositories opens (or creates) the bot database and sets up the
// schema. Safe to call against an existing database.
func NewRepositories(dbPath string) (*Repositories, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, err
	}

	return &Repositories{
		Trigger: NewTriggerRepo(db),
		User:    NewUserRepo(db),
		ChatLog: NewChatLogRepo(db),
		db:      db,
	}, nil
}

// Close closes the database connection.
func (r *Repositories) Close() error {
	return r.db.Close()
}

// Open opens the SQLite database at dbPath and creates the schema if it
// does not exist yet.
func Open(dbPath string) (*sql.DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := setupSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func setupSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS triggers (
			trigger VARCHAR(140),
			text VARCHAR(140),
			chat_id INTEGER,
			PRIMARY KEY(trigger, text, chat_id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create triggers table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS userinfo (
			user_id INTEGER,
			chat_id INTEGER,
			first_name TEXT,
			last_name TEXT,
			count INTEGER DEFAULT 0,
			PRIMARY KEY(user_id, chat_id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create userinfo table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS chats (
			update_id INTEGER PRIMARY KEY,
			message_id INTEGER,
			user_id INTEGER,
			chat_id INTEGER,
			text TEXT,
			time DATETIME,
			edited BOOLEAN DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create chats table: %w", err)
	}

	// Indexes for the hot read paths
	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_chats_chat ON chats(chat_id)`)
	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_chats_message ON chats(chat_id, message_id)`)

	return nil
}
