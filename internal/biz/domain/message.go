package domain

import "time"

// LogEntry is one row of the append-only message log. An edited message
// is logged as a new entry with its own update id and Edited set; the
// original row is never mutated.
type LogEntry struct {
	UpdateID  int64     `json:"update_id"`
	MessageID int64     `json:"message_id"`
	UserID    int64     `json:"user_id"`
	ChatID    int64     `json:"chat_id"`
	Text      string    `json:"text"`
	Time      time.Time `json:"time"`
	Edited    bool      `json:"edited"`
}

// InboundMessage is what the transport layer hands to the core for each
// observed chat message.
type InboundMessage struct {
	UpdateID  int64
	MessageID int64
	ChatID    int64
	UserID    int64
	FirstName string
	LastName  string
	Text      string
	Time      time.Time
	Edited    bool
}

// SearchRow is one message returned by a keyword search, joined with the
// sender's stored name.
type SearchRow struct {
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Time      time.Time `json:"time"`
	Text      string    `json:"text"`
}

// HistoryRow is one log row in an edit history, original or revision.
type HistoryRow struct {
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Time      time.Time `json:"time"`
	Text      string    `json:"text"`
	Edited    bool      `json:"edited"`
}
