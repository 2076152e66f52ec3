package domain

import (
	"fmt"
	"strings"
)

// UserStat is one user's message counter for a chat.
type UserStat struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	UserID    int64  `json:"user_id"`
	Count     int64  `json:"count"`
}

// Line formats the stat the way it is shown in chat.
func (s UserStat) Line() string {
	return fmt.Sprintf("%s %s (%d) => %d", s.FirstName, s.LastName, s.UserID, s.Count)
}

// FormatStats renders stats as one line per user, caller-supplied order.
func FormatStats(stats []UserStat) string {
	lines := make([]string, len(stats))
	for i, s := range stats {
		lines[i] = s.Line()
	}
	return strings.Join(lines, "\n")
}

// Chat platforms reject oversized messages, so serialized stats are split
// into chunks. MaxChunks bounds pathological inputs; anything past the
// cap is dropped.
const (
	ChunkSize = 4000
	MaxChunks = 20
)

// SplitChunks splits s into chunks of at most size bytes, breaking at the
// last newline inside each window when one exists and at the window edge
// otherwise. At most maxChunks chunks are returned; the remainder of an
// input that still exceeds the cap is silently dropped.
func SplitChunks(s string, size, maxChunks int) []string {
	if s == "" {
		return nil
	}

	var chunks []string
	for len(s) > 0 && len(chunks) < maxChunks {
		if len(s) <= size {
			chunks = append(chunks, s)
			break
		}

		cut := size
		if nl := strings.LastIndexByte(s[:size], '\n'); nl > 0 {
			cut = nl
		}
		chunks = append(chunks, s[:cut])

		s = s[cut:]
		s = strings.TrimPrefix(s, "\n")
	}
	return chunks
}
