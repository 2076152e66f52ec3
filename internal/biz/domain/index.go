package domain

import (
	"sort"
	"strings"
	"sync"
)

// TriggerIndex is an in-memory projection of the trigger table: per chat,
// the distinct trigger strings sorted by descending length so that
// matching prefers the most specific trigger. It is rebuilt from the
// store at startup and replaced per chat after every trigger mutation.
//
// The index is advisory. It may be briefly stale between a store mutation
// and the following refresh, and losing it entirely is safe: rebuilding
// from the store yields an equivalent index. Existence checks that affect
// durability must go to the store, never here.
type TriggerIndex struct {
	mu     sync.RWMutex
	byChat map[int64][]string
}

// NewTriggerIndex creates an empty index.
func NewTriggerIndex() *TriggerIndex {
	return &TriggerIndex{byChat: make(map[int64][]string)}
}

// Replace swaps in the full trigger list for one chat.
func (ix *TriggerIndex) Replace(chatID int64, triggers []string) {
	sorted := make([]string, len(triggers))
	copy(sorted, triggers)
	sortByLengthDesc(sorted)

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if len(sorted) == 0 {
		delete(ix.byChat, chatID)
		return
	}
	ix.byChat[chatID] = sorted
}

// ReplaceAll swaps in the full mapping for all chats in one pass.
func (ix *TriggerIndex) ReplaceAll(entries []ChatTrigger) {
	byChat := make(map[int64][]string)
	for _, e := range entries {
		byChat[e.ChatID] = append(byChat[e.ChatID], e.Trigger)
	}
	for _, triggers := range byChat {
		sortByLengthDesc(triggers)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.byChat = byChat
}

// Triggers returns a copy of the chat's trigger list, longest first.
func (ix *TriggerIndex) Triggers(chatID int64) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	triggers := ix.byChat[chatID]
	if len(triggers) == 0 {
		return nil
	}
	out := make([]string, len(triggers))
	copy(out, triggers)
	return out
}

// Match returns every trigger in the chat's index that occurs as a
// substring of text, longest first. Matching is plain substring
// containment, not word-bounded: trigger "cat" matches inside "category".
func (ix *TriggerIndex) Match(chatID int64, text string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var matched []string
	for _, trigger := range ix.byChat[chatID] {
		if strings.Contains(text, trigger) {
			matched = append(matched, trigger)
		}
	}
	return matched
}

func sortByLengthDesc(triggers []string) {
	sort.SliceStable(triggers, func(i, j int) bool {
		return len(triggers[i]) > len(triggers[j])
	})
}
