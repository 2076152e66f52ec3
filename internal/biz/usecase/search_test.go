package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/anthropics/feishu-trigger-bot/internal/biz/domain"
)

type mockChatLogRepo struct {
	entries []*domain.LogEntry
	edits   []domain.HistoryRow
}

func (m *mockChatLogRepo) LogMessage(ctx context.Context, entry *domain.LogEntry) error {
	for _, existing := range m.entries {
		if existing.UpdateID == entry.UpdateID {
			return domain.ErrConflict
		}
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockChatLogRepo) SearchText(ctx context.Context, keywords []string, chatID int64, limit int) ([]domain.SearchRow, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	var result []domain.SearchRow
	for _, entry := range m.entries {
		if entry.ChatID != chatID {
			continue
		}
		hit := true
		for _, keyword := range keywords {
			if !strings.Contains(entry.Text, keyword) {
				hit = false
				break
			}
		}
		if hit {
			result = append(result, domain.SearchRow{Time: entry.Time, Text: entry.Text})
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

func (m *mockChatLogRepo) RecentEdits(ctx context.Context, chatID int64, limit int) ([]domain.HistoryRow, error) {
	return m.edits, nil
}

func TestSearch_EmptyKeywords(t *testing.T) {
	uc := NewSearchUsecase(&mockChatLogRepo{})

	rows, err := uc.Search(context.Background(), 1, nil, 5)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rows != nil {
		t.Errorf("Expected no rows for empty keywords, got %v", rows)
	}
}

func TestSearch_NewestFirst(t *testing.T) {
	base := time.Unix(1700000000, 0)
	repo := &mockChatLogRepo{entries: []*domain.LogEntry{
		{UpdateID: 1, ChatID: 1, Text: "apple pie", Time: base},
		{UpdateID: 2, ChatID: 1, Text: "apple juice", Time: base.Add(2 * time.Hour)},
		{UpdateID: 3, ChatID: 1, Text: "apple cake", Time: base.Add(time.Hour)},
	}}
	uc := NewSearchUsecase(repo)

	rows, err := uc.Search(context.Background(), 1, []string{"apple"}, 5)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	if rows[0].Text != "apple juice" || rows[1].Text != "apple cake" || rows[2].Text != "apple pie" {
		t.Errorf("Expected newest first, got %v", rows)
	}
}

func TestSearch_TruncatesPreview(t *testing.T) {
	repo := &mockChatLogRepo{entries: []*domain.LogEntry{
		{UpdateID: 1, ChatID: 1, Text: "l1\nl2\nl3\nl4\nl5", Time: time.Unix(1700000000, 0)},
	}}
	uc := NewSearchUsecase(repo)

	rows, err := uc.Search(context.Background(), 1, []string{"l1"}, 5)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rows[0].Text != "l1\nl2\nl3\n..." {
		t.Errorf("Expected 3-line preview, got %q", rows[0].Text)
	}
}

func TestSearch_ShortTextKeptWhole(t *testing.T) {
	repo := &mockChatLogRepo{entries: []*domain.LogEntry{
		{UpdateID: 1, ChatID: 1, Text: "l1\nl2", Time: time.Unix(1700000000, 0)},
	}}
	uc := NewSearchUsecase(repo)

	rows, _ := uc.Search(context.Background(), 1, []string{"l1"}, 5)
	if rows[0].Text != "l1\nl2" {
		t.Errorf("Expected untouched text, got %q", rows[0].Text)
	}
}
