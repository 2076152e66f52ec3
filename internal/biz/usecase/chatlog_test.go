package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/anthropics/feishu-trigger-bot/internal/biz/domain"
)

type userKey struct {
	userID int64
	chatID int64
}

type mockUserRepo struct {
	names  map[userKey]string
	counts map[userKey]int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		names:  make(map[userKey]string),
		counts: make(map[userKey]int64),
	}
}

func (m *mockUserRepo) Upsert(ctx context.Context, userID, chatID int64, firstName, lastName string) error {
	m.names[userKey{userID, chatID}] = firstName + " " + lastName
	return nil
}

func (m *mockUserRepo) IncrementCount(ctx context.Context, userID, chatID int64) error {
	m.counts[userKey{userID, chatID}]++
	return nil
}

func (m *mockUserRepo) ChatStats(ctx context.Context, chatID int64) ([]domain.UserStat, error) {
	var stats []domain.UserStat
	for key, count := range m.counts {
		if key.chatID == chatID {
			stats = append(stats, domain.UserStat{UserID: key.userID, Count: count})
		}
	}
	return stats, nil
}

func inbound(updateID int64, text string) *domain.InboundMessage {
	return &domain.InboundMessage{
		UpdateID:  updateID,
		MessageID: 100,
		ChatID:    1,
		UserID:    7,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Text:      text,
		Time:      time.Unix(1700000000, 0),
	}
}

func TestObserve_CountsAndLogs(t *testing.T) {
	users := newMockUserRepo()
	logs := &mockChatLogRepo{}
	uc := NewChatLogUsecase(users, logs)

	if err := uc.Observe(context.Background(), inbound(1, "hello world")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if users.counts[userKey{7, 1}] != 1 {
		t.Errorf("Expected counter 1, got %d", users.counts[userKey{7, 1}])
	}
	if len(logs.entries) != 1 || logs.entries[0].Text != "hello world" {
		t.Errorf("Expected message logged, got %v", logs.entries)
	}
}

func TestObserve_CommandCountedNotLogged(t *testing.T) {
	users := newMockUserRepo()
	logs := &mockChatLogRepo{}
	uc := NewChatLogUsecase(users, logs)

	if err := uc.Observe(context.Background(), inbound(1, "/stats")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if users.counts[userKey{7, 1}] != 1 {
		t.Errorf("Expected command to count, got %d", users.counts[userKey{7, 1}])
	}
	if len(logs.entries) != 0 {
		t.Errorf("Expected command not logged, got %v", logs.entries)
	}
}

func TestObserve_EmptyTextNotLogged(t *testing.T) {
	users := newMockUserRepo()
	logs := &mockChatLogRepo{}
	uc := NewChatLogUsecase(users, logs)

	if err := uc.Observe(context.Background(), inbound(1, "")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(logs.entries) != 0 {
		t.Errorf("Expected empty text not logged, got %v", logs.entries)
	}
}

func TestObserve_EditSkipsCounter(t *testing.T) {
	users := newMockUserRepo()
	logs := &mockChatLogRepo{}
	uc := NewChatLogUsecase(users, logs)

	msg := inbound(2, "fixed typo")
	msg.Edited = true
	if err := uc.Observe(context.Background(), msg); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if users.counts[userKey{7, 1}] != 0 {
		t.Errorf("Expected edit not to count, got %d", users.counts[userKey{7, 1}])
	}
	if len(logs.entries) != 1 || !logs.entries[0].Edited {
		t.Errorf("Expected edited row logged, got %v", logs.entries)
	}
}

func TestObserve_RedeliveryAbsorbed(t *testing.T) {
	users := newMockUserRepo()
	logs := &mockChatLogRepo{}
	uc := NewChatLogUsecase(users, logs)
	ctx := context.Background()

	if err := uc.Observe(ctx, inbound(5, "once")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := uc.Observe(ctx, inbound(5, "once")); err != nil {
		t.Fatalf("Expected redelivery to be absorbed, got %v", err)
	}

	if len(logs.entries) != 1 {
		t.Errorf("Expected one logged row, got %d", len(logs.entries))
	}
}
