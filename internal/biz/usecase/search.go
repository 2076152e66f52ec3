package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/anthropics/feishu-trigger-bot/internal/biz/domain"
	"github.com/anthropics/feishu-trigger-bot/internal/biz/repo"
)

// Search results show at most this many lines of each message.
const searchPreviewLines = 3

// SearchUsecase wraps the message-log read paths: keyword search and
// recent edit histories.
type SearchUsecase struct {
	chatLogRepo repo.ChatLogRepo
}

// NewSearchUsecase creates a new search usecase.
func NewSearchUsecase(chatLogRepo repo.ChatLogRepo) *SearchUsecase {
	return &SearchUsecase{chatLogRepo: chatLogRepo}
}

// Search finds messages containing every keyword, newest first, and trims
// each text to a short preview. An empty keyword list matches nothing.
func (uc *SearchUsecase) Search(ctx context.Context, chatID int64, keywords []string, limit int) ([]domain.SearchRow, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	rows, err := uc.chatLogRepo.SearchText(ctx, keywords, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("search text: %w", err)
	}

	// The store accumulates rows in id-set order, so newest-first needs
	// an explicit sort here.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Time.After(rows[j].Time)
	})

	for i := range rows {
		rows[i].Text = previewText(rows[i].Text)
	}
	return rows, nil
}

// RecentEdits returns the edit histories of the most recently edited
// messages, each history oldest first.
func (uc *SearchUsecase) RecentEdits(ctx context.Context, chatID int64, limit int) ([]domain.HistoryRow, error) {
	rows, err := uc.chatLogRepo.RecentEdits(ctx, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent edits: %w", err)
	}
	return rows, nil
}

// previewText keeps the first searchPreviewLines lines and marks the cut.
func previewText(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= searchPreviewLines {
		return text
	}
	return strings.Join(append(lines[:searchPreviewLines], "..."), "\n")
}
