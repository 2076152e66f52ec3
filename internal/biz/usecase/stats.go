package usecase

import (
	"context"
	"fmt"

	"github.com/anthropics/feishu-trigger-bot/internal/biz/domain"
	"github.com/anthropics/feishu-trigger-bot/internal/biz/repo"
)

// StatsUsecase formats per-user message counters for display.
type StatsUsecase struct {
	userRepo repo.UserRepo
}

// NewStatsUsecase creates a new stats usecase.
func NewStatsUsecase(userRepo repo.UserRepo) *StatsUsecase {
	return &StatsUsecase{userRepo: userRepo}
}

// ChatStats returns the chat's counters, highest first.
func (uc *StatsUsecase) ChatStats(ctx context.Context, chatID int64) ([]domain.UserStat, error) {
	stats, err := uc.userRepo.ChatStats(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("chat stats: %w", err)
	}
	return stats, nil
}

// ChatStatsChunks renders the chat's counters as sendable message chunks,
// one line per user, split at line boundaries. Output past the chunk cap
// is dropped.
func (uc *StatsUsecase) ChatStatsChunks(ctx context.Context, chatID int64) ([]string, error) {
	stats, err := uc.ChatStats(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return nil, nil
	}
	return domain.SplitChunks(domain.FormatStats(stats), domain.ChunkSize, domain.MaxChunks), nil
}
