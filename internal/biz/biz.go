package biz

import (
	"github.com/anthropics/feishu-trigger-bot/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Trigger *usecase.TriggerUsecase
	Search  *usecase.SearchUsecase
	Stats   *usecase.StatsUsecase
	ChatLog *usecase.ChatLogUsecase
}
