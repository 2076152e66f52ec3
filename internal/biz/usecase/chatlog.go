package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/feishu-trigger-bot/internal/biz/domain"
	"github.com/anthropics/feishu-trigger-bot/internal/biz/repo"
)

// CommandPrefix marks messages addressed to the bot rather than the chat.
// Command messages are never logged.
const CommandPrefix = "/"

// ChatLogUsecase applies the bookkeeping every observed message gets:
// user profile refresh, message counter, and the append-only log.
type ChatLogUsecase struct {
	userRepo    repo.UserRepo
	chatLogRepo repo.ChatLogRepo
}

// NewChatLogUsecase creates a new chat log usecase.
func NewChatLogUsecase(userRepo repo.UserRepo, chatLogRepo repo.ChatLogRepo) *ChatLogUsecase {
	return &ChatLogUsecase{
		userRepo:    userRepo,
		chatLogRepo: chatLogRepo,
	}
}

// Observe records one inbound message.
//
// Non-edit messages refresh the sender's profile and add one to their
// counter. Edits only append a log row, flagged edited, under a fresh
// update id; the original row stays as it was. Command and empty
// messages never reach the log. A redelivered update id is absorbed
// quietly: the log keeps exactly one row per id.
func (uc *ChatLogUsecase) Observe(ctx context.Context, msg *domain.InboundMessage) error {
	if !msg.Edited {
		if err := uc.userRepo.Upsert(ctx, msg.UserID, msg.ChatID, msg.FirstName, msg.LastName); err != nil {
			return fmt.Errorf("upsert user: %w", err)
		}
		if err := uc.userRepo.IncrementCount(ctx, msg.UserID, msg.ChatID); err != nil {
			return fmt.Errorf("increment count: %w", err)
		}
	}

	if msg.Text == "" || strings.HasPrefix(msg.Text, CommandPrefix) {
		return nil
	}

	err := uc.chatLogRepo.LogMessage(ctx, &domain.LogEntry{
		UpdateID:  msg.UpdateID,
		MessageID: msg.MessageID,
		UserID:    msg.UserID,
		ChatID:    msg.ChatID,
		Text:      msg.Text,
		Time:      msg.Time,
		Edited:    msg.Edited,
	})
	if errors.Is(err, domain.ErrConflict) {
		// Platform redelivery, already logged.
		return nil
	}
	if err != nil {
		return fmt.Errorf("log message: %w", err)
	}
	return nil
}

// Append writes one log entry directly, bypassing the counter path. Used
// by the admin API to inject rows, including edited revisions.
func (uc *ChatLogUsecase) Append(ctx context.Context, entry *domain.LogEntry) error {
	return uc.chatLogRepo.LogMessage(ctx, entry)
}
