package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/anthropics/feishu-trigger-bot/internal/biz/domain"
	"github.com/anthropics/feishu-trigger-bot/internal/biz/repo"
)

// TriggerUsecase owns the trigger store operations, the in-memory trigger
// index, and the matching engine. Every mutation refreshes the affected
// chat's index entry before returning, so matching never lags further
// behind the store than one in-flight call.
type TriggerUsecase struct {
	triggerRepo repo.TriggerRepo
	index       *domain.TriggerIndex

	// rand.Rand is not safe for concurrent use.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewTriggerUsecase creates a new trigger usecase. Pass a seeded rng to
// make response selection deterministic in tests; nil gets a time seed.
func NewTriggerUsecase(triggerRepo repo.TriggerRepo, index *domain.TriggerIndex, rng *rand.Rand) *TriggerUsecase {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &TriggerUsecase{
		triggerRepo: triggerRepo,
		index:       index,
		rng:         rng,
	}
}

// RebuildIndex recomputes the whole index from the store in one pass.
func (uc *TriggerUsecase) RebuildIndex(ctx context.Context) error {
	entries, err := uc.triggerRepo.AllTriggers(ctx)
	if err != nil {
		return fmt.Errorf("list all triggers: %w", err)
	}
	uc.index.ReplaceAll(entries)
	return nil
}

// RefreshChat recomputes one chat's index entry from the store.
func (uc *TriggerUsecase) RefreshChat(ctx context.Context, chatID int64) error {
	triggers, err := uc.triggerRepo.Triggers(ctx, chatID)
	if err != nil {
		return fmt.Errorf("list chat triggers: %w", err)
	}
	uc.index.Replace(chatID, triggers)
	return nil
}

// Add validates and inserts the cross-product of triggers and responses.
// Already-existing pairs come back as conflicts, not as an error.
func (uc *TriggerUsecase) Add(ctx context.Context, chatID int64, triggers, responses []string) ([]domain.TriggerPair, error) {
	if err := domain.ValidateTriggers(triggers); err != nil {
		return nil, err
	}
	if err := domain.ValidateResponses(responses); err != nil {
		return nil, err
	}

	conflicts, err := uc.triggerRepo.Add(ctx, triggers, responses, chatID)
	if err != nil {
		return nil, fmt.Errorf("add triggers: %w", err)
	}
	if err := uc.RefreshChat(ctx, chatID); err != nil {
		return conflicts, err
	}
	return conflicts, nil
}

// Delete removes the matching pairs. Absent pairs are not an error.
func (uc *TriggerUsecase) Delete(ctx context.Context, chatID int64, triggers, responses []string) error {
	if err := uc.triggerRepo.Delete(ctx, triggers, responses, chatID); err != nil {
		return fmt.Errorf("delete triggers: %w", err)
	}
	return uc.RefreshChat(ctx, chatID)
}

// Merge copies every response under fromTrigger to toTrigger.
func (uc *TriggerUsecase) Merge(ctx context.Context, chatID int64, fromTrigger, toTrigger string) ([]domain.TriggerPair, error) {
	conflicts, err := uc.triggerRepo.Merge(ctx, fromTrigger, toTrigger, chatID)
	if err != nil {
		return nil, fmt.Errorf("merge triggers: %w", err)
	}
	if err := uc.RefreshChat(ctx, chatID); err != nil {
		return conflicts, err
	}
	return conflicts, nil
}

// Clear deletes every response registered under a trigger.
func (uc *TriggerUsecase) Clear(ctx context.Context, chatID int64, trigger string) error {
	if err := uc.triggerRepo.Clear(ctx, trigger, chatID); err != nil {
		return fmt.Errorf("clear trigger: %w", err)
	}
	return uc.RefreshChat(ctx, chatID)
}

// Responses lists all responses registered under a trigger.
func (uc *TriggerUsecase) Responses(ctx context.Context, chatID int64, trigger string) ([]string, error) {
	return uc.triggerRepo.Responses(ctx, trigger, chatID)
}

// Triggers lists the chat's indexed triggers, longest first.
func (uc *TriggerUsecase) Triggers(chatID int64) []string {
	return uc.index.Triggers(chatID)
}

// Match returns every indexed trigger contained in text.
func (uc *TriggerUsecase) Match(chatID int64, text string) []string {
	return uc.index.Match(chatID, text)
}

// RandomResponse picks one response under a trigger uniformly at random.
// A trigger with no responses fails with domain.ErrNotFound; callers
// should confirm the trigger is indexed first.
func (uc *TriggerUsecase) RandomResponse(ctx context.Context, chatID int64, trigger string) (string, error) {
	responses, err := uc.triggerRepo.Responses(ctx, trigger, chatID)
	if err != nil {
		return "", fmt.Errorf("list responses: %w", err)
	}
	if len(responses) == 0 {
		return "", fmt.Errorf("trigger %q: %w", trigger, domain.ErrNotFound)
	}
	return responses[uc.intn(len(responses))], nil
}

// Respond runs the matching engine for an incoming message: match every
// indexed trigger against the text, pick one matched trigger uniformly at
// random, then pick one of its responses uniformly at random. No match is
// a normal outcome, reported as ok=false.
func (uc *TriggerUsecase) Respond(ctx context.Context, chatID int64, text string) (string, bool, error) {
	matched := uc.index.Match(chatID, text)
	if len(matched) == 0 {
		return "", false, nil
	}

	trigger := matched[uc.intn(len(matched))]
	response, err := uc.RandomResponse(ctx, chatID, trigger)
	if err != nil {
		return "", false, err
	}
	return response, true, nil
}

func (uc *TriggerUsecase) intn(n int) int {
	uc.rngMu.Lock()
	defer uc.rngMu.Unlock()
	return uc.rng.Intn(n)
}
