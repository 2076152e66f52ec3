package domain

import "fmt"

// Length bounds for trigger and response text, enforced at the boundary
// layer before anything reaches the store.
const (
	TriggerMinLen  = 2
	TriggerMaxLen  = 140
	ResponseMaxLen = 140
)

// TriggerPair is one (trigger, response) association within a chat.
type TriggerPair struct {
	Trigger  string `json:"trigger"`
	Response string `json:"response"`
}

// ChatTrigger is a distinct trigger string together with the chat it
// belongs to, used for global index rebuilds.
type ChatTrigger struct {
	Trigger string
	ChatID  int64
}

// ValidateTriggers checks trigger length bounds.
func ValidateTriggers(triggers []string) error {
	for _, t := range triggers {
		if len(t) < TriggerMinLen || len(t) > TriggerMaxLen {
			return fmt.Errorf("%w: trigger %q must be %d-%d characters", ErrValidation, t, TriggerMinLen, TriggerMaxLen)
		}
	}
	return nil
}

// ValidateResponses checks response length bounds.
func ValidateResponses(responses []string) error {
	for _, r := range responses {
		if len(r) == 0 || len(r) > ResponseMaxLen {
			return fmt.Errorf("%w: response must be 1-%d characters", ErrValidation, ResponseMaxLen)
		}
	}
	return nil
}
