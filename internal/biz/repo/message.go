package repo

import "context"

// MessageRepo is the outbound chat-platform interface.
// Responsible for sending replies and resolving chat administrators; the
// core never talks to the platform directly.
type MessageRepo interface {
	// SendText sends a text message to a chat.
	SendText(ctx context.Context, chatKey, text string) error

	// ChatOwner returns the platform id of the chat's owner.
	ChatOwner(ctx context.Context, chatKey string) (string, error)
}
