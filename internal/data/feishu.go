package data

import (
	"context"

	"github.com/anthropics/feishu-trigger-bot/internal/biz/repo"
	"github.com/anthropics/feishu-trigger-bot/internal/infra/feishu"
)

// feishuRepo implements the outbound message repository on the Feishu API
type feishuRepo struct {
	client *feishu.Client
}

// NewFeishuRepo creates a new Feishu message repository
func NewFeishuRepo(client *feishu.Client) repo.MessageRepo {
	return &feishuRepo{client: client}
}

// SendText sends a text message
func (r *feishuRepo) SendText(ctx context.Context, chatKey, text string) error {
	return r.client.SendText(chatKey, text)
}

// ChatOwner resolves the chat's owner open_id
func (r *feishuRepo) ChatOwner(ctx context.Context, chatKey string) (string, error) {
	info, err := r.client.GetChatInfo(chatKey)
	if err != nil {
		return "", err
	}
	return info.OwnerID, nil
}
