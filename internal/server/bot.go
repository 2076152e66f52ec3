package server

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/anthropics/feishu-trigger-bot/internal/biz/domain"
	"github.com/anthropics/feishu-trigger-bot/internal/biz/repo"
	"github.com/anthropics/feishu-trigger-bot/internal/biz/usecase"
	"github.com/anthropics/feishu-trigger-bot/internal/conf"
	"github.com/anthropics/feishu-trigger-bot/internal/infra/feishu"
	"github.com/anthropics/feishu-trigger-bot/internal/service"
)

// BotServer wires Feishu events to the trigger bot: every observed
// message is logged and counted, command messages go to the command
// service, everything else runs through the matching engine.
type BotServer struct {
	feishuClient *feishu.Client
	messageRepo  repo.MessageRepo
	chatLogUC    *usecase.ChatLogUsecase
	triggerUC    *usecase.TriggerUsecase
	cmdSvc       *service.CommandService

	banned map[string]bool
	admins map[string]bool

	// Message deduplication cache
	seenMsgsMu sync.RWMutex
	seenMsgs   map[string]time.Time // msgID -> timestamp

	// Chat owner cache for the admin check
	ownersMu sync.RWMutex
	owners   map[string]string // chatKey -> owner open_id

	// Sender name cache, refreshed on miss
	membersMu sync.RWMutex
	members   map[string]map[string]string // chatKey -> open_id -> name
}

// NewBotServer creates a new bot server
func NewBotServer(
	feishuClient *feishu.Client,
	messageRepo repo.MessageRepo,
	chatLogUC *usecase.ChatLogUsecase,
	triggerUC *usecase.TriggerUsecase,
	cmdSvc *service.CommandService,
	botCfg conf.BotConfig,
) *BotServer {
	banned := make(map[string]bool, len(botCfg.BanIDs))
	for _, id := range botCfg.BanIDs {
		banned[id] = true
	}
	admins := make(map[string]bool, len(botCfg.AdminIDs))
	for _, id := range botCfg.AdminIDs {
		admins[id] = true
	}

	return &BotServer{
		feishuClient: feishuClient,
		messageRepo:  messageRepo,
		chatLogUC:    chatLogUC,
		triggerUC:    triggerUC,
		cmdSvc:       cmdSvc,
		banned:       banned,
		admins:       admins,
		seenMsgs:     make(map[string]time.Time),
		owners:       make(map[string]string),
		members:      make(map[string]map[string]string),
	}
}

// Start starts the server (blocking)
func (s *BotServer) Start() error {
	s.feishuClient.OnMessage(s.handleMessage)
	return s.feishuClient.Start()
}

// Stop stops the server
func (s *BotServer) Stop() {
	s.feishuClient.Stop()
}

// handleMessage processes one Feishu message end to end
func (s *BotServer) handleMessage(msg *feishu.Message) {
	if s.isMessageSeen(msg.MsgID) {
		fmt.Printf("[Server] Duplicate message ignored: %s\n", msg.MsgID)
		return
	}
	s.markMessageSeen(msg.MsgID)

	senderKey := ""
	if msg.Sender != nil {
		senderKey = msg.Sender.SenderID
	}
	if s.banned[senderKey] {
		return
	}

	ctx := context.Background()
	chatID := hashID(msg.ChatID)

	firstName, lastName := splitName(s.resolveSenderName(msg.ChatID, senderKey))
	inbound := &domain.InboundMessage{
		UpdateID:  hashID(updateKey(msg.MsgID, msg.CreateTime)),
		MessageID: hashID(msg.MsgID),
		ChatID:    chatID,
		UserID:    hashID(senderKey),
		FirstName: firstName,
		LastName:  lastName,
		Text:      msg.Content,
		Time:      time.UnixMilli(msg.CreateTime),
	}
	if err := s.chatLogUC.Observe(ctx, inbound); err != nil {
		fmt.Printf("[Server] Failed to observe message: %v\n", err)
	}

	if strings.HasPrefix(msg.Content, usecase.CommandPrefix) {
		s.runCommand(ctx, msg, chatID, senderKey)
		return
	}

	response, ok, err := s.triggerUC.Respond(ctx, chatID, msg.Content)
	if err != nil {
		fmt.Printf("[Server] Failed to pick response: %v\n", err)
		return
	}
	if !ok {
		return
	}
	if err := s.messageRepo.SendText(ctx, msg.ChatID, response); err != nil {
		fmt.Printf("[Server] Failed to send response: %v\n", err)
	}
}

func (s *BotServer) runCommand(ctx context.Context, msg *feishu.Message, chatID int64, senderKey string) {
	req := &service.CommandRequest{
		ChatID: chatID,
		Text:   msg.Content,
		IsAdmin: func(ctx context.Context) bool {
			return s.isAdmin(ctx, msg.ChatID, senderKey)
		},
	}

	replies, err := s.cmdSvc.Execute(ctx, req)
	if err != nil {
		fmt.Printf("[Server] Command failed: %v\n", err)
		return
	}
	for _, reply := range replies {
		if err := s.messageRepo.SendText(ctx, msg.ChatID, reply); err != nil {
			fmt.Printf("[Server] Failed to send reply: %v\n", err)
		}
	}
}

// isAdmin treats the chat owner and the configured allowlist as admins.
func (s *BotServer) isAdmin(ctx context.Context, chatKey, senderKey string) bool {
	if senderKey == "" {
		return false
	}
	if s.admins[senderKey] {
		return true
	}

	s.ownersMu.RLock()
	owner, ok := s.owners[chatKey]
	s.ownersMu.RUnlock()

	if !ok {
		var err error
		owner, err = s.messageRepo.ChatOwner(ctx, chatKey)
		if err != nil {
			fmt.Printf("[Server] Failed to resolve chat owner: %v\n", err)
			return false
		}
		s.ownersMu.Lock()
		s.owners[chatKey] = owner
		s.ownersMu.Unlock()
	}

	return owner == senderKey
}

// resolveSenderName looks up the sender's display name from the chat
// member list, fetching and caching the list on a miss.
func (s *BotServer) resolveSenderName(chatKey, senderKey string) string {
	if senderKey == "" {
		return ""
	}

	s.membersMu.RLock()
	name, ok := s.members[chatKey][senderKey]
	s.membersMu.RUnlock()
	if ok {
		return name
	}

	members, err := s.feishuClient.GetChatMembers(chatKey)
	if err != nil {
		return ""
	}

	byID := make(map[string]string, len(members))
	for _, m := range members {
		byID[m.MemberID] = m.Name
	}

	s.membersMu.Lock()
	s.members[chatKey] = byID
	s.membersMu.Unlock()

	return byID[senderKey]
}

// splitName maps Feishu's single display name onto the store's
// first/last name fields.
func splitName(name string) (string, string) {
	parts := strings.SplitN(name, " ", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return name, ""
}

func (s *BotServer) isMessageSeen(msgID string) bool {
	s.seenMsgsMu.RLock()
	defer s.seenMsgsMu.RUnlock()
	_, seen := s.seenMsgs[msgID]
	return seen
}

func (s *BotServer) markMessageSeen(msgID string) {
	s.seenMsgsMu.Lock()
	defer s.seenMsgsMu.Unlock()

	now := time.Now()
	s.seenMsgs[msgID] = now

	// Drop entries older than an hour to bound the cache
	for id, t := range s.seenMsgs {
		if now.Sub(t) > time.Hour {
			delete(s.seenMsgs, id)
		}
	}
}
