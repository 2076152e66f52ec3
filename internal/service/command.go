package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/feishu-trigger-bot/internal/biz/domain"
	"github.com/anthropics/feishu-trigger-bot/internal/biz/usecase"
)

const timeLayout = "2006-01-02 15:04:05"

const helpText = `Available commands:
User:
/add <trigger_1>|...|<trigger_n>@<text_1>|...|<text_n>
/del <trigger_1>|...|<trigger_n>@<text_1>|...|<text_n>
/list <trigger>
/edits  - show recently edited messages
/search <keyword1> <keyword2> ...
/stats
/echo <text>
/help
Admin only:
/merge trigger1=>trigger2  - copy all responses of trigger1 to trigger2
/clear <trigger>
/triggers  - list all triggers in this chat`

// CommandRequest is one parsed-enough command invocation. IsAdmin is a
// closure supplied by the transport layer; the core never resolves chat
// administrators itself.
type CommandRequest struct {
	ChatID  int64
	Text    string // full message text, starting with the command prefix
	IsAdmin func(ctx context.Context) bool
}

// CommandService executes chat commands against the trigger, search and
// stats usecases and renders the replies.
type CommandService struct {
	triggerUC *usecase.TriggerUsecase
	searchUC  *usecase.SearchUsecase
	statsUC   *usecase.StatsUsecase

	searchLimit int
	editsLimit  int
}

// NewCommandService creates a new command service
func NewCommandService(
	triggerUC *usecase.TriggerUsecase,
	searchUC *usecase.SearchUsecase,
	statsUC *usecase.StatsUsecase,
	searchLimit, editsLimit int,
) *CommandService {
	return &CommandService{
		triggerUC:   triggerUC,
		searchUC:    searchUC,
		statsUC:     statsUC,
		searchLimit: searchLimit,
		editsLimit:  editsLimit,
	}
}

// Execute runs one command and returns the replies to send, in order.
// Unknown commands return no replies.
func (s *CommandService) Execute(ctx context.Context, req *CommandRequest) ([]string, error) {
	name, args := splitCommand(req.Text)

	switch name {
	case "add":
		return s.add(ctx, req.ChatID, args)
	case "del":
		return s.del(ctx, req.ChatID, args)
	case "list":
		return s.list(ctx, req.ChatID, args)
	case "edits":
		return s.edits(ctx, req.ChatID)
	case "search":
		return s.search(ctx, req.ChatID, args)
	case "stats":
		return s.stats(ctx, req.ChatID)
	case "echo":
		if args == "" {
			return nil, nil
		}
		return []string{args}, nil
	case "help":
		return []string{helpText}, nil
	case "triggers":
		return s.adminOnly(ctx, req, s.listTriggers)
	case "merge":
		return s.adminOnly(ctx, req, func(ctx context.Context, chatID int64) ([]string, error) {
			return s.merge(ctx, chatID, args)
		})
	case "clear":
		return s.adminOnly(ctx, req, func(ctx context.Context, chatID int64) ([]string, error) {
			return s.clear(ctx, chatID, args)
		})
	default:
		return nil, nil
	}
}

func (s *CommandService) adminOnly(ctx context.Context, req *CommandRequest, fn func(context.Context, int64) ([]string, error)) ([]string, error) {
	if req.IsAdmin == nil || !req.IsAdmin(ctx) {
		return []string{"Admin only"}, nil
	}
	return fn(ctx, req.ChatID)
}

func (s *CommandService) add(ctx context.Context, chatID int64, args string) ([]string, error) {
	triggers, responses, ok := parsePairs(args)
	if !ok {
		return []string{"Usage: /add <trigger_1>|...|<trigger_n>@<text_1>|...|<text_n>"}, nil
	}

	conflicts, err := s.triggerUC.Add(ctx, chatID, triggers, responses)
	if errors.Is(err, domain.ErrValidation) {
		return []string{fmt.Sprintf("%d<=len(trigger)<=%d, len(text)<=%d",
			domain.TriggerMinLen, domain.TriggerMaxLen, domain.ResponseMaxLen)}, nil
	}
	if err != nil {
		return nil, err
	}

	var replies []string
	if len(conflicts) > 0 {
		replies = append(replies, formatConflicts(conflicts))
	}
	return append(replies, "done!"), nil
}

func (s *CommandService) del(ctx context.Context, chatID int64, args string) ([]string, error) {
	triggers, responses, ok := parsePairs(args)
	if !ok {
		return nil, nil
	}
	if err := s.triggerUC.Delete(ctx, chatID, triggers, responses); err != nil {
		return nil, err
	}
	return []string{"deleted!"}, nil
}

func (s *CommandService) list(ctx context.Context, chatID int64, trigger string) ([]string, error) {
	if trigger == "" {
		return nil, nil
	}
	responses, err := s.triggerUC.Responses(ctx, chatID, trigger)
	if err != nil {
		return nil, err
	}
	if len(responses) == 0 {
		return []string{"Empty list!"}, nil
	}
	return []string{strings.Join(responses, "\n")}, nil
}

func (s *CommandService) edits(ctx context.Context, chatID int64) ([]string, error) {
	rows, err := s.searchUC.RecentEdits(ctx, chatID, s.editsLimit)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []string{"No edits!"}, nil
	}

	lines := make([]string, len(rows))
	for i, row := range rows {
		tag := "[ORI]"
		if row.Edited {
			tag = "[EDITED]"
		}
		lines[i] = fmt.Sprintf("%s %s %s (%s): %s",
			tag, row.FirstName, row.LastName, row.Time.Format(timeLayout), row.Text)
	}
	return []string{strings.Join(lines, "\n")}, nil
}

func (s *CommandService) search(ctx context.Context, chatID int64, args string) ([]string, error) {
	keywords := strings.Fields(args)
	if len(keywords) == 0 {
		return nil, nil
	}

	rows, err := s.searchUC.Search(ctx, chatID, keywords, s.searchLimit)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []string{"Not found!"}, nil
	}

	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = fmt.Sprintf("%s %s (%s): %s",
			row.FirstName, row.LastName, row.Time.Format(timeLayout), row.Text)
	}
	return []string{strings.Join(lines, "\n")}, nil
}

func (s *CommandService) stats(ctx context.Context, chatID int64) ([]string, error) {
	chunks, err := s.statsUC.ChatStatsChunks(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return []string{"No stats to show"}, nil
	}
	return chunks, nil
}

func (s *CommandService) listTriggers(ctx context.Context, chatID int64) ([]string, error) {
	triggers := s.triggerUC.Triggers(chatID)
	if len(triggers) == 0 {
		return []string{"No trigger to show in this chat"}, nil
	}
	return []string{fmt.Sprintf("Triggers in chat %d:\n%s", chatID, strings.Join(triggers, "\n"))}, nil
}

func (s *CommandService) merge(ctx context.Context, chatID int64, args string) ([]string, error) {
	parts := strings.SplitN(args, "=>", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return []string{"Usage: /merge trigger1=>trigger2"}, nil
	}

	conflicts, err := s.triggerUC.Merge(ctx, chatID, parts[0], parts[1])
	if err != nil {
		return nil, err
	}

	var replies []string
	if len(conflicts) > 0 {
		replies = append(replies, formatConflicts(conflicts))
	}
	return append(replies, "merge done!"), nil
}

func (s *CommandService) clear(ctx context.Context, chatID int64, trigger string) ([]string, error) {
	if trigger == "" {
		return nil, nil
	}
	if err := s.triggerUC.Clear(ctx, chatID, trigger); err != nil {
		return nil, err
	}
	return []string{"cleared!"}, nil
}

// splitCommand splits "/name args" into name and trimmed args.
func splitCommand(text string) (string, string) {
	text = strings.TrimPrefix(text, usecase.CommandPrefix)
	parts := strings.SplitN(text, " ", 2)
	name := parts[0]
	args := ""
	if len(parts) == 2 {
		args = strings.TrimSpace(parts[1])
	}
	return name, args
}

// parsePairs parses "t1|t2@x1|x2" into trigger and response lists.
func parsePairs(args string) (triggers, responses []string, ok bool) {
	parts := strings.SplitN(args, "@", 2)
	if len(parts) != 2 {
		return nil, nil, false
	}
	triggers = strings.Split(parts[0], "|")
	responses = strings.Split(parts[1], "|")
	if len(triggers) == 0 || len(responses) == 0 {
		return nil, nil, false
	}
	return triggers, responses, true
}

func formatConflicts(conflicts []domain.TriggerPair) string {
	lines := make([]string, 0, len(conflicts)+1)
	lines = append(lines, "Result:")
	for _, pair := range conflicts {
		lines = append(lines, fmt.Sprintf("- %s@%s already exists", pair.Trigger, pair.Response))
	}
	return strings.Join(lines, "\n")
}
