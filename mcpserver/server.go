package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// BotMCPServer exposes read-only admin tools over the bot's local HTTP API
type BotMCPServer struct {
	server  *mcp.Server
	baseURL string
	client  *http.Client
}

var globalServer *BotMCPServer

// NewServer creates a new bot MCP server talking to the given API base URL
func NewServer(baseURL string) *BotMCPServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "trigger-bot-tools",
		Version: "v1.0.0",
	}, nil)

	bs := &BotMCPServer{
		server:  server,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}

	globalServer = bs

	// Register tools
	bs.registerTools()

	return bs
}

// registerTools registers all admin MCP tools
func (s *BotMCPServer) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "trigger_list",
		Description: "List the trigger words configured for a chat.",
	}, handleTriggerList)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "trigger_responses",
		Description: "List the responses stored for one trigger word in a chat.",
	}, handleTriggerResponses)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chat_search",
		Description: "Search the chat message log. All keywords must appear in a message for it to match.",
	}, handleChatSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chat_stats",
		Description: "Get per-user message counters for a chat, most active users first.",
	}, handleChatStats)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chat_edits",
		Description: "Get recently edited messages in a chat with their full revision history.",
	}, handleChatEdits)
}

// getJSON issues a GET against the bot API and decodes the response into out
func (s *BotMCPServer) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := s.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach bot API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bot API returned %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// TriggerListInput is the input for trigger_list tool
type TriggerListInput struct {
	ChatID int64 `json:"chat_id" jsonschema:"description=The chat to list triggers for"`
}

// TriggerListOutput is the output for trigger_list tool
type TriggerListOutput struct {
	Triggers []string `json:"triggers"`
	Error    string   `json:"error,omitempty"`
}

func handleTriggerList(ctx context.Context, req *mcp.CallToolRequest, input TriggerListInput) (*mcp.CallToolResult, TriggerListOutput, error) {
	var resp struct {
		Triggers []string `json:"triggers"`
	}
	err := globalServer.getJSON(ctx, fmt.Sprintf("/api/triggers/%d", input.ChatID), nil, &resp)
	if err != nil {
		return nil, TriggerListOutput{Error: err.Error()}, nil
	}
	return nil, TriggerListOutput{Triggers: resp.Triggers}, nil
}

// TriggerResponsesInput is the input for trigger_responses tool
type TriggerResponsesInput struct {
	ChatID  int64  `json:"chat_id" jsonschema:"description=The chat the trigger belongs to"`
	Trigger string `json:"trigger" jsonschema:"description=The trigger word to look up"`
}

// TriggerResponsesOutput is the output for trigger_responses tool
type TriggerResponsesOutput struct {
	Responses []string `json:"responses"`
	Error     string   `json:"error,omitempty"`
}

func handleTriggerResponses(ctx context.Context, req *mcp.CallToolRequest, input TriggerResponsesInput) (*mcp.CallToolResult, TriggerResponsesOutput, error) {
	var resp struct {
		Responses []string `json:"responses"`
	}
	query := url.Values{"trigger": {input.Trigger}}
	err := globalServer.getJSON(ctx, fmt.Sprintf("/api/responses/%d", input.ChatID), query, &resp)
	if err != nil {
		return nil, TriggerResponsesOutput{Error: err.Error()}, nil
	}
	return nil, TriggerResponsesOutput{Responses: resp.Responses}, nil
}

// ChatSearchInput is the input for chat_search tool
type ChatSearchInput struct {
	ChatID   int64  `json:"chat_id" jsonschema:"description=The chat to search in"`
	Keywords string `json:"keywords" jsonschema:"description=Space-separated keywords. A message matches only if it contains all of them."`
	Limit    int    `json:"limit,omitempty" jsonschema:"description=Maximum number of results (default 5)"`
}

// SearchResult is one matched message
type SearchResult struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Time      string `json:"time"`
	Text      string `json:"text"`
}

// ChatSearchOutput is the output for chat_search tool
type ChatSearchOutput struct {
	Results []SearchResult `json:"results"`
	Error   string         `json:"error,omitempty"`
}

func handleChatSearch(ctx context.Context, req *mcp.CallToolRequest, input ChatSearchInput) (*mcp.CallToolResult, ChatSearchOutput, error) {
	var resp struct {
		Results []struct {
			FirstName string    `json:"first_name"`
			LastName  string    `json:"last_name"`
			Time      time.Time `json:"time"`
			Text      string    `json:"text"`
		} `json:"results"`
	}
	query := url.Values{"q": {input.Keywords}}
	if input.Limit > 0 {
		query.Set("limit", fmt.Sprintf("%d", input.Limit))
	}
	err := globalServer.getJSON(ctx, fmt.Sprintf("/api/search/%d", input.ChatID), query, &resp)
	if err != nil {
		return nil, ChatSearchOutput{Error: err.Error()}, nil
	}

	results := make([]SearchResult, 0, len(resp.Results))
	for _, row := range resp.Results {
		results = append(results, SearchResult{
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Time:      row.Time.Format("2006-01-02 15:04:05"),
			Text:      row.Text,
		})
	}
	return nil, ChatSearchOutput{Results: results}, nil
}

// ChatStatsInput is the input for chat_stats tool
type ChatStatsInput struct {
	ChatID int64 `json:"chat_id" jsonschema:"description=The chat to get message counters for"`
}

// UserCount is one user's message counter
type UserCount struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	UserID    int64  `json:"user_id"`
	Count     int64  `json:"count"`
}

// ChatStatsOutput is the output for chat_stats tool
type ChatStatsOutput struct {
	Stats []UserCount `json:"stats"`
	Error string      `json:"error,omitempty"`
}

func handleChatStats(ctx context.Context, req *mcp.CallToolRequest, input ChatStatsInput) (*mcp.CallToolResult, ChatStatsOutput, error) {
	var resp struct {
		Stats []UserCount `json:"stats"`
	}
	err := globalServer.getJSON(ctx, fmt.Sprintf("/api/stats/%d", input.ChatID), nil, &resp)
	if err != nil {
		return nil, ChatStatsOutput{Error: err.Error()}, nil
	}
	return nil, ChatStatsOutput{Stats: resp.Stats}, nil
}

// ChatEditsInput is the input for chat_edits tool
type ChatEditsInput struct {
	ChatID int64 `json:"chat_id" jsonschema:"description=The chat to inspect"`
	Limit  int   `json:"limit,omitempty" jsonschema:"description=Maximum number of edited messages (default 3)"`
}

// EditRevision is one revision of an edited message
type EditRevision struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Time      string `json:"time"`
	Text      string `json:"text"`
	Edited    bool   `json:"edited"`
}

// ChatEditsOutput is the output for chat_edits tool
type ChatEditsOutput struct {
	Revisions []EditRevision `json:"revisions"`
	Error     string         `json:"error,omitempty"`
}

func handleChatEdits(ctx context.Context, req *mcp.CallToolRequest, input ChatEditsInput) (*mcp.CallToolResult, ChatEditsOutput, error) {
	var resp struct {
		Edits []struct {
			FirstName string    `json:"first_name"`
			LastName  string    `json:"last_name"`
			Time      time.Time `json:"time"`
			Text      string    `json:"text"`
			Edited    bool      `json:"edited"`
		} `json:"edits"`
	}
	query := url.Values{}
	if input.Limit > 0 {
		query.Set("limit", fmt.Sprintf("%d", input.Limit))
	}
	err := globalServer.getJSON(ctx, fmt.Sprintf("/api/edits/%d", input.ChatID), query, &resp)
	if err != nil {
		return nil, ChatEditsOutput{Error: err.Error()}, nil
	}

	revisions := make([]EditRevision, 0, len(resp.Edits))
	for _, row := range resp.Edits {
		revisions = append(revisions, EditRevision{
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Time:      row.Time.Format("2006-01-02 15:04:05"),
			Text:      row.Text,
			Edited:    row.Edited,
		})
	}
	return nil, ChatEditsOutput{Revisions: revisions}, nil
}

// Run starts the MCP server with stdio transport
func (s *BotMCPServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// GetServer returns the underlying MCP server
func (s *BotMCPServer) GetServer() *mcp.Server {
	return s.server
}
