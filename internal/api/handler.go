package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anthropics/feishu-trigger-bot/internal/biz/domain"
	"github.com/anthropics/feishu-trigger-bot/internal/biz/usecase"
)

// Server provides a localhost HTTP API for operators and the MCP admin
// tools: read access to triggers, search, stats and edit histories, plus
// direct log injection.
type Server struct {
	triggerUC *usecase.TriggerUsecase
	searchUC  *usecase.SearchUsecase
	statsUC   *usecase.StatsUsecase
	chatLogUC *usecase.ChatLogUsecase

	server *http.Server
	port   int
}

// NewServer creates a new API server
func NewServer(
	triggerUC *usecase.TriggerUsecase,
	searchUC *usecase.SearchUsecase,
	statsUC *usecase.StatsUsecase,
	chatLogUC *usecase.ChatLogUsecase,
	port int,
) *Server {
	return &Server{
		triggerUC: triggerUC,
		searchUC:  searchUC,
		statsUC:   statsUC,
		chatLogUC: chatLogUC,
		port:      port,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler: s.Handler(),
	}

	fmt.Printf("[API] Starting HTTP server on port %d\n", s.port)
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Shutdown(context.Background())
	}
	return nil
}

// Handler builds the route table
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/triggers/", s.handleTriggers)
	mux.HandleFunc("/api/responses/", s.handleResponses)
	mux.HandleFunc("/api/search/", s.handleSearch)
	mux.HandleFunc("/api/stats/", s.handleStats)
	mux.HandleFunc("/api/edits/", s.handleEdits)
	mux.HandleFunc("/api/log", s.handleLog)

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return mux
}

func (s *Server) handleTriggers(w http.ResponseWriter, r *http.Request) {
	chatID, ok := s.chatFromPath(w, r, "/api/triggers/")
	if !ok {
		return
	}

	s.writeJSON(w, map[string]interface{}{
		"chat_id":  chatID,
		"triggers": s.triggerUC.Triggers(chatID),
	})
}

func (s *Server) handleResponses(w http.ResponseWriter, r *http.Request) {
	chatID, ok := s.chatFromPath(w, r, "/api/responses/")
	if !ok {
		return
	}
	trigger := r.URL.Query().Get("trigger")
	if trigger == "" {
		http.Error(w, "trigger is required", http.StatusBadRequest)
		return
	}

	responses, err := s.triggerUC.Responses(r.Context(), chatID, trigger)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{"trigger": trigger, "responses": responses})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	chatID, ok := s.chatFromPath(w, r, "/api/search/")
	if !ok {
		return
	}

	keywords := strings.Fields(r.URL.Query().Get("q"))
	limit := queryInt(r, "limit", 5)

	rows, err := s.searchUC.Search(r.Context(), chatID, keywords, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{"results": rows})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	chatID, ok := s.chatFromPath(w, r, "/api/stats/")
	if !ok {
		return
	}

	stats, err := s.statsUC.ChatStats(r.Context(), chatID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{"stats": stats})
}

func (s *Server) handleEdits(w http.ResponseWriter, r *http.Request) {
	chatID, ok := s.chatFromPath(w, r, "/api/edits/")
	if !ok {
		return
	}
	limit := queryInt(r, "limit", 3)

	rows, err := s.searchUC.RecentEdits(r.Context(), chatID, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{"edits": rows})
}

// handleLog appends one log row directly. Lets operators replay missed
// messages or record edited revisions the transport cannot deliver.
func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		UpdateID  int64  `json:"update_id"`
		MessageID int64  `json:"message_id"`
		ChatID    int64  `json:"chat_id"`
		UserID    int64  `json:"user_id"`
		Text      string `json:"text"`
		Time      int64  `json:"time"` // Unix seconds; 0 means now
		Edited    bool   `json:"edited"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	when := time.Now()
	if req.Time != 0 {
		when = time.Unix(req.Time, 0)
	}

	err := s.chatLogUC.Append(r.Context(), &domain.LogEntry{
		UpdateID:  req.UpdateID,
		MessageID: req.MessageID,
		ChatID:    req.ChatID,
		UserID:    req.UserID,
		Text:      req.Text,
		Time:      when,
		Edited:    req.Edited,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{"success": true})
}

func (s *Server) chatFromPath(w http.ResponseWriter, r *http.Request, prefix string) (int64, bool) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return 0, false
	}
	raw := strings.TrimPrefix(r.URL.Path, prefix)
	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.Error(w, "invalid chat id", http.StatusBadRequest)
		return 0, false
	}
	return chatID, true
}

func queryInt(r *http.Request, key string, def int) int {
	if val := r.URL.Query().Get(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
