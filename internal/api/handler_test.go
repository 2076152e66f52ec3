package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/anthropics/feishu-trigger-bot/internal/biz/domain"
	"github.com/anthropics/feishu-trigger-bot/internal/biz/usecase"
	"github.com/anthropics/feishu-trigger-bot/internal/data"
)

type testEnv struct {
	srv       *httptest.Server
	repos     *data.Repositories
	triggerUC *usecase.TriggerUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repos, err := data.NewRepositories(filepath.Join(t.TempDir(), "bot.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { repos.Close() })

	triggerUC := usecase.NewTriggerUsecase(repos.Trigger, domain.NewTriggerIndex(), rand.New(rand.NewSource(1)))
	searchUC := usecase.NewSearchUsecase(repos.ChatLog)
	statsUC := usecase.NewStatsUsecase(repos.User)
	chatLogUC := usecase.NewChatLogUsecase(repos.User, repos.ChatLog)

	server := NewServer(triggerUC, searchUC, statsUC, chatLogUC, 0)
	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, repos: repos, triggerUC: triggerUC}
}

func getJSON(t *testing.T, url string, out interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Unexpected status %d for %s", resp.StatusCode, url)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.srv.URL + "/health")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestTriggersEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.triggerUC.Add(context.Background(), 1, []string{"hello"}, []string{"hi"})

	var result struct {
		ChatID   int64    `json:"chat_id"`
		Triggers []string `json:"triggers"`
	}
	getJSON(t, env.srv.URL+"/api/triggers/1", &result)

	if result.ChatID != 1 || len(result.Triggers) != 1 || result.Triggers[0] != "hello" {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestTriggersEndpoint_BadChatID(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.srv.URL + "/api/triggers/notanumber")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
}

func TestResponsesEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.triggerUC.Add(context.Background(), 1, []string{"hello"}, []string{"hi", "hey"})

	var result struct {
		Trigger   string   `json:"trigger"`
		Responses []string `json:"responses"`
	}
	getJSON(t, env.srv.URL+"/api/responses/1?trigger=hello", &result)

	if result.Trigger != "hello" || len(result.Responses) != 2 {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestResponsesEndpoint_MissingTrigger(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.srv.URL + "/api/responses/1")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
}

func postLog(t *testing.T, env *testEnv, entry map[string]interface{}) *http.Response {
	t.Helper()
	body, _ := json.Marshal(entry)
	resp, err := http.Post(env.srv.URL+"/api/log", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestLogAndSearchEndpoints(t *testing.T) {
	env := newTestEnv(t)

	for i, text := range []string{"red apples", "red wine", "green apples"} {
		resp := postLog(t, env, map[string]interface{}{
			"update_id":  i + 1,
			"message_id": 100 + i,
			"chat_id":    1,
			"user_id":    7,
			"text":       text,
			"time":       1700000000 + i*60,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200 for log, got %d", resp.StatusCode)
		}
	}

	var result struct {
		Results []struct {
			Text string `json:"text"`
		} `json:"results"`
	}
	getJSON(t, env.srv.URL+"/api/search/1?q=red+apples", &result)

	if len(result.Results) != 1 || result.Results[0].Text != "red apples" {
		t.Errorf("Unexpected search result: %+v", result)
	}
}

func TestLogEndpoint_DuplicateConflicts(t *testing.T) {
	env := newTestEnv(t)
	entry := map[string]interface{}{
		"update_id": 5, "message_id": 100, "chat_id": 1, "user_id": 7,
		"text": "once", "time": 1700000000,
	}

	if resp := postLog(t, env, entry); resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if resp := postLog(t, env, entry); resp.StatusCode != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate update id, got %d", resp.StatusCode)
	}
}

func TestEditsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	postLog(t, env, map[string]interface{}{
		"update_id": 1, "message_id": 100, "chat_id": 1, "user_id": 7,
		"text": "orig", "time": 1700000000,
	})
	postLog(t, env, map[string]interface{}{
		"update_id": 2, "message_id": 100, "chat_id": 1, "user_id": 7,
		"text": "fixed", "time": 1700000060, "edited": true,
	})

	var result struct {
		Edits []struct {
			Text   string `json:"text"`
			Edited bool   `json:"edited"`
		} `json:"edits"`
	}
	getJSON(t, env.srv.URL+"/api/edits/1", &result)

	if len(result.Edits) != 2 {
		t.Fatalf("Expected 2 history rows, got %+v", result)
	}
	if result.Edits[0].Text != "orig" || result.Edits[0].Edited {
		t.Errorf("Expected original first, got %+v", result.Edits[0])
	}
	if result.Edits[1].Text != "fixed" || !result.Edits[1].Edited {
		t.Errorf("Expected revision last, got %+v", result.Edits[1])
	}
}

func TestStatsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.repos.User.Upsert(ctx, 7, 1, "Ada", "Lovelace")
	env.repos.User.IncrementCount(ctx, 7, 1)

	var result struct {
		Stats []struct {
			FirstName string `json:"first_name"`
			Count     int64  `json:"count"`
		} `json:"stats"`
	}
	getJSON(t, env.srv.URL+"/api/stats/1", &result)

	if len(result.Stats) != 1 || result.Stats[0].FirstName != "Ada" || result.Stats[0].Count != 1 {
		t.Errorf("Unexpected stats: %+v", result)
	}
}

func TestLogEndpoint_RequiresPost(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.srv.URL + "/api/log")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", resp.StatusCode)
	}
}

func TestLogEndpoint_RequiresText(t *testing.T) {
	env := newTestEnv(t)

	resp := postLog(t, env, map[string]interface{}{
		"update_id": 1, "chat_id": 1, "user_id": 7, "time": 1700000000,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing text, got %d", resp.StatusCode)
	}
}
