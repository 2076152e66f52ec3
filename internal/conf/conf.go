package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config represents application configuration
type Config struct {
	// Feishu configuration
	Feishu FeishuConfig

	// Bot configuration
	Bot BotConfig

	// Local admin API
	APIPort int

	// Debug mode
	Debug bool
}

// FeishuConfig contains Feishu configuration
type FeishuConfig struct {
	AppID     string
	AppSecret string
}

// BotConfig contains bot behavior configuration
type BotConfig struct {
	DBPath      string
	BanIDs      []string // Sender open_ids the bot ignores entirely
	AdminIDs    []string // Sender open_ids always treated as admins
	SearchLimit int      // Max rows a /search returns
	EditsLimit  int      // Max distinct messages a /edits covers
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	dbPath := os.Getenv("BOT_DB_PATH")
	if dbPath == "" {
		homeDir, _ := os.UserHomeDir()
		dbPath = filepath.Join(homeDir, ".feishu-trigger-bot", "bot.db")
	}

	apiPort := 9877
	if val := os.Getenv("API_PORT"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			apiPort = parsed
		}
	}

	searchLimit := 5
	if val := os.Getenv("SEARCH_LIMIT"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			searchLimit = parsed
		}
	}

	editsLimit := 3
	if val := os.Getenv("EDITS_LIMIT"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			editsLimit = parsed
		}
	}

	return &Config{
		Feishu: FeishuConfig{
			AppID:     os.Getenv("FEISHU_APP_ID"),
			AppSecret: os.Getenv("FEISHU_APP_SECRET"),
		},
		Bot: BotConfig{
			DBPath:      dbPath,
			BanIDs:      splitIDs(os.Getenv("BAN_IDS")),
			AdminIDs:    splitIDs(os.Getenv("ADMIN_IDS")),
			SearchLimit: searchLimit,
			EditsLimit:  editsLimit,
		},
		APIPort: apiPort,
		Debug:   os.Getenv("DEBUG") == "true",
	}
}

// Validate checks required fields
func (c *Config) Validate() error {
	if c.Feishu.AppID == "" || c.Feishu.AppSecret == "" {
		return fmt.Errorf("FEISHU_APP_ID and FEISHU_APP_SECRET are required")
	}
	return nil
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}
