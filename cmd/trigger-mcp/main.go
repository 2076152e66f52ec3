package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/anthropics/feishu-trigger-bot/mcpserver"
	"github.com/joho/godotenv"
)

const defaultAPIURL = "http://127.0.0.1:9877"

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env file")
	}

	baseURL := os.Getenv("BOT_API_URL")
	if baseURL == "" {
		baseURL = defaultAPIURL
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	srv := mcpserver.NewServer(baseURL)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
