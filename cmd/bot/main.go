package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/anthropics/feishu-trigger-bot/internal/api"
	"github.com/anthropics/feishu-trigger-bot/internal/biz/domain"
	"github.com/anthropics/feishu-trigger-bot/internal/biz/usecase"
	"github.com/anthropics/feishu-trigger-bot/internal/conf"
	"github.com/anthropics/feishu-trigger-bot/internal/data"
	"github.com/anthropics/feishu-trigger-bot/internal/infra/feishu"
	"github.com/anthropics/feishu-trigger-bot/internal/server"
	"github.com/anthropics/feishu-trigger-bot/internal/service"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize Feishu client
	feishuClient := feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret)

	// Initialize repository layer
	repos, err := data.NewRepositories(cfg.Bot.DBPath)
	if err != nil {
		log.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	fmt.Printf("[Bot] Database: %s\n", cfg.Bot.DBPath)

	messageRepo := data.NewFeishuRepo(feishuClient)

	// Initialize usecase layer
	index := domain.NewTriggerIndex()
	triggerUC := usecase.NewTriggerUsecase(repos.Trigger, index, nil)
	searchUC := usecase.NewSearchUsecase(repos.ChatLog)
	statsUC := usecase.NewStatsUsecase(repos.User)
	chatLogUC := usecase.NewChatLogUsecase(repos.User, repos.ChatLog)

	// Load stored triggers into the in-memory index
	if err := triggerUC.RebuildIndex(context.Background()); err != nil {
		log.Fatalf("Failed to build trigger index: %v", err)
	}

	// Initialize service layer
	cmdSvc := service.NewCommandService(triggerUC, searchUC, statsUC, cfg.Bot.SearchLimit, cfg.Bot.EditsLimit)

	// Initialize HTTP API server for admin tools
	apiServer := api.NewServer(triggerUC, searchUC, statsUC, chatLogUC, cfg.APIPort)
	go func() {
		if err := apiServer.Start(); err != nil {
			fmt.Printf("[Bot] API server error: %v\n", err)
		}
	}()

	// Initialize server
	srv := server.NewBotServer(feishuClient, messageRepo, chatLogUC, triggerUC, cmdSvc, cfg.Bot)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		srv.Stop()
		apiServer.Stop()
		repos.Close()
		os.Exit(0)
	}()

	fmt.Println("Starting Feishu trigger bot...")
	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
