package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"edu-chatbot/internal/chat"
	"edu-chatbot/internal/config"
	"edu-chatbot/internal/conversation"
	"edu-chatbot/internal/domains"
	"edu-chatbot/internal/httpapi"
	"edu-chatbot/internal/llm"
	"edu-chatbot/internal/scheduler"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	registry, err := domains.NewRegistry(cfg.DomainsFilePath, cfg.DefaultDomain)
	if err != nil {
		log.Fatalf("failed to init domain registry: %v", err)
	}

	store, err := conversation.NewStore(cfg.StoragePath)
	if err != nil {
		log.Fatalf("failed to init conversation store: %v", err)
	}

	factory := llm.NewFactory(cfg)
	client, err := factory.CreateClient(cfg.LLMProvider)
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}

	chatSvc := chat.New(client, cfg.GenTimeout())

	sched := scheduler.New(cfg.CleanupSchedule, func(ctx context.Context) int {
		return store.Cleanup(cfg.CleanupMaxAge())
	})
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start cleanup scheduler: %v", err)
	}
	defer sched.Stop()

	srv := httpapi.New(cfg, store, chatSvc, registry)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("http server stopped: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
