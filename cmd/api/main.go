package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tripagent/internal/auth"
	"tripagent/internal/checkpoint"
	"tripagent/internal/config"
	"tripagent/internal/handler"
	"tripagent/internal/service/agent"
	"tripagent/internal/service/ai"
	"tripagent/internal/service/conversation"
	"tripagent/internal/service/search"
	"tripagent/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	conversations := conversation.NewService(checkpoint.NewStore(db))
	users := auth.NewStore(db)
	tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.TokenTTLMins)

	var searcher agent.Searcher
	if cfg.Search.Enabled() {
		searcher = search.NewClient(cfg.Search)
		log.Println("search provider initialized")
	} else {
		log.Println("SEARCH_API_KEY not configured, search tools disabled")
	}

	var composer agent.Composer
	if cfg.AI.Enabled() {
		composerSvc, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize reply composer: %v", err)
			log.Println("continuing with deterministic replies")
		} else {
			composer = composerSvc
			log.Println("reply composer initialized")
		}
	} else {
		log.Println("Ark credentials not configured, using deterministic replies")
	}

	travelAgent := agent.NewService(searcher, composer, conversations)
	router := handler.NewRouter(travelAgent, conversations, travelAgent, users, tokens)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("tripagent API listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
