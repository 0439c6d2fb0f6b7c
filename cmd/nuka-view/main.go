package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nidhogg/nuka-view/internal/agent"
	"github.com/nidhogg/nuka-view/internal/api"
	"github.com/nidhogg/nuka-view/internal/client"
	"github.com/nidhogg/nuka-view/internal/config"
	"github.com/nidhogg/nuka-view/internal/feed"
	"github.com/nidhogg/nuka-view/internal/notify"
	"github.com/nidhogg/nuka-view/internal/refresh"
	"github.com/nidhogg/nuka-view/internal/state"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/nuka-view.json"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	if cfg.Server.LogLevel == "production" {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting Nuka View...",
		zap.String("config", cfgPath),
		zap.String("backend", cfg.Backend.BaseURL))

	c := client.New(client.Config{
		BaseURL: cfg.Backend.BaseURL,
		Token:   cfg.Backend.Token,
		Timeout: cfg.Backend.TimeoutD,
	}, logger)

	agents := agent.NewStore(c, logger)
	events := feed.NewStore(c, cfg.Feed.Limit, logger)

	// Mirror store changes onto Redis Streams when configured
	var pub *notify.Publisher
	if cfg.Redis.URL != "" {
		p, pubErr := notify.NewPublisher(cfg.Redis.URL, cfg.Redis.StreamPrefix, logger)
		if pubErr != nil {
			logger.Warn("Redis unavailable, running without change streams", zap.Error(pubErr))
		} else {
			agents.AddListener(p)
			events.AddListener(p)
			pub = p
			logger.Info("Change streams enabled", zap.String("prefix", cfg.Redis.StreamPrefix))
		}
	}

	// Initial load; failures leave the stores on their fallbacks
	refresher := refresh.NewRefresher(cfg.Backend.TimeoutD, logger)
	refresher.Add(agent.StoreName, func(ctx context.Context) state.Source {
		return agents.List(ctx).Source
	})
	refresher.Add(feed.StoreName, func(ctx context.Context) state.Source {
		return events.List(ctx).Source
	})
	sources := refresher.RefreshNow(context.Background())
	logger.Info("Initial state loaded",
		zap.Int("agents", len(agents.Agents())),
		zap.String("agents_source", string(sources[agent.StoreName])),
		zap.Int("events", len(events.Events())),
		zap.String("events_source", string(sources[feed.StoreName])))

	var clock *refresh.Clock
	if cfg.Feed.RefreshIntervalD > 0 {
		clock = refresh.NewClock(cfg.Feed.RefreshIntervalD, logger)
		clock.AddListener(refresher)
		clock.Start()
	}

	handler := api.NewHandler(agents, events, logger)

	port := fmt.Sprintf("%d", cfg.Server.Port)
	if port == "0" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("Nuka View listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down Nuka View...")
	if clock != nil {
		clock.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
	if pub != nil {
		pub.Close()
	}
}
