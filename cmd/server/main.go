package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	slackapi "github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"

	"github.com/deebugger/retrobot/internal/app"
	"github.com/deebugger/retrobot/internal/platform/config"
	"github.com/deebugger/retrobot/internal/platform/logging"
	"github.com/deebugger/retrobot/internal/platform/version"
	"github.com/deebugger/retrobot/internal/retro"
	"github.com/deebugger/retrobot/internal/server"
	"github.com/deebugger/retrobot/internal/slack"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupSlack(ctx context.Context, cfg *config.Config, clock clockwork.Clock) (*slack.Client, *socketmode.Client) {
	api := slackapi.New(
		cfg.SlackBotToken,
		slackapi.OptionAppLevelToken(cfg.SlackAppToken),
	)

	client, err := slack.NewClient(ctx, api, clock, cfg.NotifyRatePerSec, cfg.NotifyBurst)
	if err != nil {
		slog.Error("Failed to authenticate with Slack", "error", err)
		os.Exit(1)
	}

	return client, socketmode.New(api)
}

func runGracefulShutdown(srv *server.Server, cancel context.CancelFunc) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		// stop the dispatcher first so no new commands arrive mid-shutdown
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting",
		"env", cfg.AppEnv,
		"port", cfg.Port,
		"version", version.Get().Version,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	authCtx, authCancel := context.WithTimeout(ctx, 10*time.Second)
	messenger, socket := setupSlack(authCtx, cfg, clock)
	authCancel()
	slog.Info("Authenticated with Slack", "bot_user_id", messenger.BotUserID())

	registry := retro.NewRegistry()
	shuffleSource := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(os.Getpid())))
	svc := app.NewService(registry, messenger, cfg.DefaultTopVotes, shuffleSource)

	dispatcher := slack.NewDispatcher(socket, svc, messenger.BotUserID())

	srv := server.NewServer(cfg, dispatcher, clock)
	done := runGracefulShutdown(srv, cancel)

	go func() {
		if err := dispatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Slack dispatcher stopped", "error", err)
		}
	}()

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
