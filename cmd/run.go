package cmd

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nextlevelbuilder/autoreact/internal/auth"
	"github.com/nextlevelbuilder/autoreact/internal/config"
	"github.com/nextlevelbuilder/autoreact/internal/dispatch"
	"github.com/nextlevelbuilder/autoreact/internal/reaction"
	"github.com/nextlevelbuilder/autoreact/internal/store/sqlite"
	"github.com/nextlevelbuilder/autoreact/internal/telegram"
)

func runBot() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.OpenDB(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.Database.Path, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := sqlite.Migrate(db); err != nil {
		slog.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	stores := sqlite.NewStores(db, normalizeSeeds(cfg.SeedTriggers))
	if err := stores.Load(); err != nil {
		// Memory mirrors stay usable on a partial load; log and go on.
		slog.Warn("store load incomplete", "error", err)
	}

	bot, err := telegram.NewBot(cfg.Telegram)
	if err != nil {
		slog.Error("failed to create telegram bot", "error", err)
		os.Exit(1)
	}
	api := telegram.NewAPI(bot)

	kill := config.NewKillSwitch(cfg.ReactionsOn())
	resolver := auth.NewResolver(cfg.OwnerID, stores.Sudoers, api)
	rotator := reaction.NewRotator(
		reaction.SafePalette(cfg.Palette),
		rand.NewSource(time.Now().UnixNano()),
	)
	dispatcher := dispatch.New(dispatch.Config{
		KillSwitch:      kill.On,
		CommandPrefixes: cfg.CommandPrefixes,
		Stores:          stores,
		Rotator:         rotator,
		Reactor:         api,
		RatePerMinute:   cfg.RatePerMinute,
	})

	channel := telegram.New(bot, telegram.Deps{
		Stores:     stores,
		Dispatcher: dispatcher,
		Resolver:   resolver,
		Kill:       kill,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := channel.Start(ctx); err != nil {
		slog.Error("failed to start telegram channel", "error", err)
		os.Exit(1)
	}

	// Watch the config file so flipping reactions_enabled takes effect
	// without a restart.
	go func() {
		err := config.Watch(ctx, cfgPath, func(next *config.Config) {
			kill.Set(next.ReactionsOn())
		})
		if err != nil {
			slog.Warn("config watcher unavailable", "error", err)
		}
	}()

	healthSrv := startHealthServer(cfg.Health.Addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("graceful shutdown initiated", "signal", sig)

	channel.Stop()
	if healthSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		healthSrv.Shutdown(shutdownCtx)
	}
}

func normalizeSeeds(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		value, err := reaction.NormalizeTrigger(r)
		if err != nil {
			slog.Warn("skipping invalid seed trigger", "value", r)
			continue
		}
		out = append(out, value)
	}
	return out
}

func startHealthServer(addr string) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		slog.Info("health endpoint listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Warn("health server stopped", "error", err)
		}
	}()
	return srv
}
