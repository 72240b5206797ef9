package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/placebooking_bot/internal/app"
	"github.com/Freeeeeet/placebooking_bot/internal/clock"
	"github.com/Freeeeeet/placebooking_bot/internal/config"
	"github.com/Freeeeeet/placebooking_bot/internal/controller"
	"github.com/Freeeeeet/placebooking_bot/internal/httpapi"
	"github.com/Freeeeeet/placebooking_bot/internal/service"
	"github.com/Freeeeeet/placebooking_bot/internal/week"
	"github.com/go-telegram/bot"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "time/tzdata"
)

func main() {
	configPath := pflag.String("config", "", "path to YAML policy file (overrides CONFIG_FILE)")
	migrateOnly := pflag.Bool("migrate-only", false, "apply database migrations and exit")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting placebooking bot",
		zap.String("environment", cfg.Environment),
		zap.Bool("env_file", cfg.EnvFileLoaded),
		zap.Bool("memory_store", cfg.UseMemoryStore()),
		zap.Bool("bot_enabled", cfg.BotEnabled()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *migrateOnly, logger); err != nil {
		logger.Error("Application stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Application stopped")
}

func run(ctx context.Context, cfg *config.Config, migrateOnly bool, logger *zap.Logger) error {
	location, err := cfg.Location()
	if err != nil {
		return err
	}
	clk := clock.Real()

	var stores *app.Stores
	if cfg.UseMemoryStore() {
		logger.Warn("Using in-memory store, data is lost on restart")
		stores = app.NewMemoryStores(clk)
	} else {
		stores, err = app.OpenPostgres(ctx, cfg, logger)
		if err != nil {
			return err
		}
	}
	defer stores.Close()

	if migrateOnly {
		return nil
	}

	resolver := week.NewResolver(clk, location)
	settings := service.NewSettingsService(stores.Settings, service.Policy{
		WeeklyQuota: cfg.WeeklyQuota,
		Cutover:     cfg.Cutover,
	}, logger.Named("settings"))
	allocator := service.NewSlotAllocator(stores.Tx, stores.Places, stores.Timeslots, stores.Bookings, clk, logger.Named("allocator"))
	registry := service.NewClaimRegistry(stores.Tx, stores.Connections, stores.Claims, logger.Named("claims"))
	places := service.NewPlaceService(stores.Tx, stores.Places, stores.Timeslots, stores.Bookings, resolver, logger.Named("places"))
	connections := service.NewConnectionService(stores.Tx, stores.Connections, stores.Claims, logger.Named("connections"))
	users := service.NewUserService(stores.Users, cfg.AdminIDs, logger.Named("users"))
	engine := service.NewBookingEngine(
		settings, resolver, allocator, registry, places, connections,
		stores.Bookings, stores.Claims, cfg.GroupAliases, logger.Named("engine"),
	)

	g, gctx := errgroup.WithContext(ctx)

	// HTTP API
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(httpapi.NewHandler(engine, places, connections, settings, logger.Named("http")), logger.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		logger.Info("HTTP API listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	// Аудит вместимости соединений
	auditor := app.NewCapacityAuditor(connections, cfg.AuditInterval, logger.Named("auditor"))
	g.Go(func() error {
		return auditor.Run(gctx)
	})

	// Telegram бот
	if cfg.BotEnabled() {
		b, err := bot.New(cfg.TelegramToken)
		if err != nil {
			return fmt.Errorf("create bot: %w", err)
		}
		ctrl := controller.NewBotController(b, controller.Services{
			Users:       users,
			Engine:      engine,
			Places:      places,
			Connections: connections,
			Settings:    settings,
		}, clk.Now, logger.Named("bot"))
		if err := ctrl.RegisterHandlers(gctx); err != nil {
			// меню команд не критично
			logger.Warn("Bot commands not registered", zap.Error(err))
		}
		g.Go(func() error {
			return ctrl.Start(gctx)
		})
	} else {
		logger.Info("TELEGRAM_TOKEN not set, bot disabled")
	}

	return g.Wait()
}
