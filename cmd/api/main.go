package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/config"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	notif "github.com/cmlabs-hris/hris-leave-go/internal/domain/notification"
	appHTTP "github.com/cmlabs-hris/hris-leave-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/cache"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/events"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-leave-go/internal/repository/memory"
	"github.com/cmlabs-hris/hris-leave-go/internal/repository/postgresql"
	leaveService "github.com/cmlabs-hris/hris-leave-go/internal/service/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/service/notification"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

const (
	appName    = "hris-leave"
	appVersion = "1.0.0"
)

// repositories is the storage graph shared by the leave services.
type repositories struct {
	tx       leave.TxManager
	types    leave.LeaveTypeRepository
	balances leave.LeaveBalanceRepository
	requests leave.LeaveRequestRepository
	history  leave.LeaveHistoryRepository
	holidays leave.HolidayRepository
	inbox    notif.Repository
	close    func()
}

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With(slog.String("app", appName)))
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	appMetrics := metrics.New()
	retry := leaveService.RetryPolicy{
		MaxRetries: cfg.Ledger.MaxRetries,
		Backoff:    cfg.Ledger.RetryBackoff,
	}

	// Notifications: SSE hub plus the optional Kafka stream
	hub := sse.NewHub()
	publisher := events.NewNoopPublisher()
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers), cfg.Kafka.Topic)
		slog.Info("Publishing leave transitions to Kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Error("Failed to close event publisher", "error", err)
		}
	}()
	dispatcher := notification.NewDispatcher(
		notification.Config{
			WorkerCount: cfg.Notification.Workers,
			QueueSize:   cfg.Notification.QueueSize,
		},
		notification.NewHubSink(hub),
		notification.NewPublisherSink(publisher),
		notification.NewInboxSink(repos.inbox),
	)
	inboxService := notification.NewInboxService(repos.inbox, time.Now)

	typeService := leaveService.NewTypeService(repos.types)
	holidayService := leaveService.NewHolidayService(repos.tx, repos.holidays)
	balanceService := leaveService.NewBalanceService(repos.tx, repos.types, repos.balances, retry)
	requestService := leaveService.NewRequestService(
		repos.tx,
		repos.types,
		repos.balances,
		repos.requests,
		repos.history,
		dispatcher,
		appMetrics,
		retry,
	)

	seeded, err := typeService.SeedDefaults(ctx)
	if err != nil {
		return fmt.Errorf("seed leave types: %w", err)
	}
	if len(seeded) > 0 {
		slog.Info("Seeded default leave types", "count", len(seeded))
	}

	// Background ledger audit
	scheduler := cron.NewScheduler()
	if err := cron.NewLedgerJobs(balanceService, appMetrics).RegisterJobs(scheduler, cfg.Ledger.AuditInterval); err != nil {
		return fmt.Errorf("register cron jobs: %w", err)
	}
	scheduler.Start()

	var rdb redis.Cmdable
	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Warn("Idempotency-Key support disabled", "error", err)
		} else {
			defer client.Close()
			rdb = client
		}
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			AppName:        appName,
			Version:        appVersion,
			Env:            cfg.App.Env,
			LogLevel:       cfg.SlogLevel(),
			AllowedOrigins: cfg.App.AllowedOrigins,
			Redis:          rdb,
			IdempotencyTTL: cfg.Redis.IdempotencyTTL,
			Metrics:        appMetrics,
		},
		jwtService,
		appHTTP.NewLeaveRequestHandler(requestService, time.Now),
		appHTTP.NewLeaveBalanceHandler(balanceService),
		appHTTP.NewLeaveTypeHandler(typeService),
		appHTTP.NewHolidayHandler(holidayService, time.Now),
		appHTTP.NewNotificationHandler(hub, jwtService, inboxService),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "port", cfg.App.Port, "store", cfg.Database.Driver, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		slog.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}

	scheduler.Stop()
	dispatcher.Stop()
	if dropped := dispatcher.Dropped(); dropped > 0 {
		slog.Warn("Notifications dropped during run", "count", dropped)
	}
	return nil
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.Database.Driver == config.StoreDriverMemory {
		store := memory.NewStore()
		slog.Warn("Using in-memory store; data is lost on restart")
		return &repositories{
			tx:       store,
			types:    store.Types(),
			balances: store.Balances(),
			requests: store.Requests(),
			history:  store.History(),
			holidays: store.Holidays(),
			inbox:    store.Notifications(),
			close:    func() {},
		}, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := postgresql.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	return &repositories{
		tx:       postgresql.NewTxManager(db),
		types:    postgresql.NewLeaveTypeRepository(db),
		balances: postgresql.NewLeaveBalanceRepository(db),
		requests: postgresql.NewLeaveRequestRepository(db),
		history:  postgresql.NewLeaveHistoryRepository(db),
		holidays: postgresql.NewHolidayRepository(db),
		inbox:    postgresql.NewNotificationRepository(db),
		close:    db.Close,
	}, nil
}
