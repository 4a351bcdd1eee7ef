package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"card_arbitrage/internal/config"
	"card_arbitrage/internal/domain/service/capital"
	"card_arbitrage/internal/domain/service/catalog"
	"card_arbitrage/internal/domain/service/condition"
	"card_arbitrage/internal/domain/service/deal"
	"card_arbitrage/internal/domain/service/lifecycle"
	"card_arbitrage/internal/domain/service/reprint"
	"card_arbitrage/internal/domain/service/scoring"
	"card_arbitrage/internal/domain/service/vault"
	"card_arbitrage/internal/infrastructure/memory"
	"card_arbitrage/internal/infrastructure/notifier"
	"card_arbitrage/internal/infrastructure/persistence"
	"card_arbitrage/internal/infrastructure/pricecache"
	"card_arbitrage/internal/infrastructure/pricefeed"
	"card_arbitrage/internal/server"
	"card_arbitrage/internal/transport/bot"
	"card_arbitrage/internal/transport/bot/handler"
	"card_arbitrage/internal/transport/tasks"
	"card_arbitrage/internal/worker"
	"card_arbitrage/pkg/application/connectors"
	"card_arbitrage/pkg/application/modules"
	"card_arbitrage/pkg/logx"
	"card_arbitrage/pkg/middlewarex"
)

const (
	logFieldMaxLen    = 4096
	readHeaderTimeout = 5 * time.Second
)

// alertSender: получатель оповещений о сделках и готовых к продаже позициях.
type alertSender interface {
	deal.Notifier
	worker.SaleNotifier
}

func Run(ctx context.Context) error {
	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	// 2. Storage
	dealStore, vaultStore, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("openStorage: %w", err)
	}
	defer closeStorage()

	portfolio := vault.NewPortfolio(vaultStore)
	if err := portfolio.Restore(ctx); err != nil {
		return fmt.Errorf("portfolio.Restore: %w", err)
	}

	// 3. Engine
	prices, err := catalog.LoadFile(cfg.Engine.CatalogPath)
	if err != nil {
		return fmt.Errorf("catalog.LoadFile: %w", err)
	}

	logger(ctx).Info("catalog loaded", slog.String("path", cfg.Engine.CatalogPath), slog.Int("cards", prices.Len()))

	tracker := lifecycle.NewTracker(cfg.Engine.Lifecycle(), dealStore, portfolio)
	allocator := capital.NewAllocator(cfg.Engine.Capital(), dealStore, tracker)

	reprintModel := reprint.NewModel().
		WithCutoff(cfg.Engine.ReprintCutoff).
		WithBlacklist(cfg.Engine.ReprintBlacklist...)

	service := deal.NewService(
		condition.NewAssessor(),
		reprintModel,
		scoring.NewScorer(cfg.Engine.Scoring()),
		prices,
		tracker,
	)

	if cfg.Engine.AutoApprove {
		service.WithAutoApprove(allocator)
	}

	// 4. Notifications
	var alerts alertSender = notifier.LogNotifier{}

	if cfg.Bot.Enabled {
		telegram, err := notifier.NewTelegramBot(cfg.Bot.Token, cfg.Bot.ChatID)
		if err != nil {
			return fmt.Errorf("notifier.NewTelegramBot: %w", err)
		}

		alerts = telegram
	}

	g, ctx := errgroup.WithContext(ctx)

	// 5. Queues and market prices
	var priceSources worker.MultiSource

	if cfg.Redis.Enabled() {
		redisConnector := &connectors.Redis{
			Username:       cfg.Redis.Username,
			Password:       cfg.Redis.Password,
			Address:        cfg.Redis.Address,
			DatabaseNumber: cfg.Redis.DatabaseNumber,
			PoolSize:       cfg.Redis.PoolSize,
		}
		defer redisConnector.Close(ctx)

		priceSources = append(priceSources,
			pricecache.NewMarketPrices(redisConnector.Client(ctx), cfg.Redis.PriceKey, cfg.Redis.PriceMaxAge))

		asynqClient := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Address,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DatabaseNumber,
		})
		defer func() {
			if err := asynqClient.Close(); err != nil {
				logger(ctx).Error("asynqClient.Close", logx.Error(err))
			}
		}()

		// оповещения уходят через очередь, чтобы сбой бота не задерживал оценку
		service.WithNotifier(tasks.NewEnqueuer(asynqClient))

		modules.AsynqServer{
			RedisUsername: cfg.Redis.Username,
			RedisPassword: cfg.Redis.Password,
			RedisAddress:  cfg.Redis.Address,
			RedisDB:       cfg.Redis.DatabaseNumber,
		}.Run(ctx, g, tasks.Queues(), tasks.NewHandlers(service, alerts).AsynqHandlers()...)
	} else {
		service.WithNotifier(alerts)
	}

	// фид подключается последним и перекрывает цены из Redis
	if cfg.Feed.Enabled() {
		priceSources = append(priceSources, pricefeed.New(cfg.Feed.URL, cfg.Feed.Token, cfg.Feed.Timeout))
	}

	var priceSource worker.PriceSource
	if len(priceSources) > 0 {
		priceSource = priceSources
	}

	refresher := worker.NewCatalogRefresher(cfg.Engine.CatalogPath, priceSource, service)
	if priceSource != nil {
		if err := refresher.Refresh(ctx); err != nil {
			return fmt.Errorf("refresher.Refresh: %w", err)
		}
	}

	// 6. Background jobs
	sweeper := worker.NewVaultSweeper(tracker, alerts).
		WithSchedule(cfg.Worker.SweepSchedule).
		WithCatalogRefresh(refresher, cfg.Worker.RefreshSchedule)

	g.Go(func() error {
		if err := sweeper.Run(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("sweeper.Run: %w", err)
		}

		return nil
	})

	if cfg.Bot.Enabled && cfg.Bot.AdminID != 0 {
		commands, err := bot.New(ctx, cfg.Bot.Token, cfg.Bot.AdminID,
			handler.New(allocator, tracker, portfolio, service))
		if err != nil {
			return fmt.Errorf("bot.New: %w", err)
		}

		g.Go(func() error {
			return commands.Run(ctx)
		})
	}

	// 7. HTTP
	srv := server.NewServer(
		server.NewDealServer(service, tracker, allocator),
		server.NewCapitalServer(allocator),
		server.NewVaultServer(portfolio, service, tracker),
		server.NewCatalogServer(service),
	)

	modules.HTTPServer{ShutdownTimeout: cfg.HTTP.ShutdownTimeout}.Run(ctx, g, &http.Server{
		Addr:              cfg.HTTP.ListenAddress,
		Handler:           newRouter(ctx, cfg, srv),
		ReadHeaderTimeout: readHeaderTimeout,
	})

	modules.MetricServer{ListenAddress: cfg.HTTP.MetricsAddress}.Run(ctx, g)

	modules.ProbeServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.HTTP.ProbeAddress,
	}.Run(ctx, g)

	logger(ctx).Info("application started",
		slog.String(logx.FieldAppName, cfg.App.Name),
		slog.String(logx.FieldAppVersion, cfg.App.Version),
		slog.String("storage", cfg.Storage.Driver),
		slog.Bool("auto-approve", cfg.Engine.AutoApprove),
	)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("errgroup.Wait: %w", err)
	}

	return nil
}

func newRouter(ctx context.Context, cfg config.Config, srv server.Server) http.Handler {
	masker := logx.NewSensitiveDataMasker()

	r := chi.NewRouter()

	r.Use(
		middlewarex.TraceID,
		middlewarex.Logger(logger(ctx)),
		middlewarex.Operator,
		middlewarex.Recovery,
	)

	if cfg.App.Debug {
		r.Use(
			middlewarex.RequestLogging(masker, logFieldMaxLen),
			middlewarex.ResponseLogging(masker, logFieldMaxLen),
		)
	}

	srv.RegisterRoutes(r)

	return r
}

// openStorage возвращает хранилища сделок и позиций по выбранному драйверу.
func openStorage(ctx context.Context, cfg config.Config) (
	lifecycle.Store,
	vault.Store,
	func(),
	error,
) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pg := &connectors.Postgres{
			DSN:             cfg.Postgres.DSN,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		}

		db := pg.Client(ctx)

		if err := db.PingContext(ctx); err != nil {
			pg.Close(ctx)
			return nil, nil, nil, fmt.Errorf("db.PingContext: %w", err)
		}

		return persistence.NewDealRepository(db), persistence.NewVaultRepository(db), func() { pg.Close(ctx) }, nil
	case config.StorageSQLite:
		lite := &connectors.SQLite{Path: cfg.SQLite.Path}

		db := lite.Client(ctx)

		if err := persistence.ApplySchema(ctx, db, cfg.SQLite.SchemaPath); err != nil {
			lite.Close(ctx)
			return nil, nil, nil, fmt.Errorf("persistence.ApplySchema: %w", err)
		}

		return persistence.NewDealRepository(db), persistence.NewVaultRepository(db), func() { lite.Close(ctx) }, nil
	default:
		return memory.NewDealStore(), memory.NewVaultStore(), func() {}, nil
	}
}
