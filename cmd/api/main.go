package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/chiragvgohil-05/soffa-clg/internal/config"
	"github.com/chiragvgohil-05/soffa-clg/internal/infra/backend"
	"github.com/chiragvgohil-05/soffa-clg/internal/infra/cache"
	"github.com/chiragvgohil-05/soffa-clg/internal/infra/db"
	infraRepo "github.com/chiragvgohil-05/soffa-clg/internal/infra/repository"
	"github.com/chiragvgohil-05/soffa-clg/internal/metrics"
	repo "github.com/chiragvgohil-05/soffa-clg/internal/repository"
	"github.com/chiragvgohil-05/soffa-clg/internal/server"
	"github.com/chiragvgohil-05/soffa-clg/internal/session"
	"github.com/chiragvgohil-05/soffa-clg/internal/usecase"
	"github.com/chiragvgohil-05/soffa-clg/internal/validator"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	//.env は無くてもよい（本番は環境変数）
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	//金額はJSONで数値として出す
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//検証待ちレシートと監査ログ（DBが無ければメモリ）
	var (
		receipts repo.PaymentReceiptRepository
		audit    repo.AuditLogRepository
	)
	if cfg.DatabaseURL != "" || os.Getenv("POSTGRES_HOST") != "" {
		gormDB, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		if err := db.Migrate(gormDB); err != nil {
			return err
		}
		receipts = infraRepo.NewPaymentReceiptGormRepository(gormDB)
		audit = infraRepo.NewAuditLogGormRepository(gormDB)
		logger.Info("using postgres for pending receipts and audit logs")
	} else {
		receipts = infraRepo.NewPaymentReceiptMemoryRepository()
		audit = infraRepo.NewAuditLogMemoryRepository()
		logger.Warn("DATABASE_URL not set, pending receipts are kept in memory")
	}

	//カタログキャッシュ（任意）
	var catalogCache repo.CatalogCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			//キャッシュ無しでも動く
			logger.Warn("redis unavailable, catalog cache disabled", slog.String("error", err.Error()))
		} else {
			catalogCache = cache.NewCatalogRedisCache(rdb)
		}
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	client := backend.NewClient(backend.Options{
		BaseURL:     cfg.BackendURL,
		Timeout:     cfg.BackendTimeout,
		MaxFailures: cfg.BreakerMaxFailures,
		OpenTimeout: cfg.BreakerOpenTimeout,
		Logger:      logger,
	})
	accountValidator := validator.NewAccountValidator()
	anonymous := client.Bind(nil)

	registry := session.NewRegistry(session.Deps{
		Backend:   client,
		Receipts:  receipts,
		Audit:     audit,
		Validator: accountValidator,
		Checkout: usecase.CheckoutConfig{
			RazorpayKeyID:         cfg.RazorpayKeyID,
			Currency:              cfg.Currency,
			StoreName:             cfg.StoreName,
			FreeShippingThreshold: cfg.FreeShippingThreshold,
			FlatShippingFee:       cfg.FlatShippingFee,
			VerifyMaxRetries:      cfg.VerifyMaxRetries,
			VerifyBackoff:         cfg.VerifyBackoff,
		},
		Logger: logger,
	})

	deps := server.Deps{
		Config:   cfg,
		Registry: registry,
		Catalog:  usecase.NewCatalogUsecase(anonymous, catalogCache, cfg.CatalogCacheTTL, logger),
		Public:   usecase.NewAccountUsecase(anonymous, accountValidator),
		Logger:   logger,
	}
	e := server.New(deps)

	return server.Run(ctx, e, deps)
}
