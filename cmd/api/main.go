package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ordermanagement/internal/config"
	"ordermanagement/internal/handler"
	"ordermanagement/internal/infra/cache"
	"ordermanagement/internal/infra/db"
	"ordermanagement/internal/infra/memory"
	infraRepo "ordermanagement/internal/infra/repository"
	"ordermanagement/internal/infra/seed"
	"ordermanagement/internal/logging"
	"ordermanagement/internal/metrics"
	repo "ordermanagement/internal/repository"
	"ordermanagement/internal/server"
	"ordermanagement/internal/usecase"
	"ordermanagement/internal/validator"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now().UTC()
}

// ストアの実装をまとめたもの（memory / postgres）
type store struct {
	tx        repo.TransactionManager
	customers repo.CustomerRepository
	products  repo.ProductRepository
	pinger    handler.Pinger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(cfg config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	m := metrics.New()

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	customerUC := usecase.NewCustomerUsecase(st.customers)
	productUC := usecase.NewProductUsecase(st.products)
	orderUC := usecase.NewOrderUsecase(
		st.tx,
		validator.NewOrderValidator(),
		customerUC,
		productUC,
		idGen,
		clock,
		log,
	).WithMetrics(m)

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			// キャッシュなしでも動くので警告だけ
			log.WithError(err).Warn("redis unreachable, order cache may miss")
		}
		orderUC.WithCache(cache.NewRedisOrderCache(rdb, cfg.CacheTTL))
	}

	//Handler生成
	e := server.New(server.Handlers{
		Orders:    handler.NewOrderHandler(orderUC),
		Customers: handler.NewCustomerHandler(customerUC),
		Products:  handler.NewProductHandler(productUC),
		Health:    handler.NewHealthHandler(st.pinger, log),
	}, server.Options{
		JWTSecret: cfg.JWTSecret,
		Log:       log,
		Metrics:   m,
	})

	if !cfg.AuthEnabled() {
		log.Warn("JWT_SECRET is empty, status updates are not authenticated")
	}

	return server.Start(ctx, e, cfg.Addr(), cfg.ShutdownTimeout, log)
}

func openStore(ctx context.Context, cfg config.Config, log *logrus.Logger) (store, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		//DB接続
		gormDB, err := db.Connect(cfg.PostgresDSN())
		if err != nil {
			return store{}, fmt.Errorf("connect postgres: %w", err)
		}
		if err := db.Migrate(gormDB); err != nil {
			return store{}, fmt.Errorf("migrate: %w", err)
		}
		if cfg.SeedFixtures {
			if err := seed.Gorm(ctx, gormDB); err != nil {
				return store{}, fmt.Errorf("seed: %w", err)
			}
		}
		log.WithField("driver", config.StorePostgres).Info("store ready")

		return store{
			tx:        infraRepo.NewTxManagerGorm(gormDB),
			customers: infraRepo.NewCustomerGormRepository(gormDB),
			products:  infraRepo.NewProductGormRepository(gormDB),
			pinger: handler.PingFunc(func(ctx context.Context) error {
				return db.Ping(ctx, gormDB)
			}),
		}, nil

	default:
		ms := memory.NewStore()
		if cfg.SeedFixtures {
			ms.Seed(seed.Customers(), seed.Products())
		}
		log.WithField("driver", config.StoreMemory).Info("store ready")

		return store{
			tx:        ms,
			customers: ms.Customers(),
			products:  ms.Products(),
			pinger:    ms,
		}, nil
	}
}
