package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fastfood-be/internal/apperr"
	"fastfood-be/internal/breaker"
	"fastfood-be/internal/config"
	"fastfood-be/internal/db"
	"fastfood-be/internal/events"
	"fastfood-be/internal/inventory"
	"fastfood-be/internal/limiter"
	"fastfood-be/internal/logger"
	"fastfood-be/internal/metrics"
	"fastfood-be/internal/order"
	"fastfood-be/internal/transport"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	breakerDatabase = "database"
	breakerEvents   = "events"
	breakerExternal = "external"

	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database := db.InitDB(cfg)
	defer database.Close()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
	}

	app, cleanup, err := newApp(ctx, cfg, database, rdb)
	if err != nil {
		log.Fatal("failed to build application", zap.Error(err))
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newBreakers builds one breaker per protected dependency from the
// configured policies. Caller mistakes never trip a breaker.
func newBreakers(p config.Policies) *breaker.Set {
	set := breaker.NewSet()
	for _, name := range []string{breakerDatabase, breakerEvents, breakerExternal} {
		bp := p.Breakers[name]
		set.Add(breaker.New(breaker.Settings{
			Name:             name,
			FailureThreshold: bp.FailureThreshold,
			ResetTimeout:     bp.ResetTimeout,
			IsFailure:        func(err error) bool { return !apperr.IsClientError(err) },
		}))
	}
	return set
}

// newLimiter picks Redis when a client is given, otherwise an in-process
// limiter swept in the background until ctx ends.
func newLimiter(ctx context.Context, rdb *redis.Client, cb *breaker.CircuitBreaker, name string, lp config.LimitPolicy) (limiter.Limiter, error) {
	policy := limiter.Policy{Name: name, Quota: lp.Quota, Window: lp.Window}

	if rdb != nil {
		l, err := limiter.NewRedis(rdb, policy)
		if err != nil {
			return nil, err
		}
		return limiter.WithBreaker(l, cb), nil
	}

	m, err := limiter.NewMemory(policy)
	if err != nil {
		return nil, err
	}
	go m.Run(ctx, sweepInterval)
	return m, nil
}

func newPublisher(cfg *config.Config, cb *breaker.CircuitBreaker) (events.Publisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.L().Info("no kafka brokers configured, events go to the log")
		return events.LogPublisher{}, func() {}
	}

	kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	return events.WithBreaker(kp, cb), func() {
		if err := kp.Close(); err != nil {
			logger.L().Error("failed to close kafka writer", zap.Error(err))
		}
	}
}

// newApp wires the services and returns the HTTP handler.
func newApp(ctx context.Context, cfg *config.Config, database *sql.DB, rdb *redis.Client) (http.Handler, func(), error) {
	breakers := newBreakers(cfg.Policies)
	dbBreaker, _ := breakers.Get(breakerDatabase)
	eventsBreaker, _ := breakers.Get(breakerEvents)
	externalBreaker, _ := breakers.Get(breakerExternal)

	entry, err := newLimiter(ctx, rdb, externalBreaker, "entry", cfg.Policies.EntryLimit)
	if err != nil {
		return nil, nil, err
	}
	account, err := newLimiter(ctx, rdb, externalBreaker, "account", cfg.Policies.AccountLimit)
	if err != nil {
		return nil, nil, err
	}
	checkout, err := newLimiter(ctx, rdb, externalBreaker, "checkout", cfg.Policies.CheckoutLimit)
	if err != nil {
		return nil, nil, err
	}
	mutations, err := newLimiter(ctx, rdb, externalBreaker, "mutations", cfg.Policies.EntryLimit)
	if err != nil {
		return nil, nil, err
	}

	publisher, closePublisher := newPublisher(cfg, eventsBreaker)
	counters := metrics.NewRegistry()

	inventorySvc := inventory.NewService(inventory.NewRepository(database), publisher)
	orderSvc := order.NewService(order.NewRepository(database), inventorySvc, dbBreaker, publisher)

	router := transport.NewRouter(transport.Handlers{
		Orders: &transport.OrdersHandler{
			Service: orderSvc,
			Ledger:  inventorySvc,
			Guard:   &limiter.Guard{Entry: entry, Account: checkout},
		},
		Inventory: &transport.InventoryHandler{Service: inventorySvc},
		Admin:     &transport.AdminHandler{Breakers: breakers, Metrics: counters},
		Mutations: mutations,
		Sensitive: account,
		Metrics:   counters,
	})

	return router, closePublisher, nil
}
