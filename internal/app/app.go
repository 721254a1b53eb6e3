// Package app assembles the console from configuration. Both the HTTP server
// and opsctl start from here.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baharkarakas/wallet-ops/internal/auth"
	"github.com/baharkarakas/wallet-ops/internal/config"
	"github.com/baharkarakas/wallet-ops/internal/db"
	"github.com/baharkarakas/wallet-ops/internal/ledger"
	"github.com/baharkarakas/wallet-ops/internal/notify"
	"github.com/baharkarakas/wallet-ops/internal/repository"
	"github.com/baharkarakas/wallet-ops/internal/repository/memory"
	mongostore "github.com/baharkarakas/wallet-ops/internal/repository/mongo"
	"github.com/baharkarakas/wallet-ops/internal/repository/postgres"
	"github.com/baharkarakas/wallet-ops/internal/services"
	"github.com/baharkarakas/wallet-ops/internal/worker"
)

type App struct {
	Cfg     config.Config
	Log     *slog.Logger
	Store   repository.Store
	Tokens  *auth.TokenManager
	Console *services.Console

	pool  *worker.Pool
	redis *redis.Client
}

// OpenStore connects the backend selected by APP_STORE and, when migrate is
// set, brings its schema or indexes up to date.
func OpenStore(ctx context.Context, cfg config.Config, migrate bool) (repository.Store, error) {
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if migrate {
			if err := db.RunMigrations(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrations: %w", err)
			}
		}
		return postgres.NewStore(pool), nil
	case config.StoreMongo:
		client, err := db.NewMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		st := mongostore.New(client, cfg.MongoDB)
		if migrate {
			if err := st.Migrate(ctx); err != nil {
				_ = st.Close(ctx)
				return nil, err
			}
		}
		return st, nil
	case config.StoreMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown APP_STORE %q", cfg.Store)
	}
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	st, err := OpenStore(ctx, cfg, cfg.Migrate)
	if err != nil {
		return nil, err
	}
	a := &App{Cfg: cfg, Log: log, Store: st}

	var sink notify.Sink = notify.NewStoreSink(st)
	if cfg.RedisAddr != "" {
		rdb, err := db.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			// Notifications are best effort; run without the stream.
			log.Warn("redis unavailable, notifications go to the store only", "err", err)
		} else {
			a.redis = rdb
			sink = notify.Fanout{sink, notify.NewRedisSink(rdb, cfg.RedisStream)}
		}
	}
	a.pool = worker.NewPool(cfg.Workers, 1024)
	sink = notify.NewAsyncSink(sink, a.pool, cfg.StoreTimeout)

	a.Tokens = auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, 12*time.Hour)
	l := ledger.New()
	opts := services.Options{MaxAttempts: cfg.TxMaxAttempts}
	a.Console = services.NewConsole(services.ConsoleDeps{
		Gate:     auth.NewGate(a.Tokens, st, cfg.Env),
		Store:    st,
		Timeout:  cfg.StoreTimeout,
		Reversal: services.NewReversalService(l, opts),
		Invoices: services.NewInvoiceService(l, sink, opts),
		Users:    services.NewUserService(opts),
		Balances: services.NewBalanceService(),
	})
	return a, nil
}

// Close drains pending notifications before releasing connections.
func (a *App) Close(ctx context.Context) {
	if a.pool != nil {
		a.pool.Stop()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if err := a.Store.Close(ctx); err != nil {
		a.Log.Warn("store close", "err", err)
	}
}
