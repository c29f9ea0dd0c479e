// Package app wires configuration, credential storage, the gateway and the
// stores into one client instance.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/internal/config"
	"github.com/fastygo/taskdesk/internal/gateway"
	redisInfra "github.com/fastygo/taskdesk/internal/infrastructure/redis"
	"github.com/fastygo/taskdesk/internal/services"
	"github.com/fastygo/taskdesk/internal/services/lifecycle"
	"github.com/fastygo/taskdesk/pkg/httpcontext"
	"github.com/fastygo/taskdesk/repository"
	boltRepo "github.com/fastygo/taskdesk/repository/bolt"
	"github.com/fastygo/taskdesk/repository/memory"
	redisRepo "github.com/fastygo/taskdesk/repository/redis"
	sqliteRepo "github.com/fastygo/taskdesk/repository/sqlite"
	"github.com/fastygo/taskdesk/usecase"
	authUC "github.com/fastygo/taskdesk/usecase/auth"
	categoryUC "github.com/fastygo/taskdesk/usecase/category"
	taskUC "github.com/fastygo/taskdesk/usecase/task"
)

const defaultSyncInterval = 30 * time.Second

// App wires configuration, storage, gateway and stores for one client process.
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	Gateway    *gateway.Gateway
	Session    *authUC.Store
	Tasks      *taskUC.Store
	Categories *categoryUC.Store
	Dispatcher *usecase.Dispatcher

	// Syncer is nil until EnableSync is called.
	Syncer *services.Syncer

	lifecycle *lifecycle.Manager
	requests  *httpcontext.Adapter
}

type options struct {
	creds        repository.CredentialRepository
	dial         fasthttp.DialFunc
	unauthorized gateway.UnauthorizedFunc
}

// Option customises New.
type Option func(*options)

// WithCredentialRepository bypasses the configured credential store.
func WithCredentialRepository(repo repository.CredentialRepository) Option {
	return func(o *options) { o.creds = repo }
}

// WithDial routes backend connections through dial.
func WithDial(dial fasthttp.DialFunc) Option {
	return func(o *options) { o.dial = dial }
}

// OnUnauthorized registers the handler that sends the user back to sign-in
// after the backend rejected the session.
func OnUnauthorized(fn gateway.UnauthorizedFunc) Option {
	return func(o *options) { o.unauthorized = fn }
}

// New builds the client. The session store restores the persisted session
// before New returns, and the data stores load for it.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, logger)

	creds := o.creds
	if creds == nil {
		var err error
		creds, err = openCredentials(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}
	manager.Register("credentials", func(ctx context.Context) error {
		return creds.Close()
	})

	gw := gateway.New(gateway.Config{
		BaseURL:      cfg.API.BaseURL,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
		MaxConns:     cfg.API.MaxConns,
		Dial:         o.dial,
	}, creds, logger.Named("gateway"))
	if o.unauthorized != nil {
		gw.OnUnauthorized(o.unauthorized)
	}

	requests := httpcontext.NewAdapter(cfg.Context.RequestTimeout)
	initCtx, cancel := requests.Attach(ctx)
	defer cancel()

	session := authUC.New(initCtx, gw, logger.Named("session"))
	categories := categoryUC.New(initCtx, gw, session, logger.Named("categories"))
	tasks := taskUC.New(initCtx, gw, session, logger.Named("tasks"))

	a := &App{
		Config:     cfg,
		Logger:     logger,
		Gateway:    gw,
		Session:    session,
		Tasks:      tasks,
		Categories: categories,
		Dispatcher: usecase.NewDispatcher(),
		lifecycle:  manager,
		requests:   requests,
	}
	a.registerIntents()
	return a, nil
}

// Context derives the context of one user action: a request id and the
// configured request timeout.
func (a *App) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	return a.requests.Attach(ctx)
}

// EnableSync builds the background syncer for the category and task stores.
// A non-positive interval falls back to SYNC_INTERVAL, then to 30s;
// SYNC_SCHEDULE, when set, picks the run times instead. The syncer is not
// started.
func (a *App) EnableSync(interval time.Duration) (*services.Syncer, error) {
	if a.Syncer != nil {
		return a.Syncer, nil
	}
	if interval <= 0 {
		interval = a.Config.Sync.Interval
	}
	if interval <= 0 {
		interval = defaultSyncInterval
	}

	syncer, err := services.NewSyncer(a.Session, a.Logger.Named("syncer"), services.SyncerConfig{
		Interval:       interval,
		Schedule:       a.Config.Sync.Schedule,
		RefreshSession: a.Config.Sync.RefreshSession,
	})
	if err != nil {
		return nil, err
	}
	syncer.Track("categories", a.Categories)
	syncer.Track("tasks", a.Tasks)
	a.lifecycle.Register("syncer", func(ctx context.Context) error {
		syncer.Stop(ctx)
		return nil
	})
	a.Syncer = syncer
	return syncer, nil
}

// Lifecycle exposes the shutdown manager so callers can add their own hooks.
func (a *App) Lifecycle() *lifecycle.Manager {
	return a.lifecycle
}

// Close releases every component in reverse order of creation.
func (a *App) Close(ctx context.Context) error {
	return a.lifecycle.Shutdown(ctx)
}

func openCredentials(ctx context.Context, cfg *config.Config) (repository.CredentialRepository, error) {
	switch cfg.Credentials.Store {
	case config.StoreBolt:
		return boltRepo.Open(cfg.Credentials.BoltPath, "")
	case config.StoreSQLite:
		return sqliteRepo.Open(cfg.Credentials.SQLitePath)
	case config.StoreRedis:
		client, err := redisInfra.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		return redisRepo.NewCredentialRepository(client, cfg.Redis.KeyPrefix, cfg.Redis.TTL), nil
	case config.StoreMemory:
		return memory.NewCredentialRepository(), nil
	default:
		return nil, fmt.Errorf("unknown credential store %q", cfg.Credentials.Store)
	}
}
