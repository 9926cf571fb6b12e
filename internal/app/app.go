// Package app wires configuration into the collection environment: sites,
// blueprints, the collection store, the cache and lifecycle hooks.
package app

import (
	"context"
	"fmt"
	"regexp"

	"github.com/folio-cms/folio/internal/cache"
	"github.com/folio-cms/folio/internal/collections"
	"github.com/folio-cms/folio/internal/config"
	"github.com/folio-cms/folio/internal/fields"
	"github.com/folio-cms/folio/internal/hooks"
	"github.com/folio-cms/folio/internal/sites"
	"github.com/folio-cms/folio/internal/storage/cached"
	"github.com/folio-cms/folio/internal/storage/filestore"
	"github.com/folio-cms/folio/internal/storage/sqlstore"
	"go.uber.org/zap"
)

// handlePattern restricts handles to what file names and cache keys accept
var handlePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// App holds the wired collaborators of one process
type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	Sites       *sites.Registry
	Blueprints  *fields.Registry
	Cache       cache.Cache
	Store       collections.Store
	Hooks       *hooks.Executor[*collections.Collection]
	Collections *collections.Repository

	queue   *hooks.AsyncQueue
	closers []func() error
}

// New wires an App from configuration
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &App{Config: cfg, Logger: logger}

	siteRegistry, err := cfg.SiteRegistry()
	if err != nil {
		return nil, err
	}
	a.Sites = siteRegistry

	a.Blueprints = fields.NewRegistry()
	if err := a.Blueprints.LoadDir(cfg.Blueprints.Path); err != nil {
		return nil, err
	}

	store, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	c, err := a.openCache(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	if c != nil {
		a.Cache = c
		store = cached.New(store, c, cfg.Cache.TTL, logger)
	}
	a.Store = store

	a.queue = hooks.NewAsyncQueue(2, logger)
	a.queue.Start()
	a.Hooks = hooks.NewExecutor[*collections.Collection](a.queue, logger)
	a.registerHooks()

	a.Collections = collections.NewRepository(a.Env())

	logger.Debug("application wired",
		zap.String("database", cfg.Database.Driver),
		zap.String("cache", cfg.Cache.Driver),
		zap.Strings("sites", a.Sites.All()),
		zap.Int("blueprints", len(a.Blueprints.Handles())))

	return a, nil
}

// Env returns the collection environment
func (a *App) Env() collections.Env {
	return collections.Env{
		Sites:            a.Sites,
		Blueprints:       a.Blueprints,
		Store:            a.Store,
		Cache:            a.Cache,
		Hooks:            a.Hooks,
		Logger:           a.Logger,
		RevisionsEnabled: a.Config.Revisions.Enabled,
	}
}

// Close drains async hooks and releases the store and cache
func (a *App) Close() error {
	if a.queue != nil {
		a.queue.Shutdown()
	}

	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

func (a *App) openStore(ctx context.Context) (collections.Store, error) {
	db := a.Config.Database
	if db.Driver == "file" {
		return filestore.New(a.Config.Content.Path), nil
	}

	store, err := sqlstore.Open(ctx, db.Driver, db.URL, a.Logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)

	if err := store.Migrate(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (a *App) openCache(ctx context.Context) (cache.Cache, error) {
	cacheConfig := cache.Config{
		DefaultTTL: a.Config.Cache.TTL,
		Prefix:     a.Config.Cache.Prefix,
	}

	switch a.Config.Cache.Driver {
	case "none":
		return nil, nil
	case "memory":
		c := cache.NewMemoryCacheWithConfig(cacheConfig)
		a.closers = append(a.closers, c.Close)
		return c, nil
	case "redis":
		c, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     a.Config.Redis.Addr,
			Password: a.Config.Redis.Password,
			DB:       a.Config.Redis.DB,
			Cache:    cacheConfig,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, c.Close)
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", a.Config.Cache.Driver)
	}
}

func (a *App) registerHooks() {
	a.Hooks.On(hooks.BeforeSave, "validate_handle", func(ctx context.Context, c *collections.Collection) error {
		if !handlePattern.MatchString(c.Handle()) {
			return fmt.Errorf("invalid collection handle %q: use lowercase letters, digits, dashes and underscores", c.Handle())
		}
		return nil
	})

	a.Hooks.On(hooks.BeforeSave, "validate_sites", func(ctx context.Context, c *collections.Collection) error {
		for _, handle := range c.Sites() {
			if _, ok := a.Sites.Get(handle); !ok {
				return fmt.Errorf("collection %s references unknown site %s", c.Handle(), handle)
			}
		}
		return nil
	})

	a.Hooks.Register(hooks.AfterSave, &hooks.Hook[*collections.Collection]{
		Name:  "audit",
		Async: true,
		Fn: func(ctx context.Context, c *collections.Collection) error {
			a.Logger.Info("collection saved", zap.String("handle", c.Handle()))
			return nil
		},
	})

	a.Hooks.Register(hooks.AfterDelete, &hooks.Hook[*collections.Collection]{
		Name:  "audit",
		Async: true,
		Fn: func(ctx context.Context, c *collections.Collection) error {
			a.Logger.Info("collection deleted", zap.String("handle", c.Handle()))
			return nil
		},
	})
}
