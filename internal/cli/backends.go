package cli

import (
	"context"
	"fmt"

	"github.com/matzehuels/cellplace/pkg/cache"
	"github.com/matzehuels/cellplace/pkg/config"
	"github.com/matzehuels/cellplace/pkg/observability"
	"github.com/matzehuels/cellplace/pkg/pipeline"
	"github.com/matzehuels/cellplace/pkg/store"
)

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner from the config file. noCache
// replaces the configured cache with NullCache.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	logger := loggerFromContext(ctx)
	observability.SetPipelineHooks(observability.NewLogHooks(logger))
	observability.SetCacheHooks(observability.NewLogHooks(logger))

	cc, err := openCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		cc.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	r := pipeline.NewRunner(cc, nil, st, logger)
	r.TTL = cfg.Cache.TTL.Duration
	return r, nil
}

func openCache(ctx context.Context, cfg config.Cache, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	dir := cfg.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

func openStore(ctx context.Context, cfg config.Store) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendNone:
		return store.NullStore{}, nil
	case config.BackendMongo:
		ms, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.Database)
		if err != nil {
			return nil, err
		}
		return ms, nil
	}
	fs, err := store.NewFileStore(cfg.Dir)
	if err != nil {
		return nil, err
	}
	return fs, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory (~/.cache/cellplace/ or
// $XDG_CACHE_HOME/cellplace/).
func cacheDir() (string, error) {
	return cache.DefaultDir()
}
