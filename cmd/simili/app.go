package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hupe1980/simili"
	"github.com/hupe1980/simili/blobstore"
	"github.com/hupe1980/simili/blobstore/minio"
	"github.com/hupe1980/simili/blobstore/s3"
	"github.com/hupe1980/simili/catalog"
	"github.com/hupe1980/simili/catalog/cache"
	"github.com/hupe1980/simili/catalog/dynamo"
	"github.com/hupe1980/simili/catalog/postgres"
	"github.com/hupe1980/simili/catalog/snapshot"
	"github.com/hupe1980/simili/codec"
	"github.com/hupe1980/simili/internal/config"
	"github.com/hupe1980/simili/rank"
)

// app holds what every command needs: configuration, a logger and the
// catalog source.
type app struct {
	cfg     *config.Config
	logger  *simili.Logger
	source  catalog.Source
	closers []func()
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: newLogger(cfg.Logging),
	}
	if err := a.openSource(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the catalog source.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func newLogger(cfg config.LoggingConfig) *simili.Logger {
	return simili.NewWriterLogger(os.Stderr, simili.ParseLogFormat(cfg.Format), cfg.SlogLevel())
}

func (a *app) openSource(ctx context.Context) error {
	start := time.Now()
	switch a.cfg.Catalog.Source {
	case "memory":
		a.source = catalog.NewMock()
	case "snapshot":
		store, err := openStore(ctx, a.cfg.Storage)
		if err != nil {
			return err
		}
		mem, err := snapshot.Load(ctx, store, a.cfg.Catalog.Snapshot)
		a.logger.LogCatalogLoad(ctx, "snapshot", lenOf(mem), time.Since(start), err)
		if err != nil {
			return err
		}
		a.source = mem
	case "postgres":
		pg, err := postgres.Connect(ctx, a.cfg.Postgres.URL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, pg.Close)
		if a.cfg.Postgres.Migrate {
			if err := pg.Migrate(ctx); err != nil {
				return err
			}
		}
		a.source = pg
	case "dynamodb":
		d := a.cfg.DynamoDB
		store, err := dynamo.New(ctx, d.Table, d.Region, d.Endpoint, func(o *dynamo.Options) {
			o.PageSize = d.PageSize
			o.ScanRate = d.ScanRate
			o.ConsistentRead = d.ConsistentRead
		})
		if err != nil {
			return err
		}
		a.source = store
	default:
		return fmt.Errorf("unknown catalog source %q", a.cfg.Catalog.Source)
	}

	a.logger.WithSource(a.cfg.Catalog.Source).Debug("catalog source ready")
	return nil
}

// cached wraps remote sources with a listing cache when enabled.
func (a *app) cached() catalog.Source {
	cc := a.cfg.Catalog
	switch cc.Source {
	case "postgres", "dynamodb":
	default:
		return a.source
	}
	if cc.CacheTTL <= 0 {
		return a.source
	}
	return cache.New(a.source, func(o *cache.Options) {
		o.TTL = cc.CacheTTL
		o.Capacity = cc.CacheSize
	})
}

func lenOf(m *catalog.Memory) int {
	if m == nil {
		return 0
	}
	return m.Len()
}

func openStore(ctx context.Context, cfg config.StorageConfig) (blobstore.Store, error) {
	switch cfg.Backend {
	case "memory":
		return blobstore.NewMemoryStore(), nil
	case "local":
		return blobstore.NewLocalStore(cfg.Path), nil
	case "s3":
		return s3.New(ctx, cfg.Bucket,
			s3.WithPrefix(cfg.Prefix),
			s3.WithRegion(cfg.Region),
			s3.WithEndpoint(cfg.Endpoint),
		)
	case "minio":
		store, err := minio.New(minio.Config{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Secure:    cfg.Secure,
			Region:    cfg.Region,
			Bucket:    cfg.Bucket,
			Prefix:    cfg.Prefix,
		})
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx, cfg.Region); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// snapshotOptions applies the configured codec and compression.
func (a *app) snapshotOptions() (func(*snapshot.Options), error) {
	c, ok := codec.ByName(a.cfg.Catalog.Codec)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", a.cfg.Catalog.Codec)
	}
	comp, err := codec.ParseCompression(a.cfg.Catalog.Compression)
	if err != nil {
		return nil, err
	}
	return func(o *snapshot.Options) {
		o.Codec = c
		o.Compression = comp
	}, nil
}

func (a *app) recommender(extra ...simili.Option) (*simili.Recommender, error) {
	rc := a.cfg.Recommend
	opts := []simili.Option{
		simili.WithLogger(a.logger),
		simili.WithDefaultLimit(rc.DefaultLimit),
		simili.WithStrictFeatures(a.cfg.Features.Strict),
		simili.WithRanker(rank.New(func(o *rank.Options) {
			o.Parallelism = rc.Parallelism
			o.MinPartitionSize = rc.MinPartitionSize
		})),
	}
	return simili.New(a.cached(), append(opts, extra...)...)
}
