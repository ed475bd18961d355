// Package session provides the entry point to Sparkling: a Session owns a worker pool, a
// partition cache, a registry of Accumulators and Broadcasts, and the graph of Datasets
// created through it. Sessions are independent of one another.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/fileio"
	"github.com/go-sif/sparkling/internal/dataset"
	"github.com/go-sif/sparkling/internal/metrics"
	"github.com/go-sif/sparkling/internal/partition"
	"github.com/go-sif/sparkling/internal/pcache"
	"github.com/go-sif/sparkling/internal/stats"
	"github.com/go-sif/sparkling/logging"
	"github.com/go-sif/sparkling/shared"
	uuid "github.com/gofrs/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// releaseTimeout bounds how long Stop waits for pool workers to exit
const releaseTimeout = 10 * time.Second

// Session is a context for creating and computing Datasets
type Session struct {
	id       string
	opts     *Options
	logger   *slog.Logger
	pool     *ants.Pool
	cache    *pcache.Cache
	registry *shared.Registry
	metrics  *metrics.Metrics
	stats    *stats.RunStatistics
	engine   *dataset.Engine
	fs       fileio.FileSystem
	stopOnce sync.Once
	stopErr  error
}

// NewSession creates a Session. A nil opts uses the default Options.
func NewSession(opts *Options) (*Session, error) {
	if opts == nil {
		opts = &Options{}
	}
	opts = CloneOptions(opts)
	if err := ensureDefaultOptionsValues(opts); err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for Session: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.New(logging.Config{Level: opts.LogLevel, Format: opts.LogFormat})
	}
	logger = logger.With("session", id.String())
	fs := opts.FileSystem
	if fs == nil {
		fs = fileio.NewLocal(logger)
	}

	serializer, err := partition.NewSerializer(opts.StorageCompression)
	if err != nil {
		return nil, err
	}
	m := metrics.New(id.String())
	cacheConf := &pcache.Config{
		Serializer:   serializer,
		Logger:       logger,
		Metrics:      m,
		ReapInterval: opts.CacheReapInterval,
	}
	var cache *pcache.Cache
	if opts.CachePolicy == TimedCachePolicy {
		cache = pcache.NewTimed(opts.CacheTTL, cacheConf)
	} else {
		cache = pcache.NewUnbounded(cacheConf)
	}

	pool, err := ants.NewPool(opts.NumWorkers, ants.WithPanicHandler(func(p interface{}) {
		logger.Error("worker panicked", "panic", p)
	}))
	if err != nil {
		cache.Destroy()
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	runStats := &stats.RunStatistics{}
	engine, err := dataset.NewEngine(&dataset.Config{
		MaxAttempts:        opts.MaxAttempts,
		ShuffleParallelism: opts.ShuffleParallelism,
		Pool:               pool,
		Cache:              cache,
		Logger:             logger,
		Metrics:            m,
		Stats:              runStats,
	})
	if err != nil {
		pool.Release()
		cache.Destroy()
		return nil, err
	}
	logger.Debug("session started", "workers", opts.NumWorkers, "cache_policy", opts.CachePolicy)
	return &Session{
		id:       id.String(),
		opts:     opts,
		logger:   logger,
		pool:     pool,
		cache:    cache,
		registry: shared.NewRegistry(),
		metrics:  m,
		stats:    runStats,
		engine:   engine,
		fs:       fs,
	}, nil
}

// ID returns the unique ID of this Session
func (s *Session) ID() string {
	return s.id
}

// Options returns a copy of the (defaulted) Options of this Session
func (s *Session) Options() *Options {
	return CloneOptions(s.opts)
}

// Logger returns the Logger of this Session
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// FileSystem returns the FileSystem used by this Session to read and write files
func (s *Session) FileSystem() fileio.FileSystem {
	return s.fs
}

// Metrics returns the prometheus registry holding the metrics of this Session
func (s *Session) Metrics() prometheus.Gatherer {
	return s.metrics.Gatherer()
}

// Statistics returns statistics about the most recent action run in this Session
func (s *Session) Statistics() sparkling.RuntimeStatistics {
	return s.stats
}

// CachedPartitions returns the number of Partitions currently held by the partition cache
func (s *Session) CachedPartitions() int {
	return s.cache.Size()
}

// Accumulator creates a new Accumulator with a zero value and a merge function
func (s *Session) Accumulator(zero interface{}, merge shared.MergeFunc) (*shared.Accumulator, error) {
	return s.registry.NewAccumulator(zero, merge)
}

// Broadcast creates a new read-only Broadcast value
func (s *Session) Broadcast(value interface{}) (*shared.Broadcast, error) {
	return s.registry.NewBroadcast(value)
}

// Registry returns the registry of Accumulators and Broadcasts of this Session
func (s *Session) Registry() *shared.Registry {
	return s.registry
}

// Stop releases the worker pool, partition cache, shuffle outputs and registry of this Session.
// It is safe to call more than once. Datasets of a stopped Session can no longer be computed.
func (s *Session) Stop() error {
	s.stopOnce.Do(func() {
		s.logger.Debug("stopping session")
		s.stopErr = s.pool.ReleaseTimeout(releaseTimeout)
		s.cache.Destroy()
		s.engine.Destroy()
		s.registry.Destroy()
	})
	return s.stopErr
}
