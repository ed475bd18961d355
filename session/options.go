package session

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/fileio"
	"github.com/spf13/viper"
)

const (
	// UnboundedCachePolicy retains cached Partitions until they are unpersisted
	UnboundedCachePolicy = "unbounded"
	// TimedCachePolicy expires cached Partitions a fixed time after they are inserted
	TimedCachePolicy = "timed"
)

// Options are options for a Session, configuring its worker pool, partition cache and logging
type Options struct {
	NumWorkers         int               `mapstructure:"num_workers"`         // the number of Partitions computed concurrently by an action. Defaults to runtime.NumCPU()
	MaxAttempts        int               `mapstructure:"max_attempts"`        // the number of times a Partition computation is attempted before failing. Defaults to 4
	ShuffleParallelism int               `mapstructure:"shuffle_parallelism"` // the number of parent Partitions materialized concurrently by a shuffle. Defaults to NumWorkers
	CachePolicy        string            `mapstructure:"cache_policy"`        // "unbounded" or "timed". Defaults to "unbounded"
	CacheTTL           time.Duration     `mapstructure:"cache_ttl"`           // lifetime of cached Partitions under the "timed" policy. Defaults to 10 minutes
	CacheReapInterval  time.Duration     `mapstructure:"cache_reap_interval"` // how often expired Partitions are removed. Defaults to CacheTTL; negative disables reaping
	StorageCompression string            `mapstructure:"storage_compression"` // compression for serialized cached Partitions: "lz4" or "zstd". Defaults to "lz4"
	LogLevel           string            `mapstructure:"log_level"`           // TRACE, DEBUG, INFO, WARN, ERROR or FATAL. Defaults to INFO
	LogFormat          string            `mapstructure:"log_format"`          // "text" or "json". Defaults to "text"
	Logger             *slog.Logger      `mapstructure:"-"`                   // overrides LogLevel and LogFormat, if non-nil
	FileSystem         fileio.FileSystem `mapstructure:"-"`                   // the FileSystem used to read and write files. Defaults to the local file system
}

// CloneOptions makes a copy of an Options
func CloneOptions(opts *Options) *Options {
	clone := *opts
	return &clone
}

func ensureDefaultOptionsValues(opts *Options) error {
	// reject nonsensical options
	if opts.NumWorkers < 0 {
		return errors.Validationf("session", "NumWorkers must not be negative, got %d", opts.NumWorkers)
	}
	if opts.MaxAttempts < 0 {
		return errors.Validationf("session", "MaxAttempts must not be negative, got %d", opts.MaxAttempts)
	}
	if opts.CacheTTL < 0 {
		return errors.Validationf("session", "CacheTTL must not be negative, got %s", opts.CacheTTL)
	}
	// default certain options if not supplied
	if opts.NumWorkers == 0 {
		opts.NumWorkers = runtime.NumCPU()
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 4
	}
	if opts.ShuffleParallelism <= 0 {
		opts.ShuffleParallelism = opts.NumWorkers
	}
	opts.CachePolicy = strings.ToLower(opts.CachePolicy)
	switch opts.CachePolicy {
	case "":
		opts.CachePolicy = UnboundedCachePolicy
	case UnboundedCachePolicy, TimedCachePolicy:
	default:
		return errors.Validationf("session", "unknown CachePolicy %q", opts.CachePolicy)
	}
	if opts.CachePolicy == TimedCachePolicy && opts.CacheTTL == 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	if len(opts.StorageCompression) == 0 {
		opts.StorageCompression = "lz4"
	}
	if len(opts.LogLevel) == 0 {
		opts.LogLevel = "INFO"
	}
	if len(opts.LogFormat) == 0 {
		opts.LogFormat = "text"
	}
	return nil
}

// LoadOptions fills an Options from a .env file in the working directory (if present) and the
// environment, considering only variables whose names begin with prefix. For example, with the
// prefix "SPARKLING_", SPARKLING_NUM_WORKERS=8 sets NumWorkers. Environment variables take
// precedence over the .env file.
func LoadOptions(prefix string) (*Options, error) {
	v := viper.New()
	prefix = strings.ToLower(prefix)
	setPrefixed := func(key string, value interface{}) {
		key = strings.ToLower(key)
		if strings.HasPrefix(key, prefix) {
			v.Set(strings.TrimPrefix(key, prefix), value)
		}
	}

	// .env is optional
	fileConf := viper.New()
	fileConf.SetConfigFile(".env")
	if err := fileConf.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read .env: %w", err)
			}
		}
	} else {
		for _, key := range fileConf.AllKeys() {
			setPrefixed(key, fileConf.Get(key))
		}
	}

	for _, envStr := range os.Environ() {
		pair := strings.SplitN(envStr, "=", 2)
		if len(pair) == 2 {
			setPrefixed(pair[0], pair[1])
		}
	}

	opts := &Options{}
	if err := v.Unmarshal(opts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal options: %w", err)
	}
	return opts, nil
}
