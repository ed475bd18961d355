// Package pcache implements the partition cache consulted while materializing Datasets.
// Entries are keyed by (Dataset ID, Partition index), retained per a Policy, and stored
// either by reference or serialized and compressed, per the StorageLevel of their Dataset.
package pcache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/docker/docker/pkg/locker"
	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/internal/metrics"
	"github.com/go-sif/sparkling/internal/partition"
	"github.com/go-sif/sparkling/logging"
	"golang.org/x/sync/singleflight"
)

// Config configures a Cache
type Config struct {
	Serializer   partition.Serializer // Serializer for StorageMemoryOnlySer Datasets. Defaults to lz4.
	Logger       *slog.Logger         // Logger for evictions and serialization failures. Defaults to discarding.
	Metrics      *metrics.Metrics     // Metrics to update. Optional.
	Clock        func() time.Time     // Clock used to timestamp entries. Defaults to time.Now.
	ReapInterval time.Duration        // ReapInterval overrides the Policy's interval for removing expired entries. Negative disables reaping.
}

type entry struct {
	part       sparkling.Partition
	serialized []byte
	insertedAt time.Time
}

type persistence struct {
	level  sparkling.StorageLevel
	schema sparkling.Schema
}

// Cache is a PartitionCache with a pluggable expiry Policy
type Cache struct {
	policy      Policy
	config      Config
	plocks      *locker.Locker
	group       singleflight.Group
	entriesLock sync.RWMutex
	entries     map[Key]*entry
	levelsLock  sync.RWMutex
	levels      map[int]persistence
	stop        chan struct{}
	stopOnce    sync.Once
	reaper      sync.WaitGroup
}

// NewUnbounded produces a Cache whose entries live until they are evicted or their Dataset is unpersisted
func NewUnbounded(conf *Config) *Cache {
	return newCache(unboundedPolicy{}, conf)
}

// NewTimed produces a Cache whose entries expire a fixed duration after insertion.
// Expired entries are misses, and are removed periodically by a background goroutine
// until the Cache is destroyed.
func NewTimed(ttl time.Duration, conf *Config) *Cache {
	return newCache(timedPolicy{ttl: ttl}, conf)
}

func newCache(policy Policy, conf *Config) *Cache {
	c := &Cache{
		policy:  policy,
		plocks:  locker.New(),
		entries: make(map[Key]*entry),
		levels:  make(map[int]persistence),
		stop:    make(chan struct{}),
	}
	if conf != nil {
		c.config = *conf
	}
	if c.config.Serializer == nil {
		c.config.Serializer = partition.NewLZ4PartitionSerializer()
	}
	if c.config.Logger == nil {
		c.config.Logger = logging.Discard()
	}
	if c.config.Clock == nil {
		c.config.Clock = time.Now
	}
	interval := c.config.ReapInterval
	if interval == 0 {
		interval = policy.ReapInterval()
	}
	if interval > 0 {
		c.reaper.Add(1)
		go c.reap(interval)
	}
	return c
}

// Policy returns the expiry Policy of this Cache
func (c *Cache) Policy() Policy {
	return c.policy
}

func (c *Cache) reap(interval time.Duration) {
	defer c.reaper.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.RemoveExpired()
		}
	}
}

// RemoveExpired evicts every expired entry, returning the number evicted
func (c *Cache) RemoveExpired() int {
	now := c.config.Clock()
	c.entriesLock.Lock()
	removed := 0
	for k, e := range c.entries {
		if c.policy.Expired(e.insertedAt, now) {
			delete(c.entries, k)
			removed++
		}
	}
	size := len(c.entries)
	c.entriesLock.Unlock()
	if removed > 0 {
		c.config.Logger.Debug("removed expired partitions", "count", removed, "policy", c.policy.Name())
		c.recordEvictions(removed, size)
	}
	return removed
}

func (c *Cache) recordEvictions(n int, size int) {
	if c.config.Metrics != nil {
		c.config.Metrics.CacheEvictions.Add(float64(n))
		c.config.Metrics.CachedPartitions.Set(float64(size))
	}
}

// Get returns a cached Partition, if present and not expired
func (c *Cache) Get(datasetID int, index int) (sparkling.Partition, bool) {
	part, ok := c.get(Key{datasetID, index})
	if c.config.Metrics != nil {
		if ok {
			c.config.Metrics.CacheHit()
		} else {
			c.config.Metrics.CacheMiss()
		}
	}
	return part, ok
}

func (c *Cache) get(key Key) (sparkling.Partition, bool) {
	c.entriesLock.RLock()
	e, ok := c.entries[key]
	c.entriesLock.RUnlock()
	if !ok || c.policy.Expired(e.insertedAt, c.config.Clock()) {
		return nil, false
	}
	if e.part != nil {
		return e.part, true
	}
	// serialized entries are decoded under the key's lock, so that a failed
	// entry is never confused with one stored concurrently by Put
	c.plocks.Lock(key.String())
	defer c.plocks.Unlock(key.String())
	part, err := c.config.Serializer.Deserialize(e.serialized, c.persistenceOf(key.Dataset).schema)
	if err != nil {
		c.config.Logger.Warn("unable to deserialize cached partition", "key", key.String(), "error", err)
		c.entriesLock.Lock()
		evicted := c.entries[key] == e
		if evicted {
			delete(c.entries, key)
		}
		size := len(c.entries)
		c.entriesLock.Unlock()
		if evicted {
			c.recordEvictions(1, size)
		}
		return nil, false
	}
	return part, true
}

// Put stores a Partition, if its Dataset is persisted. Partitions of StorageMemoryOnlySer
// Datasets which cannot be serialized are stored by reference instead.
func (c *Cache) Put(datasetID int, index int, part sparkling.Partition) error {
	p := c.persistenceOf(datasetID)
	if p.level == sparkling.StorageNone {
		return nil
	}
	key := Key{datasetID, index}
	e := &entry{insertedAt: c.config.Clock()}
	if p.level == sparkling.StorageMemoryOnlySer {
		data, err := c.config.Serializer.Serialize(part)
		if err != nil {
			c.config.Logger.Warn("unable to serialize partition, caching it by reference", "key", key.String(), "error", err)
			e.part = part
		} else {
			e.serialized = data
		}
	} else {
		e.part = part
	}
	c.plocks.Lock(key.String())
	defer c.plocks.Unlock(key.String())
	c.entriesLock.Lock()
	c.entries[key] = e
	size := len(c.entries)
	c.entriesLock.Unlock()
	if c.config.Metrics != nil {
		c.config.Metrics.CachedPartitions.Set(float64(size))
	}
	return nil
}

// Evict removes a single cached Partition
func (c *Cache) Evict(datasetID int, index int) {
	key := Key{datasetID, index}
	c.plocks.Lock(key.String())
	defer c.plocks.Unlock(key.String())
	c.entriesLock.Lock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	size := len(c.entries)
	c.entriesLock.Unlock()
	if ok {
		c.recordEvictions(1, size)
	}
}

// Clear removes every cached Partition. Persistence settings are retained.
func (c *Cache) Clear() {
	c.entriesLock.Lock()
	n := len(c.entries)
	c.entries = make(map[Key]*entry)
	c.entriesLock.Unlock()
	c.recordEvictions(n, 0)
}

// GetOrCompute returns a cached Partition, or computes it on a miss. Concurrent callers
// requesting the same missing key share a single computation, and its result or error.
// If that computation was abandoned because the context of the caller which started it
// was cancelled, callers whose own ctx is still live start a new computation instead.
// Partitions of Datasets which are not persisted are always computed.
func (c *Cache) GetOrCompute(ctx context.Context, datasetID int, index int, compute func() (sparkling.Partition, error)) (sparkling.Partition, error) {
	if c.StorageLevel(datasetID) == sparkling.StorageNone {
		return compute()
	}
	if part, ok := c.Get(datasetID, index); ok {
		return part, nil
	}
	key := Key{datasetID, index}
	for {
		led := false
		res, err, _ := c.group.Do(key.String(), func() (interface{}, error) {
			led = true
			// a computation may have completed between the miss and acquiring the flight
			if part, ok := c.get(key); ok {
				return part, nil
			}
			part, err := compute()
			if err != nil {
				return nil, err
			}
			if err := c.Put(datasetID, index, part); err != nil {
				return nil, err
			}
			return part, nil
		})
		if err != nil {
			if !led && errors.IsCancellation(err) && ctx.Err() == nil {
				c.config.Logger.Debug("shared computation was cancelled, recomputing", "key", key.String())
				continue
			}
			return nil, err
		}
		return res.(sparkling.Partition), nil
	}
}

func (c *Cache) persistenceOf(datasetID int) persistence {
	c.levelsLock.RLock()
	defer c.levelsLock.RUnlock()
	return c.levels[datasetID]
}

// Persist marks a Dataset for caching at a StorageLevel. Changing the level of
// a Dataset evicts Partitions cached at the previous level.
func (c *Cache) Persist(datasetID int, level sparkling.StorageLevel, schema sparkling.Schema) {
	if level == sparkling.StorageNone {
		c.Unpersist(datasetID)
		return
	}
	c.levelsLock.Lock()
	previous, ok := c.levels[datasetID]
	c.levels[datasetID] = persistence{level: level, schema: schema}
	c.levelsLock.Unlock()
	if ok && previous.level != level {
		c.evictDataset(datasetID)
	}
}

// Unpersist stops caching a Dataset and evicts all of its Partitions
func (c *Cache) Unpersist(datasetID int) {
	c.levelsLock.Lock()
	delete(c.levels, datasetID)
	c.levelsLock.Unlock()
	c.evictDataset(datasetID)
}

func (c *Cache) evictDataset(datasetID int) {
	c.entriesLock.Lock()
	removed := 0
	for k := range c.entries {
		if k.Dataset == datasetID {
			delete(c.entries, k)
			removed++
		}
	}
	size := len(c.entries)
	c.entriesLock.Unlock()
	if removed > 0 {
		c.config.Logger.Debug("evicted dataset partitions", "dataset", datasetID, "count", removed)
		c.recordEvictions(removed, size)
	}
}

// StorageLevel returns the StorageLevel of a Dataset
func (c *Cache) StorageLevel(datasetID int) sparkling.StorageLevel {
	return c.persistenceOf(datasetID).level
}

// Size returns the number of entries in the cache, including expired ones which have not yet been removed
func (c *Cache) Size() int {
	c.entriesLock.RLock()
	defer c.entriesLock.RUnlock()
	return len(c.entries)
}

// Destroy stops the background reaper, if any, and empties the cache
func (c *Cache) Destroy() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
	c.reaper.Wait()
	c.Clear()
}
