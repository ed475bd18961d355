package pcache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/internal/metrics"
	"github.com/go-sif/sparkling/internal/partition"
	"github.com/go-sif/sparkling/schema"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var _ sparkling.PartitionCache = &Cache{}

func TestPutRequiresPersistence(t *testing.T) {
	cache := NewUnbounded(nil)
	defer cache.Destroy()
	part := partition.CreatePartition(0, []interface{}{1, 2})
	require.Nil(t, cache.Put(1, 0, part))
	_, ok := cache.Get(1, 0)
	require.False(t, ok)

	cache.Persist(1, sparkling.StorageMemoryOnly, nil)
	require.Nil(t, cache.Put(1, 0, part))
	cached, ok := cache.Get(1, 0)
	require.True(t, ok)
	require.Equal(t, part.ID(), cached.ID())
	require.Equal(t, sparkling.StorageMemoryOnly, cache.StorageLevel(1))

	cache.Evict(1, 0)
	_, ok = cache.Get(1, 0)
	require.False(t, ok)
}

func TestGetOrComputeIsSingleFlight(t *testing.T) {
	m := metrics.New("test")
	cache := NewUnbounded(&Config{Metrics: m})
	defer cache.Destroy()
	cache.Persist(7, sparkling.StorageMemoryOnly, nil)

	var computations int32
	release := make(chan struct{})
	compute := func() (sparkling.Partition, error) {
		atomic.AddInt32(&computations, 1)
		<-release
		return partition.CreatePartition(3, []interface{}{"a", "b"}), nil
	}
	var wg sync.WaitGroup
	results := make([]sparkling.Partition, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			part, err := cache.GetOrCompute(context.Background(), 7, 3, compute)
			require.Nil(t, err)
			results[i] = part
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	require.Equal(t, int32(1), atomic.LoadInt32(&computations))
	for _, part := range results {
		require.Equal(t, results[0].ID(), part.ID())
	}
	again, err := cache.GetOrCompute(context.Background(), 7, 3, compute)
	require.Nil(t, err)
	require.Equal(t, results[0].ID(), again.ID())
	require.Equal(t, int32(1), atomic.LoadInt32(&computations))
	require.True(t, testutil.ToFloat64(m.CacheRequests.WithLabelValues("hit")) >= 1)
}

func TestGetOrComputePropagatesFailure(t *testing.T) {
	cache := NewUnbounded(nil)
	defer cache.Destroy()
	cache.Persist(1, sparkling.StorageMemoryOnly, nil)
	_, err := cache.GetOrCompute(context.Background(), 1, 0, func() (sparkling.Partition, error) {
		return nil, fmt.Errorf("boom")
	})
	require.EqualError(t, err, "boom")
	require.Equal(t, 0, cache.Size())
	part, err := cache.GetOrCompute(context.Background(), 1, 0, func() (sparkling.Partition, error) {
		return partition.CreatePartition(0, []interface{}{1}), nil
	})
	require.Nil(t, err)
	require.Equal(t, 1, part.GetNumRows())
}

func TestUncachedDatasetsAreAlwaysComputed(t *testing.T) {
	cache := NewUnbounded(nil)
	defer cache.Destroy()
	calls := 0
	for i := 0; i < 3; i++ {
		_, err := cache.GetOrCompute(context.Background(), 1, 0, func() (sparkling.Partition, error) {
			calls++
			return partition.CreatePartition(0, nil), nil
		})
		require.Nil(t, err)
	}
	require.Equal(t, 3, calls)
}

func TestTimedExpiry(t *testing.T) {
	now := time.Unix(1000, 0)
	var clockLock sync.Mutex
	clock := func() time.Time {
		clockLock.Lock()
		defer clockLock.Unlock()
		return now
	}
	cache := NewTimed(time.Minute, &Config{Clock: clock, ReapInterval: -1})
	defer cache.Destroy()
	cache.Persist(2, sparkling.StorageMemoryOnly, nil)
	require.Nil(t, cache.Put(2, 0, partition.CreatePartition(0, []interface{}{1})))

	clockLock.Lock()
	now = now.Add(59 * time.Second)
	clockLock.Unlock()
	_, ok := cache.Get(2, 0)
	require.True(t, ok)

	clockLock.Lock()
	now = now.Add(time.Second)
	clockLock.Unlock()
	_, ok = cache.Get(2, 0)
	require.False(t, ok)
	require.Equal(t, 1, cache.Size())
	require.Equal(t, 1, cache.RemoveExpired())
	require.Equal(t, 0, cache.Size())
}

func TestTimedReaperStops(t *testing.T) {
	cache := NewTimed(10*time.Millisecond, nil)
	cache.Persist(1, sparkling.StorageMemoryOnly, nil)
	require.Nil(t, cache.Put(1, 0, partition.CreatePartition(0, []interface{}{1})))
	require.Eventually(t, func() bool { return cache.Size() == 0 }, time.Second, 5*time.Millisecond)
	cache.Destroy()
	cache.Destroy()
}

func TestSerializedStorage(t *testing.T) {
	s, err := schema.CreateSchemaFromColumns([]string{"n"}, []sparkling.ColumnType{&sparkling.Int64ColumnType{}})
	require.Nil(t, err)
	row, err := partition.CreateRow([]interface{}{5}, s)
	require.Nil(t, err)
	for _, compression := range []string{"lz4", "zstd"} {
		serializer, err := partition.NewSerializer(compression)
		require.Nil(t, err)
		cache := NewUnbounded(&Config{Serializer: serializer})
		cache.Persist(4, sparkling.StorageMemoryOnlySer, s)
		require.Nil(t, cache.Put(4, 1, partition.CreatePartition(1, []interface{}{row})))
		cache.entriesLock.RLock()
		require.NotEmpty(t, cache.entries[Key{4, 1}].serialized)
		cache.entriesLock.RUnlock()
		cached, ok := cache.Get(4, 1)
		require.True(t, ok)
		require.Equal(t, 1, cached.GetNumRows())
		v, err := cached.Get(0).(sparkling.Row).GetInt64("n")
		require.Nil(t, err)
		require.Equal(t, int64(5), v)
		cache.Destroy()
	}
}

func TestUnpersistEvictsDataset(t *testing.T) {
	m := metrics.New("test")
	cache := NewUnbounded(&Config{Metrics: m})
	defer cache.Destroy()
	cache.Persist(1, sparkling.StorageMemoryOnly, nil)
	cache.Persist(2, sparkling.StorageMemoryOnly, nil)
	for i := 0; i < 3; i++ {
		require.Nil(t, cache.Put(1, i, partition.CreatePartition(i, nil)))
		require.Nil(t, cache.Put(2, i, partition.CreatePartition(i, nil)))
	}
	cache.Unpersist(1)
	require.Equal(t, 3, cache.Size())
	require.Equal(t, sparkling.StorageNone, cache.StorageLevel(1))
	require.Equal(t, 3.0, testutil.ToFloat64(m.CacheEvictions))
	cache.Persist(2, sparkling.StorageMemoryOnlySer, nil)
	require.Equal(t, 0, cache.Size())
}

// racingSerializer stores a replacement Partition concurrently with the decoding of corrupt data
type racingSerializer struct {
	partition.Serializer
	cache    *Cache
	replaced chan error
}

func (s *racingSerializer) Deserialize(data []byte, schema sparkling.Schema) (sparkling.Partition, error) {
	if string(data) != "corrupt" {
		return s.Serializer.Deserialize(data, schema)
	}
	go func() {
		s.replaced <- s.cache.Put(3, 0, partition.CreatePartition(0, []interface{}{"fresh"}))
	}()
	time.Sleep(20 * time.Millisecond)
	return nil, fmt.Errorf("corrupt partition")
}

func TestCorruptEntryEvictionKeepsConcurrentPut(t *testing.T) {
	serializer := &racingSerializer{Serializer: partition.NewLZ4PartitionSerializer(), replaced: make(chan error, 1)}
	cache := NewUnbounded(&Config{Serializer: serializer})
	defer cache.Destroy()
	serializer.cache = cache
	cache.Persist(3, sparkling.StorageMemoryOnlySer, nil)
	cache.entriesLock.Lock()
	cache.entries[Key{3, 0}] = &entry{serialized: []byte("corrupt"), insertedAt: time.Now()}
	cache.entriesLock.Unlock()

	_, ok := cache.Get(3, 0)
	require.False(t, ok)
	require.Nil(t, <-serializer.replaced)
	part, ok := cache.Get(3, 0)
	require.True(t, ok)
	require.Equal(t, []interface{}{"fresh"}, part.Elements())
}

func TestGetOrComputeRecoversFromCancelledLeader(t *testing.T) {
	cache := NewUnbounded(nil)
	defer cache.Destroy()
	cache.Persist(5, sparkling.StorageMemoryOnly, nil)

	leading := make(chan struct{})
	release := make(chan struct{})
	leaderErr := make(chan error, 1)
	go func() {
		_, err := cache.GetOrCompute(context.Background(), 5, 0, func() (sparkling.Partition, error) {
			close(leading)
			<-release
			return nil, context.Canceled
		})
		leaderErr <- err
	}()
	<-leading
	var computations int32
	waiterDone := make(chan struct{})
	var part sparkling.Partition
	var err error
	go func() {
		defer close(waiterDone)
		part, err = cache.GetOrCompute(context.Background(), 5, 0, func() (sparkling.Partition, error) {
			atomic.AddInt32(&computations, 1)
			return partition.CreatePartition(0, []interface{}{1}), nil
		})
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)
	require.ErrorIs(t, <-leaderErr, context.Canceled)
	<-waiterDone
	require.Nil(t, err)
	require.Equal(t, 1, part.GetNumRows())
	require.Equal(t, int32(1), atomic.LoadInt32(&computations))

	// a waiter whose own context is done receives the cancellation
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cache.Evict(5, 0)
	_, err = cache.GetOrCompute(ctx, 5, 0, func() (sparkling.Partition, error) {
		return nil, ctx.Err()
	})
	require.ErrorIs(t, err, context.Canceled)
}
