// Package dataset implements the lazy transformation graph: an append-only arena
// of immutable Dataset nodes, and the engine which materializes their Partitions
// on demand, with retries, shuffles and partition caching.
package dataset

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/internal/metrics"
	"github.com/go-sif/sparkling/internal/stats"
	"github.com/go-sif/sparkling/logging"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/singleflight"
)

// Config configures an Engine
type Config struct {
	MaxAttempts        int                      // MaxAttempts is the number of times a Partition computation is attempted before failing
	ShuffleParallelism int                      // ShuffleParallelism bounds the number of parent Partitions materialized concurrently by a shuffle
	Pool               *ants.Pool               // Pool runs the Partition computations of actions
	Cache              sparkling.PartitionCache // Cache holds the Partitions of persisted Datasets
	Logger             *slog.Logger
	Metrics            *metrics.Metrics
	Stats              *stats.RunStatistics
}

// Engine owns the Dataset arena of a session, and materializes Partitions of those Datasets
type Engine struct {
	conf         Config
	cache        sparkling.PartitionCache
	nodesLock    sync.RWMutex
	nodes        []*datasetImpl
	shuffles     singleflight.Group
	shuffledLock sync.Mutex
	shuffled     map[int][][]interface{} // bucketed output of completed shuffles, by Dataset ID
}

// NewEngine produces an Engine. Cache and Pool are required.
func NewEngine(conf *Config) (*Engine, error) {
	if conf == nil || conf.Cache == nil || conf.Pool == nil {
		return nil, fmt.Errorf("an engine requires a partition cache and a worker pool")
	}
	e := &Engine{
		conf:     *conf,
		cache:    conf.Cache,
		shuffled: make(map[int][][]interface{}),
	}
	if e.conf.MaxAttempts < 1 {
		e.conf.MaxAttempts = 1
	}
	if e.conf.ShuffleParallelism < 1 {
		e.conf.ShuffleParallelism = e.conf.Pool.Cap()
	}
	if e.conf.Logger == nil {
		e.conf.Logger = logging.Discard()
	}
	if e.conf.Stats == nil {
		e.conf.Stats = &stats.RunStatistics{}
	}
	return e, nil
}

// newDataset appends a node to the arena. Parents must belong to this Engine, and so must already exist.
func (e *Engine) newDataset(kind sparkling.OperationKind, task sparkling.Task, numPartitions int, schema sparkling.Schema, parents []sparkling.Dataset) (*datasetImpl, error) {
	impls := make([]*datasetImpl, len(parents))
	for i, p := range parents {
		impl, ok := p.(*datasetImpl)
		if !ok || impl.engine != e {
			return nil, errors.Validationf(string(kind), "parent dataset %d belongs to another session", p.ID())
		}
		impls[i] = impl
	}
	if kind.IsShuffle() {
		if _, ok := task.(sparkling.ShuffleTask); !ok {
			return nil, errors.Validationf(string(kind), "shuffle operations require a ShuffleTask")
		}
		if len(impls) == 0 {
			return nil, errors.Validationf(string(kind), "shuffle operations require a parent")
		}
	}
	e.nodesLock.Lock()
	defer e.nodesLock.Unlock()
	d := &datasetImpl{
		engine:        e,
		id:            len(e.nodes),
		kind:          kind,
		task:          task,
		numPartitions: numPartitions,
		schema:        schema,
		parents:       impls,
	}
	e.nodes = append(e.nodes, d)
	return d, nil
}

// NewDataset creates a Dataset computed by a Task from zero or more parent Datasets
func (e *Engine) NewDataset(kind sparkling.OperationKind, task sparkling.Task, numPartitions int, schema sparkling.Schema, parents ...sparkling.Dataset) (sparkling.Dataset, error) {
	if numPartitions < 0 {
		return nil, errors.Validationf(string(kind), "number of partitions must not be negative, got %d", numPartitions)
	}
	return e.newDataset(kind, task, numPartitions, schema, parents)
}

// FromDataSource creates a source Dataset, with one Partition per PartitionLoader of the DataSource
func (e *Engine) FromDataSource(source sparkling.DataSource) (sparkling.Dataset, error) {
	pmap, err := source.Analyze()
	if err != nil {
		return nil, err
	}
	loaders := make([]sparkling.PartitionLoader, 0)
	for pmap.HasNext() {
		loaders = append(loaders, pmap.Next())
	}
	return e.newDataset(sparkling.SourceOperation, &sourceTask{loaders: loaders}, len(loaders), source.Schema(), nil)
}

// Get returns the Dataset with the given handle
func (e *Engine) Get(id int) (sparkling.Dataset, bool) {
	e.nodesLock.RLock()
	defer e.nodesLock.RUnlock()
	if id < 0 || id >= len(e.nodes) {
		return nil, false
	}
	return e.nodes[id], true
}

// NumDatasets returns the number of Datasets in the arena
func (e *Engine) NumDatasets() int {
	e.nodesLock.RLock()
	defer e.nodesLock.RUnlock()
	return len(e.nodes)
}

// Destroy releases the shuffle outputs held by this Engine
func (e *Engine) Destroy() {
	e.shuffledLock.Lock()
	defer e.shuffledLock.Unlock()
	e.shuffled = make(map[int][][]interface{})
}

// EngineOf returns the Engine which owns a Dataset
func EngineOf(d sparkling.Dataset) (*Engine, error) {
	impl, ok := d.(*datasetImpl)
	if !ok {
		return nil, fmt.Errorf("dataset %d was not created by an engine", d.ID())
	}
	return impl.engine, nil
}

// sourceTask loads source Partitions from PartitionLoaders
type sourceTask struct {
	loaders []sparkling.PartitionLoader
}

func (s *sourceTask) RunWorker(tctx sparkling.TaskContext, index int) ([]interface{}, error) {
	if index < 0 || index >= len(s.loaders) {
		return nil, fmt.Errorf("source partition %d out of range", index)
	}
	return s.loaders[index].Load(tctx)
}
