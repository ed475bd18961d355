package dataset

import (
	"fmt"
	"strings"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
)

// A datasetImpl implements Dataset internally. It is an immutable node in the
// session's arena, and only ever references nodes created before it.
type datasetImpl struct {
	engine        *Engine
	id            int                     // the handle of this node within the arena
	kind          sparkling.OperationKind // the kind of operation which produced this Dataset
	task          sparkling.Task          // the task which computes Partitions of this Dataset from its parents
	numPartitions int
	schema        sparkling.Schema // the Schema of the Rows in this Dataset. Nil if it holds raw elements.
	parents       []*datasetImpl
}

// ID returns the handle of this Dataset within its session
func (d *datasetImpl) ID() int {
	return d.id
}

// Kind returns the kind of operation which produced this Dataset
func (d *datasetImpl) Kind() sparkling.OperationKind {
	return d.kind
}

// NumPartitions returns the number of Partitions in this Dataset
func (d *datasetImpl) NumPartitions() int {
	return d.numPartitions
}

// Schema returns the Schema of the Rows in this Dataset, or nil if it holds raw elements
func (d *datasetImpl) Schema() sparkling.Schema {
	return d.schema
}

// Parents returns the Datasets this Dataset is computed from
func (d *datasetImpl) Parents() []sparkling.Dataset {
	parents := make([]sparkling.Dataset, len(d.parents))
	for i, p := range d.parents {
		parents[i] = p
	}
	return parents
}

// To is a "functional operations" factory method for Datasets,
// chaining operations onto the current one.
func (d *datasetImpl) To(ops ...*sparkling.DatasetOperation) (sparkling.Dataset, error) {
	next := d
	// See https://dave.cheney.net/2014/10/17/functional-options-for-friendly-apis for details of approach
	for _, op := range ops {
		result, err := op.Do(next)
		if err != nil {
			return nil, err
		}
		if result.Unchanged {
			continue
		}
		if result.NumPartitions < 0 {
			return nil, errors.Validationf(string(op.Kind), "number of partitions must not be negative, got %d", result.NumPartitions)
		}
		if result.Task == nil {
			return nil, errors.Validationf(string(op.Kind), "operation produced no task")
		}
		parents := []sparkling.Dataset{next}
		next, err = d.engine.newDataset(op.Kind, result.Task, result.NumPartitions, result.Schema, append(parents, result.Parents...))
		if err != nil {
			return nil, err
		}
	}
	return next, nil
}

// Cache marks this Dataset for in-memory caching, returning it
func (d *datasetImpl) Cache() sparkling.Dataset {
	d.engine.cache.Persist(d.id, sparkling.StorageMemoryOnly, d.schema)
	return d
}

// Persist marks this Dataset for caching with the given StorageLevel, returning it
func (d *datasetImpl) Persist(level sparkling.StorageLevel) (sparkling.Dataset, error) {
	switch level {
	case sparkling.StorageNone, sparkling.StorageMemoryOnly, sparkling.StorageMemoryOnlySer:
	default:
		return nil, errors.Validationf("persist", "unsupported storage level %d", level)
	}
	if level == sparkling.StorageNone {
		return d.Unpersist(), nil
	}
	d.engine.cache.Persist(d.id, level, d.schema)
	return d, nil
}

// Unpersist removes all cached Partitions for this Dataset and stops caching it. Shuffles
// over this Dataset are rerun by the next action which needs them.
func (d *datasetImpl) Unpersist() sparkling.Dataset {
	d.engine.cache.Unpersist(d.id)
	d.engine.dropShuffles(d.id)
	return d
}

// IsCached returns true iff this Dataset is marked for caching
func (d *datasetImpl) IsCached() bool {
	return d.StorageLevel() != sparkling.StorageNone
}

// StorageLevel returns the current StorageLevel of this Dataset
func (d *datasetImpl) StorageLevel() sparkling.StorageLevel {
	return d.engine.cache.StorageLevel(d.id)
}

// ToString returns a description of this Dataset and its lineage
func (d *datasetImpl) ToString() string {
	var sb strings.Builder
	d.describe(&sb, 0)
	return strings.TrimRight(sb.String(), "\n")
}

func (d *datasetImpl) describe(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(sb, "(%d) %s[%d]", d.numPartitions, d.kind, d.id)
	if d.schema != nil {
		fmt.Fprintf(sb, " %s", d.schema.ToString())
	}
	if level := d.StorageLevel(); level != sparkling.StorageNone {
		fmt.Fprintf(sb, " %s", level)
	}
	sb.WriteString("\n")
	for _, p := range d.parents {
		p.describe(sb, depth+1)
	}
}
