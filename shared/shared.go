// Package shared provides the state which may be shared between the Partition computations
// of a session: Accumulators, which aggregate writes, and Broadcasts, which are read-only.
//
// Partition computations may be retried, so an Accumulator update made by a computation
// which subsequently fails will be applied again by the retry. Accumulator values are
// therefore only exact when the computations updating them never fail.
package shared

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/internal/util"
)

// MergeFunc combines the current value of an Accumulator with a delta. It must be associative and commutative.
type MergeFunc func(current interface{}, delta interface{}) (interface{}, error)

// Registry holds the Accumulators and Broadcasts of a session, identified by IDs unique within it
type Registry struct {
	nextID       uint64
	lock         sync.RWMutex
	destroyed    bool
	accumulators map[uint64]*Accumulator
	broadcasts   map[uint64]*Broadcast
}

// NewRegistry produces an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		accumulators: make(map[uint64]*Accumulator),
		broadcasts:   make(map[uint64]*Broadcast),
	}
}

func (r *Registry) register(fn func(id uint64)) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.destroyed {
		return fmt.Errorf("registry has been destroyed")
	}
	fn(atomic.AddUint64(&r.nextID, 1))
	return nil
}

// NewAccumulator registers a new Accumulator, with an initial value and a MergeFunc
func (r *Registry) NewAccumulator(zero interface{}, merge MergeFunc) (*Accumulator, error) {
	if merge == nil {
		return nil, errors.ValidationError{Operation: "accumulator", Message: "merge function must not be nil"}
	}
	var acc *Accumulator
	err := r.register(func(id uint64) {
		acc = &Accumulator{id: id, value: zero, merge: merge}
		r.accumulators[id] = acc
	})
	return acc, err
}

// NewBroadcast registers a new Broadcast of an immutable value
func (r *Registry) NewBroadcast(value interface{}) (*Broadcast, error) {
	var b *Broadcast
	err := r.register(func(id uint64) {
		b = &Broadcast{id: id, value: value}
		r.broadcasts[id] = b
	})
	return b, err
}

// Accumulator looks up an Accumulator by ID
func (r *Registry) Accumulator(id uint64) (*Accumulator, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	acc, ok := r.accumulators[id]
	return acc, ok
}

// Broadcast looks up a Broadcast by ID
func (r *Registry) Broadcast(id uint64) (*Broadcast, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	b, ok := r.broadcasts[id]
	return b, ok
}

// Destroy forgets every registered Accumulator and Broadcast. Existing handles remain
// usable, but no new ones may be registered.
func (r *Registry) Destroy() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.destroyed = true
	r.accumulators = make(map[uint64]*Accumulator)
	r.broadcasts = make(map[uint64]*Broadcast)
}

// Accumulator is a write-aggregating value, updated by Partition computations and read once an action completes
type Accumulator struct {
	id    uint64
	lock  sync.Mutex
	value interface{}
	merge MergeFunc
}

// ID returns the ID of this Accumulator
func (a *Accumulator) ID() uint64 {
	return a.id
}

// Add merges a delta into this Accumulator. It is safe to call concurrently.
// A failing or panicking merge function leaves the value unchanged.
func (a *Accumulator) Add(delta interface{}) error {
	a.lock.Lock()
	defer a.lock.Unlock()
	var merged interface{}
	err := util.SafeCall("Accumulator", func() (err error) {
		merged, err = a.merge(a.value, delta)
		return err
	})
	if err != nil {
		return &errors.ComputationError{Accumulator: a.id, Kind: "accumulator", Attempts: 1, Err: err}
	}
	a.value = merged
	return nil
}

// Value returns the current value of this Accumulator. It is only meaningful once every action updating it has completed.
func (a *Accumulator) Value() interface{} {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.value
}

// Broadcast is an immutable value shared by reference with every Partition computation
type Broadcast struct {
	id    uint64
	value interface{}
}

// ID returns the ID of this Broadcast
func (b *Broadcast) ID() uint64 {
	return b.id
}

// Value returns the broadcast value
func (b *Broadcast) Value() interface{} {
	return b.value
}
