package pcache

import (
	"fmt"
	"time"
)

// Key identifies a cached Partition
type Key struct {
	Dataset   int
	Partition int
}

// String returns a string representation of a Key, used for per-key locking
func (k Key) String() string {
	return fmt.Sprintf("%d/%d", k.Dataset, k.Partition)
}

// Policy decides when cached Partitions expire
type Policy interface {
	Name() string                                     // Name of the policy, for logging
	Expired(insertedAt time.Time, now time.Time) bool // Expired returns true iff an entry inserted at insertedAt is no longer valid
	ReapInterval() time.Duration                      // ReapInterval is how often expired entries should be removed, or 0 if they never expire
}

type unboundedPolicy struct{}

func (unboundedPolicy) Name() string {
	return "unbounded"
}

func (unboundedPolicy) Expired(insertedAt time.Time, now time.Time) bool {
	return false
}

func (unboundedPolicy) ReapInterval() time.Duration {
	return 0
}

// timedPolicy expires entries a fixed duration after insertion, regardless of access
type timedPolicy struct {
	ttl time.Duration
}

func (p timedPolicy) Name() string {
	return fmt.Sprintf("timed(%s)", p.ttl)
}

func (p timedPolicy) Expired(insertedAt time.Time, now time.Time) bool {
	return now.Sub(insertedAt) >= p.ttl
}

func (p timedPolicy) ReapInterval() time.Duration {
	return p.ttl
}
