// Package stats provides streaming, mergeable numeric aggregators: StatCounter
// (count, mean, variance, min and max), CovarianceCounter and QuantileSketch.
// Each may be built up one value at a time within a Partition, and then merged
// with the aggregators of other Partitions without replaying any values.
package stats

import (
	"fmt"
	"math"
)

// StatCounter tracks the count, mean, variance, min and max of a stream of values,
// using Welford's numerically stable online algorithm
type StatCounter struct {
	n   int64   // running count of values
	mu  float64 // running mean of values
	m2  float64 // running sum of squared deviations from the mean
	max float64
	min float64
}

// NewStatCounter creates a StatCounter, merging in any initial values
func NewStatCounter(values ...float64) *StatCounter {
	s := &StatCounter{max: math.Inf(-1), min: math.Inf(1)}
	for _, v := range values {
		s.Merge(v)
	}
	return s
}

// Merge adds a value into this StatCounter, updating its statistics
func (s *StatCounter) Merge(value float64) *StatCounter {
	delta := value - s.mu
	s.n++
	s.mu += delta / float64(s.n)
	s.m2 += delta * (value - s.mu)
	s.max = math.Max(s.max, value)
	s.min = math.Min(s.min, value)
	return s
}

// MergeStats combines another StatCounter into this one. Merging a StatCounter
// into itself merges an independent copy.
func (s *StatCounter) MergeStats(other *StatCounter) *StatCounter {
	if other == s {
		return s.MergeStats(other.Copy())
	}
	if s.n == 0 {
		*s = *other
		return s
	}
	if other.n == 0 {
		return s
	}
	n, on := float64(s.n), float64(other.n)
	delta := other.mu - s.mu
	// pick the mean update which loses the least precision for the relative sizes of the counters
	switch {
	case on*10 < n:
		s.mu = s.mu + delta*on/(n+on)
	case n*10 < on:
		s.mu = other.mu - delta*n/(n+on)
	default:
		s.mu = (s.mu*n + other.mu*on) / (n + on)
	}
	s.m2 += other.m2 + delta*delta*n*on/(n+on)
	s.n += other.n
	s.max = math.Max(s.max, other.max)
	s.min = math.Min(s.min, other.min)
	return s
}

// Copy returns an independent copy of this StatCounter
func (s *StatCounter) Copy() *StatCounter {
	c := *s
	return &c
}

// Count returns the number of values merged into this StatCounter
func (s *StatCounter) Count() int64 {
	return s.n
}

// Mean returns the mean of the values, or NaN if there are none
func (s *StatCounter) Mean() float64 {
	if s.n == 0 {
		return math.NaN()
	}
	return s.mu
}

// Sum returns the sum of the values
func (s *StatCounter) Sum() float64 {
	return float64(s.n) * s.mu
}

// Min returns the smallest value, or +Inf if there are none
func (s *StatCounter) Min() float64 {
	return s.min
}

// Max returns the largest value, or -Inf if there are none
func (s *StatCounter) Max() float64 {
	return s.max
}

// M2 returns the sum of squared deviations from the mean
func (s *StatCounter) M2() float64 {
	return s.m2
}

// Variance returns the population variance of the values, or NaN if there are none
func (s *StatCounter) Variance() float64 {
	if s.n == 0 {
		return math.NaN()
	}
	return s.m2 / float64(s.n)
}

// SampleVariance returns the sample variance of the values, which divides by n-1 to
// correct for bias. It is NaN when there are fewer than two values.
func (s *StatCounter) SampleVariance() float64 {
	if s.n <= 1 {
		return math.NaN()
	}
	return s.m2 / float64(s.n-1)
}

// Stdev returns the population standard deviation of the values
func (s *StatCounter) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

// SampleStdev returns the sample standard deviation of the values
func (s *StatCounter) SampleStdev() float64 {
	return math.Sqrt(s.SampleVariance())
}

// String summarizes this StatCounter. The reported stdev is the sample standard deviation.
func (s *StatCounter) String() string {
	return fmt.Sprintf("StatCounter(count=%d, mean=%g, stdev=%g, max=%g, min=%g)", s.n, s.Mean(), s.SampleStdev(), s.max, s.min)
}
