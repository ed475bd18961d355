package stats

import "math"

// CovarianceCounter tracks the co-moment of a stream of (x, y) pairs, from which
// covariance and the Pearson correlation coefficient are derived
type CovarianceCounter struct {
	x  *StatCounter
	y  *StatCounter
	c2 float64 // running sum of (x - meanX) * (y - meanY)
}

// NewCovarianceCounter creates an empty CovarianceCounter
func NewCovarianceCounter() *CovarianceCounter {
	return &CovarianceCounter{x: NewStatCounter(), y: NewStatCounter()}
}

// Merge adds an (x, y) pair into this CovarianceCounter
func (c *CovarianceCounter) Merge(x, y float64) *CovarianceCounter {
	dx := x - c.x.mu
	c.x.Merge(x)
	c.y.Merge(y)
	c.c2 += dx * (y - c.y.mu)
	return c
}

// MergeCovariance combines another CovarianceCounter into this one
func (c *CovarianceCounter) MergeCovariance(other *CovarianceCounter) *CovarianceCounter {
	if other == c {
		return c.MergeCovariance(other.Copy())
	}
	if other.Count() == 0 {
		return c
	}
	if c.Count() == 0 {
		*c = *other.Copy()
		return c
	}
	n, on := float64(c.x.n), float64(other.x.n)
	dx := other.x.mu - c.x.mu
	dy := other.y.mu - c.y.mu
	c.c2 += other.c2 + dx*dy*n*on/(n+on)
	c.x.MergeStats(other.x)
	c.y.MergeStats(other.y)
	return c
}

// Copy returns an independent copy of this CovarianceCounter
func (c *CovarianceCounter) Copy() *CovarianceCounter {
	return &CovarianceCounter{x: c.x.Copy(), y: c.y.Copy(), c2: c.c2}
}

// Count returns the number of pairs merged into this CovarianceCounter
func (c *CovarianceCounter) Count() int64 {
	return c.x.n
}

// X returns the statistics of the first component of the pairs
func (c *CovarianceCounter) X() *StatCounter {
	return c.x
}

// Y returns the statistics of the second component of the pairs
func (c *CovarianceCounter) Y() *StatCounter {
	return c.y
}

// SampleCovariance returns the sample covariance of the pairs, or NaN if there are fewer than two
func (c *CovarianceCounter) SampleCovariance() float64 {
	if c.Count() <= 1 {
		return math.NaN()
	}
	return c.c2 / float64(c.Count()-1)
}

// Covariance returns the population covariance of the pairs, or NaN if there are none
func (c *CovarianceCounter) Covariance() float64 {
	if c.Count() == 0 {
		return math.NaN()
	}
	return c.c2 / float64(c.Count())
}

// Correlation returns the Pearson correlation coefficient of the pairs. It is NaN
// when either component has no variance.
func (c *CovarianceCounter) Correlation() float64 {
	denom := math.Sqrt(c.x.m2 * c.y.m2)
	if c.Count() == 0 || denom == 0 {
		return math.NaN()
	}
	return c.c2 / denom
}
