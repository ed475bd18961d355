package stats

import (
	"fmt"
	"math"
	"sort"
)

// QuantileSketch estimates quantiles of a stream of values in O(log n) space, using
// a stack of fixed-size sample buffers which are repeatedly collapsed in pairs,
// each collapse keeping every other value at double the weight. Sketches with the
// same relative error may be merged. A relative error of 0 retains every value,
// producing exact quantiles.
type QuantileSketch struct {
	relativeError float64
	bufferSize    int
	leaf          []float64
	levels        [][]float64 // levels[i] is nil or a sorted buffer of values of weight 2^(i+1)
	collapseFlip  int
	count         int64
	min           float64
	max           float64
}

// NewQuantileSketch creates a QuantileSketch with the given relative error, which must be in [0, 1]
func NewQuantileSketch(relativeError float64) (*QuantileSketch, error) {
	if relativeError < 0 || relativeError > 1 || math.IsNaN(relativeError) {
		return nil, fmt.Errorf("relative error %g must be between 0 and 1", relativeError)
	}
	bufferSize := 0
	if relativeError > 0 {
		// each level of collapses contributes at most count/(2*bufferSize) rank error
		bufferSize = int(math.Ceil(8 / relativeError))
		if bufferSize < 16 {
			bufferSize = 16
		}
	}
	return &QuantileSketch{
		relativeError: relativeError,
		bufferSize:    bufferSize,
		min:           math.Inf(1),
		max:           math.Inf(-1),
	}, nil
}

// RelativeError returns the relative error this sketch was created with
func (q *QuantileSketch) RelativeError() float64 {
	return q.relativeError
}

// Count returns the number of values inserted into this sketch
func (q *QuantileSketch) Count() int64 {
	return q.count
}

// Insert adds a value to this sketch. NaN values are ignored.
func (q *QuantileSketch) Insert(v float64) {
	if math.IsNaN(v) {
		return
	}
	q.count++
	q.min = math.Min(q.min, v)
	q.max = math.Max(q.max, v)
	q.leaf = append(q.leaf, v)
	if q.bufferSize > 0 && len(q.leaf) == 2*q.bufferSize {
		left := q.leaf[:q.bufferSize]
		right := q.leaf[q.bufferSize:]
		sort.Float64s(left)
		sort.Float64s(right)
		collapsed := q.collapse(left, right)
		q.leaf = q.leaf[:0]
		q.push(0, collapsed)
	}
}

// collapse merges two sorted buffers of equal weight, keeping every other value
func (q *QuantileSketch) collapse(left, right []float64) []float64 {
	merged := make([]float64, 0, len(left)+len(right))
	i, j := 0, 0
	for i < len(left) || j < len(right) {
		if j >= len(right) || (i < len(left) && left[i] <= right[j]) {
			merged = append(merged, left[i])
			i++
		} else {
			merged = append(merged, right[j])
			j++
		}
	}
	result := make([]float64, 0, len(merged)/2+1)
	for k := q.collapseFlip; k < len(merged); k += 2 {
		result = append(result, merged[k])
	}
	q.collapseFlip = 1 - q.collapseFlip
	return result
}

// push places a buffer at a level, collapsing it upwards with any occupied levels
func (q *QuantileSketch) push(level int, buf []float64) {
	for ; level < len(q.levels); level++ {
		if q.levels[level] == nil {
			q.levels[level] = buf
			return
		}
		buf = q.collapse(q.levels[level], buf)
		q.levels[level] = nil
	}
	for len(q.levels) <= level {
		q.levels = append(q.levels, nil)
	}
	q.levels[level] = buf
}

// Merge combines another sketch into this one. Both sketches must have the same relative error.
func (q *QuantileSketch) Merge(other *QuantileSketch) error {
	if other == q {
		return q.Merge(other.Copy())
	}
	if q.bufferSize != other.bufferSize {
		return fmt.Errorf("cannot merge sketches with relative errors %g and %g", q.relativeError, other.relativeError)
	}
	if other.count == 0 {
		return nil
	}
	q.min = math.Min(q.min, other.min)
	q.max = math.Max(q.max, other.max)
	for level := len(other.levels) - 1; level >= 0; level-- {
		if other.levels[level] != nil {
			buf := make([]float64, len(other.levels[level]))
			copy(buf, other.levels[level])
			q.push(level, buf)
			q.count += int64(len(buf)) << uint(level+1)
		}
	}
	for _, v := range other.leaf {
		q.Insert(v)
	}
	return nil
}

// Copy returns an independent copy of this sketch
func (q *QuantileSketch) Copy() *QuantileSketch {
	c := *q
	c.leaf = append([]float64(nil), q.leaf...)
	c.levels = make([][]float64, len(q.levels))
	for i, buf := range q.levels {
		if buf != nil {
			c.levels[i] = append([]float64(nil), buf...)
		}
	}
	return &c
}

type weightedValue struct {
	value  float64
	weight int64
}

// Query returns the estimated value at each probability. A probability of 0 returns the
// minimum and 1 the maximum; otherwise the result is the first value whose cumulative
// weight reaches probability * count. An empty sketch produces NaN for every probability.
func (q *QuantileSketch) Query(probabilities ...float64) []float64 {
	results := make([]float64, len(probabilities))
	if q.count == 0 {
		for i := range results {
			results[i] = math.NaN()
		}
		return results
	}
	weighted := make([]weightedValue, 0, len(q.leaf))
	var total int64
	for _, v := range q.leaf {
		weighted = append(weighted, weightedValue{v, 1})
		total++
	}
	for level, buf := range q.levels {
		w := int64(1) << uint(level+1)
		for _, v := range buf {
			weighted = append(weighted, weightedValue{v, w})
			total += w
		}
	}
	sort.SliceStable(weighted, func(i, j int) bool { return weighted[i].value < weighted[j].value })
	for i, p := range probabilities {
		switch {
		case p <= 0:
			results[i] = q.min
		case p >= 1:
			results[i] = q.max
		default:
			target := p * float64(total)
			results[i] = q.max
			var cumulative float64
			for _, wv := range weighted {
				cumulative += float64(wv.weight)
				if cumulative >= target {
					results[i] = wv.value
					break
				}
			}
		}
	}
	return results
}
