package action_test

import (
	"context"
	"math"
	"sort"
	"sync"
	"testing"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/fileio"
	"github.com/go-sif/sparkling/logging"
	"github.com/go-sif/sparkling/operations/action"
	"github.com/go-sif/sparkling/operations/transform"
	"github.com/go-sif/sparkling/schema"
	"github.com/go-sif/sparkling/session"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreCurrent())
}

func createTestSession(t *testing.T) (*session.Session, afero.Fs) {
	mem := afero.NewMemMapFs()
	sess, err := session.NewSession(&session.Options{
		NumWorkers: 4,
		Logger:     logging.Discard(),
		FileSystem: fileio.NewLocalFs(mem, logging.Discard()),
	})
	require.Nil(t, err)
	t.Cleanup(func() {
		require.Nil(t, sess.Stop())
	})
	return sess, mem
}

func ints(from, to int) []interface{} {
	result := make([]interface{}, 0, to-from)
	for i := from; i < to; i++ {
		result = append(result, i)
	}
	return result
}

func pairFrame(t *testing.T, sess *session.Session) sparkling.Dataset {
	s, err := schema.CreateSchemaFromColumns([]string{"x", "y"}, []sparkling.ColumnType{&sparkling.Int64ColumnType{}, &sparkling.Float64ColumnType{}})
	require.Nil(t, err)
	rows := make([][]interface{}, 0)
	for i := 1; i <= 10; i++ {
		rows = append(rows, []interface{}{i, float64(2 * i)})
	}
	rows = append(rows, []interface{}{nil, 1.0})
	df, err := sess.CreateDataFrame(rows, s, 3)
	require.Nil(t, err)
	return df
}

// partitionRecorder tracks which Partitions of a Dataset were computed
type partitionRecorder struct {
	lock     sync.Mutex
	computed []int
}

func (r *partitionRecorder) op() *sparkling.DatasetOperation {
	return transform.MapPartitionsWithIndex(func(index int, elements []interface{}) ([]interface{}, error) {
		r.lock.Lock()
		defer r.lock.Unlock()
		r.computed = append(r.computed, index)
		return elements, nil
	})
}

func (r *partitionRecorder) indices() []int {
	r.lock.Lock()
	defer r.lock.Unlock()
	result := append([]int{}, r.computed...)
	sort.Ints(result)
	return result
}

func TestCollectCountGlom(t *testing.T) {
	sess, _ := createTestSession(t)
	ctx := context.Background()
	d, err := sess.Parallelize(ints(0, 10), 4)
	require.Nil(t, err)
	elements, err := action.Collect(ctx, d)
	require.Nil(t, err)
	require.Equal(t, ints(0, 10), elements)
	count, err := action.Count(ctx, d)
	require.Nil(t, err)
	require.Equal(t, int64(10), count)
	parts, err := action.Glom(ctx, d)
	require.Nil(t, err)
	require.Equal(t, [][]interface{}{{0, 1}, {2, 3, 4}, {5, 6}, {7, 8, 9}}, parts)
	require.Equal(t, 4, action.NumPartitions(d))
}

func TestTakeScansIncrementally(t *testing.T) {
	sess, _ := createTestSession(t)
	ctx := context.Background()
	d, err := sess.Parallelize(ints(0, 100), 10)
	require.Nil(t, err)

	recorder := &partitionRecorder{}
	recorded, err := d.To(recorder.op())
	require.Nil(t, err)
	elements, err := action.Take(ctx, recorded, 3)
	require.Nil(t, err)
	require.Equal(t, ints(0, 3), elements)
	require.Equal(t, []int{0}, recorder.indices())

	recorder = &partitionRecorder{}
	recorded, err = d.To(recorder.op())
	require.Nil(t, err)
	elements, err = action.Take(ctx, recorded, 25)
	require.Nil(t, err)
	require.Equal(t, ints(0, 25), elements)
	require.Equal(t, []int{0, 1, 2}, recorder.indices())

	elements, err = action.Take(ctx, d, 1000)
	require.Nil(t, err)
	require.Len(t, elements, 100)
	elements, err = action.Take(ctx, d, 0)
	require.Nil(t, err)
	require.Empty(t, elements)
}

func TestTakeSkipsEmptyPartitions(t *testing.T) {
	sess, _ := createTestSession(t)
	d, err := sess.Parallelize([]interface{}{1, 2}, 50)
	require.Nil(t, err)
	elements, err := action.Take(context.Background(), d, 2)
	require.Nil(t, err)
	require.Equal(t, []interface{}{1, 2}, elements)
}

func TestFirst(t *testing.T) {
	sess, _ := createTestSession(t)
	ctx := context.Background()
	d, err := sess.Parallelize([]interface{}{"a", "b"}, 2)
	require.Nil(t, err)
	first, err := action.First(ctx, d)
	require.Nil(t, err)
	require.Equal(t, "a", first)

	empty, err := sess.Parallelize([]interface{}{}, 3)
	require.Nil(t, err)
	_, err = action.First(ctx, empty)
	require.IsType(t, errors.EmptyDatasetError{}, err)
}

func TestToLocalIterator(t *testing.T) {
	sess, _ := createTestSession(t)
	d, err := sess.Parallelize(ints(0, 6), 3)
	require.Nil(t, err)
	recorder := &partitionRecorder{}
	d, err = d.To(recorder.op())
	require.Nil(t, err)
	it, err := action.ToLocalIterator(context.Background(), d)
	require.Nil(t, err)
	require.Empty(t, recorder.indices())
	elements := make([]interface{}, 0)
	for it.HasNextPartition() {
		part, err := it.NextPartition()
		require.Nil(t, err)
		require.Len(t, recorder.indices(), part.Index()+1)
		elements = append(elements, part.Elements()...)
	}
	require.Equal(t, ints(0, 6), elements)
	_, err = it.NextPartition()
	require.IsType(t, errors.NoMorePartitionsError{}, err)
}

func TestForeach(t *testing.T) {
	sess, _ := createTestSession(t)
	ctx := context.Background()
	d, err := sess.Parallelize(ints(0, 20), 4)
	require.Nil(t, err)
	var lock sync.Mutex
	sum := 0
	err = action.Foreach(ctx, d, func(element interface{}) error {
		lock.Lock()
		defer lock.Unlock()
		sum += element.(int)
		return nil
	})
	require.Nil(t, err)
	require.Equal(t, 190, sum)

	sizes := make([]int, 4)
	err = action.ForeachPartition(ctx, d, func(index int, elements []interface{}) error {
		sizes[index] = len(elements)
		return nil
	})
	require.Nil(t, err)
	require.Equal(t, []int{5, 5, 5, 5}, sizes)
}

func TestReduce(t *testing.T) {
	sess, _ := createTestSession(t)
	ctx := context.Background()
	d, err := sess.Parallelize(ints(1, 11), 3)
	require.Nil(t, err)
	sum, err := action.Reduce(ctx, d, func(left, right interface{}) (interface{}, error) {
		return left.(int) + right.(int), nil
	})
	require.Nil(t, err)
	require.Equal(t, 55, sum)

	// partitions with a single element are still combined
	sparse, err := sess.Parallelize([]interface{}{4, 9}, 5)
	require.Nil(t, err)
	max, err := action.Reduce(ctx, sparse, func(left, right interface{}) (interface{}, error) {
		if left.(int) > right.(int) {
			return left, nil
		}
		return right, nil
	})
	require.Nil(t, err)
	require.Equal(t, 9, max)

	empty, err := sess.Parallelize([]interface{}{}, 2)
	require.Nil(t, err)
	_, err = action.Reduce(ctx, empty, func(left, right interface{}) (interface{}, error) { return left, nil })
	require.IsType(t, errors.EmptyDatasetError{}, err)
}

func TestStatsIgnoresNulls(t *testing.T) {
	sess, _ := createTestSession(t)
	df := pairFrame(t, sess)
	s, err := action.Stats(context.Background(), df, "x")
	require.Nil(t, err)
	require.Equal(t, int64(10), s.Count())
	require.InDelta(t, 5.5, s.Mean(), 1e-12)
	require.Equal(t, 1.0, s.Min())
	require.Equal(t, 10.0, s.Max())

	_, err = action.Stats(context.Background(), df, "missing")
	require.NotNil(t, err)
}

func TestCorrAndCov(t *testing.T) {
	sess, _ := createTestSession(t)
	ctx := context.Background()
	df := pairFrame(t, sess)
	corr, err := action.Corr(ctx, df, "x", "y")
	require.Nil(t, err)
	require.InDelta(t, 1.0, corr, 1e-9)
	cov, err := action.Cov(ctx, df, "x", "y")
	require.Nil(t, err)
	// sample variance of 1..10 is 55/6, and y = 2x
	require.InDelta(t, 2*55.0/6.0, cov, 1e-9)
}

func TestApproxQuantile(t *testing.T) {
	sess, _ := createTestSession(t)
	ctx := context.Background()
	df := pairFrame(t, sess)
	results, err := action.ApproxQuantile(ctx, df, []string{"x", "y"}, []float64{0, 0.5, 1}, 0)
	require.Nil(t, err)
	require.Len(t, results, 2)
	require.Equal(t, 1.0, results[0][0])
	require.Equal(t, 10.0, results[0][2])
	require.True(t, results[0][1] >= 5 && results[0][1] <= 6)
	require.Equal(t, 1.0, results[1][0])
	require.Equal(t, 20.0, results[1][2])

	_, err = action.ApproxQuantile(ctx, df, []string{"x"}, []float64{1.5}, 0.01)
	require.IsType(t, errors.ValidationError{}, err)
	_, err = action.ApproxQuantile(ctx, df, []string{"x"}, []float64{0.5}, -1)
	require.IsType(t, errors.ValidationError{}, err)
	_, err = action.ApproxQuantile(ctx, df, nil, []float64{0.5}, 0.01)
	require.IsType(t, errors.ValidationError{}, err)
}

func TestApproxQuantileOfEmptyDataset(t *testing.T) {
	sess, _ := createTestSession(t)
	ctx := context.Background()
	df := pairFrame(t, sess)
	none, err := df.To(transform.Filter(func(element interface{}) (bool, error) { return false, nil }))
	require.Nil(t, err)
	results, err := action.ApproxQuantile(ctx, none, []string{"x"}, []float64{0.5}, 0.1)
	require.Nil(t, err)
	require.True(t, math.IsNaN(results[0][0]))
}

func TestSaveAsTextFile(t *testing.T) {
	sess, mem := createTestSession(t)
	ctx := context.Background()
	d, err := sess.Parallelize([]interface{}{"a", 1, 2.5}, 2)
	require.Nil(t, err)
	require.Nil(t, action.SaveAsTextFile(ctx, d, sess.FileSystem(), "/out", ""))

	first, err := afero.ReadFile(mem, "/out/part-00000")
	require.Nil(t, err)
	require.Equal(t, "a\n", string(first))
	second, err := afero.ReadFile(mem, "/out/part-00001")
	require.Nil(t, err)
	require.Equal(t, "1\n2.5\n", string(second))
	exists, err := afero.Exists(mem, "/out/"+action.SuccessMarker)
	require.Nil(t, err)
	require.True(t, exists)

	err = action.SaveAsTextFile(ctx, d, sess.FileSystem(), "/out", "")
	require.IsType(t, errors.ValidationError{}, err)
	err = action.SaveAsTextFile(ctx, d, sess.FileSystem(), "/other", ".bz2")
	require.IsType(t, errors.ValidationError{}, err)

	require.Nil(t, action.SaveAsTextFile(ctx, d, sess.FileSystem(), "/compressed", ".zst"))
	lines, err := sess.TextFile("/compressed", 0)
	require.Nil(t, err)
	elements, err := action.Collect(ctx, lines)
	require.Nil(t, err)
	require.Equal(t, []interface{}{"a", "1", "2.5"}, elements)
}
