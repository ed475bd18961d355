package action

import (
	"context"
	"math"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/aggregators"
	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/stats"
)

// Stats computes the count, mean, variance, min and max of a numeric column in a single pass,
// ignoring nulls. An empty colName refers to the (numeric) elements of the Dataset themselves.
func Stats(ctx context.Context, d sparkling.Dataset, colName string) (*stats.StatCounter, error) {
	agg, err := Aggregate(ctx, d, aggregators.Statistics(colName))
	if err != nil {
		return nil, err
	}
	return agg.(*aggregators.Stats).GetStats(), nil
}

// ApproxQuantile estimates the given quantiles of each column, such that the rank of each
// result is within relativeError * count of the exact rank. A relativeError of 0 computes
// exact quantiles, at a higher memory cost. Results are indexed by column, then by probability,
// and are NaN for columns containing no non-null values.
func ApproxQuantile(ctx context.Context, d sparkling.Dataset, colNames []string, probabilities []float64, relativeError float64) ([][]float64, error) {
	const op = "approxQuantile"
	if len(colNames) == 0 {
		return nil, errors.Validationf(op, "at least one column is required")
	}
	for _, p := range probabilities {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, errors.Validationf(op, "probabilities must be in [0, 1], got %v", p)
		}
	}
	if math.IsNaN(relativeError) || relativeError < 0 {
		return nil, errors.Validationf(op, "relativeError must be non-negative, got %v", relativeError)
	}
	if relativeError > 1 {
		relativeError = 1
	}
	factories := make([]sparkling.AggregatorFactory, len(colNames))
	for i, col := range colNames {
		factories[i] = aggregators.Quantiles(col, relativeError)
	}
	agg, err := Aggregate(ctx, d, aggregators.Compose(factories...))
	if err != nil {
		return nil, err
	}
	results := make([][]float64, len(colNames))
	for i, q := range agg.(*aggregators.Composed).GetResults() {
		results[i] = q.(*aggregators.Quantile).GetSketch().Query(probabilities...)
	}
	return results, nil
}

func covariance(ctx context.Context, d sparkling.Dataset, col1 string, col2 string) (*stats.CovarianceCounter, error) {
	agg, err := Aggregate(ctx, d, aggregators.Covariance(col1, col2))
	if err != nil {
		return nil, err
	}
	return agg.(*aggregators.CoMoment).GetCovariance(), nil
}

// Corr computes the Pearson correlation coefficient of two numeric columns, ignoring Rows where either is null
func Corr(ctx context.Context, d sparkling.Dataset, col1 string, col2 string) (float64, error) {
	cc, err := covariance(ctx, d, col1, col2)
	if err != nil {
		return math.NaN(), err
	}
	return cc.Correlation(), nil
}

// Cov computes the sample covariance of two numeric columns, ignoring Rows where either is null
func Cov(ctx context.Context, d sparkling.Dataset, col1 string, col2 string) (float64, error) {
	cc, err := covariance(ctx, d, col1, col2)
	if err != nil {
		return math.NaN(), err
	}
	return cc.SampleCovariance(), nil
}
