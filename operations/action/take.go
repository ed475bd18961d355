package action

import (
	"context"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
)

// partitionsToTry estimates how many more Partitions must be scanned to find the remaining elements,
// based on the density of the Partitions scanned so far
func partitionsToTry(n int, found int, scanned int) int {
	if scanned == 0 {
		return 1
	}
	limit := scanned * 4
	if found == 0 {
		return limit
	}
	try := int(1.5*float64(n)*float64(scanned)/float64(found)) - scanned
	if try < 1 {
		try = 1
	}
	if try > limit {
		try = limit
	}
	return try
}

// Take returns the first n elements of a Dataset, in Partition order. Partitions are scanned
// incrementally: one at first, then more as needed, so that only a prefix of the Dataset is computed.
func Take(ctx context.Context, d sparkling.Dataset, n int) ([]interface{}, error) {
	result := make([]interface{}, 0)
	if n <= 0 {
		return result, nil
	}
	total := d.NumPartitions()
	scanned := 0
	for len(result) < n && scanned < total {
		end := scanned + partitionsToTry(n, len(result), scanned)
		if end > total {
			end = total
		}
		indices := make([]int, 0, end-scanned)
		for i := scanned; i < end; i++ {
			indices = append(indices, i)
		}
		parts, err := collectPartitions(ctx, d, "take", indices)
		if err != nil {
			return nil, err
		}
		for _, p := range parts {
			if remaining := n - len(result); len(p) > remaining {
				p = p[:remaining]
			}
			result = append(result, p...)
		}
		scanned = end
	}
	return result, nil
}

// First returns the first element of a Dataset, or an EmptyDatasetError
func First(ctx context.Context, d sparkling.Dataset) (interface{}, error) {
	elements, err := Take(ctx, d, 1)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, errors.EmptyDatasetError{Action: "first"}
	}
	return elements[0], nil
}
