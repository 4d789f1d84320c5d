package lists

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sizes[T any](sublists [][]T) []int {
	out := make([]int, len(sublists))
	for i, l := range sublists {
		out[i] = len(l)
	}
	return out
}

func TestDistributeEvenly(t *testing.T) {
	buckets := [][]int{{}, {}, {}}
	out := DistributeEvenly([]int{1, 2, 3, 4, 5, 6, 7}, buckets)

	assert.Equal(t, []int{3, 2, 2}, sizes(out))
	total := 0
	for _, b := range out {
		total += len(b)
	}
	assert.Equal(t, 7, total)
}

func TestDistributeEvenlyFillsSmallestFirst(t *testing.T) {
	buckets := [][]int{{1, 2, 3}, {}}
	out := DistributeEvenly([]int{9, 8}, buckets)
	assert.Equal(t, []int{3, 2}, sizes(out))
}

func TestDistributeEvenlyNoBuckets(t *testing.T) {
	assert.Empty(t, DistributeEvenly([]int{1}, nil))
}

func TestRebalance(t *testing.T) {
	buckets := [][]int{{1, 2, 3, 4, 5, 6}, {7}, {8}}
	out := Rebalance(buckets)

	for i := range out {
		for j := range out {
			diff := len(out[i]) - len(out[j])
			if diff < 0 {
				diff = -diff
			}
			assert.LessOrEqual(t, diff, 1)
		}
	}
	total := 0
	for _, b := range out {
		total += len(b)
	}
	assert.Equal(t, 8, total)
}

func TestRebalanceAlreadyEven(t *testing.T) {
	buckets := [][]int{{1, 2}, {3}}
	out := Rebalance(buckets)
	assert.Equal(t, []int{2, 1}, sizes(out))
}
