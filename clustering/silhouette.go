package clustering

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Silhouette returns the mean silhouette coefficient of labels over the rows
// of data, using Euclidean distance.
//
// A point alone in its cluster contributes 0. At least two distinct labels
// are required.
func Silhouette(data *mat.Dense, labels []int) (float64, error) {
	n, _ := data.Dims()
	if len(labels) != n {
		return 0, fmt.Errorf("%w: %d labels for %d points", ErrDegenerate, len(labels), n)
	}

	members := make(map[int][]int)
	for i, label := range labels {
		members[label] = append(members[label], i)
	}
	if len(members) < 2 {
		return 0, fmt.Errorf("%w: silhouette needs at least 2 clusters, got %d", ErrDegenerate, len(members))
	}

	total := 0.0
	for i, label := range labels {
		own := members[label]
		if len(own) == 1 {
			continue
		}
		point := data.RawRowView(i)

		a := meanDistance(data, point, own) * float64(len(own)) / float64(len(own)-1)

		b := 0.0
		first := true
		for other, idx := range members {
			if other == label {
				continue
			}
			if d := meanDistance(data, point, idx); first || d < b {
				b = d
				first = false
			}
		}

		if m := max(a, b); m > 0 {
			total += (b - a) / m
		}
	}
	return total / float64(n), nil
}

// meanDistance averages the distance from point to the rows in idx. The point
// itself contributes zero when it is among them.
func meanDistance(data *mat.Dense, point []float64, idx []int) float64 {
	sum := 0.0
	for _, j := range idx {
		sum += floats.Distance(point, data.RawRowView(j), 2)
	}
	return sum / float64(len(idx))
}
