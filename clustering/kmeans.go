package clustering

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// kmeansRun is the outcome of one k-means initialization.
type kmeansRun struct {
	labels     []int
	centroids  *mat.Dense
	inertia    float64
	iterations int
}

// KMeans partitions the rows of data into k groups and returns one label per
// row. It runs the configured number of k-means++ restarts in parallel and
// keeps the run with the lowest inertia; ties go to the earliest restart, so
// the outcome depends only on the seed.
func KMeans(data *mat.Dense, k int, opts ...Option) ([]int, error) {
	run, err := kmeans(data, k, newOptions(opts))
	if err != nil {
		return nil, err
	}
	return run.labels, nil
}

func kmeans(data *mat.Dense, k int, o options) (kmeansRun, error) {
	n, _ := data.Dims()
	if k < 1 || k > n {
		return kmeansRun{}, fmt.Errorf("%w: cannot form %d clusters from %d points", ErrDegenerate, k, n)
	}
	if err := checkFinite(data); err != nil {
		return kmeansRun{}, err
	}

	runs := make([]kmeansRun, o.restarts)
	var wg sync.WaitGroup
	for r := 0; r < o.restarts; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(deriveSeed(o.seed, uint64(r))))
			runs[r] = lloyd(data, initCentroidsPlusPlus(data, k, rng), o)
		}(r)
	}
	wg.Wait()

	best := 0
	for r := 1; r < len(runs); r++ {
		if runs[r].inertia < runs[best].inertia {
			best = r
		}
	}
	if math.IsNaN(runs[best].inertia) || math.IsInf(runs[best].inertia, 0) {
		return kmeansRun{}, fmt.Errorf("%w: k-means inertia is not finite", ErrDegenerate)
	}

	o.logger.Debug().
		Int("k", k).
		Int("restart", best).
		Int("iterations", runs[best].iterations).
		Float64("inertia", runs[best].inertia).
		Msg("k-means selected restart")
	return runs[best], nil
}

// lloyd alternates assignment and centroid updates until the centroids move
// less than the tolerance or the assignment stops changing.
func lloyd(data, centroids *mat.Dense, o options) kmeansRun {
	n, _ := data.Dims()
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}

	iterations := 0
	for iterations < o.maxIterations {
		iterations++
		next := assignPoints(data, centroids)

		converged := true
		for i := range labels {
			if labels[i] != next[i] {
				converged = false
				break
			}
		}
		labels = next
		if converged {
			break
		}

		updated := updateCentroids(data, labels, centroids)
		shift := centroidShift(centroids, updated)
		centroids = updated
		if shift <= o.tolerance {
			break
		}
	}

	// Labels always reflect the final centroids.
	labels = assignPoints(data, centroids)
	return kmeansRun{
		labels:     labels,
		centroids:  centroids,
		inertia:    inertia(data, centroids, labels),
		iterations: iterations,
	}
}

// initCentroidsPlusPlus seeds centroids with k-means++: each new centroid is
// drawn with probability proportional to the squared distance to the nearest
// centroid already chosen.
func initCentroidsPlusPlus(data *mat.Dense, k int, rng *rand.Rand) *mat.Dense {
	n, d := data.Dims()
	centroids := mat.NewDense(k, d, nil)
	centroids.SetRow(0, data.RawRowView(rng.Intn(n)))

	distances := make([]float64, n)
	for c := 1; c < k; c++ {
		for j := 0; j < n; j++ {
			point := data.RawRowView(j)
			nearest := math.Inf(1)
			for prev := 0; prev < c; prev++ {
				dist := squaredDistance(point, centroids.RawRowView(prev))
				if dist < nearest {
					nearest = dist
				}
			}
			distances[j] = nearest
		}

		total := floats.Sum(distances)
		if total == 0 {
			// All remaining points coincide with a chosen centroid.
			centroids.SetRow(c, data.RawRowView(rng.Intn(n)))
			continue
		}

		target := rng.Float64() * total
		chosen := n - 1
		cumulative := 0.0
		for j, dist := range distances {
			cumulative += dist
			if cumulative >= target && dist > 0 {
				chosen = j
				break
			}
		}
		centroids.SetRow(c, data.RawRowView(chosen))
	}
	return centroids
}

// assignPoints returns the index of the nearest centroid for every row.
// Equidistant centroids resolve to the lowest index.
func assignPoints(data, centroids *mat.Dense) []int {
	n, _ := data.Dims()
	k, _ := centroids.Dims()
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		point := data.RawRowView(i)
		nearest := math.Inf(1)
		for c := 0; c < k; c++ {
			dist := squaredDistance(point, centroids.RawRowView(c))
			if dist < nearest {
				nearest = dist
				labels[i] = c
			}
		}
	}
	return labels
}

// updateCentroids recalculates centroids as member means. A centroid that
// lost all of its members keeps its previous position.
func updateCentroids(data *mat.Dense, labels []int, previous *mat.Dense) *mat.Dense {
	k, d := previous.Dims()
	centroids := mat.NewDense(k, d, nil)
	counts := make([]int, k)

	for i, label := range labels {
		floats.Add(centroids.RawRowView(label), data.RawRowView(i))
		counts[label]++
	}
	for c := 0; c < k; c++ {
		row := centroids.RawRowView(c)
		if counts[c] == 0 {
			copy(row, previous.RawRowView(c))
			continue
		}
		floats.Scale(1/float64(counts[c]), row)
	}
	return centroids
}

// centroidShift is the total squared movement of all centroids.
func centroidShift(before, after *mat.Dense) float64 {
	k, _ := before.Dims()
	shift := 0.0
	for c := 0; c < k; c++ {
		shift += squaredDistance(before.RawRowView(c), after.RawRowView(c))
	}
	return shift
}

func inertia(data, centroids *mat.Dense, labels []int) float64 {
	total := 0.0
	for i, label := range labels {
		total += squaredDistance(data.RawRowView(i), centroids.RawRowView(label))
	}
	return total
}

func squaredDistance(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func checkFinite(data *mat.Dense) error {
	n, _ := data.Dims()
	for i := 0; i < n; i++ {
		for j, v := range data.RawRowView(i) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: feature %d of point %d is not finite", ErrDegenerate, j, i)
			}
		}
	}
	return nil
}

// deriveSeed mixes the base seed with a restart index into an independent
// stream seed (SplitMix64 finalizer).
func deriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}
