package clustering

import (
	"math"
	"slices"

	"github.com/rs/zerolog"
)

// Balance reshapes clusters into exactly targetDays clusters where possible.
//
// With too few clusters the largest one (first on ties) is split at its
// midpoint: the front half stays in place and the back half is appended.
// Splitting stops early once the largest cluster has a single landmark. With
// too many clusters the two whose centers are closest by great-circle
// distance (first pair on ties) are merged into the lower slot. Days are then
// renumbered by position. The input slice is not modified.
func Balance(clusters []Cluster, targetDays int, opts ...Option) []Cluster {
	return balance(clusters, targetDays, newOptions(opts).logger)
}

func balance(clusters []Cluster, targetDays int, logger zerolog.Logger) []Cluster {
	current := slices.Clone(clusters)

	for len(current) < targetDays {
		next, ok := splitLargest(current)
		if !ok {
			logger.Debug().
				Int("clusters", len(current)).
				Int("target", targetDays).
				Msg("largest cluster cannot be split further")
			break
		}
		current = next
	}

	for len(current) > targetDays && len(current) > 1 {
		current = mergeClosest(current, logger)
	}

	renumber(current)
	return current
}

// splitLargest returns a new collection where the largest cluster is replaced
// by its front half and its back half is appended. It reports false when the
// largest cluster has at most one landmark.
func splitLargest(clusters []Cluster) ([]Cluster, bool) {
	if len(clusters) == 0 {
		return clusters, false
	}
	largest := 0
	for i, c := range clusters {
		if len(c.Landmarks) > len(clusters[largest].Landmarks) {
			largest = i
		}
	}
	members := clusters[largest].Landmarks
	if len(members) <= 1 {
		return clusters, false
	}

	mid := len(members) / 2
	front := slices.Clone(members[:mid])
	back := slices.Clone(members[mid:])

	next := make([]Cluster, 0, len(clusters)+1)
	for i, c := range clusters {
		if i == largest {
			next = append(next, newCluster(c.Day, front))
			continue
		}
		next = append(next, c)
	}
	next = append(next, newCluster(len(next)+1, back))
	return next, true
}

// mergeClosest merges the pair of clusters with the nearest centers and
// returns the new collection. The merged cluster takes the lower slot and
// day; the higher one is removed.
func mergeClosest(clusters []Cluster, logger zerolog.Logger) []Cluster {
	lo, hi := 0, 1
	best := math.Inf(1)
	for i := 0; i < len(clusters); i++ {
		for j := i + 1; j < len(clusters); j++ {
			if d := HaversineKm(clusters[i].Center, clusters[j].Center); d < best {
				best = d
				lo, hi = i, j
			}
		}
	}

	members := make([]Landmark, 0, len(clusters[lo].Landmarks)+len(clusters[hi].Landmarks))
	members = append(members, clusters[lo].Landmarks...)
	members = append(members, clusters[hi].Landmarks...)
	sortByPopularity(members)

	logger.Debug().
		Int("day", clusters[lo].Day).
		Int("absorbed_day", clusters[hi].Day).
		Float64("distance_km", best).
		Msg("merging closest clusters")

	next := make([]Cluster, 0, len(clusters)-1)
	for i, c := range clusters {
		switch i {
		case lo:
			next = append(next, newCluster(c.Day, members))
		case hi:
		default:
			next = append(next, c)
		}
	}
	return next
}
