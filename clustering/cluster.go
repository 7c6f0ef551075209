package clustering

import (
	"cmp"
	"slices"
)

// TrivialSilhouette is reported when everything lands in a single cluster.
const TrivialSilhouette = 1.0

// Cluster is one day of the itinerary.
type Cluster struct {
	Day           int        `json:"day" jsonschema:"minimum=1"`
	Landmarks     []Landmark `json:"landmarks"`
	Center        Point      `json:"center"`
	AvgPopularity float64    `json:"avg_popularity"`
	LandmarkCount int        `json:"landmark_count"`
}

// ClusteringResult is the clusterer's output before balancing.
type ClusteringResult struct {
	Clusters        []Cluster `json:"clusters"`
	SilhouetteScore float64   `json:"silhouette_score"`
	OptimalK        int       `json:"optimal_k"`
}

// newCluster builds a cluster from members and derives its summary fields.
func newCluster(day int, members []Landmark) Cluster {
	return Cluster{
		Day:           day,
		Landmarks:     members,
		Center:        centerOf(members),
		AvgPopularity: meanPopularity(members),
		LandmarkCount: len(members),
	}
}

func meanPopularity(landmarks []Landmark) float64 {
	if len(landmarks) == 0 {
		return 0
	}
	sum := 0.0
	for _, l := range landmarks {
		sum += l.Popularity
	}
	return sum / float64(len(landmarks))
}

// sortByPopularity orders landmarks by popularity, highest first, keeping the
// relative order of equal values.
func sortByPopularity(landmarks []Landmark) {
	slices.SortStableFunc(landmarks, func(a, b Landmark) int {
		return cmp.Compare(b.Popularity, a.Popularity)
	})
}

// Run groups landmarks into about k clusters.
//
// With k < 2 or fewer than 2 landmarks everything goes into one cluster, kept
// in input order, with a silhouette of 1. Otherwise the landmarks are
// featurized and standardized, k is clamped to the landmark count and, when
// there are more than 2k landmarks, replaced by the SelectK winner. Empty
// clusters are dropped, so fewer than k clusters may be returned. Members are
// ordered by popularity and clusters by average popularity, both descending,
// and days are numbered from 1 in that order.
func Run(landmarks []Landmark, k int, opts ...Option) (ClusteringResult, error) {
	o := newOptions(opts)
	n := len(landmarks)
	k = min(k, n)

	if k < 2 || n < 2 {
		members := slices.Clone(landmarks)
		return ClusteringResult{
			Clusters:        []Cluster{newCluster(1, members)},
			SilhouetteScore: TrivialSilhouette,
			OptimalK:        1,
		}, nil
	}

	features := Standardize(BuildFeatures(landmarks))

	if n > 2*k {
		selected, _, err := selectK(features, k, o)
		if err != nil {
			return ClusteringResult{}, computationError("select k", err)
		}
		k = selected
	}

	run, err := kmeans(features, k, o)
	if err != nil {
		return ClusteringResult{}, computationError("k-means", err)
	}
	score, err := Silhouette(features, run.labels)
	if err != nil {
		return ClusteringResult{}, computationError("silhouette", err)
	}

	groups := make([][]Landmark, k)
	for i, label := range run.labels {
		groups[label] = append(groups[label], landmarks[i])
	}

	clusters := make([]Cluster, 0, k)
	for _, members := range groups {
		if len(members) == 0 {
			continue
		}
		sortByPopularity(members)
		clusters = append(clusters, newCluster(0, members))
	}

	slices.SortStableFunc(clusters, func(a, b Cluster) int {
		return cmp.Compare(b.AvgPopularity, a.AvgPopularity)
	})
	renumber(clusters)

	o.logger.Debug().
		Int("k", k).
		Int("clusters", len(clusters)).
		Float64("silhouette", score).
		Msg("clustered landmarks")

	return ClusteringResult{
		Clusters:        clusters,
		SilhouetteScore: score,
		OptimalK:        k,
	}, nil
}

// renumber assigns day = position+1.
func renumber(clusters []Cluster) {
	for i := range clusters {
		clusters[i].Day = i + 1
	}
}
