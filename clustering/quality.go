package clustering

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// balanceTolerance bounds |clusters - landmarks per cluster| for a
// distribution to count as balanced.
const balanceTolerance = 2.0

// QualityMetrics summarizes a final set of clusters.
type QualityMetrics struct {
	TotalLandmarks          int     `json:"total_landmarks"`
	AvgLandmarksPerCluster  float64 `json:"avg_landmarks_per_cluster"`
	AvgIntraClusterDistance float64 `json:"avg_intra_cluster_distance_km"`
	PopularityStdDeviation  float64 `json:"popularity_std_deviation"`
	BalancedDistribution    bool    `json:"balanced_distribution"`
}

// Quality computes descriptive statistics over clusters. Intra-cluster
// distance only counts clusters with at least two landmarks. Reported floats
// are rounded to two decimals; the balance flag uses unrounded values.
func Quality(clusters []Cluster) QualityMetrics {
	if len(clusters) == 0 {
		return QualityMetrics{}
	}

	var (
		total        int
		distances    []float64
		popularities []float64
	)
	for _, c := range clusters {
		total += len(c.Landmarks)
		for _, l := range c.Landmarks {
			popularities = append(popularities, l.Popularity)
		}
		if len(c.Landmarks) < 2 {
			continue
		}
		for _, l := range c.Landmarks {
			distances = append(distances, HaversineKm(l.point(), c.Center))
		}
	}

	avgPerCluster := float64(total) / float64(len(clusters))

	intra := 0.0
	if len(distances) > 0 {
		intra = stat.Mean(distances, nil)
	}

	spread := 0.0
	if len(popularities) > 0 {
		_, spread = stat.PopMeanStdDev(popularities, nil)
	}

	return QualityMetrics{
		TotalLandmarks:          total,
		AvgLandmarksPerCluster:  round2(avgPerCluster),
		AvgIntraClusterDistance: round2(intra),
		PopularityStdDeviation:  round2(spread),
		BalancedDistribution:    math.Abs(float64(len(clusters))-avgPerCluster) < balanceTolerance,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
