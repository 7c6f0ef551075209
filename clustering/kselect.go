package clustering

import (
	"gonum.org/v1/gonum/mat"
)

// fallbackK is returned by SelectK when the search range is empty.
const fallbackK = 2

// SelectK searches k in [2, min(requestedK+2, n/2)] over the standardized
// feature matrix and returns the candidate with the highest silhouette score
// together with that score. Only a strictly higher score replaces the current
// best, so ties keep the smaller k.
//
// When the range is empty SelectK returns 2 without evaluating anything and
// the returned score is 0.
func SelectK(data *mat.Dense, requestedK int, opts ...Option) (int, float64, error) {
	return selectK(data, requestedK, newOptions(opts))
}

func selectK(data *mat.Dense, requestedK int, o options) (int, float64, error) {
	n, _ := data.Dims()
	maxK := min(requestedK+2, n/2)
	if maxK < 2 {
		o.logger.Debug().Int("max_k", maxK).Msg("k search range empty, using fallback")
		return fallbackK, 0, nil
	}

	o.logger.Debug().Int("min_k", 2).Int("max_k", maxK).Msg("evaluating cluster counts")

	bestK, bestScore := 0, 0.0
	for k := 2; k <= maxK; k++ {
		run, err := kmeans(data, k, o)
		if err != nil {
			return 0, 0, err
		}
		score, err := Silhouette(data, run.labels)
		if err != nil {
			return 0, 0, err
		}
		o.logger.Debug().Int("k", k).Float64("silhouette", score).Msg("evaluated k")

		if bestK == 0 || score > bestScore {
			bestK, bestScore = k, score
		}
	}

	o.logger.Debug().Int("k", bestK).Float64("silhouette", bestScore).Msg("selected k")
	return bestK, bestScore, nil
}
