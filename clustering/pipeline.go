package clustering

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// DefaultDays is the day count used when a request omits k.
const DefaultDays = 3

// Method labels every successful result.
const Method = "K-means with popularity weighting"

// Request is the clustering input as received from a caller. Landmarks are
// untrusted records; see ValidateRecords.
type Request struct {
	Landmarks []any `json:"landmarks" jsonschema:"description=Landmark records; invalid entries are dropped"`
	K         *int  `json:"k,omitempty" jsonschema:"description=Number of days,default=3"`
}

// Days returns the requested day count.
func (r Request) Days() int {
	if r.K == nil {
		return DefaultDays
	}
	return *r.K
}

// FeatureImportance is reported with every result. It is informational and
// does not drive the computation.
type FeatureImportance struct {
	GeographicalWeight float64 `json:"geographical_weight"`
	PopularityWeight   float64 `json:"popularity_weight"`
	ScoreWeight        float64 `json:"score_weight"`
}

// ReportedFeatureImportance is the fixed weighting attached to results.
var ReportedFeatureImportance = FeatureImportance{
	GeographicalWeight: 0.5,
	PopularityWeight:   0.3,
	ScoreWeight:        0.2,
}

// Result is a successful itinerary grouping.
type Result struct {
	Clusters          []Cluster         `json:"clusters"`
	SilhouetteScore   float64           `json:"silhouette_score"`
	OptimalK          int               `json:"optimal_k"`
	QualityMetrics    QualityMetrics    `json:"quality_metrics"`
	FeatureImportance FeatureImportance `json:"feature_importance"`
	TotalLandmarks    int               `json:"total_landmarks"`
	ClusteringMethod  string            `json:"clustering_method"`
}

// ErrorEnvelope is written in place of a Result when a request fails.
type ErrorEnvelope struct {
	Error           string    `json:"error"`
	Clusters        []Cluster `json:"clusters"`
	SilhouetteScore float64   `json:"silhouette_score"`
}

// NewErrorEnvelope wraps err for output. Errors that are neither an
// InputError nor a ComputationError are reported as clustering failures.
func NewErrorEnvelope(err error) ErrorEnvelope {
	msg := err.Error()
	var inputErr *InputError
	var compErr *ComputationError
	if !errors.As(err, &inputErr) && !errors.As(err, &compErr) {
		msg = fmt.Sprintf("Clustering failed: %v", err)
	}
	return ErrorEnvelope{
		Error:    msg,
		Clusters: []Cluster{},
	}
}

// DecodeRequest reads one JSON request from r.
func DecodeRequest(r io.Reader) (Request, error) {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return Request{}, &InputError{Err: err}
	}
	return req, nil
}

// Plan validates the request's landmarks and groups them into the requested
// number of days.
func Plan(req Request, opts ...Option) (Result, error) {
	valid := ValidateRecords(req.Landmarks)
	if len(valid) == 0 {
		return Result{}, &InputError{Err: ErrNoLandmarks}
	}
	return PlanLandmarks(valid, req.Days(), opts...)
}

// PlanLandmarks runs clustering, balancing and quality analysis over
// landmarks that already went through ValidateRecords or Canonicalize.
// The balancing target is days, even when clustering settled on another k.
func PlanLandmarks(landmarks []Landmark, days int, opts ...Option) (Result, error) {
	if len(landmarks) == 0 {
		return Result{}, &InputError{Err: ErrNoLandmarks}
	}
	o := newOptions(opts)

	clustered, err := Run(landmarks, days, opts...)
	if err != nil {
		return Result{}, err
	}
	balanced := balance(clustered.Clusters, days, o.logger)

	if err := checkPartition(landmarks, balanced); err != nil {
		return Result{}, computationError("balance", err)
	}

	return Result{
		Clusters:          balanced,
		SilhouetteScore:   clustered.SilhouetteScore,
		OptimalK:          len(balanced),
		QualityMetrics:    Quality(balanced),
		FeatureImportance: ReportedFeatureImportance,
		TotalLandmarks:    len(landmarks),
		ClusteringMethod:  Method,
	}, nil
}

// checkPartition verifies that clusters hold exactly the given landmarks.
func checkPartition(landmarks []Landmark, clusters []Cluster) error {
	counts := make(map[Landmark]int, len(landmarks))
	for _, l := range landmarks {
		counts[l]++
	}
	for _, c := range clusters {
		for _, l := range c.Landmarks {
			counts[l]--
		}
	}
	for l, n := range counts {
		if n != 0 {
			return fmt.Errorf("%w: landmark %q appears %d times too many", ErrDegenerate, l.Name, -n)
		}
	}
	return nil
}
