// Package clustering groups landmarks into same-day visit groups.
//
// The pipeline validates raw landmark records, builds popularity-weighted
// feature vectors, picks a cluster count by silhouette search, runs a
// deterministic multi-start k-means, and then splits or merges clusters until
// the result has exactly the number of days the caller asked for. Quality
// metrics are computed over the final clusters.
//
// Every stage is a pure function of its input. Runs are reproducible for a
// given seed (see WithSeed), including which k-means restart is kept.
package clustering
