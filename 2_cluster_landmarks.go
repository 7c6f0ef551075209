package daytrip

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Harshith20B/daytrip/clustering"
	"github.com/Harshith20B/daytrip/internal/logging"
	"github.com/Harshith20B/daytrip/popularity"
)

// ClusterLandmarksCmd groups landmarks into day trips. It always writes a
// JSON document: the clustering result, or an error envelope on failure.
var ClusterLandmarksCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Group landmarks into day trips",
	Long: `Reads {"landmarks": [...], "k": n} from --input (default stdin) and writes
the day grouping as JSON. With --from-db the catalog landmarks of --location,
saved by enrich, are clustered instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := ClusterOptions{}
		opts.Input, _ = cmd.Flags().GetString("input")
		opts.Output, _ = cmd.Flags().GetString("output")
		opts.FromDB, _ = cmd.Flags().GetBool("from-db")
		opts.Location, _ = cmd.Flags().GetString("location")
		if cmd.Flags().Changed("k") {
			k, _ := cmd.Flags().GetInt("k")
			opts.Days = &k
		}
		if err := ClusterLandmarks(cmd.Context(), opts); err != nil {
			logging.Fatal().Err(err).Msg("Failed to write clustering output")
		}
	},
}

func init() {
	f := ClusterLandmarksCmd.Flags()
	f.String("input", "", "request JSON file (default stdin)")
	f.String("output", "", "output file (default stdout)")
	f.Bool("from-db", false, "cluster landmarks from the catalog instead of a request")
	f.String("location", "", "catalog location used with --from-db")
	f.Int("k", clustering.DefaultDays, "number of days, overrides the request's k")
}

// ClusterOptions selects the input and output of ClusterLandmarks.
type ClusterOptions struct {
	Input    string
	Output   string
	FromDB   bool
	Location string
	Days     *int
}

// ClusterLandmarks runs one clustering request. Clustering failures are
// written as an error envelope and are not returned; only I/O errors on
// the output are.
func ClusterLandmarks(ctx context.Context, opts ClusterOptions) error {
	res, err := planFromOptions(ctx, opts)
	return writeJSONFile(opts.Output, clusteringOutput(res, err))
}

func planFromOptions(ctx context.Context, opts ClusterOptions) (clustering.Result, error) {
	if opts.FromDB {
		if opts.Location == "" {
			return clustering.Result{}, errors.New("--from-db requires --location")
		}
		days := clustering.DefaultDays
		if opts.Days != nil {
			days = *opts.Days
		}
		store, err := popularity.OpenStore(Config.DBPath)
		if err != nil {
			return clustering.Result{}, err
		}
		defer store.Close()
		return clusterCatalog(ctx, store, opts.Location, days)
	}

	r, err := openInput(opts.Input)
	if err != nil {
		return clustering.Result{}, err
	}
	defer r.Close()
	return clusterRequest(r, opts.Days)
}

// clusterRequest decodes a request from r. A non-nil days replaces the
// request's k.
func clusterRequest(r io.Reader, days *int) (clustering.Result, error) {
	req, err := clustering.DecodeRequest(r)
	if err != nil {
		return clustering.Result{}, err
	}
	if days != nil {
		req.K = days
	}
	return clustering.Plan(req, clusteringOptions()...)
}

func clusterCatalog(ctx context.Context, store *popularity.Store, location string, days int) (clustering.Result, error) {
	records, err := store.List(ctx, location)
	if err != nil {
		return clustering.Result{}, fmt.Errorf("failed to load catalog: %w", err)
	}

	landmarks := make([]clustering.Landmark, len(records))
	for i, r := range records {
		landmarks[i] = clustering.Landmark{
			Name:       r.Name,
			Latitude:   r.Latitude,
			Longitude:  r.Longitude,
			Popularity: r.Popularity,
			Score:      r.Score(),
		}
	}
	valid := clustering.Canonicalize(landmarks)
	log := logging.With("cluster")
	log.Info().
		Str("location", location).
		Int("catalog", len(records)).
		Int("valid", len(valid)).
		Int("days", days).
		Msg("Clustering catalog landmarks")

	return clustering.PlanLandmarks(valid, days, clusteringOptions()...)
}

// clusteringOutput picks the document written for a clustering outcome.
func clusteringOutput(res clustering.Result, err error) any {
	if err != nil {
		logging.Error().Err(err).Msg("Clustering failed")
		return clustering.NewErrorEnvelope(err)
	}
	logging.Info().
		Int("days", len(res.Clusters)).
		Int("landmarks", res.TotalLandmarks).
		Float64("silhouette", res.SilhouetteScore).
		Msg("Clustering complete")
	return res
}
