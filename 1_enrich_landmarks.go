package daytrip

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3/option"
	"github.com/spf13/cobra"

	"github.com/Harshith20B/daytrip/internal/logging"
	"github.com/Harshith20B/daytrip/popularity"
)

// EnrichLandmarksCmd looks up popularity for a list of places and saves the
// result to the catalog.
var EnrichLandmarksCmd = &cobra.Command{
	Use:   "enrich <location>",
	Short: "Look up landmark popularity and save it to the catalog",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		placesPath, _ := cmd.Flags().GetString("places")
		if err := EnrichLandmarks(cmd.Context(), args[0], placesPath); err != nil {
			logging.Fatal().Err(err).Str("location", args[0]).Msg("Failed to enrich landmarks")
		}
	},
}

func init() {
	EnrichLandmarksCmd.Flags().String("places", "", "JSON array of places (default stdin)")
}

// EnrichLandmarks reads places from placesPath, enriches them and upserts
// them into the catalog under location. The enriched list goes to stdout.
func EnrichLandmarks(ctx context.Context, location, placesPath string) error {
	var places []popularity.Place
	if err := readJSONFile(placesPath, &places); err != nil {
		return err
	}

	svc, err := newEnrichService()
	if err != nil {
		return err
	}

	store, err := popularity.OpenStore(Config.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	enriched, err := enrichAndStore(ctx, svc, store, places, location)
	if err != nil {
		return err
	}
	return writeJSONFile("", enriched)
}

func enrichAndStore(ctx context.Context, svc *popularity.Service, store *popularity.Store, places []popularity.Place, location string) ([]popularity.Enriched, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("location must not be empty")
	}

	log := logging.With("enrich")
	log.Info().Str("location", location).Int("places", len(places)).Msg("Enriching landmarks")

	enriched, err := svc.Enrich(ctx, places, location)
	if err != nil {
		return nil, fmt.Errorf("enrichment interrupted after %d of %d landmarks: %w", len(enriched), len(places), err)
	}

	if err := store.Upsert(ctx, location, enriched); err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, e := range enriched {
		counts[e.Source]++
	}
	ev := log.Info().Str("location", location).Int("saved", len(enriched))
	for src, n := range counts {
		ev = ev.Int(src, n)
	}
	ev.Msg("Saved landmarks to catalog")
	return enriched, nil
}

func newEnrichService() (*popularity.Service, error) {
	interval, err := Config.BatchInterval()
	if err != nil {
		return nil, err
	}

	log := logging.With("popularity")
	sources := popularity.DefaultSources(popularity.SourcesConfig{
		HTTPClient:       httpClient(),
		FoursquareAPIKey: Config.FoursquareAPIKey,
		Logger:           log,
	})

	opts := []popularity.ServiceOption{
		popularity.WithBatchSize(Config.EnrichBatchSize),
		popularity.WithBatchInterval(interval),
		popularity.WithLogger(log),
	}
	if Config.OpenAIAPIKey != "" {
		ai, err := popularity.NewAI(Config.OpenAIModel,
			option.WithAPIKey(Config.OpenAIAPIKey),
			option.WithHTTPClient(httpClient()),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create AI estimator: %w", err)
		}
		opts = append(opts, popularity.WithFallback(ai))
	} else {
		log.Debug().Msg("No OpenAI API key, AI estimates disabled")
	}

	return popularity.NewService(sources, opts...), nil
}
