package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Harshith20B/daytrip"
	"github.com/Harshith20B/daytrip/internal/config"
	"github.com/Harshith20B/daytrip/internal/logging"
	"github.com/Harshith20B/daytrip/popularity"
)

func main() {
	// .env is optional; real environment variables take precedence.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logging.Warn().Err(envErr).Msg("Failed to read .env file")
	}

	daytrip.Config = cfg

	rootCmd := &cobra.Command{
		Use:   "daytrip",
		Short: "Plan multi-day sightseeing trips from a list of landmarks",
	}

	rootCmd.AddCommand(daytrip.EnrichLandmarksCmd)
	rootCmd.AddCommand(daytrip.ClusterLandmarksCmd)
	rootCmd.AddCommand(daytrip.WeatherForecastCmd)
	rootCmd.AddCommand(daytrip.GenerateItineraryCmd)
	rootCmd.AddCommand(daytrip.SchemaCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(cleanCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Command failed")
	}
}

var runCmd = &cobra.Command{
	Use:   "run <location>",
	Short: "Run the full pipeline: enrich -> cluster -> forecast -> report",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		location := args[0]
		ctx := cmd.Context()
		places, _ := cmd.Flags().GetString("places")
		days, _ := cmd.Flags().GetInt("days")
		skipWeather, _ := cmd.Flags().GetBool("skip-weather")

		logging.Info().Str("location", location).Msg("Running full pipeline...")

		if err := daytrip.EnrichLandmarks(ctx, location, places); err != nil {
			logging.Fatal().Err(err).Msg("Failed to enrich landmarks")
		}

		if err := daytrip.ClusterLandmarks(ctx, daytrip.ClusterOptions{
			Output:   "clusters.json",
			FromDB:   true,
			Location: location,
			Days:     &days,
		}); err != nil {
			logging.Fatal().Err(err).Msg("Failed to cluster landmarks")
		}

		weatherPath := ""
		if !skipWeather {
			if err := daytrip.ForecastWeather(ctx, location, "weather.json"); err != nil {
				logging.Warn().Err(err).Msg("Weather forecast unavailable, continuing without it")
			} else {
				weatherPath = "weather.json"
			}
		}

		if err := daytrip.GenerateItinerary(daytrip.ItineraryOptions{
			Clusters: "clusters.json",
			Weather:  weatherPath,
			Title:    location + " in " + plural(days, "day"),
			OutDir:   ".",
		}); err != nil {
			logging.Fatal().Err(err).Msg("Failed to generate itinerary")
		}

		logging.Info().Msg("Pipeline complete.")
	},
}

func init() {
	runCmd.Flags().String("places", "", "JSON array of places (default stdin)")
	runCmd.Flags().Int("days", 3, "number of days")
	runCmd.Flags().Bool("skip-weather", false, "do not fetch a weather forecast")

	cleanCmd.Flags().String("location", "", "also remove this location from the catalog")
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove generated files, and optionally a location's catalog entries",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range []string{"clusters.json", "weather.json", "itinerary.md", "itinerary.html"} {
			if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
				logging.Warn().Err(err).Str("file", name).Msg("Failed to remove file")
			}
		}

		location, _ := cmd.Flags().GetString("location")
		if location != "" {
			store, err := popularity.OpenStore(daytrip.Config.DBPath)
			if err != nil {
				logging.Fatal().Err(err).Msg("Failed to open catalog")
			}
			defer store.Close()

			n, err := store.Delete(cmd.Context(), location)
			if err != nil {
				logging.Fatal().Err(err).Msg("Failed to delete catalog entries")
			}
			logging.Info().Str("location", location).Int64("removed", n).Msg("Removed catalog entries")
		}

		logging.Info().Msg("Cleaned generated files.")
	},
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
