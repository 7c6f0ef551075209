package daytrip

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/Harshith20B/daytrip/internal/logging"
	"github.com/Harshith20B/daytrip/weather"
)

var WeatherForecastCmd = &cobra.Command{
	Use:   "forecast <city>",
	Short: "Forecast the weather for the coming months",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		if err := ForecastWeather(cmd.Context(), args[0], output); err != nil {
			logging.Fatal().Err(err).Str("city", args[0]).Msg("Failed to forecast weather")
		}
	},
}

func init() {
	WeatherForecastCmd.Flags().String("output", "", "output file (default stdout)")
}

// ForecastWeather writes the weather outlook for city to output.
func ForecastWeather(ctx context.Context, city, output string) error {
	horizon, err := Config.Horizon()
	if err != nil {
		return err
	}

	client := weather.NewClient(httpClient(), logging.With("weather"))
	outlook, err := client.Outlook(ctx, city, Config.HistoryYears, int(horizon/(24*time.Hour)), time.Now())
	if err != nil {
		return err
	}
	return writeJSONFile(output, outlook)
}
