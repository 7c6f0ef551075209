package weather

import (
	"context"
	"fmt"
	"time"
)

// Outlook is the forecast and travel summary for one city.
type Outlook struct {
	City        Location      `json:"city"`
	Forecast    []ForecastDay `json:"forecast"`
	Summary     *Summary      `json:"summary"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// Outlook geocodes city, fetches years of history up to now and forecasts
// horizon days past the last observation.
func (c *Client) Outlook(ctx context.Context, city string, years, horizon int, now time.Time) (*Outlook, error) {
	loc, err := c.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}

	history, err := c.History(ctx, loc, years, now)
	if err != nil {
		return nil, err
	}

	forecast, err := Forecast(history, horizon)
	if err != nil {
		return nil, fmt.Errorf("failed to forecast %s: %w", loc.Name, err)
	}

	c.logger.Info().
		Str("city", loc.Name).
		Int("history_days", len(history)).
		Int("horizon", horizon).
		Msg("Generated weather forecast")

	return &Outlook{
		City:        loc,
		Forecast:    forecast,
		Summary:     Summarize(forecast),
		GeneratedAt: now,
	}, nil
}
