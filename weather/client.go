package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1"
	DefaultArchiveURL   = "https://archive-api.open-meteo.com/v1"
	DefaultTimezone     = "Asia/Kolkata"

	dateLayout = "2006-01-02"
)

const dailyVariables = "temperature_2m_max,temperature_2m_min,precipitation_sum,relative_humidity_2m_mean,wind_speed_10m_max"

// ErrCityNotFound is returned when geocoding yields no result.
var ErrCityNotFound = errors.New("city not found")

// Location is a geocoded city.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Client talks to the Open-Meteo geocoding and archive APIs.
type Client struct {
	GeocodingURL string
	ArchiveURL   string
	Timezone     string

	http   *http.Client
	logger zerolog.Logger
}

func NewClient(httpClient *http.Client, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		GeocodingURL: DefaultGeocodingURL,
		ArchiveURL:   DefaultArchiveURL,
		Timezone:     DefaultTimezone,
		http:         httpClient,
		logger:       logger,
	}
}

type geocodingResponse struct {
	Results []Location `json:"results"`
}

// Geocode resolves a city name to coordinates using the first match.
func (c *Client) Geocode(ctx context.Context, city string) (Location, error) {
	q := url.Values{}
	q.Set("name", city)
	q.Set("count", "1")

	var resp geocodingResponse
	if err := c.getJSON(ctx, c.GeocodingURL+"/search?"+q.Encode(), &resp); err != nil {
		return Location{}, fmt.Errorf("failed to geocode %q: %w", city, err)
	}
	if len(resp.Results) == 0 {
		return Location{}, fmt.Errorf("%w: %s", ErrCityNotFound, city)
	}
	loc := resp.Results[0]
	if loc.Name == "" {
		loc.Name = city
	}
	c.logger.Debug().Str("city", city).Float64("lat", loc.Latitude).Float64("lon", loc.Longitude).Msg("Geocoded city")
	return loc, nil
}

type archiveResponse struct {
	Daily struct {
		Time      []string   `json:"time"`
		TempMax   []*float64 `json:"temperature_2m_max"`
		TempMin   []*float64 `json:"temperature_2m_min"`
		Rainfall  []*float64 `json:"precipitation_sum"`
		Humidity  []*float64 `json:"relative_humidity_2m_mean"`
		WindSpeed []*float64 `json:"wind_speed_10m_max"`
	} `json:"daily"`
}

// History fetches daily observations from January 1st, years before now,
// up to now. Days with any missing value are dropped.
func (c *Client) History(ctx context.Context, loc Location, years int, now time.Time) ([]Day, error) {
	start := time.Date(now.Year()-years, time.January, 1, 0, 0, 0, 0, time.UTC)

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	q.Set("start_date", start.Format(dateLayout))
	q.Set("end_date", now.Format(dateLayout))
	q.Set("daily", dailyVariables)
	q.Set("timezone", c.Timezone)

	var resp archiveResponse
	if err := c.getJSON(ctx, c.ArchiveURL+"/era5?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %w", loc.Name, err)
	}

	d := resp.Daily
	days := make([]Day, 0, len(d.Time))
	dropped := 0
	for i, ts := range d.Time {
		date, err := time.Parse(dateLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q in archive response: %w", ts, err)
		}
		values, ok := collect(i, d.TempMax, d.TempMin, d.Rainfall, d.Humidity, d.WindSpeed)
		if !ok {
			dropped++
			continue
		}
		days = append(days, Day{
			Date:      date,
			TempMax:   values[0],
			TempMin:   values[1],
			Rainfall:  values[2],
			Humidity:  values[3],
			WindSpeed: values[4],
		})
	}

	c.logger.Info().
		Str("city", loc.Name).
		Int("days", len(days)).
		Int("dropped", dropped).
		Msg("Fetched weather history")
	return days, nil
}

// collect returns the i-th value of each series, or false if any is missing.
func collect(i int, series ...[]*float64) ([]float64, bool) {
	out := make([]float64, len(series))
	for j, s := range series {
		if i >= len(s) || s[i] == nil {
			return nil, false
		}
		out[j] = *s[i]
	}
	return out, true
}

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
