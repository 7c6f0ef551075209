package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const archiveBody = `{
  "daily": {
    "time": ["2021-01-01", "2021-01-02", "2021-01-03"],
    "temperature_2m_max": [28.1, null, 29.4],
    "temperature_2m_min": [16.0, 15.2, 17.1],
    "precipitation_sum": [0.0, 0.4, 1.2],
    "relative_humidity_2m_mean": [61, 64, 58],
    "wind_speed_10m_max": [11.2, 9.8, 12.5]
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(srv.Client(), zerolog.Nop())
	c.GeocodingURL = srv.URL
	c.ArchiveURL = srv.URL
	return c
}

func TestGeocode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Mysore", r.URL.Query().Get("name"))
		assert.Equal(t, "1", r.URL.Query().Get("count"))
		w.Write([]byte(`{"results":[{"name":"Mysuru","latitude":12.3,"longitude":76.65}]}`))
	})

	loc, err := c.Geocode(context.Background(), "Mysore")
	require.NoError(t, err)
	assert.Equal(t, Location{Name: "Mysuru", Latitude: 12.3, Longitude: 76.65}, loc)
}

func TestGeocodeNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"generationtime_ms":0.5}`))
	})

	_, err := c.Geocode(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrCityNotFound)
}

func TestGeocodeServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.Geocode(context.Background(), "Mysore")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Code)
}

func TestHistory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/era5", r.URL.Path)
		assert.Equal(t, "12.3", q.Get("latitude"))
		assert.Equal(t, "76.65", q.Get("longitude"))
		assert.Equal(t, "2021-01-01", q.Get("start_date"))
		assert.Equal(t, "2026-10-16", q.Get("end_date"))
		assert.Equal(t, dailyVariables, q.Get("daily"))
		assert.Equal(t, DefaultTimezone, q.Get("timezone"))
		w.Write([]byte(archiveBody))
	})

	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	h, err := c.History(context.Background(), Location{Name: "Mysuru", Latitude: 12.3, Longitude: 76.65}, 5, now)
	require.NoError(t, err)

	// The day with a missing maximum is dropped.
	require.Len(t, h, 2)
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), h[0].Date)
	assert.Equal(t, Day{
		Date:      time.Date(2021, 1, 3, 0, 0, 0, 0, time.UTC),
		TempMax:   29.4,
		TempMin:   17.1,
		Rainfall:  1.2,
		Humidity:  58,
		WindSpeed: 12.5,
	}, h[1])
}

func TestOutlook(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			w.Write([]byte(`{"results":[{"name":"Mysuru","latitude":12.3,"longitude":76.65}]}`))
		case "/era5":
			w.Write([]byte(archiveBody))
		default:
			http.NotFound(w, r)
		}
	})

	now := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	o, err := c.Outlook(context.Background(), "Mysore", 5, 3, now)
	require.NoError(t, err)

	assert.Equal(t, "Mysuru", o.City.Name)
	require.Len(t, o.Forecast, 3)
	assert.Equal(t, "2021-01-04", o.Forecast[0].Date)
	assert.InDelta(t, 28.75, o.Forecast[0].TempMax.Value, 1e-9)
	require.NotNil(t, o.Summary)
	assert.Nil(t, o.Summary.BestPeriod)
	assert.Equal(t, now, o.GeneratedAt)
}
