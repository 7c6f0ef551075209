package daytrip

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshith20B/daytrip/clustering"
	"github.com/Harshith20B/daytrip/internal/config"
	"github.com/Harshith20B/daytrip/popularity"
	"github.com/Harshith20B/daytrip/weather"
)

const mysoreRequest = `{
  "landmarks": [
    {"name": "Mysore Palace", "latitude": 12.3052, "longitude": 76.6552, "popularity": 95, "score": 90},
    {"name": "Jaganmohan Palace", "latitude": 12.3064, "longitude": 76.6501, "popularity": 60, "score": 70},
    {"name": "Chamundi Hills", "latitude": 12.2725, "longitude": 76.6700, "popularity": 85, "score": 88},
    {"name": "Brindavan Gardens", "latitude": 12.4218, "longitude": 76.5725, "popularity": 80, "score": 80},
    {"name": "KRS Dam", "latitude": 12.4244, "longitude": 76.5729, "popularity": 55, "score": 60},
    {"name": "Srirangapatna Fort", "latitude": 12.4216, "longitude": 76.6946, "popularity": 65, "score": 72},
    {"name": "no coordinates"}
  ],
  "k": 2
}`

func useTestConfig(t *testing.T) {
	t.Helper()
	prev := Config
	Config = config.New()
	Config.DBPath = filepath.Join(t.TempDir(), "landmarks.db")
	t.Cleanup(func() { Config = prev })
}

type staticSource struct {
	estimates map[string]popularity.Estimate
}

func (s *staticSource) Name() string { return popularity.SourceWikipedia }

func (s *staticSource) Lookup(ctx context.Context, q popularity.Query) (*popularity.Estimate, error) {
	e, ok := s.estimates[q.Name]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func TestClusterRequest(t *testing.T) {
	useTestConfig(t)

	res, err := clusterRequest(strings.NewReader(mysoreRequest), nil)
	require.NoError(t, err)
	assert.Len(t, res.Clusters, 2)
	assert.Equal(t, 6, res.TotalLandmarks)
	assert.Equal(t, clustering.Method, res.ClusteringMethod)

	days := 3
	res, err = clusterRequest(strings.NewReader(mysoreRequest), &days)
	require.NoError(t, err)
	assert.Len(t, res.Clusters, 3)
}

func TestClusterLandmarksWritesEnvelopeOnFailure(t *testing.T) {
	useTestConfig(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "request.json")
	out := filepath.Join(dir, "clusters.json")
	require.NoError(t, os.WriteFile(in, []byte(`{"landmarks": [{"name": "x"}]}`), 0644))

	err := ClusterLandmarks(context.Background(), ClusterOptions{Input: in, Output: out})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"No valid landmarks provided","clusters":[],"silhouette_score":0}`, string(data))
}

func TestClusterLandmarksWritesResult(t *testing.T) {
	useTestConfig(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "request.json")
	out := filepath.Join(dir, "clusters.json")
	require.NoError(t, os.WriteFile(in, []byte(mysoreRequest), 0644))

	require.NoError(t, ClusterLandmarks(context.Background(), ClusterOptions{Input: in, Output: out}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n  \"clusters\": ["), "two-space indented JSON")

	var res clustering.Result
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Len(t, res.Clusters, 2)
}

func TestEnrichThenClusterCatalog(t *testing.T) {
	useTestConfig(t)
	ctx := context.Background()

	store, err := popularity.OpenStore(Config.DBPath)
	require.NoError(t, err)
	defer store.Close()

	src := &staticSource{estimates: map[string]popularity.Estimate{
		"Mysore Palace":  {Popularity: 95, Rating: 4.5, Source: popularity.SourceWikipedia},
		"Chamundi Hills": {Popularity: 85, Rating: 4.0, Source: popularity.SourceWikipedia},
	}}
	svc := popularity.NewService([]popularity.Source{src}, popularity.WithBatchInterval(0))

	places := []popularity.Place{
		{Name: "Mysore Palace", Latitude: 12.3052, Longitude: 76.6552},
		{Name: "Chamundi Hills", Latitude: 12.2725, Longitude: 76.6700},
		{Name: "Brindavan Gardens", Latitude: 12.4218, Longitude: 76.5725},
		{Name: "KRS Dam", Latitude: 12.4244, Longitude: 76.5729},
	}
	enriched, err := enrichAndStore(ctx, svc, store, places, " Mysore ")
	require.NoError(t, err)
	require.Len(t, enriched, 4)
	assert.Equal(t, 95.0, enriched[0].Popularity)
	assert.Equal(t, popularity.SourceDefault, enriched[2].Source)

	res, err := clusterCatalog(ctx, store, "Mysore", 2)
	require.NoError(t, err)
	require.Len(t, res.Clusters, 2)
	assert.Equal(t, 4, res.TotalLandmarks)

	byName := map[string]clustering.Landmark{}
	for _, c := range res.Clusters {
		for _, l := range c.Landmarks {
			byName[l.Name] = l
		}
	}
	assert.Equal(t, 90.0, byName["Mysore Palace"].Score, "rating 4.5 scores 90")
	assert.Equal(t, 70.0, byName["KRS Dam"].Score, "default rating 3.5 scores 70")
}

func TestEnrichRejectsEmptyLocation(t *testing.T) {
	useTestConfig(t)
	store, err := popularity.OpenStore(Config.DBPath)
	require.NoError(t, err)
	defer store.Close()

	_, err = enrichAndStore(context.Background(), popularity.NewService(nil), store, nil, "  ")
	assert.Error(t, err)
}

func TestClusterCatalogUnknownLocation(t *testing.T) {
	useTestConfig(t)
	store, err := popularity.OpenStore(Config.DBPath)
	require.NoError(t, err)
	defer store.Close()

	_, err = clusterCatalog(context.Background(), store, "Atlantis", 3)
	assert.ErrorIs(t, err, clustering.ErrNoLandmarks)
}

func TestClusteringSchema(t *testing.T) {
	for _, kind := range []string{"request", "response", "error"} {
		schema, err := clusteringSchema(kind)
		require.NoError(t, err, kind)

		raw, err := json.Marshal(schema)
		require.NoError(t, err)
		var doc map[string]any
		require.NoError(t, json.Unmarshal(raw, &doc))
		assert.Equal(t, "object", doc["type"], kind)
	}

	schema, err := clusteringSchema("request")
	require.NoError(t, err)
	raw, err := json.Marshal(schema)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"landmarks"`)
	assert.Contains(t, string(raw), `"latitude"`)

	_, err = clusteringSchema("itinerary")
	assert.Error(t, err)
}

func sampleResult(t *testing.T) clustering.Result {
	t.Helper()
	useTestConfig(t)
	res, err := clusterRequest(strings.NewReader(mysoreRequest), nil)
	require.NoError(t, err)
	res.Clusters[0].Landmarks[0].Name = "Palace | East Gate"
	return res
}

func sampleOutlook() *weather.Outlook {
	return &weather.Outlook{
		City: weather.Location{Name: "Mysuru"},
		Summary: &weather.Summary{
			AvgTempMax:     29.5,
			AvgTempMin:     19.2,
			RainyDays:      4,
			AvgHumidity:    62,
			Recommendation: "Pleasant weather conditions expected - ideal for sightseeing and outdoor activities.",
			BestPeriod:     &weather.Period{StartDate: "2026-11-02", EndDate: "2026-11-08", AvgTemp: 28.1},
			MonthlyBreakdown: []weather.Month{
				{Month: 1, AvgTempMax: 29.5, AvgTempMin: 19.2, TotalRainfall: 40, RainyDays: 4, AvgHumidity: 62},
			},
		},
	}
}

func TestRenderItinerary(t *testing.T) {
	res := sampleResult(t)
	md := renderItinerary("Mysore in 2 days", res, sampleOutlook())

	assert.True(t, strings.HasPrefix(md, "# Mysore in 2 days\n"))
	assert.Contains(t, md, "## Day 1\n")
	assert.Contains(t, md, "## Day 2\n")
	assert.Contains(t, md, `Palace \| East Gate`)
	assert.Contains(t, md, "https://www.openstreetmap.org/?mlat=")
	assert.Contains(t, md, "## Weather in Mysuru")
	assert.Contains(t, md, "**2026-11-02 to 2026-11-08**")
	assert.NotContains(t, md, "Day 3")

	plain := renderItinerary("Mysore", res, nil)
	assert.NotContains(t, plain, "Weather")
}

func TestGenerateCompleteHTML(t *testing.T) {
	md := "# Title\n\n## Day 1\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"
	page, err := generateCompleteHTML("Mysore <trip>", md, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Contains(t, page, "<title>Mysore &lt;trip&gt;</title>")
	assert.Contains(t, page, "16 October 2026")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, `<h2 id="day-1">Day 1</h2>`)
	assert.NotContains(t, page, "<h1 id=\"title\">", "the markdown title is replaced by the page header")
	assert.Contains(t, page, "border-collapse")
}

func TestGenerateItinerary(t *testing.T) {
	res := sampleResult(t)
	dir := t.TempDir()

	clustersPath := filepath.Join(dir, "clusters.json")
	weatherPath := filepath.Join(dir, "weather.json")
	require.NoError(t, writeJSONFile(clustersPath, res))
	require.NoError(t, writeJSONFile(weatherPath, sampleOutlook()))

	err := GenerateItinerary(ItineraryOptions{Clusters: clustersPath, Weather: weatherPath, OutDir: dir})
	require.NoError(t, err)

	md, err := os.ReadFile(filepath.Join(dir, "itinerary.md"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(md), "# "+defaultTitle))
	assert.Contains(t, string(md), "## Weather in Mysuru")

	page, err := os.ReadFile(filepath.Join(dir, "itinerary.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "Day 2")
}

func TestGenerateItineraryRejectsErrorEnvelope(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clusters.json")
	require.NoError(t, writeJSONFile(path, clustering.NewErrorEnvelope(&clustering.InputError{Err: clustering.ErrNoLandmarks})))

	err := GenerateItinerary(ItineraryOptions{Clusters: path, OutDir: dir})
	assert.Error(t, err)
}

func TestClusterLandmarksFromDBNeedsLocation(t *testing.T) {
	useTestConfig(t)
	out := filepath.Join(t.TempDir(), "clusters.json")

	require.NoError(t, ClusterLandmarks(context.Background(), ClusterOptions{FromDB: true, Output: out}))

	var env clustering.ErrorEnvelope
	require.NoError(t, readJSONFile(out, &env))
	assert.Equal(t, "Clustering failed: --from-db requires --location", env.Error)
	assert.Empty(t, env.Clusters)
}
