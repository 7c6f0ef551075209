package clustering_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshith20B/daytrip/clustering"
)

func TestValidateRecordsDropsInvalid(t *testing.T) {
	records := []any{
		map[string]any{"latitude": 10.0, "longitude": 10.0},                   // no name
		map[string]any{"name": "   ", "latitude": 10.0, "longitude": 10.0},    // blank name
		map[string]any{"name": 42, "latitude": 10.0, "longitude": 10.0},       // non-string name
		map[string]any{"name": "a", "latitude": "10", "longitude": 10.0},      // string coordinate
		map[string]any{"name": "b", "latitude": true, "longitude": 10.0},      // bool coordinate
		map[string]any{"name": "c", "latitude": 95.0, "longitude": 10.0},      // latitude out of range
		map[string]any{"name": "d", "latitude": 10.0, "longitude": -181.0},    // longitude out of range
		map[string]any{"name": "e", "latitude": nil, "longitude": 10.0},       // null coordinate
		"not a record",
		nil,
		map[string]any{"name": "kept", "latitude": -90.0, "longitude": 180.0},
	}

	got := clustering.ValidateRecords(records)
	require.Len(t, got, 1)
	assert.Equal(t, clustering.Landmark{
		Name:       "kept",
		Latitude:   -90,
		Longitude:  180,
		Popularity: clustering.DefaultRating,
		Score:      clustering.DefaultRating,
	}, got[0])
}

func TestValidateRecordsCanonicalizes(t *testing.T) {
	records := []any{
		map[string]any{"name": "  Fort  ", "latitude": 12.0, "longitude": 77, "popularity": 150.0, "score": -3.0},
		map[string]any{"name": "Lake", "latitude": 13.5, "longitude": 77.5, "popularity": "70", "score": "n/a"},
		map[string]any{"name": "Temple", "latitude": json.Number("14.25"), "longitude": 78.0, "popularity": nil},
	}

	got := clustering.ValidateRecords(records)
	require.Len(t, got, 3)

	assert.Equal(t, "Fort", got[0].Name)
	assert.Equal(t, 77.0, got[0].Longitude)
	assert.Equal(t, 100.0, got[0].Popularity, "popularity is clamped, not rejected")
	assert.Equal(t, 0.0, got[0].Score)

	assert.Equal(t, 70.0, got[1].Popularity)
	assert.Equal(t, clustering.DefaultRating, got[1].Score)

	assert.Equal(t, 14.25, got[2].Latitude)
	assert.Equal(t, clustering.DefaultRating, got[2].Popularity)
}

func TestValidateRecordsPreservesOrder(t *testing.T) {
	records := []any{
		map[string]any{"name": "first", "latitude": 1.0, "longitude": 1.0},
		map[string]any{"name": "", "latitude": 1.0, "longitude": 1.0},
		map[string]any{"name": "second", "latitude": 2.0, "longitude": 2.0},
		map[string]any{"name": "third", "latitude": 3.0, "longitude": 3.0},
	}

	got := clustering.ValidateRecords(records)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{got[0].Name, got[1].Name, got[2].Name})
}

func TestCanonicalizeIsIdempotent(t *testing.T) {
	valid := clustering.ValidateRecords([]any{
		map[string]any{"name": " Museum ", "latitude": 48.86, "longitude": 2.33, "popularity": 120.0},
		map[string]any{"name": "Tower", "latitude": 48.85, "longitude": 2.29, "score": 88.0},
		map[string]any{"name": "Bridge", "latitude": 48.85, "longitude": 2.34, "popularity": -1.0, "score": 101.0},
	})
	require.Len(t, valid, 3)

	once := clustering.Canonicalize(valid)
	assert.Equal(t, valid, once)
	assert.Equal(t, once, clustering.Canonicalize(once))
}

func TestCanonicalizeDropsInvalid(t *testing.T) {
	got := clustering.Canonicalize([]clustering.Landmark{
		{Name: "ok", Latitude: 1, Longitude: 1, Popularity: 200, Score: 50},
		{Name: " ", Latitude: 1, Longitude: 1},
		{Name: "north", Latitude: 95, Longitude: 1},
	})
	require.Len(t, got, 1)
	assert.Equal(t, 100.0, got[0].Popularity)
}
