package popularity

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "landmarks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreUpsertAndList(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Upsert(ctx, "Mysore", []Enriched{
		{Place: Place{Name: "Palace", Latitude: 12.30, Longitude: 76.65, Category: "palace"}, Popularity: 90, Rating: 4.6, Source: SourceCombined, Confidence: ConfidenceHigh},
		{Place: Place{Name: "Zoo", Latitude: 12.30, Longitude: 76.66}, Popularity: 70, Rating: 4.1, Source: SourceOSM, Confidence: ConfidenceMedium},
	}))
	require.NoError(t, s.Upsert(ctx, "Hampi", []Enriched{
		{Place: Place{Name: "Virupaksha", Latitude: 15.33, Longitude: 76.46}, Popularity: 88, Rating: 4.7, Source: SourceWikipedia, Confidence: ConfidenceMedium},
	}))

	got, err := s.List(ctx, "Mysore")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Palace", got[0].Name)
	assert.Equal(t, "Mysore", got[0].Location)
	assert.Equal(t, "palace", got[0].Category)
	assert.Equal(t, 90.0, got[0].Popularity)
	assert.False(t, got[0].UpdatedAt.IsZero())
	assert.Equal(t, "Zoo", got[1].Name)

	// Re-enriching updates in place and keeps the original order.
	require.NoError(t, s.Upsert(ctx, "Mysore", []Enriched{
		{Place: Place{Name: "Palace", Latitude: 12.30, Longitude: 76.65}, Popularity: 95, Rating: 4.8, Source: SourceCombined, Confidence: ConfidenceHigh},
	}))
	got, err = s.List(ctx, "Mysore")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Palace", got[0].Name)
	assert.Equal(t, 95.0, got[0].Popularity)
	assert.Equal(t, 4.8, got[0].Rating)

	locations, err := s.Locations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hampi", "Mysore"}, locations)

	n, err := s.Delete(ctx, "Mysore")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err = s.List(ctx, "Mysore")
	require.NoError(t, err)
	assert.Empty(t, got)
}
