package clustering_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshith20B/daytrip/clustering"
)

func landmark(name string, lat, lon, popularity float64) clustering.Landmark {
	return clustering.Landmark{Name: name, Latitude: lat, Longitude: lon, Popularity: popularity, Score: 50}
}

func names(landmarks []clustering.Landmark) []string {
	out := make([]string, len(landmarks))
	for i, l := range landmarks {
		out[i] = l.Name
	}
	return out
}

func TestRunSingleLandmark(t *testing.T) {
	only := landmark("solo", 12.97, 77.59, 80)
	for _, k := range []int{-1, 0, 1, 2, 5} {
		res, err := clustering.Run([]clustering.Landmark{only}, k)
		require.NoError(t, err)
		require.Len(t, res.Clusters, 1, "k=%d", k)
		assert.Equal(t, clustering.TrivialSilhouette, res.SilhouetteScore)
		assert.Equal(t, 1, res.OptimalK)
		assert.Equal(t, []clustering.Landmark{only}, res.Clusters[0].Landmarks)
		assert.Equal(t, clustering.Point{Latitude: 12.97, Longitude: 77.59}, res.Clusters[0].Center)
	}
}

func TestRunTrivialKeepsInputOrder(t *testing.T) {
	in := []clustering.Landmark{
		landmark("low", 0, 0, 10),
		landmark("high", 0, 2, 90),
		landmark("mid", 0, 4, 50),
	}

	res, err := clustering.Run(in, 1)
	require.NoError(t, err)
	require.Len(t, res.Clusters, 1)

	c := res.Clusters[0]
	assert.Equal(t, 1, c.Day)
	assert.Equal(t, []string{"low", "high", "mid"}, names(c.Landmarks))
	assert.Equal(t, 3, c.LandmarkCount)
	assert.InDelta(t, 50, c.AvgPopularity, 1e-12)
	assert.InDelta(t, 0, c.Center.Latitude, 1e-12)
	assert.InDelta(t, 2, c.Center.Longitude, 1e-12)
}

func TestRunGroupsAndOrders(t *testing.T) {
	in := []clustering.Landmark{
		landmark("a-low", 0, 0, 20),
		landmark("b-high", 50, 50, 90),
		landmark("a-high", 0, 0.01, 40),
		landmark("b-low", 50, 50.01, 80),
	}

	res, err := clustering.Run(in, 2)
	require.NoError(t, err)
	require.Len(t, res.Clusters, 2)
	assert.Equal(t, 2, res.OptimalK)

	// Higher average popularity comes first; members are popularity-sorted.
	assert.Equal(t, []string{"b-high", "b-low"}, names(res.Clusters[0].Landmarks))
	assert.Equal(t, []string{"a-high", "a-low"}, names(res.Clusters[1].Landmarks))
	assert.Equal(t, 1, res.Clusters[0].Day)
	assert.Equal(t, 2, res.Clusters[1].Day)
	assert.InDelta(t, 85, res.Clusters[0].AvgPopularity, 1e-12)
	assert.InDelta(t, 30, res.Clusters[1].AvgPopularity, 1e-12)
	assert.InDelta(t, 50.005, res.Clusters[0].Center.Longitude, 1e-9)
	assert.Greater(t, res.SilhouetteScore, 0.5)
}

func TestRunStableOnEqualPopularity(t *testing.T) {
	in := []clustering.Landmark{
		landmark("first", 10, 10, 60),
		landmark("second", 10, 10.001, 60),
		landmark("third", 10, 10.002, 60),
		landmark("far", -40, -40, 60),
	}

	res, err := clustering.Run(in, 2)
	require.NoError(t, err)
	require.Len(t, res.Clusters, 2)

	for _, c := range res.Clusters {
		if c.LandmarkCount == 3 {
			assert.Equal(t, []string{"first", "second", "third"}, names(c.Landmarks))
		}
	}
}

func TestRunSearchesKWhenManyLandmarks(t *testing.T) {
	var in []clustering.Landmark
	for b, center := range [][2]float64{{0, 0}, {20, 20}, {-20, 40}} {
		for i := 0; i < 5; i++ {
			in = append(in, landmark(
				string(rune('a'+b))+string(rune('0'+i)),
				center[0]+0.01*float64(i),
				center[1]+0.01*float64(i),
				50,
			))
		}
	}

	// 15 landmarks > 2*2, so the count is searched in [2, 4].
	res, err := clustering.Run(in, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, res.OptimalK)
	assert.Len(t, res.Clusters, 3)
}

func TestRunIsReproducible(t *testing.T) {
	var in []clustering.Landmark
	for i := 0; i < 12; i++ {
		f := float64(i)
		in = append(in, landmark(string(rune('A'+i)), f*0.37-2, f*f*0.11, float64((i*37)%100)))
	}

	first, err := clustering.Run(in, 3, clustering.WithSeed(99))
	require.NoError(t, err)
	second, err := clustering.Run(in, 3, clustering.WithSeed(99))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRunDegenerateInput(t *testing.T) {
	// Identical landmarks cannot be separated into two groups.
	in := []clustering.Landmark{
		landmark("x", 1, 1, 50),
		landmark("x", 1, 1, 50),
		landmark("x", 1, 1, 50),
	}

	_, err := clustering.Run(in, 2)
	var ce *clustering.ComputationError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, clustering.ErrDegenerate)
}
