package clustering

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	featureColumns = 4

	// ratingFeatureWeight biases grouping toward popularity-homogeneous days
	// rather than purely geographic ones.
	ratingFeatureWeight = 2.0
)

// BuildFeatures returns one row per landmark:
// [latitude, longitude, 2*popularity/100, 2*score/100].
func BuildFeatures(landmarks []Landmark) *mat.Dense {
	data := mat.NewDense(len(landmarks), featureColumns, nil)
	for i, l := range landmarks {
		data.SetRow(i, []float64{
			l.Latitude,
			l.Longitude,
			ratingFeatureWeight * l.Popularity / 100,
			ratingFeatureWeight * l.Score / 100,
		})
	}
	return data
}

// Standardize rescales every column to zero mean and unit population
// variance. A constant column becomes all zeros. The input is not modified.
func Standardize(features *mat.Dense) *mat.Dense {
	rows, cols := features.Dims()
	scaled := mat.NewDense(rows, cols, nil)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, features)
		if floats.Max(col) == floats.Min(col) {
			// Constant column: leave it at zero rather than divide rounding noise.
			continue
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		for i, v := range col {
			scaled.Set(i, j, (v-mean)/std)
		}
	}
	return scaled
}
