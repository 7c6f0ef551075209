package clustering

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// DefaultRating is used for popularity and score when a record omits them.
const DefaultRating = 50.0

// Landmark is a validated point of interest.
type Landmark struct {
	Name       string  `json:"name" validate:"required" jsonschema:"description=Display name of the landmark"`
	Latitude   float64 `json:"latitude" validate:"latitude" jsonschema:"minimum=-90,maximum=90"`
	Longitude  float64 `json:"longitude" validate:"longitude" jsonschema:"minimum=-180,maximum=180"`
	Popularity float64 `json:"popularity" validate:"gte=0,lte=100" jsonschema:"minimum=0,maximum=100,default=50"`
	Score      float64 `json:"score" validate:"gte=0,lte=100" jsonschema:"minimum=0,maximum=100,default=50"`
}

var (
	landmarkValidate     *validator.Validate
	landmarkValidateOnce sync.Once
)

func landmarkValidator() *validator.Validate {
	landmarkValidateOnce.Do(func() {
		landmarkValidate = validator.New(validator.WithRequiredStructEnabled())
	})
	return landmarkValidate
}

// ValidateRecords turns untrusted records into canonical landmarks.
//
// Records that are not objects, have no name, or carry non-numeric or
// out-of-range coordinates are dropped without error. Popularity and score
// default to DefaultRating and are clamped to [0, 100]. Input order is kept.
func ValidateRecords(records []any) []Landmark {
	valid := make([]Landmark, 0, len(records))
	for _, record := range records {
		fields, ok := record.(map[string]any)
		if !ok {
			continue
		}
		landmark, ok := landmarkFromFields(fields)
		if !ok {
			continue
		}
		valid = append(valid, landmark)
	}
	return valid
}

// Canonicalize applies the same rules as ValidateRecords to typed landmarks.
// Running it over its own output returns the input unchanged.
func Canonicalize(landmarks []Landmark) []Landmark {
	valid := make([]Landmark, 0, len(landmarks))
	for _, l := range landmarks {
		l.Name = strings.TrimSpace(l.Name)
		l.Popularity = clampRating(l.Popularity)
		l.Score = clampRating(l.Score)
		if landmarkValidator().Struct(l) != nil {
			continue
		}
		valid = append(valid, l)
	}
	return valid
}

func landmarkFromFields(fields map[string]any) (Landmark, bool) {
	name, ok := fields["name"].(string)
	if !ok {
		return Landmark{}, false
	}
	lat, ok := coordinate(fields["latitude"])
	if !ok {
		return Landmark{}, false
	}
	lon, ok := coordinate(fields["longitude"])
	if !ok {
		return Landmark{}, false
	}

	l := Landmark{
		Name:       strings.TrimSpace(name),
		Latitude:   lat,
		Longitude:  lon,
		Popularity: clampRating(rating(fields["popularity"])),
		Score:      clampRating(rating(fields["score"])),
	}
	if err := landmarkValidator().Struct(l); err != nil {
		return Landmark{}, false
	}
	return l, true
}

// coordinate accepts only numeric values; strings and booleans are rejected.
func coordinate(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// rating reads an optional popularity or score. Missing, null and
// unparseable values fall back to DefaultRating.
func rating(v any) float64 {
	switch n := v.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) {
			return DefaultRating
		}
		return f
	default:
		if f, ok := coordinate(v); ok && !math.IsNaN(f) {
			return f
		}
		return DefaultRating
	}
}

func clampRating(v float64) float64 {
	return max(0, min(100, v))
}
