package popularity

import (
	"context"
	"math"
)

// Confidence levels attached to an enrichment.
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// Source names.
const (
	SourceWikipedia  = "wikipedia"
	SourceFoursquare = "foursquare"
	SourceOSM        = "osm"
	SourceAI         = "ai_estimated"
	SourceCombined   = "combined"
	SourceDefault    = "default"
	SourceFallback   = "fallback"
)

// Used when nothing is known about a landmark.
const (
	DefaultPopularity = 50.0
	DefaultRating     = 3.5
	DefaultCategory   = "attraction"
)

// Place is a landmark to look up.
type Place struct {
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
}

// Query is what a Source is asked about.
type Query struct {
	Place
	// Location is the city or region the trip is in, e.g. "Mysore".
	Location string
}

// Estimate is one source's view of a landmark. Rating is on a 1-5 scale and
// popularity on 0-100.
type Estimate struct {
	Popularity        float64  `json:"popularity"`
	Rating            float64  `json:"rating"`
	Source            string   `json:"source"`
	Confidence        string   `json:"confidence,omitempty"`
	Category          string   `json:"category,omitempty"`
	Description       string   `json:"description,omitempty"`
	Heritage          string   `json:"heritage,omitempty"`
	Verified          bool     `json:"verified,omitempty"`
	CheckinsCount     int      `json:"checkins_count,omitempty"`
	HasWikipediaEntry bool     `json:"has_wikipedia_entry,omitempty"`
	Sources           []string `json:"sources,omitempty"`
}

// Source looks a landmark up. A nil Estimate with a nil error means the
// source has nothing on it.
type Source interface {
	Name() string
	Lookup(ctx context.Context, q Query) (*Estimate, error)
}

// Enriched is a place together with its final estimate.
type Enriched struct {
	Place
	Popularity        float64  `json:"popularity"`
	Rating            float64  `json:"rating"`
	Source            string   `json:"source"`
	Confidence        string   `json:"confidence"`
	Verified          bool     `json:"verified"`
	HasWikipediaEntry bool     `json:"has_wikipedia_entry"`
	Sources           []string `json:"sources,omitempty"`
}

// Score converts the 1-5 rating into the 0-100 score used for clustering.
func (e Enriched) Score() float64 {
	return math.Max(0, math.Min(100, e.Rating*20))
}

var sourceWeights = map[string]float64{
	SourceFoursquare: 0.4,
	SourceWikipedia:  0.35,
	SourceOSM:        0.25,
}

const otherSourceWeight = 0.2

func weightOf(source string) float64 {
	if w, ok := sourceWeights[source]; ok {
		return w
	}
	return otherSourceWeight
}

// Combine merges source estimates. A single estimate is used as is with
// medium confidence. Several are averaged with per-source weights; the
// popularity is rounded to an integer and the rating to one decimal.
// Combine returns nil for no estimates.
func Combine(estimates []Estimate) *Estimate {
	switch len(estimates) {
	case 0:
		return nil
	case 1:
		e := estimates[0]
		e.Confidence = ConfidenceMedium
		return &e
	}

	var popularity, rating, total float64
	sources := make([]string, 0, len(estimates))
	for _, e := range estimates {
		w := weightOf(e.Source)
		popularity += e.Popularity * w
		rating += e.Rating * w
		total += w
		sources = append(sources, e.Source)
	}
	return &Estimate{
		Popularity: math.Round(popularity / total),
		Rating:     math.Round(rating/total*10) / 10,
		Source:     SourceCombined,
		Confidence: ConfidenceHigh,
		Sources:    sources,
	}
}

func defaultEstimate(source string) Estimate {
	return Estimate{
		Popularity: DefaultPopularity,
		Rating:     DefaultRating,
		Source:     source,
		Confidence: ConfidenceLow,
	}
}

func enrich(p Place, e Estimate) Enriched {
	category := e.Category
	if category == "" {
		category = p.Category
	}
	if category == "" {
		category = DefaultCategory
	}
	p.Category = category
	if p.Description == "" {
		p.Description = e.Description
	}
	return Enriched{
		Place:             p,
		Popularity:        e.Popularity,
		Rating:            e.Rating,
		Source:            e.Source,
		Confidence:        e.Confidence,
		Verified:          e.Verified,
		HasWikipediaEntry: e.HasWikipediaEntry,
		Sources:           e.Sources,
	}
}
