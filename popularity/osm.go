package popularity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// DefaultOverpassURL is the public Overpass API interpreter.
const DefaultOverpassURL = "https://overpass-api.de/api/interpreter"

// OSM rates a landmark by the tourism, historic and heritage tags of the
// first mapped feature within 500 m of it.
type OSM struct {
	BaseURL string
	client  *retryClient
}

type overpassResponse struct {
	Elements []struct {
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

func (o *OSM) Name() string { return SourceOSM }

func overpassQuery(lat, lon float64) string {
	around := fmt.Sprintf("(around:500,%g,%g)", lat, lon)
	return fmt.Sprintf(`[out:json][timeout:10];
(
  node["tourism"]%[1]s;
  node["historic"]%[1]s;
  node["amenity"="place_of_worship"]%[1]s;
  way["tourism"]%[1]s;
  way["historic"]%[1]s;
);
out;`, around)
}

func (o *OSM) Lookup(ctx context.Context, q Query) (*Estimate, error) {
	query := overpassQuery(q.Latitude, q.Longitude)
	body, err := o.client.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL, strings.NewReader(query))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "text/plain")
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var resp overpassResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode overpass response: %w", err)
	}
	if len(resp.Elements) == 0 {
		return nil, nil
	}
	tags := resp.Elements[0].Tags

	category := "landmark"
	for _, key := range []string{"tourism", "historic", "amenity"} {
		if v := tags[key]; v != "" {
			category = v
			break
		}
	}

	return &Estimate{
		Popularity: min(100, significance(tags)),
		Rating:     4.2,
		Source:     SourceOSM,
		Category:   category,
		Heritage:   tags["heritage"],
	}, nil
}

// significance scores OSM tags, starting from 40.
func significance(tags map[string]string) float64 {
	score := 40.0
	switch tags["tourism"] {
	case "attraction":
		score += 30
	case "museum":
		score += 25
	case "monument":
		score += 20
	}
	if tags["historic"] != "" {
		score += 25
	}
	if tags["heritage"] != "" {
		score += 20
	}
	if tags["amenity"] == "place_of_worship" {
		score += 15
	}
	if tags["heritage"] == "world_heritage_site" {
		score += 40
	}
	if tags["protection_title"] != "" {
		score += 20
	}
	return score
}
