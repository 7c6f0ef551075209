package popularity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultFoursquareURL is the Foursquare Places API root.
const DefaultFoursquareURL = "https://api.foursquare.com/v3"

const foursquareRadiusMeters = 500

// Foursquare looks the landmark up among nearby venues. It needs an API key
// and reports nothing without one.
type Foursquare struct {
	BaseURL string
	APIKey  string
	client  *retryClient
}

type foursquareSearch struct {
	Results []struct {
		Popularity *float64 `json:"popularity"`
		Rating     *float64 `json:"rating"`
		Verified   bool     `json:"verified"`
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
		Stats struct {
			CheckinsCount int `json:"checkinsCount"`
		} `json:"stats"`
	} `json:"results"`
}

func (f *Foursquare) Name() string { return SourceFoursquare }

func (f *Foursquare) Lookup(ctx context.Context, q Query) (*Estimate, error) {
	if f.APIKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("ll", strconv.FormatFloat(q.Latitude, 'f', -1, 64)+","+strconv.FormatFloat(q.Longitude, 'f', -1, 64))
	params.Set("query", q.Name)
	params.Set("radius", strconv.Itoa(foursquareRadiusMeters))
	params.Set("limit", "5")
	endpoint := f.BaseURL + "/places/search?" + params.Encode()

	body, err := f.client.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", f.APIKey)
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var search foursquareSearch
	if err := json.Unmarshal(body, &search); err != nil {
		return nil, fmt.Errorf("failed to decode foursquare search: %w", err)
	}
	if len(search.Results) == 0 {
		return nil, nil
	}
	venue := search.Results[0]

	popularity := 50.0
	if venue.Popularity != nil && *venue.Popularity != 0 {
		popularity = *venue.Popularity
	}
	if checkins := venue.Stats.CheckinsCount; checkins > 0 {
		popularity += min(30, float64(checkins)/100)
	}

	rating := 3.8
	if venue.Rating != nil && *venue.Rating != 0 {
		rating = *venue.Rating
	}

	category := "Attraction"
	if len(venue.Categories) > 0 && venue.Categories[0].Name != "" {
		category = venue.Categories[0].Name
	}

	return &Estimate{
		Popularity:    min(100, popularity),
		Rating:        rating,
		Source:        SourceFoursquare,
		Category:      category,
		Verified:      venue.Verified,
		CheckinsCount: venue.Stats.CheckinsCount,
	}, nil
}
