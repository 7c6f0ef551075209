package popularity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"unicode/utf8"
)

// DefaultWikipediaURL is the Wikipedia REST API root.
const DefaultWikipediaURL = "https://en.wikipedia.org/api/rest_v1"

// Wikipedia scores a landmark by its page summary: longer extracts, a
// thumbnail and coordinates all suggest a better known place.
type Wikipedia struct {
	BaseURL string
	client  *retryClient
}

type wikipediaSummary struct {
	Extract     string          `json:"extract"`
	Thumbnail   json.RawMessage `json:"thumbnail"`
	Coordinates json.RawMessage `json:"coordinates"`
}

func (w *Wikipedia) Name() string { return SourceWikipedia }

func (w *Wikipedia) Lookup(ctx context.Context, q Query) (*Estimate, error) {
	title := q.Name
	if q.Location != "" {
		title += " " + q.Location
	}
	endpoint := w.BaseURL + "/page/summary/" + url.PathEscape(title)

	body, err := w.client.do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}

	var summary wikipediaSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("failed to decode wikipedia summary: %w", err)
	}
	if summary.Extract == "" {
		return nil, nil
	}

	popularity := min(60, float64(utf8.RuneCountInString(summary.Extract))/10)
	if present(summary.Thumbnail) {
		popularity += 20
	}
	if present(summary.Coordinates) {
		popularity += 15
	}

	return &Estimate{
		Popularity:        min(100, popularity),
		Rating:            4.0,
		Source:            SourceWikipedia,
		Description:       truncate(summary.Extract, 200),
		HasWikipediaEntry: true,
	}, nil
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
