package popularity

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultBatchSize landmarks are enriched concurrently.
const DefaultBatchSize = 5

// Service enriches landmarks with popularity estimates.
type Service struct {
	sources   []Source
	fallback  Source
	batchSize int
	limiter   *rate.Limiter
	logger    zerolog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithFallback sets the source consulted when none of the others answer.
func WithFallback(src Source) ServiceOption {
	return func(s *Service) {
		s.fallback = src
	}
}

// WithBatchSize sets how many landmarks are looked up at once.
func WithBatchSize(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithBatchInterval spaces out the start of consecutive batches.
func WithBatchInterval(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithLogger sets the service logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService returns a Service that queries sources in order.
func NewService(sources []Source, opts ...ServiceOption) *Service {
	s := &Service{
		sources:   sources,
		batchSize: DefaultBatchSize,
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SourcesConfig configures the public sources.
type SourcesConfig struct {
	HTTPClient       *http.Client
	FoursquareAPIKey string
	WikipediaURL     string
	FoursquareURL    string
	OverpassURL      string
	Logger           zerolog.Logger
}

// DefaultSources returns Wikipedia, Foursquare and OSM sources sharing one
// retrying HTTP client. Empty URLs select the public endpoints.
func DefaultSources(cfg SourcesConfig) []Source {
	client := newRetryClient(cfg.HTTPClient, cfg.Logger)
	return []Source{
		&Wikipedia{BaseURL: orDefault(cfg.WikipediaURL, DefaultWikipediaURL), client: client},
		&Foursquare{BaseURL: orDefault(cfg.FoursquareURL, DefaultFoursquareURL), APIKey: cfg.FoursquareAPIKey, client: client},
		&OSM{BaseURL: orDefault(cfg.OverpassURL, DefaultOverpassURL), client: client},
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Enrich looks every place up and returns one result per place, in order.
// Places are processed in batches; a place whose lookup fails gets a low
// confidence fallback estimate. Enrich only returns an error when ctx ends
// before all batches started, together with the results gathered so far.
func (s *Service) Enrich(ctx context.Context, places []Place, location string) ([]Enriched, error) {
	out := make([]Enriched, 0, len(places))
	for start := 0; start < len(places); start += s.batchSize {
		if err := s.limiter.Wait(ctx); err != nil {
			return out, err
		}
		end := min(start+s.batchSize, len(places))
		batch := places[start:end]

		results := make([]Enriched, len(batch))
		var wg sync.WaitGroup
		for i, p := range batch {
			wg.Add(1)
			go func(i int, p Place) {
				defer wg.Done()
				e, err := s.EnrichOne(ctx, p, location)
				if err != nil {
					s.logger.Warn().Err(err).Str("landmark", p.Name).Msg("enrichment failed, using fallback")
					e = enrich(p, defaultEstimate(SourceFallback))
				}
				results[i] = e
			}(i, p)
		}
		wg.Wait()
		out = append(out, results...)

		s.logger.Debug().Int("done", len(out)).Int("total", len(places)).Msg("enriched batch")
	}

	s.logger.Info().Int("landmarks", len(out)).Msg("enhanced landmarks with popularity data")
	return out, nil
}

// EnrichOne queries every source for p concurrently and combines the answers.
func (s *Service) EnrichOne(ctx context.Context, p Place, location string) (Enriched, error) {
	if p.Name == "" || p.Latitude == 0 || p.Longitude == 0 {
		return enrich(p, defaultEstimate(SourceDefault)), nil
	}

	s.logger.Debug().Str("landmark", p.Name).Msg("fetching popularity data")
	q := Query{Place: p, Location: location}

	answers := make([]*Estimate, len(s.sources))
	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			est, err := src.Lookup(ctx, q)
			if err != nil {
				s.logger.Warn().Err(err).Str("source", src.Name()).Str("landmark", p.Name).Msg("source lookup failed")
				return
			}
			answers[i] = est
		}(i, src)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return Enriched{}, err
	}

	var found []Estimate
	for _, est := range answers {
		if est != nil {
			found = append(found, *est)
		}
	}

	if combined := Combine(found); combined != nil {
		return enrich(p, *combined), nil
	}

	if s.fallback != nil {
		est, err := s.fallback.Lookup(ctx, q)
		if err != nil {
			s.logger.Warn().Err(err).Str("source", s.fallback.Name()).Str("landmark", p.Name).Msg("fallback lookup failed")
		} else if est != nil {
			return enrich(p, *est), nil
		}
	}
	return enrich(p, defaultEstimate(SourceDefault)), nil
}
