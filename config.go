package daytrip

import (
	"net/http"
	"time"

	"github.com/Harshith20B/daytrip/clustering"
	"github.com/Harshith20B/daytrip/internal/config"
	"github.com/Harshith20B/daytrip/internal/logging"
)

// Config holds the process settings. The command sets it before any
// subcommand runs.
var Config = config.New()

func clusteringOptions() []clustering.Option {
	return []clustering.Option{
		clustering.WithSeed(Config.Seed),
		clustering.WithRestarts(Config.Restarts),
		clustering.WithMaxIterations(Config.MaxIterations),
		clustering.WithLogger(logging.With("clustering")),
	}
}

func httpClient() *http.Client {
	timeout, err := Config.Timeout()
	if err != nil {
		timeout = 15 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
