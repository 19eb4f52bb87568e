package clients

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen/witness-archive/internal/domain"
	"github.com/jsamuelsen/witness-archive/internal/platform/config"
)

// maxDatasetBytes caps a remote dataset download at 64 MiB.
const maxDatasetBytes = 64 << 20

// DatasetFetcher downloads the raw testimony dataset from a remote source.
// It implements ports.DatasetFetcher on top of the resilient HTTP client and
// ports.HealthChecker so the source feeds the readiness probe.
type DatasetFetcher struct {
	client *Client
	source string
}

// DatasetFetcherConfig configures a remote dataset fetcher.
type DatasetFetcherConfig struct {
	// URL is the full URL of the dataset file.
	URL string

	// SourceName identifies the source in logs, traces, and health checks.
	SourceName string

	// Client carries the timeout, retry, circuit breaker, and transport
	// settings for the underlying HTTP client.
	Client config.ClientConfig

	// Logger is an optional logger. If nil, a default logger is used.
	Logger *slog.Logger
}

// NewDatasetFetcher creates a fetcher for the configured dataset URL.
func NewDatasetFetcher(cfg DatasetFetcherConfig) (*DatasetFetcher, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("dataset URL is required")
	}

	if cfg.SourceName == "" {
		return nil, fmt.Errorf("source name is required")
	}

	client, err := New(&Config{
		BaseURL:     cfg.URL,
		ServiceName: cfg.SourceName,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating dataset client: %w", err)
	}

	return &DatasetFetcher{
		client: client,
		source: cfg.SourceName,
	}, nil
}

// FetchDataset downloads the dataset contents.
// Transport failures and non-2xx responses map to domain.ErrUnavailable so
// callers can surface a consistent error to the dashboard.
func (f *DatasetFetcher) FetchDataset(ctx context.Context) ([]byte, error) {
	resp, err := f.client.Get(ctx, "")
	if err != nil {
		return nil, domain.NewUnavailableError(f.source, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewUnavailableError(f.source, fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDatasetBytes+1))
	if err != nil {
		return nil, domain.NewUnavailableError(f.source, fmt.Sprintf("reading response: %v", err))
	}

	if len(data) > maxDatasetBytes {
		return nil, domain.NewUnavailableError(f.source, "dataset exceeds size limit")
	}

	return data, nil
}

// Name implements ports.HealthChecker.
func (f *DatasetFetcher) Name() string {
	return f.source
}

// Check implements ports.HealthChecker. The source is reported unhealthy
// while the circuit breaker is open; no probe request is made so readiness
// stays cheap.
func (f *DatasetFetcher) Check(_ context.Context) error {
	if f.client.CircuitState() == StateOpen {
		return fmt.Errorf("circuit breaker open for %s", f.source)
	}

	return nil
}
