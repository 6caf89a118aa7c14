package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/climate-viewer/internal/climate"
	"github.com/i474232898/climate-viewer/internal/pkg/logger"
)

var (
	// ErrUnexpectedStatus is returned for any non-200 response.
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrMalformedPayload is returned when the body is not a [{t, v}] array.
	ErrMalformedPayload = errors.New("malformed dataset payload")

	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// HTTPSource fetches raw datasets from "<baseURL>/data/<table>.json".
// Failures are not retried; a circuit breaker stops hammering a dead host.
type HTTPSource struct {
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	logger  logger.Logger
}

// NewHTTPSource creates a new HTTPSource.
func NewHTTPSource(client *http.Client, baseURL string, log logger.Logger) *HTTPSource {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "dataset",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,

		// A superseded request is not a sign of an unhealthy host.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		circuit: cb,
		logger:  log.WithField("component", "dataset"),
	}
}

// URL returns the resource address of table.
func (s *HTTPSource) URL(table climate.Table) string {
	return fmt.Sprintf("%s/data/%s.json", s.baseURL, url.PathEscape(string(table)))
}

// Fetch downloads and decodes the raw readings of table.
func (s *HTTPSource) Fetch(ctx context.Context, table climate.Table) ([]climate.Reading, error) {
	if s.client == nil {
		return nil, errNoHTTPClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(table), nil)
	if err != nil {
		return nil, err
	}

	result, err := s.circuit.Execute(func() (interface{}, error) {
		resp, execErr := s.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			s.logger.Errorf("%s: %d %s", req.URL, resp.StatusCode, http.StatusText(resp.StatusCode))
			return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	defer resp.Body.Close()

	readings, err := decode(resp)
	if err != nil {
		s.logger.Errorf("parsing %s: %v", req.URL, err)
		return nil, err
	}

	s.logger.Debugf("fetched %d readings for %s", len(readings), table)
	return readings, nil
}

func decode(resp *http.Response) ([]climate.Reading, error) {
	var payload []struct {
		T string   `json:"t"`
		V *float64 `json:"v"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	readings := make([]climate.Reading, 0, len(payload))
	for i, r := range payload {
		if r.T == "" || r.V == nil {
			return nil, fmt.Errorf("%w: entry %d lacks t or v", ErrMalformedPayload, i)
		}
		if _, err := climate.Year(r.T); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformedPayload, i, err)
		}
		readings = append(readings, climate.Reading{T: r.T, V: *r.V})
	}
	return readings, nil
}
