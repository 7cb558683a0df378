package swedavia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"swedavia-flights-service/internal/domain/entity"
	"swedavia-flights-service/pkg/logger"
	"swedavia-flights-service/pkg/metrics"
)

const (
	// DefaultBaseURL is the Swedavia FlightInfo v2 endpoint
	DefaultBaseURL = "https://api.swedavia.se/flightinfo/v2"

	// minRequestSpacing is the global minimum spacing between outbound
	// requests, shared across all subscribers
	minRequestSpacing = time.Second

	dateLayout = "2006-01-02"
)

// ErrAuthentication is returned when every configured key is rejected
var ErrAuthentication = errors.New("swedavia: authentication failed with all configured keys")

// ErrRateLimit is returned on HTTP 429. It is not retried automatically.
var ErrRateLimit = errors.New("swedavia: rate limit exceeded")

// ConnectionError covers transport failures, timeouts and unexpected
// status codes
type ConnectionError struct {
	Status int
	Detail string
	Err    error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("swedavia: connection error: %v", e.Err)
	}
	return fmt.Sprintf("swedavia: request failed with status %d: %s", e.Status, e.Detail)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// CallRecorder receives one event per outbound HTTP call actually made
type CallRecorder interface {
	RecordCall(ctx context.Context)
}

// Client is the Swedavia Flight Information API client. A single client is
// shared by every subscriber so the request spacing and key failover state
// are global.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	recorder   CallRecorder
	logger     logger.Logger
	metrics    *metrics.Metrics

	mu           sync.Mutex
	primaryKey   string
	secondaryKey string
	currentKey   string

	now func() time.Time
}

// NewClient creates a new API client
func NewClient(baseURL, primaryKey, secondaryKey string, timeout time.Duration, recorder CallRecorder, log logger.Logger, m *metrics.Metrics) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		baseURL:      baseURL,
		limiter:      rate.NewLimiter(rate.Every(minRequestSpacing), 1),
		recorder:     recorder,
		logger:       log,
		metrics:      m,
		primaryKey:   primaryKey,
		secondaryKey: secondaryKey,
		currentKey:   primaryKey,
		now:          time.Now,
	}
}

// UpdateKeys replaces the configured keys and resets failover state to the
// new primary
func (c *Client) UpdateKeys(primary, secondary string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if primary != "" {
		c.primaryKey = primary
		c.currentKey = primary
	}
	if secondary != "" {
		c.secondaryKey = secondary
	}
	c.logger.Info("Swedavia API keys updated")
}

func (c *Client) keyState() (current, secondary string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentKey, c.secondaryKey
}

func (c *Client) promoteSecondary(secondary string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentKey = secondary
}

// do performs one outbound HTTP call. Every call made through here counts
// against the quota, including failover retries.
func (c *Client) do(ctx context.Context, url, key string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &ConnectionError{Err: err}
	}

	if c.recorder != nil {
		c.recorder.RecordCall(ctx)
	}
	if c.metrics != nil {
		c.metrics.APICalls.Inc()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "swedavia-flights-service/1.0")
	if key != "" {
		req.Header.Set("Ocp-Apim-Subscription-Key", key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	return resp, nil
}

// fetch requests one endpoint and decodes the flights document. On 401 it
// fails over to the secondary key once; the secondary then stays current.
func (c *Client) fetch(ctx context.Context, endpoint string) (*entity.FlightsResponse, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, endpoint)
	c.logger.Debug("Requesting Swedavia API", "url", url)

	key, secondary := c.keyState()
	resp, err := c.do(ctx, url, key)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if secondary == "" || key == secondary {
			return nil, ErrAuthentication
		}

		c.logger.Warn("Primary API key rejected (401), retrying with secondary key")
		c.promoteSecondary(secondary)

		resp, err = c.do(ctx, url, secondary)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil, ErrAuthentication
		}
	}

	return c.decode(resp)
}

func (c *Client) decode(resp *http.Response) (*entity.FlightsResponse, error) {
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body)
		return nil, ErrRateLimit
	case resp.StatusCode == http.StatusNoContent:
		// No flights for this date
		return &entity.FlightsResponse{}, nil
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("API request failed", "status", resp.StatusCode, "body", string(body))
		return nil, &ConnectionError{Status: resp.StatusCode, Detail: string(body)}
	}

	var document entity.FlightsResponse
	if err := json.NewDecoder(resp.Body).Decode(&document); err != nil {
		return nil, &ConnectionError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return &document, nil
}

// Arrivals fetches arrivals for an airport on the given date
func (c *Client) Arrivals(ctx context.Context, airport, date string) (*entity.FlightsResponse, error) {
	if date == "" {
		date = c.now().UTC().Format(dateLayout)
	}
	return c.fetch(ctx, fmt.Sprintf("%s/arrivals/%s", airport, date))
}

// Departures fetches departures for an airport on the given date
func (c *Client) Departures(ctx context.Context, airport, date string) (*entity.FlightsResponse, error) {
	if date == "" {
		date = c.now().UTC().Format(dateLayout)
	}
	return c.fetch(ctx, fmt.Sprintf("%s/departures/%s", airport, date))
}

// FlightsByDateRange fetches one direction over the subscriber's window:
// one call per date from today-hoursBack through today+hoursAhead, merged
// and filtered so each flight's most accurate time lies inside the precise
// hour window relative to now. A failed date is logged and contributes
// nothing. The cycle as a whole fails only on an authentication error or
// when every date failed.
func (c *Client) FlightsByDateRange(ctx context.Context, airport string, direction entity.FlightType, hoursBack, hoursAhead int) ([]entity.Flight, error) {
	now := c.now().UTC()
	startDate := now.Add(-time.Duration(hoursBack) * time.Hour).Truncate(24 * time.Hour)
	endDate := now.Add(time.Duration(hoursAhead) * time.Hour).Truncate(24 * time.Hour)

	var flights []entity.Flight
	var lastErr error
	succeeded := 0

	for date := startDate; !date.After(endDate); date = date.AddDate(0, 0, 1) {
		dateStr := date.Format(dateLayout)

		var document *entity.FlightsResponse
		var err error
		if direction == entity.FlightTypeArrivals {
			document, err = c.Arrivals(ctx, airport, dateStr)
		} else {
			document, err = c.Departures(ctx, airport, dateStr)
		}
		if err != nil {
			if errors.Is(err, ErrAuthentication) {
				return nil, err
			}
			c.logger.Warn("Failed to fetch flights for date",
				"airport", airport, "direction", direction, "date", dateStr, "error", err)
			if c.metrics != nil {
				c.metrics.ErrorsCount.WithLabelValues("fetch").Inc()
			}
			lastErr = err
			continue
		}

		succeeded++
		flights = append(flights, document.Flights...)
	}

	if succeeded == 0 && lastErr != nil {
		return nil, lastErr
	}

	return filterByWindow(flights, direction, now, hoursBack, hoursAhead), nil
}

// filterByWindow keeps flights whose best known time falls within
// [-hoursBack, +hoursAhead] hours of now
func filterByWindow(flights []entity.Flight, direction entity.FlightType, now time.Time, hoursBack, hoursAhead int) []entity.Flight {
	filtered := make([]entity.Flight, 0, len(flights))
	for _, flight := range flights {
		flightTime, ok := flight.Times(direction).BestTime()
		if !ok {
			continue
		}
		diffHours := flightTime.Sub(now).Hours()
		if diffHours >= -float64(hoursBack) && diffHours <= float64(hoursAhead) {
			filtered = append(filtered, flight)
		}
	}
	return filtered
}

// ValidateConnection checks the configured keys against a live endpoint
func (c *Client) ValidateConnection(ctx context.Context, airport string) error {
	_, err := c.Departures(ctx, airport, "")
	return err
}
