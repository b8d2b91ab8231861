package usda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mealtrack/backend/internal/domain"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultRequestsPerHour = 1000
	defaultBurst           = 10
	defaultTimeout         = 30 * time.Second
	maxAttempts            = 3
	maxErrorBodyBytes      = 512
	maxResponseBytes       = 10 << 20
)

// Client handles communication with the USDA FoodData Central API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	log         logrus.FieldLogger
	debug       bool
}

// Option configures a Client.
type Option func(*Client)

// WithRequestsPerHour replaces the default budget of 1000 requests per hour.
func WithRequestsPerHour(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.rateLimiter = rate.NewLimiter(rate.Every(time.Hour/time.Duration(n)), defaultBurst)
		}
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient creates a new USDA API client
func NewClient(apiKey, baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		apiKey:  apiKey,
		baseURL: baseURL,
		// USDA allows 1000 requests per hour with small bursts
		rateLimiter: rate.NewLimiter(rate.Every(time.Hour/defaultRequestsPerHour), defaultBurst),
		log:         logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithField("component", "usda")
	return c
}

// SetDebug toggles verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		c.log.Debugf(format, args...)
	}
}

// exponentialBackoff returns the wait before retrying after the given attempt
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", stripURL(err))
	}
	req.Header.Set("User-Agent", "MealTrack/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error carries the full URL, api key included
		return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrUSDAAPIFailure, req.Method, redact(reqURL), stripURL(err))
	}

	return resp, nil
}

// getJSON performs a rate limited GET with up to three attempts and decodes
// the body into dest. 404 maps to ErrProductNotFound; other 4xx responses
// except 429 are not retried.
func (c *Client) getJSON(ctx context.Context, reqURL string, dest interface{}) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", domain.ErrUSDAAPIFailure, ctx.Err())
			case <-time.After(exponentialBackoff(attempt - 1)):
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if ctx.Err() != nil || !errors.Is(err, domain.ErrUSDAAPIFailure) {
				return err
			}
			c.log.WithError(err).WithField("attempt", attempt).Warn("request failed")
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := readLimitedBody(resp.Body, maxErrorBodyBytes)
			resp.Body.Close()
			c.log.WithFields(logrus.Fields{
				"attempt": attempt,
				"status":  resp.StatusCode,
			}).Warnf("api error: %s", string(body))

			switch {
			case resp.StatusCode == http.StatusNotFound:
				return domain.ErrProductNotFound
			case resp.StatusCode == http.StatusTooManyRequests:
				lastErr = fmt.Errorf("%w: %w: status %d", domain.ErrUSDAAPIFailure, domain.ErrRateLimited, resp.StatusCode)
				continue
			case resp.StatusCode >= 400 && resp.StatusCode < 500:
				return fmt.Errorf("%w: status %d", domain.ErrUSDAAPIFailure, resp.StatusCode)
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrUSDAAPIFailure, resp.StatusCode)
			continue
		}

		body, err := readLimitedBody(resp.Body, maxResponseBytes)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", domain.ErrUSDAAPIFailure, err)
			continue
		}

		if err := json.Unmarshal(body, dest); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	c.log.WithField("url", redact(reqURL)).Error("all retries failed")
	return lastErr
}

// SearchFoods searches for foods in the USDA database
func (c *Client) SearchFoods(ctx context.Context, query string, pageSize int) (*domain.USDASearchResponse, error) {
	c.debugLog("SearchFoods called with query: %q", query)

	if pageSize <= 0 {
		pageSize = 15
	}

	endpoint := fmt.Sprintf("%s/v1/foods/search", c.baseURL)
	params := url.Values{}
	params.Add("query", query)
	params.Add("api_key", c.apiKey)
	params.Add("dataType", "Survey (FNDDS),Foundation,SR Legacy,Branded")
	params.Add("pageSize", strconv.Itoa(pageSize))

	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	var searchResp domain.USDASearchResponse
	if err := c.getJSON(ctx, reqURL, &searchResp); err != nil {
		return nil, err
	}

	if len(searchResp.Foods) == 0 {
		c.debugLog("No foods found for query: %q", query)
		return nil, domain.ErrProductNotFound
	}

	c.debugLog("Found %d foods for query: %q", len(searchResp.Foods), query)
	return &searchResp, nil
}

// GetFoodDetails retrieves detailed nutrition information for a specific food by FDC ID
func (c *Client) GetFoodDetails(ctx context.Context, fdcID int64) (*domain.USDAFood, error) {
	c.debugLog("GetFoodDetails called with fdcId: %d", fdcID)

	endpoint := fmt.Sprintf("%s/v1/food/%d", c.baseURL, fdcID)
	params := url.Values{}
	params.Add("api_key", c.apiKey)

	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	var food domain.USDAFood
	if err := c.getJSON(ctx, reqURL, &food); err != nil {
		return nil, err
	}

	return &food, nil
}

// stripURL drops the request URL from a *url.Error and keeps its cause.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func redact(reqURL string) string {
	u, err := url.Parse(reqURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
	}
	u.RawQuery = q.Encode()
	return u.String()
}
