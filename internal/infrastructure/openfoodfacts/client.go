package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/platelens/backend/internal/domain"
	"golang.org/x/time/rate"
)

const (
	maxAttempts      = 4 // first try plus three retries
	maxBodyBytes     = 2 << 20
	searchPageSize   = "10"
	productFields    = "code,product_name,brands,categories,categories_tags,quantity,nutrition_data_per,nutriments"
	defaultUserAgent = "PlateLens/1.0 (food photo analysis)"
)

// Client handles communication with the Open Food Facts API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	locale      string
	userAgent   string
	rateLimiter *rate.Limiter
	debug       bool
}

// ClientConfig holds Open Food Facts client settings
type ClientConfig struct {
	BaseURL           string
	Locale            string
	UserAgent         string
	RequestsPerMinute int
	Timeout           time.Duration
}

// NewClient creates a new Open Food Facts client
func NewClient(cfg ClientConfig) *Client {
	// Open Food Facts asks for at most ~10 search requests per minute per
	// client; product reads are more generous. One limiter covers both.
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	limiter := rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 5)

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		locale:      strings.ToLower(strings.TrimSpace(cfg.Locale)),
		userAgent:   userAgent,
		rateLimiter: limiter,
	}
}

// SetDebug toggles verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Printf("[OFF] "+format, args...)
	}
}

// exponentialBackoff returns the wait before retrying after the given attempt
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// readLimitedBody reads at most limit bytes of body
func readLimitedBody(body io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, limit))
}

// GetProductByBarcode looks a product up by its EAN/UPC code
func (c *Client) GetProductByBarcode(ctx context.Context, barcode string) (*domain.CompositionProduct, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, domain.ErrInvalidRequest
	}

	params := url.Values{}
	params.Set("fields", productFields)
	reqURL := fmt.Sprintf("%s/api/v2/product/%s.json?%s", c.baseURL, url.PathEscape(barcode), params.Encode())

	body, err := c.getWithRetry(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var resp ProductResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.Status != 1 || resp.Product == nil {
		c.debugLog("Barcode %s not found: %s", barcode, resp.StatusVerbose)
		return nil, domain.ErrProductNotFound
	}
	if resp.Product.Code == "" {
		resp.Product.Code = barcode
	}

	c.debugLog("Barcode %s resolved to %q", barcode, resp.Product.ProductName)
	return MapToProduct(resp.Product), nil
}

// SearchProducts runs a free-text search restricted to the configured locale
func (c *Client) SearchProducts(ctx context.Context, query string) ([]domain.CompositionProduct, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidRequest
	}

	params := url.Values{}
	params.Set("search_terms", query)
	params.Set("search_simple", "1")
	params.Set("action", "process")
	params.Set("json", "1")
	params.Set("page_size", searchPageSize)
	params.Set("fields", productFields)
	if c.locale != "" {
		params.Set("lc", c.locale)
		params.Set("cc", c.locale)
	}
	reqURL := fmt.Sprintf("%s/cgi/search.pl?%s", c.baseURL, params.Encode())

	body, err := c.getWithRetry(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(resp.Products) == 0 {
		c.debugLog("No products found for query: %q", query)
		return nil, domain.ErrProductNotFound
	}

	products := make([]domain.CompositionProduct, 0, len(resp.Products))
	for i := range resp.Products {
		products = append(products, *MapToProduct(&resp.Products[i]))
	}
	c.debugLog("Found %d products for query: %q", len(products), query)
	return products, nil
}

// getWithRetry GETs reqURL, retrying transport errors, 429 and 5xx up to
// maxAttempts times. 404 maps to ErrProductNotFound; other 4xx fail at once.
func (c *Client) getWithRetry(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(exponentialBackoff(attempt - 1)):
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrCompositionAPIFailure, ctx.Err())
			}
			log.Printf("[OFF] Request error (attempt %d): %v", attempt, err)
			lastErr = fmt.Errorf("%w: %v", domain.ErrCompositionAPIFailure, err)
			continue
		}

		body, readErr := readLimitedBody(resp.Body, maxBodyBytes)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				return nil, fmt.Errorf("%w: reading body: %v", domain.ErrCompositionAPIFailure, readErr)
			}
			return body, nil
		case resp.StatusCode == http.StatusNotFound:
			return nil, domain.ErrProductNotFound
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			log.Printf("[OFF] API error (attempt %d) - Status: %d", attempt, resp.StatusCode)
			lastErr = fmt.Errorf("%w: status %d", domain.ErrCompositionAPIFailure, resp.StatusCode)
		default:
			c.debugLog("API error - Status: %d, Body: %s", resp.StatusCode, string(body))
			return nil, fmt.Errorf("%w: status %d", domain.ErrCompositionAPIFailure, resp.StatusCode)
		}
	}

	log.Printf("[OFF] All retries failed for %s", reqURL)
	return nil, lastErr
}
