package square

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gagesampsonn/barbershop/internal/config"
	"github.com/gagesampsonn/barbershop/internal/metrics"
)

const (
	productionURL = "https://connect.squareup.com"
	sandboxURL    = "https://connect.squareupsandbox.com"

	pageLimit = 100
	// maxPages bounds cursor following for a single range query.
	maxPages = 200

	endpointListPayments = "list_payments"
	endpointGetCustomer  = "get_customer"
)

// ErrTooManyPages is returned when a range spans more pages than maxPages.
var ErrTooManyPages = errors.New("square: page limit exceeded")

// Client exposes the Square API operations used by reporting.
type Client interface {
	ListPayments(ctx context.Context, begin, end time.Time) ([]Payment, error)
	GetCustomer(ctx context.Context, id string) (*Customer, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	limiter    *rate.Limiter
	locationID string
	logger     *zap.Logger
}

// BaseURL resolves the API host for an environment name.
func BaseURL(environment string) string {
	if environment == "sandbox" {
		return sandboxURL
	}
	return productionURL
}

// NewClient builds a Square API client using the provided configuration values.
func NewClient(cfg config.SquareConfig, logger *zap.Logger) *APIClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := cfg.BaseURL
	if base == "" {
		base = BaseURL(cfg.Environment)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 8
	}
	limiter := rate.NewLimiter(rate.Limit(rps), int(rps)+1)

	restyClient := resty.New()
	restyClient.
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetBaseURL(strings.TrimSuffix(base, "/")).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.AccessToken)).
		SetHeader("Square-Version", cfg.APIVersion).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(retryable).
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			return limiter.Wait(r.Context())
		})

	return &APIClient{
		httpClient: restyClient,
		limiter:    limiter,
		locationID: cfg.LocationID,
		logger:     logger,
	}
}

// retryable retries transport failures, throttling and server errors.
func retryable(resp *resty.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// ListPayments returns every payment created in [begin, end], following cursors.
func (c *APIClient) ListPayments(ctx context.Context, begin, end time.Time) ([]Payment, error) {
	started := time.Now()
	payments, err := c.listPayments(ctx, begin, end)
	c.observe(endpointListPayments, started, err)
	return payments, err
}

func (c *APIClient) listPayments(ctx context.Context, begin, end time.Time) ([]Payment, error) {
	var (
		payments []Payment
		cursor   string
	)
	for page := 0; page < maxPages; page++ {
		result := new(listPaymentsResponse)
		apiErr := new(errorResponse)

		req := c.httpClient.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"begin_time": begin.UTC().Format(time.RFC3339Nano),
				"end_time":   end.UTC().Format(time.RFC3339Nano),
				"sort_order": "ASC",
				"limit":      fmt.Sprint(pageLimit),
			}).
			SetResult(result).
			SetError(apiErr)
		if c.locationID != "" {
			req.SetQueryParam("location_id", c.locationID)
		}
		if cursor != "" {
			req.SetQueryParam("cursor", cursor)
		}

		resp, err := req.Get("/v2/payments")
		if err != nil {
			return nil, fmt.Errorf("list square payments: %w", err)
		}
		if resp.StatusCode() >= http.StatusBadRequest {
			return nil, &APIError{StatusCode: resp.StatusCode(), Errors: apiErr.Errors}
		}

		payments = append(payments, result.Payments...)
		if result.Cursor == "" {
			return payments, nil
		}
		cursor = result.Cursor
	}

	c.logger.Warn("square payments range truncated", zap.Time("begin", begin), zap.Time("end", end), zap.Int("pages", maxPages))
	return nil, ErrTooManyPages
}

// GetCustomer retrieves a customer profile by id.
func (c *APIClient) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	started := time.Now()
	customer, err := c.getCustomer(ctx, id)
	c.observe(endpointGetCustomer, started, err)
	return customer, err
}

func (c *APIClient) getCustomer(ctx context.Context, id string) (*Customer, error) {
	if id == "" {
		return nil, errors.New("customer id must not be empty")
	}

	result := new(retrieveCustomerResponse)
	apiErr := new(errorResponse)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(result).
		SetError(apiErr).
		Get("/v2/customers/{id}")
	if err != nil {
		return nil, fmt.Errorf("get square customer: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, &APIError{StatusCode: resp.StatusCode(), Errors: apiErr.Errors}
	}
	if result.Customer == nil {
		return nil, fmt.Errorf("square customer %s: empty response", id)
	}
	return result.Customer, nil
}

func (c *APIClient) observe(endpoint string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		c.logger.Warn("square request failed", zap.String("endpoint", endpoint), zap.Error(err))
	}
	metrics.ObserveSquareRequest(endpoint, outcome, time.Since(started))
}
