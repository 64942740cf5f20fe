package sorare

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"

	"github.com/riskibarqy/socli/internal/platform/logging"
	"github.com/riskibarqy/socli/internal/platform/resilience"
	"github.com/riskibarqy/socli/internal/usecase"
)

const (
	defaultGraphQLURL       = "https://api.sorare.com/graphql"
	defaultSportsGraphQLURL = "https://api.sorare.com/sports/graphql"
	maxResponseBytes        = 6 << 20
)

var errTransient = errors.New("sorare transient failure")

type ClientConfig struct {
	HTTPClient       *http.Client
	GraphQLURL       string
	SportsGraphQLURL string
	Timeout          time.Duration
	MaxRetries       int
	// RetryBackoff is multiplied by the attempt number. Defaults to one second.
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.BreakerConfig
}

// Client reads rosters, prices, stats and injuries from the Sorare GraphQL APIs.
type Client struct {
	httpClient     *http.Client
	graphQLURL     string
	sportsURL      string
	maxRetries     int
	retryBackoff   time.Duration
	logger         *logging.Logger
	breaker        *resilience.Breaker
	circuitEnabled bool
	flight         singleflight.Group
	validate       *validator.Validate
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	retryBackoff := cfg.RetryBackoff
	if retryBackoff <= 0 {
		retryBackoff = time.Second
	}

	breakerCfg := cfg.CircuitBreaker.Normalize()
	breaker := resilience.NewBreaker(breakerCfg)
	breaker.OnChange(func(from, to resilience.Phase) {
		logger.Warn("sorare circuit breaker changed phase", "from", from, "to", to)
	})

	return &Client{
		httpClient:     httpClient,
		graphQLURL:     baseURLOr(cfg.GraphQLURL, defaultGraphQLURL),
		sportsURL:      baseURLOr(cfg.SportsGraphQLURL, defaultSportsGraphQLURL),
		maxRetries:     max(cfg.MaxRetries, 0),
		retryBackoff:   retryBackoff,
		logger:         logger,
		breaker:        breaker,
		circuitEnabled: breakerCfg.Enabled,
		validate:       validator.New(),
	}
}

func baseURLOr(raw, fallback string) string {
	if trimmed := strings.TrimRight(strings.TrimSpace(raw), "/"); trimmed != "" {
		return trimmed
	}
	return fallback
}

// query posts one GraphQL operation and decodes its data member into T.
func query[T any](ctx context.Context, c *Client, endpoint, operation string, variables map[string]any) (*T, error) {
	body, err := encodeRequest(operation, variables)
	if err != nil {
		return nil, errors.Wrap(err, "encode graphql request")
	}

	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		return nil, errors.Mark(err, usecase.ErrDataAccess)
	}

	var envelope graphQLEnvelope[T]
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode provider payload"), usecase.ErrDataAccess)
	}
	if len(envelope.Errors) > 0 {
		return nil, errors.Mark(errors.Newf("provider error: %s", envelope.Errors[0].Message), usecase.ErrDataAccess)
	}
	if envelope.Data == nil {
		return nil, errors.Mark(errors.New("provider returned no data"), usecase.ErrDataAccess)
	}
	return envelope.Data, nil
}

func encodeRequest(operation string, variables map[string]any) ([]byte, error) {
	encodedQuery, err := sonic.Marshal(operation)
	if err != nil {
		return nil, err
	}
	encodedVars, err := sonic.Marshal(variables)
	if err != nil {
		return nil, err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(`{"query":`)
	_, _ = buf.Write(encodedQuery)
	_, _ = buf.WriteString(`,"variables":`)
	_, _ = buf.Write(encodedVars)
	_ = buf.WriteByte('}')

	return append([]byte(nil), buf.B...), nil
}

// post collapses identical concurrent requests and feeds the circuit breaker.
func (c *Client) post(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "sorare circuit breaker rejected request", "phase", c.breaker.Phase())
			return nil, errors.Wrap(err, "sorare is temporarily unavailable")
		}
	}

	key := endpoint + "\n" + string(body)
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, endpoint, body)
		c.recordCircuitResult(reqErr)
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, errors.Newf("unexpected response payload type %T", out)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, errors.Wrap(err, "build request")
		}
		req.Header.Set("content-type", "application/json")
		req.Header.Set("accept", "application/json")
		req.Header.Set("user-agent", "socli")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = errors.Wrapf(errTransient, "send request: %v", err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = errors.Wrapf(errTransient, "read response body: %v", readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = errors.Wrapf(errTransient, "provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, errors.Newf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = errors.New("provider request failed")
	}
	c.logger.WarnContext(ctx, "sorare request failed", "endpoint", endpoint, "error", lastErr)
	return nil, lastErr
}

func (c *Client) recordCircuitResult(err error) {
	if !c.circuitEnabled {
		return
	}
	if err != nil && errors.Is(err, errTransient) {
		c.breaker.Failure()
		return
	}
	c.breaker.Success()
}

func isRetryableStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 300 {
		return text
	}
	return text[:300] + "..."
}
