package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/de-tools/energy-atlas/pkg/metrics"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

var (
	ErrRateLimited      = errors.New("rate limited")
	ErrServerError      = errors.New("server error")
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrCircuitOpen      = errors.New("circuit breaker open")
)

// BackoffConfig controls exponential backoff between attempts. MaxRetries of
// zero means a single attempt.
type BackoffConfig struct {
	MaxRetries      int           `mapstructure:"max_retries" validate:"gte=0"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
}

type Config struct {
	Source  string
	Client  *http.Client
	Backoff BackoffConfig
	Metrics *metrics.Collector
}

// Doer executes requests behind a circuit breaker and records their outcome.
type Doer struct {
	source  string
	client  *http.Client
	backoff BackoffConfig
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Collector
}

func NewDoer(cfg Config) *Doer {
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 60 * time.Second}
	}
	if cfg.Backoff.InitialInterval <= 0 {
		cfg.Backoff.InitialInterval = 500 * time.Millisecond
	}
	if cfg.Backoff.MaxRetries < 0 {
		cfg.Backoff.MaxRetries = 0
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Source,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// 4xx responses do not count toward tripping.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrUnexpectedStatus)
		},
	})
	return &Doer{
		source:  cfg.Source,
		client:  cfg.Client,
		backoff: cfg.Backoff,
		breaker: breaker,
		metrics: cfg.Metrics,
	}
}

// Get performs a GET built by buildRequest and returns the body of the first
// 2xx response. buildRequest is called once per attempt.
func (d *Doer) Get(ctx context.Context, buildRequest func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	logger := zerolog.Ctx(ctx)

	var attempt int
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := buildRequest(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s request: %w", d.source, err)
		}

		start := time.Now()
		result, err := d.breaker.Execute(func() (interface{}, error) {
			return d.do(req)
		})
		d.metrics.RecordFetch(d.source, outcome(err), time.Since(start))

		if err == nil {
			return result.([]byte), nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s: %v", ErrCircuitOpen, d.source, err)
		}
		if attempt >= d.backoff.MaxRetries || !retryable(err) {
			return nil, err
		}

		delay := d.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if d.backoff.MaxInterval > 0 && delay > d.backoff.MaxInterval {
			delay = d.backoff.MaxInterval
		}
		logger.Warn().
			Err(err).
			Str("source", d.source).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("retrying upstream request")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		attempt++
	}
}

func (d *Doer) do(req *http.Request) ([]byte, error) {
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %d", ErrServerError, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

func retryable(err error) bool {
	return !errors.Is(err, ErrUnexpectedStatus) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrServerError):
		return "server_error"
	case errors.Is(err, ErrUnexpectedStatus):
		return "unexpected_status"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "circuit_open"
	default:
		return "transport_error"
	}
}
