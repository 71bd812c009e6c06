// Package backend is the typed client for the commerce backend REST API.
// Every piece of business authority (catalog, pricing, orders, payments,
// accounts, support messages) lives behind this client; the rest of the
// application only renders what it returns.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

var (
	reqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "velora_backend_requests_total",
		Help: "Outbound backend API requests by method and outcome class.",
	}, []string{"method", "class"})
	reqDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "velora_backend_request_seconds",
		Help:    "Outbound backend API request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)

type Settings struct {
	BaseURL string
	Timeout time.Duration
	RPS     float64
	Burst   int
}

type Client struct {
	base    string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[result]
}

type result struct {
	status int
	body   []byte
}

func New(s Settings) *Client {
	if s.Timeout <= 0 {
		s.Timeout = 30 * time.Second
	}
	if s.RPS <= 0 {
		s.RPS = 25
	}
	if s.Burst <= 0 {
		s.Burst = 50
	}
	cb := gobreaker.NewCircuitBreaker[result](gobreaker.Settings{
		Name:    "commerce-backend",
		Timeout: 15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Client{
		base: strings.TrimRight(s.BaseURL, "/"),
		http: &http.Client{
			Timeout:   s.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(rate.Limit(s.RPS), s.Burst),
		breaker: cb,
	}
}

// do issues one request and decodes the reply into out (which may be nil).
// There is no retry at this layer: a failed attempt is terminal and is
// reported to the user by the caller. The breaker only fails fast while the
// backend is down; it never re-issues anything.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return unreachable(err)
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &APIError{Kind: KindBadInput, Message: err.Error(), cause: err}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return unreachable(err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	res, err := c.breaker.Execute(func() (result, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return result{}, err
		}
		defer resp.Body.Close()
		raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return result{}, err
		}
		// 5xx counts as a breaker failure; 4xx is the caller's problem.
		if resp.StatusCode >= 500 {
			return result{status: resp.StatusCode, body: raw}, errServerClass
		}
		return result{status: resp.StatusCode, body: raw}, nil
	})
	reqDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	if err != nil && err != errServerClass {
		reqTotal.WithLabelValues(method, "unreachable").Inc()
		return unreachable(err)
	}
	reqTotal.WithLabelValues(method, classLabel(res.status)).Inc()

	if res.status < 200 || res.status > 299 {
		return errorFromStatus(res.status, res.body)
	}
	if out == nil || len(res.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return &APIError{Kind: KindServer, Status: res.status, Message: "malformed backend response", cause: err}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path, token string, out any) error {
	return c.do(ctx, http.MethodGet, path, token, nil, out)
}

func (c *Client) post(ctx context.Context, path, token string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, token, in, out)
}

func (c *Client) put(ctx context.Context, path, token string, in, out any) error {
	return c.do(ctx, http.MethodPut, path, token, in, out)
}

func (c *Client) delete(ctx context.Context, path, token string) error {
	return c.do(ctx, http.MethodDelete, path, token, nil, nil)
}

func classLabel(status int) string {
	if status == 0 {
		return "unreachable"
	}
	return strconv.Itoa(status/100) + "xx"
}
