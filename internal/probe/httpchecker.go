package probe

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/hamed0406/endpointmonitor/internal/domain"
)

const (
	DefaultTimeout       = 5 * time.Second
	DefaultSlowThreshold = 500 * time.Millisecond

	// responses are drained up to this size so latency covers the full body
	maxBodyBytes = 4 << 20
)

type Options struct {
	Timeout         time.Duration
	SlowThreshold   time.Duration
	UserAgent       string
	VerifyTLS       bool
	FollowRedirects bool
}

type HTTPChecker struct {
	Client        *http.Client
	Timeout       time.Duration
	SlowThreshold time.Duration
	UserAgent     string

	now func() time.Time
}

func NewHTTPChecker(opts Options) *HTTPChecker {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.SlowThreshold <= 0 {
		opts.SlowThreshold = DefaultSlowThreshold
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   opts.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   opts.Timeout,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !opts.VerifyTLS,
			MinVersion:         tls.VersionTLS12,
		},
	}
	client := &http.Client{Timeout: opts.Timeout, Transport: transport}
	if !opts.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return &HTTPChecker{
		Client:        client,
		Timeout:       opts.Timeout,
		SlowThreshold: opts.SlowThreshold,
		UserAgent:     opts.UserAgent,
		now:           time.Now,
	}
}

// Check issues one request. A zero-value HTTPChecker is usable: unset
// fields fall back to http.DefaultClient and the package defaults.
func (h *HTTPChecker) Check(ctx context.Context, ep domain.Endpoint) CheckResult {
	now, client, timeout, slow := h.now, h.Client, h.Timeout, h.SlowThreshold
	if now == nil {
		now = time.Now
	}
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if slow <= 0 {
		slow = DefaultSlowThreshold
	}

	observed := now()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := h.newRequest(ctx, ep)
	if err != nil {
		return CheckResult{
			Status:     domain.StatusDown,
			Cause:      domain.CauseInvalidRequest,
			ObservedAt: observed,
			Message:    err.Error(),
		}
	}

	start := now()
	resp, err := client.Do(req)
	if err != nil {
		latency := now().Sub(start)
		status, cause := Classify(0, latency, err, slow)
		return CheckResult{Status: status, Cause: cause, Latency: latency, ObservedAt: observed, Message: err.Error()}
	}
	defer resp.Body.Close()

	// a body that cannot be read to the end counts as a malformed response
	_, err = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	latency := now().Sub(start)
	if err != nil {
		status, cause := Classify(0, latency, err, slow)
		return CheckResult{
			Status:     status,
			Cause:      cause,
			StatusCode: resp.StatusCode,
			Latency:    latency,
			ObservedAt: observed,
			Message:    err.Error(),
		}
	}

	status, cause := Classify(resp.StatusCode, latency, nil, slow)
	return CheckResult{
		Status:     status,
		Cause:      cause,
		StatusCode: resp.StatusCode,
		Latency:    latency,
		ObservedAt: observed,
		Message:    resp.Status,
	}
}

func (h *HTTPChecker) newRequest(ctx context.Context, ep domain.Endpoint) (*http.Request, error) {
	method := ep.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if len(ep.Body) > 0 {
		body = bytes.NewReader(ep.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, ep.URL, body)
	if err != nil {
		return nil, err
	}
	for k, v := range ep.Headers {
		if strings.EqualFold(k, "Host") {
			req.Host = v
			continue
		}
		req.Header.Set(k, v)
	}
	if h.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}
	return req, nil
}
