// Package session builds the configured HTTP client every adapter runs on:
// retry with backoff on transient status codes, round-robin proxy rotation,
// cookie isolation and the TLS verification mode.
package session

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 15 * time.Second
	defaultRetries = 3
)

// Config is the per-adapter session configuration. It is constructed once
// per adapter instance and held for the adapter's lifetime.
type Config struct {
	Proxies    []string // empty = direct, one = pinned, many = round-robin
	CACertPath string   // optional custom CA bundle (PEM)
	// InsecureTLS disables certificate verification for sources whose
	// chains are unreliable through certain proxies.
	InsecureTLS bool
	Timeout     time.Duration
	// Retries is the number of attempts after the first request. Zero
	// means the default of 3; -1 disables retries entirely.
	Retries   int
	Delay     time.Duration // backoff seed and inter-page pacing base
	BandDelay time.Duration // random jitter band added on top of Delay
	// ClearCookies makes every request look like a fresh, unauthenticated
	// client. Required for sources that fingerprint session continuity.
	ClearCookies bool
	UserAgent    string
	Headers      map[string]string
	Logger       *log.Logger
}

// RequestError is the typed failure returned once retries are exhausted on
// a transport-level error.
type RequestError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request to %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Session is an HTTP client bound to one adapter. It is safe for use from
// multiple goroutines; the proxy cursor is advanced atomically.
type Session struct {
	cfg     Config
	client  *http.Client
	proxies []*url.URL
	proxyN  atomic.Uint64
	limiter *rate.Limiter
	logger  *log.Logger
}

// New builds a Session from cfg. The zero Config yields a plain direct
// client with default timeout and retry policy.
func New(cfg Config) (*Session, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	} else if cfg.Retries == 0 {
		cfg.Retries = defaultRetries
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Session{cfg: cfg, logger: logger}

	for _, p := range cfg.Proxies {
		u, err := parseProxy(p)
		if err != nil {
			return nil, fmt.Errorf("parse proxy %q: %w", p, err)
		}
		s.proxies = append(s.proxies, u)
	}

	tlsCfg := &tls.Config{}
	if cfg.InsecureTLS {
		tlsCfg.InsecureSkipVerify = true
	}
	if cfg.CACertPath != "" {
		pem, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("read CA bundle %q: %w", cfg.CACertPath, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("CA bundle %q contains no valid certificates", cfg.CACertPath)
		}
		tlsCfg.RootCAs = pool
	}

	transport := &http.Transport{
		Proxy:           s.proxyFor,
		TLSClientConfig: tlsCfg,
	}

	s.client = &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}

	// With ClearCookies the client carries no jar at all, so no cookie
	// survives from one request to the next.
	if !cfg.ClearCookies {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		s.client.Jar = jar
	}

	if cfg.Delay > 0 {
		s.limiter = rate.NewLimiter(rate.Every(cfg.Delay), 1)
	}

	return s, nil
}

// parseProxy accepts "host:port", "http://..." or "socks5://..." forms.
func parseProxy(p string) (*url.URL, error) {
	if !strings.Contains(p, "://") {
		p = "http://" + p
	}
	return url.Parse(p)
}

// proxyFor picks the next proxy in round-robin order. A single proxy pins
// every request; no proxies means the direct network path.
func (s *Session) proxyFor(*http.Request) (*url.URL, error) {
	if len(s.proxies) == 0 {
		return nil, nil
	}
	n := s.proxyN.Add(1) - 1
	return s.proxies[n%uint64(len(s.proxies))], nil
}

// Get issues a GET with the session's headers and retry policy. The caller
// owns the response body. A non-nil response with a bad status code is
// returned as-is so adapters can classify it (blocked vs. structural).
func (s *Session) Get(ctx context.Context, rawURL string, params url.Values, header http.Header) (*http.Response, error) {
	if params != nil {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
		}
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Set(k, v)
			}
		}
		u.RawQuery = q.Encode()
		rawURL = u.String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range s.cfg.Headers {
		req.Header.Set(k, v)
	}
	if s.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", s.cfg.UserAgent)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	return s.do(req)
}

// do runs the retry loop: transient status codes (429, 5xx) and transport
// errors are retried with exponential backoff; all other statuses return
// immediately. Retry is explicit control flow, not error-driven, so the
// policy is testable without real network calls.
func (s *Session) do(req *http.Request) (*http.Response, error) {
	attempts := s.cfg.Retries + 1
	backoff := s.cfg.Delay
	if backoff <= 0 {
		backoff = time.Second
	}

	var lastErr error
	var resp *http.Response

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := backoff * (1 << (attempt - 1))
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(wait):
			}
		}

		resp, lastErr = s.client.Do(req)
		if lastErr != nil {
			s.logger.Printf("[session] attempt %d/%d %s: %v", attempt+1, attempts, req.URL, lastErr)
			continue
		}
		if !retryableStatus(resp.StatusCode) {
			return resp, nil
		}
		s.logger.Printf("[session] attempt %d/%d %s: status %d", attempt+1, attempts, req.URL, resp.StatusCode)
		if attempt < attempts-1 {
			resp.Body.Close()
		}
	}

	if lastErr != nil {
		return nil, &RequestError{URL: req.URL.String(), Attempts: attempts, Err: lastErr}
	}
	// Retries exhausted on a transient status: hand the final response to
	// the adapter, which maps 429 to its blocked handling.
	return resp, nil
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Pace blocks for the configured inter-page delay plus random jitter in
// [0, BandDelay). Adapters call it between page requests.
func (s *Session) Pace(ctx context.Context) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if s.cfg.BandDelay > 0 {
		jitter := time.Duration(rand.Int63n(int64(s.cfg.BandDelay)))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(jitter):
		}
	}
	return nil
}
