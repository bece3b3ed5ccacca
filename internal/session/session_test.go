package session_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alokgarg003/new-job-Apply/internal/session"
)

func newSession(t *testing.T, cfg session.Config) *session.Session {
	t.Helper()
	if cfg.Delay == 0 {
		cfg.Delay = time.Millisecond // keep retry backoff out of test time
	}
	s, err := session.New(cfg)
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	return s
}

// ── retry policy ──

func TestGetRetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	s := newSession(t, session.Config{Retries: 3})
	resp, err := s.Get(context.Background(), srv.URL, nil, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d request(s), want 3", got)
	}
}

func TestGetDoesNotRetryPermanentStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := newSession(t, session.Config{Retries: 3})
	resp, err := s.Get(context.Background(), srv.URL, nil, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d request(s), want 1", got)
	}
}

func TestGetReturnsFinalResponseWhenRetriesExhaust(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := newSession(t, session.Config{Retries: 2})
	resp, err := s.Get(context.Background(), srv.URL, nil, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	// The adapter needs the status to classify the failure, so exhausted
	// retries surface the last response rather than an error.
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", resp.StatusCode)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d request(s), want 3 (1 + 2 retries)", got)
	}
}

func TestNegativeRetriesDisablesRetrying(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := newSession(t, session.Config{Retries: -1})
	resp, err := s.Get(context.Background(), srv.URL, nil, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 handed back untouched", resp.StatusCode)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d request(s), want exactly 1", got)
	}
}

// ── request construction ──

func TestGetMergesParamsAndHeaders(t *testing.T) {
	var gotQuery url.Values
	var gotAgent, gotExtra string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotAgent = r.Header.Get("User-Agent")
		gotExtra = r.Header.Get("X-Requested-With")
	}))
	defer srv.Close()

	s := newSession(t, session.Config{
		UserAgent: "harvester-test/1.0",
		Headers:   map[string]string{"X-Requested-With": "XMLHttpRequest"},
	})

	params := url.Values{"keywords": {"linux support"}, "start": {"25"}}
	resp, err := s.Get(context.Background(), srv.URL+"?fixed=1", params, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	if gotQuery.Get("fixed") != "1" || gotQuery.Get("keywords") != "linux support" || gotQuery.Get("start") != "25" {
		t.Errorf("query = %v, want fixed=1 keywords + start merged", gotQuery)
	}
	if gotAgent != "harvester-test/1.0" {
		t.Errorf("User-Agent = %q", gotAgent)
	}
	if gotExtra != "XMLHttpRequest" {
		t.Errorf("X-Requested-With = %q", gotExtra)
	}
}

// ── cookie isolation ──

func TestClearCookiesDropsSetCookie(t *testing.T) {
	var sawCookie atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("session_id"); err == nil {
			sawCookie.Store(true)
		}
		http.SetCookie(w, &http.Cookie{Name: "session_id", Value: "abc"})
	}))
	defer srv.Close()

	s := newSession(t, session.Config{ClearCookies: true})
	for i := 0; i < 3; i++ {
		resp, err := s.Get(context.Background(), srv.URL, nil, nil)
		if err != nil {
			t.Fatalf("Get %d: %v", i, err)
		}
		resp.Body.Close()
	}

	if sawCookie.Load() {
		t.Error("a later request carried the server's cookie; isolation broken")
	}
}

func TestJarRetainsCookiesWhenNotCleared(t *testing.T) {
	var sawCookie atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("session_id"); err == nil {
			sawCookie.Store(true)
		}
		http.SetCookie(w, &http.Cookie{Name: "session_id", Value: "abc"})
	}))
	defer srv.Close()

	s := newSession(t, session.Config{})
	for i := 0; i < 2; i++ {
		resp, err := s.Get(context.Background(), srv.URL, nil, nil)
		if err != nil {
			t.Fatalf("Get %d: %v", i, err)
		}
		resp.Body.Close()
	}

	if !sawCookie.Load() {
		t.Error("second request did not carry the cookie; default jar missing")
	}
}

// ── pacing ──

func TestPaceHonoursContextCancellation(t *testing.T) {
	s := newSession(t, session.Config{
		Delay:     time.Hour,
		BandDelay: time.Hour,
	})

	// First token is free; the second wait must abort on cancel.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_ = s.Pace(ctx)
	if err := s.Pace(ctx); err == nil {
		t.Error("Pace returned nil, want context error on cancellation")
	}
}
