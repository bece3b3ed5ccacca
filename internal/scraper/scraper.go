// Package scraper implements per-source job harvesting: the adapter
// contract, the source registry and one adapter per external board.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/alokgarg003/new-job-Apply/internal/model"
	"github.com/alokgarg003/new-job-Apply/internal/session"
)

// Source identifiers accepted in SearchRequest.Sources.
const (
	SourceLinkedIn = "linkedin"
	SourceNaukri   = "naukri"
	SourceGoogle   = "google"
	SourceDice     = "dice"
	SourceMock     = "mock"
)

// ErrBlocked marks access/authorization failures (429, 403, CAPTCHA walls).
// Adapters terminate their harvest on it and never retry within a run.
var ErrBlocked = errors.New("blocked or rate-limited by source")

// Scraper is the harvesting contract: one implementation per external
// source, each owning its pagination protocol, request shaping and
// raw-to-record mapping. Scrape returns whatever it collected even when
// the error is non-nil, so partial pages are never discarded.
type Scraper interface {
	Name() string
	Scrape(ctx context.Context, req model.SearchRequest) ([]model.ListingRecord, error)
}

// Config carries everything an adapter needs at construction time.
type Config struct {
	Session session.Config
	// BaseURL overrides the production endpoint; tests point it at a
	// local fixture server.
	BaseURL          string
	JobsPerPage      int
	MaxPages         int
	FetchDescription bool
	// DetailWorkers caps concurrent secondary detail fetches regardless
	// of quota size.
	DetailWorkers int64
	Logger        *log.Logger
}

func (c Config) logger(prefix string) *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.New(log.Writer(), prefix, log.LstdFlags)
}

// Constructor builds one adapter instance from its config.
type Constructor func(Config) (Scraper, error)

var registry = map[string]Constructor{
	SourceLinkedIn: func(cfg Config) (Scraper, error) { return NewLinkedIn(cfg) },
	SourceNaukri:   func(cfg Config) (Scraper, error) { return NewNaukri(cfg) },
	SourceGoogle:   func(cfg Config) (Scraper, error) { return NewGoogle(cfg) },
	SourceDice:     func(cfg Config) (Scraper, error) { return NewDice(cfg) },
	SourceMock:     func(cfg Config) (Scraper, error) { return NewMock(cfg), nil },
}

// New resolves a source identifier to a concrete adapter.
func New(source string, cfg Config) (Scraper, error) {
	ctor, ok := registry[source]
	if !ok {
		return nil, fmt.Errorf("unknown source %q (valid: %v)", source, Sources())
	}
	return ctor(cfg)
}

// Sources lists the registered source identifiers in stable order.
func Sources() []string {
	out := make([]string, 0, len(registry))
	for s := range registry {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
