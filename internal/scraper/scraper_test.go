package scraper_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/alokgarg003/new-job-Apply/internal/model"
	"github.com/alokgarg003/new-job-Apply/internal/scraper"
)

// ── registry ──

func TestNewRejectsUnknownSource(t *testing.T) {
	if _, err := scraper.New("monster", scraper.Config{}); err == nil {
		t.Error("expected error for unregistered source")
	}
}

func TestSourcesAreStable(t *testing.T) {
	want := []string{"dice", "google", "linkedin", "mock", "naukri"}
	if got := scraper.Sources(); !reflect.DeepEqual(got, want) {
		t.Errorf("Sources() = %v, want %v", got, want)
	}
}

// ── mock adapter ──

func TestMockIsDeterministic(t *testing.T) {
	m := scraper.NewMock(scraper.Config{})
	req := model.SearchRequest{ResultsWanted: 2}

	first, err := m.Scrape(context.Background(), req)
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	second, _ := m.Scrape(context.Background(), req)

	if !reflect.DeepEqual(first, second) {
		t.Error("two scrapes with the same request differ")
	}
	if len(first) != 2 {
		t.Fatalf("got %d record(s), want 2", len(first))
	}
	if first[0].ID != "mock-1" || first[1].ID != "mock-2" {
		t.Errorf("IDs = %q, %q", first[0].ID, first[1].ID)
	}
}
