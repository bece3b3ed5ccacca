// Package harvest runs the selected source adapters concurrently and
// merges their results into one normalised, ordered record set.
package harvest

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alokgarg003/new-job-Apply/internal/model"
	"github.com/alokgarg003/new-job-Apply/internal/scraper"
)

// Factory resolves a source identifier to an adapter instance. Injected
// so tests and dry-run mode can substitute deterministic stand-ins.
type Factory func(source string) (scraper.Scraper, error)

// Orchestrator fans a search request out to one worker per source and
// joins the results. A single source's failure is logged and tallied,
// never propagated as a whole-run failure.
type Orchestrator struct {
	factory      Factory
	globalDedupe bool
	logger       *log.Logger
}

// New constructs an Orchestrator. globalDedupe enables cross-source
// deduplication by canonical job URL as a post-merge step.
func New(factory Factory, globalDedupe bool, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.New(log.Writer(), "[harvest] ", log.LstdFlags)
	}
	return &Orchestrator{factory: factory, globalDedupe: globalDedupe, logger: logger}
}

type sourceResult struct {
	source  string
	records []model.ListingRecord
	err     error
}

// Run executes the harvest. It always returns whatever subset of sources
// succeeded; the report carries the per-source success/partial/failure
// tally so callers can tell an empty result from a total failure.
func (o *Orchestrator) Run(ctx context.Context, req model.SearchRequest) ([]model.ListingRecord, model.HarvestReport) {
	report := model.HarvestReport{
		RunID:   uuid.NewString(),
		Started: time.Now(),
	}

	// One worker per source, no queuing beyond that: adapters own their
	// session, proxy cursor and seen-id set, so they share no state.
	results := make(chan sourceResult, len(req.Sources))
	var wg sync.WaitGroup
	for _, source := range req.Sources {
		wg.Add(1)
		go func(source string) {
			defer wg.Done()
			// A panicking adapter counts as a failed source, nothing more.
			defer func() {
				if r := recover(); r != nil {
					results <- sourceResult{source: source, err: fmt.Errorf("panic: %v", r)}
				}
			}()
			sc, err := o.factory(source)
			if err != nil {
				results <- sourceResult{source: source, err: err}
				return
			}
			records, err := sc.Scrape(ctx, req)
			results <- sourceResult{source: source, records: records, err: err}
		}(source)
	}
	wg.Wait()
	close(results)

	bySource := make(map[string]sourceResult, len(req.Sources))
	for res := range results {
		bySource[res.source] = res
	}

	var merged []model.ListingRecord
	for _, source := range req.Sources {
		res := bySource[source]
		tally := model.SourceTally{Source: source, Count: len(res.records), Err: res.err}
		switch {
		case res.err == nil:
			tally.Status = model.SourceOK
		case len(res.records) > 0:
			tally.Status = model.SourcePartial
			o.logger.Printf("source %s returned %d record(s) before failing: %v", source, len(res.records), res.err)
		default:
			tally.Status = model.SourceFailed
			o.logger.Printf("source %s failed: %v", source, res.err)
		}
		report.Tallies = append(report.Tallies, tally)
		merged = append(merged, res.records...)
	}

	if o.globalDedupe {
		merged = dedupeByURL(merged)
	}
	sortRecords(merged)

	report.Total = len(merged)
	report.Finished = time.Now()
	return merged, report
}

// dedupeByURL keeps the first occurrence of each canonical job URL.
func dedupeByURL(records []model.ListingRecord) []model.ListingRecord {
	seen := make(map[string]bool, len(records))
	out := records[:0]
	for _, rec := range records {
		key := scraper.CanonicalURL(rec.JobURL)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, rec)
	}
	return out
}

// sortRecords orders by source ascending, then posted date descending;
// undated records sort after dated ones and ties keep input order.
func sortRecords(records []model.ListingRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		switch {
		case a.DatePosted == nil:
			return false
		case b.DatePosted == nil:
			return true
		default:
			return a.DatePosted.After(*b.DatePosted)
		}
	})
}
