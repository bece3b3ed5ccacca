// Package pipeline composes harvesting and scoring: fetch missing
// descriptions with bounded concurrency, score every record against the
// candidate profile, and attach the verdicts.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/alokgarg003/new-job-Apply/internal/harvest"
	"github.com/alokgarg003/new-job-Apply/internal/match"
	"github.com/alokgarg003/new-job-Apply/internal/model"
	"github.com/alokgarg003/new-job-Apply/internal/scraper"
	"github.com/alokgarg003/new-job-Apply/internal/session"
)

const (
	defaultEnrichWorkers = 5
	defaultEnrichTimeout = 5 * time.Second
)

// Config tunes the enrichment stage.
type Config struct {
	// EnrichWorkers caps concurrent per-item description fetches.
	EnrichWorkers int64
	// EnrichTimeout bounds each individual fetch.
	EnrichTimeout time.Duration
	Session       session.Config
	Logger        *log.Logger
}

// Pipeline is the discovery→enrichment composition.
type Pipeline struct {
	orch    *harvest.Orchestrator
	matcher *match.Matcher
	sess    *session.Session
	workers int64
	timeout time.Duration
	logger  *log.Logger
}

// New builds a Pipeline around an orchestrator and a matcher.
func New(orch *harvest.Orchestrator, matcher *match.Matcher, cfg Config) (*Pipeline, error) {
	if cfg.EnrichWorkers <= 0 {
		cfg.EnrichWorkers = defaultEnrichWorkers
	}
	if cfg.EnrichTimeout <= 0 {
		cfg.EnrichTimeout = defaultEnrichTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[pipeline] ", log.LstdFlags)
	}
	sc := cfg.Session
	sc.ClearCookies = true
	sc.Logger = logger
	sess, err := session.New(sc)
	if err != nil {
		return nil, fmt.Errorf("pipeline session: %w", err)
	}
	return &Pipeline{
		orch:    orch,
		matcher: matcher,
		sess:    sess,
		workers: cfg.EnrichWorkers,
		timeout: cfg.EnrichTimeout,
		logger:  logger,
	}, nil
}

// Result carries every accumulated record, Ignore tier included so raw
// counts stay auditable, plus the per-source harvest report.
type Result struct {
	Records []model.ListingRecord
	Report  model.HarvestReport
}

// Ranked returns the reporting view: Ignore-tier records dropped, the
// rest sorted by score descending (ties keep merge order).
func (r Result) Ranked() []model.ListingRecord {
	out := make([]model.ListingRecord, 0, len(r.Records))
	for _, rec := range r.Records {
		if rec.Match != nil && rec.Match.Tier != model.TierIgnore {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Match.Score > out[j].Match.Score
	})
	return out
}

// Run harvests, enriches and scores. Records are independent: one item's
// enrichment failure is treated as "no description", never as an abort.
func (p *Pipeline) Run(ctx context.Context, req model.SearchRequest) Result {
	records, report := p.orch.Run(ctx, req)

	sem := semaphore.NewWeighted(p.workers)
	var wg sync.WaitGroup
	for i := range records {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(rec *model.ListingRecord) {
			defer wg.Done()
			defer sem.Release(1)
			p.enrich(ctx, rec, req.Format)
		}(&records[i])
	}
	wg.Wait()

	accepted, rejected := 0, 0
	for _, rec := range records {
		if rec.Match != nil && rec.Match.Tier != model.TierIgnore {
			accepted++
		} else {
			rejected++
		}
	}
	p.logger.Printf("run %s scored %d record(s): accepted=%d ignored=%d",
		report.RunID, len(records), accepted, rejected)

	return Result{Records: records, Report: report}
}

func (p *Pipeline) enrich(ctx context.Context, rec *model.ListingRecord, format model.DescriptionFormat) {
	description := rec.Description
	plain := description
	if description == "" && rec.JobURL != "" {
		raw := p.fetchDescription(ctx, rec.JobURL)
		plain = scraper.HTMLToText(raw)
		description = scraper.RenderDescription(raw, format)
	}

	// Scoring always runs on the plain-text view, never on markdown.
	text := rec.Title
	if plain != "" {
		text += "\n" + plain
	}
	result := p.matcher.Evaluate(text)
	rec.Description = description
	rec.Match = &result

	// Fill remote/WFH from the text when the source said nothing.
	if rec.IsRemote == nil {
		remote := scraper.IsRemoteText(text)
		rec.IsRemote = &remote
	}
	if rec.WorkFromHome == "" {
		rec.WorkFromHome = scraper.InferWorkFromHome("", rec.Title, plain)
	}
	if len(rec.Emails) == 0 {
		rec.Emails = scraper.ExtractEmails(plain)
	}
}

// fetchDescription returns the raw markup of the listing page. Best
// effort: any failure yields an empty string and the record is scored on
// its title alone.
func (p *Pipeline) fetchDescription(ctx context.Context, jobURL string) string {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.sess.Get(ctx, jobURL, nil, nil)
	if err != nil {
		p.logger.Printf("description fetch %s: %v", jobURL, err)
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		p.logger.Printf("description fetch %s: status %d", jobURL, resp.StatusCode)
		return ""
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}
	return string(body)
}
