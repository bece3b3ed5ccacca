// harvester is the multi-source job discovery and scoring binary.
//
// One-shot by default; set SCRAPE_INTERVAL_HOURS to run on a cron loop.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/alokgarg003/new-job-Apply/internal/config"
	"github.com/alokgarg003/new-job-Apply/internal/harvest"
	"github.com/alokgarg003/new-job-Apply/internal/match"
	"github.com/alokgarg003/new-job-Apply/internal/model"
	"github.com/alokgarg003/new-job-Apply/internal/output"
	"github.com/alokgarg003/new-job-Apply/internal/pipeline"
	"github.com/alokgarg003/new-job-Apply/internal/scheduler"
	"github.com/alokgarg003/new-job-Apply/internal/scraper"
	"github.com/alokgarg003/new-job-Apply/internal/session"
	"github.com/alokgarg003/new-job-Apply/internal/store"
)

func main() {
	// A missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[harvester] config: %v", err)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Fatalf("[harvester] output dir: %v", err)
	}

	app, err := newApp(cfg)
	if err != nil {
		log.Fatalf("[harvester] %v", err)
	}
	defer app.close()

	if cfg.ScrapeIntervalHours > 0 {
		runCron(app, cfg)
		return
	}

	ctx := context.Background()
	if !app.runOnce(ctx) {
		os.Exit(1)
	}
}

// app bundles the wired components for one process lifetime.
type app struct {
	cfg    *config.Config
	pipe   *pipeline.Pipeline
	feed   *store.FeedStore
	seen   *store.SeenCache
	logger *log.Logger
}

func newApp(cfg *config.Config) (*app, error) {
	logger := log.New(os.Stderr, "[harvester] ", log.LstdFlags)

	matchCfg := match.DefaultConfig()
	matchCfg.MinScore = cfg.MinScore
	matchCfg.CandidateYears = cfg.CandidateYears
	matcher := match.New(matchCfg)

	factory := adapterFactory(cfg)
	orch := harvest.New(factory, cfg.GlobalDedupe, logger)

	pipe, err := pipeline.New(orch, matcher, pipeline.Config{
		EnrichWorkers: cfg.EnrichWorkers,
		EnrichTimeout: cfg.EnrichTimeout,
		Session: session.Config{
			Proxies:    cfg.Proxies,
			CACertPath: cfg.CACertPath,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, pipe: pipe, logger: logger}

	// Collaborator services are optional: the pipeline runs fully
	// standalone when neither URL is configured.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if cfg.DatabaseURL != "" {
		feed, err := store.NewFeedStore(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("feed store: %w", err)
		}
		a.feed = feed
	}
	if cfg.RedisURL != "" {
		seen, err := store.NewSeenCache(ctx, cfg.RedisURL, 0)
		if err != nil {
			return nil, fmt.Errorf("seen cache: %w", err)
		}
		a.seen = seen
	}
	return a, nil
}

func (a *app) close() {
	if a.feed != nil {
		a.feed.Close()
	}
	if a.seen != nil {
		a.seen.Close()
	}
}

// adapterFactory resolves source ids to adapters with their per-source
// pacing config. Dry-run mode substitutes the deterministic mock for
// every source so no network calls happen.
func adapterFactory(cfg *config.Config) harvest.Factory {
	return func(source string) (scraper.Scraper, error) {
		if cfg.DryRun {
			return scraper.NewMock(scraper.Config{}), nil
		}
		sc := scraper.Config{
			Session: session.Config{
				Proxies:    cfg.Proxies,
				CACertPath: cfg.CACertPath,
			},
			FetchDescription: cfg.FetchDescription,
			DetailWorkers:    cfg.DetailWorkers,
		}
		switch source {
		case scraper.SourceLinkedIn:
			applySourceConfig(&sc, cfg.LinkedIn)
		case scraper.SourceNaukri:
			applySourceConfig(&sc, cfg.Naukri)
		case scraper.SourceGoogle:
			applySourceConfig(&sc, cfg.Google)
		case scraper.SourceDice:
			applySourceConfig(&sc, cfg.Dice)
		}
		return scraper.New(source, sc)
	}
}

func applySourceConfig(sc *scraper.Config, src config.SourceConfig) {
	sc.Session.Delay = src.Delay
	sc.Session.BandDelay = src.BandDelay
	sc.JobsPerPage = src.JobsPerPage
	sc.MaxPages = src.MaxPages
}

// runOnce executes one harvest+score cycle. Returns false only when every
// source failed outright.
func (a *app) runOnce(ctx context.Context) bool {
	req := a.cfg.Request()
	result := a.pipe.Run(ctx, req)

	for _, t := range result.Report.Tallies {
		if t.Err != nil {
			a.logger.Printf("source %-10s %-8s count=%d err=%v", t.Source, t.Status, t.Count, t.Err)
		} else {
			a.logger.Printf("source %-10s %-8s count=%d", t.Source, t.Status, t.Count)
		}
	}

	ranked := result.Ranked()
	if a.cfg.MinScore > 0 {
		kept := ranked[:0]
		for _, rec := range ranked {
			if rec.Match.Score >= a.cfg.MinScore {
				kept = append(kept, rec)
			}
		}
		ranked = kept
	}
	if a.seen != nil {
		ranked = a.filterSeen(ctx, ranked)
	}

	stamp := time.Now().Format("20060102_150405")
	debugPath := filepath.Join(a.cfg.OutputDir, "debug_"+stamp+".csv")
	finalPath := filepath.Join(a.cfg.OutputDir, "jobs_"+stamp+".csv")

	if err := output.WriteFile(debugPath, result.Records); err != nil {
		a.logger.Printf("write debug csv: %v", err)
	}
	if err := output.WriteFile(finalPath, ranked); err != nil {
		a.logger.Printf("write final csv: %v", err)
	} else {
		a.logger.Printf("wrote %d ranked record(s) to %s", len(ranked), finalPath)
	}
	if a.cfg.AggregateCSV != "" {
		added, replaced, err := output.AppendMaster(a.cfg.AggregateCSV, ranked)
		if err != nil {
			a.logger.Printf("aggregate csv: %v", err)
		} else {
			a.logger.Printf("aggregate update: added=%d replaced=%d", added, replaced)
		}
	}

	if a.feed != nil {
		inserted, duplicate, err := a.feed.InsertNew(ctx, result.Report.RunID, ranked)
		if err != nil {
			a.logger.Printf("feed insert: %v", err)
		} else {
			a.logger.Printf("feed insert: inserted=%d duplicate=%d", inserted, duplicate)
		}
		if err := a.feed.RecordRun(ctx, result.Report); err != nil {
			a.logger.Printf("record run: %v", err)
		}
	}

	if result.Report.AllFailed() {
		a.logger.Printf("every source failed, see tallies above")
		return false
	}
	return true
}

func (a *app) filterSeen(ctx context.Context, ranked []model.ListingRecord) []model.ListingRecord {
	urls := make([]string, len(ranked))
	for i, rec := range ranked {
		urls[i] = rec.JobURL
	}
	unseen, err := a.seen.FilterUnseen(ctx, urls)
	if err != nil {
		a.logger.Printf("seen cache: %v, keeping all records", err)
		return ranked
	}
	keep := make(map[string]bool, len(unseen))
	for _, u := range unseen {
		keep[u] = true
	}
	var out []model.ListingRecord
	for _, rec := range ranked {
		if keep[rec.JobURL] {
			out = append(out, rec)
		}
	}
	if err := a.seen.MarkSeen(ctx, unseen); err != nil {
		a.logger.Printf("seen cache mark: %v", err)
	}
	a.logger.Printf("seen cache: %d of %d record(s) are new", len(out), len(ranked))
	return out
}

func runCron(a *app, cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(cfg.ScrapeIntervalHours, func(ctx context.Context) {
		a.runOnce(ctx)
	}, a.logger)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[harvester] scheduler: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	a.logger.Printf("shutting down")
	cancel()
	sched.Stop()
}
