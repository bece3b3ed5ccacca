// Package store is the thin handoff layer to the collaborator persistence
// services: a Postgres job-feed sink and a Redis seen-URL cache. The core
// harvesting and scoring packages never import it.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alokgarg003/new-job-Apply/internal/model"
)

// FeedStore hands scored records to the job_feed table.
type FeedStore struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewFeedStore connects a pool and verifies connectivity.
func NewFeedStore(ctx context.Context, databaseURL string, logger *log.Logger) (*FeedStore, error) {
	if logger == nil {
		logger = log.New(log.Writer(), "[store] ", log.LstdFlags)
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &FeedStore{pool: pool, logger: logger}, nil
}

// Close releases the pool.
func (s *FeedStore) Close() { s.pool.Close() }

// InsertNew stores records that are not yet in the feed, deduplicating by
// job URL. The full record (score included) travels as JSONB so the
// downstream services own their own schema evolution.
func (s *FeedStore) InsertNew(ctx context.Context, runID string, records []model.ListingRecord) (inserted, duplicate int, err error) {
	for _, rec := range records {
		raw, err := json.Marshal(rec)
		if err != nil {
			s.logger.Printf("marshal %s: %v", rec.ID, err)
			continue
		}
		tag, err := s.pool.Exec(ctx,
			`INSERT INTO job_feed (run_id, source, raw_data, job_url, status)
			 SELECT $1, $2, $3::jsonb, $4, 'PENDING'
			 WHERE NOT EXISTS (
			   SELECT 1 FROM job_feed WHERE job_url = $4
			 )`,
			runID, rec.Source, string(raw), rec.JobURL,
		)
		if err != nil {
			s.logger.Printf("insert %s: %v", rec.JobURL, err)
			continue
		}
		if tag.RowsAffected() == 0 {
			duplicate++
		} else {
			inserted++
		}
	}
	return inserted, duplicate, nil
}

// RecordRun writes the per-source tally of one harvest for auditing.
func (s *FeedStore) RecordRun(ctx context.Context, report model.HarvestReport) error {
	for _, t := range report.Tallies {
		errText := ""
		if t.Err != nil {
			errText = t.Err.Error()
		}
		_, err := s.pool.Exec(ctx,
			`INSERT INTO harvest_runs (run_id, source, status, record_count, error, started_at, finished_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			report.RunID, t.Source, string(t.Status), t.Count, errText,
			report.Started, report.Finished,
		)
		if err != nil {
			return fmt.Errorf("record run %s/%s: %w", report.RunID, t.Source, err)
		}
	}
	return nil
}
