package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/alokgarg003/new-job-Apply/internal/model"
)

// Mock is the deterministic stand-in used in dry-run mode and tests: no
// network calls, stable IDs, stable dates.
type Mock struct {
	count int
}

// NewMock returns a mock adapter yielding up to JobsPerPage records
// (default 3) per scrape.
func NewMock(cfg Config) *Mock {
	count := cfg.JobsPerPage
	if count <= 0 {
		count = 3
	}
	return &Mock{count: count}
}

func (m *Mock) Name() string { return SourceMock }

func (m *Mock) Scrape(_ context.Context, req model.SearchRequest) ([]model.ListingRecord, error) {
	n := m.count
	if req.ResultsWanted > 0 && req.ResultsWanted < n {
		n = req.ResultsWanted
	}
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	records := make([]model.ListingRecord, 0, n)
	for i := 1; i <= n; i++ {
		posted := base.AddDate(0, 0, -i)
		remote := i%2 == 0
		records = append(records, model.ListingRecord{
			ID:      fmt.Sprintf("mock-%d", i),
			Source:  SourceMock,
			Title:   fmt.Sprintf("Linux Production Support Engineer %d", i),
			Company: "Acme Corp",
			Location: &model.Location{
				City: "Bengaluru", State: "Karnataka", Country: "India",
			},
			JobURL: fmt.Sprintf("https://jobs.example.com/listing/%d", i),
			Description: "Production support role: Linux, ServiceNow, SFTP/MFT " +
				"file transfers, on-call rotation. 3-5 years experience.",
			DatePosted: &posted,
			IsRemote:   &remote,
		})
	}
	return records, nil
}
