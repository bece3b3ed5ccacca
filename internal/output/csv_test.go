package output_test

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alokgarg003/new-job-Apply/internal/model"
	"github.com/alokgarg003/new-job-Apply/internal/output"
)

func sampleRecord(id string, score int) model.ListingRecord {
	posted := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	remote := true
	return model.ListingRecord{
		ID:      id,
		Source:  "naukri",
		Title:   "Linux Support Engineer",
		Company: "Acme",
		Location: &model.Location{
			City: "Pune", State: "Maharashtra", Country: "India",
		},
		JobURL:     "https://jobs.example.com/" + id,
		DatePosted: &posted,
		IsRemote:   &remote,
		Skills:     []string{"Linux", "SFTP"},
		Match: &model.MatchResult{
			Score:   score,
			Tier:    model.TierGood,
			Skills:  []string{"linux", "sftp"},
			Reasons: []string{"Primary skills: linux, sftp"},
		},
	}
}

// ── schema stability ──

func TestWriteEmitsFixedSchema(t *testing.T) {
	var buf bytes.Buffer
	if err := output.Write(&buf, []model.ListingRecord{sampleRecord("a", 50)}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d row(s), want header + 1", len(rows))
	}
	if len(rows[0]) != len(output.Columns) {
		t.Errorf("header has %d column(s), want %d", len(rows[0]), len(output.Columns))
	}
	if rows[0][0] != "id" || rows[0][2] != "job_url" {
		t.Errorf("header = %v", rows[0][:3])
	}
	if len(rows[1]) != len(output.Columns) {
		t.Errorf("data row has %d cell(s), want %d", len(rows[1]), len(output.Columns))
	}
}

func TestRowRendersAbsentOptionalsAsEmpty(t *testing.T) {
	// Bare minimum record: only the always-present fields.
	rec := model.ListingRecord{
		ID:     "min",
		Source: "google",
		Title:  "Support Engineer",
		JobURL: "https://jobs.example.com/min",
	}
	row := output.Row(rec)

	if len(row) != len(output.Columns) {
		t.Fatalf("row has %d cell(s), want %d", len(row), len(output.Columns))
	}
	for i, cell := range row {
		switch output.Columns[i] {
		case "id", "source", "title", "job_url":
			if cell == "" {
				t.Errorf("column %s is empty", output.Columns[i])
			}
		default:
			if cell != "" {
				t.Errorf("column %s = %q, want empty for absent field", output.Columns[i], cell)
			}
		}
	}
}

// ── aggregate master ──

func TestAppendMasterKeepLatest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "all_jobs.csv")

	added, replaced, err := output.AppendMaster(path, []model.ListingRecord{
		sampleRecord("a", 50),
		sampleRecord("b", 60),
	})
	if err != nil {
		t.Fatalf("first AppendMaster: %v", err)
	}
	if added != 2 || replaced != 0 {
		t.Errorf("first run added=%d replaced=%d, want 2/0", added, replaced)
	}

	// Re-harvest: one listing repeats with a new score, one is new.
	updated := sampleRecord("a", 75)
	added, replaced, err = output.AppendMaster(path, []model.ListingRecord{
		updated,
		sampleRecord("c", 40),
	})
	if err != nil {
		t.Fatalf("second AppendMaster: %v", err)
	}
	if added != 1 || replaced != 1 {
		t.Errorf("second run added=%d replaced=%d, want 1/1", added, replaced)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open master: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read master: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("master has %d row(s), want header + 3", len(rows))
	}

	scoreCol := -1
	for i, c := range output.Columns {
		if c == "match_score" {
			scoreCol = i
		}
	}
	found := false
	for _, row := range rows[1:] {
		if row[0] == "a" {
			found = true
			if row[scoreCol] != "75" {
				t.Errorf("record a score = %q, want the re-harvested 75", row[scoreCol])
			}
		}
	}
	if !found {
		t.Error("record a missing from master")
	}
}

func TestWriteFileCreatesReadableCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.csv")
	if err := output.WriteFile(path, []model.ListingRecord{sampleRecord("a", 50)}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("got %d row(s), want 2", len(rows))
	}
}
