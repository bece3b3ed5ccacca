package model_test

import (
	"testing"

	"github.com/alokgarg003/new-job-Apply/internal/model"
)

// ── job types ──

func TestParseJobType(t *testing.T) {
	tests := []struct {
		in   string
		want model.JobType
		ok   bool
	}{
		{"Full-Time", model.JobTypeFullTime, true},
		{"full time", model.JobTypeFullTime, true},
		{"CONTRACTOR", model.JobTypeContract, true},
		{"internship", model.JobTypeInternship, true},
		{"gig", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := model.ParseJobType(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseJobType(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

// ── search term ──

func TestSearchTerm(t *testing.T) {
	req := model.SearchRequest{Keywords: []string{"linux support", "mft"}}
	if got, want := req.SearchTerm(), `"linux support" OR "mft"`; got != want {
		t.Errorf("SearchTerm() = %q, want %q", got, want)
	}
	if got := (model.SearchRequest{}).SearchTerm(); got != "" {
		t.Errorf("empty request SearchTerm() = %q, want empty", got)
	}
}

// ── compensation ──

func TestAnnualize(t *testing.T) {
	c := model.Compensation{Interval: model.IntervalMonthly, MinAmount: 5000, MaxAmount: 7000}
	c.Annualize()
	if c.Interval != model.IntervalYearly || c.MinAmount != 60000 || c.MaxAmount != 84000 {
		t.Errorf("got %+v", c)
	}

	h := model.Compensation{Interval: model.IntervalHourly, MinAmount: 10, MaxAmount: 20}
	h.Annualize()
	if h.MinAmount != 20800 || h.MaxAmount != 41600 {
		t.Errorf("got %+v", h)
	}
}

// ── location display ──

func TestLocationDisplay(t *testing.T) {
	tests := []struct {
		loc  model.Location
		want string
	}{
		{model.Location{City: "Pune", State: "MH", Country: "India"}, "Pune, MH, India"},
		{model.Location{City: "Pune"}, "Pune"},
		{model.Location{Country: "India"}, "India"},
		{model.Location{}, ""},
	}
	for _, tt := range tests {
		if got := tt.loc.Display(); got != tt.want {
			t.Errorf("Display(%+v) = %q, want %q", tt.loc, got, tt.want)
		}
	}
}

// ── harvest report ──

func TestHarvestReportFailureCounting(t *testing.T) {
	r := model.HarvestReport{Tallies: []model.SourceTally{
		{Source: "linkedin", Status: model.SourceFailed},
		{Source: "naukri", Status: model.SourceOK},
	}}
	if r.Failed() != 1 || r.AllFailed() {
		t.Errorf("Failed() = %d, AllFailed() = %v", r.Failed(), r.AllFailed())
	}

	r.Tallies[1].Status = model.SourceFailed
	if !r.AllFailed() {
		t.Error("AllFailed() = false with every source failed")
	}

	empty := model.HarvestReport{}
	if empty.AllFailed() {
		t.Error("AllFailed() = true for a report with no tallies")
	}
}
