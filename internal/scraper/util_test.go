package scraper_test

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/alokgarg003/new-job-Apply/internal/model"
	"github.com/alokgarg003/new-job-Apply/internal/scraper"
)

// ── salary parsing ──

func TestExtractSalary(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantNil  bool
		interval model.CompensationInterval
		min, max float64
	}{
		{"hourly", "pay is $25 - $40 per hour", false, model.IntervalHourly, 25, 40},
		{"monthly", "$4,000 - $6,500 monthly", false, model.IntervalMonthly, 4000, 6500},
		{"yearly", "$90,000 - $120,000", false, model.IntervalYearly, 90000, 120000},
		{"to separator", "$80,000 to $95,000", false, model.IntervalYearly, 80000, 95000},
		{"no salary", "competitive compensation", true, "", 0, 0},
		{"single amount", "$50,000 and up", true, "", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scraper.ExtractSalary(tt.text)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("got %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("got nil, want compensation")
			}
			if got.Interval != tt.interval || got.MinAmount != tt.min || got.MaxAmount != tt.max {
				t.Errorf("got %+v, want %s %v-%v", got, tt.interval, tt.min, tt.max)
			}
			if got.Currency != "USD" {
				t.Errorf("Currency = %q, want USD", got.Currency)
			}
		})
	}
}

// ── email and job-type extraction ──

func TestExtractEmails(t *testing.T) {
	got := scraper.ExtractEmails("apply to jobs@example.com or hr.team@corp.co.in today")
	want := []string{"jobs@example.com", "hr.team@corp.co.in"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got := scraper.ExtractEmails("no contact details"); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestExtractJobTypes(t *testing.T) {
	got := scraper.ExtractJobTypes("This is a Full-time contract position")
	want := []model.JobType{model.JobTypeFullTime, model.JobTypeContract}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// ── remote / WFH inference ──

func TestInferWorkFromHome(t *testing.T) {
	tests := []struct {
		loc, title, desc string
		want             string
	}{
		{"Hybrid - Pune", "", "", "Hybrid"},
		{"", "Remote Linux Engineer", "", "Remote"},
		{"", "", "candidates must work from office", "Work from office"},
		{"Bengaluru", "Support Engineer", "on-site team", ""},
	}
	for _, tt := range tests {
		if got := scraper.InferWorkFromHome(tt.loc, tt.title, tt.desc); got != tt.want {
			t.Errorf("InferWorkFromHome(%q,%q,%q) = %q, want %q",
				tt.loc, tt.title, tt.desc, got, tt.want)
		}
	}
}

// ── HTML to text ──

func TestHTMLToText(t *testing.T) {
	html := `<div><h2>Role</h2><p>Support <b>Linux</b> servers.</p>` +
		`<script>tracking()</script><p>SFTP<br>transfers</p></div>`
	got := scraper.HTMLToText(html)
	for _, want := range []string{"Role", "Support Linux servers.", "SFTP", "transfers"} {
		if !containsLine(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if containsLine(got, "tracking()") {
		t.Errorf("script content leaked into text:\n%s", got)
	}
}

func containsLine(text, want string) bool {
	for _, line := range splitLines(text) {
		if line == want {
			return true
		}
	}
	return false
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return out
}

// ── description rendering ──

func TestRenderDescription(t *testing.T) {
	html := `<p>Support <strong>Linux</strong> servers.</p><ul><li>SFTP</li><li>ServiceNow</li></ul>`

	plain := scraper.RenderDescription(html, model.FormatPlain)
	if strings.Contains(plain, "**") || strings.Contains(plain, "<") {
		t.Errorf("plain rendering carries markup: %q", plain)
	}

	markdown := scraper.RenderDescription(html, model.FormatMarkdown)
	if !strings.Contains(markdown, "**Linux**") {
		t.Errorf("markdown rendering lost emphasis: %q", markdown)
	}
	if !strings.Contains(markdown, "- SFTP") {
		t.Errorf("markdown rendering lost list items: %q", markdown)
	}
}

func TestHTMLToMarkdownFallsBackOnEmpty(t *testing.T) {
	if got := scraper.HTMLToMarkdown(""); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

// ── URL canonicalisation ──

func TestCanonicalURL(t *testing.T) {
	tests := []struct{ in, want string }{
		{"https://x.com/jobs/view/123?refId=abc&tracking=1", "https://x.com/jobs/view/123"},
		{"https://x.com/jobs/view/123#apply", "https://x.com/jobs/view/123"},
		{"https://x.com/jobs/view/123", "https://x.com/jobs/view/123"},
	}
	for _, tt := range tests {
		if got := scraper.CanonicalURL(tt.in); got != tt.want {
			t.Errorf("CanonicalURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ── relative dates ──

func TestParseRelativeDate(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)

	if got := scraper.ParseRelativeDate("Today", now); got == nil || got.Day() != 10 {
		t.Errorf("Today = %v, want 2025-06-10", got)
	}
	if got := scraper.ParseRelativeDate("3 days ago", now); got == nil || got.Day() != 7 {
		t.Errorf("3 days ago = %v, want 2025-06-07", got)
	}
	if got := scraper.ParseRelativeDate("30+ Days Ago", now); got == nil || got.Month() != time.May {
		t.Errorf("30+ Days Ago = %v, want a May date", got)
	}
	if got := scraper.ParseRelativeDate("Not disclosed", now); got != nil {
		t.Errorf("unparseable label = %v, want nil", got)
	}
	if got := scraper.ParseRelativeDate("", now); got != nil {
		t.Errorf("empty label = %v, want nil", got)
	}
}
