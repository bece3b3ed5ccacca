// Package model defines the shared data contract between adapters, the
// orchestrator, the scoring engine and the output writers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// DescriptionFormat selects how job descriptions are rendered in output.
type DescriptionFormat string

const (
	FormatPlain    DescriptionFormat = "plain"
	FormatMarkdown DescriptionFormat = "markdown"
)

// JobType tags a listing with its employment arrangement.
type JobType string

const (
	JobTypeFullTime   JobType = "fulltime"
	JobTypePartTime   JobType = "parttime"
	JobTypeContract   JobType = "contract"
	JobTypeTemporary  JobType = "temporary"
	JobTypeInternship JobType = "internship"
)

// ParseJobType maps a free-form label to a JobType. Returns false for
// labels that do not correspond to any known type.
func ParseJobType(label string) (JobType, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	l = strings.ReplaceAll(l, "-", "")
	l = strings.ReplaceAll(l, " ", "")
	switch l {
	case "fulltime":
		return JobTypeFullTime, true
	case "parttime":
		return JobTypePartTime, true
	case "contract", "contractor":
		return JobTypeContract, true
	case "temporary":
		return JobTypeTemporary, true
	case "internship":
		return JobTypeInternship, true
	}
	return "", false
}

// CompensationInterval is the period a salary range refers to.
type CompensationInterval string

const (
	IntervalYearly  CompensationInterval = "yearly"
	IntervalMonthly CompensationInterval = "monthly"
	IntervalWeekly  CompensationInterval = "weekly"
	IntervalDaily   CompensationInterval = "daily"
	IntervalHourly  CompensationInterval = "hourly"
)

// Compensation is an optional salary range attached to a listing.
type Compensation struct {
	Interval  CompensationInterval `json:"interval,omitempty"`
	MinAmount float64              `json:"minAmount,omitempty"`
	MaxAmount float64              `json:"maxAmount,omitempty"`
	Currency  string               `json:"currency,omitempty"`
}

// Annualize converts sub-yearly intervals to a yearly equivalent in place.
func (c *Compensation) Annualize() {
	switch c.Interval {
	case IntervalHourly:
		c.MinAmount *= 2080
		c.MaxAmount *= 2080
	case IntervalDaily:
		c.MinAmount *= 260
		c.MaxAmount *= 260
	case IntervalWeekly:
		c.MinAmount *= 52
		c.MaxAmount *= 52
	case IntervalMonthly:
		c.MinAmount *= 12
		c.MaxAmount *= 12
	}
	c.Interval = IntervalYearly
}

// Location is a structured job location. Every field is optional; sources
// report anywhere between nothing and a full city/state/country triple.
type Location struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// Display renders the non-empty parts as "City, State, Country".
func (l Location) Display() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.City, l.State, l.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// SearchRequest is the immutable input of one harvest run.
type SearchRequest struct {
	Keywords      []string
	Location      string
	ResultsWanted int
	RemoteOnly    bool
	JobType       JobType // empty = no filter
	HoursOld      int     // recency window; 0 = no time filter
	Offset        int     // pagination offset into the result stream
	Format        DescriptionFormat
	Sources       []string // source identifiers to query
}

// SearchTerm joins the keywords into a single quoted OR query, the form
// most boards accept verbatim.
func (r SearchRequest) SearchTerm() string {
	if len(r.Keywords) == 0 {
		return ""
	}
	quoted := make([]string, len(r.Keywords))
	for i, k := range r.Keywords {
		quoted[i] = fmt.Sprintf("%q", k)
	}
	return strings.Join(quoted, " OR ")
}

// ListingRecord is the normalised unit of one job posting. Adapters create
// records when parsing raw items; they are never mutated afterwards. The
// pipeline attaches annotations via the Match pointer.
type ListingRecord struct {
	ID           string        `json:"id"` // source-prefixed, unique per harvest
	Source       string        `json:"source"`
	Title        string        `json:"title"`
	Company      string        `json:"company,omitempty"`
	Location     *Location     `json:"location,omitempty"`
	JobURL       string        `json:"jobUrl"` // always present and well-formed
	JobURLDirect string        `json:"jobUrlDirect,omitempty"`
	Description  string        `json:"description,omitempty"`
	Compensation *Compensation `json:"compensation,omitempty"`
	DatePosted   *time.Time    `json:"datePosted,omitempty"`
	IsRemote     *bool         `json:"isRemote,omitempty"`
	JobTypes     []JobType     `json:"jobTypes,omitempty"`
	Emails       []string      `json:"emails,omitempty"`

	// Source-specific optional fields.
	CompanyURL      string   `json:"companyUrl,omitempty"`
	CompanyIndustry string   `json:"companyIndustry,omitempty"`
	JobLevel        string   `json:"jobLevel,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	ExperienceRange string   `json:"experienceRange,omitempty"`
	CompanyRating   float64  `json:"companyRating,omitempty"`
	CompanyReviews  int      `json:"companyReviews,omitempty"`
	VacancyCount    int      `json:"vacancyCount,omitempty"`
	WorkFromHome    string   `json:"workFromHomeType,omitempty"`

	// Set by the enrichment pipeline, never by adapters.
	Match *MatchResult `json:"match,omitempty"`
}

// Tier is the qualitative match bucket derived from the numeric score.
type Tier string

const (
	TierStrong  Tier = "Strong Match"
	TierGood    Tier = "Good Match"
	TierStretch Tier = "Stretch Role"
	TierIgnore  Tier = "Ignore"
)

// MatchResult is the scoring engine's verdict for one listing.
type MatchResult struct {
	Score           int      `json:"score"` // always in [0, 100]
	Tier            Tier     `json:"tier"`
	Skills          []string `json:"skills,omitempty"`
	MissingSkills   []string `json:"missingSkills,omitempty"`
	Reasons         []string `json:"reasons,omitempty"`
	ExperienceRange string   `json:"experienceRange,omitempty"`
}

// WhyFits joins the reasons into a single human-readable sentence.
func (m MatchResult) WhyFits() string {
	return strings.Join(m.Reasons, "; ")
}

// SourceStatus classifies how a single source's harvest ended.
type SourceStatus string

const (
	SourceOK      SourceStatus = "ok"
	SourcePartial SourceStatus = "partial" // records collected, then an error
	SourceFailed  SourceStatus = "failed"
)

// SourceTally is the per-source outcome of one run. It lets callers tell
// "zero results because nothing matched" apart from "every source failed".
type SourceTally struct {
	Source string
	Status SourceStatus
	Count  int
	Err    error
}

// HarvestReport summarises one orchestrator run.
type HarvestReport struct {
	RunID    string
	Tallies  []SourceTally
	Total    int
	Started  time.Time
	Finished time.Time
}

// Failed reports how many sources ended in SourceFailed.
func (r HarvestReport) Failed() int {
	n := 0
	for _, t := range r.Tallies {
		if t.Status == SourceFailed {
			n++
		}
	}
	return n
}

// AllFailed is true when every queried source failed outright.
func (r HarvestReport) AllFailed() bool {
	return len(r.Tallies) > 0 && r.Failed() == len(r.Tallies)
}
