// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, Load returns
// an error and the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alokgarg003/new-job-Apply/internal/model"
)

// SourceConfig is the per-source pacing and paging tuning.
type SourceConfig struct {
	Delay       time.Duration
	BandDelay   time.Duration
	JobsPerPage int
	MaxPages    int
}

// Config holds all runtime configuration for the harvester.
type Config struct {
	// Search
	Keywords      []string
	Location      string
	Sources       []string
	ResultsWanted int
	RemoteOnly    bool
	JobType       model.JobType
	HoursOld      int
	Offset        int
	Format        model.DescriptionFormat

	// Per-source tuning
	LinkedIn SourceConfig
	Naukri   SourceConfig
	Google   SourceConfig
	Dice     SourceConfig

	// Networking
	Proxies          []string
	CACertPath       string
	FetchDescription bool
	DetailWorkers    int64
	EnrichWorkers    int64
	EnrichTimeout    time.Duration

	// Behaviour
	DryRun         bool
	GlobalDedupe   bool
	MinScore       int
	CandidateYears int

	// Output
	OutputDir    string
	AggregateCSV string // empty disables the master file

	// Collaborator services, optional: empty disables each
	DatabaseURL string
	RedisURL    string

	// ScrapeIntervalHours > 0 switches the binary into cron mode.
	ScrapeIntervalHours int
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	keywords := splitCSV(os.Getenv("KEYWORDS"))
	if len(keywords) == 0 {
		return nil, fmt.Errorf("KEYWORDS is required (comma-separated search terms)")
	}

	sources := splitCSV(getEnv("SOURCES", "linkedin,naukri"))
	if len(sources) == 0 {
		return nil, fmt.Errorf("SOURCES must name at least one source")
	}

	format := model.DescriptionFormat(getEnv("DESCRIPTION_FORMAT", string(model.FormatMarkdown)))
	if format != model.FormatPlain && format != model.FormatMarkdown {
		return nil, fmt.Errorf("DESCRIPTION_FORMAT must be %q or %q, got %q",
			model.FormatPlain, model.FormatMarkdown, format)
	}

	var jobType model.JobType
	if raw := os.Getenv("JOB_TYPE"); raw != "" {
		jt, ok := model.ParseJobType(raw)
		if !ok {
			return nil, fmt.Errorf("JOB_TYPE %q is not a known job type", raw)
		}
		jobType = jt
	}

	interval := 0
	if s := os.Getenv("SCRAPE_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("SCRAPE_INTERVAL_HOURS must be a positive integer, got %q", s)
		}
		interval = v
	}

	return &Config{
		Keywords:      keywords,
		Location:      getEnv("LOCATION", "India"),
		Sources:       sources,
		ResultsWanted: getEnvInt("RESULTS_WANTED", 150),
		RemoteOnly:    getEnvBool("REMOTE_ONLY", false),
		JobType:       jobType,
		HoursOld:      getEnvInt("HOURS_OLD", 0),
		Offset:        getEnvInt("OFFSET", 0),
		Format:        format,

		LinkedIn: SourceConfig{
			Delay:       getEnvMillis("LINKEDIN_DELAY_MS", 3000),
			BandDelay:   getEnvMillis("LINKEDIN_BAND_DELAY_MS", 4000),
			JobsPerPage: getEnvInt("LINKEDIN_JOBS_PER_PAGE", 25),
			MaxPages:    getEnvInt("LINKEDIN_MAX_PAGES", 40),
		},
		Naukri: SourceConfig{
			Delay:       getEnvMillis("NAUKRI_DELAY_MS", 2500),
			BandDelay:   getEnvMillis("NAUKRI_BAND_DELAY_MS", 3500),
			JobsPerPage: getEnvInt("NAUKRI_JOBS_PER_PAGE", 20),
			MaxPages:    getEnvInt("NAUKRI_MAX_PAGES", 50),
		},
		Google: SourceConfig{
			Delay:     getEnvMillis("GOOGLE_DELAY_MS", 3000),
			BandDelay: getEnvMillis("GOOGLE_BAND_DELAY_MS", 2000),
			MaxPages:  getEnvInt("GOOGLE_MAX_PAGES", 20),
		},
		Dice: SourceConfig{
			Delay:       getEnvMillis("DICE_DELAY_MS", 2000),
			BandDelay:   getEnvMillis("DICE_BAND_DELAY_MS", 3000),
			JobsPerPage: getEnvInt("DICE_JOBS_PER_PAGE", 20),
			MaxPages:    getEnvInt("DICE_MAX_PAGES", 30),
		},

		Proxies:          splitCSV(os.Getenv("PROXIES")),
		CACertPath:       os.Getenv("CA_CERT"),
		FetchDescription: getEnvBool("FETCH_DESCRIPTION", true),
		DetailWorkers:    int64(getEnvInt("DETAIL_WORKERS", 5)),
		EnrichWorkers:    int64(getEnvInt("ENRICH_WORKERS", 5)),
		EnrichTimeout:    getEnvMillis("ENRICH_TIMEOUT_MS", 5000),

		DryRun:         getEnvBool("DRY_RUN", false),
		GlobalDedupe:   getEnvBool("GLOBAL_DEDUPE", true),
		MinScore:       getEnvInt("PROFILE_MIN_SCORE", 45),
		CandidateYears: getEnvInt("CANDIDATE_YEARS", 0),

		OutputDir:    getEnv("OUTPUT_DIR", "outputs"),
		AggregateCSV: getEnv("AGGREGATE_CSV", "outputs/all_jobs.csv"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		ScrapeIntervalHours: interval,
	}, nil
}

// Request builds the search request the orchestrator fans out.
func (c *Config) Request() model.SearchRequest {
	return model.SearchRequest{
		Keywords:      c.Keywords,
		Location:      c.Location,
		ResultsWanted: c.ResultsWanted,
		RemoteOnly:    c.RemoteOnly,
		JobType:       c.JobType,
		HoursOld:      c.HoursOld,
		Offset:        c.Offset,
		Format:        c.Format,
		Sources:       c.Sources,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvMillis(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Millisecond
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
