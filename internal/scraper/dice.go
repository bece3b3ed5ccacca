package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alokgarg003/new-job-Apply/internal/model"
	"github.com/alokgarg003/new-job-Apply/internal/session"
)

const (
	diceBaseURL = "https://job-search-api.svc.dice.com/v1/dice/jobs/search"
	diceSiteURL = "https://www.dice.com"

	defaultDiceJobsPerPage = 20
	defaultDiceMaxPages    = 30
)

// Dice harvests the contract-staffing search API with page-number
// pagination. The API is JSON end to end, so extraction is structured
// field mapping with no markup tiers.
type Dice struct {
	baseURL     string
	siteURL     string
	sess        *session.Session
	jobsPerPage int
	maxPages    int
	logger      *log.Logger
}

// NewDice builds the adapter and its dedicated session.
func NewDice(cfg Config) (*Dice, error) {
	sc := cfg.Session
	if sc.Delay == 0 {
		sc.Delay = 2 * time.Second
	}
	if sc.BandDelay == 0 {
		sc.BandDelay = 3 * time.Second
	}
	sc.ClearCookies = true
	if sc.UserAgent == "" {
		sc.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if sc.Headers == nil {
		sc.Headers = map[string]string{
			"Accept":          "application/json",
			"Accept-Language": "en-US,en;q=0.9",
		}
	}
	sc.Logger = cfg.Logger
	sess, err := session.New(sc)
	if err != nil {
		return nil, fmt.Errorf("dice session: %w", err)
	}

	jobsPerPage := cfg.JobsPerPage
	if jobsPerPage <= 0 {
		jobsPerPage = defaultDiceJobsPerPage
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultDiceMaxPages
	}
	base := cfg.BaseURL
	site := diceSiteURL
	if base == "" {
		base = diceBaseURL
	} else {
		site = base
	}

	return &Dice{
		baseURL:     base,
		siteURL:     site,
		sess:        sess,
		jobsPerPage: jobsPerPage,
		maxPages:    maxPages,
		logger:      cfg.logger("[dice] "),
	}, nil
}

func (d *Dice) Name() string { return SourceDice }

// API response shapes: only the fields the adapter maps.
type diceResponse struct {
	Data []diceJob `json:"data"`
	Meta diceMeta  `json:"meta"`
}

type diceMeta struct {
	PageCount int `json:"pageCount"`
}

type diceJob struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	CompanyName    string       `json:"companyName"`
	DetailsPageURL string       `json:"detailsPageUrl"`
	JobLocation    diceLocation `json:"jobLocation"`
	PostedDate     string       `json:"postedDate"`
	EmploymentType string       `json:"employmentType"`
	Salary         string       `json:"salary"`
	IsRemote       bool         `json:"isRemote"`
	Summary        string       `json:"summary"`
}

type diceLocation struct {
	DisplayName string `json:"displayName"`
}

// Scrape increments the page counter until the quota is met, the API
// reports no further pages, the source blocks us, or the ceiling is hit.
func (d *Dice) Scrape(ctx context.Context, req model.SearchRequest) ([]model.ListingRecord, error) {
	var records []model.ListingRecord
	seen := map[string]bool{}
	page := req.Offset/d.jobsPerPage + 1
	pageCount := 0

	for len(records) < req.ResultsWanted && page <= d.maxPages {
		params := url.Values{}
		params.Set("q", req.SearchTerm())
		params.Set("page", strconv.Itoa(page))
		params.Set("pageSize", strconv.Itoa(d.jobsPerPage))
		params.Set("language", "en")
		if req.Location != "" {
			params.Set("locationPrecision", "City")
			params.Set("location", req.Location)
		}
		if req.RemoteOnly {
			params.Set("filters.isRemote", "true")
		}
		if code := diceEmploymentType(req.JobType); code != "" {
			params.Set("filters.employmentType", code)
		}
		if win := dicePostedWindow(req.HoursOld); win != "" {
			params.Set("filters.postedDate", win)
		}

		resp, err := d.sess.Get(ctx, d.baseURL, params, nil)
		if err != nil {
			return records, fmt.Errorf("dice page %d: %w", page, err)
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden {
			resp.Body.Close()
			d.logger.Printf("status %d on page %d, terminating harvest early", resp.StatusCode, page)
			return records, fmt.Errorf("dice status %d: %w", resp.StatusCode, ErrBlocked)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 400 {
			resp.Body.Close()
			return records, fmt.Errorf("dice response status %d", resp.StatusCode)
		}

		var payload diceResponse
		err = json.NewDecoder(resp.Body).Decode(&payload)
		resp.Body.Close()
		if err != nil {
			return records, fmt.Errorf("dice decode page %d: %w", page, err)
		}
		if len(payload.Data) == 0 {
			break
		}
		pageCount = payload.Meta.PageCount

		for _, job := range payload.Data {
			if job.ID == "" || seen[job.ID] {
				continue
			}
			seen[job.ID] = true
			records = append(records, d.mapJob(job, req.Format))
			if len(records) >= req.ResultsWanted {
				break
			}
		}

		if len(records) >= req.ResultsWanted {
			break
		}
		if pageCount > 0 && page >= pageCount {
			break
		}
		page++
		if err := d.sess.Pace(ctx); err != nil {
			return records, nil
		}
	}

	if len(records) > req.ResultsWanted {
		records = records[:req.ResultsWanted]
	}
	return records, nil
}

func (d *Dice) mapJob(job diceJob, format model.DescriptionFormat) model.ListingRecord {
	jobURL := job.DetailsPageURL
	if jobURL == "" {
		jobURL = fmt.Sprintf("%s/job-detail/%s", d.siteURL, job.ID)
	}

	var location *model.Location
	if job.JobLocation.DisplayName != "" {
		location = parseCityStateCountry(job.JobLocation.DisplayName)
	}

	plain := HTMLToText(job.Summary)
	description := RenderDescription(job.Summary, format)

	var posted *time.Time
	if job.PostedDate != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, job.PostedDate); err == nil {
				posted = &t
				break
			}
		}
	}

	jobTypes := diceJobTypes(job.EmploymentType)
	if jobTypes == nil {
		jobTypes = ExtractJobTypes(plain)
	}

	remote := job.IsRemote || IsRemoteText(job.Title, plain, job.JobLocation.DisplayName)
	return model.ListingRecord{
		ID:           "dc-" + job.ID,
		Source:       SourceDice,
		Title:        orNA(job.Title),
		Company:      orNA(job.CompanyName),
		Location:     location,
		JobURL:       jobURL,
		Description:  description,
		Compensation: ExtractSalary(job.Salary),
		DatePosted:   posted,
		IsRemote:     &remote,
		JobTypes:     jobTypes,
		Emails:       ExtractEmails(plain),
		WorkFromHome: InferWorkFromHome(job.JobLocation.DisplayName, job.Title, plain),
	}
}

// diceEmploymentType maps the request filter onto the API's vocabulary.
func diceEmploymentType(jt model.JobType) string {
	switch jt {
	case model.JobTypeContract:
		return "CONTRACTS"
	case model.JobTypeFullTime:
		return "FULLTIME"
	case model.JobTypePartTime:
		return "PARTTIME"
	}
	return ""
}

// dicePostedWindow maps an hour window onto the API's coarse recency
// buckets, always picking the tightest bucket that covers the window.
func dicePostedWindow(hoursOld int) string {
	switch {
	case hoursOld <= 0:
		return ""
	case hoursOld <= 24:
		return "ONE"
	case hoursOld <= 7*24:
		return "SEVEN"
	default:
		return "THIRTY"
	}
}

func diceJobTypes(employmentType string) []model.JobType {
	switch employmentType {
	case "CONTRACTS", "Contract":
		return []model.JobType{model.JobTypeContract}
	case "FULLTIME", "Full-time":
		return []model.JobType{model.JobTypeFullTime}
	case "PARTTIME", "Part-time":
		return []model.JobType{model.JobTypePartTime}
	}
	return nil
}
