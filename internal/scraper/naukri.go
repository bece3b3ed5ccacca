package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alokgarg003/new-job-Apply/internal/model"
	"github.com/alokgarg003/new-job-Apply/internal/session"
)

const (
	naukriBaseURL = "https://www.naukri.com/jobapi/v3/search"
	naukriSiteURL = "https://www.naukri.com"

	defaultNaukriJobsPerPage = 20
	defaultNaukriMaxPages    = 50
)

var naukriSalaryRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*-\s*(\d+(?:\.\d+)?)\s*(Lacs|Lakh|Cr)\s*(P\.A\.)?`)

// Naukri harvests the public search API with page-number pagination and
// structured JSON field extraction.
type Naukri struct {
	baseURL     string
	siteURL     string
	sess        *session.Session
	jobsPerPage int
	maxPages    int
	logger      *log.Logger
}

// NewNaukri builds the adapter and its dedicated session.
func NewNaukri(cfg Config) (*Naukri, error) {
	sc := cfg.Session
	if sc.Delay == 0 {
		sc.Delay = 2500 * time.Millisecond
	}
	if sc.BandDelay == 0 {
		sc.BandDelay = 3500 * time.Millisecond
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
			"appid":           "109",
			"systemid":        "Naukri",
		}
	}
	sc.Logger = cfg.Logger
	sess, err := session.New(sc)
	if err != nil {
		return nil, fmt.Errorf("naukri session: %w", err)
	}

	jobsPerPage := cfg.JobsPerPage
	if jobsPerPage <= 0 {
		jobsPerPage = defaultNaukriJobsPerPage
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultNaukriMaxPages
	}
	base := cfg.BaseURL
	site := naukriSiteURL
	if base == "" {
		base = naukriBaseURL
	} else {
		site = base
	}

	return &Naukri{
		baseURL:     base,
		siteURL:     site,
		sess:        sess,
		jobsPerPage: jobsPerPage,
		maxPages:    maxPages,
		logger:      cfg.logger("[naukri] "),
	}, nil
}

func (n *Naukri) Name() string { return SourceNaukri }

// API response shapes: only the fields the adapter maps.
type naukriResponse struct {
	JobDetails []naukriJob `json:"jobDetails"`
}

type naukriJob struct {
	JobID          string              `json:"jobId"`
	Title          string              `json:"title"`
	CompanyName    string              `json:"companyName"`
	StaticURL      string              `json:"staticUrl"`
	JDURL          string              `json:"jdURL"`
	JobDescription string              `json:"jobDescription"`
	TagsAndSkills  string              `json:"tagsAndSkills"`
	ExperienceText string              `json:"experienceText"`
	FooterLabel    string              `json:"footerPlaceholderLabel"`
	CreatedDate    int64               `json:"createdDate"` // epoch millis
	Vacancy        int                 `json:"vacancy"`
	Placeholders   []naukriPlaceholder `json:"placeholders"`
	AmbitionBox    *naukriAmbitionBox  `json:"ambitionBoxData"`
}

type naukriPlaceholder struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

type naukriAmbitionBox struct {
	AggregateRating string `json:"AggregateRating"`
	ReviewsCount    int    `json:"ReviewsCount"`
}

// Scrape increments the page counter until the quota is met, a page comes
// back empty, the source blocks us, or the page ceiling is reached.
func (n *Naukri) Scrape(ctx context.Context, req model.SearchRequest) ([]model.ListingRecord, error) {
	var records []model.ListingRecord
	seen := map[string]bool{}
	page := req.Offset/n.jobsPerPage + 1

	for len(records) < req.ResultsWanted && page <= n.maxPages {
		params := url.Values{}
		params.Set("noOfResults", strconv.Itoa(n.jobsPerPage))
		params.Set("urlType", "search_by_keyword")
		params.Set("searchType", "adv")
		params.Set("keyword", req.SearchTerm())
		params.Set("pageNo", strconv.Itoa(page))
		params.Set("src", "jobsearchDesk")
		if req.Location != "" {
			params.Set("location", req.Location)
		}
		if req.RemoteOnly {
			params.Set("remote", "true")
		}
		if req.HoursOld > 0 {
			// The API filters in whole days; round up so sub-day windows
			// still request the tightest filter instead of none.
			params.Set("days", strconv.Itoa((req.HoursOld+23)/24))
		}

		resp, err := n.sess.Get(ctx, n.baseURL, params, nil)
		if err != nil {
			return records, fmt.Errorf("naukri page %d: %w", page, err)
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden {
			resp.Body.Close()
			n.logger.Printf("status %d on page %d, terminating harvest early", resp.StatusCode, page)
			return records, fmt.Errorf("naukri status %d: %w", resp.StatusCode, ErrBlocked)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 400 {
			resp.Body.Close()
			return records, fmt.Errorf("naukri response status %d", resp.StatusCode)
		}

		var payload naukriResponse
		err = json.NewDecoder(resp.Body).Decode(&payload)
		resp.Body.Close()
		if err != nil {
			return records, fmt.Errorf("naukri decode page %d: %w", page, err)
		}
		if len(payload.JobDetails) == 0 {
			break
		}

		for _, job := range payload.JobDetails {
			if job.JobID == "" || seen[job.JobID] {
				continue
			}
			seen[job.JobID] = true
			records = append(records, n.mapJob(job, req.Format))
			if len(records) >= req.ResultsWanted {
				break
			}
		}

		if len(records) >= req.ResultsWanted {
			break
		}
		page++
		if err := n.sess.Pace(ctx); err != nil {
			return records, nil
		}
	}

	if len(records) > req.ResultsWanted {
		records = records[:req.ResultsWanted]
	}
	return records, nil
}

func (n *Naukri) mapJob(job naukriJob, format model.DescriptionFormat) model.ListingRecord {
	jobURL := n.siteURL + job.JDURL
	if job.JDURL == "" {
		jobURL = fmt.Sprintf("%s/job/%s", n.siteURL, job.JobID)
	}

	companyURL := ""
	if job.StaticURL != "" {
		companyURL = n.siteURL + job.StaticURL
	}

	locLabel := placeholderLabel(job.Placeholders, "location")
	var location *model.Location
	if locLabel != "" {
		location = parseCityStateCountry(locLabel)
		location.Country = "India"
	}

	plain := HTMLToText(job.JobDescription)
	description := RenderDescription(job.JobDescription, format)
	posted := n.parseDate(job.FooterLabel, job.CreatedDate)

	var skills []string
	if job.TagsAndSkills != "" {
		for _, s := range strings.Split(job.TagsAndSkills, ",") {
			if s = strings.TrimSpace(s); s != "" {
				skills = append(skills, s)
			}
		}
	}

	rating := 0.0
	reviews := 0
	if job.AmbitionBox != nil {
		if v, err := strconv.ParseFloat(job.AmbitionBox.AggregateRating, 64); err == nil {
			rating = v
		}
		reviews = job.AmbitionBox.ReviewsCount
	}

	remote := IsRemoteText(job.Title, plain, locLabel)
	return model.ListingRecord{
		ID:              "nk-" + job.JobID,
		Source:          SourceNaukri,
		Title:           orNA(job.Title),
		Company:         orNA(job.CompanyName),
		CompanyURL:      companyURL,
		Location:        location,
		JobURL:          jobURL,
		Description:     description,
		Compensation:    parseNaukriSalary(placeholderLabel(job.Placeholders, "salary")),
		DatePosted:      posted,
		IsRemote:        &remote,
		JobTypes:        ExtractJobTypes(plain),
		Emails:          ExtractEmails(plain),
		Skills:          skills,
		ExperienceRange: job.ExperienceText,
		CompanyRating:   rating,
		CompanyReviews:  reviews,
		VacancyCount:    job.Vacancy,
		WorkFromHome:    InferWorkFromHome(locLabel, job.Title, plain),
	}
}

func (n *Naukri) parseDate(label string, createdMillis int64) *time.Time {
	if t := ParseRelativeDate(label, time.Now()); t != nil {
		return t
	}
	if createdMillis > 0 {
		t := time.UnixMilli(createdMillis)
		return &t
	}
	return nil
}

func placeholderLabel(placeholders []naukriPlaceholder, typ string) string {
	for _, p := range placeholders {
		if p.Type == typ {
			return p.Label
		}
	}
	return ""
}

// parseNaukriSalary handles "X - Y Lacs P.A." style labels. "Not
// disclosed" and anything else unparseable yields nil.
func parseNaukriSalary(label string) *model.Compensation {
	g := naukriSalaryRe.FindStringSubmatch(label)
	if g == nil {
		return nil
	}
	min, err1 := strconv.ParseFloat(g[1], 64)
	max, err2 := strconv.ParseFloat(g[2], 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	switch strings.ToLower(g[3]) {
	case "lacs", "lakh":
		min *= 100000
		max *= 100000
	case "cr":
		min *= 10000000
		max *= 10000000
	}
	return &model.Compensation{
		Interval:  model.IntervalYearly,
		MinAmount: min,
		MaxAmount: max,
		Currency:  "INR",
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
