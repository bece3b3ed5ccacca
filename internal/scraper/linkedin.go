package scraper

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/semaphore"

	"github.com/alokgarg003/new-job-Apply/internal/model"
	"github.com/alokgarg003/new-job-Apply/internal/session"
)

const (
	linkedInBaseURL    = "https://www.linkedin.com"
	linkedInSearchPath = "/jobs-guest/jobs/api/seeMoreJobPostings/search"
	// Hard ceiling on the start offset; the guest endpoint serves nothing
	// beyond it and anomalous responses must not crawl unbounded.
	linkedInMaxStart = 1000

	defaultLinkedInJobsPerPage = 25
	defaultDetailWorkers       = 5
)

var applyURLRe = regexp.MustCompile(`\?url=([^"&]+)`)

// LinkedIn harvests the guest jobs endpoint with offset-based pagination
// and markup-tree parsing. An optional secondary fetch per item retrieves
// the full description, capped by a fixed concurrency ceiling.
type LinkedIn struct {
	baseURL          string
	sess             *session.Session
	jobsPerPage      int
	fetchDescription bool
	detailWorkers    int64
	logger           *log.Logger
}

// NewLinkedIn builds the adapter and its dedicated session.
func NewLinkedIn(cfg Config) (*LinkedIn, error) {
	sc := cfg.Session
	if sc.Delay == 0 {
		sc.Delay = 3 * time.Second
	}
	if sc.BandDelay == 0 {
		sc.BandDelay = 4 * time.Second
	}
	// Session continuity is fingerprinted as bot behaviour here.
	sc.ClearCookies = true
	if sc.UserAgent == "" {
		sc.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if sc.Headers == nil {
		sc.Headers = map[string]string{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
		}
	}
	sc.Logger = cfg.Logger
	sess, err := session.New(sc)
	if err != nil {
		return nil, fmt.Errorf("linkedin session: %w", err)
	}

	jobsPerPage := cfg.JobsPerPage
	if jobsPerPage <= 0 {
		jobsPerPage = defaultLinkedInJobsPerPage
	}
	workers := cfg.DetailWorkers
	if workers <= 0 {
		workers = defaultDetailWorkers
	}
	base := cfg.BaseURL
	if base == "" {
		base = linkedInBaseURL
	}

	return &LinkedIn{
		baseURL:          base,
		sess:             sess,
		jobsPerPage:      jobsPerPage,
		fetchDescription: cfg.FetchDescription,
		detailWorkers:    workers,
		logger:           cfg.logger("[linkedin] "),
	}, nil
}

func (l *LinkedIn) Name() string { return SourceLinkedIn }

// Scrape pages through the search results until the quota is met, a page
// comes back empty, the source blocks us, or the start ceiling is hit.
// Partial results are always returned alongside any error.
func (l *LinkedIn) Scrape(ctx context.Context, req model.SearchRequest) ([]model.ListingRecord, error) {
	var records []model.ListingRecord
	seen := map[string]bool{}
	start := (req.Offset / l.jobsPerPage) * l.jobsPerPage

	for len(records) < req.ResultsWanted && start < linkedInMaxStart {
		params := url.Values{}
		params.Set("keywords", req.SearchTerm())
		if req.Location != "" {
			params.Set("location", req.Location)
		}
		if req.RemoteOnly {
			params.Set("f_WT", "2")
		}
		if code := linkedInJobTypeCode(req.JobType); code != "" {
			params.Set("f_JT", code)
		}
		if req.HoursOld > 0 {
			params.Set("f_TPR", fmt.Sprintf("r%d", req.HoursOld*3600))
		}
		params.Set("pageNum", "0")
		params.Set("start", strconv.Itoa(start))

		resp, err := l.sess.Get(ctx, l.baseURL+linkedInSearchPath, params, nil)
		if err != nil {
			return records, fmt.Errorf("linkedin page at start=%d: %w", start, err)
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return records, fmt.Errorf("linkedin read body: %w", readErr)
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden {
			l.logger.Printf("status %d at start=%d, terminating harvest early", resp.StatusCode, start)
			return records, fmt.Errorf("linkedin status %d: %w", resp.StatusCode, ErrBlocked)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 400 {
			return records, fmt.Errorf("linkedin response status %d", resp.StatusCode)
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
		if err != nil {
			return records, fmt.Errorf("linkedin parse: %w", err)
		}

		cards := doc.Find("div.base-search-card")
		if cards.Length() == 0 {
			// Markup fallback: any anchor that looks like a job link.
			cards = doc.Find("a[href*='/jobs/view/']").Parent()
		}
		if cards.Length() == 0 {
			break
		}

		pageCount := 0
		cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
			pageCount++
			rec, ok := l.parseCard(card)
			if !ok {
				return true // item-level parse failure: skip, continue page
			}
			if seen[rec.ID] {
				return true
			}
			seen[rec.ID] = true
			records = append(records, rec)
			return len(records) < req.ResultsWanted
		})

		if len(records) >= req.ResultsWanted {
			break
		}
		start += pageCount
		if err := l.sess.Pace(ctx); err != nil {
			// Run cancelled: the current page is complete, return partials.
			return records, nil
		}
	}

	if len(records) > req.ResultsWanted {
		records = records[:req.ResultsWanted]
	}
	if l.fetchDescription {
		l.fetchDetails(ctx, records, req.Format)
	}
	return records, nil
}

// parseCard maps one result card to a record. Extraction degrades from the
// structured card classes to bare markup heuristics; the card is dropped
// only when no job URL can be recovered at any tier.
func (l *LinkedIn) parseCard(card *goquery.Selection) (model.ListingRecord, bool) {
	href, _ := card.Find("a.base-card__full-link").Attr("href")
	if href == "" {
		href, _ = card.Find("a[href*='/jobs/view/']").Attr("href")
	}
	if href == "" {
		return model.ListingRecord{}, false
	}
	jobURL := CanonicalURL(href)
	id := jobURL[strings.LastIndex(jobURL, "-")+1:]
	if id == "" || id == jobURL {
		id = jobURL[strings.LastIndex(jobURL, "/")+1:]
	}

	title := strings.TrimSpace(card.Find("span.sr-only").First().Text())
	if title == "" {
		title = strings.TrimSpace(card.Find("h3").First().Text())
	}
	if title == "" {
		// Raw-text tier: first non-empty line of the card.
		for _, line := range strings.Split(card.Text(), "\n") {
			if t := strings.TrimSpace(line); t != "" {
				title = t
				break
			}
		}
	}
	if title == "" {
		title = "N/A"
	}

	companySel := card.Find("h4.base-search-card__subtitle a")
	company := strings.TrimSpace(companySel.Text())
	companyURL := ""
	if href, ok := companySel.Attr("href"); ok {
		companyURL = CanonicalURL(href)
	}
	if company == "" {
		company = strings.TrimSpace(card.Find("h4").First().Text())
	}

	var location *model.Location
	locText := strings.TrimSpace(card.Find("span.job-search-card__location").Text())
	if locText != "" {
		location = parseCityStateCountry(locText)
	}

	var posted *time.Time
	if dt, ok := card.Find("time").Attr("datetime"); ok {
		if t, err := time.Parse("2006-01-02", dt); err == nil {
			posted = &t
		}
	}

	var comp *model.Compensation
	if salary := strings.TrimSpace(card.Find("span.job-search-card__salary-info").Text()); salary != "" {
		comp = ExtractSalary(salary)
	}

	remote := IsRemoteText(title, locText)
	return model.ListingRecord{
		ID:           "li-" + id,
		Source:       SourceLinkedIn,
		Title:        title,
		Company:      company,
		CompanyURL:   companyURL,
		Location:     location,
		JobURL:       jobURL,
		DatePosted:   posted,
		Compensation: comp,
		IsRemote:     &remote,
	}, true
}

// fetchDetails issues one request per record lacking a description. The
// semaphore keeps the number of in-flight fetches at the configured
// ceiling regardless of quota size; a failed fetch leaves the record as
// collected from the card.
func (l *LinkedIn) fetchDetails(ctx context.Context, records []model.ListingRecord, format model.DescriptionFormat) {
	sem := semaphore.NewWeighted(l.detailWorkers)
	var wg sync.WaitGroup
	for i := range records {
		if records[i].Description != "" {
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(rec *model.ListingRecord) {
			defer wg.Done()
			defer sem.Release(1)
			l.fetchDetail(ctx, rec, format)
		}(&records[i])
	}
	wg.Wait()
}

func (l *LinkedIn) fetchDetail(ctx context.Context, rec *model.ListingRecord, format model.DescriptionFormat) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := l.sess.Get(ctx, rec.JobURL, nil, nil)
	if err != nil {
		l.logger.Printf("detail fetch %s: %v", rec.JobURL, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		l.logger.Printf("detail fetch %s: status %d", rec.JobURL, resp.StatusCode)
		return
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return
	}
	html := string(body)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return
	}
	markup, err := doc.Find("div.show-more-less-html__markup").Html()
	if err != nil || markup == "" {
		return
	}
	plain := HTMLToText(markup)
	rec.Description = RenderDescription(markup, format)
	rec.Emails = ExtractEmails(plain)
	rec.JobTypes = ExtractJobTypes(plain)
	if lvl := strings.TrimSpace(doc.Find("span.description__job-criteria-text").First().Text()); lvl != "" {
		rec.JobLevel = lvl
	}
	if g := applyURLRe.FindStringSubmatch(html); g != nil {
		if direct, err := url.QueryUnescape(g[1]); err == nil {
			rec.JobURLDirect = CanonicalURL(direct)
		}
	}
}

func linkedInJobTypeCode(jt model.JobType) string {
	switch jt {
	case model.JobTypeFullTime:
		return "F"
	case model.JobTypePartTime:
		return "P"
	case model.JobTypeContract:
		return "C"
	case model.JobTypeTemporary:
		return "T"
	case model.JobTypeInternship:
		return "I"
	}
	return ""
}

// parseCityStateCountry splits "City, State, Country" labels, tolerating
// one- and two-part forms.
func parseCityStateCountry(s string) *model.Location {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	loc := &model.Location{}
	switch len(parts) {
	case 1:
		loc.City = parts[0]
	case 2:
		loc.City, loc.State = parts[0], parts[1]
	default:
		loc.City, loc.State, loc.Country = parts[0], parts[1], parts[len(parts)-1]
	}
	return loc
}
