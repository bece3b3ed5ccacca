package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/alokgarg003/new-job-Apply/internal/model"
	"github.com/alokgarg003/new-job-Apply/internal/session"
)

const (
	googleBaseURL = "https://www.google.com"
	// The jobs widget streams follow-up pages through this async endpoint,
	// keyed by an opaque forward cursor.
	googleCursorPath = "/async/callback:550"
	googleSearchPath = "/search"

	defaultGoogleMaxPages = 20

	// googleJobsKey prefixes the embedded JSON array of job cards inside
	// both the initial page and every cursor response.
	googleJobsKey = `"520084652":`
)

var cursorRe = regexp.MustCompile(`data-async-fc="([^"]+)"`)

// Google harvests the jobs widget with cursor-based pagination: the
// initial search page embeds the first batch plus a continuation token;
// each cursor fetch yields the next batch and the next token, until no
// token is returned.
type Google struct {
	baseURL  string
	sess     *session.Session
	maxPages int
	logger   *log.Logger
}

// NewGoogle builds the adapter and its dedicated session.
func NewGoogle(cfg Config) (*Google, error) {
	sc := cfg.Session
	if sc.Delay == 0 {
		sc.Delay = 3 * time.Second
	}
	if sc.BandDelay == 0 {
		sc.BandDelay = 2 * time.Second
	}
	sc.ClearCookies = true
	if sc.UserAgent == "" {
		sc.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	sc.Logger = cfg.Logger
	sess, err := session.New(sc)
	if err != nil {
		return nil, fmt.Errorf("google session: %w", err)
	}

	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultGoogleMaxPages
	}
	base := cfg.BaseURL
	if base == "" {
		base = googleBaseURL
	}

	return &Google{
		baseURL:  base,
		sess:     sess,
		maxPages: maxPages,
		logger:   cfg.logger("[google] "),
	}, nil
}

func (g *Google) Name() string { return SourceGoogle }

// Scrape fetches the initial page, then follows the forward cursor until
// it disappears, the quota is met, or the page ceiling is reached.
func (g *Google) Scrape(ctx context.Context, req model.SearchRequest) ([]model.ListingRecord, error) {
	query := req.SearchTerm() + " job"
	if req.RemoteOnly {
		query += " remote"
	}
	if req.Location != "" {
		query += " near " + req.Location
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("udm", "8")

	html, err := g.fetch(ctx, g.baseURL+googleSearchPath, params)
	if err != nil {
		return nil, fmt.Errorf("google initial page: %w", err)
	}

	var records []model.ListingRecord
	seen := map[string]bool{}
	appendBatch := func(batch []model.ListingRecord) {
		for _, rec := range batch {
			key := CanonicalURL(rec.JobURL)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			records = append(records, rec)
		}
	}

	appendBatch(g.parseJobs(html))
	cursor := extractCursor(html)

	for page := 1; cursor != "" && len(records) < req.ResultsWanted && page < g.maxPages; page++ {
		if err := g.sess.Pace(ctx); err != nil {
			return records, nil
		}
		cursorParams := url.Values{}
		cursorParams.Set("fc", cursor)
		cursorParams.Set("fcv", "3")
		body, err := g.fetch(ctx, g.baseURL+googleCursorPath, cursorParams)
		if err != nil {
			return records, fmt.Errorf("google cursor page %d: %w", page, err)
		}
		batch := g.parseJobs(body)
		if len(batch) == 0 {
			break
		}
		appendBatch(batch)
		// Terminates the loop when the response carries no further token.
		cursor = extractCursor(body)
	}

	if len(records) > req.ResultsWanted {
		records = records[:req.ResultsWanted]
	}
	return records, nil
}

func (g *Google) fetch(ctx context.Context, rawURL string, params url.Values) (string, error) {
	resp, err := g.sess.Get(ctx, rawURL, params, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden {
		return "", fmt.Errorf("status %d: %w", resp.StatusCode, ErrBlocked)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return "", fmt.Errorf("response status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// parseJobs extracts every embedded job-card array from a page. A payload
// that fails to decode is skipped; a page where nothing decodes simply
// yields no records (structural failure surfaces as an empty batch).
func (g *Google) parseJobs(body string) []model.ListingRecord {
	var records []model.ListingRecord
	rest := body
	for {
		idx := strings.Index(rest, googleJobsKey)
		if idx == -1 {
			break
		}
		rest = rest[idx+len(googleJobsKey):]
		var cards []any
		if err := json.NewDecoder(strings.NewReader(rest)).Decode(&cards); err != nil {
			continue
		}
		for _, c := range cards {
			card, ok := c.([]any)
			if !ok {
				continue
			}
			if rec, ok := g.parseCard(card); ok {
				records = append(records, rec)
			}
		}
	}
	return records
}

// parseCard reads the positional card layout: title, company and location
// lead the array, the URL nests at index 3, the posted-age label sits at
// 12 and the description at 19.
func (g *Google) parseCard(card []any) (model.ListingRecord, bool) {
	title := stringAt(card, 0)
	company := stringAt(card, 1)
	locLabel := stringAt(card, 2)
	description := stringAt(card, 19)

	jobURL := ""
	if len(card) > 3 {
		if links, ok := card[3].([]any); ok && len(links) > 0 {
			if first, ok := links[0].([]any); ok && len(first) > 0 {
				jobURL, _ = first[0].(string)
			}
		}
	}
	if jobURL == "" || title == "" {
		return model.ListingRecord{}, false
	}

	posted := ParseRelativeDate(stringAt(card, 12), time.Now())
	dateTag := "no-date"
	if posted != nil {
		dateTag = posted.Format("2006-01-02")
	}

	var location *model.Location
	if strings.Contains(locLabel, ",") {
		location = parseCityStateCountry(locLabel)
	} else if locLabel != "" {
		location = &model.Location{City: locLabel}
	}

	remote := IsRemoteText(title, locLabel, description)
	return model.ListingRecord{
		ID:          fmt.Sprintf("go-%s-%s-%s", company, title, dateTag),
		Source:      SourceGoogle,
		Title:       title,
		Company:     company,
		Location:    location,
		JobURL:      jobURL,
		Description: description,
		DatePosted:  posted,
		IsRemote:    &remote,
		JobTypes:    ExtractJobTypes(description),
		Emails:      ExtractEmails(description),
	}, true
}

func extractCursor(body string) string {
	if g := cursorRe.FindStringSubmatch(body); g != nil {
		return g[1]
	}
	return ""
}

func stringAt(card []any, i int) string {
	if len(card) > i {
		if s, ok := card[i].(string); ok {
			return s
		}
	}
	return ""
}
