package scraper

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/alokgarg003/new-job-Apply/internal/model"
)

var (
	emailRe  = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	salaryRe = regexp.MustCompile(`(?i)\$([\d,.]+)\s*(?:-|—|to)\s*\$([\d,.]+)`)
	daysRe   = regexp.MustCompile(`(\d+)\+?\s*day`)
	tagRe    = regexp.MustCompile(`<[^>]*>`)
	spaceRe  = regexp.MustCompile(`[ \t]+`)
	blankRe  = regexp.MustCompile(`\n{3,}`)

	jobTypeRes = map[model.JobType]*regexp.Regexp{
		model.JobTypeFullTime:   regexp.MustCompile(`(?i)full[-\s]?time`),
		model.JobTypePartTime:   regexp.MustCompile(`(?i)part[-\s]?time`),
		model.JobTypeInternship: regexp.MustCompile(`(?i)internship`),
		model.JobTypeContract:   regexp.MustCompile(`(?i)contract`),
	}
)

// ExtractEmails pulls contact addresses out of free text.
func ExtractEmails(text string) []string {
	if text == "" {
		return nil
	}
	return emailRe.FindAllString(text, -1)
}

// ExtractSalary parses a "$X - $Y" range out of description text and
// infers the interval from the magnitude of the lower bound.
func ExtractSalary(text string) *model.Compensation {
	g := salaryRe.FindStringSubmatch(text)
	if g == nil {
		return nil
	}
	min, ok1 := parseAmount(g[1])
	max, ok2 := parseAmount(g[2])
	if !ok1 || !ok2 {
		return nil
	}
	interval := model.IntervalYearly
	switch {
	case min < 350:
		interval = model.IntervalHourly
	case min < 30000:
		interval = model.IntervalMonthly
	}
	return &model.Compensation{
		Interval:  interval,
		MinAmount: min,
		MaxAmount: max,
		Currency:  "USD",
	}
}

func parseAmount(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(strings.Trim(s, "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ExtractJobTypes detects employment-type vocabulary in a description.
func ExtractJobTypes(text string) []model.JobType {
	if text == "" {
		return nil
	}
	var out []model.JobType
	for _, jt := range []model.JobType{
		model.JobTypeFullTime, model.JobTypePartTime,
		model.JobTypeContract, model.JobTypeInternship,
	} {
		if jobTypeRes[jt].MatchString(text) {
			out = append(out, jt)
		}
	}
	return out
}

// IsRemoteText reports whether any of the given text fragments carries
// remote-work vocabulary.
func IsRemoteText(parts ...string) bool {
	full := strings.ToLower(strings.Join(parts, " "))
	for _, k := range []string{"remote", "work from home", "wfh"} {
		if strings.Contains(full, k) {
			return true
		}
	}
	return false
}

// InferWorkFromHome classifies the arrangement from location label, title
// and description. Empty when nothing can be inferred.
func InferWorkFromHome(locLabel, title, description string) string {
	full := strings.ToLower(locLabel + " " + title + " " + description)
	switch {
	case strings.Contains(full, "hybrid"):
		return "Hybrid"
	case strings.Contains(full, "remote") || strings.Contains(full, "work from home") ||
		strings.Contains(full, "wfh"):
		return "Remote"
	case strings.Contains(strings.ToLower(description), "work from office"):
		return "Work from office"
	}
	return ""
}

// HTMLToText converts markup to scoring-ready plain text. Tree-based
// extraction first; a tag-stripping pass if the markup will not parse.
func HTMLToText(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	var text string
	if err == nil {
		doc.Find("br").ReplaceWithHtml("\n")
		doc.Find("script, style").Remove()
		text = doc.Text()
	} else {
		text = tagRe.ReplaceAllString(html, " ")
	}
	text = spaceRe.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	text = strings.Join(lines, "\n")
	text = blankRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// HTMLToMarkdown converts markup to markdown, preserving emphasis, lists
// and links. Unparseable markup degrades to the plain-text conversion.
func HTMLToMarkdown(html string) string {
	if html == "" {
		return ""
	}
	out, err := md.NewConverter("", true, nil).ConvertString(html)
	if err != nil {
		return HTMLToText(html)
	}
	return strings.TrimSpace(out)
}

// RenderDescription renders markup in the requested output format.
// Scoring always runs on the plain-text view regardless.
func RenderDescription(html string, format model.DescriptionFormat) string {
	if format == model.FormatMarkdown {
		return HTMLToMarkdown(html)
	}
	return HTMLToText(html)
}

// CanonicalURL strips query and fragment so the same listing reached via
// different tracking parameters dedups to one key.
func CanonicalURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// ParseRelativeDate resolves labels like "3 days ago", "Today" or
// "Just now" against now. Nil when the label carries no date.
func ParseRelativeDate(label string, now time.Time) *time.Time {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return nil
	}
	if strings.Contains(l, "today") || strings.Contains(l, "just now") ||
		strings.Contains(l, "few hours") {
		d := now.Truncate(24 * time.Hour)
		return &d
	}
	if strings.Contains(l, "ago") {
		if g := daysRe.FindStringSubmatch(l); g != nil {
			n, err := strconv.Atoi(g[1])
			if err == nil {
				d := now.AddDate(0, 0, -n).Truncate(24 * time.Hour)
				return &d
			}
		}
	}
	return nil
}
