// Package output writes harvest results as CSV: one file per run plus an
// aggregate master that accumulates across runs.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alokgarg003/new-job-Apply/internal/model"
)

// Columns is the fixed output column order. Every row carries every
// column; absent optional fields render as empty cells so the schema
// stays stable across heterogeneous sources.
var Columns = []string{
	"id", "source", "job_url", "job_url_direct", "title", "company",
	"location", "date_posted", "job_type", "interval", "min_amount",
	"max_amount", "currency", "is_remote", "job_level", "emails",
	"company_url", "company_industry", "skills", "experience_range",
	"company_rating", "company_reviews_count", "vacancy_count",
	"work_from_home_type", "match_score", "match_tier", "key_skills",
	"missing_skills", "match_reasons", "description",
}

// Row projects one record into the fixed column order.
func Row(rec model.ListingRecord) []string {
	location := ""
	if rec.Location != nil {
		location = rec.Location.Display()
	}
	datePosted := ""
	if rec.DatePosted != nil {
		datePosted = rec.DatePosted.Format("2006-01-02")
	}
	jobTypes := make([]string, len(rec.JobTypes))
	for i, jt := range rec.JobTypes {
		jobTypes[i] = string(jt)
	}
	interval, minAmount, maxAmount, currency := "", "", "", ""
	if rec.Compensation != nil {
		interval = string(rec.Compensation.Interval)
		minAmount = formatAmount(rec.Compensation.MinAmount)
		maxAmount = formatAmount(rec.Compensation.MaxAmount)
		currency = rec.Compensation.Currency
	}
	isRemote := ""
	if rec.IsRemote != nil {
		isRemote = strconv.FormatBool(*rec.IsRemote)
	}
	rating := ""
	if rec.CompanyRating > 0 {
		rating = strconv.FormatFloat(rec.CompanyRating, 'f', 1, 64)
	}
	reviews := ""
	if rec.CompanyReviews > 0 {
		reviews = strconv.Itoa(rec.CompanyReviews)
	}
	vacancies := ""
	if rec.VacancyCount > 0 {
		vacancies = strconv.Itoa(rec.VacancyCount)
	}
	score, tier, keySkills, missing, reasons := "", "", "", "", ""
	if rec.Match != nil {
		score = strconv.Itoa(rec.Match.Score)
		tier = string(rec.Match.Tier)
		keySkills = strings.Join(rec.Match.Skills, ", ")
		missing = strings.Join(rec.Match.MissingSkills, ", ")
		reasons = rec.Match.WhyFits()
	}

	return []string{
		rec.ID, rec.Source, rec.JobURL, rec.JobURLDirect, rec.Title,
		rec.Company, location, datePosted, strings.Join(jobTypes, ", "),
		interval, minAmount, maxAmount, currency, isRemote, rec.JobLevel,
		strings.Join(rec.Emails, ", "), rec.CompanyURL, rec.CompanyIndustry,
		strings.Join(rec.Skills, ", "), rec.ExperienceRange, rating,
		reviews, vacancies, rec.WorkFromHome, score, tier, keySkills,
		missing, reasons, rec.Description,
	}
}

func formatAmount(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Write renders header plus one row per record.
func Write(w io.Writer, records []model.ListingRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(Row(rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes a per-run CSV, creating parent-less paths as given.
func WriteFile(path string, records []model.ListingRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := Write(f, records); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// AppendMaster folds records into the aggregate master CSV, deduplicating
// on job URL and id with a keep-latest strategy: a re-harvested listing
// replaces its older row. Returns how many rows were added vs. replaced.
func AppendMaster(path string, records []model.ListingRecord) (added, replaced int, err error) {
	existing, err := readMaster(path)
	if err != nil {
		return 0, 0, err
	}

	index := make(map[string]int, len(existing))
	keyOf := func(jobURL, id string) string { return jobURL + "|" + id }
	for i, row := range existing {
		index[keyOf(col(row, "job_url"), col(row, "id"))] = i
	}

	for _, rec := range records {
		row := Row(rec)
		key := keyOf(rec.JobURL, rec.ID)
		if i, ok := index[key]; ok {
			existing[i] = row
			replaced++
			continue
		}
		index[key] = len(existing)
		existing = append(existing, row)
		added++
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, 0, fmt.Errorf("create master %s: %w", path, err)
	}
	defer f.Close()
	cw := csv.NewWriter(f)
	if err := cw.Write(Columns); err != nil {
		return 0, 0, err
	}
	if err := cw.WriteAll(existing); err != nil {
		return 0, 0, err
	}
	return added, replaced, nil
}

func readMaster(path string) ([][]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open master %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read master %s: %w", path, err)
	}
	if len(rows) > 0 {
		rows = rows[1:] // drop header
	}
	return rows, nil
}

func col(row []string, name string) string {
	for i, c := range Columns {
		if c == name && i < len(row) {
			return row[i]
		}
	}
	return ""
}
