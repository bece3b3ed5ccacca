// Package match implements the deterministic scoring engine. Evaluate is a
// pure function of (text, Config): identical input always yields an
// identical MatchResult, so results can be re-scored without re-scraping.
package match

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/alokgarg003/new-job-Apply/internal/model"
)

// Matcher scores free text against a fixed candidate profile.
type Matcher struct {
	cfg     Config
	exclude []excludePattern
	expRe   *regexp.Regexp
}

type excludePattern struct {
	phrase string
	re     *regexp.Regexp
}

// New compiles the configured signal lists into a Matcher.
func New(cfg Config) *Matcher {
	m := &Matcher{
		cfg:   cfg,
		expRe: regexp.MustCompile(`(\d+)\s*\+?\s*(?:(?:-|–|to)\s*(\d+))?\s*years?`),
	}
	for _, ex := range cfg.ExcludeSignals {
		m.exclude = append(m.exclude, excludePattern{
			phrase: ex,
			re:     regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(ex)) + `\b`),
		})
	}
	return m
}

// Evaluate computes the 0-100 score, tier, extracted skills and gap list
// for one listing's title + description text.
func (m *Matcher) Evaluate(text string) model.MatchResult {
	lowered := strings.ToLower(text)
	skills := m.extractSkills(lowered)
	experience := m.extractExperience(lowered)

	// Exclusion short-circuits: no further scoring.
	for _, ex := range m.exclude {
		if ex.re.MatchString(lowered) {
			return model.MatchResult{
				Score:           0,
				Tier:            model.TierIgnore,
				Skills:          skills,
				Reasons:         []string{fmt.Sprintf("Exclusion signal: %q", ex.phrase)},
				ExperienceRange: experience,
			}
		}
	}

	score := 0
	var reasons []string

	var primaryHits, secondaryHits []string
	for _, s := range skills {
		if containsString(m.cfg.PrimarySkills, s) {
			primaryHits = append(primaryHits, s)
		}
		if containsString(m.cfg.SecondarySkills, s) {
			secondaryHits = append(secondaryHits, s)
		}
	}

	score += capped(len(primaryHits)*m.cfg.PrimaryWeight, m.cfg.PrimaryCap)
	if len(primaryHits) > 0 {
		reasons = append(reasons, "Primary skills: "+strings.Join(primaryHits, ", "))
	}
	score += capped(len(secondaryHits)*m.cfg.SecondaryWeight, m.cfg.SecondaryCap)
	if len(secondaryHits) > 0 {
		reasons = append(reasons, "Secondary skills: "+strings.Join(secondaryHits, ", "))
	}

	if containsAny(lowered, m.cfg.MFTSignals) {
		score += m.cfg.MFTBonus
		reasons = append(reasons, "MFT / file transfer tools")
	}
	if containsAny(lowered, m.cfg.OnCallSignals) {
		score += m.cfg.OnCallBonus
		reasons = append(reasons, "On-call / shift work")
	}
	if clouds := detectClouds(lowered); len(clouds) > 0 {
		score += capped(len(clouds)*m.cfg.CloudBonus, m.cfg.CloudBonusCap)
		reasons = append(reasons, "Cloud: "+strings.Join(clouds, ", "))
	}
	if containsAny(lowered, m.cfg.IncidentSignals) {
		score += m.cfg.IncidentBonus
		reasons = append(reasons, "ServiceNow/ITIL/incident")
	}
	if containsAny(lowered, m.cfg.CICDSignals) {
		score += m.cfg.CICDBonus
		reasons = append(reasons, "CI/CD")
	}

	supportHits := countHits(lowered, m.cfg.SupportSignals)
	devHits := countHits(lowered, m.cfg.DevSignals)
	switch {
	case supportHits >= 2 && devHits < 2:
		score += m.cfg.SupportBonus
		reasons = append(reasons, "Support/production oriented")
	case devHits >= 2 && devHits > supportHits:
		score -= m.cfg.DevPenalty
		if score < 0 {
			score = 0
		}
		reasons = append(reasons, "Development heavy; down-ranked")
	}

	if experience != "" {
		if m.cfg.CandidateYears > 0 && m.experienceOverlaps(lowered) {
			score += m.cfg.ExperienceBonus
		}
		reasons = append(reasons, "Experience: "+experience)
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	var tier model.Tier
	switch {
	case score >= m.cfg.StrongThreshold:
		tier = model.TierStrong
	case score >= m.cfg.GoodThreshold:
		tier = model.TierGood
	case score >= m.cfg.StretchThreshold:
		tier = model.TierStretch
	default:
		tier = model.TierIgnore
	}

	var missing []string
	for _, d := range m.cfg.DesiredSkills {
		if !containsString(skills, d) && !strings.Contains(lowered, d) {
			missing = append(missing, d)
		}
	}

	return model.MatchResult{
		Score:           score,
		Tier:            tier,
		Skills:          skills,
		MissingSkills:   missing,
		Reasons:         reasons,
		ExperienceRange: experience,
	}
}

// extractSkills scans for every configured skill as a case-insensitive
// substring and folds known spelling variants onto one canonical tag.
// The result is sorted for determinism.
func (m *Matcher) extractSkills(lowered string) []string {
	found := map[string]bool{}
	for _, skill := range m.cfg.PrimarySkills {
		if strings.Contains(lowered, skill) {
			found[skill] = true
		}
	}
	for _, skill := range m.cfg.SecondarySkills {
		if strings.Contains(lowered, skill) {
			found[skill] = true
		}
	}
	// Synonym folding: three spellings of the same platform.
	if strings.Contains(lowered, "service now") || strings.Contains(lowered, "service-now") ||
		strings.Contains(lowered, "servicenow") {
		found["servicenow"] = true
	}
	skills := make([]string, 0, len(found))
	for s := range found {
		skills = append(skills, s)
	}
	sort.Strings(skills)
	return skills
}

// extractExperience captures "N+ years" or "N-M years" patterns.
func (m *Matcher) extractExperience(lowered string) string {
	g := m.expRe.FindStringSubmatch(lowered)
	if g == nil {
		return ""
	}
	if g[2] != "" {
		return g[1] + "-" + g[2] + " years"
	}
	return g[1] + "+ years"
}

// experienceOverlaps reports whether the candidate's stated years fall
// inside the listing's parsed range.
func (m *Matcher) experienceOverlaps(lowered string) bool {
	g := m.expRe.FindStringSubmatch(lowered)
	if g == nil {
		return false
	}
	min, err := strconv.Atoi(g[1])
	if err != nil {
		return false
	}
	if g[2] == "" {
		return m.cfg.CandidateYears >= min
	}
	max, err := strconv.Atoi(g[2])
	if err != nil {
		return false
	}
	return m.cfg.CandidateYears >= min && m.cfg.CandidateYears <= max
}

func detectClouds(lowered string) []string {
	var clouds []string
	if strings.Contains(lowered, "azure") {
		clouds = append(clouds, "Azure")
	}
	if strings.Contains(lowered, "aws") {
		clouds = append(clouds, "AWS")
	}
	if strings.Contains(lowered, "gcp") || strings.Contains(lowered, "google cloud") {
		clouds = append(clouds, "GCP")
	}
	return clouds
}

func containsAny(text string, signals []string) bool {
	for _, s := range signals {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

func countHits(text string, signals []string) int {
	n := 0
	for _, s := range signals {
		if strings.Contains(text, s) {
			n++
		}
	}
	return n
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func capped(v, limit int) int {
	if v > limit {
		return limit
	}
	return v
}
