package match

// Config holds the fixed skill/signal lists and the point weights the
// evaluator scores against. The defaults below are empirically tuned for a
// production-support / MFT profile; every value is overridable because none
// of them has a documented derivation.
type Config struct {
	PrimarySkills   []string
	SecondarySkills []string
	// ExcludeSignals short-circuit scoring: any whole-word hit forces the
	// Ignore tier regardless of other content.
	ExcludeSignals []string

	PrimaryWeight   int
	SecondaryWeight int
	PrimaryCap      int
	SecondaryCap    int

	MFTSignals    []string
	OnCallSignals []string
	// IncidentSignals is the ticketing / incident-process vocabulary;
	// CICDSignals the build-pipeline vocabulary.
	IncidentSignals []string
	CICDSignals     []string
	MFTBonus        int
	OnCallBonus     int
	CloudBonus      int // per distinct cloud platform
	CloudBonusCap   int
	IncidentBonus   int
	CICDBonus       int

	SupportSignals []string
	DevSignals     []string
	SupportBonus   int
	DevPenalty     int

	// DesiredSkills drives the missing-skill gap list.
	DesiredSkills []string

	// CandidateYears enables a small bonus when a listing's stated
	// experience range overlaps it. Zero disables the bonus.
	CandidateYears  int
	ExperienceBonus int

	StrongThreshold  int
	GoodThreshold    int
	StretchThreshold int

	// MinScore is the reporting cut-off consumers may apply; the evaluator
	// itself never filters.
	MinScore int
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		PrimarySkills: []string{
			"linux", "shell", "bash", "servicenow", "itil", "incident", "sla",
			"mft", "sftp", "ftps", "ftp", "as2", "goanywhere", "fms", "ftg",
			"monitor", "monitoring", "alert", "log", "log analysis", "python",
			"jenkins", "bitbucket", "azure", "aws",
		},
		SecondarySkills: []string{
			"java", "spring", "rest", "api", "devops", "observability",
			"grafana", "prometheus",
		},
		ExcludeSignals: []string{
			"frontend", "react", "vue", "angular", "ux", "ui",
			"dsa", "competitive programming",
		},

		PrimaryWeight:   12,
		SecondaryWeight: 5,
		PrimaryCap:      60,
		SecondaryCap:    15,

		MFTSignals: []string{
			"mft", "goanywhere", "go-anywhere", "go anywhere",
			"managed file transfer", "fms", "ftg",
		},
		OnCallSignals: []string{
			"on-call", "on call", "rota", "rotation", "shift", "night shift", "24x7",
		},
		IncidentSignals: []string{"servicenow", "itil", "incident"},
		CICDSignals:     []string{"jenkins", "ci/cd"},
		MFTBonus:        10,
		OnCallBonus:     7,
		CloudBonus:      5,
		CloudBonusCap:   10,
		IncidentBonus:   8,
		CICDBonus:       4,

		SupportSignals: []string{
			"production", "support", "incident", "l2", "l3", "troubleshoot",
			"root cause", "incident management", "problem management",
			"service desk", "ticket",
		},
		DevSignals: []string{
			"develop", "implementation", "design", "feature",
			"software engineer", "senior backend", "full stack",
		},
		SupportBonus: 6,
		DevPenalty:   30,

		DesiredSkills: []string{"linux", "sftp", "servicenow", "itil"},

		CandidateYears:  0,
		ExperienceBonus: 3,

		StrongThreshold:  70,
		GoodThreshold:    45,
		StretchThreshold: 20,

		MinScore: 45,
	}
}
