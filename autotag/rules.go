// Package autotag classifies job postings against a declarative rule list
// and attaches the matching tags.
//
// Predicates are pure functions over a job; the engine's ensure-tag and
// ensure-association steps are the only effectful part, so rules can be
// tested without a store.
package autotag

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ArseneVrnd/linkedin-mcp-server/tracker"
)

// Rule pairs a tag with the predicate that earns it. Rules are evaluated
// independently; every matching rule fires, so a job can collect any number
// of tags in one pass. Order only fixes the reporting order.
type Rule struct {
	Name    string
	Color   string
	Matches func(job *tracker.Job) bool
}

var salaryK = regexp.MustCompile(`\$(\d+)[kK]`)

// DefaultRules returns the built-in classification rules. All string checks
// are case-insensitive substring matches and treat absent fields as empty.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:  "Remote",
			Color: "#10b981",
			Matches: func(job *tracker.Job) bool {
				return contains(job.Location, "remote") || contains(job.RemoteStatus, "remote")
			},
		},
		{
			Name:  "Hybrid",
			Color: "#f59e0b",
			Matches: func(job *tracker.Job) bool {
				return contains(job.Location, "hybrid") || contains(job.RemoteStatus, "hybrid")
			},
		},
		{
			Name:  "High Salary",
			Color: "#10b981",
			Matches: func(job *tracker.Job) bool {
				salary := text(job.SalaryRange)
				if salary == "" {
					salary = text(job.Salary)
				}
				m := salaryK.FindStringSubmatch(salary)
				if m == nil {
					return false
				}
				amount, err := strconv.Atoi(m[1])
				return err == nil && amount >= 150
			},
		},
		{
			Name:  "Senior",
			Color: "#8b5cf6",
			Matches: func(job *tracker.Job) bool {
				return contains(job.SeniorityLevel, "senior", "executive", "lead") ||
					containsStr(job.Title, "senior", "lead", "staff", "principal")
			},
		},
		{
			Name:  "Entry Level",
			Color: "#3b82f6",
			Matches: func(job *tracker.Job) bool {
				return contains(job.SeniorityLevel, "entry", "junior") ||
					containsStr(job.Title, "junior", "entry")
			},
		},
		{
			Name:  "Contract",
			Color: "#f59e0b",
			Matches: func(job *tracker.Job) bool {
				return contains(job.EmploymentType, "contract", "temporary") ||
					containsStr(job.Title, "contract", "contractor")
			},
		},
		{
			Name:  "Full-time",
			Color: "#6366f1",
			Matches: func(job *tracker.Job) bool {
				return contains(job.EmploymentType, "full", "full-time", "permanent")
			},
		},
		{
			Name:  "Hot",
			Color: "#ef4444",
			Matches: func(job *tracker.Job) bool {
				posted := text(job.PostedDate)
				if strings.Contains(posted, "hour") || strings.Contains(posted, "today") || strings.Contains(posted, "1 day") {
					return true
				}
				// Posted 2-3 days ago still counts while competition is thin.
				// An unknown applicant count disables this branch.
				if strings.Contains(posted, "2 day") || strings.Contains(posted, "3 day") {
					return job.ApplicantsCount != nil && *job.ApplicantsCount < 50
				}
				return false
			},
		},
		{
			Name:  "Competitive",
			Color: "#f59e0b",
			Matches: func(job *tracker.Job) bool {
				return job.ApplicantsCount != nil && *job.ApplicantsCount > 200
			},
		},
	}
}

// text lowercases an optional field, mapping absent to empty.
func text(p *string) string {
	if p == nil {
		return ""
	}
	return strings.ToLower(*p)
}

// contains reports whether the optional field contains any of the needles.
func contains(p *string, needles ...string) bool {
	s := text(p)
	if s == "" {
		return false
	}
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// containsStr is contains for required fields.
func containsStr(s string, needles ...string) bool {
	s = strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
