// Package parser converts search-tool payloads into candidate job records.
//
// Parsing is a pure function of its input: no store access, no shared state.
// The text format is the loosely labelled output of the search_jobs tool,
// one field per line ("Title:", "Company:", "Location:", "Salary:", "URL:").
// Unrecognized lines are ignored, not errors.
package parser

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Candidate is a best-effort extraction of one job posting. Only Title is
// guaranteed non-empty; everything else may be missing.
type Candidate struct {
	Title      string
	Company    string
	Location   string
	Salary     string
	ListingURL string
	ExternalID string
}

// Listing is a pre-structured posting as the search tool may return instead
// of raw text.
type Listing struct {
	Title      string `json:"title"`
	Company    string `json:"company"`
	Location   string `json:"location"`
	Salary     string `json:"salary"`
	URL        string `json:"url"`
	ExternalID string `json:"external_id"`
}

var (
	titleLabel    = regexp.MustCompile(`(?i)title:\s*`)
	companyLabel  = regexp.MustCompile(`(?i)company:\s*`)
	locationLabel = regexp.MustCompile(`(?i)location:\s*`)
	salaryLabel   = regexp.MustCompile(`(?i)salary:\s*`)
	urlLabel      = regexp.MustCompile(`(?i)url:`)
	urlPattern    = regexp.MustCompile(`https?://[^\s)]+`)
	idPattern     = regexp.MustCompile(`\d{5,}`)
)

// ParsePayload converts a tool payload into candidates. A payload that is a
// JSON array is treated as structured listings; anything else goes through
// the line scanner.
func ParsePayload(raw string) []Candidate {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") {
		var listings []Listing
		if err := json.Unmarshal([]byte(trimmed), &listings); err == nil {
			return FromListings(listings)
		}
	}
	return ParseListings(raw)
}

// ParseListings scans newline-separated text for labelled job blocks.
// A "Title:" line starts a new candidate, flushing the previous one if it had
// a title; the final block is flushed after the scan. Labels are matched
// case-insensitively anywhere in the line; the first matching label wins.
func ParseListings(raw string) []Candidate {
	var out []Candidate
	var cur Candidate

	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		switch {
		case titleLabel.MatchString(line):
			if cur.Title != "" {
				out = append(out, cur)
			}
			cur = Candidate{Title: labelValue(line, titleLabel)}
		case companyLabel.MatchString(line):
			cur.Company = labelValue(line, companyLabel)
		case locationLabel.MatchString(line):
			cur.Location = labelValue(line, locationLabel)
		case urlLabel.MatchString(line) || strings.Contains(line, "linkedin.com/jobs"):
			if url := urlPattern.FindString(line); url != "" {
				cur.ListingURL = url
				if id := idPattern.FindString(url); id != "" {
					cur.ExternalID = id
				}
			}
		case salaryLabel.MatchString(line):
			cur.Salary = labelValue(line, salaryLabel)
		}
	}

	if cur.Title != "" {
		out = append(out, cur)
	}
	return out
}

// FromListings maps structured listings onto candidates. Listings missing
// both title and company are dropped; an external id is recovered from the
// URL when the listing does not carry one.
func FromListings(listings []Listing) []Candidate {
	out := make([]Candidate, 0, len(listings))
	for _, l := range listings {
		if strings.TrimSpace(l.Title) == "" && strings.TrimSpace(l.Company) == "" {
			continue
		}
		c := Candidate{
			Title:      strings.TrimSpace(l.Title),
			Company:    strings.TrimSpace(l.Company),
			Location:   strings.TrimSpace(l.Location),
			Salary:     strings.TrimSpace(l.Salary),
			ListingURL: strings.TrimSpace(l.URL),
			ExternalID: strings.TrimSpace(l.ExternalID),
		}
		if c.ExternalID == "" && c.ListingURL != "" {
			c.ExternalID = idPattern.FindString(c.ListingURL)
		}
		out = append(out, c)
	}
	return out
}

// labelValue returns the trimmed text after the first occurrence of label.
func labelValue(line string, label *regexp.Regexp) string {
	loc := label.FindStringIndex(line)
	if loc == nil {
		return ""
	}
	return strings.TrimSpace(line[loc[1]:])
}
