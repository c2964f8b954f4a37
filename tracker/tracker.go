// Package tracker holds the persistent domain model of the job tracker:
// job postings, tags, saved searches and search-run history, all backed by
// the shared SQLite store.
package tracker

import (
	"github.com/ArseneVrnd/linkedin-mcp-server/errors"
)

// ErrNotFound is returned when a row does not exist. Batch operations report
// it per-item instead of aborting.
var ErrNotFound = errors.New("not found")

// Job pipeline stages. Imports always start at StatusSaved; the pipeline
// never advances a status, only user actions do.
const (
	StatusSaved              = "saved"
	StatusApplied            = "applied"
	StatusPhoneScreen        = "phone_screen"
	StatusTechnicalInterview = "technical_interview"
	StatusOnsite             = "onsite"
	StatusOffer              = "offer"
	StatusNegotiation        = "negotiation"
	StatusAccepted           = "accepted"
	StatusRejected           = "rejected"
	StatusGhosted            = "ghosted"
)

// nullable converts an empty string to nil for SQL binding.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
