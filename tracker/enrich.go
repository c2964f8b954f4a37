package tracker

import (
	"github.com/ArseneVrnd/linkedin-mcp-server/errors"
)

// JobDetails carries the enrichment fields returned by the detail-fetch tool.
// Every field is optional.
type JobDetails struct {
	Description     *string `json:"description"`
	Skills          *string `json:"skills"`
	SalaryRange     *string `json:"salary_range"`
	SeniorityLevel  *string `json:"seniority_level"`
	EmploymentType  *string `json:"employment_type"`
	RemoteStatus    *string `json:"remote_status"`
	Benefits        *string `json:"benefits"`
	ApplicantsCount *int64  `json:"applicants_count"`
	PostedDate      *string `json:"posted_date"`
	CompanyURL      *string `json:"company_url"`
}

// Enrich fills enrichment columns on an existing job with fill-if-null
// semantics: COALESCE keeps any value already present, so user edits and
// earlier fetches are never overwritten, and an absent detail never clears
// an existing value.
func (s *JobStore) Enrich(id int64, d JobDetails) error {
	res, err := s.db.Exec(`
		UPDATE jobs SET
			description      = COALESCE(description, ?),
			skills           = COALESCE(skills, ?),
			salary_range     = COALESCE(salary_range, ?),
			seniority_level  = COALESCE(seniority_level, ?),
			employment_type  = COALESCE(employment_type, ?),
			remote_status    = COALESCE(remote_status, ?),
			benefits         = COALESCE(benefits, ?),
			applicants_count = COALESCE(applicants_count, ?),
			posted_date      = COALESCE(posted_date, ?),
			company_url      = COALESCE(company_url, ?),
			updated_at       = datetime('now')
		WHERE id = ?
	`,
		ptrArg(d.Description), ptrArg(d.Skills), ptrArg(d.SalaryRange),
		ptrArg(d.SeniorityLevel), ptrArg(d.EmploymentType), ptrArg(d.RemoteStatus),
		ptrArg(d.Benefits), intArg(d.ApplicantsCount), ptrArg(d.PostedDate),
		ptrArg(d.CompanyURL), id,
	)
	if err != nil {
		return errors.Wrapf(err, "enrich job %d", id)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return errors.Wrapf(ErrNotFound, "job %d", id)
	}
	return nil
}

func intArg(p *int64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
