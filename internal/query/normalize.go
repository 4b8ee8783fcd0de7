// Package query turns raw search requests into canonical, normalized queries.
//
// Normalization runs before cache-key derivation so cosmetic input
// differences (whitespace, casing, unknown enum spellings) never cause
// spurious cache misses.
package query

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/job-aggregator/internal/types"
)

// DefaultLimit is the number of results requested when the client does not
// specify one.
const DefaultLimit = 10

var validate = validator.New()

// jobTypeAliases maps the spellings the frontend sends to canonical values.
var jobTypeAliases = map[string]types.JobType{
	"remote":    types.JobTypeRemote,
	"on-site":   types.JobTypeOnSite,
	"onsite":    types.JobTypeOnSite,
	"on site":   types.JobTypeOnSite,
	"hybrid":    types.JobTypeHybrid,
	"full-time": types.JobTypeFullTime,
	"fulltime":  types.JobTypeFullTime,
	"full time": types.JobTypeFullTime,
	"part-time": types.JobTypePartTime,
	"parttime":  types.JobTypePartTime,
	"part time": types.JobTypePartTime,
}

var datePostedAliases = map[string]types.DatePosted{
	"day":        types.DatePostedDay,
	"today":      types.DatePostedDay,
	"24h":        types.DatePostedDay,
	"week":       types.DatePostedWeek,
	"past week":  types.DatePostedWeek,
	"month":      types.DatePostedMonth,
	"past month": types.DatePostedMonth,
}

// Normalize validates a raw search request and produces the canonical Query.
// It is a pure function: the input is never mutated. Unknown jobType and
// datePosted values coerce to Any; a missing or oversized title is the only
// hard rejection besides malformed salary bounds.
func Normalize(raw types.SearchRequest) (types.Query, error) {
	title := strings.TrimSpace(raw.JobTitle)
	if title == "" {
		return types.Query{}, &ValidationError{Field: "jobTitle", Message: "title is required"}
	}

	checked := raw
	checked.JobTitle = title
	if err := validate.Struct(&checked); err != nil {
		return types.Query{}, fromValidator(err)
	}

	if raw.SalaryMin != nil && raw.SalaryMax != nil && *raw.SalaryMin > *raw.SalaryMax {
		return types.Query{}, &ValidationError{
			Field:   "salaryMin",
			Message: "salary minimum exceeds maximum",
		}
	}

	limit := raw.Limit
	if limit == 0 {
		limit = DefaultLimit
	}

	q := types.Query{
		Title:      title,
		Industry:   foldOptional(raw.Industry),
		SalaryMin:  copyInt(raw.SalaryMin),
		SalaryMax:  copyInt(raw.SalaryMax),
		JobType:    normalizeJobType(raw.JobType),
		City:       foldOptional(raw.City),
		Country:    foldOptional(raw.Country),
		DatePosted: normalizeDatePosted(raw.DatePosted),
		Limit:      limit,
	}
	return q, nil
}

// foldOptional trims and case-folds an optional free-text field. Optional
// fields are matched case-insensitively by every provider, so folding here
// keeps semantically equal queries on one cache key.
func foldOptional(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeJobType(s string) types.JobType {
	if jt, ok := jobTypeAliases[foldOptional(s)]; ok {
		return jt
	}
	return types.JobTypeAny
}

func normalizeDatePosted(s string) types.DatePosted {
	if dp, ok := datePostedAliases[foldOptional(s)]; ok {
		return dp
	}
	return types.DatePostedAny
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
