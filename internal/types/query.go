package types

// JobType classifies how or where the work is performed.
type JobType string

// Supported job type filters. Unknown values coerce to JobTypeAny during
// normalization rather than failing the request.
const (
	JobTypeAny      JobType = "any"
	JobTypeRemote   JobType = "remote"
	JobTypeOnSite   JobType = "onsite"
	JobTypeHybrid   JobType = "hybrid"
	JobTypeFullTime JobType = "fulltime"
	JobTypePartTime JobType = "parttime"
)

// DatePosted is the freshness window for listings.
type DatePosted string

// Supported freshness windows.
const (
	DatePostedAny   DatePosted = "any"
	DatePostedDay   DatePosted = "day"
	DatePostedWeek  DatePosted = "week"
	DatePostedMonth DatePosted = "month"
)

// Query is the canonical, normalized search query. It is produced only by
// query.Normalize and is treated as an immutable value afterwards: two
// semantically equal raw requests always normalize to the same Query, which
// is what makes cache keys deterministic.
type Query struct {
	Title      string     `json:"title"`
	Industry   string     `json:"industry,omitempty"`
	SalaryMin  *int       `json:"salary_min,omitempty"`
	SalaryMax  *int       `json:"salary_max,omitempty"`
	JobType    JobType    `json:"job_type"`
	City       string     `json:"city,omitempty"`
	Country    string     `json:"country,omitempty"`
	DatePosted DatePosted `json:"date_posted"`
	Limit      int        `json:"limit"`
}

// MaxAgeDays converts the freshness window to a day count, or 0 for Any.
func (d DatePosted) MaxAgeDays() int {
	switch d {
	case DatePostedDay:
		return 1
	case DatePostedWeek:
		return 7
	case DatePostedMonth:
		return 30
	default:
		return 0
	}
}
