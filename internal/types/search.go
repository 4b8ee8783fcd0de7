package types

// SearchRequest is the raw search payload as posted by the frontend. Field
// names match the original form fields; everything except the title is
// optional. Validation tags are enforced by query.Normalize before anything
// touches the cache or a provider.
type SearchRequest struct {
	JobTitle   string `json:"jobTitle" validate:"required,max=200"`
	Industry   string `json:"industry" validate:"max=100"`
	SalaryMin  *int   `json:"salaryMin" validate:"omitempty,min=0"`
	SalaryMax  *int   `json:"salaryMax" validate:"omitempty,min=0"`
	JobType    string `json:"jobType"`
	City       string `json:"city" validate:"max=100"`
	Country    string `json:"country" validate:"max=100"`
	DatePosted string `json:"datePosted"`
	Limit      int    `json:"limit" validate:"omitempty,min=1,max=100"`
}

// ResultSource tells the caller whether a provider's jobs came from the
// cache or from a live adapter call.
type ResultSource string

const (
	SourceCache ResultSource = "cache"
	SourceLive  ResultSource = "live"
)

// SearchResponse is the per-provider response body.
type SearchResponse struct {
	Jobs   []Job        `json:"jobs"`
	Total  int          `json:"total"`
	Source ResultSource `json:"source"`
}

// ProviderResult is one provider's slice of a multi-provider search. Exactly
// one of Jobs/Error is meaningful: a provider failure annotates its own entry
// and never aborts the rest of the request.
type ProviderResult struct {
	Provider  string       `json:"provider"`
	Jobs      []Job        `json:"jobs,omitempty"`
	Total     int          `json:"total"`
	Source    ResultSource `json:"source,omitempty"`
	Error     string       `json:"error,omitempty"`
	ErrorKind string       `json:"error_kind,omitempty"`
}

// MultiSearchResponse aggregates per-provider results. HTTP-level success is
// returned even when some providers failed.
type MultiSearchResponse struct {
	Results []ProviderResult `json:"results"`
	Total   int              `json:"total"`
}
