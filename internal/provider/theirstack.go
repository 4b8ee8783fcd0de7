package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jonathan/job-aggregator/internal/types"
)

const (
	theirstackName    = "theirstack"
	theirstackBaseURL = "https://api.theirstack.com/v1/jobs/search"
)

// TheirStackAdapter queries the TheirStack jobs search API. Unlike the other
// providers it is a POST API with Bearer authentication and *_or filter
// arrays in the request body.
type TheirStackAdapter struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewTheirStackAdapter constructs the adapter. baseURL overrides the
// production endpoint; pass "" outside of tests.
func NewTheirStackAdapter(apiKey, baseURL string) *TheirStackAdapter {
	if baseURL == "" {
		baseURL = theirstackBaseURL
	}
	return &TheirStackAdapter{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

func (a *TheirStackAdapter) Name() string { return theirstackName }

// theirstackRequest is the search request body. Optional filters are omitted
// entirely rather than sent empty.
type theirstackRequest struct {
	Page                 int      `json:"page"`
	Limit                int      `json:"limit"`
	JobTitleOr           []string `json:"job_title_or,omitempty"`
	JobCountryCodeOr     []string `json:"job_country_code_or,omitempty"`
	JobLocationPatternOr []string `json:"job_location_pattern_or,omitempty"`
	PostedAtMaxAgeDays   *int     `json:"posted_at_max_age_days,omitempty"`
	Remote               *bool    `json:"remote,omitempty"`
	MinSalaryUSD         *int     `json:"min_salary_usd,omitempty"`
	MaxSalaryUSD         *int     `json:"max_salary_usd,omitempty"`
}

type theirstackResponse struct {
	Data []theirstackJob `json:"data"`
}

type theirstackJob struct {
	ID             json.Number `json:"id"`
	Title          string      `json:"job_title"`
	CompanyName    string      `json:"company"`
	Location       string      `json:"location"`
	City           string      `json:"city"`
	State          string      `json:"state_code"`
	CountryCode    string      `json:"country_code"`
	URL            string      `json:"url"`
	PostedAt       string      `json:"date_posted"`
	Description    string      `json:"description"`
	EmploymentType []string    `json:"employment_statuses"`
	Remote         bool        `json:"remote"`
	SalaryString   string      `json:"salary_string"`
}

func (a *TheirStackAdapter) Fetch(ctx context.Context, q types.Query) ([]types.Job, error) {
	body := theirstackRequest{
		Page:         0,
		Limit:        q.Limit,
		JobTitleOr:   []string{q.Title},
		MinSalaryUSD: q.SalaryMin,
		MaxSalaryUSD: q.SalaryMax,
	}
	if q.Country != "" {
		body.JobCountryCodeOr = []string{strings.ToUpper(q.Country)}
	}
	if q.City != "" {
		body.JobLocationPatternOr = []string{q.City}
	}
	if days := q.DatePosted.MaxAgeDays(); days > 0 {
		body.PostedAtMaxAgeDays = &days
	}
	switch q.JobType {
	case types.JobTypeRemote:
		t := true
		body.Remote = &t
	case types.JobTypeOnSite:
		f := false
		body.Remote = &f
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &Error{Provider: theirstackName, Kind: KindParseFailure, Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Provider: theirstackName, Kind: KindUpstream5xx, Message: "failed to build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, wrapTransportErr(theirstackName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Provider: theirstackName,
			Kind:     classifyStatus(resp.StatusCode),
			Message:  fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapTransportErr(theirstackName, err)
	}

	var parsed theirstackResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &Error{Provider: theirstackName, Kind: KindParseFailure, Message: "invalid JSON response", Cause: err}
	}

	jobs := make([]types.Job, 0, len(parsed.Data))
	for _, j := range parsed.Data {
		jobs = append(jobs, types.Job{
			ID:          j.ID.String(),
			Title:       j.Title,
			Company:     j.CompanyName,
			Location:    firstNonEmpty(j.Location, joinLocation(j.City, j.State, j.CountryCode)),
			City:        j.City,
			State:       j.State,
			Country:     j.CountryCode,
			Salary:      j.SalaryString,
			Type:        strings.Join(j.EmploymentType, ", "),
			Remote:      j.Remote,
			Posted:      j.PostedAt,
			Description: j.Description,
			ApplyLink:   j.URL,
		})
	}
	return jobs, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
