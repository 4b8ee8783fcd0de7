package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jonathan/job-aggregator/internal/types"
)

const (
	jsearchName    = "jsearch"
	jsearchBaseURL = "https://jsearch.p.rapidapi.com/search"
	jsearchHost    = "jsearch.p.rapidapi.com"
)

// JSearchAdapter queries the JSearch API on RapidAPI.
type JSearchAdapter struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewJSearchAdapter constructs the adapter. baseURL overrides the production
// endpoint; pass "" outside of tests.
func NewJSearchAdapter(apiKey, baseURL string) *JSearchAdapter {
	if baseURL == "" {
		baseURL = jsearchBaseURL
	}
	return &JSearchAdapter{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

func (a *JSearchAdapter) Name() string { return jsearchName }

// jsearchResponse mirrors the top-level JSearch JSON response.
type jsearchResponse struct {
	Data []jsearchJob `json:"data"`
}

type jsearchJob struct {
	JobID          string   `json:"job_id"`
	JobTitle       string   `json:"job_title"`
	EmployerName   string   `json:"employer_name"`
	JobCity        string   `json:"job_city"`
	JobState       string   `json:"job_state"`
	JobCountry     string   `json:"job_country"`
	JobIsRemote    bool     `json:"job_is_remote"`
	JobDescription string   `json:"job_description"`
	JobApplyLink   string   `json:"job_apply_link"`
	EmploymentType string   `json:"job_employment_type"`
	MinSalary      *float64 `json:"job_min_salary"`
	MaxSalary      *float64 `json:"job_max_salary"`
	SalaryCurrency string   `json:"job_salary_currency"`
	PostedAtUTC    string   `json:"job_posted_at_datetime_utc"`
}

// Fetch runs one search page against JSearch. The free-text query combines
// title, industry, and location the way the JSearch docs recommend; the
// location and country are also sent as separate hint parameters.
func (a *JSearchAdapter) Fetch(ctx context.Context, q types.Query) ([]types.Job, error) {
	params := url.Values{}
	params.Set("query", jsearchQuery(q))
	params.Set("page", "1")
	params.Set("num_pages", "1")
	if q.City != "" {
		params.Set("location", q.City)
	}
	if q.Country != "" {
		params.Set("country", q.Country)
	}
	if q.JobType == types.JobTypeRemote {
		params.Set("work_from_home", "true")
	}
	params.Set("date_posted", jsearchDatePosted(q.DatePosted))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &Error{Provider: jsearchName, Kind: KindUpstream5xx, Message: "failed to build request", Cause: err}
	}
	req.Header.Set("X-RapidAPI-Key", a.apiKey)
	req.Header.Set("X-RapidAPI-Host", jsearchHost)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, wrapTransportErr(jsearchName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Provider: jsearchName,
			Kind:     classifyStatus(resp.StatusCode),
			Message:  fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapTransportErr(jsearchName, err)
	}

	var parsed jsearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &Error{Provider: jsearchName, Kind: KindParseFailure, Message: "invalid JSON response", Cause: err}
	}

	jobs := make([]types.Job, 0, len(parsed.Data))
	for _, j := range parsed.Data {
		jobs = append(jobs, j.toCanonical())
		if len(jobs) >= q.Limit {
			break
		}
	}
	return jobs, nil
}

func (j jsearchJob) toCanonical() types.Job {
	return types.Job{
		ID:          j.JobID,
		Title:       j.JobTitle,
		Company:     j.EmployerName,
		Location:    joinLocation(j.JobCity, j.JobState, j.JobCountry),
		City:        j.JobCity,
		State:       j.JobState,
		Country:     j.JobCountry,
		Salary:      formatSalary(j.MinSalary, j.MaxSalary, j.SalaryCurrency),
		Type:        j.EmploymentType,
		Remote:      j.JobIsRemote,
		Posted:      j.PostedAtUTC,
		Description: j.JobDescription,
		ApplyLink:   j.JobApplyLink,
	}
}

func jsearchQuery(q types.Query) string {
	parts := []string{q.Title}
	if q.Industry != "" {
		parts = append(parts, q.Industry)
	}
	if q.City != "" {
		parts = append(parts, q.City)
	}
	if q.Country != "" {
		parts = append(parts, q.Country)
	}
	return strings.Join(parts, " ")
}

func jsearchDatePosted(d types.DatePosted) string {
	switch d {
	case types.DatePostedDay:
		return "day"
	case types.DatePostedWeek:
		return "week"
	case types.DatePostedMonth:
		return "month"
	default:
		return "all"
	}
}

// joinLocation builds the display location from its parts.
func joinLocation(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}

// formatSalary renders an optional salary range as display text.
func formatSalary(min, max *float64, currency string) string {
	if currency == "" {
		currency = "USD"
	}
	switch {
	case min != nil && max != nil:
		return fmt.Sprintf("%s %s - %s", currency, formatAmount(*min), formatAmount(*max))
	case min != nil:
		return fmt.Sprintf("%s %s+", currency, formatAmount(*min))
	case max != nil:
		return fmt.Sprintf("Up to %s %s", currency, formatAmount(*max))
	default:
		return ""
	}
}

func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
