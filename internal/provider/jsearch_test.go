package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-aggregator/internal/types"
)

const jsearchFixture = `{
  "data": [
    {
      "job_id": "abc123",
      "job_title": "Backend Engineer",
      "employer_name": "Acme",
      "job_city": "Berlin",
      "job_state": "BE",
      "job_country": "DE",
      "job_is_remote": true,
      "job_description": "Build services.",
      "job_apply_link": "https://example.com/apply/abc123",
      "job_employment_type": "FULLTIME",
      "job_min_salary": 80000,
      "job_max_salary": 120000,
      "job_salary_currency": "EUR",
      "job_posted_at_datetime_utc": "2026-08-20T00:00:00Z"
    },
    {
      "job_id": "def456",
      "job_title": "Platform Engineer",
      "employer_name": "Initech",
      "job_apply_link": "https://example.com/apply/def456"
    }
  ]
}`

func TestJSearch_Fetch(t *testing.T) {
	var gotQuery map[string]string
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-RapidAPI-Key")
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(jsearchFixture))
	}))
	defer srv.Close()

	a := NewJSearchAdapter("rapid-key", srv.URL)
	q := types.Query{
		Title:      "Backend Engineer",
		City:       "berlin",
		Country:    "de",
		JobType:    types.JobTypeRemote,
		DatePosted: types.DatePostedWeek,
		Limit:      10,
	}

	jobs, err := a.Fetch(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "rapid-key", gotKey)
	assert.Contains(t, gotQuery["query"], "Backend Engineer")
	assert.Equal(t, "berlin", gotQuery["location"])
	assert.Equal(t, "de", gotQuery["country"])
	assert.Equal(t, "true", gotQuery["work_from_home"])
	assert.Equal(t, "week", gotQuery["date_posted"])

	first := jobs[0]
	assert.Equal(t, "abc123", first.ID)
	assert.Equal(t, "Backend Engineer", first.Title)
	assert.Equal(t, "Acme", first.Company)
	assert.Equal(t, "Berlin, BE, DE", first.Location)
	assert.Equal(t, "EUR 80000 - 120000", first.Salary)
	assert.True(t, first.Remote)
	assert.Equal(t, "https://example.com/apply/abc123", first.ApplyLink)

	// Sparse listings map with empty optional fields, not zero garbage.
	second := jobs[1]
	assert.Equal(t, "def456", second.ID)
	assert.Empty(t, second.Location)
	assert.Empty(t, second.Salary)
	assert.False(t, second.Remote)
}

func TestJSearch_LimitTruncates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(jsearchFixture))
	}))
	defer srv.Close()

	a := NewJSearchAdapter("rapid-key", srv.URL)
	jobs, err := a.Fetch(context.Background(), types.Query{Title: "Engineer", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestJSearch_StatusClassification(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusForbidden, KindUpstream4xx},
		{http.StatusServiceUnavailable, KindUpstream5xx},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		}))

		a := NewJSearchAdapter("rapid-key", srv.URL)
		_, err := a.Fetch(context.Background(), types.Query{Title: "Engineer", Limit: 10})
		require.Error(t, err, "status %d", tt.status)
		assert.Equal(t, tt.want, KindOf(err), "status %d", tt.status)
		srv.Close()
	}
}

func TestJSearch_InvalidJSONIsParseFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>upstream error page</html>"))
	}))
	defer srv.Close()

	a := NewJSearchAdapter("rapid-key", srv.URL)
	_, err := a.Fetch(context.Background(), types.Query{Title: "Engineer", Limit: 10})
	require.Error(t, err)
	assert.Equal(t, KindParseFailure, KindOf(err))
}

func TestJSearch_ContextDeadlineIsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	a := NewJSearchAdapter("rapid-key", srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := a.Fetch(ctx, types.Query{Title: "Engineer", Limit: 10})
	require.Error(t, err)
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestFormatSalary(t *testing.T) {
	min, max := 80000.0, 120000.5

	assert.Equal(t, "USD 80000 - 120000.50", formatSalary(&min, &max, ""))
	assert.Equal(t, "EUR 80000+", formatSalary(&min, nil, "EUR"))
	assert.Equal(t, "Up to USD 120000.50", formatSalary(nil, &max, "USD"))
	assert.Empty(t, formatSalary(nil, nil, "USD"))
}
