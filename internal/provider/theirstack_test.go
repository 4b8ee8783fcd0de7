package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-aggregator/internal/types"
)

const theirstackFixture = `{
  "data": [
    {
      "id": 98765,
      "job_title": "Backend Engineer",
      "company": "Acme",
      "location": "Berlin, Germany",
      "city": "Berlin",
      "state_code": "BE",
      "country_code": "DE",
      "url": "https://example.com/jobs/98765",
      "date_posted": "2026-08-20",
      "description": "Build services.",
      "employment_statuses": ["Full-time"],
      "remote": true,
      "salary_string": "80k-120k EUR"
    }
  ]
}`

func TestTheirStack_RequestShape(t *testing.T) {
	var gotAuth string
	var gotBody theirstackRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	a := NewTheirStackAdapter("ts-key", srv.URL)
	min, max := 80000, 120000
	q := types.Query{
		Title:      "Backend Engineer",
		City:       "berlin",
		Country:    "de",
		JobType:    types.JobTypeRemote,
		DatePosted: types.DatePostedWeek,
		SalaryMin:  &min,
		SalaryMax:  &max,
		Limit:      10,
	}

	_, err := a.Fetch(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, "Bearer ts-key", gotAuth)
	assert.Equal(t, 10, gotBody.Limit)
	assert.Equal(t, []string{"Backend Engineer"}, gotBody.JobTitleOr)
	assert.Equal(t, []string{"DE"}, gotBody.JobCountryCodeOr, "country codes are uppercased")
	assert.Equal(t, []string{"berlin"}, gotBody.JobLocationPatternOr)
	require.NotNil(t, gotBody.PostedAtMaxAgeDays)
	assert.Equal(t, 7, *gotBody.PostedAtMaxAgeDays)
	require.NotNil(t, gotBody.Remote)
	assert.True(t, *gotBody.Remote)
	require.NotNil(t, gotBody.MinSalaryUSD)
	assert.Equal(t, 80000, *gotBody.MinSalaryUSD)
}

func TestTheirStack_OnSiteSendsRemoteFalse(t *testing.T) {
	var gotBody theirstackRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	a := NewTheirStackAdapter("ts-key", srv.URL)
	_, err := a.Fetch(context.Background(), types.Query{Title: "Engineer", JobType: types.JobTypeOnSite, Limit: 10})
	require.NoError(t, err)

	require.NotNil(t, gotBody.Remote)
	assert.False(t, *gotBody.Remote)
}

func TestTheirStack_HybridOmitsRemoteFilter(t *testing.T) {
	var gotBody theirstackRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	a := NewTheirStackAdapter("ts-key", srv.URL)
	_, err := a.Fetch(context.Background(), types.Query{Title: "Engineer", JobType: types.JobTypeHybrid, Limit: 10})
	require.NoError(t, err)
	assert.Nil(t, gotBody.Remote)
}

func TestTheirStack_Mapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(theirstackFixture))
	}))
	defer srv.Close()

	a := NewTheirStackAdapter("ts-key", srv.URL)
	jobs, err := a.Fetch(context.Background(), types.Query{Title: "Backend Engineer", Limit: 10})
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	job := jobs[0]
	assert.Equal(t, "98765", job.ID, "numeric ids become strings")
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Equal(t, "Acme", job.Company)
	assert.Equal(t, "Berlin, Germany", job.Location)
	assert.Equal(t, "DE", job.Country)
	assert.Equal(t, "80k-120k EUR", job.Salary)
	assert.Equal(t, "Full-time", job.Type)
	assert.True(t, job.Remote)
	assert.Equal(t, "https://example.com/jobs/98765", job.ApplyLink)
}

func TestTheirStack_StatusClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	a := NewTheirStackAdapter("ts-key", srv.URL)
	_, err := a.Fetch(context.Background(), types.Query{Title: "Engineer", Limit: 10})
	require.Error(t, err)
	assert.Equal(t, KindUpstream4xx, KindOf(err))
}
