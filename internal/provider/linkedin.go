package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/job-aggregator/internal/types"
)

const (
	linkedinName    = "linkedin"
	linkedinBaseURL = "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search"
	linkedinUA      = "Mozilla/5.0 (compatible; JobAggregator/1.0)"
)

// LinkedInAdapter scrapes the LinkedIn guest job search endpoint, which
// returns HTML job cards without authentication. Parsed with goquery.
type LinkedInAdapter struct {
	baseURL string
	client  *http.Client
}

// NewLinkedInAdapter constructs the adapter. baseURL overrides the guest
// endpoint; pass "" outside of tests.
func NewLinkedInAdapter(baseURL string) *LinkedInAdapter {
	if baseURL == "" {
		baseURL = linkedinBaseURL
	}
	return &LinkedInAdapter{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

func (a *LinkedInAdapter) Name() string { return linkedinName }

func (a *LinkedInAdapter) Fetch(ctx context.Context, q types.Query) ([]types.Job, error) {
	params := url.Values{}
	params.Set("keywords", linkedinKeywords(q))
	if loc := linkedinLocation(q); loc != "" {
		params.Set("location", loc)
	}
	if code := linkedinFreshness(q.DatePosted); code != "" {
		params.Set("f_TPR", code)
	}
	if q.JobType == types.JobTypeRemote {
		params.Set("f_WT", "2") // workplace type: remote
	}
	params.Set("start", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &Error{Provider: linkedinName, Kind: KindUpstream5xx, Message: "failed to build request", Cause: err}
	}
	req.Header.Set("User-Agent", linkedinUA)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, wrapTransportErr(linkedinName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Provider: linkedinName,
			Kind:     classifyStatus(resp.StatusCode),
			Message:  fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &Error{Provider: linkedinName, Kind: KindParseFailure, Message: "failed to parse job cards", Cause: err}
	}

	var jobs []types.Job
	doc.Find("div.base-search-card").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		job := parseLinkedInCard(card, q)
		if job.Title == "" || job.ApplyLink == "" {
			return true // skip malformed card
		}
		jobs = append(jobs, job)
		return len(jobs) < q.Limit
	})
	return jobs, nil
}

func parseLinkedInCard(card *goquery.Selection, q types.Query) types.Job {
	title := strings.TrimSpace(card.Find("h3.base-search-card__title").Text())
	company := strings.TrimSpace(card.Find("h4.base-search-card__subtitle").Text())
	location := strings.TrimSpace(card.Find("span.job-search-card__location").Text())
	link, _ := card.Find("a.base-card__full-link").Attr("href")
	posted, _ := card.Find("time").Attr("datetime")

	id := ""
	if urn, ok := card.Attr("data-entity-urn"); ok {
		// "urn:li:jobPosting:3791234567"
		if i := strings.LastIndex(urn, ":"); i >= 0 {
			id = urn[i+1:]
		}
	}

	city, state, country := splitLocation(location)
	return types.Job{
		ID:        id,
		Title:     title,
		Company:   company,
		Location:  location,
		City:      city,
		State:     state,
		Country:   country,
		Remote:    q.JobType == types.JobTypeRemote,
		Posted:    posted,
		ApplyLink: strings.SplitN(link, "?", 2)[0],
	}
}

func linkedinKeywords(q types.Query) string {
	parts := []string{q.Title}
	if q.Industry != "" {
		parts = append(parts, q.Industry)
	}
	return strings.Join(parts, " ")
}

func linkedinLocation(q types.Query) string {
	var parts []string
	if q.City != "" {
		parts = append(parts, q.City)
	}
	if q.Country != "" {
		parts = append(parts, q.Country)
	}
	return strings.Join(parts, ", ")
}

// linkedinFreshness maps the freshness window to LinkedIn's f_TPR values
// (seconds since posting).
func linkedinFreshness(d types.DatePosted) string {
	days := d.MaxAgeDays()
	if days == 0 {
		return ""
	}
	return "r" + strconv.Itoa(days*86400)
}
