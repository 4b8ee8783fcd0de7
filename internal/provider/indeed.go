package provider

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/job-aggregator/internal/types"
)

const (
	indeedName        = "indeed"
	apifyBaseURL      = "https://api.apify.com/v2"
	apifyPollInterval = 3 * time.Second
	maxDescriptionLen = 500
)

var indeedJobKeyRe = regexp.MustCompile(`jk=([a-f0-9]+)`)

// IndeedAdapter scrapes Indeed through an Apify actor. Indeed sits behind
// Cloudflare, so the actor does the actual scraping: we start a run, poll its
// status until it finishes, then download the dataset it produced. The whole
// sequence runs under the caller's context deadline.
type IndeedAdapter struct {
	apiKey  string
	actorID string
	baseURL string
	client  *http.Client
}

// NewIndeedAdapter constructs the adapter. Actor IDs use the
// "username~actor-name" form; a "/" separator is converted automatically.
// baseURL overrides the Apify API root; pass "" outside of tests.
func NewIndeedAdapter(apiKey, actorID, baseURL string) *IndeedAdapter {
	if baseURL == "" {
		baseURL = apifyBaseURL
	}
	if strings.Contains(actorID, "/") && !strings.Contains(actorID, "~") {
		actorID = strings.ReplaceAll(actorID, "/", "~")
	}
	return &IndeedAdapter{
		apiKey:  apiKey,
		actorID: actorID,
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

func (a *IndeedAdapter) Name() string { return indeedName }

type apifyRunResponse struct {
	Data struct {
		ID               string `json:"id"`
		Status           string `json:"status"`
		StatusMessage    string `json:"statusMessage"`
		DefaultDatasetID string `json:"defaultDatasetId"`
	} `json:"data"`
}

type apifyIndeedItem struct {
	PositionName      string   `json:"positionName"`
	Company           string   `json:"company"`
	Location          string   `json:"location"`
	URL               string   `json:"url"`
	ExternalApplyLink string   `json:"externalApplyLink"`
	PostedAt          string   `json:"postedAt"`
	Description       string   `json:"description"`
	DescriptionHTML   string   `json:"descriptionHTML"`
	JobType           []string `json:"jobType"`
	Salary            string   `json:"salary"`
}

func (a *IndeedAdapter) Fetch(ctx context.Context, q types.Query) ([]types.Job, error) {
	runID, err := a.startRun(ctx, q)
	if err != nil {
		return nil, err
	}

	datasetID, err := a.awaitRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	items, err := a.fetchDataset(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	jobs := make([]types.Job, 0, len(items))
	for _, item := range items {
		jobs = append(jobs, item.toCanonical())
		if len(jobs) >= q.Limit {
			break
		}
	}
	return jobs, nil
}

func (a *IndeedAdapter) startRun(ctx context.Context, q types.Query) (string, error) {
	searchURL := "https://www.indeed.com/jobs?q=" + url.QueryEscape(q.Title)
	if q.City != "" {
		searchURL += "&l=" + url.QueryEscape(q.City)
	}

	payload, _ := json.Marshal(map[string]any{
		"startUrls":  []map[string]string{{"url": searchURL}},
		"maxResults": q.Limit,
	})

	endpoint := fmt.Sprintf("%s/acts/%s/runs?token=%s", a.baseURL, a.actorID, a.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Provider: indeedName, Kind: KindUpstream5xx, Message: "failed to build run request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", wrapTransportErr(indeedName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &Error{
			Provider: indeedName,
			Kind:     classifyStatus(resp.StatusCode),
			Message:  fmt.Sprintf("failed to start scraper run, status %d", resp.StatusCode),
		}
	}

	var run apifyRunResponse
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		return "", &Error{Provider: indeedName, Kind: KindParseFailure, Message: "invalid run response", Cause: err}
	}
	return run.Data.ID, nil
}

// awaitRun polls the run status until it reaches a terminal state or ctx
// expires, and returns the dataset ID holding the results.
func (a *IndeedAdapter) awaitRun(ctx context.Context, runID string) (string, error) {
	endpoint := fmt.Sprintf("%s/actor-runs/%s?token=%s", a.baseURL, runID, a.apiKey)

	ticker := time.NewTicker(apifyPollInterval)
	defer ticker.Stop()

	for {
		run, err := a.runStatus(ctx, endpoint)
		if err != nil {
			return "", err
		}

		switch run.Data.Status {
		case "SUCCEEDED":
			return run.Data.DefaultDatasetID, nil
		case "FAILED", "ABORTED":
			return "", &Error{
				Provider: indeedName,
				Kind:     KindUpstream5xx,
				Message:  fmt.Sprintf("scraper run %s: %s", strings.ToLower(run.Data.Status), run.Data.StatusMessage),
			}
		}

		select {
		case <-ctx.Done():
			return "", &Error{Provider: indeedName, Kind: KindTimeout, Message: "scraper run did not finish in time", Cause: ctx.Err()}
		case <-ticker.C:
		}
	}
}

func (a *IndeedAdapter) runStatus(ctx context.Context, endpoint string) (*apifyRunResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{Provider: indeedName, Kind: KindUpstream5xx, Message: "failed to build status request", Cause: err}
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, wrapTransportErr(indeedName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Provider: indeedName,
			Kind:     classifyStatus(resp.StatusCode),
			Message:  fmt.Sprintf("status check failed with %d", resp.StatusCode),
		}
	}

	var run apifyRunResponse
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		return nil, &Error{Provider: indeedName, Kind: KindParseFailure, Message: "invalid status response", Cause: err}
	}
	return &run, nil
}

func (a *IndeedAdapter) fetchDataset(ctx context.Context, datasetID string) ([]apifyIndeedItem, error) {
	endpoint := fmt.Sprintf("%s/datasets/%s/items?format=json&token=%s", a.baseURL, datasetID, a.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{Provider: indeedName, Kind: KindUpstream5xx, Message: "failed to build dataset request", Cause: err}
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, wrapTransportErr(indeedName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Provider: indeedName,
			Kind:     classifyStatus(resp.StatusCode),
			Message:  fmt.Sprintf("dataset fetch failed with %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapTransportErr(indeedName, err)
	}

	var items []apifyIndeedItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, &Error{Provider: indeedName, Kind: KindParseFailure, Message: "invalid dataset response", Cause: err}
	}
	return items, nil
}

func (item apifyIndeedItem) toCanonical() types.Job {
	city, state, country := splitLocation(item.Location)

	desc := item.Description
	if item.DescriptionHTML != "" {
		if text, err := htmlToText(item.DescriptionHTML); err == nil {
			desc = text
		}
	}
	if len(desc) > maxDescriptionLen {
		desc = desc[:maxDescriptionLen]
	}

	jobType := strings.Join(item.JobType, ", ")
	lower := strings.ToLower(jobType)
	remote := strings.Contains(lower, "remote") || strings.Contains(lower, "hybrid")

	applyLink := item.ExternalApplyLink
	if applyLink == "" {
		applyLink = item.URL
	}

	return types.Job{
		ID:          indeedJobID(item),
		Title:       item.PositionName,
		Company:     item.Company,
		Location:    item.Location,
		City:        city,
		State:       state,
		Country:     country,
		Salary:      item.Salary,
		Type:        jobType,
		Remote:      remote,
		Posted:      item.PostedAt,
		Description: desc,
		ApplyLink:   applyLink,
	}
}

// indeedJobID extracts the jk= key from the listing URL, falling back to a
// hash of URL+title+company so every job has a stable ID.
func indeedJobID(item apifyIndeedItem) string {
	if m := indeedJobKeyRe.FindStringSubmatch(item.URL); m != nil {
		return m[1]
	}
	sum := sha256.Sum256([]byte(item.URL + "_" + item.PositionName + "_" + item.Company))
	return hex.EncodeToString(sum[:])[:12]
}

// splitLocation breaks "City, State, Country" into its components. Missing
// parts stay empty.
func splitLocation(location string) (city, state, country string) {
	parts := strings.Split(location, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) >= 1 {
		city = parts[0]
	}
	if len(parts) >= 2 {
		state = parts[1]
	}
	if len(parts) >= 3 {
		country = parts[2]
	}
	return city, state, country
}

// htmlToText strips markup from an HTML job description.
func htmlToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}
