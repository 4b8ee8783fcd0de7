// Package server provides the HTTP REST API for the job aggregator.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/jonathan/job-aggregator/internal/orchestrator"
	"github.com/jonathan/job-aggregator/internal/provider"
	"github.com/jonathan/job-aggregator/internal/query"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Detail string `json:"detail"`
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	var verr *query.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}

	var unknown *orchestrator.ErrUnknownProvider
	if errors.As(err, &unknown) {
		return http.StatusNotFound
	}

	switch provider.KindOf(err) {
	case provider.KindTimeout:
		return http.StatusGatewayTimeout
	case provider.KindRateLimited:
		return http.StatusTooManyRequests
	case provider.KindUpstream4xx, provider.KindUpstream5xx, provider.KindParseFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// credentialRe matches credentials that can leak through upstream error
// chains, e.g. the Apify token embedded in request URLs.
var credentialRe = regexp.MustCompile(`(?i)(token|key|apikey|api_key|authorization)=[^&\s"]+`)

// sanitize removes credential material from a message before it is returned
// to a client.
func sanitize(msg string) string {
	if msg == "" {
		return "An error occurred"
	}
	return credentialRe.ReplaceAllString(msg, "$1=[REDACTED]")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, HTTPStatus(err), errorResponse{Detail: sanitize(err.Error())})
}
