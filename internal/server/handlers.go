package server

import (
	"encoding/json"
	"net/http"

	"github.com/jonathan/job-aggregator/internal/query"
	"github.com/jonathan/job-aggregator/internal/types"
)

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Job Search API is running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleProviderSearch resolves one provider: POST /api/jobs/{provider}.
func (s *Server) handleProviderSearch(w http.ResponseWriter, r *http.Request) {
	providerName := r.PathValue("provider")

	var raw types.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, &query.ValidationError{Field: "body", Message: "invalid JSON"})
		return
	}

	q, err := query.Normalize(raw)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.resolver.Resolve(r.Context(), providerName, q)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, types.SearchResponse{
		Jobs:   result.Jobs,
		Total:  len(result.Jobs),
		Source: result.Source,
	})
}

// multiSearchRequest is the fan-out request body: the usual search fields
// plus an optional provider list.
type multiSearchRequest struct {
	types.SearchRequest
	Providers []string `json:"providers,omitempty"`
}

// handleMultiSearch fans one query out to several providers:
// POST /api/jobs/search. The response is HTTP 200 even when some providers
// failed; each failure is annotated on its own entry.
func (s *Server) handleMultiSearch(w http.ResponseWriter, r *http.Request) {
	var req multiSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &query.ValidationError{Field: "body", Message: "invalid JSON"})
		return
	}

	q, err := query.Normalize(req.SearchRequest)
	if err != nil {
		writeError(w, err)
		return
	}

	providers := req.Providers
	for _, name := range providers {
		if _, ok := s.registry.Get(name); !ok {
			writeError(w, &query.ValidationError{Field: "providers", Message: "unknown provider: " + name})
			return
		}
	}

	results := s.resolver.ResolveAll(r.Context(), providers, q)

	total := 0
	for i := range results {
		if results[i].Error != "" {
			// Keeps upstream credentials (e.g. scraper tokens embedded in
			// URLs) out of client responses.
			results[i].Error = sanitize(results[i].Error)
		}
		total += results[i].Total
	}

	writeJSON(w, http.StatusOK, types.MultiSearchResponse{
		Results: results,
		Total:   total,
	})
}
