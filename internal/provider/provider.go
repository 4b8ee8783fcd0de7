// Package provider defines the adapter contract for external job-listing
// sources and the concrete adapters for each supported service.
//
// Adapters translate the canonical query into provider-specific request
// parameters and the provider's raw response back into canonical Job
// records. Everything upstream of an adapter (caching, de-duplication,
// rate limiting) only ever sees this interface and its error taxonomy.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/job-aggregator/internal/types"
)

// Adapter is one external job-listing source.
//
// Fetch must honor ctx: when the deadline passes, it returns an *Error with
// KindTimeout rather than hanging. Results are ordered as the provider
// returned them.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, q types.Query) ([]types.Job, error)
}

// ErrorKind classifies adapter failures.
type ErrorKind string

const (
	KindTimeout      ErrorKind = "timeout"
	KindRateLimited  ErrorKind = "rate_limited"
	KindUpstream4xx  ErrorKind = "upstream_4xx"
	KindUpstream5xx  ErrorKind = "upstream_5xx"
	KindParseFailure ErrorKind = "parse_failure"
)

// Error is a classified provider failure.
type Error struct {
	Provider string
	Kind     ErrorKind
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider %s: %s: %s: %v", e.Provider, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider %s: %s: %s", e.Provider, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf extracts the error kind, defaulting to upstream_5xx for
// unclassified failures.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUpstream5xx
}

// classifyStatus maps an HTTP status code from an upstream service to an
// error kind.
func classifyStatus(status int) ErrorKind {
	switch {
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 400 && status < 500:
		return KindUpstream4xx
	default:
		return KindUpstream5xx
	}
}

// wrapTransportErr converts a transport-level failure, distinguishing
// deadline expiry from other network errors.
func wrapTransportErr(name string, err error) error {
	kind := KindUpstream5xx
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = KindTimeout
	}
	return &Error{Provider: name, Kind: kind, Message: "request failed", Cause: err}
}

// Registry is the closed set of configured adapters, keyed by name.
type Registry struct {
	adapters map[string]Adapter
	order    []string
}

// NewRegistry builds a registry from the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter)}
	for _, a := range adapters {
		if _, dup := r.adapters[a.Name()]; dup {
			continue
		}
		r.adapters[a.Name()] = a
		r.order = append(r.order, a.Name())
	}
	return r
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

// Names lists registered adapters in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
