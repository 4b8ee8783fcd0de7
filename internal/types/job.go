// Package types provides type definitions for structured data used throughout the job-aggregator system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Job is the canonical, provider-agnostic job listing returned by every adapter.
type Job struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Country     string `json:"country,omitempty"`
	Salary      string `json:"salary,omitempty"` // free text, normalized by the adapter
	Type        string `json:"type,omitempty"`
	Remote      bool   `json:"remote"`
	Posted      string `json:"posted,omitempty"` // ISO-8601 or provider-original string
	Description string `json:"description,omitempty"`
	ApplyLink   string `json:"apply_link"`
}
