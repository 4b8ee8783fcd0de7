package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "An error occurred"},
		{"plain message", "plain message"},
		{"GET /run?token=abc123 failed", "GET /run?token=[REDACTED] failed"},
		{"api_key=xyz&token=abc", "api_key=[REDACTED]&token=[REDACTED]"},
		{"X-RapidAPI-Key header rejected", "X-RapidAPI-Key header rejected"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitize(tt.in), "input %q", tt.in)
	}
}
