// Package cache provides the response cache for provider search results:
// deterministic cache keys, durable backends (Postgres, Redis), and a
// TTL-checking front that degrades to a miss on any backend problem.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/jonathan/job-aggregator/internal/types"
)

// Key derives the deterministic cache key for a (provider, query) pair.
//
// The normalized query is serialized as canonical JSON (fixed struct field
// order, no whitespace) and hashed together with the provider name, so
// distinct queries cannot collide through ambiguous field boundaries and the
// key is stable across process restarts.
func Key(provider string, q types.Query) string {
	payload, err := json.Marshal(q)
	if err != nil {
		// types.Query contains only marshalable fields; this cannot happen.
		payload = []byte(q.Title)
	}
	sum := sha256.Sum256(append([]byte(provider+":"), payload...))
	return hex.EncodeToString(sum[:])
}
