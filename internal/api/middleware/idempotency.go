// internal/api/middleware/idempotency.go
package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// IdempotencyKeyHeader carries the client-supplied idempotency key on
// money-moving requests.
const IdempotencyKeyHeader = "X-Idempotency-Key"

// RequireIdempotencyKey rejects money-moving requests that do not carry a
// well-formed idempotency key. The ledger enforces uniqueness downstream;
// this only catches malformed requests at the edge.
func RequireIdempotencyKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			writeError(w, http.StatusBadRequest, "missing "+IdempotencyKeyHeader+" header")
			return
		}
		if _, err := uuid.Parse(key); err != nil {
			writeError(w, http.StatusBadRequest, IdempotencyKeyHeader+" must be a valid UUID")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
