// Package middleware holds HTTP middleware shared by the API server.
package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/newthinker/folio/internal/api/response"
	"github.com/newthinker/folio/internal/core"
)

// APIKeyHeader carries the shared secret on authenticated requests.
const APIKeyHeader = "X-API-Key"

// APIKeyAuth rejects requests whose APIKeyHeader does not match apiKey.
// An empty apiKey disables the check; paths listed in public never need it.
func APIKeyAuth(apiKey string, public ...string) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(public))
	for _, p := range public {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		if apiKey == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			if err := checkKey(r.Header.Get(APIKeyHeader), apiKey); err != nil {
				response.Error(w, http.StatusUnauthorized, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func checkKey(got, want string) error {
	if got == "" {
		return core.WrapError(core.ErrUnauthorized, errors.New(APIKeyHeader+" header missing"))
	}
	if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		return core.ErrUnauthorized
	}
	return nil
}
