package mw

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// BasicAuth guards the API with the configured credentials. No users means no auth.
func BasicAuth(users map[string]string) func(http.Handler) http.Handler {
	if len(users) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.BasicAuth("fluiddb", users)
}
