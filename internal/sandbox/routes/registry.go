package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox/deps"
	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox/mw"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
	// MiddlewareFunc builds a middleware once the server dependencies are known.
	MiddlewareFunc func(d deps.Deps) Middleware
)

type entry struct {
	reg Registrar
	mws []MiddlewareFunc
}

var registry []entry

// Register a registrar with optional per-route middlewares.
func Register(reg Registrar, mws ...MiddlewareFunc) {
	registry = append(registry, entry{reg: reg, mws: mws})
}

// RegisterAll mounts every registered route. Called once from sandbox.New().
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range registry {
		if len(e.mws) == 0 {
			e.reg(r, d)
			continue
		}
		built := make([]Middleware, len(e.mws))
		for i, m := range e.mws {
			built[i] = m(d)
		}
		e.reg(r.With(built...), d) // apply per-route middlewares
	}
}

// authenticated requires the sandbox users' basic-auth credentials.
func authenticated(d deps.Deps) Middleware {
	return mw.BasicAuth(d.Users)
}
