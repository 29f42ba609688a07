package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox/deps"
	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox/handlers"
)

func init() { Register(registerNamespaces, authenticated) }

func registerNamespaces(r chi.Router, d deps.Deps) {
	r.Post("/namespaces/*", handlers.CreateNamespace(d))
	r.Get("/namespaces/*", handlers.GetNamespace(d))
	r.Post("/tags/*", handlers.CreateTag(d))
	r.Get("/tags/*", handlers.GetTag(d))
}
