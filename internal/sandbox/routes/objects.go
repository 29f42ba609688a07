package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox/deps"
	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox/handlers"
)

func init() { Register(registerObjects, authenticated) }

func registerObjects(r chi.Router, d deps.Deps) {
	r.Post("/objects", handlers.CreateObject(d))
	r.Get("/objects", handlers.QueryObjects(d))
	r.Get("/objects/{id}", handlers.GetObject(d))
	r.Put("/values", handlers.PutValues(d))
	r.Get("/values", handlers.GetValues(d))
	r.Put("/about/{about}/*", handlers.PutAboutValue(d))
	r.Get("/about/{about}/*", handlers.GetAboutValue(d))
}
