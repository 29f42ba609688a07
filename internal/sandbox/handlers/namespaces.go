package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/delicious2fluid/internal/logger"
	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox/deps"
	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox/memstore"
)

type createNamespaceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type namespaceResponse struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
}

// CreateNamespace handles POST /namespaces/{parent...}.
func CreateNamespace(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parent := strings.Trim(pathParam(r, "*"), "/")

		var req createNamespaceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, classBadRequest)
			return
		}

		ns, err := d.Store.CreateNamespace(parent, req.Name, req.Description)
		switch {
		case err == nil:
		case errors.Is(err, memstore.ErrExists):
			writeError(w, http.StatusPreconditionFailed, classNamespaceExists)
			return
		case errors.Is(err, memstore.ErrNoSuchNamespace):
			writeError(w, http.StatusNotFound, classNonexistentNamespace)
			return
		default:
			writeError(w, http.StatusBadRequest, classBadRequest)
			return
		}

		d.Logger.Debug("namespace created", logger.String("path", ns.Path))
		writeJSON(w, http.StatusCreated, createdResponse{ID: ns.ID, URI: uri(r, "namespaces", ns.Path)})
	}
}

// GetNamespace handles GET /namespaces/{path...}.
func GetNamespace(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ns, ok := d.Store.GetNamespace(strings.Trim(pathParam(r, "*"), "/"))
		if !ok {
			writeError(w, http.StatusNotFound, classNonexistentNamespace)
			return
		}

		resp := namespaceResponse{ID: ns.ID}
		if wantsDescription(r) {
			resp.Description = ns.Description
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
