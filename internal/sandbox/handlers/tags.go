package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox/deps"
	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox/memstore"
)

type createTagRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Indexed     bool   `json:"indexed"`
}

type tagResponse struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	Indexed     bool   `json:"indexed"`
}

// CreateTag handles POST /tags/{namespace...}.
func CreateTag(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		namespace := strings.Trim(pathParam(r, "*"), "/")

		var req createTagRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, classBadRequest)
			return
		}

		tag, err := d.Store.CreateTag(namespace, req.Name, req.Description, req.Indexed)
		switch {
		case err == nil:
		case errors.Is(err, memstore.ErrExists):
			writeError(w, http.StatusPreconditionFailed, classTagExists)
			return
		case errors.Is(err, memstore.ErrNoSuchNamespace):
			writeError(w, http.StatusNotFound, classNonexistentNamespace)
			return
		default:
			writeError(w, http.StatusBadRequest, classBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, createdResponse{ID: tag.ID, URI: uri(r, "tags", tag.Path)})
	}
}

// GetTag handles GET /tags/{path...}.
func GetTag(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag, ok := d.Store.GetTag(strings.Trim(pathParam(r, "*"), "/"))
		if !ok {
			writeError(w, http.StatusNotFound, classNonexistentTag)
			return
		}

		resp := tagResponse{ID: tag.ID, Indexed: tag.Indexed}
		if wantsDescription(r) {
			resp.Description = tag.Description
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
