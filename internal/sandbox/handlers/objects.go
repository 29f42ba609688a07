package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox/deps"
	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox/memstore"
)

type createObjectRequest struct {
	About string `json:"about"`
}

type queryResponse struct {
	IDs []string `json:"ids"`
}

type objectResponse struct {
	About    string   `json:"about"`
	TagPaths []string `json:"tagPaths"`
}

// CreateObject handles POST /objects. An about value that is already taken
// returns the existing object.
func CreateObject(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createObjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, classBadRequest)
			return
		}
		if req.About == "" {
			writeError(w, http.StatusBadRequest, classBadRequest)
			return
		}

		id, _ := d.Store.FindOrCreateObject(req.About)
		writeJSON(w, http.StatusCreated, createdResponse{ID: id, URI: uri(r, "objects", id)})
	}
}

// QueryObjects handles GET /objects?query=.
func QueryObjects(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, ok := runQuery(w, d, r.URL.Query().Get("query"))
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, queryResponse{IDs: ids})
	}
}

// GetObject handles GET /objects/{id}.
func GetObject(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		obj, ok := d.Store.GetObject(pathParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, classNoSuchResource)
			return
		}

		paths := make([]string, 0, len(obj.Values))
		for p := range obj.Values {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		writeJSON(w, http.StatusOK, objectResponse{About: obj.About, TagPaths: paths})
	}
}

// runQuery evaluates q and writes the error response itself on failure.
func runQuery(w http.ResponseWriter, d deps.Deps, q string) ([]string, bool) {
	if q == "" {
		writeError(w, http.StatusBadRequest, classBadRequest)
		return nil, false
	}
	ids, err := d.Store.Query(q)
	switch {
	case err == nil:
		return ids, true
	case errors.Is(err, memstore.ErrNoSuchTag):
		writeError(w, http.StatusNotFound, classNonexistentTag)
	default:
		writeError(w, http.StatusBadRequest, classUnsupportedQuery)
	}
	return nil, false
}
