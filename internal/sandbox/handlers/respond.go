package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/delicious2fluid/internal/fluiddb"
)

// Error classes returned in the X-FluidDB-Error-Class header.
const (
	classBadRequest           = "BadRequest"
	classNamespaceExists      = "NamespaceAlreadyExists"
	classTagExists            = "TagAlreadyExists"
	classNonexistentNamespace = "NonexistentNamespace"
	classNonexistentTag       = "NonexistentTag"
	classNoSuchResource       = "NoSuchResource"
	classUnsupportedQuery     = "QueryParseError"
	classUnsupportedValue     = "UnsupportedJSONType"
)

type createdResponse struct {
	ID  string `json:"id"`
	URI string `json:"URI"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", fluiddb.ContentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, class string) {
	w.Header().Set(fluiddb.ErrorClassHeader, class)
	w.WriteHeader(status)
}

// pathParam returns a route parameter with percent-escapes removed.
// chi matches against RawPath when the request carried escaped slashes.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

func wantsDescription(r *http.Request) bool {
	return strings.EqualFold(r.URL.Query().Get("returnDescription"), "true")
}

func uri(r *http.Request, parts ...string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/" + strings.Join(parts, "/")
}
