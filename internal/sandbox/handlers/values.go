package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/MrSnakeDoc/delicious2fluid/internal/fluiddb"
	"github.com/MrSnakeDoc/delicious2fluid/internal/logger"
	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox/deps"
	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox/memstore"
)

const maxValueBytes = 1 << 20

type valueEnvelope struct {
	Value json.RawMessage `json:"value"`
}

type opaqueInfo struct {
	ValueType string `json:"value-type"`
	Size      int    `json:"size"`
}

type valuesResponse struct {
	Results struct {
		ID map[string]map[string]any `json:"id"`
	} `json:"results"`
}

// decodePrimitive accepts null, bool, number, string and lists of strings.
func decodePrimitive(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case nil, bool, float64, string:
		return x, nil
	case []any:
		out := make([]string, 0, len(x))
		for _, el := range x {
			s, ok := el.(string)
			if !ok {
				return nil, fmt.Errorf("list element of type %T", el)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}

// PutValues handles PUT /values?query=, writing every tag in the body onto every match.
func PutValues(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]valueEnvelope
		if err := json.NewDecoder(io.LimitReader(r.Body, maxValueBytes)).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, classBadRequest)
			return
		}

		values := make(map[string]memstore.Value, len(body))
		for tagPath, env := range body {
			v, err := decodePrimitive(env.Value)
			if err != nil {
				writeError(w, http.StatusBadRequest, classUnsupportedValue)
				return
			}
			values[tagPath] = memstore.Value{Data: v}
		}

		ids, ok := runQuery(w, d, r.URL.Query().Get("query"))
		if !ok {
			return
		}

		if err := d.Store.SetValues(ids, values); err != nil {
			if errors.Is(err, memstore.ErrNoSuchTag) {
				writeError(w, http.StatusNotFound, classNonexistentTag)
				return
			}
			writeError(w, http.StatusNotFound, classNoSuchResource)
			return
		}

		d.Logger.Debug("values written", logger.Int("objects", len(ids)), logger.Int("tags", len(values)))
		w.WriteHeader(http.StatusNoContent)
	}
}

// GetValues handles GET /values?query=&tag=...
func GetValues(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags := r.URL.Query()["tag"]
		if len(tags) == 0 {
			writeError(w, http.StatusBadRequest, classBadRequest)
			return
		}
		ids, ok := runQuery(w, d, r.URL.Query().Get("query"))
		if !ok {
			return
		}

		var resp valuesResponse
		resp.Results.ID = make(map[string]map[string]any, len(ids))
		for _, id := range ids {
			obj, found := d.Store.GetObject(id)
			if !found {
				continue
			}
			out := make(map[string]any, len(tags))
			for _, t := range tags {
				v, has := obj.Values[t]
				if !has {
					continue
				}
				if v.Opaque() {
					out[t] = opaqueInfo{ValueType: v.ContentType, Size: len(v.Raw)}
					continue
				}
				out[t] = map[string]any{"value": v.Data}
			}
			resp.Results.ID[id] = out
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// PutAboutValue handles PUT /about/{about}/{tag...}. The primitive media type is
// decoded as JSON; anything else is stored as an opaque value.
func PutAboutValue(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		about := pathParam(r, "about")
		tagPath := pathParam(r, "*")

		data, err := io.ReadAll(io.LimitReader(r.Body, maxValueBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, classBadRequest)
			return
		}

		ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		var v memstore.Value
		if ct == fluiddb.ContentTypePrimitive {
			prim, err := decodePrimitive(data)
			if err != nil {
				writeError(w, http.StatusBadRequest, classUnsupportedValue)
				return
			}
			v.Data = prim
		} else {
			if ct == "" {
				writeError(w, http.StatusBadRequest, classBadRequest)
				return
			}
			v.Raw, v.ContentType = data, ct
		}

		if err := d.Store.SetAboutValue(about, tagPath, v); err != nil {
			if errors.Is(err, memstore.ErrNoSuchTag) {
				writeError(w, http.StatusNotFound, classNonexistentTag)
				return
			}
			writeError(w, http.StatusBadRequest, classBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GetAboutValue handles GET /about/{about}/{tag...}.
func GetAboutValue(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		obj, ok := d.Store.GetObjectByAbout(pathParam(r, "about"))
		if !ok {
			writeError(w, http.StatusNotFound, classNoSuchResource)
			return
		}
		v, ok := obj.Values[pathParam(r, "*")]
		if !ok {
			writeError(w, http.StatusNotFound, classNoSuchResource)
			return
		}

		if v.Opaque() {
			w.Header().Set("Content-Type", v.ContentType)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(v.Raw)
			return
		}
		w.Header().Set("Content-Type", fluiddb.ContentTypePrimitive)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(v.Data)
	}
}
