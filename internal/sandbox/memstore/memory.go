package memstore

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AboutTag is the system tag every object carries.
const AboutTag = "fluiddb/about"

var (
	ErrExists          = errors.New("already exists")
	ErrNoSuchNamespace = errors.New("nonexistent namespace")
	ErrNoSuchTag       = errors.New("nonexistent tag")
	ErrNoSuchObject    = errors.New("nonexistent object")
	ErrBadQuery        = errors.New("unsupported query")
	ErrBadName         = errors.New("invalid name")
)

// Namespace is a stored namespace.
type Namespace struct {
	ID          string
	Path        string
	Description string
}

// Tag is a stored tag definition.
type Tag struct {
	ID          string
	Path        string
	Description string
	Indexed     bool
}

// Value is a tag value on an object. Primitive values keep Data;
// opaque values keep Raw and their ContentType.
type Value struct {
	Data        any
	Raw         []byte
	ContentType string
}

// Opaque reports whether the value was written with an explicit media type.
func (v Value) Opaque() bool { return v.ContentType != "" }

// Object is a stored object.
type Object struct {
	ID     string
	About  string
	Values map[string]Value // tag path -> value
}

// MemoryStore is the sandbox's whole state: namespaces, tags and objects.
type MemoryStore struct {
	mu         sync.RWMutex
	namespaces map[string]*Namespace // path -> namespace
	tags       map[string]*Tag       // path -> tag
	objects    map[string]*Object    // id -> object
	about      map[string]string     // about -> id
	lastWrite  time.Time
}

// NewMemoryStore creates a store whose top-level namespaces are the given users.
func NewMemoryStore(users ...string) *MemoryStore {
	s := &MemoryStore{
		namespaces: make(map[string]*Namespace),
		tags:       make(map[string]*Tag),
		objects:    make(map[string]*Object),
		about:      make(map[string]string),
	}
	s.namespaces["fluiddb"] = &Namespace{ID: uuid.NewString(), Path: "fluiddb"}
	s.tags[AboutTag] = &Tag{ID: uuid.NewString(), Path: AboutTag, Description: "About value", Indexed: true}
	for _, u := range users {
		s.namespaces[u] = &Namespace{ID: uuid.NewString(), Path: u, Description: "Namespace for " + u}
	}
	return s
}

func validName(name string) bool {
	return name != "" && !strings.Contains(name, "/")
}

// ─────────────────────────────────────────────────────────────────
// Namespaces and tags
// ─────────────────────────────────────────────────────────────────

// CreateNamespace adds parent/name. The parent must exist.
func (s *MemoryStore) CreateNamespace(parent, name, description string) (*Namespace, error) {
	if !validName(name) {
		return nil, ErrBadName
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.namespaces[parent]; !ok {
		return nil, ErrNoSuchNamespace
	}
	path := parent + "/" + name
	if _, ok := s.namespaces[path]; ok {
		return nil, ErrExists
	}
	ns := &Namespace{ID: uuid.NewString(), Path: path, Description: description}
	s.namespaces[path] = ns
	s.lastWrite = time.Now()
	return ns, nil
}

// GetNamespace retrieves a namespace by path
func (s *MemoryStore) GetNamespace(path string) (*Namespace, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns, ok := s.namespaces[path]
	return ns, ok
}

// CreateTag adds namespace/name. The namespace must exist.
func (s *MemoryStore) CreateTag(namespace, name, description string, indexed bool) (*Tag, error) {
	if !validName(name) {
		return nil, ErrBadName
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.namespaces[namespace]; !ok {
		return nil, ErrNoSuchNamespace
	}
	path := namespace + "/" + name
	if _, ok := s.tags[path]; ok {
		return nil, ErrExists
	}
	tag := &Tag{ID: uuid.NewString(), Path: path, Description: description, Indexed: indexed}
	s.tags[path] = tag
	s.lastWrite = time.Now()
	return tag, nil
}

// GetTag retrieves a tag by path
func (s *MemoryStore) GetTag(path string) (*Tag, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tag, ok := s.tags[path]
	return tag, ok
}

// NamespacePaths returns every namespace path, sorted.
func (s *MemoryStore) NamespacePaths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.namespaces))
	for p := range s.namespaces {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// TagPaths returns every tag path under prefix, sorted. An empty prefix returns all tags.
func (s *MemoryStore) TagPaths(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.tags))
	for p := range s.tags {
		if prefix == "" || strings.HasPrefix(p, prefix+"/") {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// ─────────────────────────────────────────────────────────────────
// Objects and values
// ─────────────────────────────────────────────────────────────────

// FindOrCreateObject returns the object about the given value, creating it if needed.
func (s *MemoryStore) FindOrCreateObject(about string) (id string, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.findOrCreateLocked(about)
}

func (s *MemoryStore) findOrCreateLocked(about string) (string, bool) {
	if id, ok := s.about[about]; ok {
		return id, false
	}
	obj := &Object{
		ID:     uuid.NewString(),
		About:  about,
		Values: map[string]Value{AboutTag: {Data: about}},
	}
	s.objects[obj.ID] = obj
	s.about[about] = obj.ID
	s.lastWrite = time.Now()
	return obj.ID, true
}

// Query evaluates the supported query forms:
//
//	fluiddb/about = "value"
//	has namespace/tag
func (s *MemoryStore) Query(q string) ([]string, error) {
	q = strings.TrimSpace(q)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if about, ok := parseAboutQuery(q); ok {
		if id, found := s.about[about]; found {
			return []string{id}, nil
		}
		return []string{}, nil
	}

	if rest, ok := strings.CutPrefix(q, "has "); ok {
		tagPath := strings.TrimSpace(rest)
		if _, exists := s.tags[tagPath]; !exists {
			return nil, ErrNoSuchTag
		}
		ids := make([]string, 0)
		for id, obj := range s.objects {
			if _, has := obj.Values[tagPath]; has {
				ids = append(ids, id)
			}
		}
		sort.Strings(ids)
		return ids, nil
	}

	return nil, ErrBadQuery
}

// parseAboutQuery extracts the value from fluiddb/about = "..." with \" and \\ escapes.
func parseAboutQuery(q string) (string, bool) {
	rest, ok := strings.CutPrefix(q, AboutTag)
	if !ok {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	rest, ok = strings.CutPrefix(rest, "=")
	if !ok {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	if len(rest) < 2 || rest[0] != '"' || rest[len(rest)-1] != '"' {
		return "", false
	}

	var sb strings.Builder
	body := rest[1 : len(rest)-1]
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			i++
			c = body[i]
		} else if c == '"' {
			return "", false
		}
		sb.WriteByte(c)
	}
	return sb.String(), true
}

// SetValues writes values onto every object in ids. Every tag must already exist.
func (s *MemoryStore) SetValues(ids []string, values map[string]Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for tagPath := range values {
		if _, ok := s.tags[tagPath]; !ok {
			return ErrNoSuchTag
		}
	}
	for _, id := range ids {
		obj, ok := s.objects[id]
		if !ok {
			return ErrNoSuchObject
		}
		for tagPath, v := range values {
			if tagPath == AboutTag {
				continue
			}
			obj.Values[tagPath] = v
		}
	}
	s.lastWrite = time.Now()
	return nil
}

// SetAboutValue writes one value on the object about the given value, creating the object.
func (s *MemoryStore) SetAboutValue(about, tagPath string, v Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tags[tagPath]; !ok {
		return ErrNoSuchTag
	}
	if tagPath == AboutTag {
		return ErrExists
	}
	id, _ := s.findOrCreateLocked(about)
	s.objects[id].Values[tagPath] = v
	s.lastWrite = time.Now()
	return nil
}

// GetObject retrieves an object by id. The returned copy is safe to read.
func (s *MemoryStore) GetObject(id string) (*Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[id]
	if !ok {
		return nil, false
	}
	return copyObject(obj), true
}

// GetObjectByAbout retrieves an object by its about value.
func (s *MemoryStore) GetObjectByAbout(about string) (*Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.about[about]
	if !ok {
		return nil, false
	}
	return copyObject(s.objects[id]), true
}

func copyObject(obj *Object) *Object {
	values := make(map[string]Value, len(obj.Values))
	for k, v := range obj.Values {
		values[k] = v
	}
	return &Object{ID: obj.ID, About: obj.About, Values: values}
}

// ObjectCount returns the number of objects in the store
func (s *MemoryStore) ObjectCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.objects)
}

// GetLastWrite returns the timestamp of the last mutation
func (s *MemoryStore) GetLastWrite() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastWrite
}
