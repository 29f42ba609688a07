package syncer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/delicious2fluid/internal/domain"
	"github.com/MrSnakeDoc/delicious2fluid/internal/fluiddb"
	"github.com/MrSnakeDoc/delicious2fluid/internal/logger"
)

const (
	namespaceDescription = "Holds tags imported from delicious"
	fieldTagDescription  = "A tag generated from meta-data from delicious"
	tagNameDescription   = "A tag created in delicious & imported to FluidDB"
)

// Store is the subset of the destination API the synchronizer drives.
type Store interface {
	CreateNamespace(ctx context.Context, parent, name, description string) (bool, error)
	CreateTag(ctx context.Context, namespace, name, description string, indexed bool) (bool, error)
	CreateObject(ctx context.Context, about string) (string, error)
	PutValues(ctx context.Context, query string, values map[string]any) error
}

// Options configures a Synchronizer.
type Options struct {
	Layout Layout
	// ContinueOnError logs a failing record and moves on instead of aborting.
	// Schema steps always abort.
	ContinueOnError bool
}

// Synchronizer makes the destination namespace/tag/object graph match a parsed export.
// Every step is find-or-create, so re-running against the same root is safe.
type Synchronizer struct {
	store           Store
	logger          logger.Logger
	layout          Layout
	continueOnError bool
}

// New creates a synchronizer
func New(store Store, log logger.Logger, opts Options) *Synchronizer {
	return &Synchronizer{
		store:           store,
		logger:          log,
		layout:          opts.Layout,
		continueOnError: opts.ContinueOnError,
	}
}

// Layout returns the path convention in use.
func (s *Synchronizer) Layout() Layout { return s.layout }

// Run executes the four steps in order and returns what was done.
// The report is returned even on failure so callers can journal partial runs.
func (s *Synchronizer) Run(ctx context.Context, tags *domain.TagSet, records []domain.Bookmark) (*Report, error) {
	report := newReport(s.layout)
	defer report.finish()

	s.logger.Info("creating delicious namespace in fluiddb",
		logger.String("root", s.layout.Root),
		logger.String("tag_layout", string(s.layout.Tags)))

	n, err := s.EnsureNamespacePath(ctx, s.layout.Root, s.layout.NamespaceSegments())
	report.NamespacesCreated = n
	if err != nil {
		return report.fail(err)
	}

	n, err = s.EnsureFieldTags(ctx, records)
	report.FieldTagsCreated = n
	if err != nil {
		return report.fail(err)
	}

	n, err = s.EnsureTagNameTags(ctx, tags)
	report.TagNamesCreated = n
	if err != nil {
		return report.fail(err)
	}

	s.logger.Info("creating/tagging objects", logger.Int("count", len(records)))
	for _, b := range records {
		id, err := s.UpsertRecord(ctx, b)
		if err == nil {
			report.Objects[b.URL] = id
			continue
		}
		if !s.continueOnError || ctx.Err() != nil {
			return report.fail(err)
		}
		s.logger.Error("failed to sync bookmark, continuing",
			logger.String("url", b.URL),
			logger.Error(err))
		report.Failed = append(report.Failed, b.URL)
	}

	s.logger.Info("sync finished",
		logger.Int("objects", len(report.Objects)),
		logger.Int("failed", len(report.Failed)))

	return report, nil
}

// EnsureNamespacePath makes root/segments... exist, creating missing namespaces
// one level at a time. The first element of root is the user's own namespace and
// is never created. Existing namespaces count as success.
func (s *Synchronizer) EnsureNamespacePath(ctx context.Context, root string, segments []string) (int, error) {
	parts := splitPath(root)
	if len(parts) == 0 {
		return 0, fmt.Errorf("empty root namespace")
	}

	parent := parts[0]
	created := 0
	for _, name := range append(parts[1:], segments...) {
		ok, err := s.store.CreateNamespace(ctx, parent, name, namespaceDescription)
		if err != nil {
			return created, fmt.Errorf("failed to create namespace %s/%s: %w", parent, name, err)
		}
		if ok {
			created++
			s.logger.Debug("namespace created", logger.String("path", parent+"/"+name))
		}
		parent = parent + "/" + name
	}

	return created, nil
}

// EnsureFieldTags defines a tag for every field present on any record.
// No records means no fields, which is not an error.
func (s *Synchronizer) EnsureFieldTags(ctx context.Context, records []domain.Bookmark) (int, error) {
	names := FieldNames(records)
	s.logger.Info("creating tags for object fields", logger.Strings("fields", names))

	created := 0
	for _, field := range names {
		ns := s.layout.FieldNamespace(field)
		ok, err := s.store.CreateTag(ctx, ns, field, fieldTagDescription, false)
		if err != nil {
			return created, fmt.Errorf("failed to create field tag %s: %w", s.layout.FieldPath(field), err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// EnsureTagNameTags defines a tag for every distinct source tag name.
func (s *Synchronizer) EnsureTagNameTags(ctx context.Context, tags *domain.TagSet) (int, error) {
	if tags == nil {
		return 0, nil
	}
	s.logger.Info("importing tags", logger.Int("count", tags.Len()))

	ns := s.layout.TagNamespace()
	created := 0
	for _, name := range tags.Names() {
		s.logger.Debug("importing tag", logger.String("tag", name))
		ok, err := s.store.CreateTag(ctx, ns, name, tagNameDescription, false)
		if err != nil {
			return created, fmt.Errorf("failed to create tag %s: %w", s.layout.TagPath(name), err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// UpsertRecord finds or creates the object about b.URL, then writes every field
// and tag in one request addressed by the same about value.
func (s *Synchronizer) UpsertRecord(ctx context.Context, b domain.Bookmark) (string, error) {
	s.logger.Info("creating/getting object", logger.String("about", b.URL))

	id, err := s.store.CreateObject(ctx, b.URL)
	if err != nil {
		return "", fmt.Errorf("failed to create object about %s: %w", b.URL, err)
	}

	values := s.Payload(b)
	s.logger.Debug("adding metadata fields to the object",
		logger.String("id", id),
		logger.Int("values", len(values)))

	if err := s.store.PutValues(ctx, fluiddb.AboutQuery(b.URL), values); err != nil {
		return "", fmt.Errorf("failed to tag object about %s: %w", b.URL, err)
	}
	return id, nil
}

// Payload maps a record onto destination paths. Tag names are presence tags
// (nil value). A field wins over a tag name that maps to the same path.
func (s *Synchronizer) Payload(b domain.Bookmark) map[string]any {
	values := make(map[string]any, len(b.Tags)+7)
	for _, name := range b.Tags {
		values[s.layout.TagPath(name)] = nil
	}
	for _, f := range b.Fields() {
		p := s.layout.FieldPath(f.Name)
		if _, clash := values[p]; clash {
			s.logger.Warn("tag name collides with field tag, keeping field value",
				logger.String("about", b.URL),
				logger.String("path", p))
		}
		values[p] = f.Value
	}
	return values
}

// FieldNames returns the union of present fields across records, in first-seen order.
func FieldNames(records []domain.Bookmark) []string {
	set := domain.NewTagSet()
	for _, b := range records {
		for _, f := range b.Fields() {
			set.Add(f.Name)
		}
	}
	return set.Names()
}

func splitPath(p string) []string {
	var parts []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return parts
}

// Report summarizes a run.
type Report struct {
	Root              string            `json:"root"`
	TagLayout         TagLayout         `json:"tag_layout"`
	StartedAt         time.Time         `json:"started_at"`
	FinishedAt        time.Time         `json:"finished_at"`
	NamespacesCreated int               `json:"namespaces_created"`
	FieldTagsCreated  int               `json:"field_tags_created"`
	TagNamesCreated   int               `json:"tag_names_created"`
	Objects           map[string]string `json:"objects"` // about -> object id
	Failed            []string          `json:"failed,omitempty"`
	Error             string            `json:"error,omitempty"`
}

func newReport(l Layout) *Report {
	return &Report{
		Root:      l.Root,
		TagLayout: l.Tags,
		StartedAt: time.Now(),
		Objects:   make(map[string]string),
	}
}

func (r *Report) finish() {
	r.FinishedAt = time.Now()
}

func (r *Report) fail(err error) (*Report, error) {
	r.Error = err.Error()
	return r, err
}

// Succeeded reports whether the run completed without errors.
func (r *Report) Succeeded() bool {
	return r.Error == "" && len(r.Failed) == 0
}
