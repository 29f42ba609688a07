package domain

// Field names written to the destination store.
// The identity field (href) is absent: it becomes the object's about value.
const (
	FieldHash   = "hash"
	FieldTitle  = "title"
	FieldNotes  = "notes"
	FieldTime   = "time"
	FieldTag    = "tag"
	FieldMeta   = "meta"
	FieldShared = "shared"
)

// Visibility is the sharing state of a bookmark in the source service.
type Visibility int

const (
	VisibilityShared Visibility = iota
	VisibilityPrivate
)

func (v Visibility) String() string {
	if v == VisibilityPrivate {
		return "private"
	}
	return "shared"
}

// Bookmark is one parsed export entry.
//
// Every optional field is nil when the source attribute was absent,
// so callers must check presence instead of relying on zero values.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// URL is the bookmarked address and the object's about value.
	// Never empty, unique within one export.
	URL string

	// ─────────────────────────────
	// Source attributes (optional)
	// ─────────────────────────────

	// Hash is the source-assigned digest of the URL.
	Hash *string

	// Title comes from the source "description" attribute.
	Title *string

	// Notes comes from the source "extended" attribute.
	Notes *string

	// Time is the source timestamp, kept verbatim.
	Time *string

	// Tags is the whitespace-split "tag" attribute.
	// nil means the attribute was absent; an empty slice means it was blank.
	Tags []string

	// Meta is an opaque source value.
	Meta *string

	// ─────────────────────────────
	// Sharing
	// ─────────────────────────────

	// Visibility is derived from the "shared" attribute.
	Visibility *Visibility

	// SharedRaw keeps the original "shared" text so it round-trips unchanged.
	SharedRaw string
}

// Field is a present non-identity attribute of a bookmark.
// Value is either a string or a []string.
type Field struct {
	Name  string
	Value any
}

// Fields returns the present attributes in a stable order.
func (b Bookmark) Fields() []Field {
	fields := make([]Field, 0, 7)
	add := func(name string, v *string) {
		if v != nil {
			fields = append(fields, Field{Name: name, Value: *v})
		}
	}

	add(FieldHash, b.Hash)
	add(FieldTitle, b.Title)
	add(FieldNotes, b.Notes)
	add(FieldTime, b.Time)
	if b.Tags != nil {
		tags := make([]string, len(b.Tags))
		copy(tags, b.Tags)
		fields = append(fields, Field{Name: FieldTag, Value: tags})
	}
	add(FieldMeta, b.Meta)
	if b.Visibility != nil {
		fields = append(fields, Field{Name: FieldShared, Value: b.SharedRaw})
	}

	return fields
}

// IsPrivate reports whether the bookmark was explicitly marked as not shared.
func (b Bookmark) IsPrivate() bool {
	return b.Visibility != nil && *b.Visibility == VisibilityPrivate
}

// ParseVisibility maps the source "shared" value: "no" is private, anything else shared.
func ParseVisibility(raw string) Visibility {
	if raw == "no" {
		return VisibilityPrivate
	}
	return VisibilityShared
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
