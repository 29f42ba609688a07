package syncer

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/delicious2fluid/internal/domain"
)

// MetaNamespace holds non-primary fields (and nested tag names).
const MetaNamespace = "delicious"

// TagsNamespace holds tag names under MetaNamespace with TagLayoutNested.
const TagsNamespace = "tags"

// TagLayout decides where tag names land. It is part of the destination
// schema: changing it between runs produces a second, parallel set of tags.
type TagLayout string

const (
	// TagLayoutRoot maps a tag name to root/TAGNAME.
	TagLayoutRoot TagLayout = "root"
	// TagLayoutNested maps a tag name to root/delicious/tags/TAGNAME.
	TagLayoutNested TagLayout = "nested"
)

// ParseTagLayout accepts "root" (or empty) and "nested".
func ParseTagLayout(s string) (TagLayout, error) {
	switch TagLayout(strings.ToLower(strings.TrimSpace(s))) {
	case "", TagLayoutRoot:
		return TagLayoutRoot, nil
	case TagLayoutNested:
		return TagLayoutNested, nil
	default:
		return "", fmt.Errorf("unknown tag layout %q (want %q or %q)", s, TagLayoutRoot, TagLayoutNested)
	}
}

// primaryFields map directly under the root namespace.
var primaryFields = map[string]bool{
	domain.FieldTitle: true,
	domain.FieldNotes: true,
}

// Layout is the naming convention from record fields and tag names to destination paths.
// Same inputs always produce the same paths.
type Layout struct {
	Root string
	Tags TagLayout
}

func join(parts ...string) string {
	return strings.Join(parts, "/")
}

// FieldNamespace returns the namespace that holds the tag for field.
func (l Layout) FieldNamespace(field string) string {
	if primaryFields[field] {
		return l.Root
	}
	return join(l.Root, MetaNamespace)
}

// FieldPath returns the full tag path for field.
func (l Layout) FieldPath(field string) string {
	return join(l.FieldNamespace(field), field)
}

// TagNamespace returns the namespace that holds tag-name tags.
func (l Layout) TagNamespace() string {
	if l.Tags == TagLayoutNested {
		return join(l.Root, MetaNamespace, TagsNamespace)
	}
	return l.Root
}

// TagPath returns the full tag path for a source tag name.
func (l Layout) TagPath(name string) string {
	return join(l.TagNamespace(), name)
}

// NamespaceSegments lists the paths below root that must exist.
func (l Layout) NamespaceSegments() []string {
	if l.Tags == TagLayoutNested {
		return []string{MetaNamespace, TagsNamespace}
	}
	return []string{MetaNamespace}
}
