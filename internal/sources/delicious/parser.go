package delicious

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MrSnakeDoc/delicious2fluid/internal/domain"
)

// Format identifies the layout of an export document.
type Format int

const (
	FormatXML Format = iota
	FormatHTML
)

func (f Format) String() string {
	if f == FormatHTML {
		return "html"
	}
	return "xml"
}

func (f Format) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// ParseOptions controls record filtering.
type ParseOptions struct {
	// SkipPrivate drops entries marked as not shared.
	// Their tags are still collected.
	SkipPrivate bool
}

// Result is the output of a parse.
type Result struct {
	Tags    *domain.TagSet
	Records []domain.Bookmark
	// Skipped counts entries dropped by SkipPrivate.
	Skipped int
}

// Detect guesses the export format from the first bytes of the document.
func Detect(doc []byte) Format {
	head := bytes.TrimSpace(doc)
	if len(head) > 64 {
		head = head[:64]
	}
	lower := strings.ToLower(string(head))
	if strings.HasPrefix(lower, "<!doctype netscape") || strings.HasPrefix(lower, "<html") {
		return FormatHTML
	}
	return FormatXML
}

// ParseAny parses doc with the parser matching its detected format.
func ParseAny(doc []byte, opts ParseOptions) (*Result, error) {
	if Detect(doc) == FormatHTML {
		return ParseHTML(doc, opts)
	}
	return Parse(doc, opts)
}

// Parse reads a posts/all XML export.
// A root element without entries yields an empty result, not an error.
func Parse(doc []byte, opts ParseOptions) (*Result, error) {
	var root PostsDocument
	d := xml.NewDecoder(bytes.NewReader(doc))
	if err := d.Decode(&root); err != nil {
		return nil, &domain.MalformedInputError{Reason: "invalid xml", Err: err}
	}
	if err := expectEnd(d); err != nil {
		return nil, err
	}

	c := newCollector(opts)
	for i, post := range root.Posts {
		b, err := mapPost(post)
		if err != nil {
			return nil, &domain.MalformedInputError{Reason: fmt.Sprintf("entry %d: %v", i, err)}
		}
		if err := c.add(b, i); err != nil {
			return nil, err
		}
	}

	return c.result(), nil
}

// expectEnd rejects anything but whitespace, comments and processing
// instructions after the root element.
func expectEnd(d *xml.Decoder) error {
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &domain.MalformedInputError{Reason: "invalid xml after root element", Err: err}
		}
		switch t := tok.(type) {
		case xml.Comment, xml.ProcInst:
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return &domain.MalformedInputError{Reason: "text after root element"}
			}
		default:
			return &domain.MalformedInputError{Reason: fmt.Sprintf("unexpected %T after root element", tok)}
		}
	}
}

// mapPost renames source attributes onto a bookmark.
// Attributes missing from the element stay nil.
func mapPost(p Post) (domain.Bookmark, error) {
	href, ok := p.Attr(attrHref)
	if !ok || strings.TrimSpace(href) == "" {
		return domain.Bookmark{}, fmt.Errorf("missing %s", attrHref)
	}

	b := domain.Bookmark{URL: href}
	if v, ok := p.Attr(attrHash); ok {
		b.Hash = domain.StringPtr(v)
	}
	if v, ok := p.Attr(attrDescription); ok {
		b.Title = domain.StringPtr(v)
	}
	if v, ok := p.Attr(attrTag); ok {
		b.Tags = splitTags(v)
	}
	if v, ok := p.Attr(attrTime); ok {
		b.Time = domain.StringPtr(v)
	}
	if v, ok := p.Attr(attrExtended); ok {
		b.Notes = domain.StringPtr(v)
	}
	if v, ok := p.Attr(attrMeta); ok {
		b.Meta = domain.StringPtr(v)
	}
	if v, ok := p.Attr(attrShared); ok {
		vis := domain.ParseVisibility(v)
		b.Visibility = &vis
		b.SharedRaw = v
	}

	return b, nil
}

// splitTags splits on whitespace and never returns nil.
func splitTags(raw string) []string {
	tags := make([]string, 0, 4)
	return append(tags, strings.Fields(raw)...)
}

// collector applies the shared tag and filtering rules for every export format.
type collector struct {
	opts    ParseOptions
	tags    *domain.TagSet
	records []domain.Bookmark
	seen    map[string]int
	skipped int
}

func newCollector(opts ParseOptions) *collector {
	return &collector{
		opts:    opts,
		tags:    domain.NewTagSet(),
		records: make([]domain.Bookmark, 0),
		seen:    make(map[string]int),
	}
}

func (c *collector) add(b domain.Bookmark, pos int) error {
	if first, dup := c.seen[b.URL]; dup {
		return &domain.MalformedInputError{
			Reason: fmt.Sprintf("entry %d: duplicate url %q (first seen at entry %d)", pos, b.URL, first),
		}
	}
	c.seen[b.URL] = pos

	// Tags are collected before filtering so private entries still shape the schema.
	for _, tag := range b.Tags {
		c.tags.Add(tag)
	}

	if c.opts.SkipPrivate && b.IsPrivate() {
		c.skipped++
		return nil
	}
	c.records = append(c.records, b)
	return nil
}

func (c *collector) result() *Result {
	return &Result{Tags: c.tags, Records: c.records, Skipped: c.skipped}
}
