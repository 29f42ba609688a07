package delicious

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/MrSnakeDoc/delicious2fluid/internal/domain"
)

// Netscape export attributes (the html parser lowercases keys).
const (
	htmlAttrHref    = "href"
	htmlAttrAddDate = "add_date"
	htmlAttrPrivate = "private"
	htmlAttrTags    = "tags"
)

// ParseHTML reads the Netscape bookmark file produced by the web export.
//
//	<DT><A HREF="..." ADD_DATE="..." PRIVATE="0" TAGS="a,b">title</A>
//	<DD>notes
//
// A <DD> that directly follows an anchor becomes that bookmark's notes;
// one that follows a folder heading is ignored.
func ParseHTML(doc []byte, opts ParseOptions) (*Result, error) {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, &domain.MalformedInputError{Reason: "invalid html", Err: err}
	}

	var (
		entries []domain.Bookmark
		last    = -1
		walkErr error
	)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if walkErr != nil {
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a":
				b, err := mapAnchor(n)
				if err != nil {
					walkErr = &domain.MalformedInputError{Reason: fmt.Sprintf("entry %d: %v", len(entries), err)}
					return
				}
				entries = append(entries, b)
				last = len(entries) - 1
				// Anchor text is already consumed.
				return
			case "dd":
				if last >= 0 && entries[last].Notes == nil {
					entries[last].Notes = domain.StringPtr(directText(n))
				}
				last = -1
			case "h3", "dl":
				// Folder headings and their descriptions belong to no bookmark.
				last = -1
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	if walkErr != nil {
		return nil, walkErr
	}

	c := newCollector(opts)
	for i, b := range entries {
		if err := c.add(b, i); err != nil {
			return nil, err
		}
	}
	return c.result(), nil
}

func mapAnchor(n *html.Node) (domain.Bookmark, error) {
	attrs := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		attrs[a.Key] = a.Val
	}

	href, ok := attrs[htmlAttrHref]
	if !ok || strings.TrimSpace(href) == "" {
		return domain.Bookmark{}, fmt.Errorf("missing %s", htmlAttrHref)
	}

	b := domain.Bookmark{
		URL:   href,
		Title: domain.StringPtr(strings.TrimSpace(textContent(n))),
	}
	if v, ok := attrs[htmlAttrAddDate]; ok {
		b.Time = domain.StringPtr(v)
	}
	if v, ok := attrs[htmlAttrTags]; ok {
		b.Tags = splitCommaTags(v)
	}
	if v, ok := attrs[htmlAttrPrivate]; ok {
		// Stored with the same "shared" vocabulary as the API export.
		raw := "yes"
		if v == "1" {
			raw = "no"
		}
		vis := domain.ParseVisibility(raw)
		b.Visibility = &vis
		b.SharedRaw = raw
	}

	return b, nil
}

func splitCommaTags(raw string) []string {
	tags := make([]string, 0, 4)
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}

// directText ignores nested lists so a <DD> wrapping a folder does not swallow it.
func directText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(sb.String())
}
