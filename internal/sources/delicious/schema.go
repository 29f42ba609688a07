package delicious

import "encoding/xml"

// PostsDocument is the root of a posts/all export.
// The root name is not checked; only <post> children are read.
type PostsDocument struct {
	XMLName xml.Name
	User    string `xml:"user,attr"`
	Posts   []Post `xml:"post"`
}

// Post is one <post .../> entry. Attributes are captured raw so that
// absent and empty attributes can be told apart.
type Post struct {
	Attrs []xml.Attr `xml:",any,attr"`
}

// Attr returns the attribute value and whether it was present.
func (p Post) Attr(name string) (string, bool) {
	for _, a := range p.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Source attribute names.
const (
	attrHref        = "href"
	attrHash        = "hash"
	attrDescription = "description"
	attrTag         = "tag"
	attrTime        = "time"
	attrExtended    = "extended"
	attrMeta        = "meta"
	attrShared      = "shared"
)
