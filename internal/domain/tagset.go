package domain

// TagSet is a deduplicated collection of tag names that remembers first-seen order.
type TagSet struct {
	seen  map[string]struct{}
	names []string
}

// NewTagSet creates an empty tag set.
func NewTagSet() *TagSet {
	return &TagSet{seen: make(map[string]struct{})}
}

// Add inserts name if it is not already present.
func (s *TagSet) Add(name string) {
	if _, ok := s.seen[name]; ok {
		return
	}
	s.seen[name] = struct{}{}
	s.names = append(s.names, name)
}

// Has reports whether name is in the set.
func (s *TagSet) Has(name string) bool {
	_, ok := s.seen[name]
	return ok
}

// Len returns the number of distinct names.
func (s *TagSet) Len() int {
	return len(s.names)
}

// Names returns a copy of the names in first-seen order.
func (s *TagSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}
