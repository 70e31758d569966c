package wizard

import "strings"

// PopularTags is the suggested service vocabulary. Providers are not
// limited to it.
var PopularTags = []string{
	"Grădinărit",
	"Îngrijire animale",
	"Curățenie",
	"Reparații",
	"Muncă fizică",
	"Asistență IT",
}

// FilterTags returns the vocabulary entries containing query, ignoring case.
func FilterTags(vocabulary []string, query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]string, 0, len(vocabulary))
	for _, t := range vocabulary {
		if strings.Contains(strings.ToLower(t), q) {
			out = append(out, t)
		}
	}
	return out
}

// TagSet is a set of tags that remembers selection order.
type TagSet struct {
	order []string
	index map[string]int
}

func NewTagSet(tags ...string) *TagSet {
	s := &TagSet{index: map[string]int{}}
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

func (s *TagSet) Add(tag string) {
	if _, ok := s.index[tag]; ok {
		return
	}
	s.index[tag] = len(s.order)
	s.order = append(s.order, tag)
}

func (s *TagSet) Remove(tag string) {
	i, ok := s.index[tag]
	if !ok {
		return
	}
	s.order = append(s.order[:i], s.order[i+1:]...)
	delete(s.index, tag)
	for j := i; j < len(s.order); j++ {
		s.index[s.order[j]] = j
	}
}

// Toggle adds tag when absent and removes it when present. It reports
// whether the tag is selected afterwards.
func (s *TagSet) Toggle(tag string) bool {
	if s.Has(tag) {
		s.Remove(tag)
		return false
	}
	s.Add(tag)
	return true
}

func (s *TagSet) Has(tag string) bool {
	_, ok := s.index[tag]
	return ok
}

func (s *TagSet) Len() int { return len(s.order) }

// Values returns the tags in selection order.
func (s *TagSet) Values() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
