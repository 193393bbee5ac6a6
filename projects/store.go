package projects

// Store holds projects keyed by name and remembers the order in which
// names were first seen.
type Store struct {
	entries map[string]*Project
	order   []string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[string]*Project)}
}

// Put inserts p, replacing any entry with the same name. A replaced entry
// keeps its original position.
func (s *Store) Put(p Project) {
	if _, ok := s.entries[p.Name]; !ok {
		s.order = append(s.order, p.Name)
	}
	c := p.clone()
	s.entries[p.Name] = &c
}

// Merge applies a manual record. When an entry with the same name exists,
// only the record's explicitly set url, description, owner, contributions,
// non-empty tags and role override it; fetched metrics are never touched.
// Otherwise the record is inserted as is. Merge reports whether an existing
// entry was updated.
func (s *Store) Merge(m Project) bool {
	old, ok := s.entries[m.Name]
	if !ok {
		s.Put(m)
		return false
	}
	if m.URL != nil {
		old.URL = m.URL
	}
	if m.Description != nil {
		old.Description = m.Description
	}
	if m.Owner != nil {
		old.Owner = m.Owner
	}
	if m.Contributions != nil {
		old.Contributions = m.Contributions
	}
	if len(m.Tags) > 0 {
		old.Tags = append([]string(nil), m.Tags...)
	}
	if m.Role != nil {
		old.Role = m.Role
	}
	return true
}

// Get returns a copy of the entry named name.
func (s *Store) Get(name string) (Project, bool) {
	p, ok := s.entries[name]
	if !ok {
		return Project{}, false
	}
	return p.clone(), true
}

// All returns copies of every entry in first-seen order.
func (s *Store) All() []Project {
	out := make([]Project, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.entries[name].clone())
	}
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.order)
}
