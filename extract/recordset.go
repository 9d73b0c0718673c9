package extract

import "github.com/poiesic/cardvec/core"

// RecordSet is an insertion-ordered mapping from record name to Record.
// Putting a name that already exists replaces its fields but keeps the
// position of the first occurrence.
type RecordSet struct {
	order  []string
	byName map[string]core.Record
}

// NewRecordSet creates an empty record set.
func NewRecordSet() *RecordSet {
	return &RecordSet{byName: make(map[string]core.Record)}
}

// Put stores r under r.Name. It reports whether the name was already present.
func (s *RecordSet) Put(r core.Record) (replaced bool) {
	if _, ok := s.byName[r.Name]; ok {
		replaced = true
	} else {
		s.order = append(s.order, r.Name)
	}
	s.byName[r.Name] = r
	return replaced
}

// Get returns the record stored under name.
func (s *RecordSet) Get(name string) (core.Record, bool) {
	r, ok := s.byName[name]
	return r, ok
}

// Len returns the number of distinct names.
func (s *RecordSet) Len() int {
	return len(s.order)
}

// Names returns record names in insertion order.
func (s *RecordSet) Names() []string {
	return append([]string(nil), s.order...)
}

// Records returns the records in insertion order.
func (s *RecordSet) Records() []core.Record {
	records := make([]core.Record, len(s.order))
	for i, name := range s.order {
		records[i] = s.byName[name]
	}
	return records
}
