package model

// RecordSet accumulates records across pages and groups.
// The first record seen for an identity is kept; later ones are dropped.
// A RecordSet is not safe for concurrent use. A listing run is sequential.
type RecordSet struct {
	records []Record
	index   map[string]int
}

// NewRecordSet returns an empty set.
func NewRecordSet() *RecordSet {
	return &RecordSet{index: make(map[string]int)}
}

// Add inserts r unless a record with the same identity is already present.
// It reports whether r was inserted. Records without any identity are rejected.
func (s *RecordSet) Add(r Record) bool {
	id := r.Identity()
	if id == "" {
		return false
	}
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = len(s.records)
	s.records = append(s.records, r)
	return true
}

// AddAll adds every record in order and returns how many were inserted.
func (s *RecordSet) AddAll(records []Record) int {
	added := 0
	for _, r := range records {
		if s.Add(r) {
			added++
		}
	}
	return added
}

// Len returns the number of distinct records.
func (s *RecordSet) Len() int {
	return len(s.records)
}

// Get returns the record stored for identity.
func (s *RecordSet) Get(identity string) (Record, bool) {
	i, ok := s.index[identity]
	if !ok {
		return Record{}, false
	}
	return s.records[i], true
}

// Records returns the records in insertion order.
// The returned slice is a copy.
func (s *RecordSet) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// CountByCategory returns how many records belong to c.
func (s *RecordSet) CountByCategory(c Category) int {
	n := 0
	for _, r := range s.records {
		if r.Category == c {
			n++
		}
	}
	return n
}
