package models

// Bound is an inclusive numeric range.
type Bound struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within the bound, endpoints included.
func (b Bound) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// BoundEntry pairs a parameter name with its bound.
type BoundEntry struct {
	Parameter string `json:"parameter"`
	Bound
}

// BoundMap maps parameter names to bounds and iterates in insertion order.
// Setting an existing parameter replaces its bound in place.
type BoundMap struct {
	keys   []string
	bounds map[string]Bound
}

// NewBoundMap creates an empty BoundMap.
func NewBoundMap() *BoundMap {
	return &BoundMap{bounds: make(map[string]Bound)}
}

// Set inserts or overwrites the bound for parameter.
func (m *BoundMap) Set(parameter string, b Bound) {
	if m.bounds == nil {
		m.bounds = make(map[string]Bound)
	}
	if _, ok := m.bounds[parameter]; !ok {
		m.keys = append(m.keys, parameter)
	}
	m.bounds[parameter] = b
}

// Get returns the bound for parameter.
func (m *BoundMap) Get(parameter string) (Bound, bool) {
	if m == nil {
		return Bound{}, false
	}
	b, ok := m.bounds[parameter]
	return b, ok
}

// Len returns the number of parameters.
func (m *BoundMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Entries returns the parameters and bounds in insertion order.
func (m *BoundMap) Entries() []BoundEntry {
	if m == nil {
		return nil
	}
	out := make([]BoundEntry, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, BoundEntry{Parameter: k, Bound: m.bounds[k]})
	}
	return out
}
