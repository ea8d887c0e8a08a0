package jsonapi

// Cardinality of a declared join.
type Cardinality string

const (
	One  Cardinality = "one"
	Many Cardinality = "many"
)

// JoinSpec declares a named relationship between two record types.
// For a `one` (belongs-to) join the foreign key lives on the owning side;
// for a `many` join the owning record exposes a materialized array of
// target records once eager-loaded and ForeignKey is empty.
type JoinSpec struct {
	Name        string
	Cardinality Cardinality
	ForeignKey  string
	TargetType  string
}

// TypeInfo is the per-type entry of the registry. Joins are kept ordered so
// encoding is deterministic.
type TypeInfo struct {
	Name   string // wire type, singular (e.g. "purchaseOrder")
	Plural string // table / route name (e.g. "purchaseOrders")
	Joins  []JoinSpec
}

func (t *TypeInfo) Join(name string) (JoinSpec, bool) {
	for _, j := range t.Joins {
		if j.Name == name {
			return j, true
		}
	}
	return JoinSpec{}, false
}

// Registry holds the join metadata for every record type. It is built once
// at startup and passed by reference into the encoder, decoder and
// flattener. It is never mutated after construction.
type Registry struct {
	types map[string]*TypeInfo
}

func NewRegistry(types ...TypeInfo) *Registry {
	r := &Registry{types: make(map[string]*TypeInfo, len(types))}
	for i := range types {
		t := types[i]
		r.types[t.Name] = &t
	}
	return r
}

func (r *Registry) Type(name string) (*TypeInfo, bool) {
	t, ok := r.types[name]
	return t, ok
}

// FieldSelector is a sparse-fieldset projection, either "only these fields"
// or "all fields except these". The two forms are decided once at the
// query-parsing boundary, never re-sniffed inside the encoder.
type FieldSelector struct {
	exclude bool
	names   map[string]bool
}

func IncludeFields(names ...string) FieldSelector {
	return FieldSelector{names: nameSet(names)}
}

func ExcludeFields(names ...string) FieldSelector {
	return FieldSelector{exclude: true, names: nameSet(names)}
}

// ParseFieldSelector interprets the raw fields[type] values. A list whose
// first entry is prefixed with "-" is an exclusion list.
func ParseFieldSelector(raw []string) FieldSelector {
	if len(raw) > 0 && len(raw[0]) > 0 && raw[0][0] == '-' {
		names := make([]string, 0, len(raw))
		for _, f := range raw {
			if len(f) > 0 && f[0] == '-' {
				f = f[1:]
			}
			names = append(names, f)
		}
		return ExcludeFields(names...)
	}
	return IncludeFields(raw...)
}

func (s FieldSelector) isZero() bool {
	return s.names == nil
}

// selected reports whether a field survives the projection.
func (s FieldSelector) selected(name string) bool {
	if s.exclude {
		return !s.names[name]
	}
	return s.names[name]
}

// Names returns the selected field names of an inclusion list, in no
// particular order. Exclusion lists return nil.
func (s FieldSelector) Names() []string {
	if s.exclude || s.names == nil {
		return nil
	}
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	return out
}

func nameSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
