package pivot

// ============================================================================
// DATASET VIEW — Zero-Copy Data Access Interface
// ============================================================================
// The engine never owns consumer data. It reads through this interface.
//
// Implementations:
//   SliceView      — wraps []Record (CSV, ad-hoc)
//   DomainView[T]  — reads typed structs via accessor functions (zero-copy)
//
// Consumers register accessors once at init; the engine reads per record
// during grouping. Values come back untyped so the engine can apply its own
// numeric-parse and count-fallback rules.
// ============================================================================

// Dataset provides indexed access to flat records.
// Value is called in tight loops — keep implementations fast.
type Dataset interface {
	Len() int
	Value(index int, field string) any
	Fields() []string // available field names
}

// ============================================================================
// SLICE VIEW — wraps []Record
// ============================================================================

// SliceView wraps a []Record slice as a Dataset.
type SliceView struct {
	records []Record
	fields  []string
}

// NewSliceView creates a Dataset from a []Record slice.
func NewSliceView(records []Record) Dataset {
	v := &SliceView{records: records}
	v.cacheFields()
	return v
}

func (v *SliceView) cacheFields() {
	if len(v.records) == 0 {
		return
	}
	seen := make(map[string]bool)
	for _, r := range v.records {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				v.fields = append(v.fields, k)
			}
		}
	}
}

func (v *SliceView) Len() int { return len(v.records) }

func (v *SliceView) Value(i int, field string) any {
	if i < 0 || i >= len(v.records) {
		return nil
	}
	return v.records[i][field]
}

func (v *SliceView) Fields() []string { return v.fields }

// ============================================================================
// DOMAIN ADAPTER — Zero-copy typed struct access
// ============================================================================
//
// Usage:
//
//	adapter := pivot.NewDomainAdapter[Order]().
//	    Field("region", func(o Order) any { return o.Region }).
//	    Field("sales", func(o Order) any { return o.Sales })
//
//	ds := adapter.Bind(orders)
//	result := pivot.ComputePivotView(ds, cfg)
//
// ============================================================================

// DomainAdapter builds a Dataset from typed structs.
// Declare once, bind many times.
type DomainAdapter[T any] struct {
	order     []string
	accessors map[string]func(T) any
}

// NewDomainAdapter creates a new adapter for type T.
func NewDomainAdapter[T any]() *DomainAdapter[T] {
	return &DomainAdapter[T]{accessors: make(map[string]func(T) any)}
}

// Field registers a field accessor.
func (a *DomainAdapter[T]) Field(name string, fn func(T) any) *DomainAdapter[T] {
	if _, exists := a.accessors[name]; !exists {
		a.order = append(a.order, name)
	}
	a.accessors[name] = fn
	return a
}

// Bind creates a Dataset from a data slice. Zero-copy — holds reference.
func (a *DomainAdapter[T]) Bind(data []T) Dataset {
	return &DomainView[T]{data: data, accessors: a.accessors, fields: a.order}
}

// DomainView reads typed struct fields via registered accessor functions.
type DomainView[T any] struct {
	data      []T
	accessors map[string]func(T) any
	fields    []string
}

func (v *DomainView[T]) Len() int { return len(v.data) }

func (v *DomainView[T]) Value(i int, field string) any {
	if i < 0 || i >= len(v.data) {
		return nil
	}
	if fn, ok := v.accessors[field]; ok {
		return fn(v.data[i])
	}
	return nil
}

func (v *DomainView[T]) Fields() []string { return v.fields }
