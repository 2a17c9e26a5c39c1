package pivot

import (
	"strings"

	"github.com/google/uuid"
)

// ============================================================================
// PIVOT CONFIGURATION — Declarative Cross-Tab Layout
// ============================================================================
// A Config starts empty and is mutated incrementally by a host UI through
// the add/remove/update operations below. The engine treats it as an opaque
// value per computation; nothing here touches records.
// ============================================================================

// Config declares which fields group rows and columns, which fields are
// aggregated, and which totals to materialize.
type Config struct {
	RowFields        []string          `json:"rowFields"`
	ColumnFields     []string          `json:"columnFields"`
	ValueFields      []ValueField      `json:"valueFields"`
	ShowRowTotals    bool              `json:"showRowTotals"`
	ShowColumnTotals bool              `json:"showColumnTotals"`
	CalculatedFields []CalculatedField `json:"calculatedFields,omitempty"`
}

// NewConfig returns an empty configuration with totals enabled.
func NewConfig() Config {
	return Config{ShowRowTotals: true, ShowColumnTotals: true}
}

// IsReady reports whether the configuration can produce a result:
// at least one grouping axis and at least one value field.
func (c Config) IsReady() bool {
	return (len(c.RowFields) > 0 || len(c.ColumnFields) > 0) && len(c.ValueFields) > 0
}

// AddRowField appends a row grouping field, ignoring duplicates.
func (c *Config) AddRowField(field string) {
	if !containsString(c.RowFields, field) {
		c.RowFields = append(c.RowFields, field)
	}
}

// RemoveRowField removes a row grouping field.
func (c *Config) RemoveRowField(field string) {
	c.RowFields = removeString(c.RowFields, field)
}

// AddColumnField appends a column grouping field, ignoring duplicates.
func (c *Config) AddColumnField(field string) {
	if !containsString(c.ColumnFields, field) {
		c.ColumnFields = append(c.ColumnFields, field)
	}
}

// RemoveColumnField removes a column grouping field.
func (c *Config) RemoveColumnField(field string) {
	c.ColumnFields = removeString(c.ColumnFields, field)
}

// AddValueField appends a value field. The same field may appear twice with
// different aggregations.
func (c *Config) AddValueField(vf ValueField) {
	c.ValueFields = append(c.ValueFields, vf)
}

// RemoveValueField removes the value field at index i.
func (c *Config) RemoveValueField(i int) {
	if i < 0 || i >= len(c.ValueFields) {
		return
	}
	c.ValueFields = append(c.ValueFields[:i], c.ValueFields[i+1:]...)
}

// SetValueAggregation updates the aggregation selector of the value field at
// index i.
func (c *Config) SetValueAggregation(i int, aggregation string) {
	if i < 0 || i >= len(c.ValueFields) {
		return
	}
	c.ValueFields[i].Aggregation = aggregation
}

// Reset clears all field assignments, keeping calculated-field definitions.
func (c *Config) Reset() {
	c.RowFields = nil
	c.ColumnFields = nil
	c.ValueFields = nil
}

// UsesField reports whether any axis or value field references the given
// concrete field. Calculated-field references ("calc:") never match.
func (c Config) UsesField(field string) bool {
	if containsString(c.RowFields, field) || containsString(c.ColumnFields, field) {
		return true
	}
	for _, vf := range c.ValueFields {
		if vf.Field == field {
			return true
		}
	}
	return false
}

// ConcreteFields returns every concrete (non-"calc:") field the
// configuration references.
func (c Config) ConcreteFields() []string {
	var out []string
	seen := make(map[string]bool)
	add := func(f string) {
		if f == "" || strings.HasPrefix(f, CalcPrefix) || seen[f] {
			return
		}
		seen[f] = true
		out = append(out, f)
	}
	for _, f := range c.RowFields {
		add(f)
	}
	for _, f := range c.ColumnFields {
		add(f)
	}
	for _, vf := range c.ValueFields {
		add(vf.Field)
	}
	return out
}

// CalculatedField lookup by the namespaced reference used in ValueField.Field.
func (c Config) calculatedByRef(ref string) (CalculatedField, bool) {
	id := strings.TrimPrefix(ref, CalcPrefix)
	for _, cf := range c.CalculatedFields {
		if cf.ID == id {
			return cf, true
		}
	}
	return CalculatedField{}, false
}

// NewCalculatedField creates a calculated-field definition with a fresh ID.
func NewCalculatedField(name, formula, format string, decimals int) CalculatedField {
	return CalculatedField{
		ID:       uuid.NewString(),
		Name:     name,
		Formula:  formula,
		Format:   format,
		Decimals: decimals,
	}
}

// AddCalculatedField registers a calculated-field definition.
func (c *Config) AddCalculatedField(cf CalculatedField) {
	c.CalculatedFields = append(c.CalculatedFields, cf)
}

// RemoveCalculatedField removes a definition and any value field
// referencing it.
func (c *Config) RemoveCalculatedField(id string) {
	kept := c.CalculatedFields[:0]
	for _, cf := range c.CalculatedFields {
		if cf.ID != id {
			kept = append(kept, cf)
		}
	}
	c.CalculatedFields = kept

	ref := CalcPrefix + id
	vfs := c.ValueFields[:0]
	for _, vf := range c.ValueFields {
		if vf.Field != ref {
			vfs = append(vfs, vf)
		}
	}
	c.ValueFields = vfs
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
