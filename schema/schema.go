package schema

// ============================================================================
// SCHEMA — Field Classification for Pivot Configuration
// ============================================================================
// Inspects a bounded sample of records and classifies each field so a
// configuration UI can populate its field pickers: which fields exist, which
// are numeric enough to aggregate, how many distinct values they carry.
// Classification is guidance only — the engine re-parses every value at
// computation time.
// ============================================================================

// Field type labels.
const (
	TypeNumber  = "number"
	TypeString  = "string"
	TypeBoolean = "boolean"
	TypeDate    = "date"
)

// FieldStats describes one field of a dataset snapshot.
// Derived and read-only; recompute when the dataset changes.
type FieldStats struct {
	Field       string `json:"field"`
	Type        string `json:"type"`
	UniqueCount int    `json:"uniqueCount"` // distinct values over the sample
	IsNumeric   bool   `json:"isNumeric"`
}

// SampleSize bounds how many non-null values are inspected per field.
const SampleSize = 100

// numericThreshold: share of sampled values that must parse as numbers for a
// field to classify as numeric.
const numericThreshold = 0.8
