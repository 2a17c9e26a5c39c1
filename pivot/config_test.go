package pivot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigReadiness(t *testing.T) {
	cfg := NewConfig()
	require.False(t, cfg.IsReady(), "empty config is not computable")

	cfg.AddRowField("region")
	require.False(t, cfg.IsReady(), "rows without values is not computable")

	cfg.AddValueField(ValueField{Field: "sales", Aggregation: AggSum})
	require.True(t, cfg.IsReady())

	cfg.RemoveRowField("region")
	require.False(t, cfg.IsReady())

	cfg.AddColumnField("quarter")
	require.True(t, cfg.IsReady(), "columns alone satisfy the axis requirement")
}

func TestConfigDuplicateAxisFieldsIgnored(t *testing.T) {
	cfg := NewConfig()
	cfg.AddRowField("region")
	cfg.AddRowField("region")
	cfg.AddColumnField("quarter")
	cfg.AddColumnField("quarter")
	require.Equal(t, []string{"region"}, cfg.RowFields)
	require.Equal(t, []string{"quarter"}, cfg.ColumnFields)
}

func TestConfigValueFieldMutation(t *testing.T) {
	cfg := NewConfig()
	cfg.AddValueField(ValueField{Field: "sales", Aggregation: AggSum})
	cfg.AddValueField(ValueField{Field: "sales", Aggregation: AggAvg})
	require.Len(t, cfg.ValueFields, 2, "same field may carry two aggregations")

	cfg.SetValueAggregation(1, AggMax)
	require.Equal(t, AggMax, cfg.ValueFields[1].Aggregation)

	cfg.SetValueAggregation(5, AggMin) // out of range is a no-op
	cfg.RemoveValueField(5)
	require.Len(t, cfg.ValueFields, 2)

	cfg.RemoveValueField(0)
	require.Len(t, cfg.ValueFields, 1)
	require.Equal(t, AggMax, cfg.ValueFields[0].Aggregation)
}

func TestConfigReset(t *testing.T) {
	cfg := NewConfig()
	cfg.AddRowField("region")
	cfg.AddColumnField("quarter")
	cfg.AddValueField(ValueField{Field: "sales", Aggregation: AggSum})
	cfg.AddCalculatedField(NewCalculatedField("margin", "profit / sales", "percent", 1))

	cfg.Reset()
	require.Empty(t, cfg.RowFields)
	require.Empty(t, cfg.ColumnFields)
	require.Empty(t, cfg.ValueFields)
	require.Len(t, cfg.CalculatedFields, 1, "reset keeps calculated-field definitions")
}

func TestConfigUsesField(t *testing.T) {
	cfg := NewConfig()
	cfg.AddRowField("region")
	cfg.AddColumnField("quarter")
	cfg.AddValueField(ValueField{Field: "sales", Aggregation: AggSum})

	require.True(t, cfg.UsesField("region"))
	require.True(t, cfg.UsesField("quarter"))
	require.True(t, cfg.UsesField("sales"))
	require.False(t, cfg.UsesField("profit"))
}

func TestConfigConcreteFields(t *testing.T) {
	cf := NewCalculatedField("margin", "profit / sales", "percent", 1)
	cfg := NewConfig()
	cfg.AddRowField("region")
	cfg.AddColumnField("quarter")
	cfg.AddValueField(ValueField{Field: "sales", Aggregation: AggSum})
	cfg.AddValueField(ValueField{Field: "sales", Aggregation: AggAvg})
	cfg.AddCalculatedField(cf)
	cfg.AddValueField(ValueField{Field: CalcPrefix + cf.ID, Aggregation: AggSum})

	require.Equal(t, []string{"region", "quarter", "sales"}, cfg.ConcreteFields(),
		"calculated references and duplicates are excluded")
}

func TestConfigRemoveCalculatedField(t *testing.T) {
	cf := NewCalculatedField("margin", "profit / sales", "percent", 1)
	require.NotEmpty(t, cf.ID)

	cfg := NewConfig()
	cfg.AddRowField("region")
	cfg.AddCalculatedField(cf)
	cfg.AddValueField(ValueField{Field: "sales", Aggregation: AggSum})
	cfg.AddValueField(ValueField{Field: CalcPrefix + cf.ID})

	cfg.RemoveCalculatedField(cf.ID)
	require.Empty(t, cfg.CalculatedFields)
	require.Len(t, cfg.ValueFields, 1, "referencing value fields go with the definition")
	require.Equal(t, "sales", cfg.ValueFields[0].Field)
}
