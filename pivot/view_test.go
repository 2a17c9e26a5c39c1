package pivot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSliceView(t *testing.T) {
	ds := NewSliceView([]Record{
		{"region": "North", "sales": 100.0},
		{"region": "South", "sales": 50.0, "quarter": "Q1"},
	})

	require.Equal(t, 2, ds.Len())
	require.Equal(t, "North", ds.Value(0, "region"))
	require.Equal(t, 50.0, ds.Value(1, "sales"))
	require.Nil(t, ds.Value(0, "quarter"))
	require.Nil(t, ds.Value(-1, "region"))
	require.Nil(t, ds.Value(9, "region"))
	require.ElementsMatch(t, []string{"region", "sales", "quarter"}, ds.Fields())
}

func TestDomainAdapterPivot(t *testing.T) {
	type Order struct {
		Region string
		Sales  float64
	}

	adapter := NewDomainAdapter[Order]().
		Field("region", func(o Order) any { return o.Region }).
		Field("sales", func(o Order) any { return o.Sales })

	ds := adapter.Bind([]Order{
		{Region: "North", Sales: 100},
		{Region: "North", Sales: 50},
		{Region: "South", Sales: 150},
	})
	require.Equal(t, []string{"region", "sales"}, ds.Fields())
	require.Nil(t, ds.Value(0, "unregistered"))

	cfg := NewConfig()
	cfg.AddRowField("region")
	cfg.AddValueField(ValueField{Field: "sales", Aggregation: AggSum})

	res := ComputePivotView(ds, cfg)
	require.NotNil(t, res)
	require.Equal(t, 150.0, *res.Data[0][0].Value)
	require.Equal(t, 150.0, *res.Data[1][0].Value)
}
