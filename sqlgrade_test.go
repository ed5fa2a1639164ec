package sqlgrade

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate_Facade(t *testing.T) {
	actual := FromRows([]string{"category", "product_count"}, [][]any{
		{"Furniture", "2"},
		{"Electronics", int64(3)},
	})

	v := Validate(actual, ExpectedOutput{Kind: KindTable, Value: ResultSet{
		NewRecord("category", "Electronics", "count", 3),
		NewRecord("category", "Furniture", "count", 2),
	}})
	require.True(t, v.Passed, v.Diagnostic)

	v = Validate(actual, ExpectedOutput{Kind: KindCount, Value: 5})
	require.False(t, v.Passed)
	require.Equal(t, "count: expected 5, got 2", v.Diagnostic)
}
