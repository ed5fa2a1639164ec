package validate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func users() ResultSet {
	return ResultSet{
		NewRecord("id", 1, "name", "A"),
		NewRecord("id", 2, "name", "B"),
		NewRecord("id", 3, "name", "C"),
	}
}

func TestMatchRows_OrderIndependent(t *testing.T) {
	expected := users()
	perms := []ResultSet{
		{expected[0], expected[1], expected[2]},
		{expected[2], expected[0], expected[1]},
		{expected[1], expected[2], expected[0]},
		{expected[2], expected[1], expected[0]},
	}
	for _, p := range perms {
		require.True(t, MatchRows(p, expected))
	}
}

func TestMatchRows_LengthMismatch(t *testing.T) {
	require.False(t, MatchRows(users()[:2], users()))
}

func TestMatchRows_ExtraActualColumnsAllowed(t *testing.T) {
	actual := ResultSet{
		NewRecord("ID", 1, "Name", "A", "email", "a@example.com"),
	}
	expected := ResultSet{NewRecord("id", 1, "name", "a")}
	require.True(t, MatchRows(actual, expected))
}

func TestMatchRows_MissingExpectedColumn(t *testing.T) {
	actual := ResultSet{NewRecord("id", 1)}
	expected := ResultSet{NewRecord("id", 1, "name", "A")}
	require.False(t, MatchRows(actual, expected))
}

func TestMatchRows_DuplicateRowsNeedDistinctPartners(t *testing.T) {
	actual := ResultSet{NewRecord("id", 1), NewRecord("id", 1)}
	expected := ResultSet{NewRecord("id", 1), NewRecord("id", 2)}
	require.False(t, MatchRows(actual, expected))
}

// The first actual row fits both expected rows, the second fits only the
// first. Greedy claims the wrong one; augmenting paths recover.
func TestMatchRows_GreedyVersusOptimal(t *testing.T) {
	actual := ResultSet{
		NewRecord("id", 1, "name", "a"),
		NewRecord("id", 1, "name", "b"),
	}
	expected := ResultSet{
		NewRecord("id", 1),
		NewRecord("id", 1, "name", "a"),
	}

	greedy := New(DefaultOptions())
	ok, row := greedy.matchRows(actual, expected)
	require.False(t, ok)
	require.Equal(t, 1, row)

	opts := DefaultOptions()
	opts.Matching = MatchOptimal
	require.True(t, New(opts).MatchRows(actual, expected))
}

func TestParseMatchMode(t *testing.T) {
	m, ok := ParseMatchMode("")
	require.True(t, ok)
	require.Equal(t, MatchGreedy, m)

	m, ok = ParseMatchMode("optimal")
	require.True(t, ok)
	require.Equal(t, MatchOptimal, m)
	require.Equal(t, "optimal", m.String())

	_, ok = ParseMatchMode("hungarian")
	require.False(t, ok)
}
