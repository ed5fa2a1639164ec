package assignment

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/sqlgrade/internal/validate"
)

const categoryCounts = `
title: Count Products per Category
description: Group and count
difficulty: Medium
question: Count the products in each category.
schema_name: assignment_4
sample_tables:
  - table_name: products
    columns:
      - {column_name: id, data_type: INTEGER}
      - {column_name: category, data_type: TEXT}
    rows:
      - {id: 1, category: Electronics}
      - {id: 2, category: Furniture}
expected_output:
  type: table
  value:
    - {category: Electronics, count: 3}
    - {category: Furniture, count: 2}
test_cases:
  - name: "Test Case 1: Correct category counts"
    expected_output:
      type: table
      value:
        - {category: Electronics, count: 3}
        - {category: Furniture, count: 2}
  - name: "Test Case 2: Electronics count"
    expected_output:
      type: count
      value: 3
    description: Verify Electronics category has 3 products
`

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func sample(id string) *Assignment {
	return &Assignment{
		ID:          id,
		Title:       "Max salary",
		Description: "Aggregate",
		Difficulty:  Easy,
		Question:    "Find the highest salary.",
		SchemaName:  "assignment_5",
		TestCases: []TestCase{{
			Name:           "Maximum salary value",
			ExpectedOutput: &validate.ExpectedOutput{Kind: validate.KindSingleValue, Value: 80000},
		}},
	}
}

func TestFileStore_LoadsYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "assignment_4.yaml", categoryCounts)
	writeFile(t, dir, "README.md", "not an assignment")

	s, err := OpenFileStore(dir)
	require.NoError(t, err)

	a, err := s.Get(context.Background(), "assignment_4")
	require.NoError(t, err)
	require.Equal(t, Medium, a.Difficulty)
	require.Len(t, a.SampleTables, 1)
	require.Len(t, a.SampleTables[0].Rows, 2)
	require.Len(t, a.TestCases, 2)
	require.Equal(t, validate.KindCount, a.TestCases[1].ExpectedOutput.Kind)

	rows, ok := a.ExpectedOutput.Value.(validate.ResultSet)
	require.True(t, ok)
	require.Equal(t, []string{"category", "count"}, rows[0].Columns)

	list, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, Summary{ID: "assignment_4", Title: "Count Products per Category", Difficulty: Medium, TestCases: 2}, list[0].Summary())
}

func TestFileStore_NotFound(t *testing.T) {
	s, err := OpenFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", "title: x\ndescription: y\nquestion: z\nschema_name: s\ndifficulty: Impossible\n")

	_, err := OpenFileStore(dir)
	require.ErrorIs(t, err, ErrInvalidAssignment)
	require.Contains(t, err.Error(), "difficulty")
}

func TestFileStore_RejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "id: same\n"+categoryCounts)
	writeFile(t, dir, "b.yml", "id: same\n"+categoryCounts)

	_, err := OpenFileStore(dir)
	require.ErrorIs(t, err, ErrInvalidAssignment)
	require.Contains(t, err.Error(), "duplicate")
}

func TestFileStore_PutAndReload(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put(context.Background(), sample("assignment_5")))
	require.FileExists(t, filepath.Join(dir, "assignment_5.yaml"))

	require.NoError(t, s.Reload())
	a, err := s.Get(context.Background(), "assignment_5")
	require.NoError(t, err)
	require.False(t, a.CreatedAt.IsZero())
	require.Equal(t, validate.KindSingleValue, a.TestCases[0].ExpectedOutput.Kind)

	v := validate.Validate(validate.ResultSet{validate.NewRecord("max", 80000)}, *a.TestCases[0].ExpectedOutput)
	require.True(t, v.Passed, v.Diagnostic)
}

func TestFileStore_PutRejectsPathID(t *testing.T) {
	s, err := OpenFileStore(t.TempDir())
	require.NoError(t, err)

	err = s.Put(context.Background(), sample("../escape"))
	require.ErrorIs(t, err, ErrInvalidAssignment)
}

func TestMemStore(t *testing.T) {
	s, err := NewMemStore(sample("b"), sample("a"))
	require.NoError(t, err)

	list, err := s.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, "a", list[0].ID)
	require.Equal(t, "b", list[1].ID)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Get(ctx, "a")
	require.ErrorIs(t, err, context.Canceled)
}

func TestAssignment_Validate(t *testing.T) {
	a := sample("x")
	a.Title = ""
	a.SchemaName = " "
	err := a.Validate()
	require.ErrorIs(t, err, ErrInvalidAssignment)
	require.Contains(t, err.Error(), "missing schema_name, title")

	a = sample("x")
	a.TestCases[0].ExpectedOutput = &validate.ExpectedOutput{Kind: "histogram"}
	require.ErrorIs(t, a.Validate(), ErrInvalidAssignment)

	a = sample("x")
	a.TestCases[0].Name = ""
	require.ErrorIs(t, a.Validate(), ErrInvalidAssignment)
}

func TestFileStore_ShippedAssignments(t *testing.T) {
	s, err := OpenFileStore(filepath.Join("..", "..", "assignments"))
	require.NoError(t, err)

	list, err := s.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, list)

	a, err := s.Get(context.Background(), "assignment_4")
	require.NoError(t, err)

	actual := validate.FromRows([]string{"category", "product_count"}, [][]any{
		{"Furniture", int64(2)},
		{"Electronics", int64(3)},
	})
	for _, tc := range a.TestCases {
		v := validate.Validate(actual, *tc.ExpectedOutput)
		require.True(t, v.Passed, "%s: %s", tc.Name, v.Diagnostic)
	}
}
