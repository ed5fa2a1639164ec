package assignment

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/tuannm99/sqlgrade/internal/validate"
)

var (
	ErrNotFound          = errors.New("assignment: not found")
	ErrInvalidAssignment = errors.New("assignment: invalid")
)

type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

type Column struct {
	ColumnName string `json:"column_name" yaml:"column_name"`
	DataType   string `json:"data_type" yaml:"data_type"`
}

// SampleTable is seed data shown to the learner and loaded into the
// assignment's schema by the host.
type SampleTable struct {
	TableName string             `json:"table_name" yaml:"table_name"`
	Columns   []Column           `json:"columns" yaml:"columns"`
	Rows      validate.ResultSet `json:"rows" yaml:"rows"`
}

// TestCase is one named check run against a submission's result.
type TestCase struct {
	Name           string                   `json:"name" yaml:"name"`
	Input          string                   `json:"input,omitempty" yaml:"input,omitempty"`
	ExpectedOutput *validate.ExpectedOutput `json:"expected_output" yaml:"expected_output"`
	Description    string                   `json:"description,omitempty" yaml:"description,omitempty"`
}

type Assignment struct {
	ID             string                   `json:"id" yaml:"id"`
	Title          string                   `json:"title" yaml:"title"`
	Description    string                   `json:"description" yaml:"description"`
	Difficulty     Difficulty               `json:"difficulty" yaml:"difficulty"`
	Question       string                   `json:"question" yaml:"question"`
	SchemaName     string                   `json:"schema_name" yaml:"schema_name"`
	SampleTables   []SampleTable            `json:"sample_tables,omitempty" yaml:"sample_tables,omitempty"`
	ExpectedOutput *validate.ExpectedOutput `json:"expected_output,omitempty" yaml:"expected_output,omitempty"`
	TestCases      []TestCase               `json:"test_cases,omitempty" yaml:"test_cases,omitempty"`
	CreatedAt      time.Time                `json:"created_at" yaml:"created_at,omitempty"`
	UpdatedAt      time.Time                `json:"updated_at" yaml:"updated_at,omitempty"`
}

// Summary is the listing view without answers.
type Summary struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Difficulty Difficulty `json:"difficulty"`
	TestCases  int        `json:"test_cases"`
}

func (a *Assignment) Summary() Summary {
	return Summary{ID: a.ID, Title: a.Title, Difficulty: a.Difficulty, TestCases: len(a.TestCases)}
}

// Validate checks required fields and expected output kinds.
func (a *Assignment) Validate() error {
	var missing []string
	for name, v := range map[string]string{
		"id":          a.ID,
		"title":       a.Title,
		"description": a.Description,
		"question":    a.Question,
		"schema_name": a.SchemaName,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("%w: %s: missing %s", ErrInvalidAssignment, a.ID, strings.Join(missing, ", "))
	}

	if !a.Difficulty.Valid() {
		return fmt.Errorf("%w: %s: difficulty %q", ErrInvalidAssignment, a.ID, a.Difficulty)
	}
	if a.ExpectedOutput != nil && !a.ExpectedOutput.Kind.Valid() {
		return fmt.Errorf("%w: %s: expected output type %q", ErrInvalidAssignment, a.ID, a.ExpectedOutput.Kind)
	}
	for i, tc := range a.TestCases {
		if strings.TrimSpace(tc.Name) == "" {
			return fmt.Errorf("%w: %s: test case %d has no name", ErrInvalidAssignment, a.ID, i+1)
		}
		if tc.ExpectedOutput == nil {
			return fmt.Errorf("%w: %s: test case %q has no expected output", ErrInvalidAssignment, a.ID, tc.Name)
		}
		if !tc.ExpectedOutput.Kind.Valid() {
			return fmt.Errorf("%w: %s: test case %q type %q", ErrInvalidAssignment, a.ID, tc.Name, tc.ExpectedOutput.Kind)
		}
	}
	return nil
}
