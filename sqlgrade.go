// Package sqlgrade is the top-level facade for the result validation engine.
package sqlgrade

import "github.com/tuannm99/sqlgrade/internal/validate"

type (
	Kind           = validate.Kind
	Record         = validate.Record
	ResultSet      = validate.ResultSet
	ExpectedOutput = validate.ExpectedOutput
	Verdict        = validate.Verdict
	Options        = validate.Options
	Validator      = validate.Validator
	AliasTable     = validate.AliasTable
	MatchMode      = validate.MatchMode
)

const (
	KindTable       = validate.KindTable
	KindCount       = validate.KindCount
	KindSingleValue = validate.KindSingleValue
	KindColumn      = validate.KindColumn
	KindRow         = validate.KindRow

	MatchGreedy  = validate.MatchGreedy
	MatchOptimal = validate.MatchOptimal
)

var (
	DefaultAliases = validate.DefaultAliases

	NewRecord      = validate.NewRecord
	RecordFromMap  = validate.RecordFromMap
	FromRows       = validate.FromRows
	NormalizeValue = validate.NormalizeValue
	MatchRows      = validate.MatchRows
	DefaultOptions = validate.DefaultOptions
	New            = validate.New
)

// Validate compares actual against expected with the default options.
func Validate(actual ResultSet, expected ExpectedOutput) Verdict {
	return validate.Validate(actual, expected)
}
