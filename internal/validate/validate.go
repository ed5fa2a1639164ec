// Package validate decides whether a learner's query result matches an
// assignment's expected output.
//
// Everything here is pure: a Validator holds only immutable settings, never
// performs I/O and is safe for concurrent use. Every comparison resolves to
// a Verdict; malformed payloads and unknown kinds fail closed.
package validate

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Options tunes a Validator. Zero-valued fields fall back to defaults except
// Tolerance, where 0 means exact numeric comparison; use a negative value
// to request DefaultTolerance.
type Options struct {
	Aliases   AliasTable
	Tolerance float64
	Precision int32
	Matching  MatchMode
}

func DefaultOptions() Options {
	return Options{
		Aliases:   DefaultAliases,
		Tolerance: DefaultTolerance,
		Precision: DefaultPrecision,
		Matching:  MatchGreedy,
	}
}

type Validator struct {
	aliases   AliasTable
	tolerance decimal.Decimal
	precision int32
	mode      MatchMode
}

var std = New(DefaultOptions())

func New(opts Options) *Validator {
	v := &Validator{
		aliases:   opts.Aliases,
		precision: opts.Precision,
		mode:      opts.Matching,
	}
	if v.aliases.empty() {
		v.aliases = DefaultAliases
	}
	if v.precision <= 0 {
		v.precision = DefaultPrecision
	}
	tol := opts.Tolerance
	if tol < 0 {
		tol = DefaultTolerance
	}
	v.tolerance = decimal.NewFromFloat(tol)
	return v
}

// Validate compares actual against expected with the default options.
func Validate(actual ResultSet, expected ExpectedOutput) Verdict {
	return std.Validate(actual, expected)
}

// Validate dispatches on expected.Kind. It never panics: any fault inside a
// comparator becomes a failed verdict carrying the reason.
func (v *Validator) Validate(actual ResultSet, expected ExpectedOutput) (verdict Verdict) {
	defer func() {
		if r := recover(); r != nil {
			verdict = failf("%s: comparison aborted: %v", expected.Kind, r)
		}
	}()

	switch expected.Kind {
	case KindTable:
		return v.compareTable(actual, expected.Value)
	case KindCount:
		return v.compareCount(actual, expected.Value)
	case KindSingleValue:
		return v.compareSingleValue(actual, expected.Value)
	case KindColumn:
		return v.compareColumn(actual, expected.Value)
	case KindRow:
		return v.compareRow(actual, expected.Value)
	}
	return failf("unknown expected output kind %q", expected.Kind)
}

func (v *Validator) String() string {
	return fmt.Sprintf("validator(tolerance=%s precision=%d matching=%s)", v.tolerance, v.precision, v.mode)
}
