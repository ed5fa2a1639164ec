package validate

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultTolerance is the absolute difference under which two non-integral
// numbers compare equal.
const DefaultTolerance = 0.01

type number struct {
	dec      decimal.Decimal
	f        float64
	finite   bool
	integral bool
}

// toNumber accepts canonical numeric values only: int64, float64, decimal.Decimal.
func toNumber(v any) (number, bool) {
	switch x := v.(type) {
	case int64:
		return number{dec: decimal.NewFromInt(x), f: float64(x), finite: true, integral: true}, true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return number{f: x}, true
		}
		return number{dec: decimal.NewFromFloat(x), f: x, finite: true, integral: x == math.Trunc(x)}, true
	case decimal.Decimal:
		if !boundedExponent(x) {
			return toNumber(normalizeFloat(decimalFloat(x), DefaultPrecision))
		}
		return number{dec: x, f: decimalFloat(x), finite: true, integral: x.IsInteger()}, true
	}
	return number{}, false
}

// valuesEqual is the row-level equality: exact, then case-insensitive text,
// then numeric with tolerance, then a best-effort arbitrary-precision check.
// Both arguments must already be normalized.
func valuesEqual(a, b any, tol decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if exactEqual(a, b) {
		return true
	}

	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return strings.EqualFold(sa, sb)
		}
	}

	na, okA := toNumber(a)
	nb, okB := toNumber(b)
	if okA && okB {
		return numbersEqual(na, nb, tol)
	}

	return bigEqual(a, b)
}

func numbersEqual(a, b number, tol decimal.Decimal) bool {
	if !a.finite || !b.finite {
		return a.f == b.f
	}
	if a.integral && b.integral {
		return a.dec.Equal(b.dec)
	}
	return a.dec.Sub(b.dec).Abs().LessThanOrEqual(tol)
}

func exactEqual(a, b any) bool {
	if da, ok := a.(decimal.Decimal); ok {
		db, ok := b.(decimal.Decimal)
		return ok && da.Equal(db)
	}

	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	if ta != nil && ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// bigEqual renders both sides as text and compares them as exact decimals.
// It catches driver-specific numeric types that survived normalization.
// Exponents past maxExponent never compare equal here.
func bigEqual(a, b any) bool {
	da, err := decimal.NewFromString(strings.TrimSpace(fmt.Sprint(a)))
	if err != nil || !boundedExponent(da) {
		return false
	}
	db, err := decimal.NewFromString(strings.TrimSpace(fmt.Sprint(b)))
	if err != nil || !boundedExponent(db) {
		return false
	}
	return da.Equal(db)
}

// rank orders canonical values by class before comparing within a class.
func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case int64, float64, decimal.Decimal:
		return 2
	case string:
		return 3
	}
	return 4
}

// compareCanonical is a total order over normalized values:
// nil < bool < number < string < anything else.
func compareCanonical(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}

	switch ra {
	case 0:
		return 0
	case 1:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		}
		return 1
	case 2:
		na, _ := toNumber(a)
		nb, _ := toNumber(b)
		return compareNumbers(na, nb)
	case 3:
		return strings.Compare(a.(string), b.(string))
	}
	return strings.Compare(fmt.Sprintf("%T:%v", a, a), fmt.Sprintf("%T:%v", b, b))
}

// NaN < -Inf < finite < +Inf.
func compareNumbers(a, b number) int {
	if a.finite && b.finite {
		return a.dec.Cmp(b.dec)
	}
	oa, ob := nonFiniteOrder(a), nonFiniteOrder(b)
	switch {
	case oa < ob:
		return -1
	case oa > ob:
		return 1
	}
	return 0
}

func nonFiniteOrder(n number) int {
	switch {
	case n.finite:
		return 2
	case math.IsNaN(n.f):
		return 0
	case n.f < 0:
		return 1
	}
	return 3
}

// canonicalEqual is strict post-normalization equality, used where no
// tolerance applies.
func canonicalEqual(a, b any) bool {
	if rank(a) == 4 || rank(b) == 4 {
		return exactEqual(a, b)
	}
	return compareCanonical(a, b) == 0
}
