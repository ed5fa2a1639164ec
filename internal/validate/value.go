package validate

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultPrecision is the number of decimal places kept for non-integral floats.
	DefaultPrecision int32 = 6

	isoLayout = "2006-01-02T15:04:05.000Z07:00"

	// maxExponent bounds the decimal exponents handled exactly. Scaling a
	// decimal costs a big.Int power of ten, so anything wider goes through
	// float64, whose range ends near 1e308 anyway.
	maxExponent = 400
)

// numericLiteral accepts plain decimal notation with an optional exponent.
// Hex, underscores, "Inf" and "NaN" stay strings.
var numericLiteral = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?$`)

// NormalizeValue canonicalizes a scalar for comparison. The canonical forms
// are nil, bool, int64, float64 (non-integral or non-finite), decimal.Decimal
// (integers beyond int64) and string. Unrecognized types pass through.
//
// Strings holding a finite number are converted to the numeric form, since
// drivers commonly return aggregates such as SUM and AVG as text.
func NormalizeValue(v any) any {
	return normalizeValue(v, DefaultPrecision)
}

func normalizeValue(v any, precision int32) (out any) {
	defer func() {
		if r := recover(); r != nil {
			out = v
		}
	}()

	switch x := v.(type) {
	case nil:
		return nil
	case bool:
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return normalizeUint(uint64(x))
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return normalizeUint(x)
	case float32:
		return normalizeFloat(float64(x), precision)
	case float64:
		return normalizeFloat(x, precision)
	case *big.Int:
		if x == nil {
			return nil
		}
		return normalizeBigInt(x)
	case big.Int:
		return normalizeBigInt(&x)
	case decimal.Decimal:
		return normalizeDecimal(x, precision)
	case *decimal.Decimal:
		if x == nil {
			return nil
		}
		return normalizeDecimal(*x, precision)
	case decimal.NullDecimal:
		if !x.Valid {
			return nil
		}
		return normalizeDecimal(x.Decimal, precision)
	case string:
		return normalizeString(x, precision)
	case []byte:
		if x == nil {
			return nil
		}
		return normalizeString(string(x), precision)
	case json.Number:
		return normalizeString(string(x), precision)
	case time.Time:
		return x.UTC().Format(isoLayout)
	case *time.Time:
		if x == nil {
			return nil
		}
		return x.UTC().Format(isoLayout)
	case driver.Valuer:
		// sql.NullInt64 and friends.
		dv, err := x.Value()
		if err != nil {
			return v
		}
		if _, again := dv.(driver.Valuer); again {
			return v
		}
		return normalizeValue(dv, precision)
	default:
		return v
	}
}

func normalizeUint(u uint64) any {
	if u <= math.MaxInt64 {
		return int64(u)
	}
	return decimal.NewFromBigInt(new(big.Int).SetUint64(u), 0)
}

func normalizeBigInt(b *big.Int) any {
	if b.IsInt64() {
		return b.Int64()
	}
	return decimal.NewFromBigInt(b, 0)
}

func normalizeFloat(f float64, precision int32) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	if i, ok := floatToInt(f); ok {
		return i
	}

	rounded, _ := decimal.NewFromFloat(f).Round(precision).Float64()
	if i, ok := floatToInt(rounded); ok {
		return i
	}
	return rounded
}

func floatToInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func normalizeDecimal(d decimal.Decimal, precision int32) any {
	if !boundedExponent(d) {
		return normalizeFloat(decimalFloat(d), precision)
	}
	if d.IsInteger() {
		return normalizeBigInt(d.BigInt())
	}
	f, _ := d.Round(precision).Float64()
	if i, ok := floatToInt(f); ok {
		return i
	}
	return f
}

func normalizeString(s string, precision int32) any {
	t := strings.TrimSpace(s)
	if !numericLiteral.MatchString(t) {
		return t
	}

	// Only finite numbers convert; "1e400" overflows a float and stays text.
	f, err := strconv.ParseFloat(t, 64)
	if math.IsInf(f, 0) || (err != nil && !errors.Is(err, strconv.ErrRange)) {
		return t
	}

	d, err := decimal.NewFromString(t)
	if err != nil || !boundedExponent(d) {
		return normalizeFloat(f, precision)
	}
	return normalizeDecimal(d, precision)
}

func boundedExponent(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp <= maxExponent && exp >= -maxExponent
}

// decimalFloat converts without materializing 10^exp, which
// decimal.Decimal.Float64 does.
func decimalFloat(d decimal.Decimal) float64 {
	f, _ := strconv.ParseFloat(d.Coefficient().String()+"e"+strconv.FormatInt(int64(d.Exponent()), 10), 64)
	return f
}
