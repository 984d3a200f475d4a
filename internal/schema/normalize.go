package schema

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/golang-sql/civil"
)

// Normalize coerces a raw reader value into the representation the
// accumulators work with. It never fails:
//
//   - nil, "", empty slices/arrays and non-finite floats become nil (the
//     null sentinel)
//   - text is parsed as a base-10 int64, then as a finite decimal float64;
//     text that parses as neither is returned unchanged. Hex floats ("0x1p3")
//     and digit separators ("1_000") stay text. Integer text beyond the int64
//     range becomes float64, as large unsigned values do
//   - json.Number and every Go integer/float kind become int64 or float64
//     (unsigned values beyond int64 become float64)
//   - []byte is treated as text; pointers are dereferenced
//
// Booleans, civil.Date, civil.DateTime, time.Time, maps and non-empty slices
// pass through.
func Normalize(raw any) any {
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		return normalizeText(v)
	case []byte:
		return normalizeText(string(v))
	case json.Number:
		return normalizeText(v.String())
	case bool, civil.Date, civil.DateTime, time.Time:
		return v
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case uint:
		return fromUint(uint64(v))
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return fromUint(v)
	case float32:
		return fromFloat(float64(v))
	case float64:
		return fromFloat(v)
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return Normalize(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return nil
		}
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
	}
	return raw
}

func normalizeText(s string) any {
	if s == "" {
		return nil
	}
	t := strings.TrimSpace(s)
	if n, err := strconv.ParseInt(t, 10, 64); err == nil {
		return n
	}
	if !decimalSyntax(t) {
		return s
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	return s
}

// decimalSyntax reports whether t uses only the characters of a decimal
// number: digits, signs, a point and an exponent marker.
func decimalSyntax(t string) bool {
	for i := 0; i < len(t); i++ {
		switch c := t[i]; {
		case c >= '0' && c <= '9', c == '+', c == '-', c == '.', c == 'e', c == 'E':
		default:
			return false
		}
	}
	return true
}

func fromUint(u uint64) any {
	if u > math.MaxInt64 {
		return float64(u)
	}
	return int64(u)
}

func fromFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
