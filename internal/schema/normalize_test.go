package schema

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/golang-sql/civil"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	s := "42"
	var nilPtr *int
	date := civil.Date{Year: 2024, Month: time.January, Day: 1}

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"empty string", "", nil},
		{"empty slice", []any{}, nil},
		{"empty array", [0]int{}, nil},
		{"nil map", map[string]any(nil), nil},
		{"nil pointer", nilPtr, nil},
		{"int text", "42", int64(42)},
		{"negative int text", "-7", int64(-7)},
		{"padded int text", " 12 ", int64(12)},
		{"float text", "3.5", 3.5},
		{"exponent text", "1e3", 1000.0},
		{"int wins over float", "10", int64(10)},
		{"plain text", "abc", "abc"},
		{"blank text stays text", "  ", "  "},
		{"nan text stays text", "NaN", "NaN"},
		{"inf text stays text", "inf", "inf"},
		{"bool text stays text", "True", "True"},
		{"hex float text stays text", "0x1p3", "0x1p3"},
		{"hex int text stays text", "0x10", "0x10"},
		{"separator text stays text", "1_000.5", "1_000.5"},
		{"int text beyond int64", "9223372036854775808", 9223372036854775808.0},
		{"bytes", []byte("9"), int64(9)},
		{"json int", json.Number("12"), int64(12)},
		{"json float", json.Number("1.25"), 1.25},
		{"int", 5, int64(5)},
		{"int32", int32(5), int64(5)},
		{"uint8", uint8(5), int64(5)},
		{"huge uint", uint64(math.MaxUint64), float64(math.MaxUint64)},
		{"float32", float32(0.5), 0.5},
		{"nan", math.NaN(), nil},
		{"inf", math.Inf(1), nil},
		{"bool", true, true},
		{"date", date, date},
		{"pointer", &s, int64(42)},
		{"non-empty slice", []any{1}, []any{1}},
		{"map", map[string]any{"a": 1}, map[string]any{"a": 1}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Normalize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Normalize(%#v) = %#v (%T), want %#v (%T)", tt.in, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want TypeClass
	}{
		{nil, Null},
		{true, Boolean},
		{"True", Boolean},
		{"False", Boolean},
		{"true", String},
		{int64(1), Integer},
		{7, Integer},
		{1.5, Float},
		{"x", String},
		{civil.Date{Year: 2024, Month: 1, Day: 1}, Date},
		{civil.DateTime{}, Datetime},
		{time.Now(), Datetime},
		{map[string]any{"a": 1}, Object},
		{[]any{1, 2}, Object},
	}
	for _, tt := range tests {
		if got := Detect(tt.in); got != tt.want {
			t.Errorf("Detect(%#v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
