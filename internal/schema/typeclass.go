// Package schema infers a canonical structural schema from partitions of
// records.
//
// Each partition is folded into a PartialSchema by a Builder: one
// FieldAccumulator per field name, tracking counts, numeric stats and a
// bounded categorical tally per observed TypeClass. Partials are merged
// associatively (Merge, Reduce) and finalized into a Schema, at which point
// each field's observed classes are unified into a single TypeClass. The
// result does not depend on partition boundaries, record order or merge order,
// except for floating-point rounding of means.
//
// The package performs no I/O and holds no global state; partitions can be
// built concurrently without locking.
package schema

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"strings"
)

// TypeClass is one of the fixed scalar categories a value is classified into.
type TypeClass uint8

const (
	Null TypeClass = iota
	Boolean
	Integer
	Float
	String
	Date
	Datetime
	Object

	numClasses = int(Object) + 1
)

var classNames = [numClasses]string{
	Null:     "null",
	Boolean:  "boolean",
	Integer:  "integer",
	Float:    "float",
	String:   "string",
	Date:     "date",
	Datetime: "datetime",
	Object:   "object",
}

// String returns the lower-case name used in JSON output.
func (c TypeClass) String() string {
	if int(c) < numClasses {
		return classNames[c]
	}
	return fmt.Sprintf("TypeClass(%d)", uint8(c))
}

// ParseTypeClass is the inverse of TypeClass.String.
func ParseTypeClass(s string) (TypeClass, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range classNames {
		if n == name {
			return TypeClass(i), nil
		}
	}
	return Null, fmt.Errorf("schema: unknown type class %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c TypeClass) MarshalText() ([]byte, error) {
	if int(c) >= numClasses {
		return nil, fmt.Errorf("schema: invalid type class %d", uint8(c))
	}
	return []byte(classNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *TypeClass) UnmarshalText(b []byte) error {
	tc, err := ParseTypeClass(string(b))
	if err != nil {
		return err
	}
	*c = tc
	return nil
}

// categorical reports whether values of this class are tallied.
func (c TypeClass) categorical() bool {
	return c == String || c == Boolean || c == Integer
}

// TypeSet is a set of TypeClass values. The zero value is the empty set.
type TypeSet uint16

// SetOf returns a TypeSet holding the given classes.
func SetOf(classes ...TypeClass) TypeSet {
	var s TypeSet
	for _, c := range classes {
		s = s.With(c)
	}
	return s
}

// With returns s plus c.
func (s TypeSet) With(c TypeClass) TypeSet { return s | 1<<c }

// Without returns s minus c.
func (s TypeSet) Without(c TypeClass) TypeSet { return s &^ (1 << c) }

// Has reports whether c is in s.
func (s TypeSet) Has(c TypeClass) bool { return s&(1<<c) != 0 }

// Union returns the classes present in either set.
func (s TypeSet) Union(o TypeSet) TypeSet { return s | o }

// Len returns the number of classes in s.
func (s TypeSet) Len() int { return bits.OnesCount16(uint16(s)) }

// Classes returns the members of s in TypeClass order.
func (s TypeSet) Classes() []TypeClass {
	out := make([]TypeClass, 0, s.Len())
	for i := 0; i < numClasses; i++ {
		if s.Has(TypeClass(i)) {
			out = append(out, TypeClass(i))
		}
	}
	return out
}

// Only returns the single member of s, or false if s does not hold exactly one class.
func (s TypeSet) Only() (TypeClass, bool) {
	if s.Len() != 1 {
		return Null, false
	}
	return TypeClass(bits.TrailingZeros16(uint16(s))), true
}

func (s TypeSet) String() string {
	cs := s.Classes()
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.String()
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// MarshalJSON encodes the set as an array of class names.
func (s TypeSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Classes())
}

// UnmarshalJSON decodes an array of class names.
func (s *TypeSet) UnmarshalJSON(b []byte) error {
	var cs []TypeClass
	if err := json.Unmarshal(b, &cs); err != nil {
		return err
	}
	*s = SetOf(cs...)
	return nil
}
