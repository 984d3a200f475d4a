package schema

import (
	"errors"
	"fmt"
)

// ErrAmbiguousType is matched by every *AmbiguousTypeError via errors.Is.
var ErrAmbiguousType = errors.New("ambiguous type")

// AmbiguousTypeError reports a field whose observed classes cannot be
// resolved into a single TypeClass.
type AmbiguousTypeError struct {
	Field   string
	Classes []TypeClass
}

func (e *AmbiguousTypeError) Error() string {
	return fmt.Sprintf("schema: field %q: %s: cannot unify %s", e.Field, ErrAmbiguousType, SetOf(e.Classes...))
}

// Is makes errors.Is(err, ErrAmbiguousType) true.
func (e *AmbiguousTypeError) Is(target error) bool { return target == ErrAmbiguousType }

// Policy resolves a field's observed classes into its final TypeClass.
//
// The zero Policy applies, in order: no classes or only Null gives String; a
// single class gives that class; any String gives String; a single class left
// after dropping Null gives that class; anything else is ambiguous.
type Policy struct {
	// WidenNumeric resolves {Integer, Float} (with or without Null) to Float
	// instead of failing.
	WidenNumeric bool
}

// Unify applies the zero Policy.
func Unify(field string, classes TypeSet) (TypeClass, error) {
	return Policy{}.Unify(field, classes)
}

// Unify resolves classes for the named field.
func (p Policy) Unify(field string, classes TypeSet) (TypeClass, error) {
	if c, ok := classes.Only(); ok {
		if c == Null {
			return String, nil
		}
		return c, nil
	}
	if classes.Len() == 0 || classes.Has(String) {
		return String, nil
	}

	rest := classes.Without(Null)
	if c, ok := rest.Only(); ok {
		return c, nil
	}
	if p.WidenNumeric && rest == SetOf(Integer, Float) {
		return Float, nil
	}
	return Null, &AmbiguousTypeError{Field: field, Classes: rest.Classes()}
}
