package schema

import (
	"errors"
	"reflect"
	"testing"
)

func TestUnify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		policy  Policy
		in      TypeSet
		want    TypeClass
		wantErr []TypeClass
	}{
		{name: "empty", in: 0, want: String},
		{name: "null only", in: SetOf(Null), want: String},
		{name: "single", in: SetOf(Date), want: Date},
		{name: "string dominates", in: SetOf(Integer, String, Date), want: String},
		{name: "null plus one", in: SetOf(Null, Float), want: Float},
		{name: "integer and date", in: SetOf(Integer, Date), wantErr: []TypeClass{Integer, Date}},
		{name: "null integer date", in: SetOf(Null, Integer, Date), wantErr: []TypeClass{Integer, Date}},
		{name: "integer float strict", in: SetOf(Integer, Float), wantErr: []TypeClass{Integer, Float}},
		{name: "integer float widened", policy: Policy{WidenNumeric: true}, in: SetOf(Null, Integer, Float), want: Float},
		{name: "widening is numeric only", policy: Policy{WidenNumeric: true}, in: SetOf(Integer, Boolean), wantErr: []TypeClass{Boolean, Integer}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.policy.Unify("f", tt.in)
			if tt.wantErr != nil {
				var ae *AmbiguousTypeError
				if !errors.As(err, &ae) {
					t.Fatalf("Unify(%v) error = %v, want *AmbiguousTypeError", tt.in, err)
				}
				if !errors.Is(err, ErrAmbiguousType) {
					t.Fatalf("errors.Is(%v, ErrAmbiguousType) = false", err)
				}
				if ae.Field != "f" || !reflect.DeepEqual(ae.Classes, tt.wantErr) {
					t.Fatalf("AmbiguousTypeError = %+v, want field f classes %v", ae, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unify(%v) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("Unify(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAmbiguousTypeErrorMessage(t *testing.T) {
	t.Parallel()

	err := &AmbiguousTypeError{Field: "born", Classes: []TypeClass{Integer, Date}}
	want := `schema: field "born": ambiguous type: cannot unify {integer, date}`
	if got := err.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestTypeSetJSON(t *testing.T) {
	t.Parallel()

	in := SetOf(Datetime, Null, Integer)
	b, err := in.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if got, want := string(b), `["null","integer","datetime"]`; got != want {
		t.Fatalf("MarshalJSON = %s, want %s", got, want)
	}
	var out TypeSet
	if err := out.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if out != in {
		t.Fatalf("round trip = %v, want %v", out, in)
	}
	if err := out.UnmarshalJSON([]byte(`["decimal"]`)); err == nil {
		t.Fatalf("UnmarshalJSON(decimal) error = nil, want error")
	}
}
