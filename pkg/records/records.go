// Package records defines the row shape shared by readers and the inference core.
package records

import "sort"

// Record maps a field name to its raw value as produced by a reader. Values
// are not yet normalized; a missing key and a nil value both mean "no value".
type Record map[string]any

// Keys returns the record's field names in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Project returns a copy of r restricted to the given fields. Fields listed
// but absent from r are left absent. A nil or empty list returns r unchanged.
func (r Record) Project(fields []string) Record {
	if len(fields) == 0 {
		return r
	}
	out := make(Record, len(fields))
	for _, f := range fields {
		if v, ok := r[f]; ok {
			out[f] = v
		}
	}
	return out
}
