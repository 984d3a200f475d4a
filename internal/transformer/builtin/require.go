// Package builtin holds the record transformers datasets can enable.
package builtin

import "github.com/xaviermathew/Aragog/pkg/records"

// Require drops records missing a value for any of Fields. nil and "" count
// as missing.
type Require struct {
	Fields []string
}

func (r Require) Apply(in []records.Record) []records.Record {
	if len(r.Fields) == 0 {
		return in
	}
	out := in[:0]
	for _, rec := range in {
		ok := true
		for _, f := range r.Fields {
			if v, exists := rec[f]; !exists || v == nil || v == "" {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out
}
