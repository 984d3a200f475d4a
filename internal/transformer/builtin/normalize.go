package builtin

import (
	"strings"

	"github.com/xaviermathew/Aragog/pkg/records"
)

const nbsp = "\u00a0"

// Normalize trims string values and turns no-break spaces into plain spaces.
type Normalize struct{}

func (Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			if s, ok := v.(string); ok {
				r[k] = strings.TrimSpace(strings.ReplaceAll(s, nbsp, " "))
			}
		}
	}
	return in
}
