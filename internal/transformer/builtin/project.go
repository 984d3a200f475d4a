package builtin

import "github.com/xaviermathew/Aragog/pkg/records"

// Project keeps only Columns on every record.
type Project struct {
	Columns []string
}

func (p Project) Apply(in []records.Record) []records.Record {
	if len(p.Columns) == 0 {
		return in
	}
	for i, r := range in {
		in[i] = r.Project(p.Columns)
	}
	return in
}

// Rename moves values from old field names to new ones. A rename onto an
// existing field overwrites it.
type Rename struct {
	Fields map[string]string
}

func (rn Rename) Apply(in []records.Record) []records.Record {
	if len(rn.Fields) == 0 {
		return in
	}
	for _, r := range in {
		for from, to := range rn.Fields {
			if from == to {
				continue
			}
			if v, ok := r[from]; ok {
				delete(r, from)
				r[to] = v
			}
		}
	}
	return in
}
