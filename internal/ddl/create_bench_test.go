package ddl

import (
	"strconv"
	"testing"

	"github.com/xaviermathew/Aragog/internal/schema"
	"github.com/xaviermathew/Aragog/pkg/records"
)

func BenchmarkQuoteFQN(b *testing.B) {
	inputs := []string{"tbl", "sch.tbl", `sch"name.tbl"name`, "a.b.c"}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for _, s := range inputs {
			_ = QuoteFQN(s, DoubleQuote)
		}
	}
}

// BenchmarkFromSchemaWide covers the full path from a 64-field schema to SQL.
func BenchmarkFromSchemaWide(b *testing.B) {
	const ncol = 64
	rec := records.Record{}
	for i := 0; i < ncol; i++ {
		rec["Column "+strconv.Itoa(i)] = i
	}
	s, err := schema.Build([]records.Record{rec}).Finalize(schema.Policy{})
	if err != nil {
		b.Fatal(err)
	}
	d := Dialect{Name: "bench", QuoteIdent: DoubleQuote, IfNotExists: true}
	mapType := func(kind string) string { return kind }

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		t, err := FromSchema("app.wide", s, mapType)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := BuildCreateTableSQL(d, t); err != nil {
			b.Fatal(err)
		}
	}
}
