package probe

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/zeebo/xxh3"

	"github.com/xaviermathew/Aragog/internal/schema"
	"github.com/xaviermathew/Aragog/pkg/records"
)

// fingerprintVersion changes whenever the partial encoding, the key layout or
// build semantics change, so stale cache entries stop matching.
const fingerprintVersion = "p2"

// PartitionKey hashes the records of a partition together with the tally
// cap. Each field is written as a JSON triple [name, class, value] in name
// order, one record per line. The class is the type the value would be
// inferred as, so values whose JSON text matches but whose classes differ
// (a civil.Date and the string "2024-01-01") get different keys.
func PartitionKey(recs []records.Record, maxChoices int) (string, error) {
	h := xxh3.New()
	fmt.Fprintf(h, "%s|%d|%d\n", fingerprintVersion, maxChoices, len(recs))
	enc := json.NewEncoder(h)
	for i, r := range recs {
		for _, k := range r.Keys() {
			v := r[k]
			class := schema.Detect(schema.Normalize(v))
			if err := enc.Encode([3]any{k, class.String(), v}); err != nil {
				return "", fmt.Errorf("record %d field %q: %w", i, k, err)
			}
		}
		_, _ = h.Write([]byte{'\n'})
	}
	sum := h.Sum128().Bytes()
	return hex.EncodeToString(sum[:]), nil
}

// RunFingerprint combines partition keys into one order-insensitive digest.
func RunFingerprint(keys []string) string {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	h := xxh3.New()
	for _, k := range sorted {
		_, _ = h.WriteString(k)
		_, _ = h.Write([]byte{'\n'})
	}
	sum := h.Sum128().Bytes()
	return hex.EncodeToString(sum[:])
}
