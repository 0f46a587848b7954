package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// Fingerprint computes a deterministic 64-bit fingerprint over a
// deduplicated, sorted set of schemas, rendered as a 16-character lowercase
// hex string. The same set of schemas — in any order, across any number of
// runs or process starts — always yields the same fingerprint.
func Fingerprint(schemas []Schema) string {
	canon := make([]Schema, len(schemas))
	for i, s := range schemas {
		canon[i] = Canonicalize(s)
	}
	sort.Slice(canon, func(i, j int) bool { return canon[i].ClassName < canon[j].ClassName })

	seen := make(map[string]bool, len(canon))
	deduped := canon[:0:0]
	for _, s := range canon {
		if seen[s.ClassName] {
			continue
		}
		seen[s.ClassName] = true
		deduped = append(deduped, s)
	}

	h := sha256.New()
	for _, s := range deduped {
		writeSchema(h, s)
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}

func writeSchema(w interface{ Write([]byte) (int, error) }, s Schema) {
	fmt.Fprintf(w, "kind=%d;class=%s;base=%s;key=%d;keyfields=%v;sub=%t;abs=%t;unfold=%t;inherits=%v;values=%v;",
		s.Kind, s.ClassName, s.Base, s.Key.Kind, s.Key.Fields, s.Subdocument, s.Abstract, s.Unfoldable, s.Inherits, s.Values)
	for _, p := range s.Properties {
		fmt.Fprintf(w, "prop(%s,%d,%s);", p.Name, p.Family, p.Class)
	}
}
