package clients

import (
	"encoding/json"
	"strings"
)

// SplitEmailList decodes an email column that may hold either a comma-joined
// list or a JSON string array. Entries are trimmed and lowercased; empties are
// dropped. Both encodings exist in the historical data, so every reader must
// go through this helper.
func SplitEmailList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var parts []string
	if strings.HasPrefix(raw, "[") {
		var decoded []string
		if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
			parts = decoded
		}
	}
	if parts == nil {
		parts = strings.Split(raw, ",")
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// EmailListContains reports whether addr appears in the encoded list. The test
// is exact normalized-email equality, never substring matching.
func EmailListContains(raw, addr string) bool {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if addr == "" {
		return false
	}
	for _, e := range SplitEmailList(raw) {
		if e == addr {
			return true
		}
	}
	return false
}
