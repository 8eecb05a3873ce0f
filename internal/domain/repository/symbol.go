package repository

import "strings"

// suffixAliases maps user-facing exchange suffixes to the vocabulary the
// upstream provider expects.
var suffixAliases = map[string]string{
	".NSE": ".NS",
	".BSE": ".BO",
}

// displaySuffixes are stripped from canonical symbols for display.
var displaySuffixes = []string{".NSE", ".BSE", ".NS", ".BO"}

// NormalizeSymbol converts a raw ticker into the canonical form used both as
// the upstream query symbol and the cache key: trimmed, uppercased, quote
// characters and internal whitespace removed, known exchange suffixes mapped.
// Idempotent; returns "" for blank input.
func NormalizeSymbol(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.NewReplacer(`"`, "", `'`, "", "`", "").Replace(s)
	s = strings.Join(strings.Fields(s), "")

	for alias, canonical := range suffixAliases {
		if strings.HasSuffix(s, alias) {
			return strings.TrimSuffix(s, alias) + canonical
		}
	}
	return s
}

// DisplaySymbol strips the exchange suffix from a canonical symbol for the
// response's display fields.
func DisplaySymbol(symbol string) string {
	for _, suffix := range displaySuffixes {
		if strings.HasSuffix(symbol, suffix) {
			return strings.TrimSuffix(symbol, suffix)
		}
	}
	return symbol
}
