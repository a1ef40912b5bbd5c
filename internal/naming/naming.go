// Package naming converts between the contract layer's snake_case member
// names and exported Go identifiers.
package naming

import (
	"strings"
	"unicode"
)

// commonInitialisms are tokens rendered fully uppercase in Go identifiers.
var commonInitialisms = map[string]string{
	"api":    "API",
	"cpu":    "CPU",
	"http":   "HTTP",
	"https":  "HTTPS",
	"id":     "ID",
	"ip":     "IP",
	"json":   "JSON",
	"sha256": "SHA256",
	"sql":    "SQL",
	"tcp":    "TCP",
	"udp":    "UDP",
	"uri":    "URI",
	"url":    "URL",
	"uuid":   "UUID",
	"xml":    "XML",
}

// SnakeCase folds a Go identifier to its snake_case contract form. Initialism
// runs fold as one token: ID becomes id, HTTPServer becomes http_server,
// UpdateTimestamp becomes update_timestamp.
func SnakeCase(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range rs {
		if unicode.IsUpper(r) {
			if i > 0 && (isLowerOrDigit(rs[i-1]) || (i+1 < len(rs) && unicode.IsLower(rs[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ExportedName renders a snake_case contract name as an exported Go
// identifier: created_at becomes CreatedAt, id becomes ID, http_server
// becomes HTTPServer. Empty segments are skipped.
func ExportedName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, seg := range strings.Split(s, "_") {
		if seg == "" {
			continue
		}
		if up, ok := commonInitialisms[strings.ToLower(seg)]; ok {
			b.WriteString(up)
			continue
		}
		rs := []rune(seg)
		b.WriteRune(unicode.ToUpper(rs[0]))
		b.WriteString(string(rs[1:]))
	}
	return b.String()
}

func isLowerOrDigit(r rune) bool {
	return unicode.IsLower(r) || unicode.IsDigit(r)
}
