package translate

import "strings"

// quoteSQLiteString single-quotes a raw (unquoted) text value for use in a
// SQLite DEFAULT clause, doubling embedded single quotes.
func quoteSQLiteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, r := range s {
		if r == '\'' {
			b.WriteByte('\'')
		}
		b.WriteRune(r)
	}
	b.WriteByte('\'')
	return b.String()
}
