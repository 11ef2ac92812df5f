package ddl

import "strings"

// QuoteIdentifier quotes a SQLite identifier with double quotes, doubling
// any embedded quote character, mirroring the teacher generator's
// QuoteIdentifier for MySQL backticks but targeting SQLite's preferred
// identifier-quoting style.
func QuoteIdentifier(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, `"`, `""`)
	return `"` + name + `"`
}
