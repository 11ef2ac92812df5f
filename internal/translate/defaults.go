package translate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	driver "github.com/pingcap/tidb/pkg/parser/test_driver"
)

// DefaultResult is the outcome of translating one MySQL default expression.
type DefaultResult struct {
	// Clause is the full "DEFAULT ..." text to append to the column
	// definition, or "" when no DEFAULT clause should be emitted.
	Clause string
	// Dropped reports whether an expression default was dropped because
	// SQLite cannot portably express it (§4.4 rule 6).
	Dropped bool
	// Warning is a human-readable note to surface through the sink when
	// Dropped is true.
	Warning string
}

var (
	numericLiteralRe = regexp.MustCompile(`^[+-]?\d+(\.\d+)?([eE][+-]?\d+)?$`)
	bitLiteralRe     = regexp.MustCompile(`(?i)^b'([01]+)'$`)
	charsetIntroRe   = regexp.MustCompile(`(?i)^_[a-z0-9]+'`)
	currentExprRe    = regexp.MustCompile(`(?i)^(current_timestamp|now|current_date|current_time)\s*(\(\s*\d*\s*\))?$`)
)

// defaultParser is shared across calls; TiDB's parser.Parser is not
// documented as goroutine-safe for concurrent Parse calls, but this engine
// is single-threaded per §5, so one package-level instance is sufficient.
var defaultParser = parser.New()

// TranslateDefault implements the seven ordered rules of spec §4.4. table
// and column are used only to build the Warning text when a default is
// dropped. raw is nil when the source catalog reports no default at all;
// a non-nil raw holding the literal text "NULL" means the source schema
// declared DEFAULT NULL explicitly (information_schema.column_default
// cannot otherwise distinguish the two, so the caller must not collapse
// "no default" into "NULL" before calling this function).
func TranslateDefault(raw *string, nullable bool, table, column string) DefaultResult {
	if raw == nil {
		return DefaultResult{}
	}

	trimmed := strings.TrimSpace(*raw)

	// Rule 1: explicit DEFAULT NULL.
	if strings.EqualFold(trimmed, "NULL") {
		if nullable {
			return DefaultResult{Clause: "DEFAULT NULL"}
		}
		return DefaultResult{}
	}

	// Rule 2: numeric literal, passed through verbatim.
	if numericLiteralRe.MatchString(trimmed) {
		return DefaultResult{Clause: "DEFAULT " + trimmed}
	}

	// Rule 3: string literal, possibly charset-introduced.
	if lit, ok := stringLiteral(trimmed); ok {
		return DefaultResult{Clause: "DEFAULT " + lit}
	}

	// Rule 4: bit-literal.
	if m := bitLiteralRe.FindStringSubmatch(trimmed); m != nil {
		n, err := strconv.ParseUint(m[1], 2, 64)
		if err == nil {
			return DefaultResult{Clause: fmt.Sprintf("DEFAULT %d", n)}
		}
	}

	// Rule 5: CURRENT_TIMESTAMP / NOW() / CURRENT_DATE / CURRENT_TIME.
	if m := currentExprRe.FindStringSubmatch(trimmed); m != nil {
		return DefaultResult{Clause: "DEFAULT " + currentExprSQLite(strings.ToLower(m[1]))}
	}

	// Rule 6: parenthesized MySQL-8 expression default, e.g. (UUID()).
	if strings.HasPrefix(trimmed, "(") && strings.HasSuffix(trimmed, ")") && looksLikeExpression(trimmed) {
		return DefaultResult{
			Dropped: true,
			Warning: fmt.Sprintf("%s.%s: dropped unrepresentable expression default %s", table, column, trimmed),
		}
	}

	// Rule 7: opaque text literal.
	return DefaultResult{Clause: "DEFAULT " + quoteSQLiteString(trimmed)}
}

func currentExprSQLite(fn string) string {
	switch fn {
	case "now":
		return "CURRENT_TIMESTAMP"
	case "current_timestamp":
		return "CURRENT_TIMESTAMP"
	case "current_date":
		return "CURRENT_DATE"
	case "current_time":
		return "CURRENT_TIME"
	default:
		return "CURRENT_TIMESTAMP"
	}
}

// stringLiteral recognizes a MySQL string literal default, optionally
// preceded by a charset introducer (_utf8mb4'x', _latin1'y'), and returns
// the SQLite-legal single-quoted literal with the introducer stripped.
func stringLiteral(s string) (string, bool) {
	body := s
	if loc := charsetIntroRe.FindStringIndex(s); loc != nil {
		// Drop the introducer but keep the quote it matched against.
		quoteIdx := strings.IndexByte(s, '\'')
		body = s[quoteIdx:]
	}
	if len(body) < 2 || body[0] != '\'' || body[len(body)-1] != '\'' {
		return "", false
	}
	return body, true
}

// looksLikeExpression uses the TiDB SQL parser to confirm a parenthesized
// default is a genuine expression (contains a function call or operator)
// rather than coincidentally parenthesized text; this disambiguates far
// more reliably than a regex would for nested calls like (JSON_OBJECT()).
func looksLikeExpression(raw string) bool {
	stmt := "SELECT " + raw
	nodes, _, err := defaultParser.Parse(stmt, "", "")
	if err != nil || len(nodes) != 1 {
		// If the parser rejects it, fall back to treating it as an
		// expression anyway: MySQL would not have reported a parenthesized
		// column_default that isn't one.
		return true
	}
	sel, ok := nodes[0].(*ast.SelectStmt)
	if !ok || sel.Fields == nil || len(sel.Fields.Fields) != 1 {
		return true
	}
	expr := sel.Fields.Fields[0].Expr
	for {
		paren, ok := expr.(*ast.ParenthesesExpr)
		if !ok {
			break
		}
		expr = paren.Expr
	}
	switch expr.(type) {
	case *driver.ValueExpr:
		// A bare literal wrapped in redundant parens, e.g. "(5)"; MySQL
		// catalogs do not normally report these, but treat it as a plain
		// literal default (rule 7) rather than an unrepresentable expression.
		return false
	default:
		return true
	}
}
