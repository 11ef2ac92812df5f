package translate

import (
	"regexp"
	"strconv"
	"strings"
)

// Family is the tagged-variant discriminator for a parsed MySQL column type.
// Modeling the translator input as a closed set of variants (rather than
// stringly-typed branching on RawType) is what makes the type-translation
// totality property directly checkable: every Family has exactly one
// handler in Translate.
type Family string

const (
	FamilyTinyInt   Family = "tinyint"
	FamilySmallInt  Family = "smallint"
	FamilyMediumInt Family = "mediumint"
	FamilyInt       Family = "int"
	FamilyBigInt    Family = "bigint"
	FamilyYear      Family = "year"
	FamilyBit       Family = "bit"
	FamilyFloat     Family = "float"
	FamilyDouble    Family = "double"
	FamilyDecimal   Family = "decimal"
	FamilyChar      Family = "char"
	FamilyDate      Family = "date"
	FamilyDateTime  Family = "datetime"
	FamilyTime      Family = "time"
	FamilyBinary    Family = "binary"
	FamilyJSON      Family = "json"
	FamilySpatial   Family = "spatial"
	FamilyUnknown   Family = "unknown"
)

// SourceType is the parsed, parameterized representation of a MySQL
// declared-type string such as "decimal(10,2) unsigned" or "enum('a','b')".
type SourceType struct {
	Family   Family
	Unsigned bool

	// Precision/Scale are populated for DECIMAL/NUMERIC/FIXED.
	Precision, Scale int
	// Size is populated for BIT (bit-width) and CHAR-family (declared length).
	Size int
	// Members is populated for ENUM/SET.
	Members []string

	// Raw is the original declared-type string, kept for error messages.
	Raw string
}

var (
	parenParamsRe = regexp.MustCompile(`\(([^)]*)\)`)
	wordRe        = regexp.MustCompile(`^[a-zA-Z]+`)
)

// familyBySQLWord maps the leading bareword of a MySQL type declaration to
// its Family. ParseSourceType compares the whole leading word for equality,
// so "mediumint" never matches the "int" entry and the order of the table
// does not matter.
var familyBySQLWord = []struct {
	word   string
	family Family
}{
	{"tinyint", FamilyTinyInt},
	{"smallint", FamilySmallInt},
	{"mediumint", FamilyMediumInt},
	{"bigint", FamilyBigInt},
	{"int", FamilyInt},
	{"integer", FamilyInt},
	{"year", FamilyYear},
	{"bit", FamilyBit},
	{"float", FamilyFloat},
	{"double", FamilyDouble},
	{"real", FamilyDouble},
	{"decimal", FamilyDecimal},
	{"numeric", FamilyDecimal},
	{"fixed", FamilyDecimal},
	{"char", FamilyChar},
	{"varchar", FamilyChar},
	{"tinytext", FamilyChar},
	{"mediumtext", FamilyChar},
	{"longtext", FamilyChar},
	{"text", FamilyChar},
	{"enum", FamilyChar},
	{"set", FamilyChar},
	{"datetime", FamilyDateTime},
	{"timestamp", FamilyDateTime},
	{"date", FamilyDate},
	{"time", FamilyTime},
	{"tinyblob", FamilyBinary},
	{"mediumblob", FamilyBinary},
	{"longblob", FamilyBinary},
	{"blob", FamilyBinary},
	{"varbinary", FamilyBinary},
	{"binary", FamilyBinary},
	{"json", FamilyJSON},
	{"geometry", FamilySpatial},
	{"geometrycollection", FamilySpatial},
	{"point", FamilySpatial},
	{"multipoint", FamilySpatial},
	{"linestring", FamilySpatial},
	{"multilinestring", FamilySpatial},
	{"polygon", FamilySpatial},
	{"multipolygon", FamilySpatial},
}

// ParseSourceType parses a raw information_schema.column_type string (e.g.
// "decimal(10,2) unsigned", "enum('a','b')", "bit(4)") into a SourceType.
// Unrecognized words yield FamilyUnknown, which Translate rejects with a
// schema-translation error.
func ParseSourceType(raw string) SourceType {
	lower := strings.ToLower(strings.TrimSpace(raw))
	word := wordRe.FindString(lower)

	st := SourceType{Raw: raw, Family: FamilyUnknown}
	for _, entry := range familyBySQLWord {
		if entry.word == word {
			st.Family = entry.family
			break
		}
	}

	st.Unsigned = strings.Contains(lower, "unsigned")

	params := parenParamsRe.FindStringSubmatch(lower)
	if params == nil {
		return st
	}
	inner := params[1]

	switch st.Family {
	case FamilyDecimal:
		parts := strings.SplitN(inner, ",", 2)
		st.Precision = atoiOr(parts[0], 10)
		if len(parts) == 2 {
			st.Scale = atoiOr(parts[1], 0)
		}
	case FamilyBit, FamilyChar:
		if st.Family == FamilyBit {
			st.Size = atoiOr(inner, 1)
		} else {
			st.Size = atoiOr(inner, 0)
		}
		if raw := rawParen(raw); isEnumSetMembers(raw) {
			st.Members = parseMemberList(raw)
		}
	}
	return st
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}

// rawParen returns the parenthesized substring from the ORIGINAL (not
// lower-cased) raw string, since enum/set member literals are case-sensitive.
func rawParen(raw string) string {
	m := parenParamsRe.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return m[1]
}

func isEnumSetMembers(inner string) bool {
	return strings.Contains(inner, "'")
}

// parseMemberList splits a MySQL ENUM/SET parameter list ('a','b','c') into
// its unquoted members, honoring doubled-quote escaping.
func parseMemberList(inner string) []string {
	var members []string
	var cur strings.Builder
	inQuote := false
	runes := []rune(inner)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\'' && !inQuote:
			inQuote = true
		case r == '\'' && inQuote:
			if i+1 < len(runes) && runes[i+1] == '\'' {
				cur.WriteRune('\'')
				i++
				continue
			}
			inQuote = false
			members = append(members, cur.String())
			cur.Reset()
		case inQuote:
			cur.WriteRune(r)
		}
	}
	return members
}
