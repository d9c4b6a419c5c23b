package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Statements an export may start with.
var allowedCommands = map[string]bool{
	"SELECT": true,
	"WITH":   true, // CTE
}

// Commands that modify data, schema or write outside of the result set.
var forbiddenCommands = []string{
	"DELETE",
	"DROP",
	"TRUNCATE",
	"INSERT",
	"UPDATE",
	"ALTER",
	"CREATE",
	"GRANT",
	"REVOKE",
	"EXECUTE",
	"EXEC",
	"CALL",
	"MERGE",
	"COPY",
	"EXPORT", // EXPORT TO PARQUET / EXPORT TO VERTICA
}

// nestedStatement matches a word that opens a parenthesised clause and is
// followed by another word, the shape of a CTE body or subquery
// ("(DELETE FROM"). A bare argument such as "coalesce(merge, 0)" does not match.
var nestedStatement = regexp.MustCompile(`\(\s*([A-Z_]+)\s+[A-Z_*]`)

var whitespace = regexp.MustCompile(`\s+`)

// ValidateQuery checks that the select statement of an export is a single
// read-only query.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("select statement cannot be empty")
	}

	statements := splitStatements(maskQuery(query))
	if len(statements) == 0 {
		return fmt.Errorf("select statement contains only comments")
	}
	if len(statements) > 1 {
		return fmt.Errorf("only a single SQL statement is allowed")
	}

	normalized := strings.ToUpper(whitespace.ReplaceAllString(statements[0], " "))
	command := firstWord(normalized)
	if command == "" {
		return fmt.Errorf("unable to identify SQL command (security: unknown command)")
	}

	if !allowedCommands[command] {
		if isForbidden(command) {
			return fmt.Errorf("forbidden SQL command detected: %s (read-only mode)", command)
		}
		return fmt.Errorf("unsupported SQL command: %s (only SELECT and WITH are allowed)", command)
	}

	// DML hidden in a CTE body or subquery. Identifiers such as a column
	// named "merge" are not in statement position and pass.
	for _, m := range nestedStatement.FindAllStringSubmatch(normalized, -1) {
		if isForbidden(m[1]) {
			return fmt.Errorf("forbidden SQL command detected: %s (security: command found in query)", m[1])
		}
	}
	return nil
}

// maskQuery drops comments and blanks out the content of string literals and
// quoted identifiers, so that keywords and semicolons inside them are ignored.
// Statement separators and word boundaries are preserved.
func maskQuery(query string) string {
	var b strings.Builder
	b.Grow(len(query))

	const (
		plain = iota
		lineComment
		blockComment
		quoted
	)
	state := plain
	var quote byte

	for i := 0; i < len(query); i++ {
		c := query[i]
		var next byte
		if i+1 < len(query) {
			next = query[i+1]
		}

		switch state {
		case plain:
			switch {
			case c == '-' && next == '-':
				state = lineComment
				i++
			case c == '/' && next == '*':
				state = blockComment
				i++
			case c == '\'' || c == '"':
				state = quoted
				quote = c
				b.WriteByte(' ')
			default:
				b.WriteByte(c)
			}
		case lineComment:
			if c == '\n' {
				state = plain
				b.WriteByte(c)
			}
		case blockComment:
			if c == '*' && next == '/' {
				state = plain
				i++
				b.WriteByte(' ')
			}
		case quoted:
			if c == quote {
				if next == quote { // doubled quote escape
					i++
					continue
				}
				state = plain
			}
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func isForbidden(word string) bool {
	for _, forbidden := range forbiddenCommands {
		if word == forbidden {
			return true
		}
	}
	return false
}

func splitStatements(masked string) []string {
	var statements []string
	for _, s := range strings.Split(masked, ";") {
		if s = strings.TrimSpace(s); s != "" {
			statements = append(statements, s)
		}
	}
	return statements
}

func firstWord(normalized string) string {
	fields := strings.Fields(normalized)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimRight(strings.TrimLeft(fields[0], "("), ";,()")
}
