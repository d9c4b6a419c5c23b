package config

import (
	"fmt"
	"regexp"

	"go.uber.org/multierr"
)

var macroPattern = regexp.MustCompile(`\$\{\s*([^}]*?)\s*\}`)

// properties in declaration order
var properties = []string{
	ConnectionString, User, Password, SelectStatement, Delimiter, Path,
	Compression, TimeFormat, TimeZone,
}

// Properties returns the names of all supported config properties.
func Properties() []string {
	return append([]string(nil), properties...)
}

// ContainsMacro reports whether the property value is still a ${...} macro
// that the host has not resolved yet.
func (c ExportConfig) ContainsMacro(property string) bool {
	return macroPattern.MatchString(c.Value(property))
}

// Resolve substitutes every ${name} macro using lookup. All undefined
// macros are reported together.
func (c ExportConfig) Resolve(lookup func(name string) (string, bool)) (ExportConfig, error) {
	var errs error
	expand := func(property, value string) string {
		return macroPattern.ReplaceAllStringFunc(value, func(m string) string {
			name := macroPattern.FindStringSubmatch(m)[1]
			v, ok := lookup(name)
			if !ok {
				errs = multierr.Append(errs, fmt.Errorf("macro %q used by property %q is not defined", name, property))
				return m
			}
			return v
		})
	}

	resolved := c.With(
		WithConnectionString(expand(ConnectionString, c.ConnectionString)),
		WithUser(expand(User, c.User)),
		WithPassword(expand(Password, c.Password)),
		WithSelectStatement(expand(SelectStatement, c.SelectStatement)),
		WithDelimiter(expand(Delimiter, c.Delimiter)),
		WithPath(expand(Path, c.Path)),
		WithCompression(expand(Compression, c.Compression)),
		WithTimeFormat(expand(TimeFormat, c.TimeFormat)),
		WithTimeZone(expand(TimeZone, c.TimeZone)),
	)
	if errs != nil {
		return c, errs
	}
	return resolved, nil
}

// MapLookup adapts a map to the lookup function expected by Resolve.
func MapLookup(m map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}
