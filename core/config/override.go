package config

// Option overrides one property of an ExportConfig.
type Option func(*ExportConfig)

// With returns a copy of c with the given overrides applied; c is unchanged.
func (c ExportConfig) With(opts ...Option) ExportConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func WithConnectionString(v string) Option { return func(c *ExportConfig) { c.ConnectionString = v } }
func WithUser(v string) Option             { return func(c *ExportConfig) { c.User = v } }
func WithPassword(v string) Option         { return func(c *ExportConfig) { c.Password = v } }
func WithSelectStatement(v string) Option  { return func(c *ExportConfig) { c.SelectStatement = v } }
func WithDelimiter(v string) Option        { return func(c *ExportConfig) { c.Delimiter = v } }
func WithPath(v string) Option             { return func(c *ExportConfig) { c.Path = v } }
func WithCompression(v string) Option      { return func(c *ExportConfig) { c.Compression = v } }
func WithTimeFormat(v string) Option       { return func(c *ExportConfig) { c.TimeFormat = v } }
func WithTimeZone(v string) Option         { return func(c *ExportConfig) { c.TimeZone = v } }

// Merge returns base with every non-empty property of override applied on top.
func Merge(base, override ExportConfig) ExportConfig {
	var opts []Option
	set := func(v string, opt func(string) Option) {
		if v != "" {
			opts = append(opts, opt(v))
		}
	}
	set(override.ConnectionString, WithConnectionString)
	set(override.User, WithUser)
	set(override.Password, WithPassword)
	set(override.SelectStatement, WithSelectStatement)
	set(override.Delimiter, WithDelimiter)
	set(override.Path, WithPath)
	set(override.Compression, WithCompression)
	set(override.TimeFormat, WithTimeFormat)
	set(override.TimeZone, WithTimeZone)
	return base.With(opts...)
}
