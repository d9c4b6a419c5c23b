package config

import (
	"strings"

	"github.com/fbz-tec/vexport/core/output"
	"github.com/fbz-tec/vexport/core/validation"
)

// Config property names, as used in pipeline properties and YAML files.
const (
	ConnectionString = "connectionString"
	User             = "user"
	Password         = "password"
	SelectStatement  = "selectStatement"
	Delimiter        = "delimiter"
	Path             = "path"
	Compression      = "compression"
	TimeFormat       = "timeFormat"
	TimeZone         = "timeZone"
)

const (
	ConnectionStringPrefix = "jdbc:vertica://"
	DefaultDelimiter       = ","
)

// ExportConfig holds the properties of a Vertica export action.
// It is a plain value: use With to derive a modified copy.
type ExportConfig struct {
	// JDBC connection string including database name.
	ConnectionString string `yaml:"connectionString" mapstructure:"connectionString"`
	// Optional; required together with Password.
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	// Select command to export.
	SelectStatement string `yaml:"selectStatement" mapstructure:"selectStatement"`
	// Separator between values in the output file. Defaults to a comma.
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"`
	// File path where exported data will be written (local or hdfs://).
	Path string `yaml:"path" mapstructure:"path"`

	// Output compression: none, gzip, zip, zstd or lz4.
	Compression string `yaml:"compression" mapstructure:"compression"`
	// Optional pattern for time values, e.g. yyyy-MM-dd HH:mm:ss.
	TimeFormat string `yaml:"timeFormat" mapstructure:"timeFormat"`
	// Optional IANA zone time values are converted to.
	TimeZone string `yaml:"timeZone" mapstructure:"timeZone"`
}

// GetDelimiter returns the configured delimiter or DefaultDelimiter when unset.
func (c ExportConfig) GetDelimiter() string {
	if c.Delimiter == "" {
		return DefaultDelimiter
	}
	return c.Delimiter
}

// GetCompression returns the configured compression, "none" when unset.
func (c ExportConfig) GetCompression() string {
	if strings.TrimSpace(c.Compression) == "" {
		return output.None
	}
	return strings.ToLower(strings.TrimSpace(c.Compression))
}

// Value returns the raw value of a property by name.
func (c ExportConfig) Value(property string) string {
	switch property {
	case ConnectionString:
		return c.ConnectionString
	case User:
		return c.User
	case Password:
		return c.Password
	case SelectStatement:
		return c.SelectStatement
	case Delimiter:
		return c.Delimiter
	case Path:
		return c.Path
	case Compression:
		return c.Compression
	case TimeFormat:
		return c.TimeFormat
	case TimeZone:
		return c.TimeZone
	}
	return ""
}

// Validate records every problem of the configuration into collector.
// Properties that still contain a macro are skipped; they are checked again
// once the macro has been resolved.
func (c ExportConfig) Validate(collector validation.Collector) {
	if !c.ContainsMacro(Path) && c.Path == "" {
		collector.AddFailure("File Path must be specified.", "").
			WithConfigProperty(Path)
	}

	if !c.ContainsMacro(ConnectionString) {
		if c.ConnectionString == "" {
			collector.AddFailure("Connection String must be specified.", "").
				WithConfigProperty(ConnectionString)
		} else if !strings.HasPrefix(c.ConnectionString, ConnectionStringPrefix) {
			collector.AddFailure("Connection String has incorrect format.",
				"Ensure the connection string is of format jdbc:vertica://<VerticaHost>:<portNumber>/<databaseName>").
				WithConfigProperty(ConnectionString)
		}
	}

	if !c.ContainsMacro(User) || !c.ContainsMacro(Password) {
		if c.User == "" && c.Password != "" {
			collector.AddFailure("Username is not specified.",
				"Please provide both Username and Password if database requires authentication. "+
					"If not, please remove Password and retry.").
				WithConfigProperty(User).WithConfigProperty(Password)
		} else if c.User != "" && c.Password == "" {
			collector.AddFailure("Password is not specified.",
				"Please provide both Username and Password if database requires authentication. "+
					"If not, please remove Username and retry.").
				WithConfigProperty(User).WithConfigProperty(Password)
		}
	}

	if !c.ContainsMacro(Compression) && !output.IsSupportedCompression(c.GetCompression()) {
		collector.AddFailure("Compression \""+c.Compression+"\" is not supported.",
			"Use one of: "+strings.Join(output.Compressions(), ", ")+".").
			WithConfigProperty(Compression)
	}

	if !c.ContainsMacro(TimeFormat) {
		if err := validation.ValidateTimeFormat(c.TimeFormat); err != nil {
			collector.AddFailure("Time Format is invalid: "+err.Error(),
				"Use a pattern like yyyy-MM-dd HH:mm:ss.").
				WithConfigProperty(TimeFormat)
		}
	}

	if !c.ContainsMacro(TimeZone) {
		if err := validation.ValidateTimeZone(c.TimeZone); err != nil {
			collector.AddFailure("Time Zone is invalid: "+err.Error(),
				"Use an IANA zone name like UTC or Europe/Paris.").
				WithConfigProperty(TimeZone)
		}
	}
}
