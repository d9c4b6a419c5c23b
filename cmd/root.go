package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fbz-tec/vexport/core/config"
	"github.com/fbz-tec/vexport/core/output"
	"github.com/fbz-tec/vexport/internal/logger"
	"github.com/spf13/cobra"
)

var (
	configFile  string
	connString  string
	dbUser      string
	dbPassword  string
	sqlQuery    string
	sqlFile     string
	delimiter   string
	outputPath  string
	compression string
	timeFormat  string
	timeZone    string
	macros      []string
	properties  []string
	progress    bool
	verbose     bool
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:   "vexport",
	Short: "Export Vertica query results to delimited text files",
	Long: `Runs a single select statement against Vertica and streams the result set
to a newly created delimited text file, locally or on HDFS.

Configuration is read from a YAML file (--config), then from .env and
VERTICA_* environment variables, then from --property name=value pairs,
then from flags. Later sources win.
Values may contain ${name} macros resolved from --macro and the environment.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().SortFlags = false

	// Configuration sources
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringArrayVar(&properties, "property", nil, "Config property as name=value, e.g. selectStatement=... (repeatable)")
	rootCmd.PersistentFlags().StringArrayVarP(&macros, "macro", "m", nil, "Macro value as key=value (repeatable)")

	// Connection
	rootCmd.PersistentFlags().StringVar(&connString, "dsn", "", "Connection string (jdbc:vertica://host:port/database)")
	rootCmd.PersistentFlags().StringVarP(&dbUser, "user", "u", "", "Database username")
	rootCmd.PersistentFlags().StringVarP(&dbPassword, "password", "p", "", "Database password")

	// Query
	rootCmd.PersistentFlags().StringVarP(&sqlQuery, "sql", "s", "", "Select statement to execute")
	rootCmd.PersistentFlags().StringVarP(&sqlFile, "sqlfile", "F", "", "Path to SQL file containing the select statement")

	// Output
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "Output file path (local, file:// or hdfs://namenode:port/path)")
	rootCmd.PersistentFlags().StringVarP(&delimiter, "delimiter", "D", "", `Field delimiter (default ","; use \t for tab)`)
	rootCmd.PersistentFlags().StringVarP(&compression, "compression", "z", "", "Output compression ("+strings.Join(output.Compressions(), ", ")+")")
	rootCmd.PersistentFlags().StringVarP(&timeFormat, "time-format", "T", "", "Time format (e.g. yyyy-MM-dd HH:mm:ss)")
	rootCmd.PersistentFlags().StringVarP(&timeZone, "time-zone", "Z", "", "Time zone for time values (e.g. UTC, Europe/Paris)")

	// Behavior
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output with detailed information")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Enable quiet mode: only display error messages")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose && quiet {
			return fmt.Errorf("cannot use --verbose and --quiet flags together")
		}
		if quiet {
			logger.SetQuiet(true)
			logger.SetVerbose(false)
		} else {
			logger.SetVerbose(verbose)
			logger.Debug("Verbose mode enabled")
		}
		return nil
	}

	rootCmd.AddCommand(runCmd, validateCmd, versionCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// buildConfig merges the configuration sources in precedence order.
func buildConfig() (config.ExportConfig, error) {
	var cfg config.ExportConfig

	if configFile != "" {
		logger.Debug("Loading configuration file: %s", configFile)
		fileCfg, err := config.LoadFile(configFile)
		if err != nil {
			return cfg, err
		}
		cfg = fileCfg
	}

	logger.Debug("Loading configuration from environment")
	cfg = config.Merge(cfg, config.LoadEnv())

	if len(properties) > 0 {
		props, err := parseKeyValues(properties)
		if err != nil {
			return cfg, err
		}
		propCfg, err := config.FromProperties(props)
		if err != nil {
			return cfg, err
		}
		cfg = config.Merge(cfg, propCfg)
	}

	query := sqlQuery
	if sqlFile != "" {
		if sqlQuery != "" {
			return cfg, fmt.Errorf("cannot use both --sql and --sqlfile at the same time")
		}
		content, err := readSQLFromFile(sqlFile)
		if err != nil {
			return cfg, fmt.Errorf("error reading SQL file: %w", err)
		}
		query = content
		logger.Debug("SQL query loaded from file (%d characters)", len(query))
	}

	cfg = config.Merge(cfg, config.ExportConfig{
		ConnectionString: connString,
		User:             dbUser,
		Password:         dbPassword,
		SelectStatement:  query,
		Delimiter:        parseDelimiter(delimiter),
		Path:             outputPath,
		Compression:      compression,
		TimeFormat:       timeFormat,
		TimeZone:         timeZone,
	})
	return cfg, nil
}

// resolveMacros substitutes ${name} using --macro values first, then the
// environment.
func resolveMacros(cfg config.ExportConfig) (config.ExportConfig, error) {
	values, err := parseKeyValues(macros)
	if err != nil {
		return cfg, err
	}
	return cfg.Resolve(func(name string) (string, bool) {
		if v, ok := values[name]; ok {
			return v, true
		}
		return os.LookupEnv(name)
	})
}

func parseKeyValues(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid value %q, expected key=value", pair)
		}
		values[key] = value
	}
	return values, nil
}

func readSQLFromFile(filepath string) (string, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return "", fmt.Errorf("unable to read file: %w", err)
	}
	return strings.TrimSpace(string(content)), nil
}

// parseDelimiter expands the \t escape; any other value is used verbatim.
func parseDelimiter(delim string) string {
	if delim == `\t` {
		return "\t"
	}
	return delim
}

// describeConfig lists the non-empty properties of cfg with the password
// masked, in declaration order.
func describeConfig(cfg config.ExportConfig) []string {
	props := cfg.ToProperties()
	var lines []string
	for _, name := range config.Properties() {
		v, ok := props[name]
		if !ok {
			continue
		}
		if name == config.Password {
			v = "***"
		}
		lines = append(lines, name+"="+v)
	}
	return lines
}
