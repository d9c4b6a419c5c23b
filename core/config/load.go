package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Environment variables read by LoadEnv.
const (
	EnvConnectionString = "VERTICA_CONNECTION_STRING"
	EnvUser             = "VERTICA_USER"
	EnvPassword         = "VERTICA_PASSWORD"
	EnvSelectStatement  = "VERTICA_SELECT"
	EnvDelimiter        = "VERTICA_DELIMITER"
	EnvPath             = "VERTICA_EXPORT_PATH"
)

// LoadEnv loads configuration from environment variables and a .env file
// in the working directory, if any. Missing variables stay empty.
func LoadEnv() ExportConfig {

	_ = godotenv.Load()

	return ExportConfig{
		ConnectionString: os.Getenv(EnvConnectionString),
		User:             os.Getenv(EnvUser),
		Password:         os.Getenv(EnvPassword),
		SelectStatement:  os.Getenv(EnvSelectStatement),
		Delimiter:        os.Getenv(EnvDelimiter),
		Path:             os.Getenv(EnvPath),
	}
}

// LoadFile reads an ExportConfig from a YAML file. Unknown keys are rejected.
func LoadFile(path string) (ExportConfig, error) {
	var cfg ExportConfig

	content, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("unable to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// FromProperties decodes the property map handed over by a pipeline host.
func FromProperties(props map[string]string) (ExportConfig, error) {
	var cfg ExportConfig

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &cfg,
	})
	if err != nil {
		return cfg, err
	}
	if err := dec.Decode(props); err != nil {
		return cfg, fmt.Errorf("invalid properties: %w", err)
	}
	return cfg, nil
}

// ToProperties is the inverse of FromProperties; empty properties are omitted.
func (c ExportConfig) ToProperties() map[string]string {
	props := make(map[string]string, len(properties))
	for _, p := range properties {
		if v := c.Value(p); v != "" {
			props[p] = v
		}
	}
	return props
}
