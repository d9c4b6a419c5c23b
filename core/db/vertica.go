package db

import (
	"fmt"
	"net/url"
	"strings"

	_ "github.com/vertica/vertica-sql-go"
	"github.com/xo/dburl"
)

const jdbcPrefix = "jdbc:"

// VerticaFactory creates stores that talk to Vertica through the vertica-sql-go
// driver.
var VerticaFactory Factory = FactoryFunc(NewVerticaStore)

// NewVerticaStore builds an unconnected store from a jdbc:vertica:// URL.
func NewVerticaStore(params ConnParams) (Store, error) {
	driver, dsn, err := VerticaDSN(params)
	if err != nil {
		return nil, err
	}
	return NewSQLStore(driver, dsn), nil
}

// VerticaDSN converts a JDBC connection string plus credentials into the
// driver name and DSN understood by database/sql. Credentials given
// separately take precedence over any embedded in the URL.
func VerticaDSN(params ConnParams) (driver, dsn string, err error) {
	raw := strings.TrimSpace(params.ConnectionString)
	if !strings.HasPrefix(raw, jdbcPrefix) {
		return "", "", fmt.Errorf("connection string %q is not a jdbc url", raw)
	}

	u, err := url.Parse(strings.TrimPrefix(raw, jdbcPrefix))
	if err != nil {
		return "", "", fmt.Errorf("invalid connection string: %w", err)
	}
	if u.Scheme != "vertica" {
		return "", "", fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("connection string %q has no host", raw)
	}
	if params.User != "" {
		u.User = url.UserPassword(params.User, params.Password)
	}

	parsed, err := dburl.Parse(u.String())
	if err != nil {
		return "", "", fmt.Errorf("invalid connection string: %w", err)
	}
	return parsed.Driver, parsed.DSN, nil
}
