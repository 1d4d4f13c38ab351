package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/relloyd/stageload/constants"
	"github.com/xo/dburl"
)

var DefaultConnectionKeyNames = struct {
	Dsn    string
	Url    string
	Key    string
	Schema string
}{
	Dsn:    "dsn",
	Url:    "url",
	Key:    "key",
	Schema: "schema",
}

// ConnectionDetails holds credentials for a logical store connection.
// HTTP stores (supabase, postgrest) use keys "url" and "key"; databases use "dsn".
type ConnectionDetails struct {
	Type        string            `json:"type" errorTxt:"store type" mandatory:"yes" yaml:"type" mapstructure:"type"`
	LogicalName string            `json:"logicalName" errorTxt:"store logical name" mandatory:"yes" yaml:"logicalName" mapstructure:"logicalName"`
	Data        map[string]string `json:"data" yaml:"data" mapstructure:"data"`
}

// String redacts secrets and pretty-prints the contents of ConnectionDetails.
func (c ConnectionDetails) String() string {
	x := []string{fmt.Sprintf("  type = %v", c.Type)}
	keys := make([]string, 0, len(c.Data))
	for k := range c.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := c.Data[k]
		switch k {
		case DefaultConnectionKeyNames.Dsn:
			v = RedactDsn(v)
		case DefaultConnectionKeyNames.Key, "password":
			v = "xxxxx"
		}
		x = append(x, fmt.Sprintf("  %v = %v", k, v))
	}
	return strings.Join(x, "\n")
}

// Validate checks the connection carries what its type needs.
func (c ConnectionDetails) Validate() error {
	switch c.Type {
	case constants.ConnectionTypeSupabase, constants.ConnectionTypePostgrest:
		if c.Data[DefaultConnectionKeyNames.Url] == "" {
			return fmt.Errorf("connection %q of type %v is missing a url", c.LogicalName, c.Type)
		}
		if c.Type == constants.ConnectionTypeSupabase && c.Data[DefaultConnectionKeyNames.Key] == "" {
			return fmt.Errorf("connection %q of type %v is missing an API key", c.LogicalName, c.Type)
		}
	case constants.ConnectionTypePostgres, constants.ConnectionTypeSqlServer:
		dsn := c.Data[DefaultConnectionKeyNames.Dsn]
		if dsn == "" {
			return fmt.Errorf("connection %q of type %v is missing a dsn", c.LogicalName, c.Type)
		}
		if _, err := dburl.Parse(dsn); err != nil {
			return fmt.Errorf("connection %q has an invalid dsn: %v", c.LogicalName, err)
		}
	case constants.ConnectionTypeSnowflake:
		if _, err := SnowflakeParseDSN(c.Data[DefaultConnectionKeyNames.Dsn]); err != nil {
			return fmt.Errorf("connection %q: %v", c.LogicalName, err)
		}
	default:
		return fmt.Errorf("unsupported store type %q", c.Type)
	}
	return nil
}

// RedactDsn returns the DSN with its password masked.
func RedactDsn(dsn string) string {
	if strings.HasPrefix(dsn, "snowflake://") {
		if cn, err := SnowflakeParseDSN(dsn); err == nil {
			return cn.String()
		}
		return "snowflake://<unparseable>"
	}
	u, err := dburl.Parse(dsn)
	if err != nil {
		return "<unparseable dsn>"
	}
	return u.Redacted()
}

// TypeFromDsn guesses the store type from the DSN scheme.
func TypeFromDsn(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "snowflake://") {
		return constants.ConnectionTypeSnowflake, nil
	}
	if strings.HasPrefix(dsn, "http://") || strings.HasPrefix(dsn, "https://") {
		return constants.ConnectionTypePostgrest, nil
	}
	u, err := dburl.Parse(dsn)
	if err != nil {
		return "", err
	}
	switch u.Driver {
	case "postgres", "pgx":
		return constants.ConnectionTypePostgres, nil
	case "sqlserver", "mssql":
		return constants.ConnectionTypeSqlServer, nil
	}
	return "", fmt.Errorf("unsupported DSN scheme %q", u.OriginalScheme)
}
