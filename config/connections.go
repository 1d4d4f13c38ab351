package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/stageload/constants"
	"github.com/relloyd/stageload/helper"
	"github.com/relloyd/stageload/logger"
	"github.com/relloyd/stageload/store"
)

// GetConnectionDetails fetches connection details from the File c using the connectionName to do the lookup.
func (c *File) GetConnectionDetails(connectionName string) (*store.ConnectionDetails, error) {
	conn := &store.ConnectionDetails{}
	if err := c.Get(connectionName, conn); err != nil {
		return nil, err
	}
	if conn.Type == "" {
		return nil, errors.Errorf("unknown type for connection %q", connectionName)
	}
	if conn.LogicalName == "" {
		conn.LogicalName = connectionName
	}
	return conn, nil
}

// SetConnectionDetails saves conn under its logical name.
func (c *File) SetConnectionDetails(conn store.ConnectionDetails) error {
	if err := conn.Validate(); err != nil {
		return err
	}
	return c.Set(conn.LogicalName, conn)
}

// ResolveConnection finds credentials for the named connection. Sources are tried in order:
//   - for the default connection, SUPABASE_URL/SUPABASE_KEY then SL_STORE_URL/SL_STORE_KEY;
//   - SL_<NAME>_DSN;
//   - the connections file, if supplied.
// A *ConfigError is returned if nothing usable is found.
func ResolveConnection(log logger.Logger, connectionName string, file *File) (store.ConnectionDetails, error) {
	if connectionName == "" {
		connectionName = constants.ConnectionNameDefault
	}
	if strings.EqualFold(connectionName, constants.ConnectionNameDefault) {
		if conn, ok := connectionFromUrlEnv(); ok {
			log.Debug("using store credentials from environment for connection ", connectionName)
			return validated(conn)
		}
	}
	dsnVar := helper.GetDsnEnvVarName(connectionName)
	if dsn, err := helper.GetEnvVar(dsnVar, false); err == nil && dsn != "" {
		t, err := store.TypeFromDsn(dsn)
		if err != nil {
			return store.ConnectionDetails{}, newConfigError(err, "invalid DSN in %v", dsnVar)
		}
		conn := store.ConnectionDetails{Type: t, LogicalName: connectionName, Data: map[string]string{}}
		if t == constants.ConnectionTypePostgrest { // if the DSN is a URL...
			conn.Data[store.DefaultConnectionKeyNames.Url] = dsn
		} else {
			conn.Data[store.DefaultConnectionKeyNames.Dsn] = dsn
		}
		log.Debug("using DSN from ", dsnVar)
		return validated(conn)
	}
	if file != nil {
		conn, err := file.GetConnectionDetails(connectionName)
		if err == nil {
			log.Debug("using connection ", connectionName, " from ", file.FullPath)
			return validated(*conn)
		}
		var knf KeyNotFoundError
		if !errors.As(err, &knf) {
			return store.ConnectionDetails{}, newConfigError(err, "unable to read connection %q", connectionName)
		}
	}
	return store.ConnectionDetails{}, newConfigError(nil,
		"no credentials found for connection %q: set %v and %v, set %v, or add a connection with 'sl config conn add'",
		connectionName, constants.EnvVarSupabaseUrl, constants.EnvVarSupabaseKey, dsnVar)
}

func connectionFromUrlEnv() (store.ConnectionDetails, bool) {
	url, urlVar := helper.ReadFirstValueFromEnv(constants.EnvVarSupabaseUrl, constants.EnvVarStoreUrl)
	if url == "" {
		return store.ConnectionDetails{}, false
	}
	conn := store.ConnectionDetails{
		Type:        constants.ConnectionTypePostgrest,
		LogicalName: constants.ConnectionNameDefault,
		Data:        map[string]string{store.DefaultConnectionKeyNames.Url: url},
	}
	var key string
	if urlVar == constants.EnvVarSupabaseUrl {
		conn.Type = constants.ConnectionTypeSupabase
		key, _ = helper.ReadFirstValueFromEnv(constants.EnvVarSupabaseKey, constants.EnvVarStoreKey)
	} else {
		key, _ = helper.ReadFirstValueFromEnv(constants.EnvVarStoreKey, constants.EnvVarSupabaseKey)
		if strings.Contains(url, ".supabase.co") {
			conn.Type = constants.ConnectionTypeSupabase
		}
	}
	if key != "" {
		conn.Data[store.DefaultConnectionKeyNames.Key] = key
	}
	return conn, true
}

func validated(conn store.ConnectionDetails) (store.ConnectionDetails, error) {
	if err := conn.Validate(); err != nil {
		return store.ConnectionDetails{}, newConfigError(err, "invalid connection %q", conn.LogicalName)
	}
	return conn, nil
}
