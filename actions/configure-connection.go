package actions

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/stageload/config"
	"github.com/relloyd/stageload/constants"
	"github.com/relloyd/stageload/helper"
	"github.com/relloyd/stageload/store"
)

type ConnectionConfig struct {
	ConfigFile  ConnectionSaver `errorTxt:"connections file" mandatory:"yes"`
	LogicalName string          `errorTxt:"connection name" mandatory:"yes"`
	Type        string
	Url         string
	Key         string
	Dsn         string
	Schema      string
	Force       bool
	Out         io.Writer
}

func RunConnectionAdd(cfg *ConnectionConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil { // if the basics were not supplied...
		return err
	}
	if strings.ContainsAny(cfg.LogicalName, ". ") {
		return fmt.Errorf("connection name cannot contain periods or spaces")
	}
	connection := store.ConnectionDetails{
		LogicalName: cfg.LogicalName,
		Type:        cfg.Type,
		Data:        make(map[string]string),
	}
	if connection.Type == "" { // if the type should be derived...
		var err error
		switch {
		case cfg.Dsn != "":
			connection.Type, err = store.TypeFromDsn(cfg.Dsn)
		case cfg.Url != "":
			connection.Type, err = store.TypeFromDsn(cfg.Url)
			if strings.Contains(cfg.Url, ".supabase.co") {
				connection.Type = constants.ConnectionTypeSupabase
			}
		default:
			err = errors.New("supply a DSN or URL for the connection")
		}
		if err != nil {
			return err
		}
	}
	for k, v := range map[string]string{
		store.DefaultConnectionKeyNames.Url:    cfg.Url,
		store.DefaultConnectionKeyNames.Key:    cfg.Key,
		store.DefaultConnectionKeyNames.Dsn:    cfg.Dsn,
		store.DefaultConnectionKeyNames.Schema: cfg.Schema,
	} {
		if v != "" {
			connection.Data[k] = v
		}
	}
	if err := connection.Validate(); err != nil {
		return errors.Wrap(err, "unable to create connection")
	}
	// Check for an existing saved connection.
	existing := &store.ConnectionDetails{}
	err := cfg.ConfigFile.Get(cfg.LogicalName, existing)
	if err == nil && existing.Type != "" && !cfg.Force { // if the connection exists, but we are not allowed to overwrite it...
		return fmt.Errorf("connection exists, use force to update the connection or remove it first")
	}
	var knf config.KeyNotFoundError
	if err != nil && !errors.As(err, &knf) { // if the error is real...
		return err
	}
	if err = cfg.ConfigFile.SetConnectionDetails(connection); err != nil {
		return fmt.Errorf("error writing connections config file after adding: %v", err)
	}
	printf(cfg.Out, "Connection %q added\n", cfg.LogicalName)
	return nil
}

func RunConnectionRemove(cfg *ConnectionConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil { // if the basics were not supplied...
		return err
	}
	if err := cfg.ConfigFile.Delete(cfg.LogicalName); err != nil {
		return fmt.Errorf("unable to delete connection %q from config: %v", cfg.LogicalName, err)
	}
	printf(cfg.Out, "Connection %q removed\n", cfg.LogicalName)
	return nil
}

// RunConnectionList prints every saved connection with secrets redacted.
func RunConnectionList(w io.Writer, l ConnectionLister) error {
	keys, err := l.GetAllKeys()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		printf(w, "No connections configured\n")
		return nil
	}
	for _, k := range keys {
		c, err := l.GetConnectionDetails(k)
		if err != nil {
			printf(w, "%v:\n  error: %v\n", k, err)
			continue
		}
		printf(w, "%v:\n%v\n", k, c)
	}
	return nil
}

func printf(w io.Writer, format string, a ...interface{}) {
	if w != nil {
		_, _ = fmt.Fprintf(w, format, a...)
	}
}
