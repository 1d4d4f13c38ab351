package actions

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/relloyd/stageload/config"
	"github.com/relloyd/stageload/helper"
)

type DefaultConfig struct {
	ConfigFile ConnectionGetterSetter `errorTxt:"defaults file" mandatory:"yes"`
	Key        string                 `errorTxt:"key" mandatory:"yes"`
	Value      string
	Force      bool
	Out        io.Writer
}

// RunDefaultAdd saves cfg.Value under cfg.Key.
// An existing key is only overwritten when cfg.Force is set.
func RunDefaultAdd(cfg *DefaultConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil { // if the basics were not supplied...
		return err
	}
	if cfg.Value == "" {
		return fmt.Errorf("please supply a value for key %q", cfg.Key)
	}
	var val string
	err := cfg.ConfigFile.Get(cfg.Key, &val)
	if err == nil && !cfg.Force { // if key exists and we're not allowed to overwrite...
		return fmt.Errorf("key %q exists, use force to update the value or remove it first", cfg.Key)
	}
	var knf config.KeyNotFoundError
	if err != nil && !errors.As(err, &knf) { // if there was an unexpected error...
		return err
	}
	if err = cfg.ConfigFile.Set(cfg.Key, cfg.Value); err != nil {
		return fmt.Errorf("error writing defaults file after adding: %v", err)
	}
	printf(cfg.Out, "Key %q added\n", cfg.Key)
	return nil
}

// RunDefaultRemove removes a key from the defaults file.
func RunDefaultRemove(cfg *DefaultConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	if err := cfg.ConfigFile.Delete(cfg.Key); err != nil {
		return fmt.Errorf("unable to delete key %q from config: %v", cfg.Key, err)
	}
	printf(cfg.Out, "Key %q removed\n", cfg.Key)
	return nil
}

type DefaultLister interface {
	GetAllKeys() ([]string, error)
	Get(key string, out interface{}) error
}

// RunDefaultList prints key=value for every saved default.
func RunDefaultList(w io.Writer, l DefaultLister) error {
	keys, err := l.GetAllKeys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		var val string
		if err = l.Get(k, &val); err != nil {
			return err
		}
		printf(w, "%v=%v\n", k, val)
	}
	return nil
}
