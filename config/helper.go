package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/relloyd/stageload/constants"
)

// EnvVarHome overrides the directory that stores config files.
const EnvVarHome = constants.EnvVarPrefix + "_HOME"

// GetConfigHomeDir returns the full path to the directory that stores all config files.
func GetConfigHomeDir() (string, error) {
	if d := os.Getenv(EnvVarHome); d != "" {
		return d, nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("unable to find home directory: %v", err)
	}
	return filepath.Join(home, MainDir), nil
}

// makeDir will make the given directory if it does not already exist.
func makeDir(dir string) error {
	_, err := os.Stat(dir)
	if os.IsNotExist(err) { // if it doesn't exist...
		if err = os.MkdirAll(dir, 0700); err != nil { // if the dir was NOT created...
			return fmt.Errorf("error creating directory %v: %v", dir, err)
		}
	} else if err != nil {
		return err
	}
	return nil
}
