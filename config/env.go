package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/relloyd/stageload/logger"
)

// LoadEnvFiles loads variables from .env style files into the environment.
// Missing files are skipped and variables that are already set are not overwritten.
func LoadEnvFiles(log logger.Logger, files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			log.Debug("no env file at ", f)
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return newConfigError(err, "unable to load env file %v", f)
		}
		log.Debug("loaded env file ", f)
	}
	return nil
}
