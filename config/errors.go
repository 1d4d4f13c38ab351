package config

import "fmt"

// ConfigError reports missing or invalid settings found before any work starts.
type ConfigError struct {
	Msg   string
	Cause error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error: %v: %v", e.Msg, e.Cause)
	}
	return fmt.Sprintf("configuration error: %v", e.Msg)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

func newConfigError(cause error, format string, a ...interface{}) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, a...), Cause: cause}
}
