package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/relloyd/stageload/actions"
	"github.com/relloyd/stageload/config"
	c "github.com/relloyd/stageload/constants"
	"github.com/relloyd/stageload/helper"
	"github.com/relloyd/stageload/logger"
)

// init will be called first due to the lexical order in which these functions are executed.
// This ensures .env files are loaded and the value of twelveFactorMode is set such that other init() functions
// that configure Cobra can read the environment variables equivalent to each CLI flag.
func init() {
	loadEnvFiles()
	setupTwelveFactorMode()
}

// loadEnvFiles loads .env from the working directory without overwriting existing variables.
func loadEnvFiles() {
	log := logger.NewLogger("stageload", "warn", false)
	if err := config.LoadEnvFiles(log, envFileDefault); err != nil {
		log.Warn(err)
	}
}

// setupTwelveFactorMode will enable or disable 12 factor mode based on environment variable.
func setupTwelveFactorMode() {
	mode := os.Getenv(envVarTwelveFactorMode)
	if mode != "" { // if variable for 12factor mode is set and we should read env vars to determine actions...
		twelveFactorMode = true
		if strings.ToLower(mode) == "lambda" {
			lambdaMode = true
		}
	} else { // else 12factor mode should be off...
		twelveFactorMode = false // explicitly turn off this mode since tests may have turned it on while others require it off.
		lambdaMode = false
	}
}

const (
	envFileDefault         = ".env"
	envVarTwelveFactorMode = c.EnvVarPrefix + "_" + "12FACTOR_MODE"
	envVarCommand          = c.EnvVarPrefix + "_" + "COMMAND"
	envVarSubcommand       = c.EnvVarPrefix + "_" + "SUBCOMMAND"
	envVarCollection       = c.EnvVarPrefix + "_" + "COLLECTION"
	envVarLogLevel         = c.EnvVarPrefix + "_" + "LOG_LEVEL"
	envVarStackDump        = c.EnvVarPrefix + "_" + "STACK_DUMP"
)

var (
	twelveFactorMode bool // true if os env var envVarTwelveFactorMode is set
	lambdaMode       bool // true if envVarTwelveFactorMode is set to "lambda"
	twelveFactorVars = map[string]string{
		envVarCommand:    "",
		envVarSubcommand: "",
		envVarCollection: "",
		// Store
		c.EnvVarSupabaseUrl: "",
		c.EnvVarSupabaseKey: "",
		c.EnvVarStoreUrl:    "",
		c.EnvVarStoreKey:    "",
		helper.GetDsnEnvVarName(c.ConnectionNameDefault): "",
		// Misc
		envVarLogLevel:  "",
		envVarStackDump: "",
	}
	twelveFactorVarsSensitive = map[string]string{ // used to flag some of the above variables as being sensitive.
		c.EnvVarSupabaseKey: "",
		c.EnvVarStoreKey:    "",
		helper.GetDsnEnvVarName(c.ConnectionNameDefault): "",
	}
)

type twelveFactorAction struct {
	setupFunc  func(collection string)
	runnerFunc func() error
}

var twelveFactorActions = map[string]twelveFactorAction{
	"load": {
		setupFunc:  func(collection string) { loadCfg.Collection = collection },
		runnerFunc: runLoad,
	},
	"schema-list": {
		setupFunc:  func(collection string) {},
		runnerFunc: runSchemaList,
	},
	"schema-show": {
		setupFunc:  func(collection string) { schemaCfg.Collection = collection },
		runnerFunc: runSchemaShow,
	},
}

// getConnectionGetterSetter returns the connections file for commands that save connections.
// Connections cannot be saved in 12 factor mode.
func getConnectionGetterSetter() (*config.File, error) {
	if twelveFactorMode {
		return nil, fmt.Errorf("connections cannot be configured when %v is set (supply them using %v and %v or %v instead)",
			envVarTwelveFactorMode, c.EnvVarSupabaseUrl, c.EnvVarSupabaseKey, helper.GetDsnEnvVarName("<connection-name>"))
	}
	return config.NewConnectionsFile()
}

// getConnectionsFile returns the connections file used to look up named connections during a load.
// There is none in 12 factor mode, where credentials come from the environment only.
func getConnectionsFile(log logger.Logger) *config.File {
	if twelveFactorMode {
		return nil
	}
	f, err := config.NewConnectionsFile()
	if err != nil {
		log.Warn("saved connections are unavailable: ", err)
		return nil
	}
	return f
}

func execute12FactorMode(acts map[string]twelveFactorAction) (err error) {
	logLevel := helper.ReadValueFromEnvWithDefault(envVarLogLevel, "info")
	if os.Getenv(envVarStackDump) != "" {
		stackDumpOnPanic = true
	}
	log := newLogger(logLevel)
	log.Info("Stageload is running in 12 Factor mode...")
	// Save values for the required variables.
	for k := range twelveFactorVars { // for each env variable that we need...
		// Save it and log it.
		twelveFactorVars[k] = os.Getenv(k)
		_, sensitive := twelveFactorVarsSensitive[k]
		if !sensitive { // if the env variable does not contain sensitive values...
			log.Debug(k, "=", twelveFactorVars[k])
		} else { // else output obfuscated value...
			log.Debug(k, "=", "<obfuscated>")
		}
	}
	// Use command and subcommand to fetch the appropriate action.
	action := strings.ToLower(twelveFactorVars[envVarCommand])
	if sub := twelveFactorVars[envVarSubcommand]; sub != "" {
		action = fmt.Sprintf("%v-%v", action, strings.ToLower(sub))
	}
	a, ok := acts[action]
	if !ok {
		err = fmt.Errorf("invalid combination of command (%v) and subcommand (%v)", twelveFactorVars[envVarCommand], twelveFactorVars[envVarSubcommand])
		log.Error(err.Error())
		return
	}
	a.setupFunc(twelveFactorVars[envVarCollection])
	// Run the action.
	if err = a.runnerFunc(); err != nil {
		log.Error("Error: ", err)
	}
	return err
}

// Assert the config file satisfies the interfaces used by the connection actions.
var _ actions.ConnectionSaver = &config.File{}
var _ actions.ConnectionLister = &config.File{}
