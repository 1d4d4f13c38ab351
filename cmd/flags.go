package cmd

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/relloyd/stageload/config"
	"github.com/relloyd/stageload/constants"
	"github.com/relloyd/stageload/helper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type cliFlag struct {
	name      string // name of flag
	val       string // default value
	shortHand string // single character name for the flag
	desc      string // description of the flag; the long text
}

type cliFlags map[string]cliFlag

var switches = cliFlags{
	"mock": cliFlag{name: "mock", shortHand: "m", desc: "mock switch for testing"},
	"connection-name": cliFlag{name: "connection-name", shortHand: "c",
		desc: "Name of the store connection. The default connection reads SUPABASE_URL and SUPABASE_KEY \n" +
			"(or SL_STORE_URL and SL_STORE_KEY); any connection may be supplied as SL_<NAME>_DSN or saved \n" +
			"with 'sl config conn add'"},
	"pipeline-dir": cliFlag{name: "pipeline-dir", shortHand: "d",
		desc: "Pipeline root directory containing " + constants.StagedDirDefault},
	"staged-file": cliFlag{name: "staged-file", shortHand: "f",
		desc: "Staged CSV file to load, overriding the destination's default file. Relative paths are \n" +
			"resolved against the pipeline directory. Use s3://<bucket>/<key> to read from S3"},
	"schema-file": cliFlag{name: "schema-file", shortHand: "s",
		desc: "YAML file declaring extra destination schemas (may be repeated)"},
	"batch-size": cliFlag{name: "batch-size", shortHand: "b",
		desc: "Rows per insert request (0 to use the destination's default)"},
	"pause-ms": cliFlag{name: "pause-ms", shortHand: "p",
		desc: "Milliseconds to pause between insert requests"},
	"date-layout": cliFlag{name: "date-layout", shortHand: "D",
		desc: "Extra Go time layout tried first when parsing dates and timestamps (may be repeated)"},
	"alias": cliFlag{name: "alias", shortHand: "a",
		desc: "Extra column aliases for this load of the form '<incoming>:<field>,<incoming>:<field>'; \n" +
			"these take precedence over the destination's alias table"},
	"s3-region": cliFlag{name: "s3-region", shortHand: "R",
		desc: "AWS region of the bucket when the staged file is in S3"},
	"failed-rows-dir": cliFlag{name: "failed-rows-dir", shortHand: "F",
		desc: "Directory in which to save the rows of rejected batches as CSV for replay"},
	"output": cliFlag{name: "output", shortHand: "o",
		desc: "Report format: \"text\", \"json\" or \"yaml\""},
	"log-level": cliFlag{name: "log-level", shortHand: "l",
		desc: "Log level: \"error | warn | info | debug\""},
	"store-type": cliFlag{name: "store-type", shortHand: "t",
		desc: "SQL dialect for the CREATE TABLE statement: \"postgres\", \"sqlserver\" or \"snowflake\""},
}

// defaultsFile holds default flag values saved with 'sl config defaults add'.
var defaultsFile *config.File

// getConfigDefault reads key from the defaults file.
func getConfigDefault(key string, out interface{}) error {
	if defaultsFile == nil {
		f, err := config.NewDefaultsFile()
		if err != nil {
			return err
		}
		defaultsFile = f
	}
	return defaultsFile.Get(key, out)
}

// addFlag add a flag to cobra.Command c, based on the type of targetVar (which must be a pointer).
// The name of the flag is looked up in map, cliFlags.
// When running in twelveFactorMode, the targetVar is populated using the value of environment variable for the supplied
// name, or if not set then the supplied default value is used.
// When NOT running in twelveFactorMode, the default value is fetched from the defaults file if it exists else the
// supplied defaultValue is applied.
// The flag is marked as required in Cobra based on the value of required.
// Supply a value for desc2 to append to the existing description found in map cliFlags.
func (f *cliFlags) addFlag(c *cobra.Command, targetVar interface{}, name string, defaultValue string, required bool, desc2 string) {
	v := reflect.ValueOf(targetVar)
	if v.Kind() != reflect.Ptr {
		fmt.Println("error adding flag: targetVar must be a pointer")
		os.Exit(1)
	}
	sw := f.getCliFlag(name, defaultValue, getConfigDefault) // get the cliFlag details, with defaults taken from config or the supplied defaultValue
	desc := sw.desc + desc2
	// Apply the flag.
	switch p := targetVar.(type) {
	case *string:
		if twelveFactorMode {
			*p = sw.val
		} else {
			c.Flags().StringVarP(p, sw.name, sw.shortHand, sw.val, desc)
			// Signal that the flag was set so defaults take effect.
			if sw.val != "" { // if there is a value via config or default...
				mustSetFlag(c.Flags(), sw.name, sw.val)
			}
		}
	case *[]string:
		if twelveFactorMode {
			*p = helper.CsvToStringSliceTrimSpaces(sw.val)
		} else {
			c.Flags().StringSliceVarP(p, sw.name, sw.shortHand, helper.CsvToStringSliceTrimSpaces(sw.val), desc)
		}
	case *bool:
		if twelveFactorMode {
			*p = helper.GetTrueFalseStringAsBool(sw.val)
		} else {
			c.Flags().BoolVarP(p, sw.name, sw.shortHand, helper.GetTrueFalseStringAsBool(sw.val), desc)
		}
	case *int:
		defaultInt, err := strconv.Atoi(sw.val)
		if err != nil {
			fmt.Printf("the value for flag %q must be an integer: %v\n", sw.name, err)
			os.Exit(1)
		}
		if twelveFactorMode {
			*p = defaultInt
		} else {
			c.Flags().IntVarP(p, sw.name, sw.shortHand, defaultInt, desc)
			// Signal that the flag was set so defaults take effect.
			if sw.val != "" {
				mustSetFlag(c.Flags(), sw.name, sw.val)
			}
		}
	default:
		panic("Error: unhandled CLI flag target value type")
	}
	// Optionally mark the flag as mandatory.
	if required && !twelveFactorMode { // if the flag is required...
		_ = c.MarkFlagRequired(sw.name)
	}
}

// getCliFlag fetches the value of name from the environment, when running in twelveFactorMode,
// else read the defaults file to find it.
// If a value cannot be found then use the supplied defaultValue in its place.
func (f *cliFlags) getCliFlag(name string, defaultValue string, fnGetConfig func(key string, out interface{}) error) cliFlag {
	s, ok := (*f)[name]
	if !ok {
		panic(fmt.Sprintf("unregistered CLI flag, %q", name))
	}
	if twelveFactorMode { // if we should read env vars...
		if err := helper.ReadValueFromEnv(flagNameToEnvVar(name), &s.val); err != nil { // if there's no value for the env var...
			s.val = defaultValue
		}
	} else { // else check the config file or apply default...
		err := fnGetConfig(s.name, &s.val)
		if err != nil || s.val == "" { // if there was no key found...
			s.val = defaultValue
		}
	}
	return s
}

// flagNameToEnvVar will form a sanitised environment variable name using constants.EnvVarPrefix.
func flagNameToEnvVar(name string) string {
	return constants.EnvVarPrefix + "_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func mustSetFlag(f *pflag.FlagSet, name string, val string) {
	if err := f.Set(name, val); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// getCollectionArgFunc returns a func that cobra uses to validate that we have 1 arg.
// It saves arg[0] as the destination collection.
func getCollectionArgFunc(collection *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New("requires a destination <collection>")
		}
		*collection = args[0]
		return nil
	}
}
