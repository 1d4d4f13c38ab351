package cmd

import (
	"errors"
	"os"
	"testing"

	"github.com/relloyd/stageload/constants"
	"github.com/relloyd/stageload/logger"
)

var results = map[string]int{
	"load":        0,
	"schema-show": 0,
}

var gotCollection string

func getMock12FactorExecutor(action string) func() error {
	return func() error {
		results[action] = 1
		return nil
	}
}

var mockTwelveFactorActions = map[string]twelveFactorAction{
	"load": {
		setupFunc:  func(collection string) { gotCollection = collection },
		runnerFunc: getMock12FactorExecutor("load"),
	},
	"schema-show": {
		setupFunc:  func(collection string) { gotCollection = collection },
		runnerFunc: getMock12FactorExecutor("schema-show"),
	},
}

func TestSetupTwelveFactorMode(t *testing.T) {
	// Test 1 - off by default.
	t.Setenv(envVarTwelveFactorMode, "")
	setupTwelveFactorMode()
	if twelveFactorMode || lambdaMode {
		t.Fatal("test 1 failed: expected twelveFactorMode and lambdaMode to be false")
	}
	// Test 2 - on.
	t.Setenv(envVarTwelveFactorMode, "1")
	setupTwelveFactorMode()
	if !twelveFactorMode || lambdaMode {
		t.Fatal("test 2 failed: expected twelveFactorMode true and lambdaMode false")
	}
	// Test 3 - lambda.
	t.Setenv(envVarTwelveFactorMode, "Lambda")
	setupTwelveFactorMode()
	if !twelveFactorMode || !lambdaMode {
		t.Fatal("test 3 failed: expected twelveFactorMode and lambdaMode to be true")
	}
	t.Setenv(envVarTwelveFactorMode, "")
	setupTwelveFactorMode()
}

func TestExecute12FactorMode(t *testing.T) {
	log := logger.NewLogger("stageload", "error", true)
	var osVars = map[string]string{
		"SL_LOG_LEVEL":  "error",
		"SL_COLLECTION": "nasa_apod",
		"SUPABASE_URL":  "https://abc.supabase.co",
		"SUPABASE_KEY":  "123xyz456",
		"SL_STACK_DUMP": "1",
	}
	for k, v := range osVars {
		t.Setenv(k, v)
	}

	// Test 1 - action runner function is called with the collection.
	log.Info("test 1 - load")
	t.Setenv("SL_COMMAND", "load")
	t.Setenv("SL_SUBCOMMAND", "")
	if err := execute12FactorMode(mockTwelveFactorActions); err != nil {
		t.Fatalf("test 1 failed: expected nil error got error: %v", err)
	}
	if results["load"] == 0 || gotCollection != "nasa_apod" {
		t.Fatalf("test 1 failed: expected load to run for nasa_apod; got %v, %q", results["load"], gotCollection)
	}

	// Test 2 - invalid command + subcommand.
	log.Info("test 2 - invalid command subcommand")
	t.Setenv("SL_COMMAND", "invalidCommand")
	t.Setenv("SL_SUBCOMMAND", "invalidSubcommand")
	if err := execute12FactorMode(mockTwelveFactorActions); err == nil {
		t.Fatal("test 2 failed, expected: error; got: nil")
	}

	// Test 3 - subcommands are joined to the command.
	t.Setenv("SL_COMMAND", "SCHEMA")
	t.Setenv("SL_SUBCOMMAND", "show")
	if err := execute12FactorMode(mockTwelveFactorActions); err != nil {
		t.Fatalf("test 3 failed: expected nil error got error: %v", err)
	}
	if results["schema-show"] == 0 {
		t.Fatal("test 3 failed: expected schema-show to run")
	}

	// Test 4 - all twelveFactorVars are fetched from the environment.
	for k, expected := range osVars {
		if _, registered := twelveFactorVars[k]; !registered {
			continue
		}
		if got := twelveFactorVars[k]; got != expected {
			t.Fatalf("test 4 failed: expected %v = %v; got: %v", k, expected, got)
		}
	}

	// Test 5 - sensitive vars are set up.
	if _, sensitive := twelveFactorVarsSensitive[constants.EnvVarSupabaseKey]; !sensitive {
		t.Fatal("test 5 failed: expected SUPABASE_KEY to be registered in map twelveFactorVarsSensitive")
	}
	stackDumpOnPanic = false
}

func TestTwelveFactorActions(t *testing.T) {
	// Every runnable command must be reachable in 12 factor mode.
	for _, k := range []string{"load", "schema-list", "schema-show"} {
		if _, ok := twelveFactorActions[k]; !ok {
			t.Fatalf("twelveFactorActions does not handle action %v", k)
		}
	}
}

func TestGetConnectionGetterSetter(t *testing.T) {
	t.Setenv("SL_HOME", t.TempDir())
	// Test 1 - refused in 12 factor mode.
	twelveFactorMode = true
	if _, err := getConnectionGetterSetter(); err == nil {
		t.Fatal("test 1 failed: expected an error in twelve factor mode")
	}
	if f := getConnectionsFile(logger.NewLogger("stageload", "error", false)); f != nil {
		t.Fatal("test 1 failed: expected no connections file in twelve factor mode")
	}
	// Test 2 - file under SL_HOME.
	twelveFactorMode = false
	f, err := getConnectionGetterSetter()
	if err != nil {
		t.Fatal("test 2 failed: ", err)
	}
	if f.Dirname != os.Getenv("SL_HOME") {
		t.Fatalf("test 2 failed: expected connections file in SL_HOME; got %v", f.FullPath)
	}
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err      error
		expected int
	}{
		{nil, constants.ExitCodeSuccess},
		{errors.New("boom"), constants.ExitCodeFatal},
		{&exitError{code: constants.ExitCodePartialLoad, msg: "partial"}, constants.ExitCodePartialLoad},
		{&exitError{code: constants.ExitCodeNothingLoad, msg: "failed"}, constants.ExitCodeNothingLoad},
	}
	for idx, c := range cases {
		if got := exitCode(c.err); got != c.expected {
			t.Fatalf("test %v failed: expected exit code %v; got %v", idx+1, c.expected, got)
		}
	}
}
