package helper

import (
	"strings"
	"testing"
)

type validationTestCfg struct {
	Name      string   `errorTxt:"name" mandatory:"yes"`
	BatchSize int      `errorTxt:"batch size" mandatory:"yes"`
	Optional  string   `errorTxt:"optional"`
	Columns   []string `errorTxt:"columns" mandatory:"yes"`
	Nested    struct {
		Path string `errorTxt:"nested path" mandatory:"yes"`
	}
}

func TestValidateStructIsPopulated(t *testing.T) {
	// Test 1 - all missing.
	err := ValidateStructIsPopulated(&validationTestCfg{})
	if err == nil {
		t.Fatal("expected an error for an empty struct")
	}
	for _, s := range []string{"name", "batch size", "columns", "nested path"} {
		if !strings.Contains(err.Error(), s) {
			t.Fatalf("expected error to mention %q; got %v", s, err)
		}
	}
	if strings.Contains(err.Error(), "optional") {
		t.Fatalf("unexpected optional field in error: %v", err)
	}
	// Test 2 - all populated.
	cfg := validationTestCfg{Name: "x", BatchSize: 1, Columns: []string{"a"}}
	cfg.Nested.Path = "p"
	if err := ValidateStructIsPopulated(cfg); err != nil {
		t.Fatalf("expected no error; got %v", err)
	}
}
