package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/relloyd/stageload/constants"
	"gopkg.in/yaml.v2"
)

func outcomes(pattern string, rowsPerBatch int) []Outcome {
	retval := make([]Outcome, 0, len(pattern))
	for idx, ch := range pattern {
		o := Outcome{
			Batch:     idx + 1,
			FirstRow:  idx*rowsPerBatch + 1,
			LastRow:   (idx + 1) * rowsPerBatch,
			Rows:      rowsPerBatch,
			Succeeded: ch == 'y',
		}
		if !o.Succeeded {
			o.Err = errors.New("rejected")
			o.Error = o.Err.Error()
		}
		retval = append(retval, o)
	}
	return retval
}

func TestReportStatus(t *testing.T) {
	cases := []struct {
		pattern  string
		status   Status
		exitCode int
		loaded   int
		failed   int
	}{
		{"", StatusEmpty, constants.ExitCodeSuccess, 0, 0},
		{"yyyyy", StatusComplete, constants.ExitCodeSuccess, 50, 0},
		{"ynyyy", StatusPartial, constants.ExitCodePartialLoad, 40, 10},
		{"nnn", StatusFailed, constants.ExitCodeNothingLoad, 0, 30},
	}
	for idx, c := range cases {
		r := NewReport("iris_data")
		r.AddOutcomes(outcomes(c.pattern, 10)...)
		if r.Status != c.status {
			t.Fatalf("Test %v, expected status %v; got %v", idx+1, c.status, r.Status)
		}
		if r.ExitCode() != c.exitCode {
			t.Fatalf("Test %v, expected exit code %v; got %v", idx+1, c.exitCode, r.ExitCode())
		}
		if r.RowsLoaded != c.loaded || r.RowsFailed != c.failed || r.RowsAttempted != c.loaded+c.failed {
			t.Fatalf("Test %v, unexpected counts: %+v", idx+1, r)
		}
		if len(r.Outcomes) != len(c.pattern) || len(r.FailedOutcomes()) != r.BatchesFailed {
			t.Fatalf("Test %v, outcomes were dropped", idx+1)
		}
	}
}

func TestReportRender(t *testing.T) {
	r := NewReport("nasa_apod")
	r.AddOutcomes(outcomes("yny", 100)...)
	r.Finish(nil)

	// Test 1, text shows each batch and the status line.
	buf := &bytes.Buffer{}
	if err := r.Render(buf, constants.OutputFormatText, false); err != nil {
		t.Fatal("Test 1, unexpected error: ", err)
	}
	out := buf.String()
	for _, want := range []string{"Batch 2 rows 101-200: FAILED: rejected", "Batch 3 rows 201-300: loaded", "PARTIAL: Loaded 200 of 300 rows", "Not loaded: rows 101-200"} {
		if !strings.Contains(out, want) {
			t.Fatalf("Test 1, expected %q in output:\n%v", want, out)
		}
	}
	if strings.Contains(out, constants.EmojiTick) {
		t.Fatal("Test 1, expected no emoji")
	}

	// Test 2, json round trip keeps the error text.
	buf.Reset()
	if err := r.Render(buf, constants.OutputFormatJson, false); err != nil {
		t.Fatal("Test 2, unexpected error: ", err)
	}
	got := Report{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal("Test 2, invalid json: ", err)
	}
	if got.Status != StatusPartial || got.Outcomes[1].Error != "rejected" || got.RunID != r.RunID {
		t.Fatalf("Test 2, unexpected report: %+v", got)
	}

	// Test 3, yaml.
	buf.Reset()
	if err := r.Render(buf, constants.OutputFormatYaml, true); err != nil {
		t.Fatal("Test 3, unexpected error: ", err)
	}
	m := map[string]interface{}{}
	if err := yaml.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatal("Test 3, invalid yaml: ", err)
	}
	if m["status"] != "partial" {
		t.Fatal("Test 3, unexpected yaml status: ", m["status"])
	}

	// Test 4, unknown format.
	if err := r.Render(buf, "xml", false); err == nil {
		t.Fatal("Test 4, expected error for unsupported format")
	}
}
