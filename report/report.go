package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/relloyd/stageload/constants"
	"github.com/relloyd/stageload/stats"
	"github.com/rs/xid"
	"gopkg.in/yaml.v2"
)

type Status string

const (
	StatusComplete Status = "complete" // every batch was accepted
	StatusPartial  Status = "partial"  // some batches were rejected
	StatusFailed   Status = "failed"   // every batch was rejected
	StatusEmpty    Status = "empty"    // there were no rows to load
)

// Outcome is the result of submitting one batch.
// FirstRow and LastRow are 1-based and inclusive.
type Outcome struct {
	Batch     int    `json:"batch" yaml:"batch"`
	FirstRow  int    `json:"firstRow" yaml:"firstRow"`
	LastRow   int    `json:"lastRow" yaml:"lastRow"`
	Rows      int    `json:"rows" yaml:"rows"`
	Succeeded bool   `json:"succeeded" yaml:"succeeded"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
	Err       error  `json:"-" yaml:"-"`
}

// Report summarises a load run.
type Report struct {
	RunID          string        `json:"runId" yaml:"runId"`
	Collection     string        `json:"collection" yaml:"collection"`
	StoreType      string        `json:"storeType" yaml:"storeType"`
	SourceFile     string        `json:"sourceFile" yaml:"sourceFile"`
	StartedAt      time.Time     `json:"startedAt" yaml:"startedAt"`
	FinishedAt     time.Time     `json:"finishedAt" yaml:"finishedAt"`
	Status         Status        `json:"status" yaml:"status"`
	RowsTotal      int           `json:"rowsTotal" yaml:"rowsTotal"`
	RowsAttempted  int           `json:"rowsAttempted" yaml:"rowsAttempted"`
	RowsLoaded     int           `json:"rowsLoaded" yaml:"rowsLoaded"`
	RowsFailed     int           `json:"rowsFailed" yaml:"rowsFailed"`
	BatchesTotal   int           `json:"batchesTotal" yaml:"batchesTotal"`
	BatchesFailed  int           `json:"batchesFailed" yaml:"batchesFailed"`
	FailedRowsFile string        `json:"failedRowsFile,omitempty" yaml:"failedRowsFile,omitempty"`
	Outcomes       []Outcome     `json:"outcomes" yaml:"outcomes"`
	Steps          []stats.Stats `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// NewReport starts a report for a run against collection with a fresh run id.
func NewReport(collection string) *Report {
	return &Report{
		RunID:      xid.New().String(),
		Collection: collection,
		StartedAt:  time.Now(),
		Status:     StatusEmpty,
		Outcomes:   make([]Outcome, 0),
	}
}

// AddOutcomes folds batch outcomes into the report totals and sets the status.
func (r *Report) AddOutcomes(outcomes ...Outcome) {
	for _, o := range outcomes {
		r.Outcomes = append(r.Outcomes, o)
		r.BatchesTotal++
		r.RowsAttempted += o.Rows
		if o.Succeeded {
			r.RowsLoaded += o.Rows
		} else {
			r.BatchesFailed++
			r.RowsFailed += o.Rows
		}
	}
	r.Status = r.deriveStatus()
}

func (r *Report) deriveStatus() Status {
	switch {
	case r.BatchesTotal == 0:
		return StatusEmpty
	case r.BatchesFailed == 0:
		return StatusComplete
	case r.BatchesFailed == r.BatchesTotal:
		return StatusFailed
	}
	return StatusPartial
}

// Finish stamps the end time and step stats.
func (r *Report) Finish(steps []stats.Stats) {
	r.FinishedAt = time.Now()
	r.Steps = steps
}

// ExitCode maps the report status to the process exit code.
func (r *Report) ExitCode() int {
	switch r.Status {
	case StatusPartial:
		return constants.ExitCodePartialLoad
	case StatusFailed:
		return constants.ExitCodeNothingLoad
	}
	return constants.ExitCodeSuccess
}

// FailedOutcomes returns the outcomes of rejected batches.
func (r *Report) FailedOutcomes() []Outcome {
	retval := make([]Outcome, 0, r.BatchesFailed)
	for _, o := range r.Outcomes {
		if !o.Succeeded {
			retval = append(retval, o)
		}
	}
	return retval
}

// StatusLine is the one-line summary printed at the end of a run.
func (r *Report) StatusLine() string {
	switch r.Status {
	case StatusEmpty:
		return fmt.Sprintf("No rows to load into %v", r.Collection)
	case StatusComplete:
		return fmt.Sprintf("Loaded %v rows into %v in %v batches", r.RowsLoaded, r.Collection, r.BatchesTotal)
	}
	return fmt.Sprintf("Loaded %v of %v rows into %v; %v of %v batches failed (%v rows)",
		r.RowsLoaded, r.RowsAttempted, r.Collection, r.BatchesFailed, r.BatchesTotal, r.RowsFailed)
}

// Render writes the report to w in format text, json or yaml.
// Emoji are only used by the text format when useEmoji is set.
func (r *Report) Render(w io.Writer, format string, useEmoji bool) error {
	switch strings.ToLower(format) {
	case constants.OutputFormatJson:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(r), "error rendering report as json")
	case constants.OutputFormatYaml:
		b, err := yaml.Marshal(r)
		if err != nil {
			return errors.Wrap(err, "error rendering report as yaml")
		}
		_, err = w.Write(b)
		return err
	case constants.OutputFormatText, "":
		return r.renderText(w, useEmoji)
	}
	return fmt.Errorf("unsupported output format %q", format)
}

func (r *Report) renderText(w io.Writer, useEmoji bool) error {
	icon := func(e string) string {
		if useEmoji {
			return e + " "
		}
		return ""
	}
	b := strings.Builder{}
	b.WriteString(fmt.Sprintf("Run %v: %v -> %v (%v)\n", r.RunID, r.SourceFile, r.Collection, r.StoreType))
	for _, o := range r.Outcomes {
		if o.Succeeded {
			b.WriteString(fmt.Sprintf("%vBatch %v rows %v-%v: loaded %v rows\n", icon(constants.EmojiTick), o.Batch, o.FirstRow, o.LastRow, o.Rows))
		} else {
			b.WriteString(fmt.Sprintf("%vBatch %v rows %v-%v: FAILED: %v\n", icon(constants.EmojiBang), o.Batch, o.FirstRow, o.LastRow, o.Error))
		}
	}
	for _, s := range r.Steps {
		b.WriteString(fmt.Sprintf("  %v: %v rows in %vms\n", s.StepName, s.TotalRowsProcessed, s.ElapsedTimeMillis))
	}
	if failed := r.FailedOutcomes(); len(failed) > 0 {
		ranges := make([]string, 0, len(failed))
		for _, o := range failed {
			ranges = append(ranges, fmt.Sprintf("%v-%v", o.FirstRow, o.LastRow))
		}
		b.WriteString(fmt.Sprintf("Not loaded: rows %v\n", strings.Join(ranges, ", ")))
	}
	if r.FailedRowsFile != "" {
		b.WriteString(fmt.Sprintf("Failed rows written to %v\n", r.FailedRowsFile))
	}
	var final string
	switch r.Status {
	case StatusComplete, StatusEmpty:
		final = icon(constants.EmojiTick)
	case StatusPartial:
		final = icon(constants.EmojiWarn)
	default:
		final = icon(constants.EmojiBang)
	}
	b.WriteString(fmt.Sprintf("%v%v: %v\n", final, strings.ToUpper(string(r.Status)), r.StatusLine()))
	_, err := io.WriteString(w, b.String())
	return err
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
