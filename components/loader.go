package components

import (
	"context"
	"time"

	"github.com/relloyd/stageload/logger"
	"github.com/relloyd/stageload/report"
	"github.com/relloyd/stageload/stats"
	"github.com/relloyd/stageload/store"
	"github.com/relloyd/stageload/stream"
)

// FailedRowsWriter receives the rows of each batch the store rejected.
type FailedRowsWriter interface {
	WriteRows(columns []string, rows []stream.Record) error
}

type LoaderConfig struct {
	Log         logger.Logger
	Store       store.Inserter
	Collection  string
	Columns     []string            // canonical field names in order
	Pause       time.Duration       // fixed pause between batch submissions
	Sleep       func(time.Duration) // defaults to time.Sleep
	FailedRows  FailedRowsWriter    // optional
	StepWatcher *stats.StepWatcher
}

// LoadBatches submits each batch to the store exactly once, in order, and returns one outcome per batch.
// A rejected batch is recorded as a *BatchSubmitError and does not stop later batches.
// cfg.Pause is applied between submissions but not after the last.
func LoadBatches(ctx context.Context, cfg *LoaderConfig, batches []Batch) []report.Outcome {
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	if cfg.StepWatcher != nil {
		cfg.StepWatcher.StartWatching()
		defer cfg.StepWatcher.StopWatching()
	}
	outcomes := make([]report.Outcome, 0, len(batches))
	for idx, b := range batches { // for each batch...
		o := report.Outcome{Batch: b.Index, FirstRow: b.FirstRow(), LastRow: b.LastRow(), Rows: len(b.Rows)}
		err := cfg.Store.Insert(ctx, cfg.Collection, cfg.Columns, stream.RecordsToMaps(b.Rows))
		if err != nil {
			bse := &BatchSubmitError{Batch: b.Index, FirstRow: o.FirstRow, LastRow: o.LastRow, Cause: err}
			o.Err = bse
			o.Error = err.Error()
			cfg.Log.Error(bse)
			if cfg.FailedRows != nil {
				if werr := cfg.FailedRows.WriteRows(cfg.Columns, b.Rows); werr != nil {
					cfg.Log.Warn("unable to save failed rows of batch ", b.Index, ": ", werr)
				}
			}
		} else {
			o.Succeeded = true
			cfg.Log.Info("Inserted rows ", o.FirstRow, "-", o.LastRow, " into ", cfg.Collection)
			if cfg.StepWatcher != nil {
				cfg.StepWatcher.AddRows(o.Rows)
			}
		}
		outcomes = append(outcomes, o)
		if idx < len(batches)-1 && cfg.Pause > 0 { // if there is another batch to send...
			sleep(cfg.Pause)
		}
	}
	return outcomes
}
