package actions

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/stageload/components"
	"github.com/relloyd/stageload/config"
	"github.com/relloyd/stageload/constants"
	"github.com/relloyd/stageload/file"
	"github.com/relloyd/stageload/helper"
	"github.com/relloyd/stageload/input"
	"github.com/relloyd/stageload/logger"
	"github.com/relloyd/stageload/report"
	"github.com/relloyd/stageload/schema"
	"github.com/relloyd/stageload/stats"
	"github.com/relloyd/stageload/store"
)

type LoadConfig struct {
	Collection      string `errorTxt:"destination collection" mandatory:"yes"`
	PipelineDir     string `errorTxt:"pipeline directory" mandatory:"yes"`
	StagedFile      string // override of the schema's default staged file
	SchemaFiles     []string
	Aliases         string // extra aliases of the form incoming:field,incoming:field
	ConnectionName  string
	ConnectionsFile *config.File // optional source of named connections
	BatchSize       int          // 0 to use the schema default
	PauseMillis     int
	DateLayouts     []string
	S3Region        string
	FailedRowsDir   string    // if set, rejected rows are saved here
	Diagnostics     io.Writer // receives DDL when the destination is missing
	OpenStore       StoreOpener
	Sleep           func(time.Duration)
}

// RunLoad moves the staged file for cfg.Collection into the store.
// Configuration, preflight, schema and coercion problems are returned as errors before any rows are written.
// Once loading starts every batch is attempted and the returned report holds each outcome.
func RunLoad(ctx context.Context, log logger.Logger, cfg *LoadConfig) (*report.Report, error) {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return nil, &config.ConfigError{Msg: "invalid load settings", Cause: err}
	}
	if cfg.PauseMillis < 0 {
		return nil, &config.ConfigError{Msg: "pause between batches must not be negative"}
	}
	reg, err := BuildRegistry(cfg.SchemaFiles)
	if err != nil {
		return nil, &config.ConfigError{Msg: "unable to load schemas", Cause: err}
	}
	s, err := reg.Get(cfg.Collection)
	if err != nil {
		return nil, &config.ConfigError{Msg: "unknown destination", Cause: err}
	}
	if cfg.Aliases != "" {
		if s, err = withExtraAliases(s, cfg.Aliases); err != nil {
			return nil, &config.ConfigError{Msg: "invalid aliases", Cause: err}
		}
	}
	batchSize := firstPositive(cfg.BatchSize, s.BatchSize, constants.BatchSizeDefault)
	if cfg.BatchSize < 0 {
		return nil, &config.ConfigError{Msg: "batch size must be at least 1"}
	}
	conn, err := config.ResolveConnection(log, cfg.ConnectionName, cfg.ConnectionsFile)
	if err != nil {
		return nil, err
	}
	if err = store.CheckBindVarLimit(conn.Type, batchSize, len(s.FieldNames())); err != nil {
		return nil, &config.ConfigError{Msg: "batch size is too large for the destination", Cause: err}
	}
	path := input.ResolvePath(cfg.PipelineDir, cfg.StagedFile, s.DefaultFile)

	rep := report.NewReport(s.Collection)
	rep.SourceFile = path
	rep.StoreType = conn.Type
	log = logger.WithFields(log, "runId", rep.RunID)
	log.Info("Loading ", path, " into ", s.Collection, " using connection ", conn.LogicalName, " (", conn.Type, ")")
	st := stats.NewPipelineStats(log)

	// Store.
	openStore := cfg.OpenStore
	if openStore == nil {
		openStore = store.OpenStore
	}
	db, err := openStore(ctx, log, conn)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %v store", conn.Type)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Warn("error closing store: ", cerr)
		}
	}()

	// Preflight.
	if err = components.PreflightCheck(ctx, &components.PreflightConfig{
		Log:         log,
		Store:       db,
		StoreType:   conn.Type,
		Schema:      s,
		Diagnostics: cfg.Diagnostics,
	}); err != nil {
		return nil, err
	}

	// Read.
	staged, err := input.ReadStagedFile(ctx, &input.StagedFileReaderConfig{
		Log:         log,
		Path:        path,
		S3Region:    cfg.S3Region,
		StepWatcher: st.AddStepWatcher("read"),
	})
	if err != nil {
		return nil, err
	}
	rep.RowsTotal = len(staged.Rows)

	// Normalize.
	rows, err := components.NormalizeRows(&components.SchemaNormalizerConfig{
		Log:         log,
		Schema:      s,
		Header:      staged.Header,
		StepWatcher: st.AddStepWatcher("normalize"),
	}, staged.Rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		log.Info("No rows to load")
		rep.Finish(st.GetStats())
		return rep, nil
	}

	// Coerce.
	if err = components.CoerceRows(&components.TypeCoercerConfig{
		Log:         log,
		Schema:      s,
		DateLayouts: cfg.DateLayouts,
		StepWatcher: st.AddStepWatcher("coerce"),
	}, rows); err != nil {
		return nil, err
	}

	// Batch and load.
	batches, err := components.SplitBatches(rows, batchSize)
	if err != nil {
		return nil, &config.ConfigError{Msg: "invalid batch size", Cause: err}
	}
	log.Info("Submitting ", len(rows), " rows in ", len(batches), " batches of up to ", batchSize)
	loaderCfg := &components.LoaderConfig{
		Log:         log,
		Store:       db,
		Collection:  s.Collection,
		Columns:     s.FieldNames(),
		Pause:       time.Duration(cfg.PauseMillis) * time.Millisecond,
		Sleep:       cfg.Sleep,
		StepWatcher: st.AddStepWatcher("load"),
	}
	var failedRows *file.CSVFileOutput
	if cfg.FailedRowsDir != "" {
		if failedRows, err = file.NewFailedRowsOutput(log, cfg.FailedRowsDir, s.Collection); err != nil {
			return nil, &config.ConfigError{Msg: "unable to set up failed rows output", Cause: err}
		}
		loaderCfg.FailedRows = failedRows
	}
	rep.AddOutcomes(components.LoadBatches(ctx, loaderCfg, batches)...)
	if failedRows != nil {
		if err = failedRows.Close(); err != nil {
			log.Warn("error closing failed rows file: ", err)
		}
		if len(failedRows.ListOfOutputFiles) > 0 {
			rep.FailedRowsFile = failedRows.ListOfOutputFiles[0]
			log.Warn("Saved ", failedRows.TotalRows(), " rejected rows to ", rep.FailedRowsFile)
		}
	}
	rep.Finish(st.GetStats())
	st.LogStats()
	log.Info(rep.StatusLine())
	return rep, nil
}

// BuildRegistry returns the built-in schemas plus any declared in files.
func BuildRegistry(files []string) (*schema.Registry, error) {
	reg := schema.NewBuiltinRegistry()
	for _, f := range files {
		schemas, err := schema.LoadFile(f)
		if err != nil {
			return nil, err
		}
		for _, s := range schemas {
			if err = reg.Register(s); err != nil {
				return nil, errors.Wrapf(err, "schema file %v", f)
			}
		}
	}
	return reg, nil
}

// withExtraAliases returns a copy of s whose alias table also holds the tokens in aliases.
// The extra aliases win over the schema's own.
func withExtraAliases(s *schema.Schema, aliases string) (*schema.Schema, error) {
	extra, err := schema.NewAliasTableFromOrderedMap(helper.TokensToOrderedMap(aliases))
	if err != nil {
		return nil, err
	}
	retval := *s
	retval.Aliases = s.Aliases.Merge(extra)
	if err = retval.Validate(); err != nil {
		return nil, err
	}
	return &retval, nil
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
