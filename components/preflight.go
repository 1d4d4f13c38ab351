package components

import (
	"context"
	"fmt"
	"io"

	"github.com/relloyd/stageload/logger"
	"github.com/relloyd/stageload/schema"
	"github.com/relloyd/stageload/store"
)

type PreflightConfig struct {
	Log         logger.Logger
	Store       store.Prober
	StoreType   string // SQL dialect used for the DDL hint
	Schema      *schema.Schema
	Diagnostics io.Writer // receives the expected schema definition on failure; may be nil
}

// PreflightCheck performs one zero-row read against the destination collection.
// On failure it writes the DDL needed to create the destination to cfg.Diagnostics and returns a
// *PreflightError. The check is not retried.
func PreflightCheck(ctx context.Context, cfg *PreflightConfig) error {
	collection := cfg.Schema.Collection
	cfg.Log.Info("Checking destination ", collection, " is reachable...")
	err := cfg.Store.Probe(ctx, collection)
	if err == nil {
		cfg.Log.Info("Destination ", collection, " is reachable")
		return nil
	}
	ddl, ddlErr := schema.GetCreateTableDDL(cfg.Schema, cfg.StoreType)
	if ddlErr != nil {
		cfg.Log.Warn("unable to generate DDL for ", collection, ": ", ddlErr)
	}
	pe := &PreflightError{Collection: collection, DDL: ddl, Cause: err}
	if cfg.Diagnostics != nil {
		_, _ = fmt.Fprintf(cfg.Diagnostics, "%v\n\n", pe.Error())
		if ddl != "" {
			_, _ = fmt.Fprintf(cfg.Diagnostics, "Create it with:\n\n%v\n\n", ddl)
		}
		_, _ = fmt.Fprint(cfg.Diagnostics, cfg.Schema.Describe())
	}
	return pe
}
