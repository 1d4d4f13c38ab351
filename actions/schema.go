package actions

import (
	"fmt"
	"io"

	"github.com/relloyd/stageload/constants"
	"github.com/relloyd/stageload/schema"
)

type SchemaConfig struct {
	Collection  string `errorTxt:"destination collection" mandatory:"yes"`
	SchemaFiles []string
	StoreType   string // SQL dialect for the DDL
	Out         io.Writer
}

// RunSchemaList prints the known destination collections.
func RunSchemaList(cfg *SchemaConfig) error {
	reg, err := BuildRegistry(cfg.SchemaFiles)
	if err != nil {
		return err
	}
	for _, name := range reg.Names() {
		s, _ := reg.Get(name)
		_, _ = fmt.Fprintf(cfg.Out, "%v\t%v fields\tdefault file %v\n", s.Collection, len(s.Fields), s.DefaultFile)
	}
	return nil
}

// RunSchemaShow prints the fields, aliases and CREATE TABLE statement for one collection.
func RunSchemaShow(cfg *SchemaConfig) error {
	reg, err := BuildRegistry(cfg.SchemaFiles)
	if err != nil {
		return err
	}
	s, err := reg.Get(cfg.Collection)
	if err != nil {
		return err
	}
	storeType := cfg.StoreType
	if storeType == "" {
		storeType = constants.ConnectionTypePostgres
	}
	ddl, err := schema.GetCreateTableDDL(s, storeType)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprint(cfg.Out, s.Describe())
	if s.Aliases.Len() > 0 {
		_, _ = fmt.Fprintln(cfg.Out, "Aliases:")
		for _, a := range s.Aliases.Keys() {
			c, _ := s.Aliases.Resolve(a)
			_, _ = fmt.Fprintf(cfg.Out, "  %v -> %v\n", a, c)
		}
	}
	_, _ = fmt.Fprintf(cfg.Out, "\n%v\n", ddl)
	return nil
}
