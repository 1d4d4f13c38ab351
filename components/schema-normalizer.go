package components

import (
	"sort"
	"strings"

	"github.com/relloyd/stageload/logger"
	"github.com/relloyd/stageload/schema"
	"github.com/relloyd/stageload/stats"
	"github.com/relloyd/stageload/stream"
)

type SchemaNormalizerConfig struct {
	Log         logger.Logger
	Schema      *schema.Schema
	Header      []string // incoming column names in file order
	StepWatcher *stats.StepWatcher
}

// ColumnResolution is the mapping of incoming columns onto canonical fields.
type ColumnResolution struct {
	Mapping map[string]string // incoming column -> canonical field
	Dropped []string          // incoming columns that are not part of the output
	Filled  []string          // canonical fields with no incoming column, filled with nil
}

type columnClaim struct {
	incoming string
	exact    bool
}

// ResolveColumns maps header onto the canonical fields of s.
// Exact (case-insensitive) canonical names are matched before aliases. When two columns claim the same
// field an exact match beats an alias, otherwise the first column in header order wins.
// A *SchemaError is returned when any strict field has no column.
func ResolveColumns(log logger.Logger, s *schema.Schema, header []string) (*ColumnResolution, error) {
	canonical := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		canonical[strings.ToLower(f.Name)] = f.Name
	}
	res := &ColumnResolution{Mapping: make(map[string]string), Dropped: make([]string, 0), Filled: make([]string, 0)}
	claims := make(map[string]columnClaim)
	for _, col := range header { // for each incoming column...
		lc := strings.ToLower(strings.TrimSpace(col))
		target, exact := canonical[lc]
		if !exact {
			var ok bool
			if target, ok = s.Aliases.Resolve(lc); !ok { // if the column is unknown...
				log.Debug("dropping unmapped column ", col)
				res.Dropped = append(res.Dropped, col)
				continue
			}
		}
		prior, taken := claims[target]
		if taken {
			if exact && !prior.exact { // if the new column is the canonical spelling...
				log.Warn("column ", col, " replaces alias ", prior.incoming, " for field ", target)
				delete(res.Mapping, prior.incoming)
				res.Dropped = append(res.Dropped, prior.incoming)
			} else {
				log.Warn("column ", col, " also maps to field ", target, "; keeping ", prior.incoming)
				res.Dropped = append(res.Dropped, col)
				continue
			}
		}
		claims[target] = columnClaim{incoming: col, exact: exact}
		res.Mapping[col] = target
	}
	missingStrict := make([]string, 0)
	for _, f := range s.Fields { // for each canonical field...
		if _, ok := claims[f.Name]; ok {
			continue
		}
		if f.IsStrict() {
			missingStrict = append(missingStrict, f.Name)
		} else {
			res.Filled = append(res.Filled, f.Name)
		}
	}
	if len(missingStrict) > 0 {
		sort.Strings(missingStrict)
		return nil, &SchemaError{Collection: s.Collection, MissingFields: missingStrict}
	}
	if len(res.Filled) > 0 {
		log.Info("filling missing fields with null: ", strings.Join(res.Filled, ", "))
	}
	return res, nil
}

// NormalizeRows returns copies of rows keyed by the canonical field names of cfg.Schema.
// Every output record holds exactly the canonical fields; input records are not modified.
func NormalizeRows(cfg *SchemaNormalizerConfig, rows []stream.Record) ([]stream.Record, error) {
	if cfg.StepWatcher != nil {
		cfg.StepWatcher.StartWatching()
		defer cfg.StepWatcher.StopWatching()
	}
	header := cfg.Header
	if len(header) == 0 && len(rows) > 0 { // if there is no header then use the keys of the first row...
		header = rows[0].GetSortedDataMapKeys()
	}
	res, err := ResolveColumns(cfg.Log, cfg.Schema, header)
	if err != nil {
		return nil, err
	}
	// Invert the mapping so output is built in canonical order.
	source := make(map[string]string, len(res.Mapping))
	for in, out := range res.Mapping {
		source[out] = in
	}
	retval := make([]stream.Record, len(rows))
	for idx, rec := range rows {
		out := stream.NewRecord()
		for _, f := range cfg.Schema.Fields {
			col, ok := source[f.Name]
			if ok && rec.HasData(col) {
				out.SetData(f.Name, rec.GetData(col))
			} else {
				out.SetData(f.Name, nil)
			}
		}
		retval[idx] = out
		if cfg.StepWatcher != nil {
			cfg.StepWatcher.AddRows(1)
		}
	}
	cfg.Log.Debug("normalized ", len(retval), " rows to ", len(cfg.Schema.Fields), " canonical fields")
	return retval, nil
}
