package components

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/relloyd/stageload/constants"
	"github.com/relloyd/stageload/logger"
	"github.com/relloyd/stageload/schema"
	"github.com/relloyd/stageload/stats"
	"github.com/relloyd/stageload/stream"
	"github.com/spf13/cast"
)

// Tokens that mean "no value" in staged files.
var missingMarkers = map[string]struct{}{
	"":     {},
	"nan":  {},
	"-nan": {},
	"na":   {},
	"n/a":  {},
	"null": {},
	"none": {},
	"<na>": {},
	"#n/a": {},
}

// Layouts tried before falling back to cast.ToTimeE.
var defaultDateLayouts = []string{
	constants.DateFormat,
	constants.TimestampFormat,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04",
	"2006-1-2",
	"2006/1/2",
	"1/2/2006",
	"02-Jan-2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"20060102",
	"January 2, 2006",
	"2 January 2006",
}

type TypeCoercerConfig struct {
	Log         logger.Logger
	Schema      *schema.Schema
	DateLayouts []string // optional extra layouts tried before the defaults
	StepWatcher *stats.StepWatcher
}

// IsMissing reports whether v is nil, NaN or one of the missing-value tokens.
func IsMissing(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		_, ok := missingMarkers[strings.ToLower(strings.TrimSpace(x))]
		return ok
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// CoerceRows converts every canonical field of rows to its wire form in place.
// Missing values become nil. Values are computed into a scratch copy first and only written back once
// every row succeeded, so on error rows are left untouched.
// A *CoercionError is returned for the first strict field with unparseable values.
// Missing values only fail strict date and timestamp fields.
func CoerceRows(cfg *TypeCoercerConfig, rows []stream.Record) error {
	if cfg.StepWatcher != nil {
		cfg.StepWatcher.StartWatching()
		defer cfg.StepWatcher.StopWatching()
	}
	layouts := append(append([]string{}, cfg.DateLayouts...), defaultDateLayouts...)
	scratch := make(map[string][]interface{}, len(cfg.Schema.Fields))
	var firstErr *CoercionError
	for _, f := range cfg.Schema.Fields { // for each canonical field...
		missingIsFatal := f.IsStrict() && (f.Type == schema.TypeDate || f.Type == schema.TypeTimestamp)
		values := make([]interface{}, len(rows))
		var badRows []int
		var badValues []interface{}
		for idx, rec := range rows {
			var raw interface{}
			if rec.HasData(f.Name) {
				raw = rec.GetData(f.Name)
			}
			v, ok := coerceValue(f.Type, raw, layouts)
			missing := IsMissing(raw)
			if !ok && !missing { // if the value was present but unusable...
				cfg.Log.Debug("field ", f.Name, " row ", idx+1, ": unable to convert ", fmt.Sprintf("%q", fmt.Sprint(raw)), " to ", f.Type)
			}
			if !ok && f.IsStrict() && (!missing || missingIsFatal) {
				badRows = append(badRows, idx+1)
				badValues = append(badValues, raw)
			}
			values[idx] = v
		}
		if len(badRows) > 0 {
			e := &CoercionError{Field: f.Name, Type: string(f.Type), Rows: badRows, Values: badValues}
			cfg.Log.Error(e)
			if firstErr == nil {
				firstErr = e
			}
			continue
		}
		scratch[f.Name] = values
	}
	if firstErr != nil {
		return firstErr
	}
	// Commit.
	for name, values := range scratch {
		for idx, rec := range rows {
			rec.SetData(name, values[idx])
		}
	}
	if cfg.StepWatcher != nil {
		cfg.StepWatcher.AddRows(len(rows))
	}
	return nil
}

// coerceValue returns the wire form of v for type t.
// ok is false when v is missing or cannot be converted, in which case the value is nil.
func coerceValue(t schema.SemanticType, v interface{}, layouts []string) (interface{}, bool) {
	if IsMissing(v) {
		return nil, false
	}
	switch t {
	case schema.TypeDate:
		tm, err := parseTime(v, layouts)
		if err != nil {
			return nil, false
		}
		return tm.Format(constants.DateFormat), true
	case schema.TypeTimestamp:
		tm, err := parseTime(v, layouts)
		if err != nil {
			return nil, false
		}
		return tm.Format(constants.TimestampFormat), true
	case schema.TypeBoolInt:
		return boolToInt(v)
	case schema.TypeFloat:
		f, err := cast.ToFloat64E(trimIfString(v))
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		return f, true
	case schema.TypeInteger:
		return toInteger(v)
	case schema.TypeText:
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, false
		}
		return s, true
	}
	return nil, false
}

func trimIfString(v interface{}) interface{} {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return v
}

func parseTime(v interface{}, layouts []string) (time.Time, error) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		for _, l := range layouts {
			if tm, err := time.Parse(l, s); err == nil {
				return tm, nil
			}
		}
		return cast.ToTimeE(s)
	}
	return cast.ToTimeE(v)
}

func boolToInt(v interface{}) (interface{}, bool) {
	switch x := v.(type) {
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "1":
			return 1, true
		case "false", "0":
			return 0, true
		}
		return nil, false
	case float64, float32:
		f := cast.ToFloat64(x)
		if f != 0 && f != 1 {
			return nil, false
		}
		return int(f), true
	}
	i, err := cast.ToInt64E(v)
	if err != nil {
		return nil, false
	}
	switch i {
	case 1:
		return 1, true
	case 0:
		return 0, true
	}
	return nil, false
}

func toInteger(v interface{}) (interface{}, bool) {
	v = trimIfString(v)
	switch v.(type) {
	case float64, float32: // cast truncates floats so check them below.
	default:
		if i, err := cast.ToInt64E(v); err == nil {
			return i, true
		}
	}
	// Accept integral floats such as "5.0" written by upstream tools.
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 { // if the value would overflow int64...
		return nil, false
	}
	return int64(f), true
}
