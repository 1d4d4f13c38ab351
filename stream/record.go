package stream

import (
	"fmt"
	"sort"

	h "github.com/relloyd/stageload/helper"
	"github.com/relloyd/stageload/logger"
)

// Record is a single row moving through the load pipeline.
// Values are raw strings when read from a staged file, nil for missing cells, and typed values once coerced.
type Record struct {
	data map[string]interface{} // raw data values, which can represent null database values as nil interfaces.
}

// NewRecord creates a new Record and returns it by value; the map inside is shared by copies.
func NewRecord() Record {
	return Record{
		data: make(map[string]interface{}),
	}
}

// NewRecordFromMap wraps m without copying it.
func NewRecordFromMap(m map[string]interface{}) Record {
	if m == nil {
		m = make(map[string]interface{})
	}
	return Record{data: m}
}

func (sr Record) SetData(name string, value interface{}) {
	sr.data[name] = value
}

// GetData panics if name is not a field of the record.
func (sr Record) GetData(name string) interface{} {
	val, ok := sr.data[name]
	if !ok {
		panic(fmt.Sprintf("Invalid key name %q supplied while trying to fetch value from record: %v", name, sr.data))
	}
	return val
}

// HasData returns true if name is a field of the record, even when its value is nil.
func (sr Record) HasData(name string) bool {
	_, ok := sr.data[name]
	return ok
}

func (sr Record) GetDataMap() map[string]interface{} {
	return sr.data
}

func (sr Record) GetDataLen() int {
	return len(sr.data)
}

// GetDataAsStringPreserveTimeZone will convert interface{} value to a string.
// Times will be in local time.
func (sr Record) GetDataAsStringPreserveTimeZone(log logger.Logger, name string) (retval string) {
	v, ok := sr.data[name]
	if !ok {
		panic(fmt.Sprintf("unexpected field %q does not exist in the record", name))
	}
	return h.GetStringFromInterface(log, v, false)
}

// GetDataKeysAsSlice builds a slice of strings containing the values found in sr.data for each of the supplied
// keys in slice keys.
func (sr Record) GetDataKeysAsSlice(log logger.Logger, keys []string) []string {
	retval := make([]string, 0, len(keys))
	for _, k := range keys {
		retval = append(retval, sr.GetDataAsStringPreserveTimeZone(log, k))
	}
	return retval
}

// GetSortedDataMapKeys will return a slice of the keys found in map sr.data.
func (sr Record) GetSortedDataMapKeys() []string {
	retval := make([]string, 0, len(sr.data))
	for k := range sr.data {
		retval = append(retval, k)
	}
	sort.Strings(retval)
	return retval
}

// RecordsToMaps returns the underlying maps of recs, in order, ready for a store to encode.
func RecordsToMaps(recs []Record) []map[string]interface{} {
	retval := make([]map[string]interface{}, len(recs))
	for idx, r := range recs {
		retval[idx] = r.data
	}
	return retval
}
