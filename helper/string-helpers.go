package helper

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	om "github.com/cevaris/ordered_map"
	"github.com/relloyd/stageload/constants"
	"github.com/relloyd/stageload/logger"
)

var reTrue = regexp.MustCompile("(?i)^(true|yes|y|1)$")

// TokensToOrderedMap converts a string of the form, 'k1:v1,k2:v2' into an ordered map and returns a pointer to it.
// 1) Split on comma to find each key:value pair.
// 2) Split on colon to separate the key from the value.
// Spaces around keys and values are trimmed.
func TokensToOrderedMap(s string) *om.OrderedMap {
	o := om.NewOrderedMap()
	tokens := strings.Split(s, ",")
	for idx := range tokens {
		x := strings.SplitN(tokens[idx], ":", 2)
		if len(x) == 2 { // if there is a key:value...
			k := strings.TrimSpace(x[0])
			if k != "" {
				o.Set(k, strings.TrimSpace(x[1]))
			}
		}
	}
	return o
}

// OrderedMapToTokens converts the supplied ordered map to a CSV of key:value,key:value,...
// All keys and values are expected to be of type string.
func OrderedMapToTokens(m *om.OrderedMap) (string, error) {
	b := strings.Builder{}
	iter := m.IterFunc()
	if iter == nil {
		return "", fmt.Errorf("failed to get iterFunc in OrderedMapToTokens()")
	}
	for kv, ok := iter(); ok; kv, ok = iter() {
		b.WriteString(fmt.Sprintf(",%v:%v", kv.Key, kv.Value))
	}
	return strings.TrimLeft(b.String(), ","), nil
}

// CsvToStringSliceTrimSpaces converts a string of the form, 'f1,f2,f3...' into a slice of string values.
// 1) Split on comma.
// 2) Remove leading and trailing spaces.
// Empty tokens are dropped.
func CsvToStringSliceTrimSpaces(s string) []string {
	tokens := strings.Split(s, ",")
	retval := make([]string, 0, len(tokens))
	for x := range tokens {
		if t := strings.TrimSpace(tokens[x]); t != "" {
			retval = append(retval, t)
		}
	}
	return retval
}

// GetStringFromInterface will convert interface{} value to a string.
// Optionally return Times in UTC.
func GetStringFromInterface(log logger.Logger, input interface{}, useUTC bool) (retval string) {
	switch v := input.(type) {
	case int, int16, int32, int64, int8, uint8:
		retval = fmt.Sprintf("%d", v)
	case string:
		retval = v
	case float32:
		retval = strconv.FormatFloat(float64(v), 'f', -1, 32) // use 'f' to convert float to string without an exponent i.e. preserve all decimal points.
	case float64:
		if math.IsNaN(v) {
			retval = ""
		} else {
			retval = strconv.FormatFloat(v, 'f', -1, 64)
		}
	case time.Time:
		if useUTC { // if caller requests UTC conversion...
			retval = v.UTC().Format(constants.TimeFormatYearSecondsTZ)
		} else { // else output Local time...
			retval = v.Format(constants.TimeFormatYearSecondsTZ)
		}
	case []uint8:
		retval = string(v)
	case bool:
		retval = fmt.Sprintf("%v", v)
	case nil:
		retval = ""
	default:
		log.Panic("unhandled type while fetching string from interface: type = ", reflect.TypeOf(input), "; value = ", input)
	}
	return
}

// GetTrueFalseStringAsBool trims spaces from s and checks if it can regexp (case insensitive) match "true"
// (or yes, y, 1). It returns true if there's a match else false.
func GetTrueFalseStringAsBool(s string) bool {
	return reTrue.MatchString(strings.TrimSpace(s))
}

// StringsToCsv2 returns a single CSV line built from s, quoting values as required.
func StringsToCsv2(log logger.Logger, s []string) string {
	b := &bytes.Buffer{}
	w := csv.NewWriter(b)
	err := w.Write(s)
	if err != nil {
		log.Panic("Error creating CSV from string slice")
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}
