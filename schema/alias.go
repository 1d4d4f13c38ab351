package schema

import (
	"fmt"
	"strings"

	om "github.com/cevaris/ordered_map"
)

// AliasTable maps lower-cased incoming column names to canonical field names.
// Many aliases may resolve to the same canonical field.
type AliasTable struct {
	m *om.OrderedMap
}

// NewAliasTable builds a table from alias, canonical pairs.
func NewAliasTable(pairs ...string) *AliasTable {
	if len(pairs)%2 != 0 {
		panic("NewAliasTable requires alias, canonical pairs")
	}
	a := &AliasTable{m: om.NewOrderedMap()}
	for idx := 0; idx < len(pairs); idx += 2 {
		a.Add(pairs[idx], pairs[idx+1])
	}
	return a
}

// NewAliasTableFromOrderedMap copies the string keys and values of m into a new table.
func NewAliasTableFromOrderedMap(m *om.OrderedMap) (*AliasTable, error) {
	a := NewAliasTable()
	iter := m.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		k, okK := kv.Key.(string)
		v, okV := kv.Value.(string)
		if !okK || !okV {
			return nil, fmt.Errorf("alias %v:%v must be a string pair", kv.Key, kv.Value)
		}
		a.Add(k, v)
	}
	return a, nil
}

// Add registers alias for canonical. The alias is lower-cased; a later Add for the same alias wins.
func (a *AliasTable) Add(alias string, canonical string) {
	a.m.Set(strings.ToLower(strings.TrimSpace(alias)), strings.TrimSpace(canonical))
}

// Resolve returns the canonical name for the incoming column name, matched case-insensitively.
func (a *AliasTable) Resolve(incoming string) (string, bool) {
	if a == nil {
		return "", false
	}
	v, ok := a.m.Get(strings.ToLower(strings.TrimSpace(incoming)))
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Keys returns the aliases in insertion order.
func (a *AliasTable) Keys() []string {
	if a == nil {
		return nil
	}
	retval := make([]string, 0, a.m.Len())
	iter := a.m.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		retval = append(retval, kv.Key.(string))
	}
	return retval
}

func (a *AliasTable) Len() int {
	if a == nil {
		return 0
	}
	return a.m.Len()
}

// Merge returns a new table holding the entries of a followed by those of other; other wins on conflict.
func (a *AliasTable) Merge(other *AliasTable) *AliasTable {
	retval := NewAliasTable()
	for _, t := range []*AliasTable{a, other} {
		for _, k := range t.Keys() {
			v, _ := t.Resolve(k)
			retval.Add(k, v)
		}
	}
	return retval
}
