package schema

import (
	"fmt"
	"strings"
)

// SemanticType is the expected type of a canonical field, independent of any store dialect.
type SemanticType string

const (
	TypeDate      SemanticType = "date"
	TypeTimestamp SemanticType = "timestamp"
	TypeText      SemanticType = "text"
	TypeFloat     SemanticType = "float"
	TypeInteger   SemanticType = "integer"
	TypeBoolInt   SemanticType = "boolint" // boolean-like values stored as 1/0
)

var semanticTypes = map[SemanticType]struct{}{
	TypeDate:      {},
	TypeTimestamp: {},
	TypeText:      {},
	TypeFloat:     {},
	TypeInteger:   {},
	TypeBoolInt:   {},
}

// ParseSemanticType returns the SemanticType for s (case-insensitive).
func ParseSemanticType(s string) (SemanticType, error) {
	t := SemanticType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := semanticTypes[t]; !ok {
		return "", fmt.Errorf("unsupported field type %q", s)
	}
	return t, nil
}

// Field is one canonical field of a destination collection.
// A Required field that is not Fillable must be present in the staged file and must hold a usable value.
// Required + Fillable fields may be absent, in which case they are filled with null.
type Field struct {
	Name     string       `mapstructure:"name" yaml:"name" json:"name"`
	Type     SemanticType `mapstructure:"type" yaml:"type" json:"type"`
	Required bool         `mapstructure:"required" yaml:"required" json:"required"`
	Fillable bool         `mapstructure:"fillable" yaml:"fillable" json:"fillable"`
}

// IsStrict returns true when the field can neither be absent nor hold null.
func (f Field) IsStrict() bool {
	return f.Required && !f.Fillable
}

func (f Field) String() string {
	var policy string
	switch {
	case f.IsStrict():
		policy = "required"
	case f.Required:
		policy = "required, fillable with null"
	default:
		policy = "optional"
	}
	return fmt.Sprintf("%v %v (%v)", f.Name, f.Type, policy)
}

// Schema is the canonical shape of a destination collection.
type Schema struct {
	Collection   string      // destination table/collection name
	SurrogateKey string      // optional store-generated key column, only used in DDL
	Fields       []Field     // canonical fields in order
	Aliases      *AliasTable // incoming spelling -> canonical name
	DefaultFile  string      // staged file name under the staged directory
	BatchSize    int         // default batch size for this destination (0 to use the global default)
}

// FieldNames returns the canonical field names in order.
func (s *Schema) FieldNames() []string {
	retval := make([]string, len(s.Fields))
	for idx, f := range s.Fields {
		retval[idx] = f.Name
	}
	return retval
}

// GetField returns the field with the given canonical name.
func (s *Schema) GetField(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Validate checks the schema is usable: it needs a collection, at least one field, unique lower-case
// field names, and aliases that point at real fields.
func (s *Schema) Validate() error {
	if strings.TrimSpace(s.Collection) == "" {
		return fmt.Errorf("schema is missing a collection name")
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("schema %q has no fields", s.Collection)
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("schema %q has a field with no name", s.Collection)
		}
		if f.Name != strings.ToLower(f.Name) {
			return fmt.Errorf("schema %q field %q must be lower case", s.Collection, f.Name)
		}
		if _, ok := semanticTypes[f.Type]; !ok {
			return fmt.Errorf("schema %q field %q has unsupported type %q", s.Collection, f.Name, f.Type)
		}
		if _, ok := seen[f.Name]; ok {
			return fmt.Errorf("schema %q has duplicate field %q", s.Collection, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	if s.Aliases != nil {
		for _, a := range s.Aliases.Keys() {
			canonical, _ := s.Aliases.Resolve(a)
			if _, ok := s.GetField(canonical); !ok {
				return fmt.Errorf("schema %q alias %q points at unknown field %q", s.Collection, a, canonical)
			}
		}
	}
	if s.BatchSize < 0 {
		return fmt.Errorf("schema %q has a negative batch size", s.Collection)
	}
	return nil
}

// Describe renders the field listing used in diagnostics.
func (s *Schema) Describe() string {
	b := strings.Builder{}
	b.WriteString(fmt.Sprintf("Collection %q expects fields:\n", s.Collection))
	for _, f := range s.Fields {
		b.WriteString(fmt.Sprintf("  - %v\n", f))
	}
	return b.String()
}
