package schema

import (
	"io/ioutil"
	"sort"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// fileSchema is the YAML shape of a schema declared in a file:
//
//	schemas:
//	  - collection: weather
//	    defaultFile: weather_staged.csv
//	    batchSize: 100
//	    fields:
//	      - {name: day, type: date, required: true}
//	      - {name: note, type: text}
//	    aliases:
//	      day_of: day
type fileSchema struct {
	Collection   string            `mapstructure:"collection"`
	SurrogateKey string            `mapstructure:"surrogateKey"`
	DefaultFile  string            `mapstructure:"defaultFile"`
	BatchSize    int               `mapstructure:"batchSize"`
	Fields       []fileField       `mapstructure:"fields"`
	Aliases      map[string]string `mapstructure:"aliases"`
}

type fileField struct {
	Name     string `mapstructure:"name"`
	Type     string `mapstructure:"type"`
	Required bool   `mapstructure:"required"`
	Fillable bool   `mapstructure:"fillable"`
}

// LoadFile reads schema declarations from the YAML file at path.
func LoadFile(path string) ([]*Schema, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read schema file %q", path)
	}
	schemas, err := Parse(b)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid schema file %q", path)
	}
	return schemas, nil
}

// Parse decodes schema declarations from YAML bytes.
func Parse(b []byte) ([]*Schema, error) {
	doc := make(map[string]interface{})
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	raw, ok := doc["schemas"]
	if !ok {
		return nil, errors.New("missing top level key \"schemas\"")
	}
	var decoded []fileSchema
	if err := mapstructure.Decode(raw, &decoded); err != nil {
		return nil, err
	}
	retval := make([]*Schema, 0, len(decoded))
	for _, d := range decoded {
		s := &Schema{
			Collection:   d.Collection,
			SurrogateKey: d.SurrogateKey,
			DefaultFile:  d.DefaultFile,
			BatchSize:    d.BatchSize,
			Aliases:      NewAliasTable(),
		}
		for _, f := range d.Fields {
			t, err := ParseSemanticType(f.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "collection %q field %q", d.Collection, f.Name)
			}
			s.Fields = append(s.Fields, Field{Name: f.Name, Type: t, Required: f.Required, Fillable: f.Fillable})
		}
		for _, k := range sortedKeys(d.Aliases) {
			s.Aliases.Add(k, d.Aliases[k])
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		retval = append(retval, s)
	}
	return retval, nil
}

func sortedKeys(m map[string]string) []string {
	retval := make([]string, 0, len(m))
	for k := range m {
		retval = append(retval, k)
	}
	sort.Strings(retval)
	return retval
}
