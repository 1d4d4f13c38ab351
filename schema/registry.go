package schema

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry holds the canonical schemas known to the loader, keyed by collection name.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

// NewRegistry returns a registry holding the supplied schemas.
func NewRegistry(schemas ...*Schema) (*Registry, error) {
	r := &Registry{schemas: make(map[string]*Schema)}
	for _, s := range schemas {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// NewBuiltinRegistry returns a registry holding the built-in destination schemas.
func NewBuiltinRegistry() *Registry {
	r, err := NewRegistry(IrisSchema(), NasaApodSchema())
	if err != nil {
		panic(fmt.Sprintf("invalid built-in schema: %v", err))
	}
	return r
}

// Register validates s and adds it, replacing any schema with the same collection name.
func (r *Registry) Register(s *Schema) error {
	if s == nil {
		return fmt.Errorf("nil schema")
	}
	if err := s.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[strings.ToLower(s.Collection)] = s
	return nil
}

// Get returns the schema for collection.
func (r *Registry) Get(collection string) (*Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[strings.ToLower(strings.TrimSpace(collection))]
	if !ok {
		return nil, fmt.Errorf("unknown collection %q; choose one of: %v", collection, strings.Join(r.namesLocked(), ", "))
	}
	return s, nil
}

// Names returns the registered collection names in alphabetical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	retval := make([]string, 0, len(r.schemas))
	for _, s := range r.schemas {
		retval = append(retval, s.Collection)
	}
	sort.Strings(retval)
	return retval
}

// IrisSchema is the destination for the transformed iris dataset.
func IrisSchema() *Schema {
	return &Schema{
		Collection:   "iris_data",
		SurrogateKey: "id",
		Fields: []Field{
			{Name: "sepal_length", Type: TypeFloat, Required: true},
			{Name: "sepal_width", Type: TypeFloat, Required: true},
			{Name: "petal_length", Type: TypeFloat, Required: true},
			{Name: "petal_width", Type: TypeFloat, Required: true},
			{Name: "species", Type: TypeText, Required: true},
			{Name: "sepal_ratio", Type: TypeFloat},
			{Name: "petal_ratio", Type: TypeFloat},
			{Name: "is_petal_long", Type: TypeBoolInt},
		},
		Aliases: NewAliasTable(
			"sepal length (cm)", "sepal_length",
			"sepal.length", "sepal_length",
			"sepallengthcm", "sepal_length",
			"sepal width (cm)", "sepal_width",
			"sepal.width", "sepal_width",
			"sepalwidthcm", "sepal_width",
			"petal length (cm)", "petal_length",
			"petal.length", "petal_length",
			"petallengthcm", "petal_length",
			"petal width (cm)", "petal_width",
			"petal.width", "petal_width",
			"petalwidthcm", "petal_width",
			"variety", "species",
			"class", "species",
			"target_name", "species",
		),
		DefaultFile: "iris_transformed.csv",
		BatchSize:   50,
	}
}

// NasaApodSchema is the destination for the flattened NASA Astronomy Picture of the Day.
func NasaApodSchema() *Schema {
	return &Schema{
		Collection: "nasa_apod",
		Fields: []Field{
			{Name: "date", Type: TypeDate, Required: true},
			{Name: "title", Type: TypeText, Required: true},
			{Name: "explanation", Type: TypeText, Required: true},
			{Name: "media_type", Type: TypeText, Required: true, Fillable: true},
			{Name: "image_url", Type: TypeText, Required: true, Fillable: true},
			{Name: "inserted_at", Type: TypeTimestamp, Required: true},
		},
		Aliases: NewAliasTable(
			"url", "image_url",
			"image", "image_url",
			"imageurl", "image_url",
			"img_url", "image_url",
			"hdurl", "image_url",
			"datetime", "inserted_at",
			"created_at", "inserted_at",
			"time", "inserted_at",
			"media", "media_type",
		),
		DefaultFile: "nasa_apod_staged.csv",
		BatchSize:   100,
	}
}
