package model

import (
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// LifeExpectancyField is the indicator plotted on the scatter x-axis.
const LifeExpectancyField = "Life expectancy"

// ErrUnknownField is returned when a field key is not in the registry.
var ErrUnknownField = eris.New("unknown indicator field")

// Field is a selectable indicator: the record key and its human label.
type Field struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

// FieldRegistry is an ordered, indexed collection of indicator fields.
type FieldRegistry struct {
	Fields []Field
	byKey  map[string]*Field
}

// NewFieldRegistry creates a FieldRegistry with indexed lookups.
// Later duplicates of a key are dropped; empty labels default to a
// title-cased key.
func NewFieldRegistry(fields []Field) *FieldRegistry {
	r := &FieldRegistry{
		Fields: make([]Field, 0, len(fields)),
		byKey:  make(map[string]*Field, len(fields)),
	}
	for _, f := range fields {
		r.add(f)
	}
	return r
}

func (r *FieldRegistry) add(f Field) {
	f.Key = strings.TrimSpace(f.Key)
	if f.Key == "" {
		return
	}
	if _, ok := r.byKey[f.Key]; ok {
		return
	}
	if f.Label == "" {
		f.Label = DefaultLabel(f.Key)
	}
	r.Fields = append(r.Fields, f)
	// Re-index: append may have moved the backing array.
	for i := range r.Fields {
		r.byKey[r.Fields[i].Key] = &r.Fields[i]
	}
}

// DefaultFields returns the registry used when no catalog file is configured.
func DefaultFields() *FieldRegistry {
	return NewFieldRegistry([]Field{
		{Key: LifeExpectancyField, Label: "Life Expectancy"},
	})
}

// ByKey returns the field for the given key, or nil if not found.
func (r *FieldRegistry) ByKey(key string) *Field {
	return r.byKey[key]
}

// Lookup is ByKey with an error for unknown keys.
func (r *FieldRegistry) Lookup(key string) (Field, error) {
	f := r.byKey[key]
	if f == nil {
		return Field{}, eris.Wrapf(ErrUnknownField, "field %q", key)
	}
	return *f, nil
}

// Len returns the number of registered fields.
func (r *FieldRegistry) Len() int {
	return len(r.Fields)
}

// Discover registers every numeric key found in records that is not yet
// known. New keys are appended in sorted order.
func (r *FieldRegistry) Discover(records []IndicatorRecord) int {
	seen := make(map[string]bool)
	for _, rec := range records {
		for k := range rec.Values {
			if r.byKey[k] == nil {
				seen[k] = true
			}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r.add(Field{Key: k})
	}
	return len(keys)
}

// DefaultLabel title-cases a field key, keeping acronyms intact.
func DefaultLabel(key string) string {
	return cases.Title(language.English, cases.NoLower).String(key)
}

// LoadFieldsFile reads a YAML list of fields:
//
//	- key: Life expectancy
//	  label: Life Expectancy
func LoadFieldsFile(path string) (*FieldRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "model: read fields file")
	}

	var fields []Field
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return nil, eris.Wrap(err, "model: unmarshal fields file")
	}
	if len(fields) == 0 {
		return nil, eris.Errorf("model: fields file %s is empty", path)
	}

	return NewFieldRegistry(fields), nil
}
