// Package views derives the map, bar, line, scatter and legend view models
// from the joined dataset and a session's selection, field and year.
package views

import (
	"github.com/sells-group/lifemap/internal/dataset"
	"github.com/sells-group/lifemap/internal/join"
	"github.com/sells-group/lifemap/internal/model"
)

// Data is the joined, read-only dataset shared by every session.
type Data struct {
	Records  []model.IndicatorRecord
	Features []model.CountryFeature
	Fields   *model.FieldRegistry
	Index    *join.Index
}

// NewData indexes the dataset records and attaches them to a copy of the
// features. ds is not modified.
func NewData(ds *dataset.Dataset) *Data {
	idx := join.BuildIndex(ds.Records)
	features := make([]model.CountryFeature, len(ds.Features))
	copy(features, ds.Features)
	join.AttachToFeatures(features, idx)

	fields := ds.Fields
	if fields == nil {
		fields = model.DefaultFields()
	}
	return &Data{
		Records:  ds.Records,
		Features: features,
		Fields:   fields,
		Index:    idx,
	}
}

// Feature returns the feature carrying alias as one of its names.
func (d *Data) Feature(alias string) (*model.CountryFeature, bool) {
	for i := range d.Features {
		if d.Features[i].Aliases.Has(alias) {
			return &d.Features[i], true
		}
	}
	return nil, false
}

// Continents returns the distinct feature continents, sorted.
func (d *Data) Continents() []string {
	return (&dataset.Dataset{Features: d.Features}).Continents()
}
