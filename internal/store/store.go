// Package store persists a loaded dataset snapshot so the server can start
// without fetching the source documents again.
package store

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/lifemap/internal/dataset"
	"github.com/sells-group/lifemap/internal/model"
)

// ErrNoSnapshot is returned by LoadDataset when nothing has been saved.
var ErrNoSnapshot = eris.New("no dataset snapshot")

// Store defines the persistence interface for dataset snapshots.
type Store interface {
	// SaveDataset replaces the stored snapshot in one transaction.
	SaveDataset(ctx context.Context, ds *dataset.Dataset) error
	// LoadDataset reads the snapshot back in its saved order.
	LoadDataset(ctx context.Context) (*dataset.Dataset, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

var (
	recordColumns  = []string{"seq", "country", "year", "values_json"}
	featureColumns = []string{"seq", "name", "name_long", "formal_en", "continent", "feature_json"}
	fieldColumns   = []string{"seq", "key", "label"}
)

func encodeValues(r model.IndicatorRecord) ([]byte, error) {
	values := r.Values
	if values == nil {
		values = map[string]*float64{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, eris.Wrapf(err, "store: marshal values for %s %d", r.Country, r.Year)
	}
	return data, nil
}

func decodeRecord(country string, year int, valuesJSON []byte) (model.IndicatorRecord, error) {
	r := model.IndicatorRecord{Country: country, Year: year}
	if err := json.Unmarshal(valuesJSON, &r.Values); err != nil {
		return r, eris.Wrapf(err, "store: unmarshal values for %s %d", country, year)
	}
	return r, nil
}

func encodeFeature(f *model.CountryFeature) ([]byte, error) {
	data, err := json.Marshal(f.GeoJSON(nil))
	if err != nil {
		return nil, eris.Wrapf(err, "store: marshal feature %s", f.Aliases.Name)
	}
	return data, nil
}

func decodeFeature(featureJSON []byte) (model.CountryFeature, error) {
	var gf geojson.Feature
	if err := json.Unmarshal(featureJSON, &gf); err != nil {
		return model.CountryFeature{}, eris.Wrap(err, "store: unmarshal feature")
	}
	return model.FeatureFromGeoJSON(&gf)
}

func finishLoad(ds *dataset.Dataset, fields []model.Field) (*dataset.Dataset, error) {
	if len(ds.Records) == 0 && len(ds.Features) == 0 {
		return nil, ErrNoSnapshot
	}
	if len(fields) == 0 {
		ds.Fields = model.DefaultFields()
	} else {
		ds.Fields = model.NewFieldRegistry(fields)
	}
	return ds, nil
}

func datasetFields(ds *dataset.Dataset) []model.Field {
	if ds.Fields == nil {
		return nil
	}
	return ds.Fields.Fields
}
