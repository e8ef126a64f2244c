package dataset

import (
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/lifemap/internal/fetcher"
	"github.com/sells-group/lifemap/internal/model"
)

// DecodeRecordsJSON reads a JSON array of indicator records in input order.
func DecodeRecordsJSON(ctx context.Context, r io.Reader) ([]model.IndicatorRecord, error) {
	records, err := fetcher.CollectJSONArray[model.IndicatorRecord](ctx, r)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: decode records json")
	}
	return records, nil
}

// DecodeRecordsCSV reads indicator records from CSV. The header must name
// Country and Year columns; every other column is an indicator whose empty
// cells are null. Cells that are not numbers (e.g. "Developing") are skipped.
func DecodeRecordsCSV(ctx context.Context, r io.Reader) ([]model.IndicatorRecord, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s, err := fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{TrimSpace: true, LazyQuotes: true})
	if err != nil {
		return nil, eris.Wrap(err, "dataset: decode records csv")
	}

	countryCol, yearCol := -1, -1
	for i, h := range s.Header {
		switch h {
		case "Country":
			countryCol = i
		case "Year":
			yearCol = i
		}
	}
	if countryCol < 0 || yearCol < 0 {
		return nil, eris.New("dataset: csv header must contain Country and Year")
	}

	var records []model.IndicatorRecord
	for row := range s.Rows {
		rec, err := csvRecord(s.Header, row.Fields, countryCol, yearCol)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: csv line %d", row.Line)
		}
		records = append(records, rec)
	}
	for err := range s.Errs {
		if err != nil {
			return nil, eris.Wrap(err, "dataset: decode records csv")
		}
	}
	return records, nil
}

func csvRecord(header, row []string, countryCol, yearCol int) (model.IndicatorRecord, error) {
	if countryCol >= len(row) || yearCol >= len(row) {
		return model.IndicatorRecord{}, eris.Errorf("short row with %d columns", len(row))
	}
	year, err := model.ParseYear(row[yearCol])
	if err != nil {
		return model.IndicatorRecord{}, err
	}
	rec := model.IndicatorRecord{
		Country: row[countryCol],
		Year:    year,
		Values:  make(map[string]*float64, len(header)),
	}
	for i, key := range header {
		if i == countryCol || i == yearCol || key == "" {
			continue
		}
		if i >= len(row) || row[i] == "" {
			rec.Values[key] = nil
			continue
		}
		v, err := strconv.ParseFloat(row[i], 64)
		if err != nil {
			continue
		}
		rec.Values[key] = &v
	}
	return rec, nil
}

type featureCollection struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
}

// DecodeCountries reads a GeoJSON FeatureCollection of country features.
// Features without a name property are skipped with a warning.
func DecodeCountries(r io.Reader) ([]model.CountryFeature, error) {
	fc, err := fetcher.DecodeJSONObject[featureCollection](r)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: decode countries")
	}
	if fc.Type != "FeatureCollection" {
		return nil, eris.Errorf("dataset: expected FeatureCollection, got %q", fc.Type)
	}

	features := make([]model.CountryFeature, 0, len(fc.Features))
	for i, raw := range fc.Features {
		var gf geojson.Feature
		if err := json.Unmarshal(raw, &gf); err != nil {
			return nil, eris.Wrapf(err, "dataset: decode feature %d", i)
		}
		cf, err := model.FeatureFromGeoJSON(&gf)
		if err != nil {
			zap.L().Warn("dataset: skipping feature", zap.Int("index", i), zap.Error(err))
			continue
		}
		features = append(features, cf)
	}
	return features, nil
}

// IsCSV reports whether a records location should be parsed as CSV.
func IsCSV(location string) bool {
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		location = location[:i]
	}
	return strings.HasSuffix(strings.ToLower(location), ".csv")
}
