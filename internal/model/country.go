package model

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// GeoJSON property keys read from each country feature.
const (
	PropName      = "name"
	PropNameLong  = "name_long"
	PropFormalEN  = "formal_en"
	PropContinent = "continent"
)

// CountryAliases are the alternate names one country carries across the
// two datasets. Lookups try them in the order Name, NameLong, FormalEN.
type CountryAliases struct {
	Name     string `json:"name"`
	NameLong string `json:"name_long,omitempty"`
	FormalEN string `json:"formal_en,omitempty"`
}

// All returns the non-empty aliases in lookup priority order.
func (a CountryAliases) All() []string {
	out := make([]string, 0, 3)
	for _, s := range []string{a.Name, a.NameLong, a.FormalEN} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Has reports whether s is one of the aliases.
func (a CountryAliases) Has(s string) bool {
	return s != "" && (s == a.Name || s == a.NameLong || s == a.FormalEN)
}

// CountryFeature is a country polygon with its aliases and, after the join,
// its indicator records. Records is nil when no alias matched.
type CountryFeature struct {
	Aliases    CountryAliases
	Continent  string
	Geometry   geom.T
	Properties map[string]any

	// Key is the dataset Country value the aliases resolved to, "" if none.
	Key     string
	Records []IndicatorRecord
}

// HasData reports whether the join attached any records.
func (f *CountryFeature) HasData() bool {
	return len(f.Records) > 0
}

// RecordForYear returns the attached record for year, if any.
func (f *CountryFeature) RecordForYear(year int) (IndicatorRecord, bool) {
	for _, r := range f.Records {
		if r.Year == year {
			return r, true
		}
	}
	return IndicatorRecord{}, false
}

// FeatureFromGeoJSON reads aliases and continent out of a GeoJSON feature.
func FeatureFromGeoJSON(gf *geojson.Feature) (CountryFeature, error) {
	if gf == nil {
		return CountryFeature{}, eris.New("model: nil feature")
	}
	cf := CountryFeature{
		Aliases: CountryAliases{
			Name:     stringProp(gf.Properties, PropName),
			NameLong: stringProp(gf.Properties, PropNameLong),
			FormalEN: stringProp(gf.Properties, PropFormalEN),
		},
		Continent:  stringProp(gf.Properties, PropContinent),
		Geometry:   gf.Geometry,
		Properties: gf.Properties,
	}
	if cf.Aliases.Name == "" {
		return CountryFeature{}, eris.Errorf("model: feature %q has no %s property", gf.ID, PropName)
	}
	return cf, nil
}

// GeoJSON converts the feature back into a go-geom GeoJSON feature. extra
// properties are layered over the original ones.
func (f *CountryFeature) GeoJSON(extra map[string]any) *geojson.Feature {
	props := make(map[string]any, len(f.Properties)+len(extra))
	for k, v := range f.Properties {
		props[k] = v
	}
	for k, v := range extra {
		props[k] = v
	}
	gf := &geojson.Feature{
		ID:         f.Aliases.Name,
		Geometry:   f.Geometry,
		Properties: props,
	}
	if f.Geometry != nil {
		gf.BBox = geom.NewBounds(f.Geometry.Layout()).Extend(f.Geometry)
	}
	return gf
}

func stringProp(props map[string]any, key string) string {
	if props == nil {
		return ""
	}
	s, _ := props[key].(string)
	return s
}
