package views

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Map feature properties added for the choropleth.
const (
	PropSelected  = "selected"
	PropLastAdded = "last_added"
	PropHasData   = "has_data"
	PropValue     = "value"
	PropKey       = "key"
)

// MapGeoJSON encodes the map view as a FeatureCollection: the original
// geometry and properties of every feature plus its selection state and
// current value.
func MapGeoJSON(data *Data, mv MapView) ([]byte, error) {
	if len(mv.Countries) != len(data.Features) {
		return nil, eris.Errorf("views: map view has %d countries for %d features",
			len(mv.Countries), len(data.Features))
	}

	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, len(data.Features))}
	for i := range data.Features {
		mc := mv.Countries[i]
		extra := map[string]any{
			PropSelected:  mc.Selected,
			PropLastAdded: mc.LastAdded,
			PropHasData:   mc.HasData,
			PropKey:       mc.Key,
		}
		if mc.Value != nil {
			extra[PropValue] = *mc.Value
		}
		fc.Features[i] = data.Features[i].GeoJSON(extra)
	}

	out, err := json.Marshal(fc)
	if err != nil {
		return nil, eris.Wrap(err, "views: marshal map geojson")
	}
	return out, nil
}
