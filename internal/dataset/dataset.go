// Package dataset loads the indicator records and the country GeoJSON that
// every view is derived from.
package dataset

import (
	"fmt"
	"sort"

	"github.com/sells-group/lifemap/internal/model"
)

// Resource names used in LoadError.
const (
	ResourceRecords   = "records"
	ResourceCountries = "countries"
)

// Dataset is the immutable result of a successful load.
type Dataset struct {
	Records  []model.IndicatorRecord
	Features []model.CountryFeature
	Fields   *model.FieldRegistry
}

// Continents returns the distinct feature continents, sorted.
func (d *Dataset) Continents() []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range d.Features {
		if f.Continent == "" || seen[f.Continent] {
			continue
		}
		seen[f.Continent] = true
		out = append(out, f.Continent)
	}
	sort.Strings(out)
	return out
}

// Years returns the distinct record years, ascending.
func (d *Dataset) Years() []int {
	seen := make(map[int]bool)
	var out []int
	for _, r := range d.Records {
		if !seen[r.Year] {
			seen[r.Year] = true
			out = append(out, r.Year)
		}
	}
	sort.Ints(out)
	return out
}

// LoadError reports which resource failed to load. It is the explicit
// load-error state surfaced to users instead of leaving the dashboard inert.
type LoadError struct {
	Resource string
	Location string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("dataset: load %s from %s: %v", e.Resource, e.Location, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
