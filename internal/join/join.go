// Package join groups indicator records by country and attaches them to
// the country features that render them.
package join

import (
	"go.uber.org/zap"

	"github.com/sells-group/lifemap/internal/model"
)

// Index maps a dataset Country value to its records in input order.
type Index struct {
	groups map[string][]model.IndicatorRecord
	order  []string
}

// BuildIndex groups records by Country. Records keep their input order
// within each group; nothing is sorted.
func BuildIndex(records []model.IndicatorRecord) *Index {
	idx := &Index{groups: make(map[string][]model.IndicatorRecord)}
	for _, r := range records {
		if _, ok := idx.groups[r.Country]; !ok {
			idx.order = append(idx.order, r.Country)
		}
		idx.groups[r.Country] = append(idx.groups[r.Country], r)
	}
	return idx
}

// Records returns the group for country, or nil.
func (idx *Index) Records(country string) []model.IndicatorRecord {
	if idx == nil {
		return nil
	}
	return idx.groups[country]
}

// Countries lists the index keys in first-seen order.
func (idx *Index) Countries() []string {
	if idx == nil {
		return nil
	}
	out := make([]string, len(idx.order))
	copy(out, idx.order)
	return out
}

// Len returns the number of distinct countries.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.order)
}

// ResolveCountryKey returns the first alias, in the order name, name_long,
// formal_en, that has a non-empty record group. It returns "" when none do.
func (idx *Index) ResolveCountryKey(aliases model.CountryAliases) string {
	for _, a := range aliases.All() {
		if len(idx.Records(a)) > 0 {
			return a
		}
	}
	return ""
}

// AttachToFeatures sets Key and Records on every feature in place. A
// feature whose aliases match nothing is left with no records.
func AttachToFeatures(features []model.CountryFeature, idx *Index) {
	matched := 0
	for i := range features {
		f := &features[i]
		f.Key = idx.ResolveCountryKey(f.Aliases)
		if f.Key == "" {
			f.Records = nil
			continue
		}
		f.Records = idx.Records(f.Key)
		matched++
	}
	zap.L().Debug("join: attached records",
		zap.Int("features", len(features)),
		zap.Int("matched", matched),
		zap.Int("countries", idx.Len()),
	)
}
