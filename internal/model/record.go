// Package model defines the indicator records, country features and field
// catalog shared by the loader, join index, selection model and views.
package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrInvalidYear is returned when a year value cannot be normalized to an integer.
var ErrInvalidYear = eris.New("invalid year")

// IndicatorRecord is one (country, year) row of the indicator dataset.
// A nil entry in Values means the indicator was not measured.
type IndicatorRecord struct {
	Country string
	Year    int
	Values  map[string]*float64
}

// Value returns the value of field and whether it was measured.
func (r IndicatorRecord) Value(field string) (float64, bool) {
	v := r.Values[field]
	if v == nil {
		return 0, false
	}
	return *v, true
}

// Has reports whether field has a measured value.
func (r IndicatorRecord) Has(field string) bool {
	return r.Values[field] != nil
}

// Float returns a pointer to v, for building records in code.
func Float(v float64) *float64 {
	return &v
}

// UnmarshalJSON decodes a flat record object. Country and Year are fixed
// keys; every other numeric or null key becomes an indicator field.
func (r *IndicatorRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "model: decode record")
	}

	countryRaw, ok := raw["Country"]
	if !ok {
		return eris.New("model: record missing Country")
	}
	if err := json.Unmarshal(countryRaw, &r.Country); err != nil {
		return eris.Wrap(err, "model: decode record Country")
	}

	yearRaw, ok := raw["Year"]
	if !ok {
		return eris.Errorf("model: record %q missing Year", r.Country)
	}
	year, err := decodeYear(yearRaw)
	if err != nil {
		return eris.Wrapf(err, "model: record %q", r.Country)
	}
	r.Year = year

	r.Values = make(map[string]*float64, len(raw))
	for k, v := range raw {
		if k == "Country" || k == "Year" {
			continue
		}
		key := strings.TrimSpace(k)
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			r.Values[key] = nil
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err != nil {
			// Non-numeric columns such as "Status" are not indicators.
			continue
		}
		r.Values[key] = &f
	}
	return nil
}

// MarshalJSON encodes the record in the same flat shape it is read from.
func (r IndicatorRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Values)+2)
	for k, v := range r.Values {
		if v == nil {
			out[k] = nil
			continue
		}
		out[k] = *v
	}
	out["Country"] = r.Country
	out["Year"] = r.Year
	return json.Marshal(out)
}

func decodeYear(raw json.RawMessage) (int, error) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n != math.Trunc(n) {
			return 0, eris.Wrapf(ErrInvalidYear, "year %v is not an integer", n)
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return 0, eris.Wrapf(ErrInvalidYear, "year %v is out of range", n)
		}
		return int(n), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, eris.Wrapf(ErrInvalidYear, "year %s", string(raw))
	}
	return ParseYear(s)
}

// ParseYear normalizes a year taken from a UI control (the slider reports
// strings) into the integer form records use.
func ParseYear(s string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, eris.Wrapf(ErrInvalidYear, "year %q", s)
	}
	return year, nil
}
