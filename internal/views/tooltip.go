package views

import (
	"fmt"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/lifemap/internal/join"
	"github.com/sells-group/lifemap/internal/model"
)

// TooltipKind classifies a hover tooltip.
type TooltipKind string

const (
	TooltipNoData      TooltipKind = "no_data"
	TooltipNoYear      TooltipKind = "no_year"
	TooltipNoFieldData TooltipKind = "no_field_data"
	TooltipValue       TooltipKind = "value"
)

// Messages shown for the missing-data tooltip kinds.
const (
	MsgNoData = "No data available"
	MsgNoYear = "No data for this year"
)

// Tooltip is the hover text for one map country.
type Tooltip struct {
	Country string      `json:"country"`
	Kind    TooltipKind `json:"kind"`
	Message string      `json:"message"`
	Year    int         `json:"year,omitempty"`
	Value   *float64    `json:"value,omitempty"`
}

// Text returns the tooltip as displayed: the country name over the message.
func (t Tooltip) Text() string {
	return t.Country + "\n" + t.Message
}

// ResolveTooltip finds the hovered country's records through the same
// alias order as the join, then picks the first matching message: no
// records at all, no record for year, no value for the field, or the value.
func ResolveTooltip(aliases model.CountryAliases, idx *join.Index, field model.Field, year int) Tooltip {
	t := Tooltip{Country: aliases.Name}

	key := idx.ResolveCountryKey(aliases)
	if key == "" {
		t.Kind, t.Message = TooltipNoData, MsgNoData
		return t
	}

	var (
		rec   model.IndicatorRecord
		found bool
	)
	for _, r := range idx.Records(key) {
		if r.Year == year {
			rec, found = r, true
			break
		}
	}
	if !found {
		t.Kind, t.Message = TooltipNoYear, MsgNoYear
		return t
	}

	v, ok := rec.Value(field.Key)
	if !ok {
		t.Kind = TooltipNoFieldData
		t.Message = fmt.Sprintf("No %s data for this year", cases.Lower(language.Und).String(field.Label))
		return t
	}

	t.Kind = TooltipValue
	t.Year = rec.Year
	t.Value = model.Float(v)
	t.Message = fmt.Sprintf("Year: %d\n%s: %s", rec.Year, field.Label, formatValue(v))
	return t
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func barTooltip(country string, field model.Field, v float64) string {
	return fmt.Sprintf("Country: %s\n%s: %s", country, field.Key, formatValue(v))
}

func lineTooltip(country string, year int, field model.Field, v float64) string {
	return fmt.Sprintf("Country: %s\nYear: %d\n%s: %s", country, year, field.Key, formatValue(v))
}

func scatterTooltip(country string, field model.Field, x, y float64) string {
	return fmt.Sprintf("Country: %s\n%s: %s\n%s: %s",
		country, model.LifeExpectancyField, formatValue(x), field.Key, formatValue(y))
}
