package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lifemap/internal/join"
	"github.com/sells-group/lifemap/internal/model"
)

func TestResolveTooltip(t *testing.T) {
	f := model.Float
	idx := join.BuildIndex([]model.IndicatorRecord{
		record("Chad", 2000, f(46), nil),
		record("Chad", 2001, f(46.5), f(550)),
		record("Republic of Korea", 2000, f(76.1), f(11900)),
		record("Bolivia (Plurinational State of)", 2000, f(62.6), f(1000)),
	})
	lifeExp := model.Field{Key: model.LifeExpectancyField, Label: "Life Expectancy"}
	gdp := model.Field{Key: gdpField, Label: "GDP"}

	tests := []struct {
		name    string
		aliases model.CountryAliases
		field   model.Field
		year    int
		kind    TooltipKind
		text    string
	}{
		{
			name:    "no records",
			aliases: model.CountryAliases{Name: "Antarctica"},
			field:   lifeExp,
			year:    2000,
			kind:    TooltipNoData,
			text:    "Antarctica\nNo data available",
		},
		{
			name:    "no record for year",
			aliases: model.CountryAliases{Name: "Chad"},
			field:   lifeExp,
			year:    2010,
			kind:    TooltipNoYear,
			text:    "Chad\nNo data for this year",
		},
		{
			name:    "field null",
			aliases: model.CountryAliases{Name: "Chad"},
			field:   gdp,
			year:    2000,
			kind:    TooltipNoFieldData,
			text:    "Chad\nNo gdp data for this year",
		},
		{
			name:    "field absent is lowercased label",
			aliases: model.CountryAliases{Name: "Chad"},
			field:   model.Field{Key: "Alcohol", Label: "Alcohol Consumption"},
			year:    2000,
			kind:    TooltipNoFieldData,
			text:    "Chad\nNo alcohol consumption data for this year",
		},
		{
			name:    "value",
			aliases: model.CountryAliases{Name: "Chad"},
			field:   gdp,
			year:    2001,
			kind:    TooltipValue,
			text:    "Chad\nYear: 2001\nGDP: 550",
		},
		{
			name:    "name_long alias",
			aliases: model.CountryAliases{Name: "Korea", NameLong: "Republic of Korea"},
			field:   lifeExp,
			year:    2000,
			kind:    TooltipValue,
			text:    "Korea\nYear: 2000\nLife Expectancy: 76.1",
		},
		{
			name:    "formal_en alias",
			aliases: model.CountryAliases{Name: "Bolivia", NameLong: "Bolivia", FormalEN: "Bolivia (Plurinational State of)"},
			field:   lifeExp,
			year:    2000,
			kind:    TooltipValue,
			text:    "Bolivia\nYear: 2000\nLife Expectancy: 62.6",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tip := ResolveTooltip(tt.aliases, idx, tt.field, tt.year)
			assert.Equal(t, tt.kind, tip.Kind)
			assert.Equal(t, tt.text, tip.Text())
			assert.Equal(t, tt.aliases.Name, tip.Country)
		})
	}
}

func TestResolveTooltip_Value(t *testing.T) {
	idx := join.BuildIndex([]model.IndicatorRecord{record("Afghanistan", 2000, model.Float(55.8), nil)})
	tip := ResolveTooltip(model.CountryAliases{Name: "Afghanistan"}, idx,
		model.Field{Key: model.LifeExpectancyField, Label: "Life Expectancy"}, 2000)

	require.NotNil(t, tip.Value)
	assert.InDelta(t, 55.8, *tip.Value, 1e-9)
	assert.Equal(t, 2000, tip.Year)
}

// Every feature whose aliases match a record group gets a data tooltip,
// whatever the year or field.
func TestResolveTooltip_MatchedNeverNoData(t *testing.T) {
	data := testData()
	for _, f := range data.Features {
		if !f.HasData() {
			continue
		}
		for _, year := range []int{1990, 2000, 2001, 2002} {
			for _, field := range data.Fields.Fields {
				tip := ResolveTooltip(f.Aliases, data.Index, field, year)
				assert.NotEqual(t, MsgNoData, tip.Message, "%s %d %s", f.Aliases.Name, year, field.Key)
			}
		}
	}
}

func TestPalette(t *testing.T) {
	p := NewPalette()
	assert.Equal(t, Tableau10[0], p.Color("Chad"))
	assert.Equal(t, Tableau10[1], p.Color("Mali"))
	assert.Equal(t, Tableau10[0], p.Color("Chad"))

	for i := 0; i < len(Tableau10)-2; i++ {
		p.Color(string(rune('a' + i)))
	}
	assert.Equal(t, Paired[0], p.Color("first paired"))

	for i := 0; i < len(Paired); i++ {
		p.Color(string(rune('A' + i)))
	}
	assert.Equal(t, 1+len(Tableau10)+len(Paired), p.Len())
}

func TestDomains(t *testing.T) {
	assert.Equal(t, Domain{Empty: true}, zeroMax(nil))
	assert.Equal(t, Domain{Max: 3}, zeroMax([]float64{1, 3, 2}))
	assert.Equal(t, Domain{Empty: true}, extent(nil))
	assert.Equal(t, Domain{Min: 1, Max: 3}, extent([]float64{2, 3, 1}))
}
