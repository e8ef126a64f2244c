package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lifemap/internal/dataset"
	"github.com/sells-group/lifemap/internal/model"
	"github.com/sells-group/lifemap/internal/views"
)

func testDataset() *dataset.Dataset {
	f := model.Float
	return &dataset.Dataset{
		Records: []model.IndicatorRecord{
			{Country: "Afghanistan", Year: 2000, Values: map[string]*float64{model.LifeExpectancyField: f(55.8)}},
			{Country: "Chad", Year: 2000, Values: map[string]*float64{model.LifeExpectancyField: f(46)}},
			{Country: "Chad", Year: 2001, Values: map[string]*float64{model.LifeExpectancyField: nil}},
		},
		Features: []model.CountryFeature{
			{Aliases: model.CountryAliases{Name: "Afghanistan"}, Continent: "Asia"},
			{Aliases: model.CountryAliases{Name: "Chad"}, Continent: "Africa"},
			{Aliases: model.CountryAliases{Name: "Greenland"}, Continent: "North America"},
		},
		Fields: model.DefaultFields(),
	}
}

func testReportOptions() reportOptions {
	return reportOptions{
		Field: model.LifeExpectancyField,
		Year:  "2000",
		Width: 10,
		Views: views.Options{LineYearMin: 2000, LineYearMax: 2015},
	}
}

func TestRunReport(t *testing.T) {
	opts := testReportOptions()
	opts.Continents = []string{"Africa"}
	opts.Countries = []string{"Afghanistan"}

	var buf bytes.Buffer
	require.NoError(t, runReport(&buf, testDataset(), opts))
	out := buf.String()

	assert.Contains(t, out, "Life Expectancy by Country in 2000")
	assert.Contains(t, out, "*Afghanistan")
	assert.Contains(t, out, "Chad")
	assert.Less(t, strings.Index(out, "*Afghanistan"), strings.Index(out, "Chad"), "bars sort descending")
	assert.Contains(t, out, "Year: 2000")
	assert.Contains(t, out, "Life Expectancy: 55.8")
}

func TestRunReport_NoData(t *testing.T) {
	opts := testReportOptions()
	opts.Countries = []string{"Greenland", "Atlantis"}

	var buf bytes.Buffer
	require.NoError(t, runReport(&buf, testDataset(), opts))
	out := buf.String()

	assert.Contains(t, out, "no countries selected")
	assert.Contains(t, out, "Greenland")
	assert.Contains(t, out, "Atlantis")
	assert.Equal(t, 2, strings.Count(out, views.MsgNoData))
}

func TestRunReport_BadInput(t *testing.T) {
	opts := testReportOptions()
	opts.Year = "next year"
	err := runReport(&bytes.Buffer{}, testDataset(), opts)
	assert.True(t, errors.Is(err, model.ErrInvalidYear))

	opts = testReportOptions()
	opts.Field = "Happiness"
	err = runReport(&bytes.Buffer{}, testDataset(), opts)
	assert.True(t, errors.Is(err, model.ErrUnknownField))
}
