package selection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lifemap/internal/model"
)

var (
	chad = model.CountryAliases{Name: "Chad", NameLong: "Chad", FormalEN: "Republic of Chad"}
	mali = model.CountryAliases{Name: "Mali", NameLong: "Mali", FormalEN: "Republic of Mali"}
	peru = model.CountryAliases{Name: "Peru", NameLong: "Peru", FormalEN: "Republic of Peru"}
	iran = model.CountryAliases{Name: "Iran", NameLong: "Iran", FormalEN: "Islamic Republic of Iran"}
)

func testCatalog() []model.CountryFeature {
	return []model.CountryFeature{
		{Aliases: chad, Continent: "Africa"},
		{Aliases: mali, Continent: "Africa"},
		{Aliases: peru, Continent: "South America"},
		{Aliases: iran, Continent: "Asia"},
	}
}

func names(m *Model) []string {
	var out []string
	for _, a := range m.Selected() {
		out = append(out, a.Name)
	}
	return out
}

func TestToggle_AddsAllAliases(t *testing.T) {
	m := NewModel(testCatalog())
	m.Toggle(iran)

	for _, a := range iran.All() {
		assert.True(t, m.Contains(a), a)
	}
	assert.Equal(t, []string{"Iran", "Islamic Republic of Iran"}, m.Aliases())
	assert.Equal(t, 1, m.Len())

	last, ok := m.LastAdded()
	require.True(t, ok)
	assert.Equal(t, iran, last)
	assert.True(t, m.IsLastAdded("Islamic Republic of Iran"))
}

func TestToggle_RemovesAndClearsMarker(t *testing.T) {
	m := NewModel(testCatalog())
	m.Toggle(chad)
	m.Toggle(peru)
	m.Toggle(peru)

	assert.False(t, m.Contains("Peru"))
	assert.False(t, m.Contains("Republic of Peru"))
	_, ok := m.LastAdded()
	assert.False(t, ok, "marker named the removed country")
	assert.True(t, m.Contains("Chad"))
}

func TestToggle_RemoveOtherKeepsMarker(t *testing.T) {
	m := NewModel(testCatalog())
	m.Toggle(chad)
	m.Toggle(peru)
	m.Toggle(chad)

	last, ok := m.LastAdded()
	require.True(t, ok)
	assert.Equal(t, "Peru", last.Name)
}

func TestToggle_MarkerOverwritten(t *testing.T) {
	m := NewModel(testCatalog())
	m.Toggle(chad)
	m.Toggle(mali)

	assert.True(t, m.IsLastAdded("Mali"))
	assert.False(t, m.IsLastAdded("Chad"))
}

// Double toggling restores membership and the marker whenever the marker
// starts empty or already names the toggled country.
func TestToggle_Twice_RestoresState(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *Model)
	}{
		{"empty", func(m *Model) {}},
		{"target already last added", func(m *Model) { m.Toggle(chad) }},
		{"other continent checked", func(m *Model) { m.ApplyContinentFilters([]string{"Asia"}) }},
		{"continent and click", func(m *Model) {
			m.ApplyContinentFilters([]string{"Asia"})
			m.Toggle(chad)
		}},
		{"unknown country selected", func(m *Model) {
			m.Toggle(model.CountryAliases{Name: "Atlantis"})
			m.Toggle(chad)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(testCatalog())
			tt.setup(m)

			beforeAliases := m.Aliases()
			beforeLast, beforeOK := m.LastAdded()

			m.Toggle(chad)
			m.Toggle(chad)

			assert.Equal(t, beforeAliases, m.Aliases())
			afterLast, afterOK := m.LastAdded()
			assert.Equal(t, beforeOK, afterOK)
			assert.Equal(t, beforeLast, afterLast)
		})
	}
}

func TestToggle_UnknownCountry(t *testing.T) {
	m := NewModel(testCatalog())
	atlantis := model.CountryAliases{Name: "Atlantis"}

	m.Toggle(atlantis)
	assert.True(t, m.Contains("Atlantis"))
	assert.Equal(t, []string{"Atlantis"}, names(m))

	m.ApplyContinentFilters([]string{"Africa"})
	assert.True(t, m.Contains("Atlantis"))
	m.ApplyContinentFilters(nil)
	assert.True(t, m.Contains("Atlantis"))

	m.Toggle(atlantis)
	assert.False(t, m.Contains("Atlantis"))
}

func TestToggle_UnknownCountriesDoNotAccumulate(t *testing.T) {
	m := NewModel(testCatalog())
	m.Toggle(chad)

	for i := range 1000 {
		a := model.CountryAliases{Name: fmt.Sprintf("Nowhere %d", i)}
		m.Toggle(a)
		m.Toggle(a)
	}

	assert.Len(t, m.catalog, 4)
	assert.Len(t, m.order, 4)
	assert.Empty(t, m.outside)
	assert.Equal(t, []string{"Chad"}, names(m))
	assert.Equal(t, 1, m.Len())
}

func TestToggle_UnknownCountryOrderAndMarker(t *testing.T) {
	m := NewModel(testCatalog())
	atlantis := model.CountryAliases{Name: "Atlantis"}
	lemuria := model.CountryAliases{Name: "Lemuria"}

	m.Toggle(lemuria)
	m.Toggle(peru)
	m.Toggle(atlantis)
	assert.Equal(t, []string{"Peru", "Lemuria", "Atlantis"}, names(m))
	assert.Equal(t, 3, m.Len())
	assert.True(t, m.IsLastAdded("Atlantis"))

	m.Toggle(atlantis)
	_, ok := m.LastAdded()
	assert.False(t, ok)
	assert.Equal(t, []string{"Peru", "Lemuria"}, names(m))

	m.Clear()
	assert.Empty(t, m.outside)
	assert.False(t, m.Contains("Lemuria"))
}

func TestToggle_EmptyName(t *testing.T) {
	m := NewModel(testCatalog())
	m.Toggle(model.CountryAliases{NameLong: "Nowhere"})
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Contains(""))
}

func TestApplyContinentFilters(t *testing.T) {
	m := NewModel(testCatalog())
	m.ApplyContinentFilters([]string{"Africa", "Asia"})

	assert.Equal(t, []string{"Chad", "Mali", "Iran"}, names(m))
	assert.Equal(t, []string{"Africa", "Asia"}, m.CheckedContinents())
	_, ok := m.LastAdded()
	assert.False(t, ok, "checkboxes do not move the marker")

	m.ApplyContinentFilters([]string{"Asia"})
	assert.Equal(t, []string{"Iran"}, names(m))
}

func TestApplyContinentFilters_Idempotent(t *testing.T) {
	m := NewModel(testCatalog())
	m.Toggle(peru)
	m.ApplyContinentFilters([]string{"Africa"})
	once := m.Aliases()

	m.ApplyContinentFilters([]string{"Africa"})
	assert.Equal(t, once, m.Aliases())
}

func TestApplyContinentFilters_AfricaCheckUncheck(t *testing.T) {
	m := NewModel(testCatalog())
	m.Toggle(mali)
	m.Toggle(iran)
	before := m.Aliases()

	m.ApplyContinentFilters([]string{"Africa"})
	assert.True(t, m.Contains("Chad"))
	assert.True(t, m.Contains("Mali"))

	m.ApplyContinentFilters(nil)
	assert.Equal(t, before, m.Aliases())
	assert.False(t, m.Contains("Chad"))
	assert.True(t, m.Contains("Mali"), "clicked before the check, so it stays")
}

func TestApplyContinentFilters_RecheckKeepsClickRemoval(t *testing.T) {
	m := NewModel(testCatalog())
	m.ApplyContinentFilters([]string{"Africa"})
	m.Toggle(chad)
	assert.False(t, m.Contains("Chad"))

	m.ApplyContinentFilters(nil)
	m.ApplyContinentFilters([]string{"Africa"})
	assert.False(t, m.Contains("Chad"), "re-checking does not re-add a clicked-out country")
	assert.True(t, m.Contains("Mali"))

	m.Toggle(chad)
	assert.True(t, m.Contains("Chad"))
	m.ApplyContinentFilters(nil)
	assert.False(t, m.Contains("Chad"), "clicking back to the checkbox state drops the override")
}

func TestApplyContinentFilters_ClickFromUncheckedContinentSurvives(t *testing.T) {
	m := NewModel(testCatalog())
	m.Toggle(peru)
	m.ApplyContinentFilters([]string{"South America"})
	m.ApplyContinentFilters(nil)
	assert.True(t, m.Contains("Peru"))
}

func TestApplyContinentFilters_UncheckDropsMarker(t *testing.T) {
	m := NewModel(testCatalog())
	m.ApplyContinentFilters([]string{"Africa"})
	m.Toggle(chad)
	m.Toggle(chad)
	require.True(t, m.IsLastAdded("Chad"))

	m.ApplyContinentFilters(nil)
	assert.False(t, m.Contains("Chad"))
	_, ok := m.LastAdded()
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	m := NewModel(testCatalog())
	m.ApplyContinentFilters([]string{"Africa"})
	m.Toggle(peru)
	m.Toggle(chad)

	m.Clear()
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Aliases())
	assert.Empty(t, m.CheckedContinents())
	_, ok := m.LastAdded()
	assert.False(t, ok)

	m.ApplyContinentFilters([]string{"Africa"})
	assert.True(t, m.Contains("Chad"), "clear drops click overrides")
}

func TestNewModel_DuplicateNames(t *testing.T) {
	m := NewModel([]model.CountryFeature{
		{Aliases: chad, Continent: "Africa"},
		{Aliases: model.CountryAliases{Name: "Chad"}, Continent: "Asia"},
	})
	m.ApplyContinentFilters([]string{"Asia"})
	assert.False(t, m.Contains("Chad"))
}
