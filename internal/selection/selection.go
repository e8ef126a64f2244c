// Package selection tracks which countries are selected, by map click or
// by continent checkbox, and which one was added last.
//
// Selection is derived: a country with a click override takes the
// override's value, any other country is selected when its continent is
// checked. Clicks never get erased by checkbox changes, and a click that
// lands on the continent-derived state simply drops the override.
package selection

import (
	"sort"

	"github.com/sells-group/lifemap/internal/model"
)

type country struct {
	aliases   model.CountryAliases
	continent string
}

// Model is the selection state of one session. It is not safe for
// concurrent use.
type Model struct {
	catalog map[string]*country
	order   []string

	// outside holds the selected countries that are not map features, in
	// the order they were toggled on. They leave it when toggled off.
	outside []model.CountryAliases

	checked   map[string]bool
	overrides map[string]bool

	lastAdded *model.CountryAliases
	members   map[string]bool
}

// NewModel builds an empty selection over the feature catalog. Features
// repeating an earlier name are ignored.
func NewModel(features []model.CountryFeature) *Model {
	m := &Model{
		catalog:   make(map[string]*country, len(features)),
		checked:   make(map[string]bool),
		overrides: make(map[string]bool),
		members:   make(map[string]bool),
	}
	for _, f := range features {
		m.register(f.Aliases, f.Continent)
	}
	return m
}

func (m *Model) register(aliases model.CountryAliases, continent string) {
	if _, ok := m.catalog[aliases.Name]; ok {
		return
	}
	m.catalog[aliases.Name] = &country{aliases: aliases, continent: continent}
	m.order = append(m.order, aliases.Name)
}

// Toggle flips the country named by aliases.Name. Adding it moves the
// last-added marker to it; removing it clears the marker if the marker
// names it. Countries outside the catalog can be toggled too.
func (m *Model) Toggle(aliases model.CountryAliases) {
	if aliases.Name == "" {
		return
	}
	c, ok := m.catalog[aliases.Name]
	if !ok {
		m.toggleOutside(aliases)
		m.rebuild()
		return
	}
	selected := !m.members[c.aliases.Name]

	if selected == m.derived(c) {
		delete(m.overrides, c.aliases.Name)
	} else {
		m.overrides[c.aliases.Name] = selected
	}

	if selected {
		a := c.aliases
		m.lastAdded = &a
	}
	m.rebuild()
}

func (m *Model) toggleOutside(aliases model.CountryAliases) {
	for i, a := range m.outside {
		if a.Name == aliases.Name {
			m.outside = append(m.outside[:i], m.outside[i+1:]...)
			return
		}
	}
	m.outside = append(m.outside, aliases)
	m.lastAdded = &aliases
}

// ApplyContinentFilters replaces the checked continent set and re-derives
// the selection. Calling it twice with the same set changes nothing.
func (m *Model) ApplyContinentFilters(checked []string) {
	m.checked = make(map[string]bool, len(checked))
	for _, c := range checked {
		if c != "" {
			m.checked[c] = true
		}
	}
	m.rebuild()
}

// Clear empties the selection, the marker, the checked continents and
// every click override.
func (m *Model) Clear() {
	m.checked = make(map[string]bool)
	m.overrides = make(map[string]bool)
	m.outside = nil
	m.lastAdded = nil
	m.rebuild()
}

func (m *Model) rebuild() {
	m.members = make(map[string]bool, len(m.members))
	for _, name := range m.order {
		c := m.catalog[name]
		if !m.isSelected(c) {
			continue
		}
		for _, a := range c.aliases.All() {
			m.members[a] = true
		}
	}
	for _, o := range m.outside {
		for _, a := range o.All() {
			m.members[a] = true
		}
	}
	if m.lastAdded != nil && !m.members[m.lastAdded.Name] {
		m.lastAdded = nil
	}
}

func (m *Model) isSelected(c *country) bool {
	if v, ok := m.overrides[c.aliases.Name]; ok {
		return v
	}
	return m.derived(c)
}

// derived is the state the continent checkboxes alone would give c.
func (m *Model) derived(c *country) bool {
	return c.continent != "" && m.checked[c.continent]
}

// Contains reports whether alias belongs to a selected country. Any of a
// country's three aliases answers the same.
func (m *Model) Contains(alias string) bool {
	return alias != "" && m.members[alias]
}

// Len returns the number of selected countries.
func (m *Model) Len() int {
	n := 0
	for _, name := range m.order {
		if m.isSelected(m.catalog[name]) {
			n++
		}
	}
	return n + len(m.outside)
}

// LastAdded returns the most recently clicked-in country.
func (m *Model) LastAdded() (model.CountryAliases, bool) {
	if m.lastAdded == nil {
		return model.CountryAliases{}, false
	}
	return *m.lastAdded, true
}

// IsLastAdded reports whether alias is one of the last-added country's aliases.
func (m *Model) IsLastAdded(alias string) bool {
	return m.lastAdded != nil && m.lastAdded.Has(alias)
}

// Selected returns the selected countries in catalog order, followed by
// countries outside the catalog in the order they were first toggled.
func (m *Model) Selected() []model.CountryAliases {
	var out []model.CountryAliases
	for _, name := range m.order {
		c := m.catalog[name]
		if m.isSelected(c) {
			out = append(out, c.aliases)
		}
	}
	return append(out, m.outside...)
}

// CheckedContinents returns the checked continents, sorted.
func (m *Model) CheckedContinents() []string {
	out := make([]string, 0, len(m.checked))
	for c := range m.checked {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Aliases returns every alias in the selection set, sorted.
func (m *Model) Aliases() []string {
	out := make([]string, 0, len(m.members))
	for a := range m.members {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
