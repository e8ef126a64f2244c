// Package session holds the per-browser application state: one selection,
// the chosen field and year, and the views they drive.
package session

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lifemap/internal/model"
	"github.com/sells-group/lifemap/internal/selection"
	"github.com/sells-group/lifemap/internal/views"
)

// Defaults for a new session.
type Defaults struct {
	Field string
	Year  int
	Views views.Options
}

// State is one session. Every mutation runs to completion under the lock
// and returns the snapshot it produced.
type State struct {
	ID string

	mu       sync.Mutex
	sel      *selection.Model
	syncer   *views.Synchronizer
	field    string
	year     int
	lastSeen time.Time
	now      func() time.Time
}

func newState(id string, data *views.Data, d Defaults, now func() time.Time) *State {
	return &State{
		ID:       id,
		sel:      selection.NewModel(data.Features),
		syncer:   views.NewSynchronizer(data, d.Views),
		field:    d.Field,
		year:     d.Year,
		lastSeen: now(),
		now:      now,
	}
}

// Summary is the control state shown next to the views.
type Summary struct {
	ID                string                 `json:"id"`
	Field             string                 `json:"field"`
	Year              int                    `json:"year"`
	CheckedContinents []string               `json:"checked_continents"`
	Selected          []model.CountryAliases `json:"selected"`
	LastAdded         *model.CountryAliases  `json:"last_added,omitempty"`
}

// View is a session's controls plus the views they produce.
type View struct {
	Session  Summary        `json:"session"`
	Snapshot views.Snapshot `json:"snapshot"`
}

// Snapshot recomputes the views without changing anything.
func (s *State) Snapshot() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.render()
}

// ToggleCountry flips the country with the given name. Names outside the
// feature catalog are toggled as a bare alias.
func (s *State) ToggleCountry(name string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	aliases := model.CountryAliases{Name: name}
	if f, ok := s.syncer.Data().Feature(name); ok {
		aliases = f.Aliases
	}
	s.sel.Toggle(aliases)
	return s.render()
}

// SetContinents replaces the checked continents.
func (s *State) SetContinents(continents []string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sel.ApplyContinentFilters(continents)
	return s.render()
}

// SetField selects the indicator field. Unknown keys fail with
// model.ErrUnknownField and leave the state unchanged.
func (s *State) SetField(key string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.syncer.Data().Fields.Lookup(key); err != nil {
		return View{}, eris.Wrap(err, "session: set field")
	}
	s.field = key
	return s.render()
}

// SetYear parses the slider value and selects that year.
func (s *State) SetYear(raw string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	year, err := model.ParseYear(raw)
	if err != nil {
		return View{}, eris.Wrap(err, "session: set year")
	}
	s.year = year
	return s.render()
}

// Reset clears the selection and the checked continents. Field and year
// are kept.
func (s *State) Reset() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sel.Clear()
	return s.render()
}

// Tooltip resolves the hover text for a map country in the current field
// and year.
func (s *State) Tooltip(name string) (views.Tooltip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	data := s.syncer.Data()
	field, err := data.Fields.Lookup(s.field)
	if err != nil {
		return views.Tooltip{}, eris.Wrap(err, "session: tooltip")
	}
	aliases := model.CountryAliases{Name: name}
	if f, ok := data.Feature(name); ok {
		aliases = f.Aliases
	}
	return views.ResolveTooltip(aliases, data.Index, field, s.year), nil
}

// MapGeoJSON renders the choropleth for the current state.
func (s *State) MapGeoJSON() ([]byte, error) {
	v, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return views.MapGeoJSON(s.syncer.Data(), v.Snapshot.Map)
}

// LastSeen returns when the session was last used.
func (s *State) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *State) touch() {
	s.lastSeen = s.now()
}

func (s *State) render() (View, error) {
	s.touch()

	snap, err := s.syncer.Sync(views.Input{Selection: s.sel, Field: s.field, Year: s.year})
	if err != nil {
		return View{}, eris.Wrap(err, "session: render")
	}

	sum := Summary{
		ID:                s.ID,
		Field:             s.field,
		Year:              s.year,
		CheckedContinents: s.sel.CheckedContinents(),
		Selected:          s.sel.Selected(),
	}
	if sum.Selected == nil {
		sum.Selected = []model.CountryAliases{}
	}
	if last, ok := s.sel.LastAdded(); ok {
		sum.LastAdded = &last
	}
	return View{Session: sum, Snapshot: snap}, nil
}
