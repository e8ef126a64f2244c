package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/lifemap/internal/dataset"
	"github.com/sells-group/lifemap/internal/model"
	"github.com/sells-group/lifemap/internal/session"
	"github.com/sells-group/lifemap/internal/views"
)

func testData() *views.Data {
	f := model.Float
	return views.NewData(&dataset.Dataset{
		Records: []model.IndicatorRecord{
			{Country: "Afghanistan", Year: 2000, Values: map[string]*float64{model.LifeExpectancyField: f(55.8)}},
			{Country: "Afghanistan", Year: 2004, Values: map[string]*float64{model.LifeExpectancyField: f(57.0)}},
			{Country: "Chad", Year: 2000, Values: map[string]*float64{model.LifeExpectancyField: f(46.0), "GDP": nil}},
		},
		Features: []model.CountryFeature{
			{
				Aliases:   model.CountryAliases{Name: "Afghanistan"},
				Continent: "Asia",
				Geometry:  geom.NewPoint(geom.XY).MustSetCoords(geom.Coord{65, 33}),
			},
			{
				Aliases:   model.CountryAliases{Name: "Chad"},
				Continent: "Africa",
				Geometry:  geom.NewPoint(geom.XY).MustSetCoords(geom.Coord{19, 15}),
			},
		},
		Fields: model.NewFieldRegistry([]model.Field{
			{Key: model.LifeExpectancyField, Label: "Life Expectancy"},
			{Key: "GDP"},
		}),
	})
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	data := testData()
	reg := session.NewRegistry(data, session.Defaults{Field: model.LifeExpectancyField, Year: 2000}, time.Hour)
	srv := httptest.NewServer(NewServer(Options{Data: data, Registry: reg}))
	t.Cleanup(srv.Close)
	return srv
}

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func do(t *testing.T, method, url, body string) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp.StatusCode, env
}

func createSession(t *testing.T, base string) (string, session.View) {
	t.Helper()
	status, env := do(t, http.MethodPost, base+"/api/v1/sessions", "")
	require.Equal(t, http.StatusCreated, status)
	var v session.View
	require.NoError(t, json.Unmarshal(env.Data, &v))
	require.NotEmpty(t, v.Session.ID)
	return v.Session.ID, v
}

func decodeView(t *testing.T, env envelope) session.View {
	t.Helper()
	var v session.View
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	status, env := do(t, http.MethodGet, srv.URL+"/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
}

func TestStatus(t *testing.T) {
	srv := newTestServer(t)
	status, env := do(t, http.MethodGet, srv.URL+"/api/v1/status", "")
	require.Equal(t, http.StatusOK, status)

	var st StatusResponse
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, "ok", st.Status)
	assert.Equal(t, 3, st.Records)
	assert.Equal(t, 2, st.Features)
	assert.Equal(t, 2, st.Countries)
}

func TestLoadErrorState(t *testing.T) {
	loadErr := &dataset.LoadError{Resource: dataset.ResourceCountries, Location: "countries.json", Err: errors.New("connection refused")}
	srv := httptest.NewServer(NewServer(Options{LoadErr: loadErr}))
	defer srv.Close()

	status, env := do(t, http.MethodGet, srv.URL+"/api/v1/status", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "load countries from countries.json")

	for _, path := range []string{"/api/v1/fields", "/api/v1/continents"} {
		status, env := do(t, http.MethodGet, srv.URL+path, "")
		assert.Equal(t, http.StatusServiceUnavailable, status, path)
		assert.Contains(t, env.Error, "connection refused", path)
	}
	status, _ = do(t, http.MethodPost, srv.URL+"/api/v1/sessions", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestFieldsAndContinents(t *testing.T) {
	srv := newTestServer(t)

	_, env := do(t, http.MethodGet, srv.URL+"/api/v1/fields", "")
	var fields []model.Field
	require.NoError(t, json.Unmarshal(env.Data, &fields))
	assert.Equal(t, []model.Field{
		{Key: model.LifeExpectancyField, Label: "Life Expectancy"},
		{Key: "GDP", Label: "GDP"},
	}, fields)

	_, env = do(t, http.MethodGet, srv.URL+"/api/v1/continents", "")
	var continents []string
	require.NoError(t, json.Unmarshal(env.Data, &continents))
	assert.Equal(t, []string{"Africa", "Asia"}, continents)
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t)
	id, v := createSession(t, srv.URL)
	assert.Equal(t, 2000, v.Session.Year)
	assert.Equal(t, model.LifeExpectancyField, v.Session.Field)
	assert.Empty(t, v.Snapshot.Bar.Bars)

	base := srv.URL + "/api/v1/sessions/" + id

	status, env := do(t, http.MethodPost, base+"/toggle", `{"name":"Afghanistan"}`)
	require.Equal(t, http.StatusOK, status)
	v = decodeView(t, env)
	require.Len(t, v.Snapshot.Bar.Bars, 1)
	assert.InDelta(t, 55.8, v.Snapshot.Bar.Bars[0].Value, 1e-9)
	require.Len(t, v.Snapshot.Scatter.Points, 1)

	status, env = do(t, http.MethodPut, base+"/year", `{"year":"2004"}`)
	require.Equal(t, http.StatusOK, status)
	v = decodeView(t, env)
	assert.Equal(t, 2004, v.Session.Year)
	assert.Equal(t, "Life Expectancy by Country in 2004", v.Snapshot.Bar.Title)

	status, env = do(t, http.MethodPut, base+"/continents", `{"continents":["Africa"]}`)
	require.Equal(t, http.StatusOK, status)
	v = decodeView(t, env)
	assert.Equal(t, []string{"Africa"}, v.Session.CheckedContinents)

	status, env = do(t, http.MethodPut, base+"/field", `{"field":"GDP"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "GDP", decodeView(t, env).Session.Field)

	status, env = do(t, http.MethodPost, base+"/reset", "")
	require.Equal(t, http.StatusOK, status)
	v = decodeView(t, env)
	assert.Empty(t, v.Session.Selected)
	assert.Empty(t, v.Session.CheckedContinents)

	status, env = do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, id, decodeView(t, env).Session.ID)

	status, _ = do(t, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, status)
	status, env = do(t, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "session not found", env.Error)
}

func TestBadInput(t *testing.T) {
	srv := newTestServer(t)
	id, _ := createSession(t, srv.URL)
	base := srv.URL + "/api/v1/sessions/" + id

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		detail string
	}{
		{"unknown field", http.MethodPut, "/field", `{"field":"Happiness"}`, ""},
		{"non-numeric year", http.MethodPut, "/year", `{"year":"soon"}`, "year"},
		{"fractional year", http.MethodPut, "/year", `{"year":"2000.5"}`, ""},
		{"missing name", http.MethodPost, "/toggle", `{}`, "name"},
		{"empty body", http.MethodPost, "/toggle", "", "body"},
		{"bad json", http.MethodPost, "/toggle", `{"name":`, "body"},
		{"unknown key", http.MethodPost, "/toggle", `{"country":"Chad"}`, "body"},
		{"empty continent", http.MethodPut, "/continents", `{"continents":[""]}`, "continents[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, tt.method, base+tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.False(t, env.Success)
			if tt.detail != "" {
				assert.Contains(t, env.Details, tt.detail)
			}
		})
	}
}

func TestTooltip(t *testing.T) {
	srv := newTestServer(t)
	id, _ := createSession(t, srv.URL)
	base := srv.URL + "/api/v1/sessions/" + id

	var tip struct {
		Text    string        `json:"text"`
		Tooltip views.Tooltip `json:"tooltip"`
	}

	_, env := do(t, http.MethodGet, base+"/tooltip?country=Afghanistan", "")
	require.NoError(t, json.Unmarshal(env.Data, &tip))
	assert.Equal(t, "Afghanistan\nYear: 2000\nLife Expectancy: 55.8", tip.Text)
	assert.Equal(t, views.TooltipValue, tip.Tooltip.Kind)

	_, env = do(t, http.MethodGet, base+"/tooltip?country=Atlantis", "")
	require.NoError(t, json.Unmarshal(env.Data, &tip))
	assert.Equal(t, "Atlantis\nNo data available", tip.Text)

	status, _ := do(t, http.MethodGet, base+"/tooltip", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMapGeoJSONEndpoint(t *testing.T) {
	srv := newTestServer(t)
	id, _ := createSession(t, srv.URL)

	resp, err := http.Get(srv.URL + "/api/v1/sessions/" + id + "/map.geojson")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/geo+json", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"FeatureCollection"`)
}

func TestUnknownSession(t *testing.T) {
	srv := newTestServer(t)
	status, _ := do(t, http.MethodPost, srv.URL+"/api/v1/sessions/nope/toggle", `{"name":"Chad"}`)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, http.MethodDelete, srv.URL+"/api/v1/sessions/nope", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t)
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/status", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
