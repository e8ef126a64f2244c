package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sells-group/lifemap/internal/model"
	"github.com/sells-group/lifemap/internal/session"
)

// StatusResponse reports whether the dataset loaded.
type StatusResponse struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	Records   int    `json:"records"`
	Features  int    `json:"features"`
	Countries int    `json:"countries"`
	Sessions  int    `json:"sessions"`
	Uptime    string `json:"uptime"`
}

type toggleRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type continentsRequest struct {
	Continents []string `json:"continents" validate:"max=16,dive,required,max=100"`
}

type fieldRequest struct {
	Field string `json:"field" validate:"required,max=200"`
}

type yearRequest struct {
	Year string `json:"year" validate:"required,numeric,max=6"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	success(w, map[string]string{"status": "healthy"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := StatusResponse{Status: "ok", Uptime: time.Since(s.started).Round(time.Second).String()}
	if s.data == nil {
		resp.Status = "load_error"
		if s.loadErr != nil {
			resp.Error = s.loadErr.Error()
		}
		writeJSON(w, http.StatusServiceUnavailable, Envelope{Data: resp, Error: resp.Error})
		return
	}
	resp.Records = len(s.data.Records)
	resp.Features = len(s.data.Features)
	resp.Countries = s.data.Index.Len()
	if s.registry != nil {
		resp.Sessions = s.registry.Len()
	}
	success(w, resp)
}

func (s *Server) handleFields(w http.ResponseWriter, _ *http.Request) {
	fields := s.data.Fields.Fields
	if fields == nil {
		fields = []model.Field{}
	}
	success(w, fields)
}

func (s *Server) handleContinents(w http.ResponseWriter, _ *http.Request) {
	continents := s.data.Continents()
	if continents == nil {
		continents = []string{}
	}
	success(w, continents)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	st := s.registry.Create()
	v, err := st.Snapshot()
	if err != nil {
		handleError(w, err)
		return
	}
	created(w, v)
}

// session resolves the {id} URL parameter, writing the error response
// itself when the lookup fails.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.State, bool) {
	st, err := s.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, err)
		return nil, false
	}
	return st, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	st, ok := s.session(w, r)
	if !ok {
		return
	}
	respond(w)(st.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Delete(chi.URLParam(r, "id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	st, ok := s.session(w, r)
	if !ok {
		return
	}
	var req toggleRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		handleError(w, err)
		return
	}
	respond(w)(st.ToggleCountry(req.Name))
}

func (s *Server) handleSetContinents(w http.ResponseWriter, r *http.Request) {
	st, ok := s.session(w, r)
	if !ok {
		return
	}
	var req continentsRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		handleError(w, err)
		return
	}
	respond(w)(st.SetContinents(req.Continents))
}

func (s *Server) handleSetField(w http.ResponseWriter, r *http.Request) {
	st, ok := s.session(w, r)
	if !ok {
		return
	}
	var req fieldRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		handleError(w, err)
		return
	}
	respond(w)(st.SetField(req.Field))
}

func (s *Server) handleSetYear(w http.ResponseWriter, r *http.Request) {
	st, ok := s.session(w, r)
	if !ok {
		return
	}
	var req yearRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		handleError(w, err)
		return
	}
	respond(w)(st.SetYear(req.Year))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	st, ok := s.session(w, r)
	if !ok {
		return
	}
	respond(w)(st.Reset())
}

func (s *Server) handleTooltip(w http.ResponseWriter, r *http.Request) {
	st, ok := s.session(w, r)
	if !ok {
		return
	}
	country := r.URL.Query().Get("country")
	if country == "" {
		handleError(w, &ValidationError{Fields: map[string]string{"country": "is required"}})
		return
	}
	tip, err := st.Tooltip(country)
	if err != nil {
		handleError(w, err)
		return
	}
	success(w, struct {
		Text string `json:"text"`
		Tip  any    `json:"tooltip"`
	}{Text: tip.Text(), Tip: tip})
}

func (s *Server) handleMapGeoJSON(w http.ResponseWriter, r *http.Request) {
	st, ok := s.session(w, r)
	if !ok {
		return
	}
	data, err := st.MapGeoJSON()
	if err != nil {
		handleError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// respond writes the result of a session mutation.
func respond(w http.ResponseWriter) func(session.View, error) {
	return func(v session.View, err error) {
		if err != nil {
			handleError(w, err)
			return
		}
		success(w, v)
	}
}
