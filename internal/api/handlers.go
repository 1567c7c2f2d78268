package api

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/rshade/adtech-emissions/internal/carbon"
	"github.com/rshade/adtech-emissions/internal/defaults"
	"github.com/rshade/adtech-emissions/internal/service"
)

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to write response")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}

// trace returns a derivation trace tagged with the request ID.
func (s *Server) trace(r *http.Request) *carbon.Trace {
	return carbon.NewTrace(s.logger.With().Str("request_id", RequestID(r.Context())).Logger())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCorporate(w http.ResponseWriter, r *http.Request) {
	var in service.CorporateInput
	if err := decodeBody(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.svc.CalculateCorporate(in, s.trace(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleATPPrimary(w http.ResponseWriter, r *http.Request) {
	var in service.ATPInput
	if err := decodeBody(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.svc.CalculateATP(in, s.trace(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleATPSecondary(w http.ResponseWriter, r *http.Request) {
	var in service.SecondaryInput
	if err := decodeBody(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.svc.CalculateSecondary(in, s.trace(r)))
}

func (s *Server) handleATPDefaults(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.AllATPDefaults()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleATPTemplateDefaults(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("template")
	tpl, err := carbon.ParseATPTemplate(name)
	if err != nil {
		s.writeError(w, r, &carbon.TemplateError{Kind: defaults.KindATP, Template: name})
		return
	}
	out, err := s.svc.ATPDefaults(tpl)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePropertyDefaults(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.AllPropertyDefaults()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePropertyChannelDefaults(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("channel")
	ch, err := carbon.ParsePropertyChannel(name)
	if err != nil {
		s.writeError(w, r, &carbon.TemplateError{Kind: defaults.KindProperty, Template: name})
		return
	}
	out, err := s.svc.PropertyDefaults(ch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleEndUserDeviceDefaults(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.EndUserDeviceDefaults()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNetworkingDefaults(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.NetworkingDefaults()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListPublicFiles(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.ListPublicFiles(r.PathValue("file_type"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleParseCorporate(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.ParseCorporateFile(r.PathValue("identifier"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}
