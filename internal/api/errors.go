package api

import (
	"errors"
	"net/http"

	"github.com/rshade/adtech-emissions/internal/carbon"
	"github.com/rshade/adtech-emissions/internal/facts"
	"github.com/rshade/adtech-emissions/internal/service"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
}

// errBadBody marks request bodies that cannot be decoded.
var errBadBody = errors.New("invalid request body")

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, carbon.ErrTemplateNotFound),
		errors.Is(err, facts.ErrFileNotFound),
		errors.Is(err, service.ErrNoPublicFiles):
		return http.StatusNotFound
	case errors.Is(err, carbon.ErrMissingValue),
		errors.Is(err, carbon.ErrInvalidInput),
		errors.Is(err, carbon.ErrDivisionByZero),
		errors.Is(err, carbon.ErrCycle),
		errors.Is(err, errBadBody):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	id := RequestID(r.Context())
	msg := err.Error()
	if code == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("request_id", id).Str("path", r.URL.Path).Msg("request failed")
		msg = http.StatusText(code)
	} else {
		s.logger.Debug().Err(err).Str("request_id", id).Int("status", code).Msg("request rejected")
	}
	s.writeJSON(w, code, ErrorResponse{Error: msg, RequestID: id})
}
