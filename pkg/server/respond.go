package server

import (
	"encoding/json"
	"net/http"

	apperr "github.com/matzehuels/natalchart/pkg/errors"
)

type errorBody struct {
	Error struct {
		Code      apperr.Code `json:"code"`
		Message   string      `json:"message"`
		RequestID string      `json:"request_id,omitempty"`
	} `json:"error"`
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code apperr.Code) int {
	switch code {
	case apperr.ErrCodeInvalidInput, apperr.ErrCodeInvalidFormat,
		apperr.ErrCodeInvalidDate, apperr.ErrCodeInvalidLocation:
		return http.StatusBadRequest
	case apperr.ErrCodeNotFound, apperr.ErrCodeLocationNotFound:
		return http.StatusNotFound
	case apperr.ErrCodeNetwork, apperr.ErrCodeTimeout, apperr.ErrCodeMalformedChart:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.GetCode(err)
	if code == "" {
		code = apperr.ErrCodeInternal
	}
	status := StatusFor(code)

	var body errorBody
	body.Error.Code = code
	body.Error.Message = apperr.UserMessage(err)
	body.Error.RequestID = RequestID(r.Context())
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "err", err, "request_id", body.Error.RequestID)
		body.Error.Message = "internal error"
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
