package server

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/lineagelab/idhist/pkg/errors"
	"github.com/lineagelab/idhist/pkg/store"
)

// errorResponse is the JSON body for failed requests.
type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{
		Error:     apperrors.UserMessage(err),
		RequestID: RequestID(r.Context()),
	}
	if code := apperrors.GetCode(err); code != "" {
		resp.Code = string(code)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"id", resp.RequestID,
			"path", r.URL.Path,
			"err", err)
	}
	s.writeJSON(w, status, resp)
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeInvalidInput,
		apperrors.ErrCodeInvalidTree,
		apperrors.ErrCodeInvalidFormat,
		apperrors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound,
		apperrors.ErrCodeTreeNotFound,
		apperrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
