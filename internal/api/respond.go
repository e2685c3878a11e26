package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/Rubemlrm/jogging-tracker/internal/auth"
	"github.com/Rubemlrm/jogging-tracker/internal/domain"
	"github.com/Rubemlrm/jogging-tracker/internal/logging"
	"github.com/Rubemlrm/jogging-tracker/internal/validation"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Type   string            `json:"type"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, ErrorResponse{Type: code, Detail: detail})
}

func writeValidation(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Type:   "validation_failed",
		Detail: "invalid input",
		Fields: fields,
	})
}

// writeDomainError maps service errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidation(w, verr.Fields)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", "you do not have permission to perform this action")
	case errors.Is(err, domain.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "server_error", "internal server error")
	}
}

// decodeJSON strictly decodes the body into dst and validates it. The returned map
// holds the top-level keys present in the payload so callers can tell an explicit
// null from an omitted field. On failure the response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) (map[string]json.RawMessage, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to read body")
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", fmt.Sprintf("unable to parse body: %v", err))
		return nil, false
	}

	var present map[string]json.RawMessage
	if err := json.Unmarshal(body, &present); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "body must be a JSON object")
		return nil, false
	}

	if fields := validation.Struct(dst); fields != nil {
		writeValidation(w, fields)
		return nil, false
	}
	return present, true
}

// requester returns the authenticated requester; auth middleware guarantees it on protected routes.
func requester(w http.ResponseWriter, r *http.Request) (domain.Requester, bool) {
	req, ok := auth.FromContext(r.Context())
	if !ok {
		writeDomainError(w, r, domain.ErrUnauthenticated)
	}
	return req, ok
}
