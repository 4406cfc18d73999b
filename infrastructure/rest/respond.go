package rest

import (
	"chat-desk/auth"
	"chat-desk/errors"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps err to its HTTP status and a {"code","message"} body.
// Internal details never leave the process.
func writeError(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	errors.Log(log, err, "Request failed", "method", r.Method, "path", r.URL.Path)
	message := err.Error()
	switch errors.KindOf(err) {
	case errors.KindInternal:
		message = "internal error"
	case errors.KindPersistence:
		message = "storage unavailable"
	}
	writeJSON(w, errors.HTTPStatus(err), errorBody{Code: errors.Code(err), Message: message})
}

// decodeBody reads a JSON body into out and runs its validation tags.
func decodeBody(r *http.Request, maxBytes int64, out any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBytes))
	if err := decoder.Decode(out); err != nil {
		return errors.Invalid(errors.ErrMalformedPayload, "body", err.Error())
	}
	return auth.Validate(out)
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Invalid(errors.ErrMalformedPayload, name, "not an integer")
	}
	return n, nil
}

func queryBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errors.Invalid(errors.ErrMalformedPayload, name, "not a boolean")
	}
	return &b, nil
}
