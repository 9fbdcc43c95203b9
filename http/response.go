package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/formfill"
)

// Plain text bodies of the fill endpoint failures, one per pipeline phase.
const (
	MsgSchemaFetch   = "Error while downloading validation schema"
	MsgTemplateFetch = "Error while downloading pdf template"
	MsgFill          = "Error while filling pdf"
	MsgInvalidValues = "Invalid values found"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// InvalidValuesResponse is the body of a rejected submission.
type InvalidValuesResponse struct {
	Error         string               `json:"error"`
	InvalidFields []formfill.Violation `json:"invalidFields"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// WritePlainError writes message as a text/plain response.
func WritePlainError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(message))
}

// HandleError writes appropriate error response based on error type
func HandleError(w http.ResponseWriter, err error) {
	slog.Error("request error", "error", err)

	var verr *formfill.ValidationError
	if errors.As(err, &verr) {
		WriteError(w, http.StatusBadRequest, "invalid_values", verr.Error())
		return
	}

	switch formfill.PhaseOf(err) {
	case formfill.PhaseSchema:
		WriteError(w, http.StatusInternalServerError, "schema_unavailable", MsgSchemaFetch)
		return
	case formfill.PhaseTemplate:
		WriteError(w, http.StatusInternalServerError, "template_unavailable", MsgTemplateFetch)
		return
	case formfill.PhaseFill:
		WriteError(w, http.StatusInternalServerError, "form_error", "Error while reading pdf form")
		return
	}

	if errors.Is(err, formfill.ErrInvalidInput) {
		WriteError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}

	// Default internal error
	WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}

func logError(r *http.Request, err error) {
	slog.Error("request error",
		"id", RequestIDFromContext(r.Context()),
		"phase", formfill.PhaseOf(err),
		"error", err,
	)
}
