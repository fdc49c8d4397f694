package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/iota-uz/go-i18n/v2/i18n"

	"github.com/aquaops/pond-miniapp/pkg/serrors"
)

// ErrorEnvelope is the JSON body of every failed API call.
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	// Suggestions are close matches for a value missing from a catalog.
	Suggestions []string `json:"suggestions,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}

// WriteFieldErrors reports per-field validation messages.
func WriteFieldErrors(w http.ResponseWriter, code, message string, fields map[string]string) error {
	return WriteJSON(w, http.StatusUnprocessableEntity, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Fields:  fields,
	})
}

// WriteValidationError reports the first failing field of a form.
func WriteValidationError(w http.ResponseWriter, field, message string, suggestions []string) error {
	return WriteJSON(w, http.StatusUnprocessableEntity, &ErrorEnvelope{
		Code:        "VALIDATION_ERROR",
		Message:     message,
		Fields:      map[string]string{field: message},
		Suggestions: suggestions,
	})
}

// WriteBaseError renders a coded error through the localizer.
func WriteBaseError(w http.ResponseWriter, status int, err *serrors.BaseError, l *i18n.Localizer) error {
	return WriteError(w, status, err.Code, err.Localize(l), err.TemplateData)
}
