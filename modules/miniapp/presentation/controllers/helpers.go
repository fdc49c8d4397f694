package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/aquaops/pond-miniapp/modules/miniapp/domain/aggregates/draft"
	"github.com/aquaops/pond-miniapp/modules/miniapp/domain/entities/formvariant"
	"github.com/aquaops/pond-miniapp/modules/miniapp/services"
	"github.com/aquaops/pond-miniapp/pkg/composables"
	"github.com/aquaops/pond-miniapp/pkg/httpapi"
	"github.com/aquaops/pond-miniapp/pkg/intl"
	"github.com/aquaops/pond-miniapp/pkg/rowlist"
	"github.com/aquaops/pond-miniapp/pkg/serrors"
)

const maxBodyBytes = 64 << 10

var errBadRequest = serrors.NewError("BAD_REQUEST", "malformed request", "Errors.BadRequest")

func writeJSON(w http.ResponseWriter, status int, payload any) {
	_ = httpapi.WriteJSON(w, status, payload)
}

func writeCoded(w http.ResponseWriter, r *http.Request, status int, err *serrors.BaseError) {
	l, _ := intl.UseLocalizer(r.Context())
	_ = httpapi.WriteBaseError(w, status, err, l)
}

func writeLocalized(w http.ResponseWriter, r *http.Request, status int, code, messageID string) {
	_ = httpapi.WriteError(w, status, code, intl.Localize(r.Context(), messageID, nil), nil)
}

// writeServiceError maps a service failure onto the API error envelope.
// rejectedID names the message shown when the backend refuses without a
// reason of its own.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, rejectedID string) {
	ctx := r.Context()

	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		_ = httpapi.WriteValidationError(w, validationErr.Field, intl.Localize(ctx, validationErr.MessageID, nil), validationErr.Suggestions)
		return
	}
	var rejection *services.RejectionError
	if errors.As(err, &rejection) {
		message := rejection.Message
		if message == "" {
			message = intl.Localize(ctx, rejectedID, nil)
		}
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "SERVER_REJECTED", message, nil)
		return
	}

	switch {
	case errors.Is(err, composables.ErrNoIdentity):
		writeLocalized(w, r, http.StatusUnauthorized, "IDENTITY_REQUIRED", "Errors.IdentityRequired")
	case errors.Is(err, services.ErrAuthorizationDenied):
		writeCoded(w, r, http.StatusForbidden, services.ErrAuthorizationDenied)
	case errors.Is(err, services.ErrSubmissionInProgress):
		writeCoded(w, r, http.StatusConflict, services.ErrSubmissionInProgress)
	case errors.Is(err, services.ErrUsersLoadFailed):
		writeCoded(w, r, http.StatusBadGateway, services.ErrUsersLoadFailed)
	case errors.Is(err, services.ErrBackendUnavailable):
		writeCoded(w, r, http.StatusBadGateway, services.ErrBackendUnavailable)
	case errors.Is(err, services.ErrSelfDelete):
		writeCoded(w, r, http.StatusConflict, services.ErrSelfDelete)
	case errors.Is(err, services.ErrUnknownAction):
		writeCoded(w, r, http.StatusNotFound, services.ErrUnknownAction)
	case errors.Is(err, formvariant.ErrUnknownVariant):
		writeLocalized(w, r, http.StatusNotFound, "UNKNOWN_VARIANT", "Forms.Errors.UnknownVariant")
	case errors.Is(err, formvariant.ErrUnknownField), errors.Is(err, rowlist.ErrUnknownField):
		writeLocalized(w, r, http.StatusNotFound, "UNKNOWN_FIELD", "Forms.Errors.UnknownField")
	case errors.Is(err, draft.ErrNoRows):
		writeLocalized(w, r, http.StatusNotFound, "NO_ROWS", "Forms.Errors.NoRows")
	case errors.Is(err, draft.ErrInputRejected):
		writeLocalized(w, r, http.StatusUnprocessableEntity, "INPUT_REJECTED", "Forms.Errors.InputRejected")
	default:
		composables.UseLogger(ctx).WithError(err).Error("request failed")
		writeLocalized(w, r, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Errors.Internal")
	}
}

// decodeBody reads a JSON or urlencoded body into dst. An empty body leaves
// dst untouched.
func decodeBody[T any](r *http.Request, dst T) (T, error) {
	if r.Body == nil {
		return dst, nil
	}
	r.Body = io.NopCloser(io.LimitReader(r.Body, maxBodyBytes))
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		return composables.UseForm(dst, r)
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return dst, nil
	}
	return dst, err
}

func validationFailed(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	_ = httpapi.WriteFieldErrors(w, "INVALID_REQUEST", intl.Localize(r.Context(), "Errors.BadRequest", nil), fields)
}

func rowID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["row"])
	return id, err == nil && id > 0
}
