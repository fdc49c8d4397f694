package middleware

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aquaops/pond-miniapp/pkg/composables"
	"github.com/aquaops/pond-miniapp/pkg/constants"
	"github.com/aquaops/pond-miniapp/pkg/httpapi"
	"github.com/aquaops/pond-miniapp/pkg/intl"
	"github.com/aquaops/pond-miniapp/pkg/telegram"
)

// ProvideInitData parses the Telegram init data header into the request
// context. A header that cannot be parsed is still kept verbatim so it can be
// forwarded to the backend, which remains the authority on identity.
func ProvideInitData() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(constants.InitDataHeader)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			logger := composables.UseLogger(ctx)
			data, err := telegram.ParseInitData(raw)
			if err != nil {
				logger.WithError(err).Debug("unusable telegram init data")
				data = telegram.InitData{Raw: raw}
			} else {
				logger = logger.WithField("telegram-user-id", data.UserID())
				ctx = composables.WithLogger(ctx, logger)
			}
			next.ServeHTTP(w, r.WithContext(composables.WithInitData(ctx, data)))
		})
	}
}

// RequireIdentity rejects requests that carry no usable Telegram user.
func RequireIdentity() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := composables.UseInitData(r.Context()); err != nil {
				_ = httpapi.WriteError(
					w,
					http.StatusUnauthorized,
					"IDENTITY_REQUIRED",
					intl.Localize(r.Context(), "Errors.IdentityRequired", nil),
					nil,
				)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
