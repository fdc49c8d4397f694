package composables

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/aquaops/pond-miniapp/pkg/constants"
	"github.com/aquaops/pond-miniapp/pkg/shared"
	"github.com/aquaops/pond-miniapp/pkg/telegram"
)

var (
	ErrNoIdentity = errors.New("telegram identity not found")
)

type Params struct {
	IP        string
	UserAgent string
	Request   *http.Request
	Writer    http.ResponseWriter
}

// UseParams returns the request parameters from the context.
// If the parameters are not found, the second return value will be false.
func UseParams(ctx context.Context) (*Params, bool) {
	params, ok := ctx.Value(constants.ParamsKey).(*Params)
	return params, ok
}

// WithParams returns a new context with the request parameters.
func WithParams(ctx context.Context, params *Params) context.Context {
	return context.WithValue(ctx, constants.ParamsKey, params)
}

// UseLogger returns the request scoped logger, or an entry on the standard
// logger outside of a request.
func UseLogger(ctx context.Context) *logrus.Entry {
	if logger, ok := ctx.Value(constants.LoggerKey).(*logrus.Entry); ok {
		return logger
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, constants.LoggerKey, logger)
}

// WithInitData stores the caller's parsed Telegram init data.
func WithInitData(ctx context.Context, data telegram.InitData) context.Context {
	return context.WithValue(ctx, constants.InitDataKey, data)
}

// UseInitData returns the caller's init data or ErrNoIdentity.
func UseInitData(ctx context.Context) (telegram.InitData, error) {
	data, ok := ctx.Value(constants.InitDataKey).(telegram.InitData)
	if !ok || data.UserID() == 0 {
		return telegram.InitData{}, ErrNoIdentity
	}
	return data, nil
}

// UseRawInitData returns the opaque header value to forward, or "".
func UseRawInitData(ctx context.Context) string {
	data, ok := ctx.Value(constants.InitDataKey).(telegram.InitData)
	if !ok {
		return ""
	}
	return data.Raw
}

func UseForm[T any](v T, r *http.Request) (T, error) {
	if err := r.ParseForm(); err != nil {
		return v, err
	}
	return v, shared.Decoder.Decode(v, r.Form)
}
