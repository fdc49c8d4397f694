package serrors

import (
	"errors"

	"github.com/iota-uz/go-i18n/v2/i18n"
)

// BaseError is an error with a stable machine code and an optional locale key
// used to render a user facing message.
type BaseError struct {
	Code         string
	Message      string
	LocaleKey    string
	TemplateData map[string]string
}

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}

func (e *BaseError) Error() string {
	return e.Message
}

// Is matches any BaseError carrying the same code.
func (e *BaseError) Is(target error) bool {
	var t *BaseError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func (e *BaseError) WithTemplateData(data map[string]string) *BaseError {
	cp := *e
	cp.TemplateData = data
	return &cp
}

// Localize renders the error through the localizer, falling back to Message
// when the key is empty or missing from the bundle.
func (e *BaseError) Localize(l *i18n.Localizer) string {
	if e.LocaleKey == "" || l == nil {
		return e.Message
	}
	msg, err := l.Localize(&i18n.LocalizeConfig{
		MessageID:    e.LocaleKey,
		TemplateData: e.TemplateData,
	})
	if err != nil || msg == "" {
		return e.Message
	}
	return msg
}

// Code returns the code of the first BaseError in the chain, or fallback.
func Code(err error, fallback string) string {
	var base *BaseError
	if errors.As(err, &base) {
		return base.Code
	}
	return fallback
}
