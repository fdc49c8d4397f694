package intl

import (
	"context"
	"errors"

	"github.com/iota-uz/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

var ErrNoLocalizer = errors.New("localizer not found")

type localizerKey struct{}
type localeKey struct{}

func WithLocalizer(ctx context.Context, l *i18n.Localizer) context.Context {
	return context.WithValue(ctx, localizerKey{}, l)
}

func UseLocalizer(ctx context.Context) (*i18n.Localizer, bool) {
	l, ok := ctx.Value(localizerKey{}).(*i18n.Localizer)
	return l, ok
}

func WithLocale(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, localeKey{}, tag)
}

// UseLocale returns the request locale, or Russian when none was negotiated.
func UseLocale(ctx context.Context) language.Tag {
	tag, ok := ctx.Value(localeKey{}).(language.Tag)
	if !ok {
		return language.Russian
	}
	return tag
}

// Localize renders messageID, falling back to the id itself when the
// localizer is absent or the message is missing.
func Localize(ctx context.Context, messageID string, data map[string]string) string {
	l, ok := UseLocalizer(ctx)
	if !ok {
		return messageID
	}
	msg, err := l.Localize(&i18n.LocalizeConfig{MessageID: messageID, TemplateData: data})
	if err != nil || msg == "" {
		return messageID
	}
	return msg
}
