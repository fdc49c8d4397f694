// Package validation renders go-playground/validator failures in the
// caller's language.
package validation

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/ru"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	rutranslations "github.com/go-playground/validator/v10/translations/ru"
	"github.com/sirupsen/logrus"

	"github.com/aquaops/pond-miniapp/pkg/constants"
	"github.com/aquaops/pond-miniapp/pkg/intl"
)

var (
	once sync.Once
	uni  *ut.UniversalTranslator
)

func setup() {
	ruLocale := ru.New()
	uni = ut.New(ruLocale, ruLocale, en.New())

	ruTrans, _ := uni.GetTranslator("ru")
	if err := rutranslations.RegisterDefaultTranslations(constants.Validate, ruTrans); err != nil {
		logrus.WithError(err).Error("failed to register ru validator translations")
	}
	enTrans, _ := uni.GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(constants.Validate, enTrans); err != nil {
		logrus.WithError(err).Error("failed to register en validator translations")
	}
}

// Translator returns the translator of the request locale, Russian when the
// locale has none.
func Translator(ctx context.Context) ut.Translator {
	once.Do(setup)
	base, _ := intl.UseLocale(ctx).Base()
	trans, found := uni.GetTranslator(base.String())
	if !found {
		trans, _ = uni.GetTranslator("ru")
	}
	return trans
}

// Struct validates v and returns the failures keyed by field name. An empty
// map means v is valid.
func Struct(ctx context.Context, v any) map[string]string {
	trans := Translator(ctx)
	out := map[string]string{}
	err := constants.Validate.Struct(v)
	if err == nil {
		return out
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		out["_"] = err.Error()
		return out
	}
	for _, fe := range errs {
		out[fe.Field()] = fe.Translate(trans)
	}
	return out
}
