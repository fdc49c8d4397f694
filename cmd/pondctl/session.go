package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iota-uz/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/aquaops/pond-miniapp/modules"
	"github.com/aquaops/pond-miniapp/modules/miniapp"
	"github.com/aquaops/pond-miniapp/modules/miniapp/infrastructure/persistence"
	"github.com/aquaops/pond-miniapp/modules/miniapp/services"
	"github.com/aquaops/pond-miniapp/pkg/application"
	"github.com/aquaops/pond-miniapp/pkg/composables"
	"github.com/aquaops/pond-miniapp/pkg/configuration"
	"github.com/aquaops/pond-miniapp/pkg/intl"
	"github.com/aquaops/pond-miniapp/pkg/serrors"
	"github.com/aquaops/pond-miniapp/pkg/telegram"
)

// session is the in-process application a command runs against. Drafts live
// in memory for the lifetime of the command.
type session struct {
	app application.Application
	ctx context.Context
}

func newSession(ctx context.Context, flags *globalFlags) (*session, error) {
	conf := configuration.Use()
	if flags.backendURL != "" {
		conf.Backend.URL = flags.backendURL
	}

	app := application.New(&application.ApplicationOptions{
		Logger:             conf.Logger(),
		SupportedLanguages: conf.SupportedLanguages,
	})
	err := modules.Load(app, miniapp.NewModule(&miniapp.ModuleOptions{
		Config:     conf,
		Repository: persistence.NewInmemDraftRepository(),
	}))
	if err != nil {
		return nil, err
	}

	tag, err := language.Parse(flags.lang)
	if err != nil {
		return nil, withCode(exitUsage, err)
	}
	ctx = intl.WithLocale(ctx, tag)
	ctx = intl.WithLocalizer(ctx, i18n.NewLocalizer(app.Bundle(), tag.String()))

	if raw := strings.TrimSpace(flags.initData); raw != "" {
		data, err := telegram.ParseInitData(raw)
		if err != nil {
			data = telegram.InitData{Raw: raw}
		}
		ctx = composables.WithInitData(ctx, data)
	}
	return &session{app: app, ctx: ctx}, nil
}

// explain rewrites service errors into localized text for the terminal,
// keeping the exit code of the original.
func (s *session) explain(err error) error {
	if err == nil {
		return nil
	}
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		msg := validationErr.Field + ": " + intl.Localize(s.ctx, validationErr.MessageID, nil)
		if len(validationErr.Suggestions) > 0 {
			msg += " (" + strings.Join(validationErr.Suggestions, ", ") + "?)"
		}
		return withCode(exitValidation, errors.New(msg))
	}
	var rejection *services.RejectionError
	if errors.As(err, &rejection) && rejection.Message != "" {
		return withCode(exitRejected, errors.New(rejection.Message))
	}
	var coded *serrors.BaseError
	if errors.As(err, &coded) {
		return withCode(exitCode(err), fmt.Errorf("%s: %w", intl.Localize(s.ctx, coded.LocaleKey, nil), err))
	}
	return err
}
