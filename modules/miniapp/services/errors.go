package services

import (
	"github.com/aquaops/pond-miniapp/modules/miniapp/domain/entities/formvariant"
	"github.com/aquaops/pond-miniapp/pkg/serrors"
)

// ValidationError is raised before any network call.
type ValidationError = formvariant.ValidationError

var (
	ErrAuthorizationDenied = serrors.NewError(
		"AUTHORIZATION_DENIED",
		"Доступ запрещен. Только администраторы могут просматривать эту страницу.",
		"Admin.Errors.AccessDenied",
	)
	ErrSubmissionInProgress = serrors.NewError(
		"SUBMISSION_IN_PROGRESS",
		"submission already in progress",
		"Forms.Errors.SubmissionInProgress",
	)
	ErrBackendUnavailable = serrors.NewError(
		"BACKEND_UNAVAILABLE",
		"Ошибка сети. Пожалуйста, попробуйте снова.",
		"Forms.Errors.Network",
	)
	ErrSelfDelete = serrors.NewError(
		"SELF_DELETE",
		"an editor cannot delete their own account",
		"Admin.Errors.SelfDelete",
	)
	ErrUnknownAction = serrors.NewError(
		"UNKNOWN_ACTION",
		"unknown user action",
		"Admin.Errors.UnknownAction",
	)
)

// RejectionError is a submission or admin action the backend answered with
// success:false. Message is the server supplied reason, possibly empty.
type RejectionError struct {
	Message string
}

func (e *RejectionError) Error() string {
	if e.Message == "" {
		return "rejected by backend"
	}
	return "rejected by backend: " + e.Message
}
