package authz

import (
	"fmt"

	"github.com/aquaops/pond-miniapp/pkg/serrors"
)

const (
	errorCodeForbidden = "AUTHORIZATION_DENIED"
	errorLocaleKey     = "Admin.Errors.AccessDenied"
)

// ErrForbidden matches every denial through errors.Is.
var ErrForbidden = serrors.NewError(errorCodeForbidden, "permission denied", errorLocaleKey)

// forbiddenError builds a standardized error for denied policies.
func forbiddenError(req Request) *serrors.BaseError {
	return ErrForbidden.WithTemplateData(map[string]string{
		"object":  req.Object,
		"action":  req.Action,
		"subject": req.Subject,
	})
}

// configError standardizes configuration validation errors.
func configError(msg string, args ...any) error {
	return fmt.Errorf("authz: "+msg, args...)
}
