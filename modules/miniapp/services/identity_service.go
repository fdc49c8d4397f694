package services

import (
	"context"
	"fmt"

	"github.com/aquaops/pond-miniapp/pkg/authz"
	"github.com/aquaops/pond-miniapp/pkg/backend"
	"github.com/aquaops/pond-miniapp/pkg/composables"
)

type UserBackend interface {
	CurrentUser(ctx context.Context, initData string) (*backend.User, error)
	Users(ctx context.Context, initData string) ([]backend.User, error)
	UpdateUser(ctx context.Context, initData string, req backend.UpdateUserRequest) (backend.Result, error)
	DeleteUser(ctx context.Context, initData string, req backend.DeleteUserRequest) (backend.Result, error)
}

type Authorizer interface {
	Authorize(ctx context.Context, req authz.Request) error
}

// IdentityService resolves the caller's backend user record and role. The
// admin check only drives what the mini app offers; the backend remains the
// authority on every admin call.
type IdentityService struct {
	backend UserBackend
	authz   Authorizer
}

func NewIdentityService(b UserBackend, a Authorizer) *IdentityService {
	return &IdentityService{backend: b, authz: a}
}

// Current returns the caller's user record, nil for callers the backend does
// not know.
func (s *IdentityService) Current(ctx context.Context) (*backend.User, error) {
	if _, err := composables.UseInitData(ctx); err != nil {
		return nil, err
	}
	user, err := s.backend.CurrentUser(ctx, composables.UseRawInitData(ctx))
	if err != nil {
		composables.UseLogger(ctx).WithError(err).Warn("current user lookup failed")
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	return user, nil
}

func (s *IdentityService) IsAdmin(ctx context.Context, user *backend.User) bool {
	return s.authorize(ctx, user, authz.ObjectUsers, "list") == nil
}

// Authorize resolves the caller and checks action on object for their role.
// Unknown callers are always denied.
func (s *IdentityService) Authorize(ctx context.Context, object, action string) (*backend.User, error) {
	user, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, user, object, action); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *IdentityService) authorize(ctx context.Context, user *backend.User, object, action string) error {
	if user == nil {
		return ErrAuthorizationDenied
	}
	req := authz.NewRequest(authz.SubjectForRole(string(user.Role)), object, action)
	if err := s.authz.Authorize(ctx, req); err != nil {
		composables.UseLogger(ctx).WithField("telegram-user-id", user.TelegramID).Info("admin action denied")
		return ErrAuthorizationDenied
	}
	return nil
}
