package services

import (
	"context"
	"fmt"

	"github.com/aquaops/pond-miniapp/pkg/authz"
	"github.com/aquaops/pond-miniapp/pkg/backend"
	"github.com/aquaops/pond-miniapp/pkg/composables"
	"github.com/aquaops/pond-miniapp/pkg/serrors"
)

type UserAction string

const (
	ActionAccept  UserAction = "accept"
	ActionDecline UserAction = "decline"
	ActionPromote UserAction = "promote"
	ActionDemote  UserAction = "demote"
	ActionDelete  UserAction = "delete"
)

var ErrUsersLoadFailed = serrors.NewError(
	"USERS_LOAD_FAILED",
	"Ошибка загрузки пользователей",
	"Admin.Errors.UsersLoad",
)

// ManagedUser is a user record together with the actions the current editor
// may take on it.
type ManagedUser struct {
	backend.User
	Actions []UserAction
}

// ActionsFor lists what editorID may do to target: status changes that are
// not already in effect, the one role change that applies, and delete for
// anyone but the editor.
func ActionsFor(target backend.User, editorID int64) []UserAction {
	actions := make([]UserAction, 0, 4)
	if target.Status != backend.StatusAccepted {
		actions = append(actions, ActionAccept)
	}
	if target.Status != backend.StatusDeclined {
		actions = append(actions, ActionDecline)
	}
	if target.Role == backend.RoleAdmin {
		actions = append(actions, ActionDemote)
	} else {
		actions = append(actions, ActionPromote)
	}
	if target.TelegramID != editorID {
		actions = append(actions, ActionDelete)
	}
	return actions
}

// update returns the change an action applies to the target user.
func (a UserAction) update() (backend.Role, backend.Status, bool) {
	switch a {
	case ActionAccept:
		return "", backend.StatusAccepted, true
	case ActionDecline:
		return "", backend.StatusDeclined, true
	case ActionPromote:
		return backend.RoleAdmin, "", true
	case ActionDemote:
		return backend.RoleUser, "", true
	}
	return "", "", false
}

// UserAdminService runs the user management screen. Each call checks the
// caller is an admin before anything else reaches the backend.
type UserAdminService struct {
	backend  UserBackend
	identity *IdentityService
}

func NewUserAdminService(b UserBackend, identity *IdentityService) *UserAdminService {
	return &UserAdminService{backend: b, identity: identity}
}

func (s *UserAdminService) List(ctx context.Context) ([]ManagedUser, error) {
	editor, err := s.identity.Authorize(ctx, authz.ObjectUsers, "list")
	if err != nil {
		return nil, err
	}
	users, err := s.backend.Users(ctx, composables.UseRawInitData(ctx))
	if err != nil {
		composables.UseLogger(ctx).WithError(err).Error("failed to load users")
		return nil, fmt.Errorf("%w: %w", ErrUsersLoadFailed, err)
	}
	out := make([]ManagedUser, 0, len(users))
	for _, u := range users {
		out = append(out, ManagedUser{User: u, Actions: ActionsFor(u, editor.TelegramID)})
	}
	return out, nil
}

func (s *UserAdminService) Accept(ctx context.Context, userID int64) error {
	return s.Apply(ctx, userID, ActionAccept)
}

func (s *UserAdminService) Decline(ctx context.Context, userID int64) error {
	return s.Apply(ctx, userID, ActionDecline)
}

func (s *UserAdminService) Promote(ctx context.Context, userID int64) error {
	return s.Apply(ctx, userID, ActionPromote)
}

func (s *UserAdminService) Demote(ctx context.Context, userID int64) error {
	return s.Apply(ctx, userID, ActionDemote)
}

// Apply sends the role or status change of action for userID.
func (s *UserAdminService) Apply(ctx context.Context, userID int64, action UserAction) error {
	role, status, ok := action.update()
	if !ok {
		return ErrUnknownAction
	}
	editor, err := s.identity.Authorize(ctx, authz.ObjectUsers, "update")
	if err != nil {
		return err
	}
	res, err := s.backend.UpdateUser(ctx, composables.UseRawInitData(ctx), backend.UpdateUserRequest{
		EditorID: editor.TelegramID,
		UserID:   userID,
		Role:     role,
		Status:   status,
	})
	return s.result(ctx, "update", res, err)
}

func (s *UserAdminService) Delete(ctx context.Context, userID int64) error {
	editor, err := s.identity.Authorize(ctx, authz.ObjectUsers, "delete")
	if err != nil {
		return err
	}
	if editor.TelegramID == userID {
		return ErrSelfDelete
	}
	res, err := s.backend.DeleteUser(ctx, composables.UseRawInitData(ctx), backend.DeleteUserRequest{
		EditorID: editor.TelegramID,
		UserID:   userID,
	})
	return s.result(ctx, "delete", res, err)
}

func (s *UserAdminService) result(ctx context.Context, op string, res backend.Result, err error) error {
	logger := composables.UseLogger(ctx).WithField("op", op)
	if err != nil {
		logger.WithError(err).Error("user admin call failed")
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	if !res.Success {
		logger.WithField("reason", res.Reason()).Warn("user admin call rejected")
		return &RejectionError{Message: res.Reason()}
	}
	return nil
}
