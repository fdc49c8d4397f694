package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaops/pond-miniapp/modules/miniapp/services"
	"github.com/aquaops/pond-miniapp/pkg/backend"
)

func TestIdentityService_Current(t *testing.T) {
	env := newTestEnv(t)
	user, err := env.identity.Current(userCtx(7))
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.False(t, env.identity.IsAdmin(userCtx(7), user))

	env.backend.user = &backend.User{TelegramID: 7, Role: backend.RoleAdmin}
	user, err = env.identity.Current(userCtx(7))
	require.NoError(t, err)
	assert.True(t, env.identity.IsAdmin(userCtx(7), user))
}

func TestIdentityService_RoleDecidesAdmin(t *testing.T) {
	tests := []struct {
		role  backend.Role
		admin bool
	}{
		{role: backend.RoleAdmin, admin: true},
		{role: backend.RoleUser, admin: false},
		{role: "", admin: false},
		{role: "MODERATOR", admin: false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			env := newTestEnv(t)
			env.backend.user = &backend.User{TelegramID: 7, Role: tt.role}
			ctx := userCtx(7)

			user, err := env.identity.Current(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.admin, env.identity.IsAdmin(ctx, user))

			_, err = env.admin.List(ctx)
			if tt.admin {
				require.NoError(t, err)
				assert.Equal(t, int32(1), env.backend.usersCalls.Load())
				return
			}
			require.ErrorIs(t, err, services.ErrAuthorizationDenied)
			assert.Zero(t, env.backend.usersCalls.Load())
		})
	}
}

func TestUserAdminService_NonAdminDenied(t *testing.T) {
	for _, user := range []*backend.User{nil, {TelegramID: 7, Role: backend.RoleUser}} {
		env := newTestEnv(t)
		env.backend.user = user
		ctx := userCtx(7)

		_, err := env.admin.List(ctx)
		require.ErrorIs(t, err, services.ErrAuthorizationDenied)
		assert.Zero(t, env.backend.usersCalls.Load(), "no user list is fetched")

		require.ErrorIs(t, env.admin.Promote(ctx, 9), services.ErrAuthorizationDenied)
		require.ErrorIs(t, env.admin.Delete(ctx, 9), services.ErrAuthorizationDenied)
		assert.Empty(t, env.backend.updates)
		assert.Empty(t, env.backend.deletes)
	}
}

func TestUserAdminService_Actions(t *testing.T) {
	env := newTestEnv(t)
	env.backend.user = &backend.User{TelegramID: 7, Role: backend.RoleAdmin}
	env.backend.users = []backend.User{{TelegramID: 9, Status: backend.StatusPending}}
	ctx := userCtx(7)

	users, err := env.admin.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, env.backend.users[0], users[0].User)
	assert.Equal(t, []services.UserAction{
		services.ActionAccept,
		services.ActionDecline,
		services.ActionPromote,
		services.ActionDelete,
	}, users[0].Actions)

	require.NoError(t, env.admin.Accept(ctx, 9))
	require.NoError(t, env.admin.Decline(ctx, 9))
	require.NoError(t, env.admin.Promote(ctx, 9))
	require.NoError(t, env.admin.Demote(ctx, 9))
	require.NoError(t, env.admin.Delete(ctx, 9))

	assert.Equal(t, []backend.UpdateUserRequest{
		{EditorID: 7, UserID: 9, Status: backend.StatusAccepted},
		{EditorID: 7, UserID: 9, Status: backend.StatusDeclined},
		{EditorID: 7, UserID: 9, Role: backend.RoleAdmin},
		{EditorID: 7, UserID: 9, Role: backend.RoleUser},
	}, env.backend.updates)
	assert.Equal(t, []backend.DeleteUserRequest{{EditorID: 7, UserID: 9}}, env.backend.deletes)

	require.ErrorIs(t, env.admin.Apply(ctx, 9, "ban"), services.ErrUnknownAction)
}

func TestActionsFor(t *testing.T) {
	tests := []struct {
		name   string
		target backend.User
		want   []services.UserAction
	}{
		{
			name:   "accepted user",
			target: backend.User{TelegramID: 9, Role: backend.RoleUser, Status: backend.StatusAccepted},
			want:   []services.UserAction{services.ActionDecline, services.ActionPromote, services.ActionDelete},
		},
		{
			name:   "declined admin",
			target: backend.User{TelegramID: 9, Role: backend.RoleAdmin, Status: backend.StatusDeclined},
			want:   []services.UserAction{services.ActionAccept, services.ActionDemote, services.ActionDelete},
		},
		{
			name:   "the editor",
			target: backend.User{TelegramID: 7, Role: backend.RoleAdmin, Status: backend.StatusAccepted},
			want:   []services.UserAction{services.ActionDecline, services.ActionDemote},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, services.ActionsFor(tt.target, 7))
		})
	}
}

func TestUserAdminService_SelfDelete(t *testing.T) {
	env := newTestEnv(t)
	env.backend.user = &backend.User{TelegramID: 7, Role: backend.RoleAdmin}

	require.ErrorIs(t, env.admin.Delete(userCtx(7), 7), services.ErrSelfDelete)
	assert.Empty(t, env.backend.deletes)
}

func TestUserAdminService_Rejected(t *testing.T) {
	env := newTestEnv(t)
	env.backend.user = &backend.User{TelegramID: 7, Role: backend.RoleAdmin}
	env.backend.result = backend.Result{Success: false, Error: "cannot demote yourself"}

	err := env.admin.Demote(userCtx(7), 7)
	var rej *services.RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "cannot demote yourself", rej.Message)
}
