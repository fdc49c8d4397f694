package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aquaops/pond-miniapp/modules/miniapp/presentation/mappers"
	"github.com/aquaops/pond-miniapp/modules/miniapp/services"
	"github.com/aquaops/pond-miniapp/pkg/intl"
)

type userActionOutput struct {
	UserID  int64  `json:"userId"`
	Action  string `json:"action"`
	Message string `json:"message"`
}

func newUsersCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage mini app users (admins only)",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			users, err := adminService(s).List(s.ctx)
			if err != nil {
				return s.explain(err)
			}
			return writeJSON(cmd.OutOrStdout(), mappers.UsersToViewModels(users))
		},
	})
	for _, action := range []services.UserAction{
		services.ActionAccept,
		services.ActionDecline,
		services.ActionPromote,
		services.ActionDemote,
	} {
		cmd.AddCommand(newUserActionCmd(flags, string(action), func(s *session, id int64) error {
			return adminService(s).Apply(s.ctx, id, action)
		}))
	}
	cmd.AddCommand(newUserActionCmd(flags, "delete", func(s *session, id int64) error {
		return adminService(s).Delete(s.ctx, id)
	}))
	return cmd
}

func newUserActionCmd(flags *globalFlags, name string, run func(s *session, id int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <telegram-id>",
		Short: "Apply " + name + " to a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return withCode(exitUsage, fmt.Errorf("invalid telegram id %q", args[0]))
			}
			s, err := newSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			if err := run(s, id); err != nil {
				return s.explain(err)
			}
			messageID := "Admin.Messages.Updated"
			if name == "delete" {
				messageID = "Admin.Messages.Deleted"
			}
			return writeJSON(cmd.OutOrStdout(), userActionOutput{
				UserID:  id,
				Action:  name,
				Message: intl.Localize(s.ctx, messageID, nil),
			})
		},
	}
}

func adminService(s *session) *services.UserAdminService {
	return s.app.Service(services.UserAdminService{}).(*services.UserAdminService)
}
