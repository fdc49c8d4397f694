package main

import (
	"os"

	"github.com/spf13/cobra"
)

type globalFlags struct {
	initData   string
	backendURL string
	lang       string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "pondctl",
		Short:         "Pond operations from a terminal: catalogs, form submission, user management",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.initData, "init-data", os.Getenv("POND_INIT_DATA"), "Telegram init data forwarded to the backend (env POND_INIT_DATA)")
	cmd.PersistentFlags().StringVar(&flags.backendURL, "backend-url", "", "Backend base URL (defaults to BACKEND_URL)")
	cmd.PersistentFlags().StringVar(&flags.lang, "lang", "ru", "Message language (ru, en)")

	cmd.AddCommand(
		newCatalogCmd(flags),
		newSubmitCmd(flags),
		newUsersCmd(flags),
		newAuthzCmd(),
	)
	return cmd
}
