package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aquaops/pond-miniapp/modules/miniapp/services"
)

type catalogOutput struct {
	Kind        string   `json:"kind"`
	Items       []string `json:"items,omitempty"`
	Match       string   `json:"match,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func newCatalogCmd(flags *globalFlags) *cobra.Command {
	var match string

	cmd := &cobra.Command{
		Use:       "catalog {locations|fish-types}",
		Short:     "List a catalog or find entries close to --match",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(services.CatalogLocations), string(services.CatalogFishTypes)},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			catalogs := s.app.Service(services.CatalogService{}).(*services.CatalogService)
			kind := services.CatalogKind(args[0])

			out := catalogOutput{Kind: string(kind), Match: match}
			if match != "" {
				out.Suggestions = catalogs.Suggest(s.ctx, kind, match)
				return writeJSON(cmd.OutOrStdout(), out)
			}

			if kind == services.CatalogLocations {
				out.Items, err = catalogs.Locations(s.ctx)
			} else {
				out.Items, err = catalogs.FishTypes(s.ctx)
			}
			if err != nil {
				return withCode(exitBackend, fmt.Errorf("load %s: %w", kind, err))
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&match, "match", "", "Print the closest catalog entries instead of the full list")
	return cmd
}
