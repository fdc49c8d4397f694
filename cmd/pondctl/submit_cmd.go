package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aquaops/pond-miniapp/modules/miniapp/domain/entities/formvariant"
	"github.com/aquaops/pond-miniapp/modules/miniapp/services"
)

type submitOutput struct {
	Variant string `json:"variant"`
	Message string `json:"message"`
}

// assignment is one name=value pair of --set.
type assignment struct {
	name  string
	value string
}

func parseAssignment(raw string) (assignment, error) {
	name, value, ok := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return assignment{}, fmt.Errorf("expected name=value, got %q", raw)
	}
	return assignment{name: name, value: value}, nil
}

// parseRow splits a --row value ("kg=3" or "type=Карп,kg=2.5") into cells.
func parseRow(raw string) ([]assignment, error) {
	parts := strings.Split(raw, ",")
	cells := make([]assignment, 0, len(parts))
	for _, p := range parts {
		a, err := parseAssignment(p)
		if err != nil {
			return nil, err
		}
		cells = append(cells, a)
	}
	return cells, nil
}

func newSubmitCmd(flags *globalFlags) *cobra.Command {
	var (
		date     string
		location string
		fields   []string
		rows     []string
	)

	cmd := &cobra.Command{
		Use:   "submit <variant>",
		Short: "Fill a form and send it to the backend",
		Long: "Fill a form and send it to the backend.\n\nVariants: " +
			strings.Join(formvariant.Keys(), ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			variant := args[0]
			if _, err := formvariant.Get(variant); err != nil {
				return withCode(exitUsage, fmt.Errorf("%w: %q", err, variant))
			}
			sets := make([]assignment, 0, len(fields))
			for _, raw := range fields {
				a, err := parseAssignment(raw)
				if err != nil {
					return withCode(exitUsage, fmt.Errorf("--set: %w", err))
				}
				sets = append(sets, a)
			}
			cells := make([][]assignment, 0, len(rows))
			for _, raw := range rows {
				row, err := parseRow(raw)
				if err != nil {
					return withCode(exitUsage, fmt.Errorf("--row: %w", err))
				}
				cells = append(cells, row)
			}

			s, err := newSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			drafts := s.app.Service(services.DraftService{}).(*services.DraftService)
			submissions := s.app.Service(services.SubmissionService{}).(*services.SubmissionService)

			dto := services.SetSharedDTO{}
			if date != "" {
				dto.Date = &date
			}
			if location != "" {
				dto.Location = &location
			}
			if _, err := drafts.SetShared(s.ctx, dto); err != nil {
				return s.explain(err)
			}
			for _, a := range sets {
				if _, err := drafts.SetField(s.ctx, variant, a.name, a.value); err != nil {
					return fmt.Errorf("field %s: %w", a.name, s.explain(err))
				}
			}
			// Each completed row appends the next blank one, so row i has id i+1.
			for i, row := range cells {
				for _, a := range row {
					if _, err := drafts.UpdateRow(s.ctx, variant, i+1, a.name, a.value); err != nil {
						return fmt.Errorf("row %d %s: %w", i+1, a.name, s.explain(err))
					}
				}
			}

			res, err := submissions.Submit(s.ctx, variant)
			if err != nil {
				return s.explain(err)
			}
			return writeJSON(cmd.OutOrStdout(), submitOutput{Variant: variant, Message: res.Message})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Record date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&location, "location", "", "Pond name")
	cmd.Flags().StringArrayVar(&fields, "set", nil, "Field value as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&rows, "row", nil, "Row cells as name=value[,name=value] (repeatable)")
	return cmd
}
