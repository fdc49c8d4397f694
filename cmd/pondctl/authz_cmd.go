package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aquaops/pond-miniapp/pkg/authz"
)

type inspectOutput struct {
	Subject   string   `json:"subject"`
	Object    string   `json:"object"`
	Action    string   `json:"action"`
	Allowed   bool     `json:"allowed"`
	Trace     []string `json:"trace,omitempty"`
	LatencyUS int64    `json:"latency_us"`
}

func newAuthzCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authz",
		Short: "Inspect the role policy",
	}

	var (
		role   string
		object string
		action string
	)
	inspect := &cobra.Command{
		Use:   "inspect",
		Short: "Evaluate a role against an object and action",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := authz.NewService(authz.DefaultConfig())
			if err != nil {
				return err
			}
			req := authz.NewRequest(authz.SubjectForRole(role), object, action)
			res, err := svc.Inspect(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), inspectOutput{
				Subject:   res.Request.Subject,
				Object:    res.Request.Object,
				Action:    res.Request.Action,
				Allowed:   res.Allowed,
				Trace:     res.Trace,
				LatencyUS: res.Latency.Microseconds(),
			})
		},
	}
	inspect.Flags().StringVar(&role, "role", "USER", "Backend role (ADMIN, USER)")
	inspect.Flags().StringVar(&object, "object", authz.ObjectUsers, "Policy object")
	inspect.Flags().StringVar(&action, "action", "list", "Action")
	cmd.AddCommand(inspect, newAuthzVerifyCmd())
	return cmd
}

type fixtureCase struct {
	Role    string `yaml:"role"`
	Object  string `yaml:"object"`
	Action  string `yaml:"action"`
	Allowed bool   `yaml:"allowed"`
	Note    string `yaml:"note,omitempty"`
}

type mismatch struct {
	Role     string `json:"role"`
	Object   string `json:"object"`
	Action   string `json:"action"`
	Expected bool   `json:"expected"`
	Casbin   bool   `json:"casbin"`
	Note     string `json:"note,omitempty"`
}

type verifyOutput struct {
	Checked    int        `json:"checked"`
	Mismatches []mismatch `json:"mismatches,omitempty"`
}

func newAuthzVerifyCmd() *cobra.Command {
	var (
		fixtures   string
		modelPath  string
		policyPath string
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the policy against a YAML fixture file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cases, err := loadFixtures(fixtures)
			if err != nil {
				return withCode(exitUsage, err)
			}
			cfg := authz.DefaultConfig()
			cfg.ModelPath = modelPath
			cfg.PolicyPath = policyPath
			svc, err := authz.NewService(cfg)
			if err != nil {
				return err
			}
			out, err := verifyFixtures(cmd, svc, cases)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if len(out.Mismatches) > 0 {
				return withCode(exitDenied, fmt.Errorf("%d of %d fixtures disagree with the policy", len(out.Mismatches), out.Checked))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fixtures, "fixtures", "", "YAML fixture file")
	cmd.Flags().StringVar(&modelPath, "model", "", "Casbin model path (embedded when empty)")
	cmd.Flags().StringVar(&policyPath, "policy", "", "Casbin policy path (embedded when empty)")
	_ = cmd.MarkFlagRequired("fixtures")
	return cmd
}

func loadFixtures(path string) ([]fixtureCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cases []fixtureCase
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return cases, nil
}

func verifyFixtures(cmd *cobra.Command, svc *authz.Service, cases []fixtureCase) (verifyOutput, error) {
	out := verifyOutput{}
	for _, fx := range cases {
		req := authz.NewRequest(authz.SubjectForRole(fx.Role), fx.Object, fx.Action)
		allowed, err := svc.Check(cmd.Context(), req)
		if err != nil {
			return out, err
		}
		out.Checked++
		if allowed != fx.Allowed {
			out.Mismatches = append(out.Mismatches, mismatch{
				Role:     fx.Role,
				Object:   fx.Object,
				Action:   req.Action,
				Expected: fx.Allowed,
				Casbin:   allowed,
				Note:     fx.Note,
			})
		}
	}
	return out, nil
}
