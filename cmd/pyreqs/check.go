package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/pyreqs/internal/app/requirements"
	"github.com/alexisbeaulieu97/pyreqs/internal/model"
	"github.com/alexisbeaulieu97/pyreqs/internal/tui/components"
)

type checkOptions struct {
	jsonOutput bool
}

func newCheckCmd(root *rootFlags) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report which declared requirements are not satisfied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, root, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results in JSON format")

	return cmd
}

func runCheck(cmd *cobra.Command, root *rootFlags, opts *checkOptions) error {
	sess, err := openSession(root, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer sess.close()

	prepared, err := sess.prepare(cmd)
	if err != nil {
		return err
	}

	svc := requirements.NewService(prepared, requirements.Options{Logger: sess.log, Metrics: sess.metrics})
	result, err := svc.FindMissing(cmd.Context())
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		if err := renderCheckJSON(cmd, prepared, result); err != nil {
			return err
		}
	} else {
		renderCheckTable(cmd, prepared, result)
	}

	if !result.Empty() {
		return &unsatisfiedError{specs: result.Specs()}
	}
	return nil
}

func renderCheckTable(cmd *cobra.Command, prepared *requirements.Prepared, result *model.EvaluationResult) {
	out := cmd.OutOrStdout()
	if prepared.Registry.Len() == 0 {
		fmt.Fprintln(out, "No requirements declared.")
		return
	}

	statuses := result.Statuses()
	if len(statuses) > 0 {
		fmt.Fprintln(out, components.NewStatusTable(statuses).View())
	}
	if result.Empty() {
		fmt.Fprintf(out, "All %d requirements satisfied.\n", prepared.Registry.Len())
		return
	}
	fmt.Fprintf(out, "%d of %d requirements missing. Run 'pyreqs install' to install them.\n", result.Len(), prepared.Registry.Len())
}

type checkJSONRequirement struct {
	Spec             string `json:"spec"`
	Name             string `json:"name"`
	Status           string `json:"status"`
	CheckedBy        string `json:"checked_by"`
	InstalledVersion string `json:"installed_version,omitempty"`
	Message          string `json:"message,omitempty"`
	Error            string `json:"error,omitempty"`
}

type checkJSONPayload struct {
	Version      string                 `json:"version"`
	File         string                 `json:"file"`
	Satisfied    bool                   `json:"satisfied"`
	Missing      []string               `json:"missing"`
	Requirements []checkJSONRequirement `json:"requirements"`
}

func renderCheckJSON(cmd *cobra.Command, prepared *requirements.Prepared, result *model.EvaluationResult) error {
	statuses := result.Statuses()
	payload := checkJSONPayload{
		Version:      "1.0",
		File:         prepared.Path,
		Satisfied:    result.Empty(),
		Missing:      result.Specs(),
		Requirements: make([]checkJSONRequirement, len(statuses)),
	}

	for i, st := range statuses {
		payload.Requirements[i] = checkJSONRequirement{
			Spec:             st.Spec,
			Name:             st.Name,
			Status:           string(st.Status),
			CheckedBy:        string(st.Method),
			InstalledVersion: st.InstalledVersion,
			Message:          st.Message,
		}
		if st.Error != nil {
			payload.Requirements[i].Error = st.Error.Error()
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
