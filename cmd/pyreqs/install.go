package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/pyreqs/internal/app/requirements"
	"github.com/alexisbeaulieu97/pyreqs/internal/tui"
)

type installOptions struct {
	noTUI bool
}

func newInstallCmd(root *rootFlags) *cobra.Command {
	opts := &installOptions{}

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install every declared requirement that is not satisfied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, root, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.noTUI, "no-tui", false, "Stream pip output as log lines even on a terminal")

	return cmd
}

func runInstall(cmd *cobra.Command, root *rootFlags, opts *installOptions) error {
	interactive := !opts.noTUI && isTerminalWriter(cmd.OutOrStdout())

	logOut := cmd.ErrOrStderr()
	if interactive {
		logOut = io.Discard
	}
	sess, err := openSession(root, logOut)
	if err != nil {
		return err
	}
	defer sess.close()

	prepared, err := sess.prepare(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	title := prepared.Config.Name
	state := tui.NewModel(title, cancel)

	var (
		observer   *tui.Observer
		program    *tea.Program
		programErr error
	)
	done := make(chan struct{})

	if interactive {
		program = tea.NewProgram(state, tea.WithOutput(cmd.OutOrStdout()))
		observer = tui.NewProgramObserver(program)
		go func() {
			_, programErr = program.Run()
			close(done)
		}()
	} else {
		observer = tui.NewStateObserver(&state)
		close(done)
	}

	svc := requirements.NewService(prepared, requirements.Options{
		Logger:      sess.log,
		Metrics:     sess.metrics,
		Observer:    observer,
		QuietOutput: interactive,
	})
	outcome, installErr := svc.InstallRequirements(ctx)

	finished := tui.FinishedMsg{Err: installErr}
	if outcome != nil && outcome.Final != nil {
		finished.Remaining = outcome.Final.Specs()
	}
	observer.Dispatch(finished)

	<-done
	if programErr != nil {
		return programErr
	}
	if !interactive {
		fmt.Fprint(cmd.OutOrStdout(), state.View())
	}

	if installErr != nil {
		return installErr
	}
	if !outcome.Complete() {
		return &unsatisfiedError{specs: outcome.Final.Specs()}
	}
	return nil
}
