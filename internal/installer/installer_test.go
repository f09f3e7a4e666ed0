package installer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/pyreqs/internal/evaluator"
	"github.com/alexisbeaulieu97/pyreqs/internal/logger"
	"github.com/alexisbeaulieu97/pyreqs/internal/model"
	"github.com/alexisbeaulieu97/pyreqs/internal/probe"
	"github.com/alexisbeaulieu97/pyreqs/internal/requirement"
	pyerrors "github.com/alexisbeaulieu97/pyreqs/pkg/errors"
)

type stubEvaluator struct {
	missing []string
	err     error
	calls   int
}

func (s *stubEvaluator) FindMissing(_ context.Context, reg *requirement.Registry) (*model.EvaluationResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	result := model.NewEvaluationResult()
	for _, spec := range s.missing {
		req, ok := reg.Lookup(spec)
		if ok {
			result.AddMissing(req)
		}
	}
	return result, nil
}

type scriptedPip struct {
	scripts map[string]string
	calls   [][]string
}

func (s *scriptedPip) PipCommand(ctx context.Context, args ...string) *exec.Cmd {
	s.calls = append(s.calls, args)
	spec := args[len(args)-1]
	script, ok := s.scripts[spec]
	if !ok {
		script = "echo Successfully installed " + spec
	}
	if script == "<missing binary>" {
		return exec.CommandContext(ctx, "/definitely/not/python")
	}
	return exec.CommandContext(ctx, "sh", "-c", script)
}

type recordingObserver struct {
	events []string
}

func (r *recordingObserver) InstallStarted(spec string, position, total int) {
	r.events = append(r.events, "start "+spec)
}

func (r *recordingObserver) InstallOutput(spec, line string) {
	r.events = append(r.events, "line "+spec+": "+line)
}

func (r *recordingObserver) InstallFinished(result model.InstallResult) {
	r.events = append(r.events, "done "+result.Spec+" "+string(result.Status))
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}
}

func TestInstallMissingContinuesPastFailures(t *testing.T) {
	skipOnWindows(t)

	reg := requirement.MustNewRegistry(
		requirement.Bare("broken-pkg"),
		requirement.Bare("wheel"),
	)
	pip := &scriptedPip{scripts: map[string]string{
		"broken-pkg": "echo 'ERROR: No matching distribution found for broken-pkg' >&2; exit 1",
	}}
	obs := &recordingObserver{}
	eval := &stubEvaluator{missing: []string{"wheel", "broken-pkg"}}

	inst := New(eval, pip, Options{Observer: obs}, nil, nil)
	report, err := inst.InstallMissing(context.Background(), reg)
	require.NoError(t, err)

	require.Equal(t, 1, eval.calls)
	require.Equal(t, 2, report.Attempted())
	require.Equal(t, 1, report.Failed())
	require.Equal(t, 1, report.Succeeded())

	first := report.Results[0]
	require.Equal(t, "broken-pkg", first.Spec)
	require.Equal(t, model.InstallFailed, first.Status)
	require.Equal(t, 1, first.ExitCode)
	require.Equal(t, "ERROR: No matching distribution found for broken-pkg", first.LastLine)
	var failure *pyerrors.InstallFailure
	require.ErrorAs(t, first.Error, &failure)

	require.Equal(t, model.InstallSucceeded, report.Results[1].Status)
	require.Equal(t, []string{
		"start broken-pkg",
		"line broken-pkg: ERROR: No matching distribution found for broken-pkg",
		"done broken-pkg failed",
		"start wheel",
		"line wheel: Successfully installed wheel",
		"done wheel success",
	}, obs.events)
}

func TestInstallMissingOnlyInstallsUnmetRequirements(t *testing.T) {
	skipOnWindows(t)

	reg := requirement.MustNewRegistry(
		requirement.Bare("wheel"),
		requirement.Bare("pyyaml>=6.0"),
		requirement.Bare("random-word"),
	)
	pip := &scriptedPip{}
	inst := New(&stubEvaluator{missing: []string{"random-word", "pyyaml>=6.0"}}, pip, Options{PreferBinary: true}, nil, nil)

	report, err := inst.InstallMissing(context.Background(), reg)
	require.NoError(t, err)
	require.Equal(t, 2, report.Attempted())
	require.Equal(t, [][]string{
		{"install", "--prefer-binary", "pyyaml>=6.0"},
		{"install", "--prefer-binary", "random-word"},
	}, pip.calls)
}

func TestInstallMissingLaunchFailureIsPerPackage(t *testing.T) {
	skipOnWindows(t)

	reg := requirement.MustNewRegistry(requirement.Bare("first"), requirement.Bare("second"))
	pip := &scriptedPip{scripts: map[string]string{"first": "<missing binary>"}}

	report, err := New(&stubEvaluator{missing: []string{"first", "second"}}, pip, Options{}, nil, nil).
		InstallMissing(context.Background(), reg)
	require.NoError(t, err)
	require.Equal(t, model.InstallFailed, report.Results[0].Status)
	require.Equal(t, -1, report.Results[0].ExitCode)
	require.Equal(t, model.InstallSucceeded, report.Results[1].Status)
}

func TestInstallMissingPropagatesEvaluationErrors(t *testing.T) {
	t.Parallel()

	pip := &scriptedPip{}
	toolErr := pyerrors.NewToolUnavailableError("python3", "ensurepip failed", errors.New("exit status 1"))

	_, err := New(&stubEvaluator{err: toolErr}, pip, Options{}, nil, nil).
		InstallMissing(context.Background(), requirement.MustNewRegistry(requirement.Bare("wheel")))
	require.ErrorIs(t, err, toolErr)
	require.Empty(t, pip.calls)
}

func TestInstallArgs(t *testing.T) {
	t.Parallel()

	inst := New(nil, nil, Options{
		PreferBinary: true,
		IndexURL:     "https://pypi.example.com/simple",
		ExtraArgs:    []string{"--user", "--no-cache-dir"},
	}, nil, nil)

	require.Equal(t, []string{
		"install", "--prefer-binary",
		"--index-url", "https://pypi.example.com/simple",
		"--user", "--no-cache-dir",
		"wheel==0.42.0",
	}, inst.InstallArgs("wheel==0.42.0"))
	require.Equal(t, []string{"install", "wheel"}, New(nil, nil, Options{}, nil, nil).InstallArgs("wheel"))
}

func TestInstallMissingWithPipProbe(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	python := filepath.Join(dir, "python")
	require.NoError(t, os.WriteFile(python, []byte(`#!/bin/sh
dir="$(dirname "$0")"
case "$3" in
  --version) echo "pip 24.0 from /site-packages/pip (python 3.12)" ;;
  list) echo '[{"name": "wheel", "version": "0.42.0"}]' ;;
  install)
    shift 3
    echo "$@" >> "$dir/install.log"
    for last; do :; done
    echo "Collecting $last"
    if [ "$last" = "broken-pkg" ]; then
      echo "ERROR: Could not find a version that satisfies the requirement broken-pkg" >&2
      exit 1
    fi
    echo "Successfully installed $last"
    ;;
esac
`), 0o755))

	buf := &bytes.Buffer{}
	log, err := logger.New(logger.Options{Level: "info", Writer: buf})
	require.NoError(t, err)

	pip := probe.New(probe.Options{Python: python}, log, nil)
	eval := evaluator.New(pip, log, nil)
	inst := New(eval, pip, Options{PreferBinary: true}, log, nil)

	reg := requirement.MustNewRegistry(
		requirement.Bare("wheel"),
		requirement.Bare("broken-pkg"),
		requirement.Bare("random-word"),
	)
	report, err := inst.InstallMissing(context.Background(), reg)
	require.NoError(t, err)
	require.Equal(t, 2, report.Attempted())
	require.Equal(t, 1, report.Failed())
	require.Equal(t, 1, report.Succeeded())

	data, err := os.ReadFile(filepath.Join(dir, "install.log"))
	require.NoError(t, err)
	require.Equal(t, "--prefer-binary broken-pkg\n--prefer-binary random-word\n", string(data))

	out := buf.String()
	require.Contains(t, out, "Collecting broken-pkg")
	require.Contains(t, out, "INSTALLATION FAILED")
	require.Contains(t, out, "Successfully installed random-word")
	require.Equal(t, 2, strings.Count(out, "Installing package "))
}

func TestInstallMissingStopsWhenCancelled(t *testing.T) {
	skipOnWindows(t)

	reg := requirement.MustNewRegistry(requirement.Bare("first"), requirement.Bare("second"))
	pip := &scriptedPip{}
	ctx, cancel := context.WithCancel(context.Background())
	obs := &cancellingObserver{cancel: cancel}

	report, err := New(&stubEvaluator{missing: []string{"first", "second"}}, pip, Options{Observer: obs}, nil, nil).
		InstallMissing(ctx, reg)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, report.Attempted())
	require.Len(t, pip.calls, 1)
}

type cancellingObserver struct {
	recordingObserver
	cancel context.CancelFunc
}

func (c *cancellingObserver) InstallFinished(result model.InstallResult) {
	c.cancel()
}

type startCancellingObserver struct {
	recordingObserver
	cancel context.CancelFunc
}

func (c *startCancellingObserver) InstallStarted(spec string, position, total int) {
	c.cancel()
}

func TestInstallMissingLetsRunningInstallFinish(t *testing.T) {
	skipOnWindows(t)

	reg := requirement.MustNewRegistry(requirement.Bare("slow"), requirement.Bare("after"))
	pip := &scriptedPip{scripts: map[string]string{
		"slow": "echo starting; sleep 0.3; echo Successfully installed slow",
	}}
	ctx, cancel := context.WithCancel(context.Background())
	obs := &startCancellingObserver{cancel: cancel}

	report, err := New(&stubEvaluator{missing: []string{"slow", "after"}}, pip, Options{Observer: obs}, nil, nil).
		InstallMissing(ctx, reg)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, report.Attempted())
	require.Len(t, pip.calls, 1)

	result := report.Results[0]
	require.Equal(t, model.InstallSucceeded, result.Status)
	require.Equal(t, 0, result.ExitCode)
	require.NoError(t, result.Error)
	require.Equal(t, "Successfully installed slow", result.LastLine)
}

func TestInstallMissingReportsCancellationDuringLastInstall(t *testing.T) {
	skipOnWindows(t)

	reg := requirement.MustNewRegistry(requirement.Bare("only"))
	ctx, cancel := context.WithCancel(context.Background())
	obs := &startCancellingObserver{cancel: cancel}

	report, err := New(&stubEvaluator{missing: []string{"only"}}, &scriptedPip{}, Options{Observer: obs}, nil, nil).
		InstallMissing(ctx, reg)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, report.Succeeded())
}
