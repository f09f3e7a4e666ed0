// Package installer installs unmet requirements one at a time with pip,
// streaming pip's output as it arrives and carrying on past failures.
package installer

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexisbeaulieu97/pyreqs/internal/internalexec"
	"github.com/alexisbeaulieu97/pyreqs/internal/logger"
	"github.com/alexisbeaulieu97/pyreqs/internal/metrics"
	"github.com/alexisbeaulieu97/pyreqs/internal/model"
	"github.com/alexisbeaulieu97/pyreqs/internal/requirement"
	pyerrors "github.com/alexisbeaulieu97/pyreqs/pkg/errors"
)

// Evaluator recomputes the unmet requirements before installing.
type Evaluator interface {
	FindMissing(ctx context.Context, reg *requirement.Registry) (*model.EvaluationResult, error)
}

// PipCommander builds `python -m pip ...` commands.
type PipCommander interface {
	PipCommand(ctx context.Context, args ...string) *exec.Cmd
}

// Observer receives install progress. Calls arrive sequentially from the
// goroutine running InstallMissing.
type Observer interface {
	InstallStarted(spec string, position, total int)
	InstallOutput(spec, line string)
	InstallFinished(result model.InstallResult)
}

// Options tunes the pip install invocation.
type Options struct {
	PreferBinary bool
	IndexURL     string
	ExtraArgs    []string
	// QuietOutput logs pip's lines at debug level instead of info.
	QuietOutput bool
	Observer    Observer
}

// Installer runs pip install for each unmet requirement, strictly one at a time.
type Installer struct {
	eval    Evaluator
	pip     PipCommander
	opts    Options
	log     *logger.Logger
	metrics *metrics.Recorder
}

// New creates an Installer. log and rec may be nil.
func New(eval Evaluator, pip PipCommander, opts Options, log *logger.Logger, rec *metrics.Recorder) *Installer {
	if log == nil {
		log = logger.Nop()
	}
	return &Installer{eval: eval, pip: pip, opts: opts, log: log, metrics: rec}
}

// InstallArgs returns the pip arguments used to install spec.
func (i *Installer) InstallArgs(spec string) []string {
	args := []string{"install"}
	if i.opts.PreferBinary {
		args = append(args, "--prefer-binary")
	}
	if i.opts.IndexURL != "" {
		args = append(args, "--index-url", i.opts.IndexURL)
	}
	args = append(args, i.opts.ExtraArgs...)
	return append(args, spec)
}

// InstallMissing re-evaluates reg and installs every unmet requirement in
// declaration order. A failed install is recorded and the loop moves on; only
// evaluation errors abort. Callers should evaluate again afterwards to learn
// the final state. Cancelling ctx stops the loop before the next package; an
// install already running is left to finish.
func (i *Installer) InstallMissing(ctx context.Context, reg *requirement.Registry) (*model.InstallReport, error) {
	i.log.Info("Installing missing requirements (may take a long time)")

	missing, err := i.eval.FindMissing(ctx, reg)
	if err != nil {
		return nil, err
	}

	report := &model.InstallReport{}
	var targets []requirement.Requirement
	for _, req := range reg.Requirements() {
		if missing.Contains(req.Spec()) {
			targets = append(targets, req)
		}
	}

	for pos, req := range targets {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Add(i.installOne(ctx, req.Spec(), pos, len(targets)))
	}

	i.log.WithFields(map[string]any{
		"attempted": report.Attempted(),
		"succeeded": report.Succeeded(),
		"failed":    report.Failed(),
	}).Info("Install run complete")
	return report, ctx.Err()
}

func (i *Installer) installOne(ctx context.Context, spec string, pos, total int) model.InstallResult {
	log := i.log.ForRequirement(spec)
	log.Info("Installing package " + spec)
	if i.opts.Observer != nil {
		i.opts.Observer.InstallStarted(spec, pos, total)
	}

	start := time.Now()
	result := model.InstallResult{Spec: spec}

	// pip must not be killed halfway through writing site-packages.
	cmd := i.pip.PipCommand(context.WithoutCancel(ctx), i.InstallArgs(spec)...)
	stream, err := internalexec.Start(cmd)
	if err != nil {
		result.ExitCode = -1
		result.Error = pyerrors.NewInstallFailure(spec, result.ExitCode, err)
		return i.finish(log, result, start)
	}

	level := zerolog.InfoLevel
	if i.opts.QuietOutput {
		level = zerolog.DebugLevel
	}
	for line := range stream.Lines() {
		if strings.TrimSpace(line) == "" {
			continue
		}
		result.LastLine = line
		log.Output(level, line)
		if i.opts.Observer != nil {
			i.opts.Observer.InstallOutput(spec, line)
		}
	}
	if readErr := stream.Err(); readErr != nil {
		log.Warn(readErr, "Reading pip output failed")
	}

	code, waitErr := stream.Wait()
	result.ExitCode = code
	if waitErr != nil || code != 0 {
		result.Error = pyerrors.NewInstallFailure(spec, code, waitErr)
	}
	return i.finish(log, result, start)
}

func (i *Installer) finish(log *logger.Logger, result model.InstallResult, start time.Time) model.InstallResult {
	result.Duration = time.Since(start)
	if result.Error != nil {
		result.Status = model.InstallFailed
		log.Error(result.Error, "INSTALLATION FAILED")
	} else {
		result.Status = model.InstallSucceeded
		log.Info("Installation successful")
	}

	i.metrics.ObserveInstall(string(result.Status))
	if i.opts.Observer != nil {
		i.opts.Observer.InstallFinished(result)
	}
	return result
}
