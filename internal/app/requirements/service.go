// Package requirements is the host surface: it loads a requirements file and
// answers "are the requirements installed?" and "install what is missing".
package requirements

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/alexisbeaulieu97/pyreqs/internal/config"
	"github.com/alexisbeaulieu97/pyreqs/internal/evaluator"
	"github.com/alexisbeaulieu97/pyreqs/internal/installer"
	"github.com/alexisbeaulieu97/pyreqs/internal/logger"
	"github.com/alexisbeaulieu97/pyreqs/internal/metrics"
	"github.com/alexisbeaulieu97/pyreqs/internal/model"
	"github.com/alexisbeaulieu97/pyreqs/internal/probe"
	"github.com/alexisbeaulieu97/pyreqs/internal/requirement"
)

// Prepared is a parsed requirements file with its layered settings.
type Prepared struct {
	Path     string
	Config   *config.Config
	Settings config.Settings
	Registry *requirement.Registry
}

// Prepare loads the requirements file at path and resolves settings against
// the environment and fs. fs may be nil.
func Prepare(path string, fs *pflag.FlagSet) (*Prepared, error) {
	cfg, err := config.ParseConfig(path)
	if err != nil {
		return nil, err
	}
	return PrepareConfig(path, cfg, fs)
}

// PrepareConfig resolves settings and builds the registry for an already decoded file.
func PrepareConfig(path string, cfg *config.Config, fs *pflag.FlagSet) (*Prepared, error) {
	settings, err := config.LoadSettings(cfg.Settings, fs)
	if err != nil {
		return nil, err
	}

	reg, err := cfg.Registry(settings.Python)
	if err != nil {
		return nil, err
	}

	return &Prepared{Path: path, Config: cfg, Settings: settings, Registry: reg}, nil
}

// Options wires optional collaborators into a Service.
type Options struct {
	Logger   *logger.Logger
	Metrics  *metrics.Recorder
	Observer installer.Observer
	// QuietOutput logs pip output at debug level, for when an Observer renders it.
	QuietOutput bool
}

// Service evaluates and installs one prepared requirement set. It holds a
// single evaluator, so once everything has been found satisfied later calls
// answer from the latch without probing again.
type Service struct {
	prepared *Prepared
	opts     Options
	probe    *probe.PipProbe
	eval     *evaluator.Evaluator
}

// NewService builds the probe and evaluator for prepared.
func NewService(prepared *Prepared, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	pip := probe.New(probe.Options{
		Python:        prepared.Settings.Python,
		Bootstrap:     prepared.Settings.Bootstrap,
		MinPipVersion: prepared.Settings.MinPipVersion,
	}, opts.Logger, opts.Metrics)

	return &Service{
		prepared: prepared,
		opts:     opts,
		probe:    pip,
		eval:     evaluator.New(pip, opts.Logger, opts.Metrics),
	}
}

// Prepared returns the requirement set the service was built for.
func (s *Service) Prepared() *Prepared {
	return s.prepared
}

// Probe exposes the pip probe, e.g. for listing installed packages.
func (s *Service) Probe() *probe.PipProbe {
	return s.probe
}

// RequirementsInstalled reports whether every requirement is met.
func (s *Service) RequirementsInstalled(ctx context.Context) (bool, error) {
	return s.eval.RequirementsInstalled(ctx, s.prepared.Registry)
}

// FindMissing returns the unmet requirements with a status for each checked one.
func (s *Service) FindMissing(ctx context.Context) (*model.EvaluationResult, error) {
	return s.eval.FindMissing(ctx, s.prepared.Registry)
}

// InstallOutcome pairs the install attempts with the state found afterwards.
type InstallOutcome struct {
	Report *model.InstallReport
	// Final is a fresh evaluation taken after installing.
	Final *model.EvaluationResult
}

// Complete reports whether nothing is missing after installing.
func (o *InstallOutcome) Complete() bool {
	return o != nil && o.Final != nil && o.Final.Empty()
}

// InstallRequirements installs the unmet requirements and then evaluates again
// with a fresh evaluator, since install failures are not returned as errors.
func (s *Service) InstallRequirements(ctx context.Context) (*InstallOutcome, error) {
	settings := s.prepared.Settings
	inst := installer.New(s.eval, s.probe, installer.Options{
		PreferBinary: settings.PreferBinary,
		IndexURL:     settings.IndexURL,
		ExtraArgs:    settings.ExtraArgs,
		QuietOutput:  s.opts.QuietOutput,
		Observer:     s.opts.Observer,
	}, s.opts.Logger, s.opts.Metrics)

	report, err := inst.InstallMissing(ctx, s.prepared.Registry)
	if err != nil {
		if report == nil {
			return nil, err
		}
		return &InstallOutcome{Report: report}, err
	}

	outcome := &InstallOutcome{Report: report}
	final, err := evaluator.New(s.probe, s.opts.Logger, s.opts.Metrics).FindMissing(ctx, s.prepared.Registry)
	if err != nil {
		return outcome, err
	}
	outcome.Final = final
	return outcome, nil
}
