// Package evaluator decides which declared requirements are unmet, combining
// custom checkers with a single snapshot of pip's installed packages.
package evaluator

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/alexisbeaulieu97/pyreqs/internal/logger"
	"github.com/alexisbeaulieu97/pyreqs/internal/metrics"
	"github.com/alexisbeaulieu97/pyreqs/internal/model"
	"github.com/alexisbeaulieu97/pyreqs/internal/pkgspec"
	"github.com/alexisbeaulieu97/pyreqs/internal/probe"
	"github.com/alexisbeaulieu97/pyreqs/internal/requirement"
	"github.com/alexisbeaulieu97/pyreqs/internal/version"
	pyerrors "github.com/alexisbeaulieu97/pyreqs/pkg/errors"
)

// Probe is the part of the environment probe the evaluator needs.
type Probe interface {
	EnsureToolAvailable(ctx context.Context) error
	ListInstalled(ctx context.Context) (probe.Index, error)
}

// Evaluator carries the "all satisfied" latch: once a pass finds nothing
// missing, every later FindMissing returns an empty result without probing.
// The latch is never reset, so packages removed afterwards go unnoticed.
type Evaluator struct {
	probe     Probe
	log       *logger.Logger
	metrics   *metrics.Recorder
	satisfied atomic.Bool
}

// New creates an Evaluator. log and rec may be nil.
func New(p Probe, log *logger.Logger, rec *metrics.Recorder) *Evaluator {
	if log == nil {
		log = logger.Nop()
	}
	return &Evaluator{probe: p, log: log, metrics: rec}
}

// AllSatisfied reports whether the latch has been set.
func (e *Evaluator) AllSatisfied() bool {
	return e.satisfied.Load()
}

// RequirementsInstalled reports whether FindMissing comes back empty.
func (e *Evaluator) RequirementsInstalled(ctx context.Context, reg *requirement.Registry) (bool, error) {
	result, err := e.FindMissing(ctx, reg)
	if err != nil {
		return false, err
	}
	return result.Empty(), nil
}

type pipCheck struct {
	req  requirement.Requirement
	spec pkgspec.PackageSpec
}

// FindMissing returns the unmet requirements of reg in declaration order.
// Checker failures are absorbed as "missing"; parse, version, tool and probe
// errors are returned.
func (e *Evaluator) FindMissing(ctx context.Context, reg *requirement.Registry) (*model.EvaluationResult, error) {
	result := model.NewEvaluationResult()
	if e.satisfied.Load() {
		result.ShortCircuited = true
		return result, nil
	}
	if reg.Len() == 0 {
		e.satisfied.Store(true)
		return result, nil
	}

	if err := e.probe.EnsureToolAvailable(ctx); err != nil {
		return nil, err
	}

	// Every spec parses before any checker runs a command.
	parsed := make([]pipCheck, 0, reg.Len())
	for _, req := range reg.Requirements() {
		spec, err := req.Parse()
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, pipCheck{req: req, spec: spec})
	}

	var byPip []pipCheck
	for _, c := range parsed {
		if c.req.HasChecker() {
			e.runChecker(ctx, c.req, c.spec, result)
			continue
		}
		byPip = append(byPip, c)
	}

	if len(byPip) > 0 {
		specs := make([]string, 0, len(byPip))
		for _, c := range byPip {
			specs = append(specs, c.req.Spec())
		}
		e.log.WithFields(map[string]any{"packages": strings.Join(specs, ", ")}).
			Info("Checking packages with pip; add checkers to these requirements to skip this step")

		index, err := e.probe.ListInstalled(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range byPip {
			if err := e.checkInstalled(index, c, result); err != nil {
				return nil, err
			}
		}
	}

	result.SortBy(reg.Position)
	e.metrics.SetMissing(result.Len())
	if result.Empty() {
		e.satisfied.Store(true)
	}
	return result, nil
}

func (e *Evaluator) runChecker(ctx context.Context, req requirement.Requirement, spec pkgspec.PackageSpec, result *model.EvaluationResult) {
	log := e.log.ForRequirement(req.Spec())
	status := model.RequirementStatus{Spec: req.Spec(), Name: spec.Name, Method: model.MethodChecker}

	ok, err := invokeChecker(ctx, req.Checker(), spec.Name)
	switch {
	case err != nil:
		failure := pyerrors.NewCheckerFailure(req.Spec(), err)
		log.Warn(failure, "Checker raised an error; treating requirement as missing")
		status.Status = model.StatusCheckerFailed
		status.Message = err.Error()
		status.Error = failure
	case !ok:
		log.Info("Checker returned false")
		status.Status = model.StatusMissing
		status.Message = "checker returned false"
	default:
		log.Debug("Checker passed")
		status.Status = model.StatusSatisfied
		status.Message = "checker passed"
	}

	e.record(req, status, result)
}

// invokeChecker turns a panicking checker into an error.
func invokeChecker(ctx context.Context, checker requirement.Checker, name string) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = fmt.Errorf("checker panicked: %v", r)
		}
	}()
	return checker.Check(ctx, name)
}

func (e *Evaluator) checkInstalled(index probe.Index, c pipCheck, result *model.EvaluationResult) error {
	log := e.log.ForRequirement(c.req.Spec())
	status := model.RequirementStatus{Spec: c.req.Spec(), Name: c.spec.Name, Method: model.MethodPip}

	installed, found := index.Version(c.spec.Name)
	if !found {
		log.Info(fmt.Sprintf("Did not find any installed %s", c.spec.Name))
		status.Status = model.StatusMissing
		status.Message = "not installed"
		e.record(c.req, status, result)
		return nil
	}
	status.InstalledVersion = installed

	satisfied := true
	if c.spec.Constrained() {
		// Installed version is the left operand: "2.0.0 >= 1.0".
		ok, err := version.Compare(installed, c.spec.Version, c.spec.Comparator)
		if err != nil {
			return err
		}
		satisfied = ok
	}

	if satisfied {
		log.Info(fmt.Sprintf("Found installed %s==%s, which satisfies requirement %s", c.spec.Name, installed, c.spec))
		status.Status = model.StatusSatisfied
		status.Message = fmt.Sprintf("installed %s", installed)
	} else {
		log.Info(fmt.Sprintf("Found installed %s==%s, but we need %s", c.spec.Name, installed, c.spec))
		status.Status = model.StatusMissing
		status.Message = fmt.Sprintf("installed %s, need %s%s", installed, c.spec.Comparator, c.spec.Version)
	}
	e.record(c.req, status, result)
	return nil
}

func (e *Evaluator) record(req requirement.Requirement, status model.RequirementStatus, result *model.EvaluationResult) {
	result.Record(status)
	if !status.Satisfied() {
		result.AddMissing(req)
	}
	e.metrics.ObserveCheck(string(status.Status))
}
