package model

import (
	"slices"

	"github.com/alexisbeaulieu97/pyreqs/internal/requirement"
)

// CheckStatus is the outcome of checking a single requirement.
type CheckStatus string

const (
	// StatusSatisfied marks a requirement that is installed and usable.
	StatusSatisfied CheckStatus = "satisfied"
	// StatusMissing marks a requirement that is absent or fails its version constraint.
	StatusMissing CheckStatus = "missing"
	// StatusCheckerFailed marks a requirement whose custom checker errored.
	StatusCheckerFailed CheckStatus = "checker_failed"
)

// CheckMethod records how a requirement was checked.
type CheckMethod string

const (
	MethodChecker CheckMethod = "checker"
	MethodPip     CheckMethod = "pip"
)

// RequirementStatus describes how one requirement was classified.
type RequirementStatus struct {
	Spec string
	Name string
	// Method is empty when evaluation short-circuited.
	Method           CheckMethod
	Status           CheckStatus
	InstalledVersion string
	Message          string
	Error            error
}

// Satisfied reports whether the requirement needs no installation.
func (s RequirementStatus) Satisfied() bool {
	return s.Status == StatusSatisfied
}

// EvaluationResult is the set of unmet requirements found by one evaluation
// pass. Membership is keyed by spec; iteration follows declaration order.
type EvaluationResult struct {
	missing  []requirement.Requirement
	members  map[string]struct{}
	statuses []RequirementStatus

	// ShortCircuited is true when an earlier pass had already found everything
	// satisfied and nothing was re-checked.
	ShortCircuited bool
}

// NewEvaluationResult returns an empty result.
func NewEvaluationResult() *EvaluationResult {
	return &EvaluationResult{members: make(map[string]struct{})}
}

// AddMissing records req as unmet. Adding the same spec twice is a no-op.
func (r *EvaluationResult) AddMissing(req requirement.Requirement) {
	if r.members == nil {
		r.members = make(map[string]struct{})
	}
	if _, ok := r.members[req.Spec()]; ok {
		return
	}
	r.members[req.Spec()] = struct{}{}
	r.missing = append(r.missing, req)
}

// Record appends a per-requirement status for reporting.
func (r *EvaluationResult) Record(status RequirementStatus) {
	r.statuses = append(r.statuses, status)
}

// SortBy orders missing requirements and statuses by the position function,
// normally Registry.Position.
func (r *EvaluationResult) SortBy(position func(spec string) int) {
	slices.SortStableFunc(r.missing, func(a, b requirement.Requirement) int {
		return position(a.Spec()) - position(b.Spec())
	})
	slices.SortStableFunc(r.statuses, func(a, b RequirementStatus) int {
		return position(a.Spec) - position(b.Spec)
	})
}

// Contains reports whether the requirement with spec is unmet.
func (r *EvaluationResult) Contains(spec string) bool {
	if r == nil {
		return false
	}
	_, ok := r.members[spec]
	return ok
}

// Missing returns the unmet requirements.
func (r *EvaluationResult) Missing() []requirement.Requirement {
	if r == nil {
		return nil
	}
	return slices.Clone(r.missing)
}

// Statuses returns the recorded per-requirement statuses.
func (r *EvaluationResult) Statuses() []RequirementStatus {
	if r == nil {
		return nil
	}
	return slices.Clone(r.statuses)
}

// Len returns the number of unmet requirements.
func (r *EvaluationResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.missing)
}

// Empty reports whether every requirement is satisfied.
func (r *EvaluationResult) Empty() bool {
	return r.Len() == 0
}

// Specs returns the unmet specs.
func (r *EvaluationResult) Specs() []string {
	if r == nil {
		return nil
	}
	specs := make([]string, 0, len(r.missing))
	for _, req := range r.missing {
		specs = append(specs, req.Spec())
	}
	return specs
}
