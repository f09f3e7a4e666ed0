// Package requirement holds the declared Python package requirements and the
// optional checkers that decide whether a requirement is usable.
package requirement

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/pyreqs/internal/pkgspec"
	pyerrors "github.com/alexisbeaulieu97/pyreqs/pkg/errors"
)

// Checker decides whether the package called name is usable without asking pip.
// A false result means "not satisfied". A non-nil error is a checker failure,
// which evaluation also treats as "not satisfied".
type Checker interface {
	Check(ctx context.Context, name string) (bool, error)
}

// CheckFunc adapts an ordinary function to the Checker interface.
type CheckFunc func(ctx context.Context, name string) (bool, error)

// Check calls f.
func (f CheckFunc) Check(ctx context.Context, name string) (bool, error) {
	return f(ctx, name)
}

// Requirement is one declared dependency. It is immutable and identified by its
// spec string; compare requirements with Spec, not ==.
type Requirement struct {
	spec    string
	checker Checker
}

// Spec returns the raw package spec, e.g. "pyyaml>=6.0".
func (r Requirement) Spec() string {
	return r.spec
}

// Checker returns the custom checker, or nil when pip decides.
func (r Requirement) Checker() Checker {
	return r.checker
}

// HasChecker reports whether a custom checker bypasses the pip lookup.
func (r Requirement) HasChecker() bool {
	return r.checker != nil
}

// Parse parses the requirement's spec.
func (r Requirement) Parse() (pkgspec.PackageSpec, error) {
	return pkgspec.Parse(r.spec)
}

func (r Requirement) String() string {
	return r.spec
}

// Entry is one item of the declarative registry input: a spec with an optional checker.
type Entry struct {
	Spec    string
	Checker Checker
}

// Bare declares a requirement that is checked against pip's installed packages.
func Bare(spec string) Entry {
	return Entry{Spec: spec}
}

// WithChecker declares a requirement whose presence is decided by checker.
func WithChecker(spec string, checker Checker) Entry {
	return Entry{Spec: spec, Checker: checker}
}

// Registry is the ordered, read-only set of declared requirements.
type Registry struct {
	requirements []Requirement
	index        map[string]int
}

// NewRegistry normalizes entries into requirements, preserving their order.
// Specs are not parsed here; malformed specs surface as ParseErrors during evaluation.
func NewRegistry(entries ...Entry) (*Registry, error) {
	reg := &Registry{
		requirements: make([]Requirement, 0, len(entries)),
		index:        make(map[string]int, len(entries)),
	}

	for i, entry := range entries {
		field := fmt.Sprintf("requirements[%d]", i)
		if strings.TrimSpace(entry.Spec) == "" {
			return nil, pyerrors.NewConfigError(field, "package spec is empty", nil)
		}
		if prev, exists := reg.index[entry.Spec]; exists {
			return nil, pyerrors.NewConfigError(field, fmt.Sprintf("package spec %q already declared at requirements[%d]", entry.Spec, prev), nil)
		}
		reg.index[entry.Spec] = i
		reg.requirements = append(reg.requirements, Requirement{spec: entry.Spec, checker: entry.Checker})
	}

	return reg, nil
}

// MustNewRegistry panics if the registry cannot be built.
func MustNewRegistry(entries ...Entry) *Registry {
	reg, err := NewRegistry(entries...)
	if err != nil {
		panic(err)
	}
	return reg
}

// Requirements returns the requirements in declaration order.
func (r *Registry) Requirements() []Requirement {
	if r == nil {
		return nil
	}
	out := make([]Requirement, len(r.requirements))
	copy(out, r.requirements)
	return out
}

// Len returns the number of declared requirements.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.requirements)
}

// Lookup returns the requirement declared with spec.
func (r *Registry) Lookup(spec string) (Requirement, bool) {
	if r == nil {
		return Requirement{}, false
	}
	i, ok := r.index[spec]
	if !ok {
		return Requirement{}, false
	}
	return r.requirements[i], true
}

// Position returns the declaration index of spec, or -1.
func (r *Registry) Position(spec string) int {
	if r == nil {
		return -1
	}
	if i, ok := r.index[spec]; ok {
		return i
	}
	return -1
}
