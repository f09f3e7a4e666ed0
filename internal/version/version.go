// Package version compares Python package versions under PEP 440 ordering:
// release segments compared numerically with trailing zeros ignored, then
// dev < pre-release < final < post-release.
package version

import (
	"fmt"

	pep440 "github.com/aquasecurity/go-pep440-version"

	pyerrors "github.com/alexisbeaulieu97/pyreqs/pkg/errors"
)

// Operator is one of the relational operators allowed in a package spec.
type Operator string

const (
	OpLess         Operator = "<"
	OpGreater      Operator = ">"
	OpLessEqual    Operator = "<="
	OpGreaterEqual Operator = ">="
	OpEqual        Operator = "=="
)

// IsValid reports whether o is a supported operator.
func (o Operator) IsValid() bool {
	switch o {
	case OpLess, OpGreater, OpLessEqual, OpGreaterEqual, OpEqual:
		return true
	default:
		return false
	}
}

func (o Operator) holds(c int) bool {
	switch o {
	case OpLess:
		return c < 0
	case OpGreater:
		return c > 0
	case OpLessEqual:
		return c <= 0
	case OpGreaterEqual:
		return c >= 0
	default:
		return c == 0
	}
}

// Version is a parsed, comparable version.
type Version struct {
	parsed pep440.Version
}

// Parse converts raw into a Version, failing with an UnparseableVersionError
// when raw does not follow the versioning grammar.
func Parse(raw string) (Version, error) {
	v, err := pep440.Parse(raw)
	if err != nil {
		return Version{}, pyerrors.NewUnparseableVersionError(raw)
	}
	return Version{parsed: v}, nil
}

// MustParse panics if raw cannot be parsed.
func MustParse(raw string) Version {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the original text the version was parsed from.
func (v Version) String() string {
	return v.parsed.Original()
}

// Normalized returns the canonical form, e.g. "1.2.0a0" for "1.2.0-alpha".
func (v Version) Normalized() string {
	return v.parsed.String()
}

// Compare returns -1, 0 or 1 when v sorts before, equal to or after other.
func (v Version) Compare(other Version) int {
	return v.parsed.Compare(other.parsed)
}

// Compare parses a and b and reports whether "a op b" holds.
func Compare(a, b string, op Operator) (bool, error) {
	if !op.IsValid() {
		return false, fmt.Errorf("unsupported comparison operator %q", op)
	}
	left, err := Parse(a)
	if err != nil {
		return false, err
	}
	right, err := Parse(b)
	if err != nil {
		return false, err
	}
	return op.holds(left.Compare(right)), nil
}
