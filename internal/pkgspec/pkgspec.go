// Package pkgspec parses textual package specs such as "pyyaml", "wheel==0.42.0"
// or "random-word>=1.0" into their name, comparator and version parts.
package pkgspec

import (
	"regexp"

	"github.com/alexisbeaulieu97/pyreqs/internal/version"
	pyerrors "github.com/alexisbeaulieu97/pyreqs/pkg/errors"
)

// Longer comparators come first so "<=" is never read as "<" followed by "=1.0".
var specPattern = regexp.MustCompile(`^(?P<name>[\w-]+)(?:(?P<comparator><=|>=|==|<|>)(?P<version>[\w.-]+))?$`)

// PackageSpec is a parsed package spec. Comparator and Version are either both
// set or both empty; both empty means any installed version is accepted.
type PackageSpec struct {
	Name       string
	Comparator version.Operator
	Version    string
}

// Parse splits spec into a PackageSpec. The version part is not validated here;
// that is left to the version package at comparison time.
func Parse(spec string) (PackageSpec, error) {
	m := specPattern.FindStringSubmatch(spec)
	if m == nil {
		return PackageSpec{}, pyerrors.NewParseError(spec, "does not match name[comparator version]")
	}

	return PackageSpec{
		Name:       m[specPattern.SubexpIndex("name")],
		Comparator: version.Operator(m[specPattern.SubexpIndex("comparator")]),
		Version:    m[specPattern.SubexpIndex("version")],
	}, nil
}

// MustParse panics if spec cannot be parsed.
func MustParse(spec string) PackageSpec {
	ps, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return ps
}

// Constrained reports whether the spec pins a version range.
func (p PackageSpec) Constrained() bool {
	return p.Comparator != "" && p.Version != ""
}

// String reassembles the textual form accepted by Parse.
func (p PackageSpec) String() string {
	if p.Comparator != "" || p.Version != "" {
		return p.Name + string(p.Comparator) + p.Version
	}
	return p.Name
}
