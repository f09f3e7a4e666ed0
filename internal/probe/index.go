package probe

import (
	"regexp"
	"sort"
	"strings"
)

var nameSeparators = regexp.MustCompile(`[-_.]+`)

// NormalizeName returns the PEP 503 form of a distribution name, so that
// "PyYAML", "pyyaml" and "py.yaml" style spellings compare equal.
func NormalizeName(name string) string {
	return strings.ToLower(nameSeparators.ReplaceAllString(name, "-"))
}

// Index maps installed distribution names to their versions. It is a snapshot
// taken once per evaluation pass.
type Index struct {
	versions map[string]string
	names    map[string]string
}

// NewIndex builds an Index from name -> version pairs as reported by pip.
func NewIndex(packages map[string]string) Index {
	idx := Index{
		versions: make(map[string]string, len(packages)),
		names:    make(map[string]string, len(packages)),
	}
	for name, version := range packages {
		key := NormalizeName(name)
		idx.versions[key] = version
		idx.names[key] = name
	}
	return idx
}

// Version returns the installed version of name.
func (i Index) Version(name string) (string, bool) {
	v, ok := i.versions[NormalizeName(name)]
	return v, ok
}

// Len returns the number of installed distributions.
func (i Index) Len() int {
	return len(i.versions)
}

// Packages returns name -> version with pip's spelling of each name.
func (i Index) Packages() map[string]string {
	out := make(map[string]string, len(i.versions))
	for key, version := range i.versions {
		out[i.names[key]] = version
	}
	return out
}

// Names returns pip's spelling of every installed name, sorted case-insensitively.
func (i Index) Names() []string {
	names := make([]string, 0, len(i.names))
	for _, name := range i.names {
		names = append(names, name)
	}
	sort.Slice(names, func(a, b int) bool {
		return strings.ToLower(names[a]) < strings.ToLower(names[b])
	})
	return names
}
