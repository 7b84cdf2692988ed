package plugin

import "sync"

// Extension-point groups under which third-party plugins register.
const (
	GroupLanguageRuntimes = "lychee.language_runtimes"
	GroupSchemaCompilers  = "lychee.schema_compilers"
)

// Candidate is one registered extension-point entry. The value may be an
// already-constructed implementation, a zero-argument typed factory
// (func() LanguageRuntime / func() SchemaCompiler), or an untyped factory
// (func() any). The registry decides at construction time whether the
// candidate actually satisfies the capability contract of its group.
type Candidate struct {
	Name  string
	Value any
}

var (
	extMu     sync.Mutex
	extGroups = make(map[string][]Candidate)
)

// Register adds a candidate to an extension-point group. Plugin packages
// typically call this from an init function; the order of registration is
// the order of discovery. Registering under an unknown group is harmless:
// nothing will ever look it up.
func Register(group, name string, value any) {
	extMu.Lock()
	defer extMu.Unlock()
	extGroups[group] = append(extGroups[group], Candidate{Name: name, Value: value})
}

// registered returns a snapshot of the candidates in a group, in
// registration order.
func registered(group string) []Candidate {
	extMu.Lock()
	defer extMu.Unlock()
	out := make([]Candidate, len(extGroups[group]))
	copy(out, extGroups[group])
	return out
}

// resetExtensions clears all groups. Test helper.
func resetExtensions() {
	extMu.Lock()
	defer extMu.Unlock()
	extGroups = make(map[string][]Candidate)
}
