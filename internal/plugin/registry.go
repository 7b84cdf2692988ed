package plugin

import (
	"strings"

	"lychee/pkg/logging"
)

// Registry holds the resolved plugin implementations for one invocation:
// built-ins first, then extension-point candidates in registration order.
// Both lists are populated at construction and read-only afterwards, so
// lookups are safe for concurrent use without further locking.
type Registry struct {
	languageRuntimes []LanguageRuntime
	schemaCompilers  []SchemaCompiler
}

// Options configures registry construction.
type Options struct {
	// BuiltinRuntimes and BuiltinCompilers are always available and take
	// precedence over discovered candidates.
	BuiltinRuntimes  []LanguageRuntime
	BuiltinCompilers []SchemaCompiler

	// Allowlist restricts which discovered (non-built-in) candidates are
	// loaded, by candidate name, case-insensitively. Empty means no
	// restriction. Built-ins are exempt.
	Allowlist []string
}

// NewRegistry constructs a registry from built-ins and the extension-point
// groups. Malformed candidates are skipped with a warning; one bad plugin
// never aborts discovery.
func NewRegistry(opts Options) *Registry {
	r := &Registry{
		languageRuntimes: append([]LanguageRuntime(nil), opts.BuiltinRuntimes...),
		schemaCompilers:  append([]SchemaCompiler(nil), opts.BuiltinCompilers...),
	}

	allowed := make(map[string]bool, len(opts.Allowlist))
	for _, name := range opts.Allowlist {
		allowed[strings.ToLower(name)] = true
	}
	skipByAllowlist := func(name string) bool {
		return len(allowed) > 0 && !allowed[strings.ToLower(name)]
	}

	for _, cand := range registered(GroupLanguageRuntimes) {
		if skipByAllowlist(cand.Name) {
			logging.Debug("PluginRegistry", "Skipping language runtime plugin '%s' due to allowlist", cand.Name)
			continue
		}
		rt, ok := instantiateRuntime(cand.Value)
		if !ok {
			logging.Warn("PluginRegistry", "Candidate '%s' did not provide a language runtime, skipping", cand.Name)
			continue
		}
		r.languageRuntimes = append(r.languageRuntimes, rt)
		logging.Info("PluginRegistry", "Loaded language runtime plugin: %s", cand.Name)
	}

	for _, cand := range registered(GroupSchemaCompilers) {
		if skipByAllowlist(cand.Name) {
			logging.Debug("PluginRegistry", "Skipping schema compiler plugin '%s' due to allowlist", cand.Name)
			continue
		}
		comp, ok := instantiateCompiler(cand.Value)
		if !ok {
			logging.Warn("PluginRegistry", "Candidate '%s' did not provide a schema compiler, skipping", cand.Name)
			continue
		}
		r.schemaCompilers = append(r.schemaCompilers, comp)
		logging.Info("PluginRegistry", "Loaded schema compiler plugin: %s", cand.Name)
	}

	return r
}

// instantiateRuntime tries the candidate strategies in order: an
// already-constructed instance, a typed factory, an untyped factory whose
// product satisfies the interface.
func instantiateRuntime(value any) (LanguageRuntime, bool) {
	switch v := value.(type) {
	case LanguageRuntime:
		return v, true
	case func() LanguageRuntime:
		return callFactory(func() any { return v() })
	case func() any:
		return callFactory(v)
	default:
		return nil, false
	}
}

func instantiateCompiler(value any) (SchemaCompiler, bool) {
	switch v := value.(type) {
	case SchemaCompiler:
		return v, true
	case func() SchemaCompiler:
		produced, ok := callCompilerFactory(func() any { return v() })
		return produced, ok
	case func() any:
		return callCompilerFactory(v)
	default:
		return nil, false
	}
}

// callFactory invokes a factory, recovering from panics so a broken
// plugin cannot take registry construction down with it.
func callFactory(factory func() any) (rt LanguageRuntime, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			rt, ok = nil, false
		}
	}()
	produced := factory()
	rt, ok = produced.(LanguageRuntime)
	return rt, ok && rt != nil
}

func callCompilerFactory(factory func() any) (comp SchemaCompiler, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			comp, ok = nil, false
		}
	}()
	produced := factory()
	comp, ok = produced.(SchemaCompiler)
	return comp, ok && comp != nil
}

// LanguageRuntime returns the first registered runtime whose language
// matches case-insensitively, or nil if none does.
func (r *Registry) LanguageRuntime(language string) LanguageRuntime {
	language = strings.ToLower(language)
	for _, rt := range r.languageRuntimes {
		if strings.ToLower(rt.Language()) == language {
			return rt
		}
	}
	return nil
}

// SchemaCompiler returns the first registered compiler supporting the
// exact (format, language) pair, or nil if none does.
func (r *Registry) SchemaCompiler(format, language string) SchemaCompiler {
	format = strings.ToLower(format)
	language = strings.ToLower(language)
	for _, comp := range r.schemaCompilers {
		if comp.Supports(format, language) {
			return comp
		}
	}
	return nil
}

// LanguageRuntimes returns all registered language runtimes in precedence
// order.
func (r *Registry) LanguageRuntimes() []LanguageRuntime {
	return append([]LanguageRuntime(nil), r.languageRuntimes...)
}

// SchemaCompilers returns all registered schema compilers in precedence
// order.
func (r *Registry) SchemaCompilers() []SchemaCompiler {
	return append([]SchemaCompiler(nil), r.schemaCompilers...)
}
