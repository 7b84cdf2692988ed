package project

// Project is the immutable-per-run model of all services in a workspace and
// their dependency edges. It is built once per invocation from a resolved
// configuration and read-only thereafter, so it is safe to share across
// concurrent readers.
type Project struct {
	// Root is the absolute project root path.
	Root string

	// Languages are the project-declared target languages for generated types.
	Languages []string

	services map[string]*Service
	// order preserves insertion order so that traversals are deterministic
	// for a fixed input.
	order []string
}

// New returns an empty project rooted at the given path.
func New(root string, languages []string) *Project {
	return &Project{
		Root:      root,
		Languages: languages,
		services:  make(map[string]*Service),
	}
}

// AddService adds (or replaces) a service. Replacing keeps the original
// insertion position.
func (p *Project) AddService(svc *Service) {
	if _, exists := p.services[svc.Name]; !exists {
		p.order = append(p.order, svc.Name)
	}
	p.services[svc.Name] = svc
}

// Get returns the named service or an UnknownServiceError.
func (p *Project) Get(name string) (*Service, error) {
	svc, ok := p.services[name]
	if !ok {
		return nil, NewUnknownServiceError(name)
	}
	return svc, nil
}

// Services returns all service names in insertion order.
func (p *Project) Services() []string {
	names := make([]string, len(p.order))
	copy(names, p.order)
	return names
}

// DependenciesOf returns the immediate dependency names of the given service.
func (p *Project) DependenciesOf(name string) ([]string, error) {
	svc, err := p.Get(name)
	if err != nil {
		return nil, err
	}
	deps := make([]string, len(svc.DependsOnServices))
	copy(deps, svc.DependsOnServices)
	return deps, nil
}

// DependentsOf returns all service names that directly depend on the given
// service. O(n) walk over the service table; projects are small.
func (p *Project) DependentsOf(name string) []string {
	var dependents []string
	for _, candidate := range p.order {
		svc := p.services[candidate]
		for _, dep := range svc.DependsOnServices {
			if dep == name {
				dependents = append(dependents, candidate)
				break
			}
		}
	}
	return dependents
}

// TopoOrder returns a start order in which every dependency precedes its
// dependents. The traversal is a depth-first post-order walk using two
// explicit sets rather than mutating the services themselves: inProgress
// for nodes on the current path and done for finished nodes. Re-entering an
// in-progress node means the edges form a cycle; a dependency absent from
// the table means the configuration references an undefined service. Both
// abort the whole computation because no valid order exists.
func (p *Project) TopoOrder() ([]string, error) {
	inProgress := make(map[string]bool)
	done := make(map[string]bool)
	result := make([]string, 0, len(p.order))

	var visit func(name string) error
	visit = func(name string) error {
		if inProgress[name] {
			return NewCircularDependencyError(name)
		}
		if done[name] {
			return nil
		}
		inProgress[name] = true
		for _, dep := range p.services[name].DependsOnServices {
			if _, ok := p.services[dep]; !ok {
				return NewUnknownServiceError(dep)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		delete(inProgress, name)
		done[name] = true
		result = append(result, name)
		return nil
	}

	for _, name := range p.order {
		if !done[name] {
			if err := visit(name); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}
