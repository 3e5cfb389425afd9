// Released under an MIT license. See LICENSE.

package strategy

import (
	"errors"
	"fmt"
	"sort"

	"github.com/michaelmacinnis/srepl/internal/lang"
)

// ErrUnknown is returned when selecting a strategy that does not exist.
var ErrUnknown = errors.New("unknown strategy")

// Registry holds named strategies and the one currently selected. Each
// strategy has its own State.
type Registry struct {
	byName  map[string]*T
	current *T
}

// NewRegistry creates a strategy for each entry of rules. The first name in
// sorted order is selected; use Select to choose another.
func NewRegistry(loader lang.RuntimeLoader, rules map[string]Rules) *Registry {
	r := &Registry{byName: make(map[string]*T, len(rules))}

	for name, rs := range rules {
		r.byName[name] = New(name, rs, loader, &State{})
	}

	if names := r.Names(); len(names) > 0 {
		r.current = r.byName[names[0]]
	}

	return r
}

// Names returns the strategy names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Get returns the named strategy.
func (r *Registry) Get(name string) (*T, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// Select makes name the current strategy.
func (r *Registry) Select(name string) (*T, error) {
	s, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}

	r.current = s

	return s, nil
}

// Current returns the selected strategy, or nil if there are none.
func (r *Registry) Current() *T {
	return r.current
}

// ResetAll discards every strategy's environment.
func (r *Registry) ResetAll() {
	for _, s := range r.byName {
		s.state.Reset()
	}
}
