// Released under an MIT license. See LICENSE.

package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/michaelmacinnis/srepl/internal/ctxlog"
	"github.com/michaelmacinnis/srepl/internal/result"
)

// Table is an immutable set of commands keyed by name.
type Table map[string]*T

// Registry owns the built-in commands and the dynamic command table. The
// dynamic table is only ever replaced whole, so a lookup sees the commands
// of exactly one install.
type Registry struct {
	prefix   string
	eval     string
	hint     string
	builtins Table
	dynamic  atomic.Pointer[Table]
}

// NewRegistry creates a registry. Input starting with prefix names a
// command; any other input goes to the command named eval.
func NewRegistry(prefix, eval string) *Registry {
	r := &Registry{prefix: prefix, eval: eval, builtins: Table{}}
	r.Reset()

	return r
}

// Prefix returns the command prefix.
func (r *Registry) Prefix() string {
	return r.prefix
}

// SetHint sets the hint reported when input arrives and there is no
// evaluation command.
func (r *Registry) SetHint(hint string) {
	r.hint = hint
}

// AddBuiltin registers a command that survives Install and Reset.
// Built-ins take precedence over dynamic commands with the same name.
func (r *Registry) AddBuiltin(c *T) {
	r.builtins[c.Name] = c
}

// Install replaces the dynamic table with cmds in one step.
func (r *Registry) Install(cmds ...*T) {
	t := make(Table, len(cmds))
	for _, c := range cmds {
		t[c.Name] = c
	}

	r.dynamic.Store(&t)
}

// Add installs a copy of the dynamic table with c added.
func (r *Registry) Add(name string, c *T) {
	old := *r.dynamic.Load()

	t := make(Table, len(old)+1)
	for k, v := range old {
		t[k] = v
	}

	t[name] = c

	r.dynamic.Store(&t)
}

// Reset installs an empty dynamic table.
func (r *Registry) Reset() {
	r.dynamic.Store(&Table{})
}

// Lookup returns the command called name.
func (r *Registry) Lookup(name string) (*T, bool) {
	if c, ok := r.builtins[name]; ok {
		return c, true
	}

	c, ok := (*r.dynamic.Load())[name]

	return c, ok
}

// Names returns every command name in sorted order.
func (r *Registry) Names() []string {
	seen := map[string]bool{}

	for name := range r.builtins {
		seen[name] = true
	}

	for name := range *r.dynamic.Load() {
		seen[name] = true
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Commands returns every command, built-ins first, each group sorted by
// name. Dynamic commands shadowed by a built-in are left out.
func (r *Registry) Commands() []*T {
	cmds := sorted(r.builtins, nil)

	return append(cmds, sorted(*r.dynamic.Load(), r.builtins)...)
}

func sorted(t, except Table) []*T {
	names := make([]string, 0, len(t))
	for name := range t {
		if _, shadowed := except[name]; !shadowed {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	cmds := make([]*T, 0, len(names))
	for _, name := range names {
		cmds = append(cmds, t[name])
	}

	return cmds
}

// Split separates raw input into a command name and its arguments. Input
// without the prefix is addressed to the evaluation command, whole.
func (r *Registry) Split(raw string) (name string, args []string) {
	if !strings.HasPrefix(raw, r.prefix) {
		return r.eval, []string{raw}
	}

	rest := raw[len(r.prefix):]

	i := strings.IndexFunc(rest, unicode.IsSpace)
	if i < 0 {
		return rest, nil
	}

	name = rest[:i]

	if tail := strings.TrimLeftFunc(rest[i:], unicode.IsSpace); tail != "" {
		args = []string{tail}
	}

	return name, args
}

// Dispatch runs the command raw addresses and returns its result. It never
// panics; an unknown name is a Failure holding a *NotFoundError.
func (r *Registry) Dispatch(ctx context.Context, raw string) (res Result) {
	name, args := r.Split(raw)

	logger := ctxlog.FromContext(ctx)

	c, ok := r.Lookup(name)
	if !ok {
		logger.Debug("Command not found.", "name", name)

		nf := &NotFoundError{Name: name}
		if name == r.eval {
			nf.Hint = r.hint
		} else {
			nf.Suggestions = suggest(name, r.Names())
		}

		return Fail(nf)
	}

	defer func() {
		if v := recover(); v != nil {
			logger.Warn("Command panicked.", "name", name, "panic", v)
			res = Raise(fmt.Errorf("%s: panic: %v", name, v))
		}
	}()

	logger.Debug("Dispatching command.", "name", name)

	return c.Run(ctx, args)
}

// Execute dispatches raw and hands the result to v.
func (r *Registry) Execute(ctx context.Context, raw string, v result.Visitor[any, error]) {
	result.Accept(r.Dispatch(ctx, raw), v)
}
