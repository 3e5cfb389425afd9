// Released under an MIT license. See LICENSE.

package calc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/michaelmacinnis/srepl/internal/ctxlog"
	"github.com/michaelmacinnis/srepl/internal/lang"
)

// Transformation goals.
const (
	Fold    = "fold"
	Desugar = "desugar"
	Pretty  = "pretty"
)

var (
	// ErrForeignUnit is returned when a service is handed a unit it did not produce.
	ErrForeignUnit = errors.New("unit was not produced by calc")

	// ErrUnknownGoal is returned for a transformation goal calc does not have.
	ErrUnknownGoal = errors.New("unknown goal")
)

// Unit is a calc parse, analyze or transform unit.
type Unit struct {
	term     Term
	messages []lang.Message
}

// Valid is true when the unit has a tree and no error messages.
func (u *Unit) Valid() bool {
	return u.term != nil && len(lang.Errors(u.messages)) == 0
}

func (u *Unit) Messages() []lang.Message { return u.messages }

// Tree returns the syntax tree, or nil for a unit that failed to parse.
func (u *Unit) Tree() lang.Term {
	if u.term == nil {
		return nil
	}

	return u.term
}

// Context is the semantic state of a project: the names that have been
// declared so far.
type Context struct {
	sync.Mutex

	declared map[string]bool
}

// NewContext creates a context in which names are declared.
func NewContext(names ...string) *Context {
	c := &Context{declared: make(map[string]bool, len(names))}
	for _, n := range names {
		c.declared[n] = true
	}

	return c
}

// Declared reports whether name has been declared.
func (c *Context) Declared(name string) bool {
	c.Lock()
	defer c.Unlock()

	return c.declared[name]
}

// Commit declares the name bound by t, if t is a let.
func (c *Context) Commit(_ context.Context, t lang.Term) {
	if let, ok := t.(*Let); ok {
		c.declare(let.Name)
	}
}

func (c *Context) declare(name string) {
	c.Lock()
	defer c.Unlock()

	c.declared[name] = true
}

// Parser is the service of a calc language without the analysis facet.
type Parser struct{}

// Parse parses the source text.
func (Parser) Parse(ctx context.Context, src lang.Source) (lang.Unit, error) {
	u := Parse(src.Text)

	ctxlog.FromContext(ctx).Debug("Parsed.", "source", src.Name, "valid", u.Valid())

	return u, nil
}

// Transform rewrites the unit's tree toward goal.
func (Parser) Transform(ctx context.Context, u lang.Unit, _ lang.Context, goal string) ([]lang.Unit, error) {
	cu, ok := u.(*Unit)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrForeignUnit, u)
	}

	if cu.term == nil {
		return []lang.Unit{cu}, nil
	}

	ctxlog.FromContext(ctx).Debug("Transforming.", "goal", goal)

	var out *Unit

	switch goal {
	case Fold:
		f := &folder{}
		out = &Unit{term: f.fold(cu.term), messages: f.messages}
	case Desugar:
		out = &Unit{term: desugar(cu.term)}
	case Pretty:
		out = &Unit{term: cu.term}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGoal, goal)
	}

	out.messages = append(append([]lang.Message(nil), cu.messages...), out.messages...)

	return []lang.Unit{out}, nil
}

// Analyzer is the service of a calc language with the analysis facet.
type Analyzer struct {
	Parser
}

// Analyze resolves names in the unit against c. Names are declared by
// Commit, once a let has been evaluated.
func (Analyzer) Analyze(ctx context.Context, u lang.Unit, c lang.Context) (lang.Unit, error) {
	cu, ok := u.(*Unit)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrForeignUnit, u)
	}

	cc, ok := c.(*Context)
	if !ok || cc == nil {
		return nil, fmt.Errorf("analyze: expected a calc context, got %T", c)
	}

	a := &analysis{context: cc}
	a.walk(cu.term)

	out := &Unit{term: cu.term, messages: append(append([]lang.Message(nil), cu.messages...), a.messages...)}

	if let, ok := cu.term.(*Let); ok && out.Valid() && cc.Declared(let.Name) {
		out.messages = append(out.messages, lang.Message{
			Severity: lang.Note,
			Text:     "redefines " + let.Name,
		})
	}

	ctxlog.FromContext(ctx).Debug("Analyzed.", "messages", len(out.messages))

	return out, nil
}

type analysis struct {
	context  *Context
	messages []lang.Message
}

func (a *analysis) walk(t Term) {
	switch t := t.(type) {
	case *Var:
		if !a.context.Declared(t.Name) {
			a.messages = append(a.messages, lang.Message{
				Severity: lang.Error,
				Offset:   t.Offset,
				Text:     "unbound name " + t.Name,
			})
		}
	case *Neg:
		a.walk(t.X)
	case *Bin:
		a.walk(t.L)
		a.walk(t.R)

		if n, ok := t.R.(*Num); ok && n.Value == 0 && (t.Op == '/' || t.Op == '%') {
			a.messages = append(a.messages, lang.Message{
				Severity: lang.Warning,
				Offset:   t.Offset,
				Text:     "division by zero",
			})
		}
	case *Let:
		a.walk(t.X)
	}
}

type folder struct {
	messages []lang.Message
}

func (f *folder) fold(t Term) Term {
	switch t := t.(type) {
	case *Neg:
		x := f.fold(t.X)
		if n, ok := x.(*Num); ok {
			if v, err := negate(n.Value, true); err == nil {
				return &Num{Value: v}
			}
		}

		return &Neg{X: x}

	case *Bin:
		l, r := f.fold(t.L), f.fold(t.R)

		ln, lok := l.(*Num)
		rn, rok := r.(*Num)

		if lok && rok {
			v, err := apply(t.Op, ln.Value, rn.Value, true)
			if err == nil {
				return &Num{Value: v}
			}

			f.messages = append(f.messages, lang.Message{
				Severity: lang.Error,
				Offset:   t.Offset,
				Text:     err.Error(),
			})
		}

		return &Bin{Op: t.Op, L: l, R: r, Offset: t.Offset}

	case *Let:
		return &Let{Name: t.Name, X: f.fold(t.X)}
	}

	return t
}

func desugar(t Term) Term {
	switch t := t.(type) {
	case *Neg:
		return &Bin{Op: '-', L: &Num{}, R: desugar(t.X)}
	case *Bin:
		return &Bin{Op: t.Op, L: desugar(t.L), R: desugar(t.R), Offset: t.Offset}
	case *Let:
		return &Let{Name: t.Name, X: desugar(t.X)}
	}

	return t
}

// Provider hands out one context per project and language.
type Provider struct {
	mu       sync.Mutex
	contexts map[string]*Context
}

// NewProvider creates a provider with no contexts.
func NewProvider() *Provider {
	return &Provider{contexts: map[string]*Context{}}
}

// Get returns the context for the source's project and impl, creating it
// with the language's prelude names declared.
func (p *Provider) Get(ctx context.Context, src lang.Source, impl lang.Implementation) (lang.Context, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := src.Project.Root + "\x00" + impl.ID()

	if c, ok := p.contexts[key]; ok {
		return c, nil
	}

	var names []string
	if l, ok := impl.(*Language); ok {
		for name := range l.prelude {
			names = append(names, name)
		}
	}

	c := NewContext(names...)
	p.contexts[key] = c

	ctxlog.FromContext(ctx).Debug("Context created.", "project", src.Project.Root, "language", impl.ID())

	return c, nil
}

// Forget discards every context for impl.
func (p *Provider) Forget(impl lang.Implementation) {
	p.mu.Lock()
	defer p.mu.Unlock()

	suffix := "\x00" + impl.ID()

	for key := range p.contexts {
		if strings.HasSuffix(key, suffix) {
			delete(p.contexts, key)
		}
	}
}
