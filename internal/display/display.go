// Released under an MIT license. See LICENSE.

// Package display renders command results for the user.
package display

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/m1gwings/treedrawer/tree"
	"github.com/michaelmacinnis/adapted"
	"github.com/michaelmacinnis/srepl/internal/lang"
	"github.com/michaelmacinnis/srepl/internal/pipeline"
)

type messenger interface {
	Messages() []lang.Message
}

type rooted interface {
	Tree() lang.Term
}

type multiple interface {
	Units() []lang.Unit
}

// T (display) writes successes to one writer and failures and exceptions
// to another. It is the only place results are unwrapped.
type T struct {
	out   io.Writer
	errs  io.Writer
	trees bool
}

// New creates a display. Syntax trees are drawn when trees is true.
func New(out, errs io.Writer, trees bool) *T {
	return &T{out: out, errs: errs, trees: trees}
}

// Trees reports whether syntax trees are drawn.
func (d *T) Trees() bool {
	return d.trees
}

// SetTrees turns tree drawing on or off.
func (d *T) SetTrees(on bool) {
	d.trees = on
}

// Success prints v.
func (d *T) Success(v any) {
	switch v := v.(type) {
	case nil:
	case string:
		if v != "" {
			fmt.Fprintln(d.out, strings.TrimRight(v, "\n"))
		}
	case *pipeline.Evaluated:
		d.messages(d.out, v.Messages())

		if s := v.String(); s != "" {
			fmt.Fprintln(d.out, s)
		}
	case multiple:
		for _, u := range v.Units() {
			d.messages(d.out, u.Messages())
			d.tree(u.Tree())
		}
	case rooted:
		if m, ok := v.(messenger); ok {
			d.messages(d.out, m.Messages())
		}

		d.tree(v.Tree())
	case fmt.Stringer:
		fmt.Fprintln(d.out, v.String())
	default:
		fmt.Fprintf(d.out, "%v\n", v)
	}
}

// Failure prints the reason the input was rejected and, when the input
// reached a toolchain, the source and its messages.
func (d *T) Failure(err error) {
	var invalid *pipeline.Invalid
	if !errors.As(err, &invalid) || invalid.Input == nil || invalid.Unit == nil {
		fmt.Fprintln(d.errs, "error:", err)
		return
	}

	fmt.Fprintf(d.errs, "error: %s rejected %s\n", invalid.Stage, Quote(invalid.Input.Source.Text))

	d.messages(d.errs, invalid.Messages())
}

// Exception prints err.
func (d *T) Exception(err error) {
	fmt.Fprintln(d.errs, "exception:", err)
}

// Quote returns s in canonical quoted form.
func Quote(s string) string {
	return adapted.CanonicalString(s)
}

// Draw returns t drawn as a tree.
func Draw(t lang.Term) string {
	root := tree.NewTree(tree.NodeString(t.Label()))
	grow(root, t)

	return root.String()
}

func grow(node *tree.Tree, t lang.Term) {
	for _, c := range t.Children() {
		grow(node.AddChild(tree.NodeString(c.Label())), c)
	}
}

func (d *T) messages(w io.Writer, ms []lang.Message) {
	for _, m := range ms {
		fmt.Fprintln(w, m)
	}
}

func (d *T) tree(t lang.Term) {
	if t == nil {
		return
	}

	fmt.Fprintln(d.out, t.String())

	if d.trees {
		fmt.Fprintln(d.out, strings.TrimRight(Draw(t), "\n"))
	}
}
