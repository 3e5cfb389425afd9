// Released under an MIT license. See LICENSE.

package calc

import (
	"strconv"

	"github.com/michaelmacinnis/srepl/internal/lang"
)

// Term is a calc syntax tree node.
type Term interface {
	lang.Term
	precedence() int
}

// Num is an integer literal.
type Num struct {
	Value int64
}

// Var is a reference to a binding.
type Var struct {
	Name   string
	Offset int
}

// Neg is unary minus.
type Neg struct {
	X Term
}

// Bin is a binary operation.
type Bin struct {
	Op     byte
	L, R   Term
	Offset int
}

// Let binds the value of X to Name.
type Let struct {
	Name string
	X    Term
}

func (n *Num) Label() string         { return n.String() }
func (n *Num) Children() []lang.Term { return nil }
func (n *Num) String() string        { return strconv.FormatInt(n.Value, 10) }
func (n *Num) precedence() int       { return atom }

func (v *Var) Label() string         { return v.Name }
func (v *Var) Children() []lang.Term { return nil }
func (v *Var) String() string        { return v.Name }
func (v *Var) precedence() int       { return atom }

func (n *Neg) Label() string         { return "neg" }
func (n *Neg) Children() []lang.Term { return []lang.Term{n.X} }
func (n *Neg) String() string        { return "-" + operand(n.X, unary, false) }
func (n *Neg) precedence() int       { return unary }

func (b *Bin) Label() string         { return string(b.Op) }
func (b *Bin) Children() []lang.Term { return []lang.Term{b.L, b.R} }
func (b *Bin) precedence() int       { return binary(b.Op) }

func (b *Bin) String() string {
	p := b.precedence()

	return operand(b.L, p, false) + " " + string(b.Op) + " " + operand(b.R, p, true)
}

func (l *Let) Label() string         { return "let " + l.Name }
func (l *Let) Children() []lang.Term { return []lang.Term{l.X} }
func (l *Let) String() string        { return "let " + l.Name + " = " + l.X.String() }
func (l *Let) precedence() int       { return statement }

// Precedence levels, loosest first.
const (
	statement = iota
	additive
	multiplicative
	unary
	atom
)

func binary(op byte) int {
	switch op {
	case '*', '/', '%':
		return multiplicative
	}

	return additive
}

// operand renders t as an operand of an operator with precedence p.
// Right operands of equal precedence are parenthesised since every
// binary operator is left associative.
func operand(t Term, p int, right bool) string {
	q := t.precedence()
	if q < p || (right && q == p) {
		return "(" + t.String() + ")"
	}

	return t.String()
}
