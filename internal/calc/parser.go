// Released under an MIT license. See LICENSE.

package calc

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/michaelmacinnis/srepl/internal/lang"
)

type class int

const (
	eof class = iota
	number
	identifier
	keyword
	operator
)

type token struct {
	class  class
	text   string
	offset int
}

func (t token) String() string {
	if t.class == eof {
		return "end of input"
	}

	return strconv.Quote(t.text)
}

// bailout stops parsing at the first syntax error.
type bailout struct {
	msg lang.Message
}

type parser struct {
	src string
	pos int
	tok token
}

// Parse parses text into a unit. Syntax errors produce an invalid unit.
func Parse(text string) (u *Unit) {
	p := &parser{src: text}

	defer func() {
		if v := recover(); v != nil {
			b, ok := v.(bailout)
			if !ok {
				panic(v)
			}

			u = &Unit{messages: []lang.Message{b.msg}}
		}
	}()

	p.next()

	if p.tok.class == eof {
		p.fail(p.tok.offset, "empty input")
	}

	t := p.statement()
	if p.tok.class != eof {
		p.fail(p.tok.offset, "unexpected "+p.tok.String())
	}

	return &Unit{term: t}
}

func (p *parser) fail(offset int, text string) {
	panic(bailout{lang.Message{Severity: lang.Error, Offset: offset, Text: text}})
}

func (p *parser) expect(text string) token {
	t := p.tok
	if t.text != text {
		p.fail(t.offset, fmt.Sprintf("expected %q, found %s", text, t))
	}

	p.next()

	return t
}

func (p *parser) statement() Term {
	if p.tok.class != keyword {
		return p.expression()
	}

	p.next()

	name := p.tok
	if name.class != identifier {
		p.fail(name.offset, "expected name, found "+name.String())
	}

	p.next()
	p.expect("=")

	return &Let{Name: name.text, X: p.expression()}
}

func (p *parser) expression() Term {
	t := p.term()

	for p.tok.class == operator && (p.tok.text == "+" || p.tok.text == "-") {
		op := p.tok
		p.next()
		t = &Bin{Op: op.text[0], L: t, R: p.term(), Offset: op.offset}
	}

	return t
}

func (p *parser) term() Term {
	t := p.unary()

	for p.tok.class == operator && (p.tok.text == "*" || p.tok.text == "/" || p.tok.text == "%") {
		op := p.tok
		p.next()
		t = &Bin{Op: op.text[0], L: t, R: p.unary(), Offset: op.offset}
	}

	return t
}

func (p *parser) unary() Term {
	if p.tok.class == operator && p.tok.text == "-" {
		p.next()

		return &Neg{X: p.unary()}
	}

	return p.primary()
}

func (p *parser) primary() Term {
	t := p.tok

	switch t.class {
	case number:
		p.next()

		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			p.fail(t.offset, "number out of range: "+t.text)
		}

		return &Num{Value: n}

	case identifier:
		p.next()

		return &Var{Name: t.text, Offset: t.offset}

	case operator:
		if t.text == "(" {
			p.next()
			x := p.expression()
			p.expect(")")

			return x
		}
	}

	p.fail(t.offset, "unexpected "+t.String())

	return nil
}

func (p *parser) next() {
	for p.pos < len(p.src) {
		r, w := utf8.DecodeRuneInString(p.src[p.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		p.pos += w
	}

	start := p.pos
	if start == len(p.src) {
		p.tok = token{class: eof, offset: start}
		return
	}

	r, w := utf8.DecodeRuneInString(p.src[start:])

	switch {
	case isDigit(r):
		p.scan(isDigit)
		p.tok = token{class: number, text: p.src[start:p.pos], offset: start}

		if p.pos < len(p.src) && isLetter(rune(p.src[p.pos])) {
			p.fail(p.pos, "malformed number")
		}

	case isLetter(r):
		p.scan(func(r rune) bool { return isLetter(r) || isDigit(r) })

		text := p.src[start:p.pos]

		c := identifier
		if text == "let" {
			c = keyword
		}

		p.tok = token{class: c, text: text, offset: start}

	case r < utf8.RuneSelf && isOperator(byte(r)):
		p.pos += w
		p.tok = token{class: operator, text: p.src[start:p.pos], offset: start}

	default:
		p.fail(start, fmt.Sprintf("unexpected character %q", r))
	}
}

func (p *parser) scan(accept func(rune) bool) {
	for p.pos < len(p.src) {
		r, w := utf8.DecodeRuneInString(p.src[p.pos:])
		if !accept(r) {
			return
		}
		p.pos += w
	}
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isLetter(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isOperator(b byte) bool {
	switch b {
	case '+', '-', '*', '/', '%', '(', ')', '=':
		return true
	}

	return false
}
