package calc

import (
	"context"
	"math"
	"testing"

	"github.com/michaelmacinnis/srepl/internal/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		text string
		want string
	}{
		{"1+2", "1 + 2"},
		{"(1+2)", "1 + 2"},
		{"1 - (2 - 3)", "1 - (2 - 3)"},
		{"(1 - 2) - 3", "1 - 2 - 3"},
		{"2 * (3 + 4)", "2 * (3 + 4)"},
		{"-x * 2", "-x * 2"},
		{"-(x * 2)", "-(x * 2)"},
		{"--1", "--1"},
		{"let total = answer % 5", "let total = answer % 5"},
	} {
		u := Parse(tc.text)
		require.True(t, u.Valid(), tc.text)
		assert.Empty(t, u.Messages(), tc.text)
		assert.Equal(t, tc.want, u.Tree().String(), tc.text)
	}
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		text   string
		offset int
		msg    string
	}{
		{"", 0, "empty input"},
		{"   ", 3, "empty input"},
		{"(1 + 2", 6, `expected ")", found end of input`},
		{"1 +", 3, "unexpected end of input"},
		{"1 2", 2, `unexpected "2"`},
		{"let = 3", 4, `expected name, found "="`},
		{"let x 3", 6, `expected "=", found "3"`},
		{"12ab", 2, "malformed number"},
		{"1 $ 2", 2, `unexpected character '$'`},
		{"99999999999999999999", 0, "number out of range: 99999999999999999999"},
	} {
		u := Parse(tc.text)
		require.False(t, u.Valid(), tc.text)
		assert.Nil(t, u.Tree(), tc.text)
		require.Len(t, u.Messages(), 1, tc.text)

		m := u.Messages()[0]
		assert.Equal(t, lang.Error, m.Severity, tc.text)
		assert.Equal(t, tc.offset, m.Offset, tc.text)
		assert.Equal(t, tc.msg, m.Text, tc.text)
	}
}

func TestTermShape(t *testing.T) {
	u := Parse("let y = -x + 1")
	root := u.Tree()

	assert.Equal(t, "let y", root.Label())
	require.Len(t, root.Children(), 1)

	sum := root.Children()[0]
	assert.Equal(t, "+", sum.Label())
	require.Len(t, sum.Children(), 2)
	assert.Equal(t, "neg", sum.Children()[0].Label())
	assert.Equal(t, "1", sum.Children()[1].Label())
}

func source(text string) lang.Source {
	return lang.Source{Name: "test", Text: text, Project: lang.Project{Root: "/p"}}
}

func analyze(t *testing.T, c *Context, text string) lang.Unit {
	t.Helper()

	u, err := Analyzer{}.Parse(context.Background(), source(text))
	require.NoError(t, err)

	au, err := Analyzer{}.Analyze(context.Background(), u, c)
	require.NoError(t, err)

	return au
}

func TestAnalyze(t *testing.T) {
	c := NewContext("answer")

	u := analyze(t, c, "answer + y")
	assert.False(t, u.Valid())
	assert.Equal(t, []lang.Message{{Severity: lang.Error, Offset: 9, Text: "unbound name y"}}, u.Messages())

	u = analyze(t, c, "let y = answer / 0")
	assert.True(t, u.Valid())
	assert.Equal(t, []lang.Message{{Severity: lang.Warning, Offset: 15, Text: "division by zero"}}, u.Messages())
	assert.False(t, c.Declared("y"))

	c.Commit(context.Background(), u.Tree())
	assert.True(t, c.Declared("y"))

	u = analyze(t, c, "let y = 1")
	assert.True(t, u.Valid())
	assert.Equal(t, []lang.Message{{Severity: lang.Note, Text: "redefines y"}}, u.Messages())

	u = analyze(t, c, "let z = nope")
	assert.False(t, u.Valid())
	assert.False(t, c.Declared("z"))
}

func TestCommitDeclaresLetsOnly(t *testing.T) {
	c := NewContext()

	c.Commit(context.Background(), Parse("x + 1").Tree())
	c.Commit(context.Background(), Parse("let y = 2").Tree())

	assert.False(t, c.Declared("x"))
	assert.True(t, c.Declared("y"))
}

func TestAnalyzeRejectsForeignInput(t *testing.T) {
	_, err := Analyzer{}.Analyze(context.Background(), Parse("1"), "not a context")
	require.Error(t, err)

	_, err = Analyzer{}.Analyze(context.Background(), nil, NewContext())
	require.ErrorIs(t, err, ErrForeignUnit)
}

func transform(t *testing.T, text, goal string) lang.Unit {
	t.Helper()

	us, err := Parser{}.Transform(context.Background(), Parse(text), nil, goal)
	require.NoError(t, err)
	require.Len(t, us, 1)

	return us[0]
}

func TestTransform(t *testing.T) {
	u := transform(t, "x * (2 + 3) - -4", Fold)
	assert.True(t, u.Valid())
	assert.Equal(t, "x * 5 - -4", u.Tree().String())

	u = transform(t, "1 / (2 - 2)", Fold)
	assert.False(t, u.Valid())
	assert.Equal(t, "division by zero", u.Messages()[0].Text)

	u = transform(t, "-x - -1", Desugar)
	assert.Equal(t, "0 - x - (0 - 1)", u.Tree().String())

	u = transform(t, "((1)) + (2 * 3)", Pretty)
	assert.Equal(t, "1 + 2 * 3", u.Tree().String())

	_, err := Parser{}.Transform(context.Background(), Parse("1"), nil, "compile")
	require.ErrorIs(t, err, ErrUnknownGoal)

	bad := Parse("(")
	us, err := Parser{}.Transform(context.Background(), bad, nil, Fold)
	require.NoError(t, err)
	assert.Same(t, bad, us[0])
}

func invoke(t *testing.T, rt *Runtime, rule, text string, env lang.Env) (lang.Term, lang.Env, error) {
	t.Helper()

	u := Parse(text)
	require.True(t, u.Valid(), text)

	return rt.Invoke(context.Background(), rule, u.Tree(), env)
}

func TestRuntime(t *testing.T) {
	l := New(Definition{Name: "calc", Prelude: map[string]int64{"answer": 42}})

	lr, err := Loader{}.Load(context.Background(), l)
	require.NoError(t, err)

	rt := lr.(*Runtime)

	_, env, err := rt.Invoke(context.Background(), Init, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, Env{"answer": 42}, env)

	v, next, err := invoke(t, rt, Eval, "let x = answer * 2", env)
	require.NoError(t, err)
	assert.Equal(t, "let x = 84", v.String())
	assert.Equal(t, Env{"answer": 42, "x": 84}, next)
	assert.Equal(t, Env{"answer": 42}, env, "environments are not modified")

	v, same, err := invoke(t, rt, Eval, "x % 5 - -1", next)
	require.NoError(t, err)
	assert.Equal(t, "5", v.String())
	assert.Equal(t, next, same)

	_, _, err = invoke(t, rt, Eval, "y", next)
	require.ErrorIs(t, err, ErrUnbound)

	_, _, err = invoke(t, rt, Eval, "1 / 0", next)
	require.ErrorIs(t, err, ErrDivisionByZero)

	_, _, err = rt.Invoke(context.Background(), "run", nil, next)
	require.ErrorIs(t, err, lang.ErrNoRule)

	_, _, err = invoke(t, rt, Eval, "1", map[string]int64{})
	require.Error(t, err)
}

func TestStrictOverflow(t *testing.T) {
	rt := &Runtime{}
	env := Env{"max": math.MaxInt64, "min": math.MinInt64}

	for _, text := range []string{"max + 1", "min - 1", "max * 2", "-min", "min / -1", "min * -1"} {
		_, _, err := invoke(t, rt, EvalStrict, text, env)
		require.ErrorIs(t, err, ErrOverflow, text)

		_, _, err = invoke(t, rt, Eval, text, env)
		require.NoError(t, err, text)
	}

	v, _, err := invoke(t, rt, EvalStrict, "max - 1 + 1", env)
	require.NoError(t, err)
	assert.Equal(t, "9223372036854775807", v.String())
}

func TestLoaderRejectsOtherLanguages(t *testing.T) {
	_, err := Loader{}.Load(context.Background(), &fake{})
	require.Error(t, err)
}

type fake struct{ Language }

func (*fake) Name() string { return "fake" }

func TestLanguage(t *testing.T) {
	full := New(Definition{Name: "calc", Version: "2", Analysis: true, Actions: Actions()})
	assert.Equal(t, "calc@2", full.ID())
	assert.Len(t, full.Facets().Actions, 3)
	assert.True(t, full.Facets().Analysis)

	_, ok := full.Service().(lang.Analyzer)
	assert.True(t, ok)

	plain := New(Definition{Name: "plain", Actions: Actions()})
	assert.Equal(t, "plain", plain.ID())

	names := []string{}
	for _, a := range plain.Facets().Actions {
		names = append(names, a.Name)
	}

	assert.Equal(t, []string{"desugar", "pretty"}, names)

	_, ok = plain.Service().(lang.Analyzer)
	assert.False(t, ok)

	_, ok = plain.Service().(lang.Transformer)
	assert.True(t, ok)
}

func TestProvider(t *testing.T) {
	p := NewProvider()
	l := New(Definition{Name: "calc", Prelude: map[string]int64{"answer": 42}})
	other := New(Definition{Name: "calc", Version: "2"})

	c1, err := p.Get(context.Background(), source("1"), l)
	require.NoError(t, err)

	c2, err := p.Get(context.Background(), source("2"), l)
	require.NoError(t, err)
	assert.Same(t, c1, c2)
	assert.True(t, c1.(*Context).Declared("answer"))

	c3, err := p.Get(context.Background(), source("3"), other)
	require.NoError(t, err)
	assert.NotSame(t, c1, c3)

	p.Forget(l)

	c4, err := p.Get(context.Background(), source("4"), l)
	require.NoError(t, err)
	assert.NotSame(t, c1, c4)

	c5, err := p.Get(context.Background(), source("5"), other)
	require.NoError(t, err)
	assert.Same(t, c3, c5)
}
