package repl

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	lines    []string
	rejected []error
	stopAt   string
	stop     bool
}

func (r *recorder) Evaluate(_ context.Context, line string) {
	r.lines = append(r.lines, line)
	r.stop = line == r.stopAt
}

func (r *recorder) Reject(_ context.Context, err error) {
	r.rejected = append(r.rejected, err)
}

func (r *recorder) Stopped() bool {
	return r.stop
}

func TestRunUntilEOF(t *testing.T) {
	r := &recorder{}

	err := Run(context.Background(), NewLines(strings.NewReader("1 + 2\n\n   \n:help\r\nlast")), r)
	require.NoError(t, err)

	assert.Equal(t, []string{"1 + 2", ":help", "last"}, r.lines)
}

func TestRunUntilStopped(t *testing.T) {
	r := &recorder{stopAt: ":exit"}

	err := Run(context.Background(), NewLines(strings.NewReader("a\n:exit\nb\n")), r)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", ":exit"}, r.lines)
}

type cancelling struct {
	cancel context.CancelFunc
	reads  int
}

func (c *cancelling) Read(context.Context) (string, error) {
	c.reads++
	c.cancel()

	return "a", nil
}

func TestRunUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := &cancelling{cancel: cancel}
	r := &recorder{}

	require.NoError(t, Run(ctx, c, r))

	assert.Equal(t, 1, c.reads)
	assert.Equal(t, []string{"a"}, r.lines)
}

type failing struct{}

var errBroken = errors.New("broken")

func (failing) Read(context.Context) (string, error) {
	return "", errBroken
}

func TestRunReturnsReadErrors(t *testing.T) {
	err := Run(context.Background(), failing{}, &recorder{})
	require.ErrorIs(t, err, errBroken)
}

func TestLines(t *testing.T) {
	l := NewLines(strings.NewReader("x\n"))

	line, err := l.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "x", line)

	_, err = l.Read(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestRunReadsLongLines(t *testing.T) {
	long := strings.Repeat("1+", 40000) + "1"
	r := &recorder{}

	err := Run(context.Background(), NewLines(strings.NewReader("1 + 2\n"+long+"\n:help\n")), r)
	require.NoError(t, err)

	assert.Equal(t, []string{"1 + 2", long, ":help"}, r.lines)
	assert.Empty(t, r.rejected)
}

func TestRunRejectsOversizedLines(t *testing.T) {
	r := &recorder{}
	in := "1 + 2\n" + strings.Repeat("x", 9000) + "\n:help\n" + strings.Repeat("y", 20)

	err := Run(context.Background(), NewLinesSize(strings.NewReader(in), 16), r)
	require.NoError(t, err)

	assert.Equal(t, []string{"1 + 2", ":help"}, r.lines)
	require.Len(t, r.rejected, 2)
	assert.ErrorIs(t, r.rejected[0], ErrTooLong)
	assert.EqualError(t, r.rejected[1], "line too long: over 16 bytes")
}

func TestLinesLimit(t *testing.T) {
	l := NewLinesSize(strings.NewReader("0123456789abcdef\r\n0123456789abcdefg\nend"), 16)

	line, err := l.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef", line)

	_, err = l.Read(context.Background())
	require.ErrorIs(t, err, ErrTooLong)

	line, err = l.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "end", line)

	_, err = l.Read(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}
