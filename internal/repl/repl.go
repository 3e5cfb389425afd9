// Released under an MIT license. See LICENSE.

// Package repl reads input lines and hands them to an evaluator until the
// input ends or the evaluator asks to stop.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/michaelmacinnis/srepl/internal/ctxlog"
)

// Reader returns the next line of input, or io.EOF when there is none.
type Reader interface {
	Read(ctx context.Context) (string, error)
}

// Evaluator processes one line at a time. Reject reports input that could
// not be read as a line.
type Evaluator interface {
	Evaluate(ctx context.Context, line string)
	Reject(ctx context.Context, err error)
	Stopped() bool
}

// ErrTooLong is returned by Lines for a line over its limit. The rest of the
// line has been discarded and the next Read starts on the following line.
var ErrTooLong = errors.New("line too long")

// MaxLine is the default limit, in bytes, on the length of a line.
const MaxLine = 1 << 20

// Run reads and evaluates lines. It returns nil when the input ends, when
// ctx is cancelled or when the evaluator stops, and the reader's error
// otherwise. A line that is too long is rejected and the loop continues.
func Run(ctx context.Context, r Reader, e Evaluator) error {
	logger := ctxlog.FromContext(ctx)

	for n := 1; ; n++ {
		if ctx.Err() != nil {
			logger.Debug("Stopping, context done.", "cause", context.Cause(ctx))
			return nil
		}

		line, err := r.Read(ctx)
		if errors.Is(err, io.EOF) {
			logger.Debug("Stopping, end of input.", "lines", n-1)
			return nil
		} else if errors.Is(err, ErrTooLong) {
			logger.Debug("Rejecting line.", "line", n, "error", err)
			e.Reject(ctx, err)

			continue
		} else if err != nil {
			return err
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		e.Evaluate(ctx, line)

		if e.Stopped() {
			logger.Debug("Stopping, exit requested.", "lines", n)
			return nil
		}
	}
}

// Lines reads newline separated input.
type Lines struct {
	max int
	r   *bufio.Reader
}

// NewLines creates a reader over r with a limit of MaxLine bytes per line.
func NewLines(r io.Reader) *Lines {
	return NewLinesSize(r, MaxLine)
}

// NewLinesSize creates a reader over r with a limit of max bytes per line.
func NewLinesSize(r io.Reader, max int) *Lines {
	return &Lines{max: max, r: bufio.NewReader(r)}
}

// Read returns the next line without its line ending.
func (l *Lines) Read(_ context.Context) (string, error) {
	var b []byte

	long := false

	for {
		frag, err := l.r.ReadSlice('\n')

		// Room for the longest line plus "\r\n".
		if !long && len(b)+len(frag) > l.max+2 {
			long = true
			b = nil
		}

		if !long {
			b = append(b, frag...)
		}

		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if !long && len(b) == 0 {
				return "", io.EOF
			}
		case err != nil:
			return "", err
		}

		line := strings.TrimSuffix(strings.TrimSuffix(string(b), "\n"), "\r")
		if long || len(line) > l.max {
			return "", fmt.Errorf("%w: over %d bytes", ErrTooLong, l.max)
		}

		return line, nil
	}
}
