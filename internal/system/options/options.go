// Released under an MIT license. See LICENSE.

// Package options parses the command line.
package options

import (
	"os"

	"github.com/docopt/docopt-go"
	"github.com/mattn/go-isatty"
)

//nolint:gochecknoglobals
var (
	config      string
	interactive bool
	language    string
	logFormat   string
	logLevel    string
	strategy    string
	trees       bool
	usage       = `srepl

Usage:
  srepl [-it] [-c CONFIG] [-l LANGUAGE] [-s STRATEGY] [--log-level=LEVEL] [--log-format=FORMAT]
  srepl -h
  srepl -v

Options:
  -c, --config=CONFIG      Read settings from an HCL file.
  -l, --language=LANGUAGE  Load LANGUAGE at start-up.
  -s, --strategy=STRATEGY  Evaluate with STRATEGY.
  -t, --trees              Draw syntax trees.
  -i, --interactive        Invert interactive mode.
  --log-level=LEVEL        Log level: debug, info, warn or error [default: warn].
  --log-format=FORMAT      Log format: text or json [default: text].
  -h, --help               Display this help.
  -v, --version            Print srepl version.

If srepl's stdin is a TTY, interactive features such as line editing,
history and completion are enabled. Otherwise, input is read line by line.
`
)

// Config returns the path of the configuration file, or "".
func Config() string {
	return config
}

// Interactive reports whether to use the line editor.
func Interactive() bool {
	return interactive
}

// Language returns the language to load at start-up, or "".
func Language() string {
	return language
}

// LogFormat returns the log format.
func LogFormat() string {
	return logFormat
}

// LogLevel returns the log level.
func LogLevel() string {
	return logLevel
}

// Strategy returns the strategy to evaluate with, or "".
func Strategy() string {
	return strategy
}

// Trees reports whether syntax trees were requested.
func Trees() bool {
	return trees
}

// Parse parses the process arguments. Help and version requests print and
// exit.
func Parse(version string) {
	p := &docopt.Parser{HelpHandler: docopt.PrintHelpAndExit}

	if err := parse(p, os.Args[1:], version); err != nil {
		// Error in the usage doc. This should never happen.
		panic(err.Error())
	}

	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		interactive = !interactive
	}
}

func parse(p *docopt.Parser, argv []string, version string) error {
	opts, err := p.ParseArgs(usage, argv, version)
	if err != nil {
		return err
	}

	config, _ = opts.String("--config")
	language, _ = opts.String("--language")
	strategy, _ = opts.String("--strategy")
	logLevel, _ = opts.String("--log-level")
	logFormat, _ = opts.String("--log-format")
	trees, _ = opts.Bool("--trees")

	// The flag inverts whatever the terminal check decides.
	interactive, _ = opts.Bool("--interactive")

	return nil
}
