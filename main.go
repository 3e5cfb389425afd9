// Released under an MIT license. See LICENSE.

// Srepl is an interactive read-eval-print loop over pluggable languages.
// Input lines starting with the command prefix (":" by default) run REPL
// commands. Any other input is evaluated by the loaded language:
//
//	> :load calc
//	loaded calc@1
//	> let x = 6 * 7
//	let x = 42
//	> x - answer
//	0
//	> :help
//
// For more detail, see :help.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/michaelmacinnis/srepl/internal/calc"
	"github.com/michaelmacinnis/srepl/internal/config"
	"github.com/michaelmacinnis/srepl/internal/ctxlog"
	"github.com/michaelmacinnis/srepl/internal/display"
	"github.com/michaelmacinnis/srepl/internal/engine"
	"github.com/michaelmacinnis/srepl/internal/lang"
	"github.com/michaelmacinnis/srepl/internal/repl"
	"github.com/michaelmacinnis/srepl/internal/session"
	"github.com/michaelmacinnis/srepl/internal/system/options"
	"github.com/michaelmacinnis/srepl/internal/system/signals"
	"github.com/michaelmacinnis/srepl/internal/ui"
)

//nolint:gochecknoglobals
var version = "srepl 0.1.0"

func main() {
	options.Parse(version)

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "srepl: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := ctxlog.New(options.LogLevel(), options.LogFormat(), os.Stderr)

	ctx, stop := signal.NotifyContext(
		ctxlog.WithLogger(context.Background(), logger),
		signals.Terminating()...,
	)
	defer stop()

	cfg, err := settings(ctx)
	if err != nil {
		return err
	}

	root, err := os.Getwd()
	if err != nil {
		return err
	}

	s, err := session.New(session.Config{
		Prefix:     cfg.Prefix,
		Catalog:    cfg.Catalog(),
		Provider:   calc.NewProvider(),
		Loader:     calc.Loader{},
		Strategies: cfg.Strategies,
		Strategy:   cfg.Strategy,
		Project:    lang.Project{Root: root},
		Sink:       display.New(os.Stdout, os.Stderr, cfg.Trees),
	})
	if err != nil {
		return err
	}

	if cfg.Language != "" {
		if _, err := s.Load(ctx, cfg.Language); err != nil {
			return err
		}
	}

	e := engine.New(s)
	defer e.Close()

	if !options.Interactive() {
		return repl.Run(ctx, repl.NewLines(os.Stdin), e)
	}

	u, err := ui.New(ctx, cfg.Prompt, s, cfg.History)
	if err != nil {
		return err
	}

	err = repl.Run(ctx, u, e)

	if cerr := u.Close(ctx); err == nil {
		err = cerr
	}

	return err
}

// settings reads the configuration file, if any, and applies the command
// line on top.
func settings(ctx context.Context) (*config.T, error) {
	cfg := config.Default()

	if path := options.Config(); path != "" {
		var err error

		cfg, err = config.Load(ctx, path)
		if err != nil {
			return nil, err
		}
	}

	if l := options.Language(); l != "" {
		cfg.Language = l
	}

	if s := options.Strategy(); s != "" {
		cfg.Strategy = s
	}

	cfg.Trees = cfg.Trees || options.Trees()

	return cfg, nil
}
