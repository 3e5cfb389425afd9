// Released under an MIT license. See LICENSE.

// Package config loads REPL settings, the language catalog and the
// evaluation strategies from an optional HCL file.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/michaelmacinnis/srepl/internal/calc"
	"github.com/michaelmacinnis/srepl/internal/ctxlog"
	"github.com/michaelmacinnis/srepl/internal/lang"
	"github.com/michaelmacinnis/srepl/internal/strategy"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ErrInvalid wraps every semantic problem with a configuration.
var ErrInvalid = errors.New("invalid configuration")

// Language is one entry of the language catalog.
type Language struct {
	Name        string
	Toolchain   string
	Version     string
	Description string
	Analysis    bool
	Prelude     map[string]int64
	Actions     []lang.Action
}

// T (config) holds everything the REPL is configured with.
type T struct {
	Prompt   string
	Prefix   string
	Trees    bool
	History  bool
	Language string
	Strategy string

	Strategies map[string]strategy.Rules
	Languages  []Language
}

// Default returns the configuration used when no file is given.
func Default() *T {
	return &T{
		Prompt:   "> ",
		Prefix:   ":",
		History:  true,
		Language: "calc",
		Strategy: "default",
		Strategies: map[string]strategy.Rules{
			"default": {Init: calc.Init, Eval: calc.Eval},
			"strict":  {Init: calc.Init, Eval: calc.EvalStrict},
		},
		Languages: []Language{
			{
				Name:        "calc",
				Toolchain:   calc.Toolchain,
				Version:     "1",
				Description: "integer calculator with name analysis",
				Analysis:    true,
				Prelude:     map[string]int64{"answer": 42},
				Actions:     calc.Actions(),
			},
			{
				Name:        "calc-plain",
				Toolchain:   calc.Toolchain,
				Version:     "1",
				Description: "integer calculator without analysis",
				Actions:     calc.Actions(),
			},
		},
	}
}

type hclFile struct {
	Prompt     *string        `hcl:"prompt,optional"`
	Prefix     *string        `hcl:"prefix,optional"`
	Trees      *bool          `hcl:"trees,optional"`
	History    *bool          `hcl:"history,optional"`
	Language   *string        `hcl:"default_language,optional"`
	Strategy   *string        `hcl:"default_strategy,optional"`
	Strategies []*hclStrategy `hcl:"strategy,block"`
	Languages  []*hclLanguage `hcl:"language,block"`
}

type hclStrategy struct {
	Name string `hcl:"name,label"`
	Init string `hcl:"init"`
	Eval string `hcl:"eval"`
}

type hclLanguage struct {
	Name        string       `hcl:"name,label"`
	Toolchain   *string      `hcl:"toolchain,optional"`
	Version     string       `hcl:"version,optional"`
	Description string       `hcl:"description,optional"`
	Analysis    bool         `hcl:"analysis,optional"`
	Prelude     *cty.Value   `hcl:"prelude,optional"`
	Actions     []*hclAction `hcl:"action,block"`
}

type hclAction struct {
	Name        string  `hcl:"name,label"`
	Description string  `hcl:"description,optional"`
	Goal        *string `hcl:"goal,optional"`
	Analyzed    bool    `hcl:"analyzed,optional"`
}

// Load reads the HCL file at path over the defaults.
func Load(ctx context.Context, path string) (*T, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading configuration.", "path", path)

	f, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse configuration %s: %w", path, diags)
	}

	c, err := decode(f.Body, path)
	if err != nil {
		return nil, err
	}

	logger.Debug("Configuration loaded.", "languages", len(c.Languages), "strategies", len(c.Strategies))

	return c, nil
}

// LoadBytes reads HCL source over the defaults. The filename is used in
// diagnostics.
func LoadBytes(src []byte, filename string) (*T, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse configuration %s: %w", filename, diags)
	}

	return decode(f.Body, filename)
}

func decode(body hcl.Body, filename string) (*T, error) {
	var f hclFile

	if diags := gohcl.DecodeBody(body, nil, &f); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode configuration %s: %w", filename, diags)
	}

	c := Default()

	set(&c.Prompt, f.Prompt)
	set(&c.Prefix, f.Prefix)
	set(&c.Trees, f.Trees)
	set(&c.History, f.History)
	set(&c.Language, f.Language)
	set(&c.Strategy, f.Strategy)

	if len(f.Strategies) > 0 {
		c.Strategies = make(map[string]strategy.Rules, len(f.Strategies))

		for _, s := range f.Strategies {
			if _, dup := c.Strategies[s.Name]; dup {
				return nil, fmt.Errorf("%w: %s: duplicate strategy %q", ErrInvalid, filename, s.Name)
			}

			c.Strategies[s.Name] = strategy.Rules{Init: s.Init, Eval: s.Eval}
		}

		if f.Strategy == nil {
			c.Strategy = f.Strategies[0].Name
		}
	}

	if len(f.Languages) > 0 {
		c.Languages = make([]Language, 0, len(f.Languages))

		for _, l := range f.Languages {
			converted, err := language(l)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, filename, err)
			}

			c.Languages = append(c.Languages, converted)
		}

		if f.Language == nil {
			c.Language = c.Languages[0].Name
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	return c, nil
}

func language(l *hclLanguage) (Language, error) {
	out := Language{
		Name:        l.Name,
		Toolchain:   calc.Toolchain,
		Version:     l.Version,
		Description: l.Description,
		Analysis:    l.Analysis,
	}

	set(&out.Toolchain, l.Toolchain)

	if l.Prelude != nil && !l.Prelude.IsNull() {
		m, err := convert.Convert(*l.Prelude, cty.Map(cty.Number))
		if err != nil {
			return out, fmt.Errorf("language %q: prelude: %w", l.Name, err)
		}

		if err := gocty.FromCtyValue(m, &out.Prelude); err != nil {
			return out, fmt.Errorf("language %q: prelude: %w", l.Name, err)
		}
	}

	for _, a := range l.Actions {
		goal := a.Name
		set(&goal, a.Goal)

		out.Actions = append(out.Actions, lang.Action{
			Name:        a.Name,
			Description: a.Description,
			Goal:        goal,
			Analyzed:    a.Analyzed,
		})
	}

	return out, nil
}

func set[V any](dst *V, src *V) {
	if src != nil {
		*dst = *src
	}
}

// Validate checks that c is internally consistent.
func (c *T) Validate() error {
	if c.Prefix == "" || strings.IndexFunc(c.Prefix, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: prefix %q must be non-empty and contain no spaces", ErrInvalid, c.Prefix)
	}

	if len(c.Strategies) == 0 {
		return fmt.Errorf("%w: no strategies", ErrInvalid)
	}

	if _, ok := c.Strategies[c.Strategy]; !ok {
		return fmt.Errorf("%w: default strategy %q is not defined", ErrInvalid, c.Strategy)
	}

	seen := map[string]bool{}
	for _, l := range c.Languages {
		if seen[l.Name] {
			return fmt.Errorf("%w: duplicate language %q", ErrInvalid, l.Name)
		}

		seen[l.Name] = true

		if l.Toolchain != calc.Toolchain {
			return fmt.Errorf("%w: language %q: unknown toolchain %q", ErrInvalid, l.Name, l.Toolchain)
		}
	}

	if c.Language != "" && !seen[c.Language] {
		return fmt.Errorf("%w: default language %q is not defined", ErrInvalid, c.Language)
	}

	return nil
}

// Catalog builds the language implementations c describes, keyed by name.
func (c *T) Catalog() map[string]lang.Implementation {
	catalog := make(map[string]lang.Implementation, len(c.Languages))

	for _, l := range c.Languages {
		catalog[l.Name] = calc.New(calc.Definition{
			Name:        l.Name,
			Version:     l.Version,
			Description: l.Description,
			Analysis:    l.Analysis,
			Actions:     l.Actions,
			Prelude:     l.Prelude,
		})
	}

	return catalog
}
