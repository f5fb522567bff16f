// Package scrape runs a whole scrape: it classifies the queries, chooses
// single or multiple output, fetches remote targets into part files and
// hands each output unit to the conversion dispatcher. Every step is
// guarded so that part files and working directory changes never outlive
// a failed or interrupted run.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/gaurav-prasanna/scrape/core"
	"github.com/gaurav-prasanna/scrape/core/output"
	"github.com/gaurav-prasanna/scrape/core/parts"
	"github.com/gaurav-prasanna/scrape/core/target"
)

// Dispatcher converts one output unit.
type Dispatcher interface {
	Dispatch(ctx context.Context, unit core.OutputUnit) error
}

// Deps are the collaborators a Runner needs.
type Deps struct {
	Fetcher    core.Fetcher
	Crawler    core.Crawler
	Images     core.ImageLocalizer
	Parts      *parts.Store
	Planner    *output.Planner
	Dispatcher Dispatcher
	Stdout     io.Writer
}

// Runner executes scrape runs for one configuration.
type Runner struct {
	cfg   *core.RunConfig
	deps  Deps
	fetch *FetchOrchestrator
}

// New creates a Runner.
func New(cfg *core.RunConfig, deps Deps) *Runner {
	if deps.Parts == nil {
		deps.Parts = parts.New("")
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	return &Runner{
		cfg:   cfg,
		deps:  deps,
		fetch: NewFetchOrchestrator(cfg, deps.Fetcher, deps.Crawler, deps.Parts, deps.Images),
	}
}

// Run scrapes queries. The working directory is the same when Run returns
// as when it was called, and no part files are left behind unless HTML
// output was requested.
func (r *Runner) Run(ctx context.Context, queries []string) error {
	log := zerolog.Ctx(ctx)

	base, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	res, err := target.Classify(queries)
	if err != nil {
		return err
	}
	if r.html() && len(res.Files) > 0 {
		n := res.DropFiles()
		log.Error().Err(core.ErrLocalHTML).Int("files", n).Msg("Ignoring local files")
	}

	mode := r.deps.Planner.Mode(len(queries))
	log.Debug().
		Str("mode", string(mode)).
		Str("format", string(r.cfg.Format)).
		Int("files", len(res.Files)).
		Int("urls", len(res.URLs)).
		Strs("queries", res.Queries).
		Msg("Starting run")

	cleanup := Cleanup{Parts: r.deps.Parts, BaseDir: base, HTML: r.html()}
	return Guard(ctx, cleanup, func() error {
		if mode == core.ModeMultiple {
			return r.runMultiple(ctx, res, cleanup)
		}
		return r.runSingle(ctx, res)
	})
}

// runSingle gathers every target into one output unit.
func (r *Runner) runSingle(ctx context.Context, res *target.Result) (err error) {
	if r.html() && res.HasURLs() {
		var scope *output.DirScope
		if scope, err = r.enterDomainDir(ctx, target.Domain(res.URLs[0])); err != nil {
			return err
		}
		defer func() { leave(scope, &err) }()
	}

	unit := core.OutputUnit{}
	seen := make(map[string]bool)
	for _, t := range res.Targets {
		if ctx.Err() != nil {
			return interrupted(ctx, nil)
		}
		if seen[t.Value] {
			continue
		}
		seen[t.Value] = true

		if !t.IsRemote() {
			if res.IsKnownFile(t.Value) {
				unit.Inputs = append(unit.Inputs, t.Value)
			}
			continue
		}

		names, err := r.fetch.Fetch(ctx, t, target.Domain(t.Value))
		if err != nil {
			return err
		}
		unit.Inputs = append(unit.Inputs, names...)
		unit.Remote = true
		if unit.Origin == "" {
			unit.Origin = t.Value
		}
	}

	if r.html() {
		return nil
	}
	if len(unit.Inputs) == 0 {
		zerolog.Ctx(ctx).Warn().Msg("No content to convert")
		return r.deps.Parts.RemoveAll()
	}

	if r.cfg.Format != core.FormatPrint {
		if unit.Name, err = r.deps.Planner.SingleName(res); err != nil {
			return err
		}
	}
	return r.deps.Dispatcher.Dispatch(ctx, unit)
}

// runMultiple writes one output per target. A page that cannot be fetched
// is reported and skipped, and a repeated query is converted once.
func (r *Runner) runMultiple(ctx context.Context, res *target.Result, cleanup Cleanup) error {
	seen := make(map[string]bool)
	for i, t := range res.Targets {
		if ctx.Err() != nil {
			return interrupted(ctx, nil)
		}
		if seen[t.Value] {
			continue
		}
		seen[t.Value] = true

		if !t.IsRemote() {
			if !res.IsKnownFile(t.Value) {
				continue
			}
			unit := core.OutputUnit{Inputs: []string{t.Value}, Name: r.deps.Planner.UnitName(i, t)}
			if err := r.deps.Dispatcher.Dispatch(ctx, unit); err != nil {
				return err
			}
			continue
		}

		err := Guard(ctx, cleanup, func() error { return r.runTarget(ctx, i, t) })
		if errors.Is(err, core.ErrFetchFailed) {
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runTarget(ctx context.Context, i int, t core.Target) (err error) {
	domain := target.Domain(t.Value)
	if r.html() {
		var scope *output.DirScope
		if scope, err = r.enterDomainDir(ctx, domain); err != nil {
			return err
		}
		defer func() { leave(scope, &err) }()
	}

	names, err := r.fetch.Fetch(ctx, t, domain)
	if err != nil {
		return err
	}
	if r.html() {
		return nil
	}
	if len(names) == 0 {
		zerolog.Ctx(ctx).Warn().Str("url", t.Value).Msg("Failed to retrieve content")
		return nil
	}
	return r.deps.Dispatcher.Dispatch(ctx, core.OutputUnit{
		Inputs: names,
		Name:   r.deps.Planner.UnitName(i, t),
		Remote: true,
		Origin: t.Value,
	})
}

func (r *Runner) enterDomainDir(ctx context.Context, domain string) (*output.DirScope, error) {
	dir := r.deps.Planner.DomainDir(domain)
	scope, err := output.EnterDir(dir)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Debug().Str("dir", dir).Msg("Entered domain directory")
	if !r.cfg.Quiet {
		fmt.Fprintf(r.deps.Stdout, "Storing html files in %s/\n", domain)
	}
	return scope, nil
}

// leave returns from a domain directory. A directory that a failed fetch
// left empty is removed.
func leave(scope *output.DirScope, err *error) {
	restore := scope.Restore
	if *err != nil {
		restore = scope.Discard
	}
	if rerr := restore(); rerr != nil && *err == nil {
		*err = rerr
	}
}

func (r *Runner) html() bool {
	return r.cfg.Format == core.FormatHTML
}
