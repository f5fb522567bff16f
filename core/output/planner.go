package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/gaurav-prasanna/scrape/core"
	"github.com/gaurav-prasanna/scrape/core/target"
)

// DecideMode honors an explicit mode, otherwise picks multiple output when
// more than one query or output name was given.
func DecideMode(explicit core.Mode, queries, outs int) core.Mode {
	if explicit != core.ModeAuto {
		return explicit
	}
	if queries > 1 || outs > 1 {
		return core.ModeMultiple
	}
	return core.ModeSingle
}

// Planner derives output names and applies the overwrite policy.
type Planner struct {
	cfg    *core.RunConfig
	writer *Writer
}

// NewPlanner creates a Planner writing under w's output directory.
func NewPlanner(cfg *core.RunConfig, w *Writer) *Planner {
	return &Planner{cfg: cfg, writer: w}
}

// Mode returns the output mode for a run over the given queries.
func (p *Planner) Mode(queries int) core.Mode {
	return DecideMode(p.cfg.Mode, queries, len(p.cfg.Out))
}

// UnitName returns the output name for the i-th query in multiple mode.
// Explicit --out names are matched positionally.
func (p *Planner) UnitName(i int, t core.Target) string {
	if i < len(p.cfg.Out) {
		return p.cfg.Out[i]
	}
	if t.Kind == core.LocalFile {
		return LocalName(t.Value)
	}
	return URLName(t.Value)
}

// SingleName returns the output name for single mode: the first --out name,
// or a name derived from the first query that is a known file or URL.
func (p *Planner) SingleName(res *target.Result) (string, error) {
	if len(p.cfg.Out) > 0 {
		return p.cfg.Out[0], nil
	}
	for _, t := range res.Targets {
		if t.Kind == core.LocalFile {
			if res.IsKnownFile(t.Value) {
				return LocalName(t.Value), nil
			}
			continue
		}
		q := strings.Trim(t.Value, "/")
		for _, u := range res.URLs {
			if strings.Contains(u, q) {
				return URLName(u), nil
			}
		}
	}
	return "", core.ErrNoOutputName
}

// Resolve turns an output name into a path ending in ext and checks it
// against the overwrite policy. ErrSkipped and ErrOutputExists are returned
// together with the path.
func (p *Planner) Resolve(name, ext string) (string, error) {
	path := p.writer.Path(EnsureExt(name, ext))

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return path, nil
	case err != nil:
		return "", fmt.Errorf("checking %s: %w", path, err)
	}

	switch p.cfg.Overwrite {
	case core.OverwriteAlways:
		return path, nil
	case core.OverwriteSkip:
		return path, core.ErrSkipped
	default:
		return path, fmt.Errorf("%w: %s (use --overwrite or --no-overwrite)", core.ErrOutputExists, path)
	}
}

// DomainDir returns the directory HTML pages for domain are stored in.
func (p *Planner) DomainDir(domain string) string {
	return p.writer.Path(sanitize(domain))
}
