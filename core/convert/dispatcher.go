// Package convert routes an output unit to the requested writer: printed
// text, or a text, PDF, Markdown or JSON file. Part files consumed by a
// unit are removed once it is done, whether the conversion worked or not.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gaurav-prasanna/scrape/core"
	"github.com/gaurav-prasanna/scrape/core/extract"
	"github.com/gaurav-prasanna/scrape/core/output"
	"github.com/gaurav-prasanna/scrape/core/render"
)

// PartRemover deletes the part files of the current run.
type PartRemover interface {
	RemoveAll() error
}

// Deps are the collaborators a Dispatcher needs.
type Deps struct {
	Planner   *output.Planner
	Writer    *output.Writer
	Parser    core.TextParser
	Extractor core.Extractor
	// Normalizer returns a Markdown normalizer for pages fetched from origin.
	Normalizer func(origin string) core.Normalizer
	Parts      PartRemover
	Stdout     io.Writer
}

// Dispatcher converts output units according to the configured format.
type Dispatcher struct {
	cfg *core.RunConfig
	Deps
}

// New creates a Dispatcher.
func New(cfg *core.RunConfig, deps Deps) *Dispatcher {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	return &Dispatcher{cfg: cfg, Deps: deps}
}

// Dispatch converts one unit. Errors are wrapped in core.ErrConversion.
func (d *Dispatcher) Dispatch(ctx context.Context, unit core.OutputUnit) error {
	log := zerolog.Ctx(ctx)
	if unit.Remote && d.cfg.Format != core.FormatHTML {
		defer func() {
			if err := d.Parts.RemoveAll(); err != nil {
				log.Warn().Err(err).Msg("Failed to remove part files")
			}
		}()
	}

	var err error
	switch d.cfg.Format {
	case core.FormatPrint:
		err = d.print(ctx, unit)
	case core.FormatText, core.FormatPDF, core.FormatMarkdown, core.FormatJSON:
		err = d.write(ctx, unit)
	default:
		err = fmt.Errorf("format %q is not converted", d.cfg.Format)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", core.ErrConversion, unitLabel(unit), err)
	}
	return nil
}

// print writes the parsed text of every input to stdout, one blank line
// after each input that has any.
func (d *Dispatcher) print(ctx context.Context, unit core.OutputUnit) error {
	for _, in := range unit.Inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		html, err := os.ReadFile(in)
		if err != nil {
			return fmt.Errorf("reading %s: %w", in, err)
		}
		lines, err := d.Parser.Parse(string(html))
		if err != nil {
			return fmt.Errorf("parsing %s: %w", in, err)
		}
		if len(lines) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(d.Stdout, "%s\n\n", strings.Join(lines, "\n")); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) write(ctx context.Context, unit core.OutputUnit) error {
	log := zerolog.Ctx(ctx)

	r := d.renderer()
	path, err := d.Planner.Resolve(unit.Name, r.Extension())
	if errors.Is(err, core.ErrSkipped) {
		log.Warn().Str("path", path).Msg("Output exists, skipping")
		return nil
	}
	if err != nil {
		return err
	}

	pages, err := d.pages(ctx, unit)
	if err != nil {
		return err
	}

	data, err := r.Render(pages)
	if err != nil {
		return err
	}
	if err := d.Writer.Write(path, data); err != nil {
		return err
	}

	log.Debug().Str("path", path).Int("inputs", len(unit.Inputs)).Msg("Wrote output")
	if !d.cfg.Quiet {
		fmt.Fprintf(d.Stdout, "✓ Written: %s\n", path)
	}
	return nil
}

// pages reads every input. Text output and filtered runs use parsed lines;
// the other formats use the main content converted to Markdown.
func (d *Dispatcher) pages(ctx context.Context, unit core.OutputUnit) ([]core.Page, error) {
	useText := d.cfg.Format == core.FormatText || d.cfg.Filter.Active()

	var normalizer core.Normalizer
	if !useText {
		normalizer = d.Normalizer(unit.Origin)
	}

	pages := make([]core.Page, 0, len(unit.Inputs))
	for _, in := range unit.Inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(in)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", in, err)
		}
		html := string(raw)
		page := core.Page{Source: source(unit, in), Title: extract.Title(html)}

		if useText {
			lines, err := d.Parser.Parse(html)
			if err != nil {
				return nil, fmt.Errorf("parsing %s: %w", in, err)
			}
			page.Body = strings.Join(lines, "\n")
		} else {
			fragment, err := d.Extractor.Extract(html)
			if err != nil {
				return nil, fmt.Errorf("extracting %s: %w", in, err)
			}
			if page.Body, err = normalizer.Normalize(fragment); err != nil {
				return nil, fmt.Errorf("normalizing %s: %w", in, err)
			}
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func (d *Dispatcher) renderer() core.Renderer {
	switch d.cfg.Format {
	case core.FormatPDF:
		return render.NewPDFRenderer()
	case core.FormatMarkdown:
		return render.NewMarkdownRenderer()
	case core.FormatJSON:
		return render.NewJSONRenderer()
	default:
		return render.NewTextRenderer()
	}
}

// source names where a page came from for the PDF header.
func source(unit core.OutputUnit, in string) string {
	if unit.Remote && unit.Origin != "" && len(unit.Inputs) == 1 {
		return unit.Origin
	}
	return in
}

func unitLabel(unit core.OutputUnit) string {
	if unit.Name != "" {
		return unit.Name
	}
	return strings.Join(unit.Inputs, ", ")
}
