package scrape

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/gaurav-prasanna/scrape/core"
)

// PartRemover deletes the part files of the current run.
type PartRemover interface {
	RemoveAll() error
}

// Cleanup describes what to undo when a guarded step fails. In HTML mode
// the fetched pages are the output, so only the working directory is
// restored; otherwise every part file is removed.
type Cleanup struct {
	Parts   PartRemover
	BaseDir string
	HTML    bool
}

// Run performs the cleanup. Failures are logged and never returned so they
// cannot hide the error that triggered the cleanup.
func (c Cleanup) Run(ctx context.Context) {
	log := zerolog.Ctx(ctx)
	if c.HTML {
		if c.BaseDir == "" {
			return
		}
		if err := os.Chdir(c.BaseDir); err != nil {
			log.Debug().Err(err).Str("dir", c.BaseDir).Msg("Could not restore working directory")
		}
		return
	}
	if c.Parts == nil {
		return
	}
	if err := c.Parts.RemoveAll(); err != nil {
		log.Warn().Err(err).Msg("Failed to remove part files")
	}
}

// Guard runs fn and performs c when fn fails or panics. The error or panic
// from fn always propagates after cleanup. Errors seen after ctx was
// cancelled are reported as core.ErrInterrupted.
func Guard(ctx context.Context, c Cleanup, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.Run(ctx)
			panic(r)
		}
	}()

	if err = fn(); err == nil {
		return nil
	}
	c.Run(ctx)
	if ctx.Err() != nil {
		return interrupted(ctx, err)
	}
	return err
}

func interrupted(ctx context.Context, err error) error {
	if errors.Is(err, core.ErrInterrupted) {
		return err
	}
	if err == nil {
		err = ctx.Err()
	}
	return fmt.Errorf("%w: %w", core.ErrInterrupted, err)
}
