// Package cmd implements the scrape command line using Cobra.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/scrape/core"
)

const version = "1.0.0"

// Exit statuses.
const (
	exitFailure     = 1
	exitInterrupted = 130
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "scrape",
	Short: "scrape turns web pages and local HTML files into text, PDF, Markdown or HTML",
	Long: `scrape fetches web pages (optionally crawling the links they lead to) or reads
local HTML files, and writes their content as text, PDF, Markdown or HTML files,
or prints it.

Usage:
  scrape convert <url|file>... [flags]`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ./scrape.yaml or $HOME/.scrape/scrape.yaml)")
}

// Execute runs the root command and exits non-zero on failure. Ctrl-C
// cancels the run; cleanup happens before the process exits.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if errors.Is(err, core.ErrInterrupted) || errors.Is(err, context.Canceled) {
		return exitInterrupted
	}
	return exitFailure
}

// newLogger writes human readable logs to w. SCRAPE_DEBUG enables debug
// output even in quiet mode.
func newLogger(w io.Writer, quiet bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if quiet {
		level = zerolog.WarnLevel
	}
	if os.Getenv("SCRAPE_DEBUG") != "" {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}
