package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/scrape/config"
	"github.com/gaurav-prasanna/scrape/core"
)

// parseConvert parses args with a fresh copy of the convert flags and
// returns the queries and the resulting configuration.
func parseConvert(t *testing.T, args ...string) ([]string, *core.RunConfig) {
	t.Helper()
	t.Chdir(t.TempDir())
	fs := pflag.NewFlagSet("convert", pflag.ContinueOnError)
	addConvertFlags(fs)
	require.NoError(t, fs.Parse(args))

	v, err := config.Load("", fs)
	require.NoError(t, err)
	cfg, err := config.Build(v)
	require.NoError(t, err)
	return fs.Args(), cfg
}

func TestConvertLocalFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("report.html", []byte(`<html><body><main><p>Quarterly numbers.</p></main></body></html>`), 0o644))

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"convert", "report.html"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	data, err := os.ReadFile(filepath.Join(dir, "report.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Quarterly numbers.")
	assert.Contains(t, stdout.String(), "✓ Written: ")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitInterrupted, exitCode(fmt.Errorf("%w: %w", core.ErrInterrupted, context.Canceled)))
	assert.Equal(t, exitInterrupted, exitCode(context.Canceled))
	assert.Equal(t, exitFailure, exitCode(errors.New("boom")))
	assert.Equal(t, exitFailure, exitCode(core.ErrFetchFailed))
}

func TestConvertHelpExamplesParse(t *testing.T) {
	var examples []string
	for _, line := range strings.Split(convertCmd.Long, "\n") {
		if line = strings.TrimSpace(line); strings.HasPrefix(line, "scrape convert ") {
			examples = append(examples, line)
		}
	}
	require.NotEmpty(t, examples)

	for _, example := range examples {
		t.Run(example, func(t *testing.T) {
			args := strings.Fields(strings.ReplaceAll(strings.TrimPrefix(example, "scrape convert "), "'", ""))
			queries, cfg := parseConvert(t, args...)
			require.NotEmpty(t, queries)
			if len(cfg.Out) > 0 {
				assert.Len(t, queries, len(cfg.Out), "one output name per query")
			}
		})
	}
}

func TestConvertOutNames(t *testing.T) {
	for _, args := range [][]string{
		{"example.com/a", "example.com/b", "--out", "a,b"},
		{"example.com/a", "example.com/b", "-o", "a", "-o", "b"},
	} {
		queries, cfg := parseConvert(t, args...)
		assert.Equal(t, []string{"example.com/a", "example.com/b"}, queries)
		assert.Equal(t, []string{"a", "b"}, cfg.Out)
	}
}

func TestConvertRegexFlagsKeepCommas(t *testing.T) {
	queries, cfg := parseConvert(t,
		"example.com",
		"--crawl", `/page\d{1,3}`,
		"--filter", `^\d{2,4}$`,
		"-a", "href",
		"-a", "text",
	)
	assert.Equal(t, []string{"example.com"}, queries)
	assert.Equal(t, []string{`/page\d{1,3}`}, cfg.Crawl.Rules)
	assert.Equal(t, []string{`^\d{2,4}$`}, cfg.Filter.Patterns)
	assert.Equal(t, []string{"href", "text"}, cfg.Filter.Attributes)
}

func TestConvertImageFlags(t *testing.T) {
	t.Setenv("SCRAPE_DISABLE_IMGS", "")

	_, cfg := parseConvert(t, "example.com", "--pdf")
	assert.True(t, cfg.Images)

	_, cfg = parseConvert(t, "example.com", "--html", "--crawl-all", "-i")
	assert.True(t, cfg.Images)

	_, cfg = parseConvert(t, "example.com", "--pdf", "--no-images")
	assert.False(t, cfg.Images)
}
