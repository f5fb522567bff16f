package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/scrape/core"
	"github.com/gaurav-prasanna/scrape/core/target"
)

func newPlanner(t *testing.T, cfg *core.RunConfig) *Planner {
	t.Helper()
	w, err := New(t.TempDir())
	require.NoError(t, err)
	return NewPlanner(cfg, w)
}

func TestDecideMode(t *testing.T) {
	tests := []struct {
		name     string
		explicit core.Mode
		queries  int
		outs     int
		want     core.Mode
	}{
		{name: "one query", queries: 1, want: core.ModeSingle},
		{name: "two queries", queries: 2, want: core.ModeMultiple},
		{name: "two outs", queries: 1, outs: 2, want: core.ModeMultiple},
		{name: "explicit single wins", explicit: core.ModeSingle, queries: 3, want: core.ModeSingle},
		{name: "explicit multiple wins", explicit: core.ModeMultiple, queries: 1, want: core.ModeMultiple},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecideMode(tt.explicit, tt.queries, tt.outs))
		})
	}
}

func TestUnitName(t *testing.T) {
	p := newPlanner(t, &core.RunConfig{Out: []string{"first"}})

	assert.Equal(t, "first", p.UnitName(0, core.Target{Kind: core.RemoteURL, Value: "http://example.com/a"}))
	assert.Equal(t, "example.com-b", p.UnitName(1, core.Target{Kind: core.RemoteURL, Value: "http://example.com/b"}))
	assert.Equal(t, "report", p.UnitName(2, core.Target{Kind: core.LocalFile, Value: "report.html"}))
}

func TestSingleName(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("report.html", []byte("x"), 0o644))

	tests := []struct {
		name    string
		out     []string
		queries []string
		want    string
		wantErr error
	}{
		{name: "explicit out", out: []string{"mine", "other"}, queries: []string{"report.html"}, want: "mine"},
		{name: "local file", queries: []string{"report.html"}, want: "report"},
		{name: "url first", queries: []string{"example.com/a", "report.html"}, want: "example.com-a"},
		{name: "nothing", queries: nil, wantErr: core.ErrNoOutputName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := target.Classify(tt.queries)
			require.NoError(t, err)

			got, err := newPlanner(t, &core.RunConfig{Out: tt.out}).SingleName(res)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveAddsExtension(t *testing.T) {
	p := newPlanner(t, &core.RunConfig{Format: core.FormatText})

	path, err := p.Resolve("report", ".txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.writer.OutputDir, "report.txt"), path)

	path, err = p.Resolve("notes.md", ".md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.writer.OutputDir, "notes.md"), path)
}

func TestResolveOverwritePolicy(t *testing.T) {
	tests := []struct {
		name    string
		policy  core.OverwritePolicy
		wantErr error
	}{
		{name: "conflict by default", policy: core.OverwriteConflict, wantErr: core.ErrOutputExists},
		{name: "always", policy: core.OverwriteAlways},
		{name: "skip", policy: core.OverwriteSkip, wantErr: core.ErrSkipped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPlanner(t, &core.RunConfig{Format: core.FormatPDF, Overwrite: tt.policy})
			existing := filepath.Join(p.writer.OutputDir, "out.pdf")
			require.NoError(t, os.WriteFile(existing, []byte("old"), 0o644))

			path, err := p.Resolve("out", ".pdf")
			assert.Equal(t, existing, path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDomainDir(t *testing.T) {
	p := newPlanner(t, &core.RunConfig{})
	assert.Equal(t, filepath.Join(p.writer.OutputDir, "example.com"), p.DomainDir("example.com"))
}
