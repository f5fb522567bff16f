package target

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/scrape/core"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare host", in: "example", want: "http://example.com"},
		{name: "host with path", in: "example.com/a", want: "http://example.com/a"},
		{name: "trailing slashes", in: "example.com/docs//", want: "http://example.com/docs"},
		{name: "scheme kept", in: "https://example.org/x", want: "https://example.org/x"},
		{name: "bare host with port", in: "intranet:8080/wiki", want: "http://intranet.com:8080/wiki"},
		{name: "localhost untouched", in: "localhost:3000", want: "http://localhost:3000"},
		{name: "ip untouched", in: "127.0.0.1:9000/page", want: "http://127.0.0.1:9000/page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeURLRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "///"} {
		_, err := NormalizeURL(in)
		assert.ErrorIs(t, err, core.ErrTargetResolution, "input %q", in)
	}
}

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	report := filepath.Join(dir, "report.html")
	require.NoError(t, os.WriteFile(report, []byte("<p>hi</p>"), 0o644))

	res, err := Classify([]string{report, "example.com/a/", "example.com/a"})
	require.NoError(t, err)

	assert.Equal(t, []string{report}, res.Files)
	require.Len(t, res.Targets, 3)
	assert.Equal(t, core.LocalFile, res.Targets[0].Kind)
	assert.Equal(t, core.RemoteURL, res.Targets[1].Kind)
	assert.Equal(t, "http://example.com/a", res.Targets[1].Value)
	assert.Equal(t, "http://example.com/a", res.Targets[2].Value)
	assert.Equal(t, []string{report, "http://example.com/a", "http://example.com/a"}, res.Queries)
	assert.Equal(t, []string{"http://example.com/a"}, res.URLs, "URLs are deduplicated")
	assert.True(t, res.HasURLs())
}

func TestClassifyDirectoryIsNotAFile(t *testing.T) {
	// An absolute directory path is not a file, and as a URL it has no host.
	_, err := Classify([]string{t.TempDir()})
	assert.ErrorIs(t, err, core.ErrTargetResolution)
}

func TestClassifyEmptyQuery(t *testing.T) {
	_, err := Classify([]string{"example.com", " "})
	assert.ErrorIs(t, err, core.ErrTargetResolution)
}

func TestDropFiles(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(local, []byte("notes"), 0o644))

	res, err := Classify([]string{local, "example.com"})
	require.NoError(t, err)

	assert.True(t, res.IsKnownFile(local))
	assert.Equal(t, 1, res.DropFiles())
	assert.Empty(t, res.Files)
	assert.False(t, res.IsKnownFile(local))
	require.Len(t, res.Targets, 2, "targets keep their positions")
	assert.Equal(t, "http://example.com", res.Targets[1].Value)
}

func TestDomain(t *testing.T) {
	assert.Equal(t, "example.com", Domain("http://www.example.com:8080/a"))
	assert.Equal(t, "docs.example.com", Domain("https://Docs.Example.com"))
	assert.Equal(t, "", Domain("::"))
}
