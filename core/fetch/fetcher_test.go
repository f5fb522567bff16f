package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/scrape/core"
)

func TestFetchHTML(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><h1>Hello</h1></body></html>`))
	}))
	defer server.Close()

	f := New(core.FetchConfig{UserAgent: "scrape-test"})
	res, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "scrape-test", gotUA)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/html", res.ContentType)
	assert.Contains(t, string(res.Body), "<h1>Hello</h1>")
}

func TestFetchRejectsBinary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer server.Close()

	_, err := New(core.FetchConfig{}).Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrNotText)
}

func TestFetchStatusError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := New(core.FetchConfig{}).Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestFetchRejectsLargeBodies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("0123456789"))
	}))
	defer server.Close()

	_, err := New(core.FetchConfig{MaxBytes: 4}).Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrTooLarge)

	res, err := New(core.FetchConfig{MaxBytes: 10}).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(res.Body))
}

func TestFetchImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/logo.png":
			assert.Equal(t, "image/*", r.Header.Get("Accept"))
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte{0x89, 'P', 'N', 'G'})
		default:
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html></html>"))
		}
	}))
	defer server.Close()

	f := New(core.FetchConfig{})
	res, err := f.FetchImage(context.Background(), server.URL+"/logo.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", res.ContentType)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, res.Body)

	_, err = f.FetchImage(context.Background(), server.URL+"/page")
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestFetchCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("late"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(core.FetchConfig{}).Fetch(ctx, server.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsText(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"text/html; charset=utf-8", true},
		{"TEXT/PLAIN", true},
		{"application/xhtml+xml", true},
		{"", true},
		{"application/pdf", false},
		{"image/jpeg", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsText(NormalizeContentType(tt.header)), tt.header)
	}
}
