package parser

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tikaXHTML = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><meta name="xmpTPg:NPages" content="3"/><title></title></head>
<body>
<div class="page"><p>Experienced Python developer</p>
<p>SQL and Docker</p></div>
<div class="page"><p>
</p></div>
<div class="page"><p>Linux &amp; AWS</p></div>
</body></html>`

func newTikaTestServer(t *testing.T, handler http.HandlerFunc) *TikaPDFExtractor {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	extractor, err := NewTikaPDFExtractor(server.URL+"/",
		WithTikaLogger(log.New(io.Discard, "", 0)),
		WithTikaTimeout(5*time.Second),
	)
	require.NoError(t, err)
	return extractor
}

func TestTikaPDFExtractorPages(t *testing.T) {
	var gotBody []byte
	extractor := newTikaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/tika", r.URL.Path)
		assert.Equal(t, "application/pdf", r.Header.Get("Content-Type"))
		assert.Equal(t, "text/html", r.Header.Get("Accept"))
		assert.Equal(t, "resume.pdf", r.Header.Get("X-Tika-Resource-Name"))
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(tikaXHTML))
	})

	text, metadata, err := extractor.ExtractTextFromBytes(context.Background(), []byte("%PDF-1.4 fake"), "resume.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(gotBody))
	assert.Equal(t, "Experienced Python developer\n\nSQL and Docker\nLinux & AWS\n", text)
	assert.Equal(t, 3, metadata["page_count"])
	assert.Equal(t, 1, metadata["empty_pages"])
	assert.Equal(t, len(text), metadata["text_length"])
}

func TestTikaPDFExtractorWithoutPageMarkers(t *testing.T) {
	extractor := newTikaTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>Kubernetes operator</p></body></html>`))
	})

	text, metadata, err := extractor.ExtractTextFromReader(context.Background(), strings.NewReader("%PDF-"), "r.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Kubernetes operator\n", text)
	assert.Equal(t, 1, metadata["page_count"])
}

func TestTikaPDFExtractorErrorStatus(t *testing.T) {
	extractor := newTikaTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Unprocessable", http.StatusUnprocessableEntity)
	})

	_, _, err := extractor.ExtractTextFromBytes(context.Background(), []byte("garbage"), "bad.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestTikaPDFExtractorFromFile(t *testing.T) {
	extractor := newTikaTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(tikaXHTML))
	})

	path := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0644))
	text, _, err := extractor.ExtractFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, text, "Python developer")

	_, _, err = extractor.ExtractFromFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestNewTikaPDFExtractorRequiresURL(t *testing.T) {
	_, err := NewTikaPDFExtractor("")
	assert.Error(t, err)
}
