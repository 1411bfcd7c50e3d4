package frontdoor

import (
	"compress/gzip"
	"net/http"
	"strings"

	"github.com/augustoroman/frontdoor/chain"
)

const (
	headerAcceptEncoding  = "Accept-Encoding"
	headerContentEncoding = "Content-Encoding"
	headerContentLength   = "Content-Length"
	headerContentType     = "Content-Type"
	headerVary            = "Vary"
)

// Gzip is a wrapper that adds gzip compression to the output of all subsequent
// steps when the client accepts it. Enable it on a pipeline with
// (*Builder).Gzip.
//
// Note that this does NOT auto-detect the content and disable compression for
// already-compressed data (e.g. jpg images).
var Gzip chain.Wrapper = func(w http.ResponseWriter, r *http.Request) (http.ResponseWriter, *http.Request, chain.After) {
	if !strings.Contains(r.Header.Get(headerAcceptEncoding), "gzip") {
		return w, r, nil
	}
	gz := &gzipWriter{ResponseWriter: w}
	return gz, r, func(chain.Result) { gz.Close() }
}

// gzipWriter compresses lazily. Requests nobody answered leave the response
// untouched, and 1xx, 204 and 304 responses are sent uncompressed.
type gzipWriter struct {
	http.ResponseWriter
	gz          *gzip.Writer
	wroteHeader bool
	passthrough bool
}

func (g *gzipWriter) WriteHeader(code int) {
	if g.wroteHeader {
		g.ResponseWriter.WriteHeader(code)
		return
	}
	g.wroteHeader = true
	h := g.Header()
	if code < http.StatusOK || code == http.StatusNoContent || code == http.StatusNotModified ||
		h.Get(headerContentEncoding) != "" {
		g.passthrough = true
	} else {
		h.Set(headerContentEncoding, "gzip")
		h.Add(headerVary, headerAcceptEncoding)
		h.Del(headerContentLength)
	}
	g.ResponseWriter.WriteHeader(code)
}

func (g *gzipWriter) Write(p []byte) (int, error) {
	if !g.wroteHeader {
		if len(g.Header().Get(headerContentType)) == 0 {
			g.Header().Set(headerContentType, http.DetectContentType(p))
		}
		g.WriteHeader(http.StatusOK)
	}
	if g.passthrough {
		return g.ResponseWriter.Write(p)
	}
	if g.gz == nil {
		g.gz = gzip.NewWriter(g.ResponseWriter)
	}
	return g.gz.Write(p)
}

func (g *gzipWriter) Unwrap() http.ResponseWriter { return g.ResponseWriter }

// Close flushes the compressed stream, if one was started.
func (g *gzipWriter) Close() error {
	if g.gz == nil {
		return nil
	}
	return g.gz.Close()
}
