package frontdoor

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
)

// WrapResponseWriter creates a ResponseWriter and returns it as both an
// http.ResponseWriter and a *ResponseWriter.  The first is handed to the rest
// of the pipeline, the second is kept by whoever needs the response metrics.
func WrapResponseWriter(w http.ResponseWriter) (http.ResponseWriter, *ResponseWriter) {
	rw := &ResponseWriter{ResponseWriter: w}
	return rw, rw
}

// ResponseWriter wraps http.ResponseWriter to add tracking of the response size
// and response code.
type ResponseWriter struct {
	http.ResponseWriter
	Size int // The size of the response written so far, in bytes.
	Code int // The status code of the response, or 0 if not written yet.
}

// Written reports whether a status code or body has been sent.
func (w *ResponseWriter) Written() bool { return w.Code != 0 }

// Unwrap returns the underlying writer for http.ResponseController.
func (w *ResponseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("the ResponseWriter doesn't support the Hijacker interface")
	}
	return hijacker.Hijack()
}

func (w *ResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *ResponseWriter) WriteHeader(code int) {
	if w.Code == 0 {
		w.Code = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *ResponseWriter) Write(p []byte) (int, error) {
	if w.Code == 0 {
		w.Code = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.Size += n
	return n, err
}
