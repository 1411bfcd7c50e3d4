package frontdoor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/augustoroman/frontdoor/chain"
)

// Injected for testing
var time_Now = time.Now
var os_Stderr io.Writer = os.Stderr

// LogEntry is the information tracked on a per-request basis for the frontdoor
// request log.  All fields other than Note are automatically filled in.  The
// Note field is a generic key-value string map for adding additional
// per-request metadata to the logs.  Handlers downstream of the pipeline can
// retrieve the entry with LogEntryFrom to add notes.
//
// For example:
//
//	func apiHandler(w http.ResponseWriter, r *http.Request) {
//	    if e := frontdoor.LogEntryFrom(r); e != nil {
//	        e.Note["api"] = "v2"
//	    }
//	    ...
//	}
type LogEntry struct {
	RemoteIp     string
	Start        time.Time
	Request      *http.Request
	StatusCode   int
	ResponseSize int
	Elapsed      time.Duration
	// HandledBy is the name of the pipeline step that answered the request,
	// empty if no step did.
	HandledBy string
	Error     error
	Note      map[string]string
	// set to true to suppress logging this request
	Quiet bool
}

type logEntryKey struct{}

// LogEntryFrom returns the log entry of the request, or nil if request logging
// is not enabled on the pipeline.
func LogEntryFrom(r *http.Request) *LogEntry {
	e, _ := r.Context().Value(logEntryKey{}).(*LogEntry)
	return e
}

func noteRequest(r *http.Request, key, val string) {
	if e := LogEntryFrom(r); e != nil {
		e.Note[key] = val
	}
}

// NoLog suppresses log output for this request. For example, a handler placed
// after the pipeline may silence health checks:
//
//	if r.URL.Path == "/healthz" {
//	    frontdoor.NoLog(r)
//	}
//
// This depends on WriteLog respecting the Quiet flag, which the default
// implementation does.
func NoLog(r *http.Request) {
	if e := LogEntryFrom(r); e != nil {
		e.Quiet = true
	}
}

// LogRequests is a wrapper that creates a log entry when the request enters the
// pipeline and commits it once the pipeline is done.
var LogRequests chain.Wrapper = func(w http.ResponseWriter, r *http.Request) (http.ResponseWriter, *http.Request, chain.After) {
	w, rw := WrapResponseWriter(w)
	entry := NewLogEntry(r)
	r = r.WithContext(context.WithValue(r.Context(), logEntryKey{}, entry))
	entry.Request = r
	return w, r, func(res chain.Result) { entry.Commit(rw, res) }
}

// NewLogEntry creates a *LogEntry and initializes it with basic request
// information.
func NewLogEntry(r *http.Request) *LogEntry {
	return &LogEntry{
		RemoteIp: remoteIp(r),
		Start:    time_Now(),
		Request:  r,
		Note:     map[string]string{},
	}
}

// Commit fills in the remaining *LogEntry fields and writes the entry out.
func (entry *LogEntry) Commit(w *ResponseWriter, res chain.Result) {
	entry.Elapsed = time_Now().Sub(entry.Start)
	entry.ResponseSize = w.Size
	entry.StatusCode = w.Code
	entry.HandledBy = res.HandledBy
	if entry.Error == nil && res.Err != nil && !errors.Is(res.Err, Done) {
		entry.Error = res.Err
	}
	WriteLog(*entry)
}

// Some nice escape codes
const (
	_GREEN  = "\033[32m"
	_YELLOW = "\033[33m"
	_RESET  = "\033[0m"
	_RED    = "\033[91m"
)

// WriteLog is called to actually write a LogEntry out to the log. By default,
// it writes to stderr and colors normal requests green, slow requests yellow,
// and errors red.  You can replace the function to adjust the formatting or use
// whatever logging library you like.
var WriteLog = func(e LogEntry) {
	if e.Quiet {
		return
	}
	col, reset := logColors(e)
	fmt.Fprintf(os_Stderr, "%s%s %s \"%s %s\" (%d %dB %s) [%s] %s%s\n",
		col,
		e.Start.Format(time.RFC3339), e.RemoteIp,
		e.Request.Method, e.Request.RequestURI,
		e.StatusCode, e.ResponseSize, e.Elapsed,
		e.Handler(),
		e.NotesAndError(),
		reset)
}

// Handler returns the name of the step that answered the request, or "-".
func (l LogEntry) Handler() string {
	if l.HandledBy == "" {
		return "-"
	}
	return l.HandledBy
}

// NotesAndError formats the Note values and error (if any) for logging.
func (l LogEntry) NotesAndError() string {
	pairs := make([]string, 0, len(l.Note))
	for k, v := range l.Note {
		pairs = append(pairs, fmt.Sprintf("%s=%q", k, v))
	}
	sort.Strings(pairs)
	msg := strings.Join(pairs, " ")
	if l.Error != nil {
		msg += "\n  ERROR: " + l.Error.Error()
	}
	return msg
}

func logColors(e LogEntry) (start, reset string) {
	col, reset := _GREEN, _RESET
	if e.Elapsed > 30*time.Millisecond {
		col = _YELLOW
	}
	if e.StatusCode >= 400 || e.Error != nil {
		col = _RED
	}
	return col, reset
}

// remoteIp extracts the remote IP from the request.  Adapted from code in
// Martini:
//
//	https://github.com/go-martini/martini/blob/1d33529c15f19/logger.go#L14..L20
func remoteIp(r *http.Request) string {
	if addr := r.Header.Get("X-Real-IP"); addr != "" {
		return addr
	} else if addr := r.Header.Get("X-Forwarded-For"); addr != "" {
		return addr
	}
	return r.RemoteAddr
}
