package frontdoor

import (
	"bytes"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/augustoroman/frontdoor/chain"
)

type fakeClock struct {
	now     time.Time
	advance time.Duration
}

func (f *fakeClock) Now() time.Time {
	now := f.now
	f.now = now.Add(f.advance)
	return now
}

func (f *fakeClock) Sleep(dt time.Duration) {
	f.now = f.now.Add(dt)
}

// brokenFS opens every file but cannot stat any of them.
type brokenFS struct{}

type brokenFile struct{ fs.File }

func (brokenFS) Open(name string) (fs.File, error) { return brokenFile{}, nil }
func (brokenFile) Stat() (fs.FileInfo, error)      { return nil, errors.New("disk on fire") }
func (brokenFile) Close() error                    { return nil }

func validateLogMessage(t *testing.T, logs, expectedColor, expectedMsg string) {
	logs = strings.TrimSpace(logs)

	if !strings.HasPrefix(logs, expectedColor) {
		t.Errorf("Expected color prefix of %q: %q", expectedColor, logs)
	} else {
		logs = strings.TrimPrefix(logs, expectedColor)
	}
	if !strings.HasSuffix(logs, _RESET) {
		t.Errorf("Expected reset suffix: %q", logs)
	} else {
		logs = strings.TrimSuffix(logs, _RESET)
	}
	logs = strings.TrimSpace(logs)
	expectedMsg = strings.TrimSpace(expectedMsg)
	if logs != expectedMsg {
		t.Errorf("Wrong log message:\nExp: %q\nGot: %q", expectedMsg, logs)
	}
}

func TestLogger(t *testing.T) {
	// Restore the world from insanity when we're done:
	orig := WriteLog
	defer func() { time_Now = time.Now; os_Stderr = os.Stderr; WriteLog = orig }()

	// Setup our fake world.
	var logBuf bytes.Buffer
	os_Stderr = &logBuf
	clk := &fakeClock{time.Date(2001, 2, 3, 4, 5, 6, 7, time.UTC), 13 * time.Millisecond}
	time_Now = clk.Now

	// Useful handlers:
	sendMsg := func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("Hi there")) }
	slowSendMsg := func(w http.ResponseWriter, r *http.Request) { clk.Sleep(100 * time.Millisecond); sendMsg(w, r) }
	panics := func(w http.ResponseWriter, r *http.Request) { sendMsg(w, r); panic("oops") }
	addsNote := func(w http.ResponseWriter, r *http.Request) {
		e := LogEntryFrom(r)
		e.Note["a"] = "x"
		e.Note["b"] = "y"
		sendMsg(w, r)
	}
	logged := func(h http.HandlerFunc) http.Handler {
		p, err := New().Log().Build()
		if err != nil {
			t.Fatal(err)
		}
		return p.Then(h)
	}
	failing := func() http.Handler {
		p, err := New().Log().StaticFS(brokenFS{}).Build()
		if err != nil {
			t.Fatal(err)
		}
		return p
	}

	var resp *httptest.ResponseRecorder
	var req *http.Request

	// Test a normal response:
	logBuf.Reset()
	resp = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/", nil)
	req.RequestURI = req.URL.String()
	req.Header.Add("X-Real-IP", "123.456.789.0")
	logged(addsNote).ServeHTTP(resp, req)
	validateLogMessage(t, logBuf.String(), _GREEN,
		`2001-02-03T04:05:06Z 123.456.789.0 "GET /" (200 8B 13ms) [next] a="x" b="y"`)

	// Test a slow response:
	logBuf.Reset()
	resp = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/slow", nil)
	req.RequestURI = req.URL.String()
	req.Header.Add("X-Forwarded-For", "<any string>")
	logged(slowSendMsg).ServeHTTP(resp, req)
	validateLogMessage(t, logBuf.String(), _YELLOW,
		`2001-02-03T04:05:06Z <any string> "POST /slow" (200 8B 113ms) [next]`)

	// Test a failed response:
	logBuf.Reset()
	resp = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/fail", nil)
	req.RequestURI = req.URL.String()
	req.RemoteAddr = "[::1]:56596"
	failing().ServeHTTP(resp, req)
	validateLogMessage(t, logBuf.String(), _RED,
		`2001-02-03T04:05:06Z [::1]:56596 "GET /fail" (500 22B 13ms) [-] `+"\n"+
			`  ERROR: (500) Cannot stat static file: disk on fire`)

	// Test a rejected request (should be red, but without an error):
	logBuf.Reset()
	resp = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/private", nil)
	req.RequestURI = req.URL.String()
	req.RemoteAddr = "[::1]:56596"
	req.Header.Add("X-Forwarded-For", "<any string>")
	req.Header.Add("X-Real-IP", "123.456.789.0") // takes precedence
	p, _ := New().Log().Authorize("u", "p").Build()
	p.ServeHTTP(resp, req)
	validateLogMessage(t, logBuf.String(), _RED,
		`2001-02-03T04:05:06Z 123.456.789.0 "GET /private" (401 13B 13ms) [authorize] auth="missing"`)

	// Test a suppressed log.
	logBuf.Reset()
	resp = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/", nil)
	logged(func(w http.ResponseWriter, r *http.Request) { NoLog(r); addsNote(w, r) }).ServeHTTP(resp, req)
	if logBuf.String() != "" {
		t.Errorf("Expected no log output, but got [%s]", logBuf.String())
	}

	// Test that a panic should be recorded.
	var log LogEntry
	WriteLog = func(e LogEntry) { log = e }
	resp = httptest.NewRecorder()
	req, _ = http.NewRequest("PUT", "/slowfail", nil)
	req.RequestURI = req.URL.String()
	req.RemoteAddr = "<remote>"
	logged(panics).ServeHTTP(resp, req)

	var perr chain.PanicError
	if !errors.As(log.Error, &perr) {
		t.Errorf("log error should be a panic, but is: %#v", log.Error)
	} else if msg := perr.Error(); !strings.Contains(msg, `Panic executing step next`) {
		t.Errorf("Bad err message: %s", msg)
	} else if !strings.Contains(msg, `oops`) {
		t.Errorf("Bad err message: %s", msg)
	}

	if resp.Body.String() != "Hi thereInternal Server Error\n" {
		t.Errorf("Incorrect client response: %q", resp.Body.String())
	}
}

func TestLogEntryWithoutLogging(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if LogEntryFrom(req) != nil {
		t.Errorf("Expected no log entry without request logging")
	}
	// Must not panic.
	NoLog(req)
	noteRequest(req, "k", "v")
}
