package frontdoor

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/augustoroman/frontdoor/chain"
)

// Error is an error implementation that provides the ability to specify three
// things to the frontdoor error handler:
//   - The HTTP status code that should be used in the response.
//   - The client-facing message that should be sent.  Typically this is a
//     sanitized error message, such as "Internal Server Error".
//   - Internal debugging detail including a log message and the underlying
//     error that should be included in the server logs.
//
// Note that Cause may be nil.
type Error struct {
	Code      int
	ClientMsg string
	LogMsg    string
	Cause     error
}

func (e Error) Error() string {
	return fmt.Sprintf("[%d] %s: %v", e.Code, e.LogMsg, e.Cause)
}

func (e Error) Unwrap() error { return e.Cause }

// Done is a sentinel error value that can be used to interrupt the pipeline
// without triggering the default error handling.  HandleError will not
// attempt to write any status code or client message, nor will it add the error
// to the log.
var Done = errors.New("<done>")

// ToError converts any error into an Error. Errors that already are (or wrap)
// an Error are returned as-is with the status code defaulted to 500, panics
// captured by the pipeline are labeled as such, and anything else becomes a
// generic internal failure.
func ToError(err error) Error {
	var e Error
	if !errors.As(err, &e) {
		var perr chain.PanicError
		if errors.As(err, &perr) {
			e = Error{LogMsg: "Panic", Cause: err}
		} else {
			e = Error{LogMsg: "Failure", Cause: err}
		}
	}
	if e.Code == 0 {
		e.Code = http.StatusInternalServerError
	}
	if e.ClientMsg == "" {
		e.ClientMsg = http.StatusText(e.Code)
	}
	return e
}

func handleErrorCommon(r *http.Request, err error) Error {
	e := ToError(err)
	if l := LogEntryFrom(r); l != nil && e.LogMsg != "" {
		if e.Cause != nil {
			l.Error = fmt.Errorf("(%d) %s: %w", e.Code, e.LogMsg, e.Cause)
		} else {
			l.Error = fmt.Errorf("(%d) %s", e.Code, e.LogMsg)
		}
	}
	return e
}

// HandleError is the default error handler of a built pipeline. If the error
// is a frontdoor.Error, it responds with the specified status code and client
// message.  Otherwise, it responds with a 500.  In both cases, the underlying
// error is added to the request log when request logging is enabled.
//
// If the error is frontdoor.Done, HandleError does nothing.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, Done) {
		return
	}
	e := handleErrorCommon(r, err)
	http.Error(w, e.ClientMsg, e.Code)
}

// HandleErrorJson is identical to HandleError except that it responds to the
// client as JSON instead of plain text.  Again, detailed error info is added
// to the request log.
//
// If the error is frontdoor.Done, HandleErrorJson does nothing.
func HandleErrorJson(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, Done) {
		return
	}
	e := handleErrorCommon(r, err)
	w.Header().Set(headerContentType, "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(e.Code)
	fmt.Fprintf(w, `{"error":%q}`+"\n", e.ClientMsg)
}

// TemplateReadError is returned by Build when the template of an Index step
// cannot be read.
type TemplateReadError struct {
	Path string
	Err  error
}

func (e *TemplateReadError) Error() string {
	return fmt.Sprintf("cannot read index template %q: %v", e.Path, e.Err)
}

func (e *TemplateReadError) Unwrap() error { return e.Err }

// DuplicateStepError is returned by Build when the same kind of step was
// configured more than once. First and Second are the 1-based positions of the
// two configuration calls.
type DuplicateStepError struct {
	Kind          string
	First, Second int
}

func (e *DuplicateStepError) Error() string {
	return fmt.Sprintf("%s configured twice: %s and %s configuration calls",
		e.Kind, chain.Ordinalize(e.First), chain.Ordinalize(e.Second))
}

// ConfigError is returned by Build when a configuration call was given
// invalid arguments.
type ConfigError struct {
	Call int    // 1-based position of the offending configuration call
	Step string // kind of step being configured
	Msg  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s configuration call (%s): %s", chain.Ordinalize(e.Call), e.Step, e.Msg)
}

// ErrBuilt is returned when a Builder is used after Build has been called.
var ErrBuilt = errors.New("frontdoor: builder already built")
