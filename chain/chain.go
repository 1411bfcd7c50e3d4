// Package chain is the ordered, short-circuiting step list that powers the
// frontdoor pipeline.
//
// Each step either handles the request (Handled) or declines and lets the next
// step run (Continue). Steps may also fail by returning an error, in which case
// the chain is aborted and the most recently registered error handler is
// called. Wrappers run before the remaining steps and register an After
// function that is run once the chain is done, in reverse order, similar to
// Go's defer.
package chain

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"strings"
	"text/tabwriter"
)

// Outcome is the result of running a single step.
type Outcome uint8

const (
	// Continue indicates that the step did not answer the request and that the
	// next step should run.
	Continue Outcome = iota
	// Handled indicates that the step fully answered the request. No further
	// steps run.
	Handled
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Handled:
		return "handled"
	}
	return fmt.Sprintf("Outcome(%d)", uint8(o))
}

// Step is a single request handling stage.
type Step interface {
	Serve(w http.ResponseWriter, r *http.Request) (Outcome, error)
}

// StepFunc adapts an ordinary function to the Step interface.
type StepFunc func(w http.ResponseWriter, r *http.Request) (Outcome, error)

// Serve calls f(w, r).
func (f StepFunc) Serve(w http.ResponseWriter, r *http.Request) (Outcome, error) {
	return f(w, r)
}

// After is run once the chain has finished with the result of the run.
type After func(res Result)

// Wrapper is run in the normal course of the chain. It may replace the
// ResponseWriter and the Request seen by all subsequent steps, and it may
// return an After function that is deferred until the chain is done. After
// functions are called even if a later step fails or panics.
type Wrapper func(w http.ResponseWriter, r *http.Request) (http.ResponseWriter, *http.Request, After)

// ErrorHandler is called when a step returns an error or panics.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultErrorHandler is called when a step fails and no error handler has been
// registered.
var DefaultErrorHandler ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("Unhandled error: %v", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Chain holds the ordered list of steps to execute. Chain is immutable: all
// operations return a new chain.
type Chain struct{ steps []step }

// New returns an empty chain. The zero Chain is also ready to use.
func New() Chain { return Chain{} }

type stepType uint8

const (
	tSTEP stepType = iota
	tWRAP
	tERROR_HANDLER
)

type step struct {
	typ   stepType
	name  string
	run   Step
	wrap  Wrapper
	onErr ErrorHandler
}

// Clone this chain and add the extra steps to the clone.
func (c Chain) with(steps ...step) Chain {
	s := make([]step, 0, len(c.steps)+len(steps))
	s = append(s, c.steps...)
	s = append(s, steps...)
	return Chain{s}
}

// Then adds a named step to the end of the chain.
func (c Chain) Then(name string, s Step) Chain {
	if s == nil {
		panicf("%s step %q is <nil>", Ordinalize(c.countType(tSTEP)+1), name)
	}
	return c.with(step{typ: tSTEP, name: name, run: s})
}

// Wrap adds a named wrapper to the end of the chain. The wrapper runs when it
// is reached; its After function runs once the chain is done.
func (c Chain) Wrap(name string, w Wrapper) Chain {
	if w == nil {
		panicf("wrapper %q is <nil>", name)
	}
	return c.with(step{typ: tWRAP, name: name, wrap: w})
}

// OnErr registers an error handler to be called for failures of subsequent
// steps. It does not affect steps that were added before it.
func (c Chain) OnErr(h ErrorHandler) Chain {
	if h == nil {
		panicf("error handler is <nil>")
	}
	return c.with(step{typ: tERROR_HANDLER, onErr: h})
}

// Len returns the number of steps and wrappers in the chain. Error handlers
// are not counted.
func (c Chain) Len() int { return len(c.Names()) }

// Names returns the names of the steps and wrappers in execution order.
func (c Chain) Names() []string {
	var names []string
	for _, s := range c.steps {
		if s.typ != tERROR_HANDLER {
			names = append(names, s.name)
		}
	}
	return names
}

func (c Chain) countType(typ stepType) int {
	n := 0
	for _, s := range c.steps {
		if s.typ == typ {
			n++
		}
	}
	return n
}

// Result describes a single execution of the chain.
type Result struct {
	// Outcome is Handled if a step answered the request or an error handler
	// was invoked, Continue otherwise.
	Outcome Outcome
	// HandledBy is the name of the step that answered the request, if any.
	HandledBy string
	// Err is the error that aborted the chain, if any. It has already been
	// passed to the error handler.
	Err error
}

// Run executes the chain for the given request.
func (c Chain) Run(w http.ResponseWriter, r *http.Request) Result {
	var (
		res        Result
		afters     []After
		errHandler = DefaultErrorHandler
		executed   []string
	)

execution:
	for _, s := range c.steps {
		switch s.typ {
		case tERROR_HANDLER:
			errHandler = s.onErr
		case tWRAP:
			var after After
			var err error
			w, r, after, err = callWrap(s, w, r, &executed)
			if after != nil {
				afters = append(afters, after)
			}
			if err != nil {
				res.Err = err
				break execution
			}
		case tSTEP:
			outcome, err := callStep(s, w, r, &executed)
			if err != nil {
				res.Err = err
				break execution
			}
			if outcome == Handled {
				res.Outcome, res.HandledBy = Handled, s.name
				break execution
			}
		}
	}

	if res.Err != nil {
		res.Outcome = Handled
		errHandler(w, r, res.Err)
	}

	for i := len(afters) - 1; i >= 0; i-- {
		afters[i](res)
	}

	return res
}

func callStep(s step, w http.ResponseWriter, r *http.Request, executed *[]string) (outcome Outcome, err error) {
	*executed = append(*executed, s.name)
	defer func() {
		if perr := wrapPanic(recover(), *executed); perr != nil {
			outcome, err = Handled, perr
		}
	}()
	return s.run.Serve(w, r)
}

func callWrap(s step, w http.ResponseWriter, r *http.Request, executed *[]string) (
	nw http.ResponseWriter, nr *http.Request, after After, err error,
) {
	*executed = append(*executed, s.name)
	nw, nr = w, r
	defer func() {
		if perr := wrapPanic(recover(), *executed); perr != nil {
			nw, nr, after, err = w, r, nil, perr
		}
	}()
	var ww http.ResponseWriter
	var wr *http.Request
	ww, wr, after = s.wrap(w, r)
	if ww != nil {
		nw = ww
	}
	if wr != nil {
		nr = wr
	}
	return nw, nr, after, nil
}

func wrapPanic(x any, executed []string) error {
	if x == nil {
		return nil
	}
	var stack [8192]byte
	n := runtime.Stack(stack[:], false)

	N := len(executed)
	steps := make([]string, N)
	for i := range executed {
		steps[i] = executed[N-i-1]
	}

	return PanicError{
		Val:      x,
		RawStack: string(stack[:n]),
		Steps:    steps,
	}
}

// PanicError is the error that is produced if a step panics. It includes the
// panic'd value (Val), the raw Go stack trace (RawStack), and the names of the
// steps that had been started (Steps), most recent first.
type PanicError struct {
	Val      any
	RawStack string
	Steps    []string
}

// FilteredStack returns the stack trace without the frames of this package's
// own execution machinery, since these are generally just noise.
func (p PanicError) FilteredStack() []string {
	lines := strings.Split(p.RawStack, "\n")
	var filtered []string
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if strings.HasPrefix(line, "github.com/augustoroman/frontdoor/chain.") &&
			!strings.HasPrefix(line, "github.com/augustoroman/frontdoor/chain.Chain.Run(") &&
			!strings.HasPrefix(line, "github.com/augustoroman/frontdoor/chain.StepFunc.Serve(") {
			i++
			continue
		}
		if strings.HasPrefix(line, "panic(") {
			i++
			continue
		}
		filtered = append(filtered, line)
	}
	return filtered
}

func (p PanicError) Error() string {
	var steps bytes.Buffer
	w := tabwriter.NewWriter(&steps, 5, 7, 2, ' ', 0)
	for i, name := range p.Steps {
		fmt.Fprintf(w, "    %s\t%s\n", Ordinalize(len(p.Steps)-i), name)
	}
	w.Flush()
	name := "<unknown>"
	if len(p.Steps) > 0 {
		name = p.Steps[0]
	}
	return fmt.Sprintf(
		"Panic executing step %s: %v\n"+
			"  Steps executed:\n%s"+
			"  Filtered call stack:\n    %s",
		name, p.Val,
		steps.String(),
		strings.Join(p.FilteredStack(), "\n    "))
}
