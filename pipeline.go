package frontdoor

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/augustoroman/frontdoor/chain"
)

// Pipeline is a built front controller. It is an http.Handler and is safe for
// concurrent use.
type Pipeline struct {
	c chain.Chain
}

// ServeHTTP runs the pipeline. If no step answers the request, nothing is
// written.
func (p *Pipeline) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.c.Run(w, r)
}

// Serve runs the pipeline and reports whether a step answered the request (or
// failed). Continue means the caller may answer the request itself.
func (p *Pipeline) Serve(w http.ResponseWriter, r *http.Request) chain.Outcome {
	return p.c.Run(w, r).Outcome
}

// Then returns a pipeline that hands requests nobody answered to next.
// Wrappers such as request logging and gzip also cover next.
func (p *Pipeline) Then(next http.Handler) *Pipeline {
	if next == nil {
		return p
	}
	return &Pipeline{p.c.Then("next", chain.StepFunc(
		func(w http.ResponseWriter, r *http.Request) (chain.Outcome, error) {
			next.ServeHTTP(w, r)
			return chain.Handled, nil
		}))}
}

// Steps returns the names of the wrappers and steps of the pipeline in
// execution order.
func (p *Pipeline) Steps() []string { return p.c.Names() }

// SessionFrom returns the session named cookieName of the request. Within a
// pipeline that has a Session step, handlers downstream (see Then) get the same
// session instance the step saved.
func SessionFrom(r *http.Request, store sessions.Store, cookieName string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(store, cookieName)
}
