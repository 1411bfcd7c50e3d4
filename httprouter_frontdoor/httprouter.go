// Package httprouter_frontdoor is a httprouter-adapter for frontdoor that lets
// a built pipeline gate httprouter routes or answer the requests no route
// matches.
package httprouter_frontdoor

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/augustoroman/frontdoor"
	"github.com/augustoroman/frontdoor/chain"
)

// Handle returns a httprouter handle that runs the pipeline first. If no step
// answered the request, next is called with the route parameters. next may be
// nil, in which case unanswered requests get an empty response.
//
// The route parameters are also available to the pipeline and its downstream
// handlers through httprouter.ParamsFromContext. For example:
//
//	gate, _ := frontdoor.New().Authorize("admin", pw).Build()
//	r := httprouter.New()
//	r.GET("/api/user/:id", httprouter_frontdoor.Handle(gate, getUser))
func Handle(p *frontdoor.Pipeline, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if len(ps) > 0 {
			r = r.WithContext(context.WithValue(r.Context(), httprouter.ParamsKey, ps))
		}
		if p.Serve(w, r) == chain.Continue && next != nil {
			next(w, r, ps)
		}
	}
}

// Mount installs the pipeline as the router's NotFound handler, so it answers
// every request that no route matches. This is the usual way to serve the
// single-page application next to API routes. Requests the pipeline does not
// answer either get a 404.
func Mount(router *httprouter.Router, p *frontdoor.Pipeline) {
	router.NotFound = p.Then(http.NotFoundHandler())
}
