// Package martini_frontdoor is a martini-adapter for frontdoor that runs a
// built pipeline as martini middleware.
package martini_frontdoor

import (
	"net/http"

	"github.com/go-martini/martini"

	"github.com/augustoroman/frontdoor"
	"github.com/augustoroman/frontdoor/chain"
)

// Handler returns martini middleware that runs the pipeline. Requests that no
// step answered continue to the following martini handlers and routes:
//
//	m := martini.Classic()
//	m.Use(martini_frontdoor.Handler(pipeline))
//	m.Get("/api/user/:id", getUser)
func Handler(p *frontdoor.Pipeline) martini.Handler {
	return func(c martini.Context, w http.ResponseWriter, r *http.Request) {
		if p.Serve(w, r) == chain.Continue {
			c.Next()
		}
	}
}
