package frontdoor

import (
	"net/http"

	"github.com/augustoroman/frontdoor/chain"
)

// Before adapts a plain middleware function into a wrapper for (*Builder).Wrap.
// It runs before the steps and may not replace the writer or request.
func Before(f func(w http.ResponseWriter, r *http.Request)) chain.Wrapper {
	return func(w http.ResponseWriter, r *http.Request) (http.ResponseWriter, *http.Request, chain.After) {
		f(w, r)
		return w, r, nil
	}
}

// Around builds a wrapper from a pair of functions: before runs in the normal
// course of the pipeline and after is deferred until the pipeline is done,
// even when a step fails. Either may be nil.
//
// This is generally useful for operations that need to run before and after
// the steps, such as timing, metrics or allocation/cleanup.
func Around(
	before func(w http.ResponseWriter, r *http.Request),
	after func(w http.ResponseWriter, r *http.Request, res chain.Result),
) chain.Wrapper {
	return func(w http.ResponseWriter, r *http.Request) (http.ResponseWriter, *http.Request, chain.After) {
		if before != nil {
			before(w, r)
		}
		if after == nil {
			return w, r, nil
		}
		return w, r, func(res chain.Result) { after(w, r, res) }
	}
}
