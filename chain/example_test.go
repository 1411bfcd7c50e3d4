package chain_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/augustoroman/frontdoor/chain"
)

func ExampleChain() {
	example := chain.Chain{}.
		// Wrappers run when reached and register an After function that runs
		// once the chain is done, even if a later step fails.
		Wrap("timer", func(w http.ResponseWriter, r *http.Request) (http.ResponseWriter, *http.Request, chain.After) {
			fmt.Println("start", r.URL.Path)
			return w, r, func(res chain.Result) { fmt.Println("done", r.URL.Path, res.Outcome) }
		}).
		// Steps that decline the request return chain.Continue.
		Then("robots", chain.StepFunc(func(w http.ResponseWriter, r *http.Request) (chain.Outcome, error) {
			if r.URL.Path != "/robots.txt" {
				return chain.Continue, nil
			}
			fmt.Fprint(w, "User-agent: *")
			return chain.Handled, nil
		})).
		// Anything that gets this far is answered here.
		Then("hello", chain.StepFunc(func(w http.ResponseWriter, r *http.Request) (chain.Outcome, error) {
			fmt.Fprint(w, "hello")
			return chain.Handled, nil
		}))

	for _, path := range []string{"/robots.txt", "/index"} {
		w := httptest.NewRecorder()
		res := example.Run(w, httptest.NewRequest("GET", path, nil))
		fmt.Printf("%s -> %s by %s: %q\n", path, res.Outcome, res.HandledBy, w.Body.String())
	}

	fmt.Println("steps:", strings.Join(example.Names(), ", "))

	// Output:
	// start /robots.txt
	// done /robots.txt handled
	// /robots.txt -> handled by robots: "User-agent: *"
	// start /index
	// done /index handled
	// /index -> handled by hello: "hello"
	// steps: timer, robots, hello
}
