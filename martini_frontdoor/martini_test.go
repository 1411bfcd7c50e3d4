package martini_frontdoor_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-martini/martini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/augustoroman/frontdoor"
	"github.com/augustoroman/frontdoor/martini_frontdoor"
)

func TestMartiniParamsAvailability(t *testing.T) {
	// An example function using the martini.Params as an input.
	greet := func(w http.ResponseWriter, p martini.Params) {
		fmt.Fprintf(w, "%s %s", p["greeting"], p["name"])
	}

	// An example server using the martini_frontdoor adapter.
	gate, err := frontdoor.New().Authorize("user", "pass").Static("../testdata/static").Build()
	require.NoError(t, err)
	m := martini.Classic()
	m.Use(martini_frontdoor.Handler(gate))
	m.Get("/say/:greeting/:name", greet)

	// Unauthenticated requests are stopped by the pipeline.
	rw := httptest.NewRecorder()
	r, _ := http.NewRequest("GET", "/say/Hi/Bob", nil)
	m.ServeHTTP(rw, r)
	assert.Equal(t, http.StatusUnauthorized, rw.Code)

	// Static files are answered by the pipeline.
	rw = httptest.NewRecorder()
	r, _ = http.NewRequest("GET", "/foo", nil)
	r.SetBasicAuth("user", "pass")
	m.ServeHTTP(rw, r)
	assert.Equal(t, "bar", rw.Body.String())

	// Call the server.
	rw = httptest.NewRecorder()
	r, _ = http.NewRequest("GET", "/say/Hi/Bob", nil)
	r.SetBasicAuth("user", "pass")
	m.ServeHTTP(rw, r)

	// Validate the output.
	if rw.Body.String() != "Hi Bob" {
		t.Errorf("Wrong response: %q", rw.Body.String())
	}
}
