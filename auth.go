package frontdoor

import (
	"crypto/subtle"
	"net/http"

	"github.com/augustoroman/frontdoor/chain"
)

const basicRealm = `Basic realm="Authorization Required"`

type basicAuth struct {
	username, password []byte
}

func (a basicAuth) Serve(w http.ResponseWriter, r *http.Request) (chain.Outcome, error) {
	user, pass, ok := r.BasicAuth()
	if ok && a.matches(user, pass) {
		noteRequest(r, "user", user)
		return chain.Continue, nil
	}
	if ok {
		noteRequest(r, "auth", "rejected")
	} else {
		noteRequest(r, "auth", "missing")
	}
	w.Header().Set("WWW-Authenticate", basicRealm)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
	return chain.Handled, nil
}

// Both fields are always compared so the timing does not reveal which one was
// wrong.
func (a basicAuth) matches(user, pass string) bool {
	u := subtle.ConstantTimeCompare([]byte(user), a.username)
	p := subtle.ConstantTimeCompare([]byte(pass), a.password)
	return u&p == 1
}
