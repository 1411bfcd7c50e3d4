package frontdoor

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/augustoroman/frontdoor/chain"
)

type sessionStep struct {
	store sessions.Store
	name  string
}

// Serve loads the session, creating a new one if the cookie is missing or
// cannot be decoded, and saves it so the response carries the cookie.
func (s sessionStep) Serve(w http.ResponseWriter, r *http.Request) (chain.Outcome, error) {
	sess, err := sessions.GetRegistry(r).Get(s.store, s.name)
	if err != nil {
		// A stale or forged cookie is replaced by a fresh session.
		noteRequest(r, "session", "reset")
	} else if sess.IsNew {
		noteRequest(r, "session", "new")
	}
	if sess == nil {
		return chain.Handled, Error{Code: http.StatusInternalServerError,
			LogMsg: "Cannot load session", Cause: err}
	}
	if err := sess.Save(r, w); err != nil {
		return chain.Handled, Error{Code: http.StatusInternalServerError,
			LogMsg: "Cannot save session", Cause: err}
	}
	return chain.Continue, nil
}
