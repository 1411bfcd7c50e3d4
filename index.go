package frontdoor

import (
	"net/http"
	"strconv"

	"github.com/augustoroman/frontdoor/chain"
)

// indexPage serves the transformed document. It answers every request that
// reaches it.
type indexPage struct {
	doc []byte
}

func (p indexPage) Serve(w http.ResponseWriter, r *http.Request) (chain.Outcome, error) {
	h := w.Header()
	h.Set(headerContentType, "text/html")
	h.Set(headerContentLength, strconv.Itoa(len(p.doc)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(p.doc)
	}
	return chain.Handled, nil
}
