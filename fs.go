package frontdoor

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/augustoroman/frontdoor/chain"
)

// staticFiles answers requests naming a regular file under root. Missing files
// and directories are left to the following steps, so an index page can answer
// client-side routes.
type staticFiles struct {
	root http.FileSystem
}

func (s staticFiles) Serve(w http.ResponseWriter, r *http.Request) (chain.Outcome, error) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return chain.Continue, nil
	}
	name := r.URL.Path
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	name = path.Clean(name)

	f, err := s.root.Open(name)
	if err != nil {
		return chain.Continue, nil
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return chain.Continue, nil
		}
		return chain.Handled, Error{Code: http.StatusInternalServerError,
			LogMsg: "Cannot stat static file", Cause: err}
	}
	if !info.Mode().IsRegular() {
		return chain.Continue, nil
	}

	noteRequest(r, "static", name)
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return chain.Handled, nil
}
