package frontdoor

import (
	"io/fs"
	"net/http"

	rice "github.com/GeertJohan/go.rice"
	"github.com/gorilla/sessions"
	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/augustoroman/frontdoor/chain"
	"github.com/augustoroman/frontdoor/indexpage"
)

type stepKind uint8

const (
	kindAuthorize stepKind = iota
	kindSession
	kindStatic
	kindIndex
)

func (k stepKind) String() string {
	switch k {
	case kindAuthorize:
		return "authorize"
	case kindSession:
		return "session"
	case kindStatic:
		return "static"
	case kindIndex:
		return "index"
	}
	return "unknown"
}

type stepConfig struct {
	kind    stepKind
	call    int
	resolve func(fsys vfs.FileSystem) (chain.Step, error)
}

type namedWrap struct {
	name string
	wrap chain.Wrapper
}

// Builder assembles a Pipeline. Each configuration call appends one step and
// returns the same builder so that calls can be chained. Steps run in call
// order, so a step only sees the requests that earlier steps let through:
//
//	p, err := frontdoor.New().
//	    Authorize("admin", "hunter2").
//	    Session(secret, "sid").
//	    Static("./public").
//	    Index("./public/index.html", "My App", frontdoor.Theme("dark")).
//	    Build()
//
// Configuration mistakes are recorded and reported by Build. A Builder is not
// safe for concurrent use and may only be built once.
type Builder struct {
	fs    vfs.FileSystem
	steps []stepConfig
	wraps []namedWrap
	onErr chain.ErrorHandler
	calls int
	err   error
	built bool
}

// New returns an empty Builder. Built without any steps, the pipeline answers
// nothing.
func New() *Builder {
	return &Builder{fs: osfs.New(), onErr: HandleError}
}

func (b *Builder) add(kind stepKind, resolve func(vfs.FileSystem) (chain.Step, error)) *Builder {
	b.calls++
	if b.built || b.err != nil {
		return b
	}
	for _, s := range b.steps {
		if s.kind == kind {
			b.err = &DuplicateStepError{Kind: kind.String(), First: s.call, Second: b.calls}
			return b
		}
	}
	b.steps = append(b.steps, stepConfig{kind, b.calls, resolve})
	return b
}

func (b *Builder) fail(kind stepKind, msg string) *Builder {
	b.calls++
	if !b.built && b.err == nil {
		b.err = &ConfigError{Call: b.calls, Step: kind.String(), Msg: msg}
	}
	return b
}

// Authorize requires HTTP Basic credentials matching username and password.
// Requests without them are answered with a 401 challenge.
func (b *Builder) Authorize(username, password string) *Builder {
	if username == "" || password == "" {
		return b.fail(kindAuthorize, "username and password must not be empty")
	}
	auth := basicAuth{username: []byte(username), password: []byte(password)}
	return b.add(kindAuthorize, func(vfs.FileSystem) (chain.Step, error) { return auth, nil })
}

// Session establishes a cookie-backed session named cookieName on every request
// that reaches it. The cookie is authenticated with secret.
func (b *Builder) Session(secret, cookieName string) *Builder {
	if secret == "" {
		return b.fail(kindSession, "secret must not be empty")
	}
	store := sessions.NewCookieStore([]byte(secret))
	store.Options.HttpOnly = true
	return b.SessionStore(store, cookieName)
}

// SessionStore is like Session but uses the provided session store.
func (b *Builder) SessionStore(store sessions.Store, cookieName string) *Builder {
	if store == nil {
		return b.fail(kindSession, "session store is <nil>")
	}
	if cookieName == "" {
		return b.fail(kindSession, "cookie name must not be empty")
	}
	s := sessionStep{store: store, name: cookieName}
	return b.add(kindSession, func(vfs.FileSystem) (chain.Step, error) { return s, nil })
}

// Static serves regular files found under the root directory. Requests for
// anything else fall through to the next step. The directory is not checked
// until requests arrive.
func (b *Builder) Static(rootDirectory string) *Builder {
	return b.static(http.Dir(rootDirectory))
}

// StaticFS is like Static but serves files from fsys, such as an embed.FS.
func (b *Builder) StaticFS(fsys fs.FS) *Builder {
	if fsys == nil {
		return b.fail(kindStatic, "file system is <nil>")
	}
	return b.static(http.FS(fsys))
}

// StaticBox is like Static but serves files from a rice box.
func (b *Builder) StaticBox(box *rice.Box) *Builder {
	if box == nil {
		return b.fail(kindStatic, "rice box is <nil>")
	}
	return b.static(box.HTTPBox())
}

func (b *Builder) static(root http.FileSystem) *Builder {
	s := staticFiles{root: root}
	return b.add(kindStatic, func(vfs.FileSystem) (chain.Step, error) { return s, nil })
}

// IndexOption customizes the index page.
type IndexOption = indexpage.Option

// Namespace sets the value substituted for the namespace placeholder in the
// index page scripts. Without it, the placeholder is removed.
func Namespace(ns string) IndexOption { return indexpage.WithNamespace(ns) }

// Theme selects the stylesheet theme of the index page. Without it, the
// "default" theme is used.
func Theme(name string) IndexOption { return indexpage.WithTheme(name) }

// Index answers every request reaching it with the page read from
// templatePath, with the title, theme and namespace placeholders filled in.
// The template is read and transformed once, when the pipeline is built.
func (b *Builder) Index(templatePath, routeTitle string, opts ...IndexOption) *Builder {
	if templatePath == "" {
		return b.fail(kindIndex, "template path must not be empty")
	}
	params := indexpage.NewParams(routeTitle, opts...)
	return b.add(kindIndex, func(fsys vfs.FileSystem) (chain.Step, error) {
		tpl, err := vfs.ReadFile(fsys, templatePath)
		if err != nil {
			return nil, &TemplateReadError{Path: templatePath, Err: err}
		}
		return indexPage{doc: []byte(indexpage.Transform(string(tpl), params))}, nil
	})
}

// WithFS sets the file system index templates are read from. The default is
// the OS file system.
func (b *Builder) WithFS(fsys vfs.FileSystem) *Builder {
	if fsys != nil {
		b.fs = fsys
	}
	return b
}

// Log enables the request log. See LogEntry and WriteLog.
func (b *Builder) Log() *Builder { return b.Wrap("log", LogRequests) }

// Gzip compresses responses for clients that accept it.
func (b *Builder) Gzip() *Builder { return b.Wrap("gzip", Gzip) }

// Wrap adds a wrapper that runs before all steps. Wrappers run in the order
// they were added.
func (b *Builder) Wrap(name string, w chain.Wrapper) *Builder {
	if w != nil {
		b.wraps = append(b.wraps, namedWrap{name, w})
	}
	return b
}

// OnErr replaces the error handler used when a step fails. The default is
// HandleError.
func (b *Builder) OnErr(h chain.ErrorHandler) *Builder {
	if h != nil {
		b.onErr = h
	}
	return b
}

// Build resolves the configured steps into a Pipeline. Steps run in the order
// they were configured in, after all wrappers. Build reports the first
// configuration error, or a *TemplateReadError if an index template cannot be
// read. The builder cannot be used after Build.
func (b *Builder) Build() (*Pipeline, error) {
	if b.built {
		return nil, ErrBuilt
	}
	b.built = true
	steps := b.steps
	b.steps = nil
	if b.err != nil {
		return nil, b.err
	}

	c := chain.New().OnErr(b.onErr)
	for _, w := range b.wraps {
		c = c.Wrap(w.name, w.wrap)
	}
	for _, s := range steps {
		step, err := s.resolve(b.fs)
		if err != nil {
			return nil, err
		}
		c = c.Then(s.kind.String(), step)
	}
	return &Pipeline{c: c}, nil
}
