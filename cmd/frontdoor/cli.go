package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	rice "github.com/GeertJohan/go.rice"
	"github.com/alecthomas/kong"
	"github.com/gorilla/mux"

	"github.com/augustoroman/frontdoor"
)

// CLI is the command line interface of frontdoor.
type CLI struct {
	Config kong.ConfigFlag `help:"Load options from a JSON file." placeholder:"FILE"`
	Addr   string          `default:":8080" help:"[host]:port to listen on."`

	Log struct {
		Level    slog.Level `enum:"DEBUG,INFO,WARN,ERROR" default:"INFO" help:"Set the app logging level."`
		Requests bool       `default:"true" negatable:"" help:"Log every request."`
	} `embed:"" prefix:"log-"`

	Auth struct {
		User     string `help:"Require HTTP Basic credentials with this user name."`
		Password string `help:"Password of the Basic credentials."`
	} `embed:"" prefix:"auth-"`

	Session struct {
		Secret string `help:"Establish a session cookie authenticated with this secret."`
		Cookie string `default:"frontdoor" help:"Name of the session cookie."`
	} `embed:"" prefix:"session-"`

	Static    string `type:"path" xor:"static" help:"Directory of static assets."`
	StaticBox string `xor:"static" help:"Name of a rice box of static assets."`

	Index     string `type:"path" help:"Path to the index page template."`
	Title     string `help:"Title of the index page."`
	Namespace string `help:"Namespace substituted into the index page scripts."`
	Theme     string `default:"default" help:"Stylesheet theme of the index page."`

	Gzip            bool          `help:"Compress responses."`
	ShutdownTimeout time.Duration `default:"10s" help:"Time allowed for in-flight requests on shutdown."`
}

// Pipeline builds the front controller described by the options.
func (c *CLI) Pipeline(logger *slog.Logger) (*frontdoor.Pipeline, error) {
	b := frontdoor.New()
	if c.Log.Requests {
		frontdoor.WriteLog = requestLogger(logger)
		b.Log()
	}
	if c.Gzip {
		b.Gzip()
	}
	if c.Auth.User != "" || c.Auth.Password != "" {
		b.Authorize(c.Auth.User, c.Auth.Password)
	}
	if c.Session.Secret != "" {
		b.Session(c.Session.Secret, c.Session.Cookie)
	}
	switch {
	case c.Static != "":
		b.Static(c.Static)
	case c.StaticBox != "":
		conf := &rice.Config{LocateOrder: []rice.LocateMethod{
			rice.LocateEmbedded, rice.LocateAppended, rice.LocateWorkingDirectory,
		}}
		box, err := conf.FindBox(c.StaticBox)
		if err != nil {
			return nil, fmt.Errorf("cannot open rice box %q: %w", c.StaticBox, err)
		}
		b.StaticBox(box)
	}
	if c.Index != "" {
		tpl, err := filepath.Abs(c.Index)
		if err != nil {
			return nil, err
		}
		opts := []frontdoor.IndexOption{frontdoor.Theme(c.Theme)}
		if c.Namespace != "" {
			opts = append(opts, frontdoor.Namespace(c.Namespace))
		}
		b.Index(tpl, c.Title, opts...)
	}
	return b.Build()
}

// Handler returns the complete HTTP handler: a health check plus the pipeline
// for everything else.
func (c *CLI) Handler(logger *slog.Logger) (http.Handler, error) {
	p, err := c.Pipeline(logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("pipeline built", "steps", p.Steps())

	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet, http.MethodHead)
	router.PathPrefix("/").Handler(p.Then(http.NotFoundHandler()))
	return router, nil
}

// Run starts the web server and blocks until it stops.
func (c *CLI) Run(ctx context.Context, logger *slog.Logger) error {
	handler, err := c.Handler(logger)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              c.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	// Gracefully shutdown the server if a process signal is received, or the
	// context is done.
	srvDone := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", c.Addr)
		srvDone <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case s := <-sigCh:
		logger.Debug("process received signal", "signal", s)
	case <-ctx.Done():
		logger.Debug("context is done")
	case srvErr := <-srvDone:
		if srvErr != nil && !errors.Is(srvErr, http.ErrServerClosed) {
			return fmt.Errorf("web server error: %w", srvErr)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed shutting down web server: %w", err)
	}
	logger.Info("web server shutdown")
	return nil
}
