// Package frontdoor builds a small front controller for hosting single-page
// applications.
//
// A pipeline is assembled from up to four steps, each configured once:
//   - Authorize gates the following steps behind HTTP Basic credentials.
//   - Session establishes a cookie-backed session on every request.
//   - Static serves regular files from a directory, an fs.FS or a rice box.
//   - Index answers everything else with an HTML shell whose title, theme
//     stylesheet and script namespace are filled in for this deployment.
//
// Steps run in the order they were configured in. Each step either answers the
// request, ending the pipeline, or lets the next step run. Authorize usually
// comes first so that it gates everything after it, and Index last since it
// answers every request reaching it.
//
// # Example
//
// Here's a simple complete program using frontdoor:
//
//	package main
//
//	import (
//	    "log"
//	    "net/http"
//
//	    "github.com/augustoroman/frontdoor"
//	)
//
//	func main() {
//	    p, err := frontdoor.New().
//	        Authorize("admin", "hunter2").
//	        Static("./public").
//	        Index("./public/index.html", "Dashboard").
//	        Log().
//	        Build()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := http.ListenAndServe(":6060", p); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Index templates
//
// The index template is read once, when the pipeline is built, and the same
// document is served to every request. The placeholders are:
//
//	<head><title>{{title}}</title>                 <!-- or an empty title -->
//	<link rel="stylesheet" href="/css/{{theme}}.css">
//	<script>window.NS = "{{namespace}}";</script>
//
// See package indexpage for the exact rules.
//
// # Errors
//
// Configuration mistakes such as configuring a step twice are reported by
// Build, as is a template that cannot be read. No partial pipeline is
// returned.
//
// While serving, a step that fails aborts the pipeline and the error handler
// (HandleError unless replaced with OnErr) writes the response. Return an
// Error to control the status code and client message, or Done to stop
// silently. Panics in steps are recovered and handled the same way.
//
// # Going further
//
// Pipeline.Then hands requests that no step answered to another handler, such
// as an API router. Request logging (Log) and gzip (Gzip) cover that handler
// too. Adapters for httprouter and martini live in the httprouter_frontdoor and
// martini_frontdoor packages.
package frontdoor
