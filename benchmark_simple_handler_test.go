package frontdoor

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

func benchPipeline(b *testing.B, build func(*Builder) *Builder) *Pipeline {
	tpl, err := filepath.Abs("testdata/templates/index")
	if err != nil {
		b.Fatal(err)
	}
	p, err := build(New()).
		Static("testdata/static").
		Index(tpl, "Bench", Theme("dark"), Namespace("bench")).
		Build()
	if err != nil {
		b.Fatal(err)
	}
	return p
}

func bench(N int, route string, h http.Handler) {
	req := httptest.NewRequest("GET", route, nil)
	req.SetBasicAuth("bench", "bench")
	for i := 0; i < N; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
	}
}

func runBenches(b *testing.B, h http.Handler) {
	for _, route := range []string{"/foo", "/css/dark.css", "/app/route"} {
		b.Run(route, func(b *testing.B) { bench(b.N, route, h) })
	}
}

func BenchmarkBare(b *testing.B) {
	runBenches(b, benchPipeline(b, func(fd *Builder) *Builder { return fd }))
}

func BenchmarkTheUsual(b *testing.B) {
	orig := WriteLog
	defer func() { WriteLog = orig }()
	WriteLog = func(LogEntry) {}

	runBenches(b, benchPipeline(b, func(fd *Builder) *Builder {
		return fd.Log().Gzip().Authorize("bench", "bench").Session("0123456789abcdef0123456789abcdef", "sid")
	}))
}

func BenchmarkRawIndex(b *testing.B) {
	runBenches(b, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	}))
}
