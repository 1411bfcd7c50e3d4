// Package indexpage rewrites a single-page-application HTML shell for a
// particular deployment.
//
// Three markers are recognized in the shell:
//
//	<head><title></title></head>                    the page title
//	<link href="{{theme}}.css" rel="stylesheet"/>    the theme stylesheet
//	<script>connect('{{namespace}}')</script>        the client namespace
//
// The title marker is the first <title> element inside <head> whose content
// is empty, blank or exactly {{title}}. A title with real content is left
// alone. The theme marker is any <link> whose quoted href contains {{theme}};
// only the first such link is kept. The namespace token is only replaced
// inside <script> elements.
//
// Transform is a pure function: it does no I/O and the same inputs always
// produce the same output. Each marker is located independently, so a
// malformed or unterminated element disables only its own substitution.
package indexpage

import (
	"regexp"
	"strings"
)

// Tokens recognized in the template text.
const (
	TitleToken     = "{{title}}"
	ThemeToken     = "{{theme}}"
	NamespaceToken = "{{namespace}}"
)

// DefaultTheme is used when no theme is configured.
const DefaultTheme = "default"

// Params are the per-deployment values substituted into the template.
type Params struct {
	// Title replaces the content of the title marker verbatim, without any
	// HTML escaping.
	Title string
	// Namespace, if non-nil, replaces the namespace token. A nil Namespace
	// blanks the token out.
	Namespace *string
	// Theme replaces the theme token. NewParams sets it to DefaultTheme
	// unless WithTheme is given.
	Theme string
}

// Option customizes the Params built by NewParams.
type Option func(*Params)

// WithNamespace sets the namespace substituted into scripts.
func WithNamespace(ns string) Option {
	return func(p *Params) { p.Namespace = &ns }
}

// WithTheme sets the theme substituted into the stylesheet link.
func WithTheme(theme string) Option {
	return func(p *Params) { p.Theme = theme }
}

// NewParams returns the substitution parameters for title with the theme
// defaulted to DefaultTheme.
func NewParams(title string, opts ...Option) Params {
	p := Params{Title: title, Theme: DefaultTheme}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// theme returns the theme to emit, applying the default to zero Params.
func (p Params) theme() string {
	if p.Theme == "" {
		return DefaultTheme
	}
	return p.Theme
}

func (p Params) namespace() string {
	if p.Namespace == nil {
		return ""
	}
	return *p.Namespace
}

var (
	headRE   = regexp.MustCompile(`(?is)<head\b[^>]*>(.*?)</head\s*>`)
	titleRE  = regexp.MustCompile(`(?is)<title\b[^>]*>(.*?)</title\s*>`)
	linkRE   = regexp.MustCompile(`(?is)<link\b[^<>]*>`)
	hrefRE   = regexp.MustCompile(`(?is)\shref\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	scriptRE = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
)

// Transform applies the title, theme and namespace substitutions to tpl.
func Transform(tpl string, p Params) string {
	out := replaceTitle(tpl, p.Title)
	out = replaceTheme(out, p.theme())
	out = replaceNamespace(out, p.namespace())
	return out
}

func replaceTitle(doc, title string) string {
	head := headRE.FindStringSubmatchIndex(doc)
	if head == nil {
		return doc
	}
	headStart, headEnd := head[2], head[3]
	m := titleRE.FindStringSubmatchIndex(doc[headStart:headEnd])
	if m == nil {
		return doc
	}
	contentStart, contentEnd := headStart+m[2], headStart+m[3]
	if !isTitleMarker(doc[contentStart:contentEnd]) {
		return doc
	}
	return doc[:contentStart] + title + doc[contentEnd:]
}

func isTitleMarker(content string) bool {
	content = strings.TrimSpace(content)
	return content == "" || content == TitleToken
}

func replaceTheme(doc, theme string) string {
	var b strings.Builder
	last, seen := 0, false
	for _, m := range linkRE.FindAllStringIndex(doc, -1) {
		tag := doc[m[0]:m[1]]
		if !hasThemeHref(tag) {
			continue
		}
		b.WriteString(doc[last:m[0]])
		if !seen {
			b.WriteString(strings.ReplaceAll(tag, ThemeToken, theme))
			seen = true
		}
		last = m[1]
	}
	if !seen {
		return doc
	}
	b.WriteString(doc[last:])
	return b.String()
}

func hasThemeHref(tag string) bool {
	m := hrefRE.FindStringSubmatch(tag)
	if m == nil {
		return false
	}
	return strings.Contains(m[1]+m[2], ThemeToken)
}

func replaceNamespace(doc, ns string) string {
	if !strings.Contains(doc, NamespaceToken) {
		return doc
	}
	return scriptRE.ReplaceAllStringFunc(doc, func(script string) string {
		return strings.ReplaceAll(script, NamespaceToken, ns)
	})
}
