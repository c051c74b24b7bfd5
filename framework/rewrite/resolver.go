package rewrite

import (
	"strings"

	"github.com/lexcodex/headerlint/framework/cxxindex"
)

// Resolution is one include directive in canonical form.
type Resolution struct {
	Line string
	// Local is set when the include names a header of the linted modules.
	Local bool
}

// directive is a quoted include split around its path.
type directive struct {
	prefix string // up to and including the opening quote
	path   string
	suffix string // from the closing quote on
}

const includeKeyword = "#include"

// parseDirective accepts only a quote directly after the keyword and
// optional blanks, so system and macro includes never match.
func parseDirective(line string) (directive, bool) {
	at := strings.Index(line, includeKeyword)
	if at == -1 {
		return directive{}, false
	}
	rest := line[at+len(includeKeyword):]
	quoted := strings.TrimLeft(rest, " \t")
	if !strings.HasPrefix(quoted, `"`) {
		return directive{}, false
	}
	open := at + len(includeKeyword) + len(rest) - len(quoted)
	closing := strings.IndexByte(line[open+1:], '"')
	if closing == -1 {
		return directive{}, false
	}
	closing += open + 1
	return directive{
		prefix: line[:open+1],
		path:   line[open+1 : closing],
		suffix: line[closing:],
	}, true
}

// className returns the header name the directive refers to.
func (d directive) className() (string, bool) {
	if !strings.HasSuffix(d.path, ".h") {
		return "", false
	}
	base := d.path[strings.LastIndex(d.path, "/")+1:]
	name := strings.TrimSuffix(base, ".h")
	return name, name != ""
}

// Resolver rewrites include directives against a frozen IndexSet.
type Resolver struct {
	set       *cxxindex.IndexSet
	whitelist map[string]struct{}
}

// NewResolver binds the resolver to set. Whitelisted quoted paths are passed
// through untouched.
func NewResolver(set *cxxindex.IndexSet, whitelist []string) *Resolver {
	if set == nil {
		set = &cxxindex.IndexSet{}
	}
	wl := make(map[string]struct{}, len(whitelist))
	for _, path := range whitelist {
		wl[path] = struct{}{}
	}
	return &Resolver{set: set, whitelist: wl}
}

// Resolve returns the canonical form of line. Directives that are not
// quoted, not headers, or not indexed come back unchanged and external.
func (r *Resolver) Resolve(line string) Resolution {
	d, ok := parseDirective(line)
	if !ok {
		return Resolution{Line: line}
	}
	if _, ok := r.whitelist[d.path]; ok {
		return Resolution{Line: line}
	}
	name, ok := d.className()
	if !ok {
		return Resolution{Line: line}
	}
	if rec, ok := r.set.LocalHeaders.Lookup(name); ok {
		return Resolution{Line: rewriteTo(d, rec, line), Local: true}
	}
	if rec, ok := r.set.Engine.Lookup(name); ok {
		return Resolution{Line: rewriteTo(d, rec, line)}
	}
	return Resolution{Line: line}
}

func rewriteTo(d directive, rec cxxindex.FileRecord, line string) string {
	if rec.Dir == "" {
		return line
	}
	return d.prefix + rec.IncludePath() + d.suffix
}

// ResolveAll resolves every line in order.
func (r *Resolver) ResolveAll(lines []string) []Resolution {
	out := make([]Resolution, 0, len(lines))
	for _, line := range lines {
		out = append(out, r.Resolve(line))
	}
	return out
}
