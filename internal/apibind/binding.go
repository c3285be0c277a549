// Package apibind resolves the named API declarations of a page definition
// into executable HTTP calls. It owns the response-envelope normalization
// and the application-error taxonomy, so callers never unwrap backend
// payload shapes themselves.
package apibind

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/opsdeck/backoffice/internal/pagedef"
)

// ErrBindingNotFound is returned when a page references an API name that is
// not declared in its apis list. The data-load path fails observably on it;
// a page is never rendered with a silently empty grid.
var ErrBindingNotFound = errors.New("api binding not found")

// Resolve returns the declaration named name from the definition.
func Resolve(d *pagedef.PageDefinition, name string) (pagedef.APIDecl, error) {
	if name == "" {
		return pagedef.APIDecl{}, fmt.Errorf("%w: no api name declared", ErrBindingNotFound)
	}
	decl, ok := d.API(name)
	if !ok {
		return pagedef.APIDecl{}, fmt.Errorf("%w: %q not in apis of page %s", ErrBindingNotFound, name, d.ID)
	}
	return decl, nil
}

// ResolveRead returns the read binding of the definition.
func ResolveRead(d *pagedef.PageDefinition) (pagedef.APIDecl, error) {
	return Resolve(d, d.Read)
}

// ExpandPath substitutes {name} segments of the declared path from params.
// Consumed parameters are removed from the returned map; the rest become
// query parameters. An unresolved segment is an error rather than a call to
// a literal "{id}" route.
func ExpandPath(path string, params map[string]string) (string, map[string]string, error) {
	rest := make(map[string]string, len(params))
	for k, v := range params {
		rest[k] = v
	}
	var b strings.Builder
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		b.WriteByte('/')
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			name := seg[1 : len(seg)-1]
			v, ok := rest[name]
			if !ok {
				return "", nil, fmt.Errorf("path parameter %q missing for %s", name, path)
			}
			b.WriteString(url.PathEscape(v))
			delete(rest, name)
			continue
		}
		b.WriteString(seg)
	}
	if b.Len() == 0 {
		b.WriteByte('/')
	}
	return b.String(), rest, nil
}
