// Package uriutil resolves and normalizes the URIs used to name YAML
// documents and the JSON Schema resources they are validated against.
//
// The logic here is grounded on the URI helpers in the teacher's
// internal utils.go (getURLScheme, isValidURI, resolveRelativeURI,
// isAbsoluteURI, getBaseURI, splitRef), generalized into an exported API
// so the URI & Path Resolver component can be used independently of the
// schema evaluator.
package uriutil

import (
	"net/url"
	"path"
	"strings"
)

// Scheme returns the scheme component of a URI, or "" if it cannot be
// parsed or carries none.
func Scheme(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return u.Scheme
}

// IsAbsolute reports whether uri is an absolute URI (has both a scheme
// and a host).
func IsAbsolute(uri string) bool {
	u, err := url.Parse(uri)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// IsValid reports whether s parses as a request URI.
func IsValid(s string) bool {
	_, err := url.ParseRequestURI(s)
	return err == nil
}

// Resolve resolves relativeURI against baseURI. If relativeURI is
// already absolute, or baseURI cannot be parsed as an absolute URI, it
// is returned unchanged.
func Resolve(baseURI, relativeURI string) string {
	if IsAbsolute(relativeURI) {
		return relativeURI
	}
	base, err := url.Parse(baseURI)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return relativeURI
	}
	rel, err := url.Parse(relativeURI)
	if err != nil {
		return relativeURI
	}
	return base.ResolveReference(rel).String()
}

// BaseDir returns the directory URI containing id: the same URI with its
// final path segment stripped and a trailing slash guaranteed. Returns
// "" if id is not a well-formed absolute URI.
func BaseDir(id string) string {
	if id == "" {
		return ""
	}
	u, err := url.Parse(id)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	if strings.HasSuffix(u.Path, "/") {
		return u.String()
	}
	u.Path = path.Dir(u.Path)
	if u.Path == "." || u.Path == "" {
		u.Path = "/"
	}
	if u.Path != "/" && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// SplitFragment splits a URI into its base and fragment (the part after
// "#", not including the "#" itself).
func SplitFragment(uri string) (base, fragment string) {
	parts := strings.SplitN(uri, "#", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return uri, ""
}

// IsJSONPointer reports whether a fragment is a JSON Pointer (as opposed
// to a plain $anchor name).
func IsJSONPointer(fragment string) bool {
	return strings.HasPrefix(fragment, "/")
}

// Normalize strips a trailing fragment and normalizes a document URI to
// the form used as cache and registry keys throughout the module: no
// fragment, no trailing slash (unless the path is the root).
func Normalize(uri string) string {
	base, _ := SplitFragment(uri)
	if len(base) > 1 && strings.HasSuffix(base, "/") {
		base = strings.TrimSuffix(base, "/")
	}
	return base
}
