// Package registry maps a document URI to the one or more JSON Schema
// resources that should validate it, the glob-pattern-to-schema-URI
// association an editor's configuration supplies (plus a small built-in
// Kubernetes resource catalog). When more than one schema applies, they
// are combined into a single synthetic schema.Schema with an AllOf edge
// per contributor — an instance must satisfy every contributing schema
// at once, which is what schema association actually needs, as opposed
// to a union/superset merge (accepting data valid under either of two
// schema versions) that this package has no use for.
package registry

import (
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/yamlls/core/schema"
)

// Association binds a glob pattern (matched against a document's path or
// URI) to a schema URI.
type Association struct {
	Pattern   string
	SchemaURI string
}

// Registry holds the configured associations plus any built-in tables
// switched on for the session (e.g. Kubernetes).
type Registry struct {
	associations []Association
	kubernetes   bool
}

// New builds a Registry from configured associations.
func New(associations []Association) *Registry {
	r := &Registry{associations: associations}
	return r
}

// WithKubernetes enables the built-in Kubernetes resource catalog
// alongside any configured associations.
func (r *Registry) WithKubernetes(enabled bool) *Registry {
	r.kubernetes = enabled
	return r
}

// Match returns every schema URI configured for a document path, in
// configuration order, followed by any Kubernetes catalog matches.
func (r *Registry) Match(docPath string) ([]string, error) {
	var uris []string
	for _, a := range r.associations {
		ok, err := doublestar.Match(a.Pattern, docPath)
		if err != nil {
			return nil, fmt.Errorf("registry: bad pattern %q: %w", a.Pattern, err)
		}
		if ok {
			uris = append(uris, a.SchemaURI)
		}
	}
	if r.kubernetes {
		uris = append(uris, matchKubernetes(docPath)...)
	}
	return dedupe(uris), nil
}

func dedupe(uris []string) []string {
	seen := make(map[string]bool, len(uris))
	out := uris[:0]
	for _, u := range uris {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// Combine produces one schema that requires the instance to satisfy
// every resolved contributing schema, recording each contributor's
// source label on the synthetic node's title for provenance when
// reporting which association produced a given error.
func Combine(contributors map[string]*schema.Schema) *schema.Schema {
	if len(contributors) == 1 {
		for _, s := range contributors {
			return s
		}
	}
	labels := make([]string, 0, len(contributors))
	for label := range contributors {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	combined := &schema.Schema{}
	for _, label := range labels {
		combined.AllOf = append(combined.AllOf, contributors[label])
	}
	title := "combined: " + joinLabels(labels)
	combined.Title = &title
	return combined
}

func joinLabels(labels []string) string {
	out := ""
	for i, l := range labels {
		if i > 0 {
			out += ", "
		}
		out += l
	}
	return out
}
