package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/yamlls/core/customtag"
	"github.com/yamlls/core/diagnostics"
	"github.com/yamlls/core/modeline"
	"github.com/yamlls/core/registry"
	"github.com/yamlls/core/schema"
	"github.com/yamlls/core/schemafetch"
	"github.com/yamlls/core/structural"
)

// Session owns one editor-facing document's version counter and the
// process-wide caches backing it, matching the concurrency model: late
// results carrying a stale version are discarded by the caller, and the
// two caches (fetched bytes, compiled schemas) persist for the
// session's lifetime.
type Session struct {
	version  atomic.Uint64
	cfg      *Config
	registry *registry.Registry
	tags     customtag.Table
	fetch    *schemafetch.Cache
	compiler *schema.Compiler
}

// NewSession builds a Session from a Config, wiring the fetch cache into
// the schema compiler's pluggable Loaders the way the teacher's own
// setupLoaders does for its default HTTP loader, so every $ref fetch
// goes through the same in-flight-deduplicating cache as the top-level
// schema association fetch.
func NewSession(cfg *Config) *Session {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Session{
		cfg:      cfg,
		registry: registry.New(cfg.Schemas).WithKubernetes(cfg.IsKubernetes),
		tags:     customtag.Parse(cfg.CustomTags),
		fetch:    schemafetch.NewCache(schemafetch.ByScheme(map[string]schemafetch.Fetch{"file": schemafetch.FileFetch()}, schemafetch.HTTPFetch(10*time.Second))),
		compiler: schema.NewCompiler(),
	}
	// Editor diagnostics are only useful if format violations actually
	// surface; the teacher defaults AssertFormat to false to match plain
	// JSON Schema's annotation-only format semantics, but this module
	// always wants format keyword mismatches reported.
	s.compiler.SetAssertFormat(true)
	s.compiler.Loaders["http"] = s.loaderAdapter
	s.compiler.Loaders["https"] = s.loaderAdapter
	s.compiler.Loaders["file"] = s.loaderAdapter
	return s
}

func (s *Session) loaderAdapter(url string) (io.ReadCloser, error) {
	data, err := s.fetch.Get(context.Background(), url)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Bump advances the document's version and returns the new value. Call
// this once per edit before kicking off Validate.
func (s *Session) Bump() uint64 {
	return s.version.Add(1)
}

// CurrentVersion returns the most recently bumped version.
func (s *Session) CurrentVersion() uint64 {
	return s.version.Load()
}

// Result is the outcome of validating one document version.
type Result struct {
	Version     uint64
	Diagnostics []diagnostics.Diagnostic
}

// Validate parses, resolves schema association for, and validates a
// single document version. If ctx is cancelled, or the session has
// already moved to a newer version by the time work would complete, it
// returns (nil, nil) rather than an error: a superseded or cancelled
// edit is not a failure, just stale work the caller should discard.
func (s *Session) Validate(ctx context.Context, docURI string, version uint64, text []byte) (*Result, error) {
	docs, parseErrs := structural.Parse(text, s.tags)
	if len(docs) == 0 {
		return &Result{Version: version}, nil
	}
	doc := docs[0]

	if err := ctx.Err(); err != nil {
		return nil, nil
	}

	var diags []diagnostics.Diagnostic
	for _, pe := range parseErrs {
		diags = append(diags, diagnostics.Diagnostic{
			Span:     pe.Span,
			Severity: diagnostics.SeverityError,
			Message:  pe.Message,
			Source:   "yaml",
		})
	}

	if !s.cfg.Validate {
		return &Result{Version: version, Diagnostics: diags}, nil
	}

	schemaURIs, err := s.resolveSchemaURIs(docURI, doc)
	if err != nil {
		return nil, err
	}
	if len(schemaURIs) == 0 {
		return &Result{Version: version, Diagnostics: diags}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, nil
	}

	contributors := make(map[string]*schema.Schema, len(schemaURIs))
	var fetchErrs *multierror.Error
	for _, uri := range schemaURIs {
		compiled, err := s.compileSchema(ctx, uri)
		if err != nil {
			fetchErrs = multierror.Append(fetchErrs, fmt.Errorf("%s: %w", uri, err))
			diags = append(diags, diagnostics.Diagnostic{
				Severity: diagnostics.SeverityWarning,
				Message:  fmt.Sprintf("could not load schema %q: %v", uri, err),
				Source:   "yaml-schema-fetch",
			})
			continue
		}
		contributors[uri] = compiled
	}
	if len(contributors) == 0 {
		if fetchErrs != nil {
			fetchErrs.ErrorFormat = func(errs []error) string {
				msgs := make([]string, len(errs))
				for i, e := range errs {
					msgs[i] = e.Error()
				}
				return fmt.Sprintf("no schema contributor could be loaded: %s", strings.Join(msgs, "; "))
			}
		}
		return &Result{Version: version, Diagnostics: diags}, nil
	}

	effective := registry.Combine(contributors)
	instance := structural.ToAny(doc.Root)

	if s.CurrentVersion() != version {
		return nil, nil
	}

	evalResult := effective.Validate(instance)
	diags = append(diags, diagnostics.FromEvaluation(doc, evalResult, "yaml-schema", sortedKeys(contributors))...)

	if s.CurrentVersion() != version {
		return nil, nil
	}

	return &Result{Version: version, Diagnostics: diags}, nil
}

func (s *Session) resolveSchemaURIs(docURI string, doc *structural.Document) ([]string, error) {
	if uri, ok := modeline.Detect(doc); ok {
		return []string{uri}, nil
	}
	return s.registry.Match(docURI)
}

// compileSchema resolves a schema URI through the compiler's own cache
// and Loaders, which route through s.fetch (see NewSession) — so a
// concurrent request for the same URI, whether as a top-level
// association or as a $ref from another schema, is only fetched once.
func (s *Session) compileSchema(ctx context.Context, uri string) (*schema.Schema, error) {
	return s.compiler.GetSchema(uri)
}

// sortedKeys returns a contributing schema map's URIs in the same order
// registry.Combine assembles its synthetic AllOf in, so a diagnostic's
// "/allOf/N" evaluation path can be mapped back to the contributor that
// produced it.
func sortedKeys(contributors map[string]*schema.Schema) []string {
	keys := make([]string, 0, len(contributors))
	for k := range contributors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
