package core

import (
	"context"
	"testing"

	"github.com/yamlls/core/registry"
	"github.com/yamlls/core/schemafetch"
)

const personSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string"},
    "age": {"type": "integer", "minimum": 0}
  }
}`

func newTestSession(t *testing.T) *Session {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Schemas = []registry.Association{{Pattern: "**/*.yaml", SchemaURI: "mem://person.json"}}
	s := NewSession(cfg)
	s.fetch = schemafetch.NewCache(schemafetch.StaticFetch(map[string][]byte{
		"mem://person.json": []byte(personSchema),
	}))
	s.compiler.Loaders["mem"] = s.loaderAdapter
	return s
}

func TestValidateReportsMissingRequired(t *testing.T) {
	s := newTestSession(t)
	v := s.Bump()
	result, err := s.Validate(context.Background(), "doc.yaml", v, []byte("age: 5\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Diagnostics) == 0 {
		t.Fatal("expected at least one diagnostic for missing required field")
	}
}

func TestValidateAcceptsValidDocument(t *testing.T) {
	s := newTestSession(t)
	v := s.Bump()
	result, err := s.Validate(context.Background(), "doc.yaml", v, []byte("name: widget\nage: 3\n"))
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range result.Diagnostics {
		t.Errorf("unexpected diagnostic: %s", d.Message)
	}
}

func TestValidateDiscardsStaleVersion(t *testing.T) {
	s := newTestSession(t)
	stale := s.Bump()
	current := s.Bump()
	_ = current

	result, err := s.Validate(context.Background(), "doc.yaml", stale, []byte("name: widget\n"))
	if err != nil {
		t.Fatal(err)
	}
	if result != nil {
		t.Fatalf("expected nil result for stale version, got %#v", result)
	}
}
