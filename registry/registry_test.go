package registry

import (
	"testing"

	"github.com/yamlls/core/schema"
)

func TestMatchGlob(t *testing.T) {
	r := New([]Association{
		{Pattern: "**/*.deploy.yaml", SchemaURI: "https://example.com/deploy.json"},
		{Pattern: "**/values.yaml", SchemaURI: "https://example.com/values.json"},
	})

	uris, err := r.Match("charts/app/values.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if len(uris) != 1 || uris[0] != "https://example.com/values.json" {
		t.Fatalf("got %v", uris)
	}
}

func TestMatchKubernetesByFilename(t *testing.T) {
	r := New(nil).WithKubernetes(true)
	uris, err := r.Match("manifests/my-deployment.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if len(uris) != 1 {
		t.Fatalf("expected 1 match, got %v", uris)
	}
}

func TestCombineSingle(t *testing.T) {
	s := &schema.Schema{}
	combined := Combine(map[string]*schema.Schema{"only": s})
	if combined != s {
		t.Error("expected single contributor returned unwrapped")
	}
}

func TestCombineMultipleUsesAllOf(t *testing.T) {
	a := &schema.Schema{}
	b := &schema.Schema{}
	combined := Combine(map[string]*schema.Schema{"a": a, "b": b})
	if len(combined.AllOf) != 2 {
		t.Fatalf("expected 2 allOf entries, got %d", len(combined.AllOf))
	}
}
