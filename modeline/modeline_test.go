package modeline

import (
	"testing"

	"github.com/yamlls/core/structural"
)

func TestDetectFindsModeline(t *testing.T) {
	doc := &structural.Document{
		Comments: []structural.Comment{
			{Text: "# yaml-language-server: $schema=https://example.com/s.json"},
		},
	}
	uri, ok := Detect(doc)
	if !ok || uri != "https://example.com/s.json" {
		t.Fatalf("got uri=%q ok=%v", uri, ok)
	}
}

func TestDetectNoModeline(t *testing.T) {
	doc := &structural.Document{Comments: []structural.Comment{{Text: "# just a comment"}}}
	if _, ok := Detect(doc); ok {
		t.Fatal("expected no modeline found")
	}
}
