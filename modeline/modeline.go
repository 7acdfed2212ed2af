// Package modeline recognizes the yaml-language-server inline schema
// association comment, the editor convention that overrides filename-
// and content-based schema matching for a single document.
package modeline

import (
	"regexp"
	"strings"

	"github.com/yamlls/core/structural"
)

var modelinePattern = regexp.MustCompile(`^#\s*yaml-language-server:\s*\$schema=(\S+)`)

// Detect scans a document's leading comments for a yaml-language-server
// modeline and returns the schema URI it names, if any. The first
// matching comment wins; later ones are ignored, matching the
// convention's "first line only" behavior in practice.
func Detect(doc *structural.Document) (schemaURI string, found bool) {
	if doc == nil {
		return "", false
	}
	for _, c := range doc.Comments {
		for _, line := range strings.Split(c.Text, "\n") {
			if m := modelinePattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
				return m[1], true
			}
		}
	}
	return "", false
}
