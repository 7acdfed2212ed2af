// Package diagnostics turns a schema evaluation result into editor-
// facing Diagnostic values anchored to source spans, the shape the
// teacher's own EvaluationResult/List types stop short of (they carry a
// JSON-Pointer-shaped InstanceLocation, not a byte span).
package diagnostics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yamlls/core/schema"
	"github.com/yamlls/core/structural"
)

// allOfIndexPattern matches the evaluation path registry.Combine's
// synthetic allOf branches get (e.g. "/allOf/2"), so a diagnostic
// originating from one contributing schema can be labeled with that
// contributor's source instead of the generic combined one.
var allOfIndexPattern = regexp.MustCompile(`^/allOf/(\d+)$`)

// Severity mirrors the small set an editor's diagnostics panel renders
// distinctly.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInformation
)

// Diagnostic is one reportable problem anchored to a source span.
type Diagnostic struct {
	Span     structural.Span
	Severity Severity
	Message  string
	Source   string
}

// FromEvaluation walks a schema.EvaluationResult's nested errors,
// resolves each InstanceLocation back to a Structural Tree node, and
// returns one Diagnostic per distinct (span, message) pair. contributors
// is the sorted list of schema URIs registry.Combine folded into a
// synthetic allOf (in the same order it used), so a diagnostic nested
// under a given "/allOf/N" branch is labeled with the contributor that
// actually produced it rather than the generic combined source. Pass nil
// when only one schema contributed (no synthetic allOf exists); a single
// contributor is still appended to source for provenance.
func FromEvaluation(doc *structural.Document, result *schema.EvaluationResult, source string, contributors []string) []Diagnostic {
	if doc == nil || result == nil {
		return nil
	}
	if len(contributors) == 1 {
		source = source + ": " + contributors[0]
	}
	var out []Diagnostic
	seen := map[string]bool{}
	collect(doc.Root, result, source, contributors, &out, seen)
	return out
}

func collect(root structural.Node, result *schema.EvaluationResult, source string, contributors []string, out *[]Diagnostic, seen map[string]bool) {
	if result == nil {
		return
	}
	if len(contributors) > 1 {
		if m := allOfIndexPattern.FindStringSubmatch(result.EvaluationPath); m != nil {
			if idx, err := strconv.Atoi(m[1]); err == nil && idx >= 0 && idx < len(contributors) {
				source = source + ": " + contributors[idx]
				// Results below this branch belong to the same contributor;
				// their own "/allOf/N" paths are the contributor's allOf, not
				// registry.Combine's, so they must not be relabeled.
				contributors = nil
			}
		}
	}
	if len(result.Errors) > 0 {
		target := Lookup(root, result.InstanceLocation)
		span := structural.Span{}
		if target != nil {
			span = target.Span()
		}
		for _, err := range result.Errors {
			msg := err.Error()
			key := msg + "@" + fmt.Sprint(span)
			if seen[key] {
				continue
			}
			seen[key] = true
			*out = append(*out, Diagnostic{
				Span:     span,
				Severity: SeverityError,
				Message:  msg,
				Source:   source,
			})
		}
	}
	for _, detail := range result.Details {
		collect(root, detail, source, contributors, out, seen)
	}
}

// Lookup resolves a JSON-Pointer-shaped instance location (e.g.
// "/items/0/name") to the Structural Tree node at that path. Returns
// nil if any segment cannot be resolved, in which case the caller
// should fall back to an empty span rather than fail the diagnostic.
func Lookup(root structural.Node, pointer string) structural.Node {
	if pointer == "" {
		return root
	}
	segments := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	cur := root
	for _, raw := range segments {
		if cur == nil {
			return nil
		}
		seg := unescapeToken(raw)
		switch n := cur.(type) {
		case *structural.MappingNode:
			cur = lookupMappingKey(n, seg)
		case *structural.SequenceNode:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(n.Items) {
				return nil
			}
			cur = n.Items[idx]
		case *structural.AliasNode:
			cur = n.Target
		default:
			return nil
		}
	}
	return cur
}

func lookupMappingKey(m *structural.MappingNode, key string) structural.Node {
	for _, pair := range m.Pairs {
		if scalar, ok := pair.Key.(*structural.ScalarNode); ok {
			if s, ok := scalar.Value.(string); ok && s == key {
				return pair.Value
			}
			if scalar.Raw == key {
				return pair.Value
			}
		}
	}
	return nil
}

func unescapeToken(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	s = strings.ReplaceAll(s, "~0", "~")
	return s
}
