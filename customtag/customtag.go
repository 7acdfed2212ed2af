// Package customtag holds the configured allow-list of non-standard
// YAML tags (e.g. CloudFormation's "!Ref", "!GetAtt") that a document is
// permitted to use without the parser flagging them as unrecognized.
package customtag

import "strings"

// Entry names one allowed custom tag and the node kind it is expected to
// decorate, e.g. {Tag: "!Ref", Kind: "sequence"}. Kind is advisory: a
// tag applied to a different kind of node is still accepted as an opaque
// value rather than rejected, per the "custom tags never fail the parse"
// contract.
type Entry struct {
	Tag  string
	Kind string
}

// Table is a configured set of allowed custom tags, keyed by tag name.
type Table map[string]Entry

// Parse builds a Table from the "!Tag kind" string format used in
// editor configuration (e.g. "!Ref sequence"), one entry per string.
func Parse(specs []string) Table {
	t := make(Table, len(specs))
	for _, spec := range specs {
		fields := strings.Fields(spec)
		if len(fields) == 0 {
			continue
		}
		e := Entry{Tag: fields[0]}
		if len(fields) > 1 {
			e.Kind = fields[1]
		}
		t[e.Tag] = e
	}
	return t
}

// Allows reports whether tag is in the configured allow-list.
func (t Table) Allows(tag string) bool {
	_, ok := t[tag]
	return ok
}
