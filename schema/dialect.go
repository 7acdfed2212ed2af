package schema

import "strings"

// Dialect identifies which JSON Schema specification a resource declares
// itself against, via $schema. It controls whether keywords sitting next
// to $ref are evaluated or ignored.
type Dialect int

const (
	DialectUnknown Dialect = iota
	DialectDraft4
	DialectDraft6
	DialectDraft7
	Dialect201909
	Dialect202012
)

var dialectMarkers = []struct {
	marker  string
	dialect Dialect
}{
	{"draft-04", DialectDraft4},
	{"draft4", DialectDraft4},
	{"draft-06", DialectDraft6},
	{"draft6", DialectDraft6},
	{"draft-07", DialectDraft7},
	{"draft7", DialectDraft7},
	{"2019-09", Dialect201909},
	{"2020-12", Dialect202012},
}

// detectDialect maps a $schema URI to a Dialect. An empty or unrecognized
// URI resolves to DialectUnknown, which is treated permissively (siblings
// of $ref are always evaluated), matching the "never fail on unrecognized
// dialect" requirement.
func detectDialect(schemaURI string) Dialect {
	if schemaURI == "" {
		return DialectUnknown
	}
	lower := strings.ToLower(schemaURI)
	for _, m := range dialectMarkers {
		if strings.Contains(lower, m.marker) {
			return m.dialect
		}
	}
	return DialectUnknown
}

// ignoresRefSiblings reports whether this dialect discards keywords that
// sit next to $ref, per draft-07 and earlier semantics. 2019-09 and later
// (and unrecognized dialects, permissively) evaluate siblings alongside
// the reference.
func (d Dialect) ignoresRefSiblings() bool {
	switch d {
	case DialectDraft4, DialectDraft6, DialectDraft7:
		return true
	default:
		return false
	}
}

// dialect returns this schema's effective dialect, inherited from the
// nearest enclosing resource that declares $schema.
func (s *Schema) dialect() Dialect {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.Schema != "" {
			return detectDialect(cur.Schema)
		}
	}
	return DialectUnknown
}

// legacyDependenciesApply reports whether the draft-04/06/07 "dependencies"
// keyword should still be evaluated for this dialect. 2019-09 replaced it
// with dependentRequired/dependentSchemas, so later dialects ignore it.
// An unrecognized dialect is treated permissively, like ignoresRefSiblings
// does, since most schemas found in the wild omit $schema entirely.
func (d Dialect) legacyDependenciesApply() bool {
	switch d {
	case Dialect201909, Dialect202012:
		return false
	default:
		return true
	}
}

// siblingKeywordsApply reports whether this schema's own keywords (beyond
// $ref/$dynamicRef) should be evaluated. It is false only when a $ref is
// present and the effective dialect is draft-07 or earlier.
func (s *Schema) siblingKeywordsApply() bool {
	if s.Ref == "" {
		return true
	}
	return !s.dialect().ignoresRefSiblings()
}
