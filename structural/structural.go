// Package structural builds a position-aware, tagged-union tree out of
// a YAML document, independent of any schema. It is grounded on
// github.com/goccy/go-yaml's ast/parser/token packages (already a
// dependency of the teacher, used there only for generic
// yaml.Unmarshal into `any`) and on the AST-walking idiom in the
// retrieval pack's MacroPower-x/magicschema generator (ast.Walk,
// AnchorNode/AliasNode resolution via a name-keyed map, MappingValueNode
// key/value access, MergeKeyNode handling) — generalized here to keep
// positions and raw scalar form instead of folding straight to a JSON
// Schema type guess.
package structural

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"

	"github.com/yamlls/core/customtag"
)

// NodeKind is the tag of the tagged-union Structural Tree node.
type NodeKind int

const (
	KindScalar NodeKind = iota
	KindMapping
	KindSequence
	KindAlias
)

func (k NodeKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	case KindAlias:
		return "alias"
	default:
		return "unknown"
	}
}

// ScalarForm records how a scalar was written, which the raw YAML syntax
// makes otherwise unrecoverable once parsed into a Go value (e.g. a
// double-quoted "42" and a plain 42 both decode to different types, but
// a plain yes and a quoted "yes" decode to different types too).
type ScalarForm int

const (
	FormPlain ScalarForm = iota
	FormSingleQuoted
	FormDoubleQuoted
	FormLiteral // |
	FormFolded  // >
)

// ScalarType is the inferred JSON-ish type of a plain scalar's content.
type ScalarType int

const (
	TypeNull ScalarType = iota
	TypeBoolean
	TypeInteger
	TypeFloat
	TypeString
)

// Span is a half-open byte range into the source text, plus the
// human-facing line/column of its start, matching the position style
// go/token and goccy/go-yaml/token both use.
type Span struct {
	StartOffset, EndOffset int
	StartLine, StartColumn int
}

// Node is the common interface every Structural Tree node implements.
type Node interface {
	Kind() NodeKind
	Span() Span
	Parent() Node
	// Tag is the YAML node tag if an explicit one was written (e.g. "!Ref"),
	// or "" otherwise.
	Tag() string
}

type base struct {
	span   Span
	parent Node
	tag    string
}

func (b *base) Span() Span   { return b.span }
func (b *base) Parent() Node { return b.parent }
func (b *base) Tag() string  { return b.tag }

// ScalarNode is a leaf value: a string, number, boolean or null.
type ScalarNode struct {
	base
	Raw          string
	Form         ScalarForm
	InferredType ScalarType
	Value        any // decoded Go value: nil, bool, int64, float64 or string
}

func (n *ScalarNode) Kind() NodeKind { return KindScalar }

// MappingPair is one key/value entry of a MappingNode, in source order.
type MappingPair struct {
	Key   Node
	Value Node
}

// MappingNode is an ordered set of key/value pairs. Order is preserved
// because YAML mapping order is observable (and diagnostics need it for
// stable output).
type MappingNode struct {
	base
	Pairs []MappingPair
}

func (n *MappingNode) Kind() NodeKind { return KindMapping }

// SequenceNode is an ordered list of items.
type SequenceNode struct {
	base
	Items []Node
}

func (n *SequenceNode) Kind() NodeKind { return KindSequence }

// AliasNode is a `*name` reference. Target is nil if the alias could not
// be resolved (unknown anchor, or the expansion-bomb/cycle guard
// tripped); either case is reported as a ParseError, not a panic.
type AliasNode struct {
	base
	Name   string
	Target Node
}

func (n *AliasNode) Kind() NodeKind { return KindAlias }

// Document is one `---`-delimited YAML document within a source file.
type Document struct {
	Root     Node
	Comments []Comment
}

// Comment is a standalone or trailing comment captured during parsing,
// used by the modeline detector and by hover/description lookups.
type Comment struct {
	Text string
	Span Span
}

// ErrorKind classifies a parse failure into the small closed set the
// diagnostics reporter knows how to phrase distinctly.
type ErrorKind int

const (
	ErrGeneric ErrorKind = iota
	ErrBlockMappingEntry
	ErrColonMissing
	ErrDuplicateKey
	ErrIncludeWithoutValue
)

// ParseError is a recoverable structural problem found while building
// the tree; it never aborts construction of the rest of the document.
type ParseError struct {
	Kind    ErrorKind
	Message string
	Span    Span
}

func (e *ParseError) Error() string { return e.Message }

// maxAliasExpansions bounds how many alias nodes a single document may
// expand through, guarding against anchor/alias expansion bombs (a
// document with a handful of anchors each aliasing the last can expand
// to billions of nodes once walked naively).
const maxAliasExpansions = 10000

// Parse builds the Structural Tree for every document in src. tags is the
// configured custom-tag allow-list (see package customtag); a tag outside
// it that isn't one of YAML's own core "!!"-prefixed tags is reported as a
// ParseError, though the node itself still parses as an opaque value
// (custom tags never fail the parse).
func Parse(src []byte, tags customtag.Table) ([]*Document, []*ParseError) {
	file, err := parser.ParseBytes(src, parser.ParseComments)
	if err != nil {
		return nil, []*ParseError{{Kind: ErrGeneric, Message: err.Error()}}
	}

	var docs []*Document
	var errs []*ParseError

	for _, d := range file.Docs {
		if d.Body == nil {
			docs = append(docs, &Document{})
			continue
		}

		b := &builder{rawAnchorNodes: make(map[string]ast.Node), tags: tags}
		b.collectAnchors(d.Body)

		root := b.build(d.Body, nil)
		errs = append(errs, b.errs...)
		docs = append(docs, &Document{Root: root, Comments: extractComments(d)})
	}

	return docs, errs
}

type builder struct {
	rawAnchorNodes map[string]ast.Node
	expansions     int
	errs           []*ParseError
	visiting       map[string]bool
	tags           customtag.Table
}

// isWellKnownTag reports whether tag is one of YAML's own core resolver
// tags (e.g. "!!str", "!!int"), as opposed to an application-defined
// custom tag like "!Ref" that must be in the configured allow-list to
// parse without a warning.
func isWellKnownTag(tag string) bool {
	return tag == "" || strings.HasPrefix(tag, "!!")
}

// collectAnchors does a first pass over the raw AST (before building the
// Structural Tree) so forward references (an alias before its anchor's
// structural node exists) still resolve; it records the raw ast.Node,
// which is lazily converted to a Structural Tree node the first time an
// alias actually dereferences it.
func (b *builder) collectAnchors(n ast.Node) {
	ast.Walk(&anchorCollector{anchors: b.rawAnchorNodes}, n)
}

type anchorCollector struct {
	anchors map[string]ast.Node
}

func (v *anchorCollector) Visit(node ast.Node) ast.Visitor {
	if anchor, ok := node.(*ast.AnchorNode); ok && anchor.Name != nil {
		v.anchors[anchor.Name.String()] = anchor.Value
	}
	return v
}

func (b *builder) build(n ast.Node, parent Node) Node {
	if n == nil {
		return nil
	}

	switch v := n.(type) {
	case *ast.TagNode:
		tag := ""
		if v.Start != nil {
			tag = v.Start.Value
		}
		child := b.build(v.Value, parent)
		if child != nil {
			setTag(child, tag)
			if !isWellKnownTag(tag) && !b.tags.Allows(tag) {
				b.errs = append(b.errs, &ParseError{Kind: ErrGeneric, Message: fmt.Sprintf("unrecognized custom tag %q", tag), Span: child.Span()})
			}
		}
		return child

	case *ast.AnchorNode:
		return b.build(v.Value, parent)

	case *ast.AliasNode:
		name := ""
		if v.Value != nil {
			name = v.Value.String()
		}
		result := &AliasNode{base: base{span: spanOf(n), parent: parent}, Name: name}
		if b.visiting == nil {
			b.visiting = map[string]bool{}
		}
		if b.visiting[name] {
			b.errs = append(b.errs, &ParseError{Kind: ErrGeneric, Message: fmt.Sprintf("alias cycle detected for anchor %q", name), Span: result.span})
			return result
		}
		b.expansions++
		if b.expansions > maxAliasExpansions {
			b.errs = append(b.errs, &ParseError{Kind: ErrGeneric, Message: "alias expansion limit exceeded", Span: result.span})
			return result
		}
		raw, ok := b.rawAnchorNodes[name]
		if !ok {
			b.errs = append(b.errs, &ParseError{Kind: ErrGeneric, Message: fmt.Sprintf("unresolved alias %q", name), Span: result.span})
			return result
		}
		b.visiting[name] = true
		result.Target = b.build(raw, result)
		b.visiting[name] = false
		return result

	case *ast.MappingValueNode:
		return b.buildMapping([]*ast.MappingValueNode{v}, n, parent)

	case *ast.MappingNode:
		return b.buildMapping(v.Values, n, parent)

	case *ast.SequenceNode:
		seq := &SequenceNode{base: base{span: spanOf(n), parent: parent}}
		for _, item := range v.Values {
			if child := b.build(item, seq); child != nil {
				seq.Items = append(seq.Items, child)
			}
		}
		return seq

	case *ast.NullNode:
		return &ScalarNode{base: base{span: spanOf(n), parent: parent}, Raw: v.String(), InferredType: TypeNull}

	case *ast.BoolNode:
		return &ScalarNode{base: base{span: spanOf(n), parent: parent}, Raw: v.String(), InferredType: TypeBoolean, Value: v.Value, Form: formOf(n)}

	case *ast.IntegerNode:
		return &ScalarNode{base: base{span: spanOf(n), parent: parent}, Raw: v.String(), InferredType: TypeInteger, Value: v.Value, Form: formOf(n)}

	case *ast.FloatNode:
		return &ScalarNode{base: base{span: spanOf(n), parent: parent}, Raw: v.String(), InferredType: TypeFloat, Value: v.Value, Form: formOf(n)}

	case *ast.InfinityNode:
		return &ScalarNode{base: base{span: spanOf(n), parent: parent}, Raw: v.String(), InferredType: TypeFloat}

	case *ast.NanNode:
		return &ScalarNode{base: base{span: spanOf(n), parent: parent}, Raw: v.String(), InferredType: TypeFloat}

	case *ast.LiteralNode:
		raw := v.String()
		form := FormLiteral
		if v.Start != nil && v.Start.Value == ">" {
			form = FormFolded
		}
		val := raw
		if v.Value != nil {
			val = v.Value.Value
		}
		return &ScalarNode{base: base{span: spanOf(n), parent: parent}, Raw: val, InferredType: TypeString, Form: form, Value: val}

	case *ast.StringNode:
		return &ScalarNode{base: base{span: spanOf(n), parent: parent}, Raw: v.Value, InferredType: TypeString, Value: v.Value, Form: formOf(n)}

	case *ast.MergeKeyNode:
		return &ScalarNode{base: base{span: spanOf(n), parent: parent}, Raw: "<<", InferredType: TypeString, Value: "<<"}

	default:
		// Unknown/unsupported node kind (new syntax the pinned parser
		// version doesn't model yet): keep parsing the rest of the
		// document rather than aborting, per the "never crash" contract.
		return &ScalarNode{base: base{span: spanOf(n), parent: parent}, Raw: n.String(), InferredType: TypeString, Value: n.String()}
	}
}

func (b *builder) buildMapping(values []*ast.MappingValueNode, n ast.Node, parent Node) Node {
	m := &MappingNode{base: base{span: spanOf(n), parent: parent}}
	seenKeys := map[string]bool{}
	var merges []ast.Node
	for _, mvn := range values {
		if mvn == nil {
			continue
		}
		if _, isMerge := mvn.Key.(*ast.MergeKeyNode); isMerge {
			merges = append(merges, mvn.Value)
			continue
		}
		keyNode := b.build(mvn.Key, m)
		valueNode := b.build(mvn.Value, m)
		if keyNode == nil {
			continue
		}
		if keyText := textOf(keyNode); keyText != "" {
			if seenKeys[keyText] {
				b.errs = append(b.errs, &ParseError{Kind: ErrDuplicateKey, Message: fmt.Sprintf("duplicate key %q", keyText), Span: keyNode.Span()})
			}
			seenKeys[keyText] = true
		}
		m.Pairs = append(m.Pairs, MappingPair{Key: keyNode, Value: valueNode})
	}
	for _, v := range merges {
		b.mergeInto(m, v)
	}
	return m
}

// mergeInto expands a YAML `<<` merge key by appending the referenced
// mapping's (or list of mappings') pairs after the pairs already present.
// buildMapping calls it only once every explicit pair is in place, and
// ToAny keeps the first occurrence of a key, so this matches standard
// YAML merge-key precedence (explicit keys win over merged ones; earlier
// mappings in a merge list win over later ones).
func (b *builder) mergeInto(m *MappingNode, value ast.Node) {
	merged := b.build(value, m)
	switch src := merged.(type) {
	case *MappingNode:
		m.Pairs = append(m.Pairs, src.Pairs...)
	case *SequenceNode:
		for _, item := range src.Items {
			if a, ok := item.(*AliasNode); ok {
				item = a.Target
			}
			if mm, ok := item.(*MappingNode); ok {
				m.Pairs = append(m.Pairs, mm.Pairs...)
			}
		}
	case *AliasNode:
		if mm, ok := src.Target.(*MappingNode); ok {
			m.Pairs = append(m.Pairs, mm.Pairs...)
		}
	}
}

func textOf(n Node) string {
	if s, ok := n.(*ScalarNode); ok {
		if str, ok := s.Value.(string); ok {
			return str
		}
		return s.Raw
	}
	return ""
}

func setTag(n Node, tag string) {
	switch v := n.(type) {
	case *ScalarNode:
		v.tag = tag
	case *MappingNode:
		v.tag = tag
	case *SequenceNode:
		v.tag = tag
	case *AliasNode:
		v.tag = tag
	}
}

func formOf(n ast.Node) ScalarForm {
	tok := n.GetToken()
	if tok == nil {
		return FormPlain
	}
	switch tok.Type.String() {
	case "SingleQuote":
		return FormSingleQuoted
	case "DoubleQuote":
		return FormDoubleQuoted
	default:
		return FormPlain
	}
}

func spanOf(n ast.Node) Span {
	tok := n.GetToken()
	if tok == nil || tok.Position == nil {
		return Span{}
	}
	pos := tok.Position
	raw := n.String()
	return Span{
		StartOffset: pos.Offset,
		EndOffset:   pos.Offset + len(raw),
		StartLine:   pos.Line,
		StartColumn: pos.Column,
	}
}

// ToAny converts a Structural Tree into the plain Go value shape
// (map[string]any, []any, string, int64, float64, bool, nil) that schema
// validation operates on. This is the single source of truth for what
// gets validated: it reuses the same tree Parse already built instead of
// decoding the source bytes a second time, so duplicate-key
// first-occurrence-wins and the alias-expansion guard both apply to the
// validated value exactly as they did during parsing.
func ToAny(n Node) any {
	if n == nil {
		return nil
	}
	switch v := n.(type) {
	case *ScalarNode:
		return v.Value
	case *MappingNode:
		m := make(map[string]any, len(v.Pairs))
		for _, pair := range v.Pairs {
			key := textOf(pair.Key)
			if _, exists := m[key]; exists {
				continue // first occurrence wins
			}
			m[key] = ToAny(pair.Value)
		}
		return m
	case *SequenceNode:
		items := make([]any, len(v.Items))
		for i, item := range v.Items {
			items[i] = ToAny(item)
		}
		return items
	case *AliasNode:
		return ToAny(v.Target)
	default:
		return nil
	}
}

func extractComments(doc *ast.DocumentNode) []Comment {
	var comments []Comment
	ast.Walk(&commentCollector{out: &comments}, doc.Body)
	return comments
}

type commentCollector struct {
	out *[]Comment
}

func (v *commentCollector) Visit(node ast.Node) ast.Visitor {
	type commentHolder interface {
		GetComment() *ast.CommentGroupNode
	}
	if ch, ok := node.(commentHolder); ok {
		if cg := ch.GetComment(); cg != nil {
			*v.out = append(*v.out, Comment{Text: cg.String(), Span: spanOf(cg)})
		}
	}
	return v
}
