// Copyright 2025 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package mystmark

import "sort"

// Span is a range of bytes in a document's source.
// The range is inclusive of the start and exclusive of the end.
type Span struct {
	Start int
	End   int
}

// NullSpan returns an invalid span.
func NullSpan() Span {
	return Span{-1, -1}
}

// IsValid reports whether the span is valid.
func (s Span) IsValid() bool {
	return s.Start >= 0 && s.End >= s.Start
}

// Len returns the length of the span
// or zero if the span is invalid.
func (s Span) Len() int {
	if !s.IsValid() {
		return 0
	}
	return s.End - s.Start
}

// Alignment is a table column alignment
// derived from the table's separator row.
type Alignment int8

const (
	AlignDefault Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// String returns the alignment as a lowercase word like "left".
func (a Alignment) String() string {
	switch a {
	case AlignDefault:
		return "default"
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "invalid"
	}
}

// An Attr is a single directive attribute.
// Attribute values are uninterpreted strings at this layer:
// coercing a width like "200px" is the renderer's concern.
type Attr struct {
	Key   string
	Value string
}

// A Block is a structural element in a MyST document.
type Block struct {
	kind     BlockKind
	span     Span
	line     int // 1-based line of the block's first byte
	children []Node

	level      int    // heading level 1-6
	name       string // directive name
	arg        string // directive fence argument
	attrs      []Attr
	label      string // figure/equation/other cross-reference label
	literal    string // math source, mermaid source, passthrough body
	identifier string // footnote definition identifier
	term       string // glossary entry term
	align      []Alignment
	header     bool // table row is the header row
	records    [][]string

	bodyLines []Span // raw directive body, consumed during specialization
}

// Kind returns the type of block node
// or zero if the block is nil.
func (b *Block) Kind() BlockKind {
	if b == nil {
		return 0
	}
	return b.kind
}

// Span returns the block's position in the document source
// or an invalid span if the block is nil.
func (b *Block) Span() Span {
	if b == nil {
		return NullSpan()
	}
	return b.span
}

// Line returns the 1-based line number the block starts on
// or zero if the block is nil.
func (b *Block) Line() int {
	if b == nil {
		return 0
	}
	return b.line
}

// Children returns the block's child nodes.
func (b *Block) Children() []Node {
	if b == nil {
		return nil
	}
	return b.children
}

// ChildCount returns the number of children the block has.
// Calling ChildCount on nil returns 0.
func (b *Block) ChildCount() int {
	if b == nil {
		return 0
	}
	return len(b.children)
}

// Child returns the i'th child of the block.
func (b *Block) Child(i int) Node {
	return b.children[i]
}

// HeadingLevel returns the level (1-6) of a [HeadingKind] block
// or zero for any other kind.
func (b *Block) HeadingLevel() int {
	if b.Kind() != HeadingKind {
		return 0
	}
	return b.level
}

// Name returns the directive name
// for directive-derived blocks (figures, admonitions, passthroughs)
// or the empty string otherwise.
func (b *Block) Name() string {
	if b == nil {
		return ""
	}
	return b.name
}

// Argument returns the text following the directive name on the fence line.
func (b *Block) Argument() string {
	if b == nil {
		return ""
	}
	return b.arg
}

// Attrs returns the block's directive attributes in source order.
func (b *Block) Attrs() []Attr {
	if b == nil {
		return nil
	}
	return b.attrs
}

// Attr returns the value of the named directive attribute.
func (b *Block) Attr(key string) (string, bool) {
	for _, a := range b.Attrs() {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Label returns the block's cross-reference label
// or the empty string if the block is unlabeled.
func (b *Block) Label() string {
	if b == nil {
		return ""
	}
	return b.label
}

// Literal returns the uninterpreted body of the block:
// LaTeX source for [MathBlockKind],
// diagram source for [MermaidKind],
// and the raw body for [PassthroughKind].
func (b *Block) Literal() string {
	if b == nil {
		return ""
	}
	return b.literal
}

// Identifier returns the identifier of a [FootnoteDefinitionKind] block.
func (b *Block) Identifier() string {
	if b == nil {
		return ""
	}
	return b.identifier
}

// Term returns the term of a [GlossaryEntryKind] block.
func (b *Block) Term() string {
	if b == nil {
		return ""
	}
	return b.term
}

// ColumnAlignments returns the per-column alignments of a [TableKind] block.
func (b *Block) ColumnAlignments() []Alignment {
	if b == nil {
		return nil
	}
	return b.align
}

// IsHeaderRow reports whether a [TableRowKind] block is its table's header row.
func (b *Block) IsHeaderRow() bool {
	return b != nil && b.header
}

// Records returns the parsed rows of a [CsvTableKind] block.
// Records is nil when the directive referenced an external file.
func (b *Block) Records() [][]string {
	if b == nil {
		return nil
	}
	return b.records
}

// BlockKind is an enumeration of values returned by [*Block.Kind].
type BlockKind uint16

const (
	ParagraphKind BlockKind = 1 + iota
	HeadingKind
	BlockQuoteKind
	AttributionKind
	TableKind
	TableRowKind
	TableCellKind
	MathBlockKind
	FootnoteDefinitionKind
	FigureKind
	CsvTableKind
	AdmonitionKind
	GlossaryKind
	GlossaryEntryKind
	MermaidKind
	PassthroughKind

	// DirectiveKind is a fenced directive
	// that has not been specialized yet.
	// Blocks of this kind only appear
	// before the directive pass has run.
	DirectiveKind

	documentKind
)

var blockKindNames = map[BlockKind]string{
	ParagraphKind:          "ParagraphKind",
	HeadingKind:            "HeadingKind",
	BlockQuoteKind:         "BlockQuoteKind",
	AttributionKind:        "AttributionKind",
	TableKind:              "TableKind",
	TableRowKind:           "TableRowKind",
	TableCellKind:          "TableCellKind",
	MathBlockKind:          "MathBlockKind",
	FootnoteDefinitionKind: "FootnoteDefinitionKind",
	FigureKind:             "FigureKind",
	CsvTableKind:           "CsvTableKind",
	AdmonitionKind:         "AdmonitionKind",
	GlossaryKind:           "GlossaryKind",
	GlossaryEntryKind:      "GlossaryEntryKind",
	MermaidKind:            "MermaidKind",
	PassthroughKind:        "PassthroughKind",
	DirectiveKind:          "DirectiveKind",
	documentKind:           "documentKind",
}

// String returns the kind as a Go constant name like "ParagraphKind".
func (kind BlockKind) String() string {
	if s, ok := blockKindNames[kind]; ok {
		return s
	}
	return "BlockKind(?)"
}

// AsNode converts the block node to a [Node] pointer.
func (b *Block) AsNode() Node {
	if b == nil {
		return Node{}
	}
	return Node{block: b}
}

// Node is a pointer to a [Block] or an [Inline].
// Nodes can be compared for equality using the == operator.
type Node struct {
	block  *Block
	inline *Inline
}

// Block returns the referenced block
// or nil if the pointer does not reference a block.
func (n Node) Block() *Block {
	return n.block
}

// Inline returns the referenced inline
// or nil if the pointer does not reference an inline.
func (n Node) Inline() *Inline {
	return n.inline
}

// Span returns the span of the referenced node
// or an invalid span if the pointer is nil.
func (n Node) Span() Span {
	if n.block != nil {
		return n.block.Span()
	}
	if n.inline != nil {
		return n.inline.Span()
	}
	return NullSpan()
}

// ChildCount returns the number of children the node has.
// Calling ChildCount on the zero value returns 0.
func (n Node) ChildCount() int {
	if n.block != nil {
		return n.block.ChildCount()
	}
	if n.inline != nil {
		return n.inline.ChildCount()
	}
	return 0
}

// Child returns the i'th child of the node.
func (n Node) Child(i int) Node {
	if n.block != nil {
		return n.block.Child(i)
	}
	if n.inline != nil {
		return n.inline.Child(i).AsNode()
	}
	panic("Child on nil Node")
}

// A Document is the finalized result of parsing one source document.
// The tree is constructed during [Parse] and is read-only afterward:
// consumers iterate [*Document.Blocks], recurse into children,
// and query [*Document.Labels] for assigned ordinals.
type Document struct {
	// Source is the UTF-8 text the document was parsed from.
	Source []byte

	root        Block
	labels      *LabelTable
	footnotes   map[string]*Block
	glossary    map[string]*Block
	lineOffsets []int
	diags       []Diagnostic
}

// Blocks returns the document's top-level blocks in order.
func (d *Document) Blocks() []*Block {
	blocks := make([]*Block, 0, len(d.root.children))
	for _, n := range d.root.children {
		if b := n.Block(); b != nil {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// AsNode returns a node for the document root,
// suitable for passing to [Walk].
func (d *Document) AsNode() Node {
	return d.root.AsNode()
}

// Labels returns the document's label table.
func (d *Document) Labels() *LabelTable {
	return d.labels
}

// Diagnostics returns every parse error collected for the document,
// in the order they were discovered.
// A non-empty result does not mean the tree is unusable:
// structurally recoverable regions are degraded to paragraphs
// and unresolved references are left unannotated.
func (d *Document) Diagnostics() []Diagnostic {
	return d.diags
}

// Footnote returns the definition for a footnote identifier
// or nil if the identifier was never defined.
// Lookup is Unicode case-insensitive.
func (d *Document) Footnote(identifier string) *Block {
	return d.footnotes[foldKey(identifier)]
}

// Term returns the glossary entry for a term
// or nil if the term was never defined.
// Lookup is Unicode case-insensitive.
func (d *Document) Term(term string) *Block {
	return d.glossary[foldKey(term)]
}

// lineOf converts a byte offset to a 1-based line number.
func (d *Document) lineOf(offset int) int {
	return sort.SearchInts(d.lineOffsets, offset+1)
}

// LabelKind classifies a labeled entity for numbering purposes.
// Each kind has an independent ordinal counter.
type LabelKind uint8

const (
	FigureLabel LabelKind = 1 + iota
	EquationLabel
	OtherLabel
)

// String returns the kind as a lowercase word like "figure".
func (kind LabelKind) String() string {
	switch kind {
	case FigureLabel:
		return "figure"
	case EquationLabel:
		return "equation"
	case OtherLabel:
		return "other"
	default:
		return "invalid"
	}
}

// A LabelEntry records the resolution of one label.
type LabelEntry struct {
	Kind LabelKind
	// Ordinal is the 1-based number assigned to the labeled entity,
	// counted per kind in first-appearance order.
	// It is zero until the cross-reference pass has run.
	Ordinal int
	// Line is the line the labeled entity starts on.
	Line int
}

// A LabelTable maps labels to their numbering entries.
// Labels share a single namespace across kinds:
// a [](#label) reference carries no kind of its own,
// so two entities of different kinds may not reuse a label string.
type LabelTable struct {
	entries map[string]*LabelEntry
	order   []string
}

func newLabelTable() *LabelTable {
	return &LabelTable{entries: make(map[string]*LabelEntry)}
}

// Lookup returns the entry for a label.
func (t *LabelTable) Lookup(label string) (LabelEntry, bool) {
	e, ok := t.entries[label]
	if !ok {
		return LabelEntry{}, false
	}
	return *e, true
}

// Labels returns every defined label in first-appearance order.
func (t *LabelTable) Labels() []string {
	return t.order
}

// Len returns the number of defined labels.
func (t *LabelTable) Len() int {
	return len(t.entries)
}
