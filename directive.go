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

import (
	"encoding/csv"
	"strings"
)

// admonitionNames is the set of directive names
// that specialize to [AdmonitionKind].
var admonitionNames = map[string]bool{
	"admonition": true,
	"attention":  true,
	"caution":    true,
	"danger":     true,
	"error":      true,
	"hint":       true,
	"important":  true,
	"note":       true,
	"tip":        true,
	"warning":    true,
}

// specializer converts [DirectiveKind] blocks into typed blocks.
// Directive bodies are uninterpreted spans until this pass:
// bodies that hold nested content (admonitions, figure captions)
// get their own block scan and inline rewrite here.
type specializer struct {
	scan    *scanner
	inlines *inlineParser
}

// rewrite specializes every directive under the given block in place.
// depth counts the containers (block quotes and directive bodies)
// enclosing root's children, sharing the scanner's nesting budget.
func (sp *specializer) rewrite(root *Block, depth int) {
	for _, child := range root.Children() {
		b := child.Block()
		if b == nil {
			continue
		}
		childDepth := depth
		if b.kind == BlockQuoteKind {
			childDepth++
		}
		if b.kind == DirectiveKind {
			sp.specialize(b, depth)
		}
		sp.rewrite(b, childDepth)
	}
}

func (sp *specializer) specialize(b *Block, depth int) {
	// Any directive may label itself for cross-referencing.
	if label, ok := b.Attr("label"); ok && label != "" {
		b.label = label
	}
	if depth+1 > sp.scan.maxDepth {
		sp.diag(MalformedDirective, b, "directive `{%s}` is nested past the depth limit", b.name)
		b.kind = PassthroughKind
		b.literal = sp.bodyText(b)
		b.bodyLines = nil
		return
	}
	switch {
	case b.name == "image" || b.name == "figure":
		sp.figure(b, depth)
	case b.name == "math":
		sp.mathDirective(b)
	case b.name == "csv-table":
		sp.csvTable(b)
	case admonitionNames[b.name]:
		b.kind = AdmonitionKind
		b.children = append(b.children, sp.bodyBlocks(b, depth+1)...)
	case b.name == "glossary":
		sp.glossary(b)
	case b.name == "mermaid":
		b.kind = MermaidKind
		b.literal = sp.bodyText(b)
	default:
		b.kind = PassthroughKind
		b.literal = sp.bodyText(b)
	}
	b.bodyLines = nil
}

// figure specializes {image} and {figure} directives.
// The fence argument is the image source path;
// a directive without one cannot be rendered as a figure
// and is preserved as a passthrough instead.
func (sp *specializer) figure(b *Block, depth int) {
	if b.arg == "" {
		sp.diag(MalformedDirective, b, "directive `{%s}` is missing an image path argument", b.name)
		b.kind = PassthroughKind
		b.literal = sp.bodyText(b)
		return
	}
	b.kind = FigureKind
	if b.label == "" {
		if name, ok := b.Attr("name"); ok && name != "" {
			b.label = name
		}
	}
	alt, _ := b.Attr("alt")
	img := &Inline{
		kind:        ImageKind,
		span:        Span{b.span.Start, b.span.Start},
		destination: b.arg,
		literal:     alt,
		label:       b.label,
	}
	b.children = append(b.children, img.AsNode())
	// The body, if any, is the figure caption.
	b.children = append(b.children, sp.bodyBlocks(b, depth+1)...)
}

func (sp *specializer) mathDirective(b *Block) {
	b.kind = MathBlockKind
	content := strings.Split(sp.bodyText(b), "\n")
	if b.label == "" {
		b.label, content = extractMathLabel(content)
	}
	b.literal = strings.TrimSpace(strings.Join(content, "\n"))
}

// csvTable specializes a {csv-table} directive.
// Row data comes from the directive body,
// or is deferred to the renderer when a :file: attribute names
// an external source.
func (sp *specializer) csvTable(b *Block) {
	body := sp.bodyText(b)
	_, hasFile := b.Attr("file")
	if body == "" && !hasFile {
		sp.diag(MalformedDirective, b, "directive `{csv-table}` has neither a body nor a :file: attribute")
		b.kind = PassthroughKind
		return
	}
	if body != "" && hasFile {
		sp.diag(MalformedDirective, b, "directive `{csv-table}` has both a body and a :file: attribute")
		b.kind = PassthroughKind
		b.literal = body
		return
	}
	b.kind = CsvTableKind
	if body == "" {
		return
	}
	r := csv.NewReader(strings.NewReader(body))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		sp.diag(MalformedDirective, b, "directive `{csv-table}` body is not valid CSV: %v", err)
		b.kind = PassthroughKind
		b.literal = body
		return
	}
	b.records = records
}

// glossary specializes a {glossary} directive.
// A term is a line at the margin of the body;
// the indented lines that follow it are its definition.
func (sp *specializer) glossary(b *Block) {
	b.kind = GlossaryKind
	lines := sp.bodyAsLines(b)
	var entry *Block
	for _, ln := range lines {
		text := sp.scan.text(ln)
		if isBlankLine(text) {
			continue
		}
		indented := text[0] == ' ' || text[0] == '\t'
		if !indented {
			entry = &Block{
				kind: GlossaryEntryKind,
				span: ln.span,
				line: ln.num,
				term: string(trimIndent(text)),
			}
			b.children = append(b.children, entry.AsNode())
			continue
		}
		if entry == nil {
			sp.diag(MalformedDirective, b, "glossary definition on line %d has no term", ln.num)
			continue
		}
		trimmed := trimIndent(text)
		start := ln.span.Start + (len(text) - len(trimmed))
		entry.children = append(entry.children, (&Inline{
			kind: UnparsedKind,
			span: Span{start, ln.span.End},
		}).AsNode())
		entry.span.End = ln.span.End
	}
	for _, child := range b.Children() {
		if e := child.Block(); e != nil {
			sp.inlines.rewrite(e)
		}
	}
}

// bodyBlocks runs the full block and inline pipeline on a directive body.
// depth is the body's own nesting depth,
// so quotes and directives inside the body draw on the same budget
// as the containers enclosing the directive.
func (sp *specializer) bodyBlocks(b *Block, depth int) []Node {
	lines := sp.bodyAsLines(b)
	if len(lines) == 0 {
		return nil
	}
	var out []Node
	for _, block := range sp.scan.scanBlocks(lines, depth, false) {
		sp.inlines.rewrite(block)
		childDepth := depth
		if block.kind == BlockQuoteKind {
			childDepth++
		}
		if block.kind == DirectiveKind {
			sp.specialize(block, depth)
		}
		sp.rewrite(block, childDepth)
		out = append(out, block.AsNode())
	}
	return out
}

func (sp *specializer) bodyAsLines(b *Block) []line {
	lines := make([]line, 0, len(b.bodyLines))
	for _, span := range b.bodyLines {
		lines = append(lines, line{span: span, num: sp.scan.doc.lineOf(span.Start)})
	}
	return lines
}

func (sp *specializer) bodyText(b *Block) string {
	parts := make([]string, 0, len(b.bodyLines))
	for _, span := range b.bodyLines {
		parts = append(parts, string(sp.scan.source[span.Start:span.End]))
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func (sp *specializer) diag(kind ErrorKind, b *Block, format string, args ...any) {
	sp.scan.diag(kind, line{span: b.span, num: b.line}, format, args...)
}
