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
	"bytes"
	"fmt"
	"strings"
)

// A line is one source line, excluding its end-of-line bytes.
// Lines inside block quotes have their marker prefixes stripped,
// so a line's span is not necessarily contiguous with its neighbors'.
type line struct {
	span Span
	num  int // 1-based
}

// scanner splits a document into block candidates.
// It does not tokenize inline content:
// text regions are collected as [UnparsedKind] children
// for the inline pass to rewrite.
type scanner struct {
	source   []byte
	doc      *Document
	maxDepth int
}

func (s *scanner) text(ln line) []byte {
	return s.source[ln.span.Start:ln.span.End]
}

func (s *scanner) diag(kind ErrorKind, ln line, format string, args ...any) {
	s.doc.diags = append(s.doc.diags, Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    ln.num,
		Offset:  ln.span.Start,
	})
}

// scanBlocks scans a region of lines into blocks.
// inQuote marks the region as the immediate content of a block quote,
// which enables the trailing attribution rule.
func (s *scanner) scanBlocks(lines []line, depth int, inQuote bool) []*Block {
	var blocks []*Block
	var para []line
	flushPara := func() {
		if len(para) > 0 {
			blocks = append(blocks, s.paragraph(para))
			para = nil
		}
	}

	// A final "- Name" line inside a quote is the quote's attribution,
	// not paragraph text.
	attrIndex := -1
	if inQuote {
		for i := len(lines) - 1; i >= 0; i-- {
			text := trimIndent(s.text(lines[i]))
			if isBlankLine(text) {
				continue
			}
			if bytes.HasPrefix(text, []byte("- ")) {
				attrIndex = i
			}
			break
		}
	}

	for i := 0; i < len(lines); {
		ln := lines[i]
		text := s.text(ln)
		trimmed := trimIndent(text)
		indent := len(text) - len(trimmed)

		if isBlankLine(text) {
			flushPara()
			i++
			continue
		}

		if i == attrIndex {
			flushPara()
			blocks = append(blocks, s.attribution(ln, indent))
			i++
			continue
		}

		if h := parseHeading(trimmed); h.level > 0 {
			flushPara()
			start := ln.span.Start + indent
			heading := &Block{
				kind:  HeadingKind,
				span:  Span{start, ln.span.End},
				line:  ln.num,
				level: h.level,
			}
			heading.children = append(heading.children, (&Inline{
				kind: UnparsedKind,
				span: Span{start + h.contentStart, start + h.contentEnd},
			}).AsNode())
			blocks = append(blocks, heading)
			i++
			continue
		}

		if quoteMarkerEnd(trimmed) >= 0 {
			flushPara()
			var quoted []line
			j := i
			for ; j < len(lines); j++ {
				text := trimIndent(s.text(lines[j]))
				end := quoteMarkerEnd(text)
				if end < 0 {
					break
				}
				inner := lines[j]
				inner.span.Start = inner.span.End - len(text) + end
				quoted = append(quoted, inner)
			}
			quote := &Block{
				kind: BlockQuoteKind,
				span: Span{lines[i].span.Start + indent, lines[j-1].span.End},
				line: ln.num,
			}
			if depth+1 <= s.maxDepth {
				for _, child := range s.scanBlocks(quoted, depth+1, true) {
					quote.children = append(quote.children, child.AsNode())
				}
				blocks = append(blocks, quote)
			} else {
				// Past the nesting guard the markers are ordinary text.
				blocks = append(blocks, s.literalParagraph(lines[i:j]))
			}
			i = j
			continue
		}

		if name, arg, fenceLen, ok := parseFenceOpen(trimmed); ok {
			flushPara()
			var next []*Block
			next, i = s.scanDirective(lines, i, name, arg, fenceLen, indent)
			blocks = append(blocks, next...)
			continue
		}

		if rest, ok := bytes.CutPrefix(trimmed, []byte("$$")); ok {
			flushPara()
			var next []*Block
			next, i = s.scanMathBlock(lines, i, rest, indent)
			blocks = append(blocks, next...)
			continue
		}

		if id, contentStart, ok := parseFootnoteDefinition(trimmed); ok {
			flushPara()
			var next *Block
			next, i = s.scanFootnoteDefinition(lines, i, id, indent+contentStart)
			blocks = append(blocks, next)
			continue
		}

		if i+1 < len(lines) {
			if aligns, ok := parseTableSeparator(trimIndent(s.text(lines[i+1]))); ok && bytes.IndexByte(text, '|') >= 0 {
				flushPara()
				var next []*Block
				next, i = s.scanTable(lines, i, aligns)
				blocks = append(blocks, next...)
				continue
			}
		}

		para = append(para, ln)
		i++
	}
	flushPara()
	return blocks
}

// paragraph builds a [ParagraphKind] block
// whose children are one [UnparsedKind] span per line.
func (s *scanner) paragraph(lines []line) *Block {
	p := &Block{
		kind: ParagraphKind,
		span: Span{lines[0].span.Start, lines[len(lines)-1].span.End},
		line: lines[0].num,
	}
	for _, ln := range lines {
		text := s.text(ln)
		trimmed := bytes.TrimRight(trimIndent(text), " \t")
		start := ln.span.Start + (len(text) - len(trimIndent(text)))
		p.children = append(p.children, (&Inline{
			kind: UnparsedKind,
			span: Span{start, start + len(trimmed)},
		}).AsNode())
	}
	return p
}

// literalParagraph degrades a region to a paragraph of literal text.
// No inline tokenization will run on its children.
func (s *scanner) literalParagraph(lines []line) *Block {
	p := &Block{
		kind: ParagraphKind,
		span: Span{lines[0].span.Start, lines[len(lines)-1].span.End},
		line: lines[0].num,
	}
	for i, ln := range lines {
		if i > 0 {
			p.children = append(p.children, (&Inline{
				kind:    TextKind,
				span:    Span{ln.span.Start, ln.span.Start},
				literal: "\n",
			}).AsNode())
		}
		p.children = append(p.children, (&Inline{
			kind: TextKind,
			span: ln.span,
		}).AsNode())
	}
	return p
}

func (s *scanner) attribution(ln line, indent int) *Block {
	start := ln.span.Start + indent
	b := &Block{
		kind: AttributionKind,
		span: Span{start, ln.span.End},
		line: ln.num,
	}
	b.children = append(b.children, (&Inline{
		kind: UnparsedKind,
		span: Span{start + len("- "), ln.span.End},
	}).AsNode())
	return b
}

// scanDirective consumes a fenced directive opened at lines[i].
// An unclosed fence is an UnterminatedBlock error:
// the region is degraded to a literal paragraph and scanning continues.
func (s *scanner) scanDirective(lines []line, i int, name, arg string, fenceLen, indent int) ([]*Block, int) {
	closing := -1
	for j := i + 1; j < len(lines); j++ {
		if isFenceClose(trimIndent(s.text(lines[j])), fenceLen) {
			closing = j
			break
		}
	}
	if closing < 0 {
		s.diag(UnterminatedBlock, lines[i], "directive fence `{%s}` opened on line %d is never closed", name, lines[i].num)
		return []*Block{s.literalParagraph(lines[i:])}, len(lines)
	}

	b := &Block{
		kind: DirectiveKind,
		span: Span{lines[i].span.Start + indent, lines[closing].span.End},
		line: lines[i].num,
		name: name,
		arg:  arg,
	}
	body := lines[i+1 : closing]

	// Leading ":key: value" lines are attributes, not body.
	k := 0
	for ; k < len(body); k++ {
		key, value, ok := parseAttrLine(trimIndent(s.text(body[k])))
		if !ok {
			break
		}
		b.attrs = append(b.attrs, Attr{Key: key, Value: value})
	}
	if k < len(body) && isBlankLine(s.text(body[k])) {
		k++
	}
	for _, ln := range body[k:] {
		b.bodyLines = append(b.bodyLines, ln.span)
	}
	return []*Block{b}, closing + 1
}

// scanMathBlock consumes a "$$" display-math block opened at lines[i].
// rest is the text following the opening dollars on the same line.
func (s *scanner) scanMathBlock(lines []line, i int, rest []byte, indent int) ([]*Block, int) {
	var content []string
	end := -1

	if trimmed := bytes.TrimSpace(rest); bytes.HasSuffix(trimmed, []byte("$$")) && len(trimmed) > 2 {
		content = append(content, string(bytes.TrimSpace(trimmed[:len(trimmed)-2])))
		end = i
	} else {
		if len(trimmed) > 0 {
			content = append(content, string(trimmed))
		}
		for j := i + 1; j < len(lines); j++ {
			text := bytes.TrimSpace(s.text(lines[j]))
			if done := bytes.HasSuffix(text, []byte("$$")); done {
				if inner := bytes.TrimSpace(text[:len(text)-2]); len(inner) > 0 {
					content = append(content, string(inner))
				}
				end = j
				break
			}
			content = append(content, string(text))
		}
		if end < 0 {
			s.diag(UnterminatedBlock, lines[i], "math block opened on line %d is never closed", lines[i].num)
			return []*Block{s.literalParagraph(lines[i:])}, len(lines)
		}
	}

	b := &Block{
		kind: MathBlockKind,
		span: Span{lines[i].span.Start + indent, lines[end].span.End},
		line: lines[i].num,
	}
	b.label, content = extractMathLabel(content)
	b.literal = strings.TrimSpace(strings.Join(content, "\n"))
	return []*Block{b}, end + 1
}

// extractMathLabel pulls a leading \label{name} out of math content.
func extractMathLabel(content []string) (string, []string) {
	if len(content) == 0 {
		return "", content
	}
	first := strings.TrimSpace(content[0])
	rest, ok := strings.CutPrefix(first, `\label{`)
	if !ok {
		return "", content
	}
	name, tail, ok := strings.Cut(rest, "}")
	if !ok || name == "" {
		return "", content
	}
	if tail = strings.TrimSpace(tail); tail != "" {
		content[0] = tail
	} else {
		content = content[1:]
	}
	return name, content
}

func (s *scanner) scanFootnoteDefinition(lines []line, i int, id string, contentStart int) (*Block, int) {
	ln := lines[i]
	b := &Block{
		kind:       FootnoteDefinitionKind,
		span:       Span{ln.span.Start, ln.span.End},
		line:       ln.num,
		identifier: id,
	}
	b.children = append(b.children, (&Inline{
		kind: UnparsedKind,
		span: Span{ln.span.Start + contentStart, ln.span.End},
	}).AsNode())

	// Indented lines continue the definition.
	j := i + 1
	for ; j < len(lines); j++ {
		text := s.text(lines[j])
		if isBlankLine(text) || !(bytes.HasPrefix(text, []byte("  ")) || bytes.HasPrefix(text, []byte("\t"))) {
			break
		}
		trimmed := bytes.TrimRight(trimIndent(text), " \t")
		start := lines[j].span.Start + (len(text) - len(trimIndent(text)))
		b.children = append(b.children, (&Inline{
			kind: UnparsedKind,
			span: Span{start, start + len(trimmed)},
		}).AsNode())
		b.span.End = lines[j].span.End
	}
	return b, j
}

// scanTable consumes a pipe table whose separator row is lines[i+1].
// A row whose cell count disagrees with the header
// ends the table with a MalformedTable diagnostic;
// the offending line is rescanned as ordinary content.
func (s *scanner) scanTable(lines []line, i int, aligns []Alignment) ([]*Block, int) {
	header := s.splitTableRow(lines[i])
	if len(header) != len(aligns) {
		s.diag(MalformedTable, lines[i], "table header has %d columns but separator has %d", len(header), len(aligns))
		return []*Block{s.paragraph(lines[i : i+1])}, i + 1
	}

	table := &Block{
		kind:  TableKind,
		span:  Span{lines[i].span.Start, lines[i+1].span.End},
		line:  lines[i].num,
		align: aligns,
	}
	table.children = append(table.children, s.tableRow(lines[i], header, true).AsNode())

	j := i + 2
	for ; j < len(lines); j++ {
		text := trimIndent(s.text(lines[j]))
		if isBlankLine(text) || bytes.IndexByte(text, '|') < 0 {
			break
		}
		cells := s.splitTableRow(lines[j])
		if len(cells) != len(aligns) {
			s.diag(MalformedTable, lines[j], "table row has %d columns, expected %d", len(cells), len(aligns))
			break
		}
		table.children = append(table.children, s.tableRow(lines[j], cells, false).AsNode())
		table.span.End = lines[j].span.End
	}
	return []*Block{table}, j
}

func (s *scanner) tableRow(ln line, cells []Span, header bool) *Block {
	row := &Block{
		kind:   TableRowKind,
		span:   ln.span,
		line:   ln.num,
		header: header,
	}
	for _, cell := range cells {
		c := &Block{
			kind: TableCellKind,
			span: cell,
			line: ln.num,
		}
		c.children = append(c.children, (&Inline{
			kind: UnparsedKind,
			span: cell,
		}).AsNode())
		row.children = append(row.children, c.AsNode())
	}
	return row
}

// splitTableRow splits a row into trimmed cell spans on unescaped pipes.
// Leading and trailing pipes are optional.
func (s *scanner) splitTableRow(ln line) []Span {
	text := s.text(ln)
	trimmed := trimIndent(text)
	start := ln.span.Start + (len(text) - len(trimIndent(text)))
	trimmed = bytes.TrimRight(trimmed, " \t")

	pos := 0
	if len(trimmed) > 0 && trimmed[0] == '|' {
		pos = 1
	}
	var cells []Span
	cellStart := pos
	flush := func(end int) {
		cell := trimmed[cellStart:end]
		lead := len(cell) - len(bytes.TrimLeft(cell, " \t"))
		cell = bytes.TrimSpace(cell)
		cells = append(cells, Span{
			Start: start + cellStart + lead,
			End:   start + cellStart + lead + len(cell),
		})
	}
	for ; pos < len(trimmed); pos++ {
		switch trimmed[pos] {
		case '\\':
			if pos+1 < len(trimmed) {
				pos++
			}
		case '|':
			flush(pos)
			cellStart = pos + 1
		}
	}
	if cellStart < len(trimmed) || len(cells) == 0 {
		flush(len(trimmed))
	}
	return cells
}

// parseTableSeparator parses a row like "| :--- | :-: | ---: |"
// into per-column alignments.
// Non-strict spacing and missing edge pipes are tolerated.
func parseTableSeparator(text []byte) ([]Alignment, bool) {
	text = bytes.TrimSpace(text)
	if bytes.IndexByte(text, '-') < 0 {
		return nil, false
	}
	text = bytes.TrimPrefix(text, []byte("|"))
	text = bytes.TrimSuffix(text, []byte("|"))
	var aligns []Alignment
	for _, cell := range bytes.Split(text, []byte("|")) {
		cell = bytes.TrimSpace(cell)
		if len(cell) == 0 {
			return nil, false
		}
		left := cell[0] == ':'
		right := cell[len(cell)-1] == ':'
		dashes := bytes.Trim(cell, ":")
		if len(dashes) == 0 || bytes.Count(dashes, []byte("-")) != len(dashes) {
			return nil, false
		}
		switch {
		case left && right:
			aligns = append(aligns, AlignCenter)
		case left:
			aligns = append(aligns, AlignLeft)
		case right:
			aligns = append(aligns, AlignRight)
		default:
			aligns = append(aligns, AlignDefault)
		}
	}
	return aligns, true
}

type headingInfo struct {
	level        int // 1-6, or 0 when the line is not a heading
	contentStart int
	contentEnd   int
}

// parseHeading attempts to parse the line as an ATX-style heading.
// A run of more than six '#' characters is not a heading:
// the line stays paragraph text.
// parseHeading assumes that the caller has stripped any leading indentation.
func parseHeading(text []byte) headingInfo {
	var h headingInfo
	for h.level < len(text) && text[h.level] == '#' {
		h.level++
	}
	if h.level == 0 || h.level > 6 {
		return headingInfo{}
	}

	i := h.level
	if i >= len(text) {
		h.contentStart, h.contentEnd = i, i
		return h
	}
	if text[i] != ' ' && text[i] != '\t' {
		return headingInfo{}
	}
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	h.contentStart = i

	// Trim trailing whitespace and a closing hash run.
	h.contentEnd = len(text)
	for h.contentEnd > h.contentStart {
		if b := text[h.contentEnd-1]; b != ' ' && b != '\t' {
			break
		}
		h.contentEnd--
	}
	trailing := h.contentEnd
	for trailing > h.contentStart && text[trailing-1] == '#' {
		trailing--
	}
	if trailing < h.contentEnd && (trailing == h.contentStart || text[trailing-1] == ' ' || text[trailing-1] == '\t') {
		h.contentEnd = trailing
		for h.contentEnd > h.contentStart {
			if b := text[h.contentEnd-1]; b != ' ' && b != '\t' {
				break
			}
			h.contentEnd--
		}
	}
	return h
}

// quoteMarkerEnd returns the end of a block quote marker
// at the beginning of the line,
// or -1 if the line does not begin with the marker.
func quoteMarkerEnd(text []byte) int {
	if len(text) == 0 || text[0] != '>' {
		return -1
	}
	if len(text) > 1 && text[1] == ' ' {
		return 2
	}
	return 1
}

// parseFenceOpen parses a directive opener like "```{image} photo.png".
func parseFenceOpen(text []byte) (name, arg string, fenceLen int, ok bool) {
	for fenceLen < len(text) && text[fenceLen] == '`' {
		fenceLen++
	}
	if fenceLen < 3 {
		return "", "", 0, false
	}
	rest := text[fenceLen:]
	if len(rest) == 0 || rest[0] != '{' {
		return "", "", 0, false
	}
	closeBrace := bytes.IndexByte(rest, '}')
	if closeBrace <= 1 {
		return "", "", 0, false
	}
	name = string(rest[1:closeBrace])
	for _, c := range name {
		if !isDirectiveNameChar(byte(c)) {
			return "", "", 0, false
		}
	}
	arg = string(bytes.TrimSpace(rest[closeBrace+1:]))
	return name, arg, fenceLen, true
}

func isDirectiveNameChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_'
}

// isFenceClose reports whether the line closes a fence of the given length.
func isFenceClose(text []byte, fenceLen int) bool {
	n := 0
	for n < len(text) && text[n] == '`' {
		n++
	}
	return n >= fenceLen && isBlankLine(text[n:])
}

// parseAttrLine parses a directive attribute line like ":width: 200px".
func parseAttrLine(text []byte) (key, value string, ok bool) {
	if len(text) < 2 || text[0] != ':' {
		return "", "", false
	}
	end := bytes.IndexByte(text[1:], ':')
	if end <= 0 {
		return "", "", false
	}
	key = string(text[1 : 1+end])
	for _, c := range key {
		if !isDirectiveNameChar(byte(c)) {
			return "", "", false
		}
	}
	value = string(bytes.TrimSpace(text[2+end:]))
	return key, value, true
}

// parseFootnoteDefinition parses a line like "[^id]: definition text".
func parseFootnoteDefinition(text []byte) (id string, contentStart int, ok bool) {
	rest, found := bytes.CutPrefix(text, []byte("[^"))
	if !found {
		return "", 0, false
	}
	end := bytes.Index(rest, []byte("]:"))
	if end <= 0 {
		return "", 0, false
	}
	id = string(rest[:end])
	contentStart = len("[^") + end + len("]:")
	for contentStart < len(text) && text[contentStart] == ' ' {
		contentStart++
	}
	return id, contentStart, true
}

func trimIndent(text []byte) []byte {
	return bytes.TrimLeft(text, " \t")
}

func isBlankLine(text []byte) bool {
	for _, b := range text {
		if b != ' ' && b != '\t' && b != '\r' && b != '\n' {
			return false
		}
	}
	return true
}
