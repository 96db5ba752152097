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
	"strings"
	"unicode"
	"unicode/utf8"
)

// An inlineParser converts [UnparsedKind] [Inline] nodes into inline trees.
type inlineParser struct {
	source []byte
}

// rewrite replaces any [UnparsedKind] nodes under the given block
// with parsed versions of the node.
func (p *inlineParser) rewrite(root *Block) {
	stack := []*Block{root}
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if hasUnparsed(curr) {
			curr.children = p.parseBlock(curr)
		}
		for i := curr.ChildCount() - 1; i >= 0; i-- {
			if b := curr.Child(i).Block(); b != nil {
				stack = append(stack, b)
			}
		}
	}
}

func hasUnparsed(b *Block) bool {
	for _, c := range b.Children() {
		if c.Inline().Kind() == UnparsedKind {
			return true
		}
	}
	return false
}

// parseBlock tokenizes a block's unparsed lines.
// Line boundaries become zero-width text nodes carrying "\n",
// so consumers see a single soft-joined content sequence.
func (p *inlineParser) parseBlock(b *Block) []Node {
	var out []Node
	lineCount := 0
	for _, child := range b.children {
		u := child.Inline()
		if u.Kind() != UnparsedKind {
			out = append(out, child)
			continue
		}
		if lineCount > 0 {
			out = append(out, (&Inline{
				kind:    TextKind,
				span:    Span{u.span.Start, u.span.Start},
				literal: "\n",
			}).AsNode())
		}
		lineCount++
		for _, inline := range p.parseSpan(u.span) {
			out = append(out, inline.AsNode())
		}
	}
	return out
}

type inlineState struct {
	source    []byte
	spanEnd   int
	container *Inline
	stack     []delimiterStackElement
	parentMap map[*Inline]*Inline
}

func (state *inlineState) add(newNode *Inline) {
	state.parentMap[newNode] = state.container
	state.container.children = append(state.container.children, newNode)
}

// addText adds a plain text node, dropping empty spans.
func (state *inlineState) addText(span Span) {
	if span.Len() == 0 {
		return
	}
	state.add(&Inline{kind: TextKind, span: span})
}

// parseSpan tokenizes one line's span
// with a single left-to-right scan.
// Backslash escapes are resolved as they are encountered,
// before any delimiter-run matching,
// so an escaped delimiter can never open or close emphasis.
func (p *inlineParser) parseSpan(span Span) []*Inline {
	dummy := &Inline{span: span}
	state := &inlineState{
		source:    p.source,
		spanEnd:   span.End,
		container: dummy,
		parentMap: make(map[*Inline]*Inline),
	}
	pos := span.Start
	plainStart := pos
	flush := func(end int) {
		state.addText(Span{plainStart, end})
	}
	for pos < span.End {
		switch c := p.source[pos]; c {
		case '\\':
			if pos+1 < span.End && isASCIIPunctuation(p.source[pos+1]) {
				flush(pos)
				state.add(&Inline{
					kind:    EscapedKind,
					span:    Span{pos, pos + 2},
					literal: string(p.source[pos+1]),
				})
				pos += 2
				plainStart = pos
			} else {
				pos++
			}
		case '*', '_':
			flush(pos)
			pos = p.parseDelimiterRun(state, pos)
			plainStart = pos
		case '~':
			run := pos
			for run < span.End && p.source[run] == '~' {
				run++
			}
			if run-pos == 2 {
				flush(pos)
				pos = p.parseDelimiterRun(state, pos)
				plainStart = pos
			} else {
				pos = run
			}
		case '`':
			if node, end := p.parseCodeSpan(span, pos); node != nil {
				flush(pos)
				state.add(node)
				pos = end
				plainStart = pos
			} else {
				for pos < span.End && p.source[pos] == '`' {
					pos++
				}
			}
		case '{':
			if node, end := p.parseRole(span, pos); node != nil {
				flush(pos)
				state.add(node)
				pos = end
				plainStart = pos
			} else {
				pos++
			}
		case '[':
			if node, end := p.parseBracket(span, pos); node != nil {
				flush(pos)
				state.add(node)
				pos = end
				plainStart = pos
			} else {
				pos++
			}
		case '!':
			if node, end := p.parseImage(span, pos); node != nil {
				flush(pos)
				state.add(node)
				pos = end
				plainStart = pos
			} else {
				pos++
			}
		case '@':
			if node, end := p.parseBareCitation(span, pos); node != nil {
				flush(pos)
				state.add(node)
				pos = end
				plainStart = pos
			} else {
				pos++
			}
		default:
			if isASCIILetter(c) && (pos == span.Start || !isWordChar(p.source[pos-1])) {
				if node, end := p.parseAutolink(span, pos); node != nil {
					flush(pos)
					state.add(node)
					pos = end
					plainStart = pos
					continue
				}
			}
			pos++
		}
	}
	flush(span.End)
	p.processEmphasis(state, 0)
	return dummy.children
}

// parseDelimiterRun collects a run of identical delimiter characters
// and pushes it on the delimiter stack as a candidate text node.
func (p *inlineParser) parseDelimiterRun(state *inlineState, start int) (end int) {
	node := &Inline{
		kind: TextKind,
		span: Span{start, start + 1},
	}
	for node.span.End < state.spanEnd && state.source[node.span.End] == state.source[node.span.Start] {
		node.span.End++
	}

	elem := delimiterStackElement{
		flags: activeFlag | emphasisFlags(state.source, node.span),
		n:     node.span.Len(),
		node:  node,
	}
	switch state.source[node.span.Start] {
	case '*':
		elem.typ = inlineDelimiterStar
	case '_':
		elem.typ = inlineDelimiterUnderscore
	case '~':
		elem.typ = inlineDelimiterTilde
	}

	state.add(node)
	state.stack = append(state.stack, elem)
	return node.span.End
}

// emphasisFlags determines whether the given delimiter run
// can open and/or close emphasis,
// following the CommonMark left-flanking and right-flanking rules.
func emphasisFlags(source []byte, span Span) uint8 {
	var flags uint8
	prevChar := ' '
	if span.Start > 0 {
		prevChar, _ = utf8.DecodeLastRune(source[:span.Start])
	}
	nextChar := ' '
	if span.End < len(source) {
		nextChar, _ = utf8.DecodeRune(source[span.End:])
	}
	leftFlanking := !isUnicodeWhitespace(nextChar) &&
		(!isUnicodePunctuation(nextChar) || isUnicodeWhitespace(prevChar) || isUnicodePunctuation(prevChar))
	rightFlanking := !isUnicodeWhitespace(prevChar) &&
		(!isUnicodePunctuation(prevChar) || isUnicodeWhitespace(nextChar) || isUnicodePunctuation(nextChar))
	if leftFlanking && (source[span.Start] != '_' || !rightFlanking || isUnicodePunctuation(prevChar)) {
		flags |= openerFlag
	}
	if rightFlanking && (source[span.Start] != '_' || !leftFlanking || isUnicodePunctuation(nextChar)) {
		flags |= closerFlag
	}
	return flags
}

// processEmphasis implements the CommonMark process-emphasis procedure
// to convert delimiter runs to emphasis, strong, and strikethrough spans.
func (p *inlineParser) processEmphasis(state *inlineState, stackBottom int) {
	currentPosition := stackBottom
	var openersBottom [openersBottomCount]int
	for i := range openersBottom {
		openersBottom[i] = stackBottom
	}
closerLoop:
	for {
		// Advance to the first potential closer.
		for {
			if currentPosition >= len(state.stack) {
				break closerLoop
			}
			if state.stack[currentPosition].flags&closerFlag != 0 {
				break
			}
			currentPosition++
		}

		// Look back in the stack for the first matching opener,
		// staying above stack_bottom and this delimiter's openers_bottom.
		openerIndex := currentPosition - 1
		openersBottomIndex := state.stack[currentPosition].openersBottomIndex()
		for openerIndex >= openersBottom[openersBottomIndex] &&
			!isDelimiterMatch(state.stack[openerIndex], state.stack[currentPosition]) {
			openerIndex--
		}
		if openerIndex >= openersBottom[openersBottomIndex] {
			opener := state.stack[openerIndex].node
			closer := state.stack[currentPosition].node
			switch {
			case state.stack[currentPosition].typ == inlineDelimiterTilde:
				opener.span.End -= 2
				closer.span.Start += 2
				state.wrap(StrikethroughKind, opener, closer)
			case opener.span.Len() >= 2 && closer.span.Len() >= 2:
				opener.span.End -= 2
				closer.span.Start += 2
				state.wrap(StrongKind, opener, closer)
			default:
				opener.span.End--
				closer.span.Start++
				state.wrap(EmphasisKind, opener, closer)
			}

			// Remove any delimiters between the opener and closer from the stack.
			state.stack = deleteDelimiterStack(state.stack, openerIndex+1, currentPosition)
			currentPosition = openerIndex + 1

			// If either delimiter text node became empty, remove it from the tree.
			if opener.span.Len() == 0 {
				state.remove(opener)
				state.stack = deleteDelimiterStack(state.stack, openerIndex, openerIndex+1)
				currentPosition--
			}
			if closer.span.Len() == 0 {
				state.remove(closer)
				state.stack = deleteDelimiterStack(state.stack, currentPosition, currentPosition+1)
			}
		} else {
			// No opener for this closer up to this point;
			// put a lower bound on future searches.
			openersBottom[openersBottomIndex] = currentPosition

			if state.stack[currentPosition].flags&openerFlag == 0 {
				copy(state.stack[currentPosition:], state.stack[currentPosition+1:])
				state.stack[len(state.stack)-1] = delimiterStackElement{}
				state.stack = state.stack[:len(state.stack)-1]
			} else {
				currentPosition++
			}
		}
	}

	state.stack = deleteDelimiterStack(state.stack, stackBottom, len(state.stack))
}

// parseCodeSpan parses a backtick code span within a single line.
// The returned node is nil if the opening run has no matching closer.
func (p *inlineParser) parseCodeSpan(span Span, start int) (*Inline, int) {
	backtickLength := 0
	contentStart := start
	for contentStart < span.End && p.source[contentStart] == '`' {
		backtickLength++
		contentStart++
	}

	for pos := contentStart; pos < span.End; {
		if p.source[pos] != '`' {
			pos++
			continue
		}
		runLength := 1
		peek := pos + 1
		for peek < span.End && p.source[peek] == '`' {
			runLength++
			peek++
		}
		if runLength != backtickLength {
			pos = peek
			continue
		}
		content := p.source[contentStart:pos]
		// A single leading and trailing space is stripped
		// when the content is not entirely spaces.
		if len(content) >= 2 && content[0] == ' ' && content[len(content)-1] == ' ' && len(bytes.Trim(content, " ")) > 0 {
			content = content[1 : len(content)-1]
		}
		return &Inline{
			kind:    CodeSpanKind,
			span:    Span{start, peek},
			literal: string(content),
		}, peek
	}
	return nil, 0
}

// parseRole parses an inline role like {sub}`x`.
// Only the roles this dialect enumerates are recognized;
// anything else stays literal text.
func (p *inlineParser) parseRole(span Span, start int) (*Inline, int) {
	closeBrace := bytes.IndexByte(p.source[start:span.End], '}')
	if closeBrace < 2 {
		return nil, 0
	}
	closeBrace += start
	name := string(p.source[start+1 : closeBrace])
	if closeBrace+1 >= span.End || p.source[closeBrace+1] != '`' {
		return nil, 0
	}
	contentStart := closeBrace + 2
	contentEnd := bytes.IndexByte(p.source[contentStart:span.End], '`')
	if contentEnd < 0 {
		return nil, 0
	}
	contentEnd += contentStart
	content := Span{contentStart, contentEnd}
	node := &Inline{span: Span{start, contentEnd + 1}}
	switch name {
	case "sub":
		node.kind = SubscriptKind
		node.children = []*Inline{{kind: TextKind, span: content}}
	case "sup":
		node.kind = SuperscriptKind
		node.children = []*Inline{{kind: TextKind, span: content}}
	case "math":
		node.kind = InlineMathKind
		node.literal = string(p.source[content.Start:content.End])
	case "term":
		node.kind = TermRefKind
		node.identifier = string(p.source[content.Start:content.End])
		node.children = []*Inline{{kind: TextKind, span: content}}
	default:
		return nil, 0
	}
	return node, contentEnd + 1
}

// parseBracket parses the constructs that start with '[':
// footnote references, cross-references, citations, and links.
func (p *inlineParser) parseBracket(span Span, start int) (*Inline, int) {
	rb := findBracketEnd(p.source, start, span.End)
	if rb < 0 {
		return nil, 0
	}
	inner := Span{start + 1, rb}
	innerText := string(p.source[inner.Start:inner.End])

	if rest, ok := strings.CutPrefix(innerText, "^"); ok && rest != "" {
		return &Inline{
			kind:       FootnoteRefKind,
			span:       Span{start, rb + 1},
			identifier: rest,
		}, rb + 1
	}

	if rb+1 < span.End && p.source[rb+1] == '(' {
		cp := findParenEnd(p.source, rb+1, span.End)
		if cp < 0 {
			return nil, 0
		}
		dest := strings.TrimSpace(string(p.source[rb+2 : cp]))
		// An empty-text link to a "#label" destination is the
		// one and only cross-reference syntax.
		if inner.Len() == 0 {
			if label, ok := strings.CutPrefix(dest, "#"); ok && label != "" {
				return &Inline{
					kind:  CrossRefKind,
					span:  Span{start, cp + 1},
					label: label,
				}, cp + 1
			}
			return nil, 0
		}
		return &Inline{
			kind:        LinkKind,
			span:        Span{start, cp + 1},
			destination: dest,
			children:    p.parseSpan(inner),
		}, cp + 1
	}

	if keys, prefix, suffix, ok := parseCitationText(innerText); ok {
		return &Inline{
			kind:   CitationKind,
			span:   Span{start, rb + 1},
			keys:   keys,
			prefix: prefix,
			suffix: suffix,
		}, rb + 1
	}
	return nil, 0
}

// parseImage parses ![alt](src).
// Caption text following the image on the same line
// is deliberately left to ordinary inline parsing:
// an image with a caption is an Image node followed by sibling spans.
func (p *inlineParser) parseImage(span Span, start int) (*Inline, int) {
	if start+1 >= span.End || p.source[start+1] != '[' {
		return nil, 0
	}
	rb := findBracketEnd(p.source, start+1, span.End)
	if rb < 0 || rb+1 >= span.End || p.source[rb+1] != '(' {
		return nil, 0
	}
	cp := findParenEnd(p.source, rb+1, span.End)
	if cp < 0 {
		return nil, 0
	}
	return &Inline{
		kind:        ImageKind,
		span:        Span{start, cp + 1},
		literal:     string(p.source[start+2 : rb]),
		destination: strings.TrimSpace(string(p.source[rb+2 : cp])),
	}, cp + 1
}

// parseBareCitation parses @key outside brackets.
func (p *inlineParser) parseBareCitation(span Span, start int) (*Inline, int) {
	if start > span.Start && isWordChar(p.source[start-1]) {
		return nil, 0
	}
	key := scanCitationKey(p.source[start+1 : span.End])
	if key == "" {
		return nil, 0
	}
	return &Inline{
		kind: CitationKind,
		span: Span{start, start + 1 + len(key)},
		keys: []string{key},
	}, start + 1 + len(key)
}

// parseAutolink recognizes a bare URL like https://example.com/doc
// and turns it into a link whose text is its destination.
func (p *inlineParser) parseAutolink(span Span, start int) (*Inline, int) {
	pos := start
	for pos < span.End && (isASCIILetter(p.source[pos]) || isASCIIDigit(p.source[pos]) || p.source[pos] == '+' || p.source[pos] == '.' || p.source[pos] == '-') {
		pos++
	}
	if pos == start || pos+3 > span.End || string(p.source[pos:pos+3]) != "://" {
		return nil, 0
	}
	end := pos + 3
	for end < span.End {
		switch c := p.source[end]; {
		case c == ' ' || c == '\t' || c == '<' || c == '>' || c == '"':
			goto scanned
		default:
			end++
		}
	}
scanned:
	// Trailing punctuation belongs to the sentence, not the URL.
	for end > pos+3 && strings.IndexByte(".,;:!?)", p.source[end-1]) >= 0 {
		end--
	}
	if end == pos+3 {
		return nil, 0
	}
	return &Inline{
		kind:        LinkKind,
		span:        Span{start, end},
		destination: string(p.source[start:end]),
		children:    []*Inline{{kind: TextKind, span: Span{start, end}}},
	}, end
}

// parseCitationText parses bracketed citation content like
// "see @doe99; @smith04, chapter 2".
// Every semicolon-separated segment must contain a key;
// text before the first key is the prefix
// and text after the last key is the suffix.
func parseCitationText(text string) (keys []string, prefix, suffix string, ok bool) {
	segments := strings.Split(text, ";")
	for i, segment := range segments {
		at := strings.IndexByte(segment, '@')
		if at < 0 {
			return nil, "", "", false
		}
		key := scanCitationKey([]byte(segment[at+1:]))
		if key == "" {
			return nil, "", "", false
		}
		if i == 0 {
			prefix = strings.TrimSpace(segment[:at])
		}
		keys = append(keys, key)
		if i == len(segments)-1 {
			tail := strings.TrimSpace(segment[at+1+len(key):])
			tail = strings.TrimPrefix(tail, ",")
			suffix = strings.TrimSpace(tail)
		}
	}
	return keys, prefix, suffix, true
}

// scanCitationKey returns the citation key at the beginning of text.
// Interior periods and colons are allowed but cannot end a key.
func scanCitationKey(text []byte) string {
	end := 0
	for end < len(text) {
		c := text[end]
		if isWordChar(c) || c == '-' {
			end++
			continue
		}
		if (c == '.' || c == ':') && end+1 < len(text) && isWordChar(text[end+1]) {
			end += 2
			continue
		}
		break
	}
	if end == 0 || !isWordChar(text[0]) {
		return ""
	}
	return string(text[:end])
}

// findBracketEnd finds the ']' matching the '[' at start,
// honoring backslash escapes and nested brackets.
func findBracketEnd(source []byte, start, end int) int {
	depth := 0
	for pos := start; pos < end; pos++ {
		switch source[pos] {
		case '\\':
			pos++
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return pos
			}
		}
	}
	return -1
}

// findParenEnd finds the ')' closing the '(' at start,
// honoring backslash escapes.
func findParenEnd(source []byte, start, end int) int {
	for pos := start + 1; pos < end; pos++ {
		switch source[pos] {
		case '\\':
			pos++
		case ')':
			return pos
		}
	}
	return -1
}

// wrap inserts a new inline that wraps the nodes between two nodes, exclusive.
func (state *inlineState) wrap(kind InlineKind, startNode, endNode *Inline) {
	parent := state.parentMap[startNode]
	newNode := &Inline{
		kind: kind,
		span: Span{startNode.span.End, endNode.span.Start},
	}
	state.parentMap[newNode] = parent
	startIndex := 1
	for ; startIndex < len(parent.children); startIndex++ {
		if parent.children[startIndex-1] == startNode {
			break
		}
	}
	if len(parent.children) == 0 || parent.children[startIndex-1] != startNode {
		panic("could not find startNode")
	}

	endIndex := startIndex
	for ; endIndex < len(parent.children); endIndex++ {
		if parent.children[endIndex] == endNode {
			break
		}
	}

	newNode.children = append(newNode.children, parent.children[startIndex:endIndex]...)

	if startIndex == endIndex {
		parent.children = append(parent.children, nil)
		copy(parent.children[endIndex+1:], parent.children[endIndex:])
	} else {
		parent.children = deleteInlineNodes(parent.children, startIndex+1, endIndex)
	}
	parent.children[startIndex] = newNode

	for _, c := range newNode.children {
		state.parentMap[c] = newNode
	}
}

func (state *inlineState) remove(node *Inline) {
	parent := state.parentMap[node]
	n := 0
	for _, c := range parent.children {
		if c != node {
			parent.children[n] = c
			n++
		}
	}
	parent.children = deleteInlineNodes(parent.children, n, len(parent.children))
	delete(state.parentMap, node)
}

func deleteInlineNodes(slice []*Inline, i, j int) []*Inline {
	copy(slice[i:], slice[j:])
	newEnd := len(slice) - (j - i)
	tail := slice[newEnd:]
	for ti := range tail {
		tail[ti] = nil
	}
	return slice[:newEnd]
}

type delimiterStackElement struct {
	typ   inlineDelimiter
	flags uint8
	// n is the delimiter run's original length.
	// Rules 9 & 10 compare run lengths
	// even after a match consumes delimiters from the run.
	n    int
	node *Inline
}

const openersBottomCount = 8

func (elem delimiterStackElement) openersBottomIndex() int {
	switch elem.typ {
	case inlineDelimiterStar:
		if elem.flags&openerFlag == 0 {
			return elem.n % 3
		}
		return 3 + elem.n%3
	case inlineDelimiterUnderscore:
		return 6
	case inlineDelimiterTilde:
		return 7
	default:
		panic("unreachable")
	}
}

func isDelimiterMatch(open, close delimiterStackElement) bool {
	if open.typ != close.typ || open.flags&openerFlag == 0 || close.flags&closerFlag == 0 {
		return false
	}
	if open.typ == inlineDelimiterTilde {
		// Strikethrough requires exactly double tildes on both sides.
		return open.n == 2 && close.n == 2
	}
	// Rules 9 & 10 of the CommonMark emphasis procedure.
	return open.flags&closerFlag == 0 && close.flags&openerFlag == 0 ||
		(open.n+close.n)%3 != 0 ||
		open.n%3 == 0 && close.n%3 == 0
}

func deleteDelimiterStack(stack []delimiterStackElement, i, j int) []delimiterStackElement {
	copy(stack[i:], stack[j:])
	newEnd := len(stack) - (j - i)
	tail := stack[newEnd:]
	for ti := range tail {
		tail[ti] = delimiterStackElement{}
	}
	return stack[:newEnd]
}

const (
	activeFlag = 1 << iota
	openerFlag
	closerFlag
)

type inlineDelimiter int8

const (
	inlineDelimiterStar inlineDelimiter = 1 + iota
	inlineDelimiterUnderscore
	inlineDelimiterTilde
)

func isASCIIPunctuation(c byte) bool {
	return c >= '!' && c <= '/' || c >= ':' && c <= '@' || c >= '[' && c <= '`' || c >= '{' && c <= '~'
}

func isASCIILetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isASCIIDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordChar(c byte) bool {
	return isASCIILetter(c) || isASCIIDigit(c) || c == '_'
}

func isUnicodeWhitespace(r rune) bool {
	return unicode.IsSpace(r)
}

func isUnicodePunctuation(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
