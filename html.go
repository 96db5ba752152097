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
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// RenderHTML writes the rendered HTML of a document to w.
//
// The output is a reference rendering:
// it demonstrates one full consumption of the tree,
// including ordinals, attributions, and directive-derived blocks.
// Math is emitted as LaTeX inside \[...\] and \(...\) delimiters
// for a client-side typesetter,
// and citations are rendered as parenthesized keys.
func RenderHTML(w io.Writer, doc *Document) error {
	_, err := w.Write(AppendHTML(nil, doc))
	return err
}

// AppendHTML appends the rendered HTML of a document to dst.
func AppendHTML(dst []byte, doc *Document) []byte {
	r := &htmlRenderer{doc: doc, buf: dst}
	for _, b := range doc.Blocks() {
		r.block(b)
	}
	return r.buf
}

type htmlRenderer struct {
	doc *Document
	buf []byte
}

func (r *htmlRenderer) raw(s string) {
	r.buf = append(r.buf, s...)
}

func (r *htmlRenderer) text(s string) {
	r.buf = append(r.buf, html.EscapeString(s)...)
}

func (r *htmlRenderer) block(b *Block) {
	switch b.Kind() {
	case ParagraphKind:
		r.raw("<p>")
		r.inlineChildren(b)
		r.raw("</p>\n")
	case HeadingKind:
		tag := fmt.Sprintf("h%d", b.HeadingLevel())
		r.raw("<" + tag + ">")
		r.inlineChildren(b)
		r.raw("</" + tag + ">\n")
	case BlockQuoteKind:
		r.raw("<blockquote>\n")
		r.blockChildren(b)
		r.raw("</blockquote>\n")
	case AttributionKind:
		r.raw("<footer>\u2014 ")
		r.inlineChildren(b)
		r.raw("</footer>\n")
	case TableKind:
		r.table(b)
	case MathBlockKind:
		r.raw(`<div class="math"`)
		if b.Label() != "" {
			r.attr("id", b.Label())
		}
		r.raw(">\\[")
		r.text(b.Literal())
		r.raw("\\]</div>\n")
	case FootnoteDefinitionKind:
		r.raw(`<div class="footnote"`)
		r.attr("id", "fn-"+b.Identifier())
		r.raw(">")
		r.inlineChildren(b)
		r.raw("</div>\n")
	case FigureKind:
		r.figure(b)
	case CsvTableKind:
		r.csvTable(b)
	case AdmonitionKind:
		r.admonition(b)
	case GlossaryKind:
		r.glossary(b)
	case MermaidKind:
		r.raw(`<pre class="mermaid">`)
		r.text(b.Literal())
		r.raw("</pre>\n")
	case PassthroughKind:
		r.raw(`<pre data-directive="`)
		r.text(b.Name())
		r.raw(`">`)
		r.text(b.Literal())
		r.raw("</pre>\n")
	default:
		r.blockChildren(b)
	}
}

func (r *htmlRenderer) table(b *Block) {
	aligns := b.ColumnAlignments()
	r.raw("<table>\n")
	for _, child := range b.Children() {
		row := child.Block()
		if row.Kind() != TableRowKind {
			continue
		}
		tag := "td"
		if row.IsHeaderRow() {
			tag = "th"
		}
		r.raw("<tr>")
		for i, cellNode := range row.Children() {
			cell := cellNode.Block()
			r.raw("<" + tag)
			if i < len(aligns) && aligns[i] != AlignDefault {
				r.attr("style", "text-align: "+aligns[i].String()+";")
			}
			r.raw(">")
			r.inlineChildren(cell)
			r.raw("</" + tag + ">")
		}
		r.raw("</tr>\n")
	}
	r.raw("</table>\n")
}

func (r *htmlRenderer) figure(b *Block) {
	r.raw("<figure")
	if b.Label() != "" {
		r.attr("id", b.Label())
	}
	r.raw(">\n")
	var caption []*Block
	for _, child := range b.Children() {
		if img := child.Inline(); img.Kind() == ImageKind {
			r.image(img)
			r.raw("\n")
			continue
		}
		if cb := child.Block(); cb != nil {
			caption = append(caption, cb)
		}
	}
	if len(caption) > 0 || b.Label() != "" {
		r.raw("<figcaption>")
		if entry, ok := r.doc.Labels().Lookup(b.Label()); ok {
			r.raw(fmt.Sprintf("Figure %d: ", entry.Ordinal))
		}
		for i, cb := range caption {
			if i > 0 {
				r.raw(" ")
			}
			r.inlineChildren(cb)
		}
		r.raw("</figcaption>\n")
	}
	r.raw("</figure>\n")
}

func (r *htmlRenderer) csvTable(b *Block) {
	records := b.Records()
	if records == nil {
		// External data file; the rows are not available at this layer.
		file, _ := b.Attr("file")
		r.raw(`<table data-src="`)
		r.text(file)
		r.raw("\"></table>\n")
		return
	}
	headerRows := 0
	if v, ok := b.Attr("header-rows"); ok && v == "1" {
		headerRows = 1
	}
	r.raw("<table>\n")
	for i, record := range records {
		tag := "td"
		if i < headerRows {
			tag = "th"
		}
		r.raw("<tr>")
		for _, field := range record {
			r.raw("<" + tag + ">")
			r.text(field)
			r.raw("</" + tag + ">")
		}
		r.raw("</tr>\n")
	}
	r.raw("</table>\n")
}

func (r *htmlRenderer) admonition(b *Block) {
	r.raw(`<div class="admonition `)
	r.text(b.Name())
	r.raw("\">\n")
	title := b.Argument()
	if title == "" {
		title = strings.ToUpper(b.Name()[:1]) + b.Name()[1:]
	}
	r.raw(`<p class="admonition-title">`)
	r.text(title)
	r.raw("</p>\n")
	r.blockChildren(b)
	r.raw("</div>\n")
}

func (r *htmlRenderer) glossary(b *Block) {
	r.raw("<dl>\n")
	for _, child := range b.Children() {
		entry := child.Block()
		if entry.Kind() != GlossaryEntryKind {
			continue
		}
		r.raw("<dt")
		r.attr("id", "term-"+foldKey(entry.Term()))
		r.raw(">")
		r.text(entry.Term())
		r.raw("</dt>\n<dd>")
		r.inlineChildren(entry)
		r.raw("</dd>\n")
	}
	r.raw("</dl>\n")
}

func (r *htmlRenderer) blockChildren(b *Block) {
	for _, child := range b.Children() {
		if cb := child.Block(); cb != nil {
			r.block(cb)
		}
	}
}

func (r *htmlRenderer) inlineChildren(b *Block) {
	for _, child := range b.Children() {
		if inline := child.Inline(); inline != nil {
			r.inline(inline)
		}
	}
}

func (r *htmlRenderer) inline(inline *Inline) {
	switch inline.Kind() {
	case TextKind, EscapedKind:
		r.text(inline.Text(r.doc.Source))
	case EmphasisKind:
		r.wrapInline("em", inline)
	case StrongKind:
		r.wrapInline("strong", inline)
	case StrikethroughKind:
		r.wrapInline("del", inline)
	case SubscriptKind:
		r.wrapInline("sub", inline)
	case SuperscriptKind:
		r.wrapInline("sup", inline)
	case CodeSpanKind:
		r.raw("<code>")
		r.text(inline.Text(r.doc.Source))
		r.raw("</code>")
	case InlineMathKind:
		r.raw(`<span class="math">\(`)
		r.text(inline.Text(r.doc.Source))
		r.raw(`\)</span>`)
	case LinkKind:
		r.raw("<a")
		r.attr("href", inline.Destination())
		r.raw(">")
		for _, c := range inline.Children() {
			r.inline(c)
		}
		r.raw("</a>")
	case ImageKind:
		r.image(inline)
	case FootnoteRefKind:
		r.raw(`<sup class="footnote-ref"><a`)
		r.attr("href", "#fn-"+inline.Identifier())
		r.raw(">")
		if inline.Ordinal() > 0 {
			r.text(fmt.Sprintf("%d", inline.Ordinal()))
		} else {
			r.text(inline.Identifier())
		}
		r.raw("</a></sup>")
	case CitationKind:
		r.citation(inline)
	case TermRefKind:
		r.raw(`<a class="term"`)
		r.attr("href", "#term-"+foldKey(inline.Identifier()))
		r.raw(">")
		for _, c := range inline.Children() {
			r.inline(c)
		}
		r.raw("</a>")
	case CrossRefKind:
		r.crossRef(inline)
	default:
		for _, c := range inline.Children() {
			r.inline(c)
		}
	}
}

func (r *htmlRenderer) wrapInline(tag string, inline *Inline) {
	r.raw("<" + tag + ">")
	for _, c := range inline.Children() {
		r.inline(c)
	}
	r.raw("</" + tag + ">")
}

func (r *htmlRenderer) image(inline *Inline) {
	r.raw("<img")
	r.attr("src", inline.Destination())
	r.attr("alt", inline.Text(r.doc.Source))
	r.raw(">")
}

// citation renders a parenthesized citation stub like "(doe99; smith04, p. 7)".
// Resolving keys against a bibliography happens outside the parser.
func (r *htmlRenderer) citation(inline *Inline) {
	r.raw(`<span class="citation">(`)
	if p := inline.Prefix(); p != "" {
		r.text(p + " ")
	}
	for i, key := range inline.Keys() {
		if i > 0 {
			r.text("; ")
		}
		r.text(key)
	}
	if s := inline.Suffix(); s != "" {
		r.text(", " + s)
	}
	r.raw(")</span>")
}

// crossRef renders a numbered reference like "Figure 3".
// Unresolved references keep their label text
// so the break is visible in the output.
func (r *htmlRenderer) crossRef(inline *Inline) {
	r.raw("<a")
	r.attr("href", "#"+inline.Label())
	r.raw(">")
	entry, ok := r.doc.Labels().Lookup(inline.Label())
	switch {
	case !ok:
		r.text(inline.Label())
	case entry.Kind == FigureLabel:
		r.text(fmt.Sprintf("Figure %d", entry.Ordinal))
	case entry.Kind == EquationLabel:
		r.text(fmt.Sprintf("Equation %d", entry.Ordinal))
	default:
		r.text(inline.Label())
	}
	r.raw("</a>")
}

func (r *htmlRenderer) attr(key, value string) {
	r.raw(" " + key + `="`)
	r.text(value)
	r.raw(`"`)
}
