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

// Package normhtml normalizes HTML for test comparison.
// Normalized forms differ only where the markup differs:
// whitespace between block elements, attribute order,
// and entity spellings are canonicalized away.
package normhtml

import (
	"bytes"
	"regexp"
	"sort"
	"unicode"

	"go4.org/bytereplacer"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

var textEscaper = bytereplacer.New(
	"&", "&amp;",
	`'`, "&apos;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

// NormalizeHTML strips insignificant differences from rendered HTML.
func NormalizeHTML(b []byte) []byte {
	n := &normalizer{
		tok:  html.NewTokenizerFragment(bytes.NewReader(b), "div"),
		last: html.StartTagToken,
	}
	for n.next() {
	}
	return n.out
}

type normalizer struct {
	tok     *html.Tokenizer
	out     []byte
	last    html.TokenType
	lastTag string
	inPre   bool
}

func (n *normalizer) next() bool {
	tt := n.tok.Next()
	switch tt {
	case html.ErrorToken:
		return false
	case html.TextToken:
		n.text(n.tok.Text())
	case html.EndTagToken:
		tagBytes, _ := n.tok.TagName()
		n.endTag(string(tagBytes))
	case html.StartTagToken, html.SelfClosingTagToken:
		tagBytes, hasAttr := n.tok.TagName()
		n.startTag(string(tagBytes), hasAttr)
	case html.CommentToken:
		n.out = append(n.out, n.tok.Raw()...)
	}
	n.last = tt
	if tt == html.SelfClosingTagToken {
		n.last = html.EndTagToken
	}
	return true
}

func (n *normalizer) text(data []byte) {
	afterTag := n.last == html.EndTagToken || n.last == html.StartTagToken
	if afterTag && n.lastTag == "br" {
		data = bytes.TrimLeft(data, "\n")
	}
	if !n.inPre {
		data = whitespaceRE.ReplaceAll(data, []byte(" "))
		if afterTag && isBlockTag(n.lastTag) {
			if n.last == html.StartTagToken {
				data = bytes.TrimLeftFunc(data, unicode.IsSpace)
			} else {
				data = bytes.TrimSpace(data)
			}
		}
	}
	n.out = append(n.out, textEscaper.Replace(bytes.Clone(data))...)
}

func (n *normalizer) startTag(tag string, hasAttr bool) {
	if tag == "pre" {
		n.inPre = true
	}
	if isBlockTag(tag) {
		n.out = bytes.TrimRightFunc(n.out, unicode.IsSpace)
	}
	n.out = append(n.out, '<')
	n.out = append(n.out, tag...)
	if hasAttr {
		type htmlAttribute struct {
			key   string
			value string
		}
		var attrs []htmlAttribute
		for {
			k, v, more := n.tok.TagAttr()
			attrs = append(attrs, htmlAttribute{string(k), string(v)})
			if !more {
				break
			}
		}
		sort.Slice(attrs, func(i, j int) bool {
			return attrs[i].key < attrs[j].key
		})
		for _, attr := range attrs {
			n.out = append(n.out, ' ')
			n.out = append(n.out, attr.key...)
			if attr.value != "" {
				n.out = append(n.out, `="`...)
				n.out = append(n.out, html.EscapeString(attr.value)...)
				n.out = append(n.out, '"')
			}
		}
	}
	n.out = append(n.out, '>')
	n.lastTag = tag
}

func (n *normalizer) endTag(tag string) {
	if tag == "pre" {
		n.inPre = false
	} else if isBlockTag(tag) {
		n.out = bytes.TrimRightFunc(n.out, unicode.IsSpace)
	}
	n.out = append(n.out, "</"...)
	n.out = append(n.out, tag...)
	n.out = append(n.out, '>')
	n.lastTag = tag
}

var blockTags = map[string]struct{}{
	atom.Blockquote.String(): {},
	atom.Caption.String():    {},
	atom.Dd.String():         {},
	atom.Div.String():        {},
	atom.Dl.String():         {},
	atom.Dt.String():         {},
	atom.Figcaption.String(): {},
	atom.Figure.String():     {},
	atom.Footer.String():     {},
	atom.H1.String():         {},
	atom.H2.String():         {},
	atom.H3.String():         {},
	atom.H4.String():         {},
	atom.H5.String():         {},
	atom.H6.String():         {},
	atom.P.String():          {},
	atom.Pre.String():        {},
	atom.Table.String():      {},
	atom.Tbody.String():      {},
	atom.Td.String():         {},
	atom.Tfoot.String():      {},
	atom.Th.String():         {},
	atom.Thead.String():      {},
	atom.Tr.String():         {},
}

func isBlockTag(tag string) bool {
	_, ok := blockTags[tag]
	return ok
}
