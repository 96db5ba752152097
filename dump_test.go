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
	"strings"
)

// dumpDoc renders a document tree as an indented text outline
// so tests can compare whole trees with a string diff.
func dumpDoc(doc *Document) string {
	sb := new(strings.Builder)
	for _, b := range doc.Blocks() {
		dumpBlock(sb, doc, b, 0)
	}
	return sb.String()
}

func dumpBlock(sb *strings.Builder, doc *Document, b *Block, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(b.Kind().String())
	if lvl := b.HeadingLevel(); lvl > 0 {
		fmt.Fprintf(sb, " level=%d", lvl)
	}
	if b.Name() != "" {
		fmt.Fprintf(sb, " name=%q", b.Name())
	}
	if b.Argument() != "" {
		fmt.Fprintf(sb, " arg=%q", b.Argument())
	}
	if b.Label() != "" {
		fmt.Fprintf(sb, " label=%q", b.Label())
	}
	if b.Identifier() != "" {
		fmt.Fprintf(sb, " id=%q", b.Identifier())
	}
	if b.Term() != "" {
		fmt.Fprintf(sb, " term=%q", b.Term())
	}
	if b.Literal() != "" {
		fmt.Fprintf(sb, " literal=%q", b.Literal())
	}
	if aligns := b.ColumnAlignments(); len(aligns) > 0 {
		words := make([]string, len(aligns))
		for i, a := range aligns {
			words[i] = a.String()
		}
		fmt.Fprintf(sb, " align=[%s]", strings.Join(words, " "))
	}
	if b.IsHeaderRow() {
		sb.WriteString(" header")
	}
	if records := b.Records(); records != nil {
		fmt.Fprintf(sb, " records=%d", len(records))
	}
	sb.WriteString("\n")
	for _, child := range b.Children() {
		if cb := child.Block(); cb != nil {
			dumpBlock(sb, doc, cb, depth+1)
		} else if inline := child.Inline(); inline != nil {
			dumpInline(sb, doc, inline, depth+1)
		}
	}
}

func dumpInline(sb *strings.Builder, doc *Document, inline *Inline, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(inline.Kind().String())
	if text := inline.Text(doc.Source); text != "" {
		fmt.Fprintf(sb, " %q", text)
	}
	if inline.Destination() != "" {
		fmt.Fprintf(sb, " dest=%q", inline.Destination())
	}
	if inline.Label() != "" {
		fmt.Fprintf(sb, " label=%q", inline.Label())
	}
	if inline.Identifier() != "" {
		fmt.Fprintf(sb, " id=%q", inline.Identifier())
	}
	if keys := inline.Keys(); len(keys) > 0 {
		fmt.Fprintf(sb, " keys=[%s]", strings.Join(keys, " "))
	}
	if inline.Prefix() != "" {
		fmt.Fprintf(sb, " prefix=%q", inline.Prefix())
	}
	if inline.Suffix() != "" {
		fmt.Fprintf(sb, " suffix=%q", inline.Suffix())
	}
	if inline.Ordinal() > 0 {
		fmt.Fprintf(sb, " ordinal=%d", inline.Ordinal())
	}
	sb.WriteString("\n")
	for _, c := range inline.Children() {
		dumpInline(sb, doc, c, depth+1)
	}
}
