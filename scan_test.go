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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScanBlocks(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		opts      *Options
		want      string
		wantDiags []ErrorKind
	}{
		{
			name:   "Headings",
			source: "# One\n\n## Two ##\n",
			want: "HeadingKind level=1\n" +
				"  TextKind \"One\"\n" +
				"HeadingKind level=2\n" +
				"  TextKind \"Two\"\n",
		},
		{
			name:   "SevenHashesIsParagraph",
			source: "####### Seven\n",
			want: "ParagraphKind\n" +
				"  TextKind \"####### Seven\"\n",
		},
		{
			name:   "ParagraphJoinsLines",
			source: "first line\nsecond line\n",
			want: "ParagraphKind\n" +
				"  TextKind \"first line\"\n" +
				"  TextKind \"\\n\"\n" +
				"  TextKind \"second line\"\n",
		},
		{
			name:   "BlockQuoteWithAttribution",
			source: "> Quoted line.\n>\n> - Anon\n",
			want: "BlockQuoteKind\n" +
				"  ParagraphKind\n" +
				"    TextKind \"Quoted line.\"\n" +
				"  AttributionKind\n" +
				"    TextKind \"Anon\"\n",
		},
		{
			name:   "AttributionOnlyAtEnd",
			source: "> - First\n> after\n",
			want: "BlockQuoteKind\n" +
				"  ParagraphKind\n" +
				"    TextKind \"- First\"\n" +
				"    TextKind \"\\n\"\n" +
				"    TextKind \"after\"\n",
		},
		{
			name:   "NestedQuotes",
			source: "> > deep\n",
			want: "BlockQuoteKind\n" +
				"  BlockQuoteKind\n" +
				"    ParagraphKind\n" +
				"      TextKind \"deep\"\n",
		},
		{
			name:   "QuoteDepthLimit",
			source: "> > x\n",
			opts:   &Options{MaxDepth: 1},
			want: "BlockQuoteKind\n" +
				"  ParagraphKind\n" +
				"    TextKind \"> x\"\n",
		},
		{
			name:   "Table",
			source: "| A | B | C |\n| :-- | :-: | --: |\n| 1 | 2 | 3 |\n",
			want: "TableKind align=[left center right]\n" +
				"  TableRowKind header\n" +
				"    TableCellKind\n" +
				"      TextKind \"A\"\n" +
				"    TableCellKind\n" +
				"      TextKind \"B\"\n" +
				"    TableCellKind\n" +
				"      TextKind \"C\"\n" +
				"  TableRowKind\n" +
				"    TableCellKind\n" +
				"      TextKind \"1\"\n" +
				"    TableCellKind\n" +
				"      TextKind \"2\"\n" +
				"    TableCellKind\n" +
				"      TextKind \"3\"\n",
		},
		{
			name:   "TableRowColumnMismatch",
			source: "| A | B |\n| --- | --- |\n| 1 |\n",
			want: "TableKind align=[default default]\n" +
				"  TableRowKind header\n" +
				"    TableCellKind\n" +
				"      TextKind \"A\"\n" +
				"    TableCellKind\n" +
				"      TextKind \"B\"\n" +
				"ParagraphKind\n" +
				"  TextKind \"| 1 |\"\n",
			wantDiags: []ErrorKind{MalformedTable},
		},
		{
			name:   "MathBlockWithLabel",
			source: "$$\n\\label{eq1}\nE = mc^2\n$$\n",
			want:   "MathBlockKind label=\"eq1\" literal=\"E = mc^2\"\n",
		},
		{
			name:   "MathBlockSingleLine",
			source: "$$a + b$$\n",
			want:   "MathBlockKind literal=\"a + b\"\n",
		},
		{
			name:   "MathBlockUnterminated",
			source: "$$\nx + y\n",
			want: "ParagraphKind\n" +
				"  TextKind \"$$\"\n" +
				"  TextKind \"\\n\"\n" +
				"  TextKind \"x + y\"\n",
			wantDiags: []ErrorKind{UnterminatedBlock},
		},
		{
			name:   "FootnoteDefinition",
			source: "[^note]: First line.\n  Second line.\n",
			want: "FootnoteDefinitionKind id=\"note\"\n" +
				"  TextKind \"First line.\"\n" +
				"  TextKind \"\\n\"\n" +
				"  TextKind \"Second line.\"\n",
		},
		{
			name:   "UnterminatedDirective",
			source: "```{note}\nbody\n",
			want: "ParagraphKind\n" +
				"  TextKind \"```{note}\"\n" +
				"  TextKind \"\\n\"\n" +
				"  TextKind \"body\"\n",
			wantDiags: []ErrorKind{UnterminatedBlock},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := Parse([]byte(test.source), test.opts)
			if diff := cmp.Diff(test.want, dumpDoc(doc)); diff != "" {
				t.Errorf("tree (-want +got):\n%s", diff)
			}
			checkDiagnostics(t, doc, test.wantDiags)
		})
	}
}

func checkDiagnostics(t *testing.T, doc *Document, want []ErrorKind) {
	t.Helper()
	var got []ErrorKind
	for _, d := range doc.Diagnostics() {
		got = append(got, d.Kind)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("diagnostics (-want +got):\n%s", diff)
	}
}

func TestParseTableSeparator(t *testing.T) {
	tests := []struct {
		text string
		want []Alignment
		ok   bool
	}{
		{"| --- | --- |", []Alignment{AlignDefault, AlignDefault}, true},
		{":-- | :-: | --:", []Alignment{AlignLeft, AlignCenter, AlignRight}, true},
		{"| --- | abc |", nil, false},
		{"| |", nil, false},
		{"plain text", nil, false},
	}
	for _, test := range tests {
		got, ok := parseTableSeparator([]byte(test.text))
		if ok != test.ok {
			t.Errorf("parseTableSeparator(%q) ok = %t; want %t", test.text, ok, test.ok)
			continue
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("parseTableSeparator(%q) (-want +got):\n%s", test.text, diff)
		}
	}
}

func TestParseHeading(t *testing.T) {
	tests := []struct {
		text string
		want headingInfo
	}{
		{"# Title", headingInfo{level: 1, contentStart: 2, contentEnd: 7}},
		{"###### Six", headingInfo{level: 6, contentStart: 7, contentEnd: 10}},
		{"####### Seven", headingInfo{}},
		{"#NoSpace", headingInfo{}},
		{"## Closed ##", headingInfo{level: 2, contentStart: 3, contentEnd: 9}},
		{"##", headingInfo{level: 2, contentStart: 2, contentEnd: 2}},
	}
	for _, test := range tests {
		got := parseHeading([]byte(test.text))
		if diff := cmp.Diff(test.want, got, cmp.AllowUnexported(headingInfo{})); diff != "" {
			t.Errorf("parseHeading(%q) (-want +got):\n%s", test.text, diff)
		}
	}
}
