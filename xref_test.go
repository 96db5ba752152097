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

const orderedLabelsSource = "```{figure} a.png\n" +
	":label: fig-a\n" +
	"```\n" +
	"\n" +
	"```{figure} b.png\n" +
	":label: fig-b\n" +
	"```\n" +
	"\n" +
	"$$\n" +
	"\\label{eq-a}\n" +
	"x\n" +
	"$$\n" +
	"\n" +
	"See [](#fig-b) and [](#eq-a) and [](#fig-a).\n"

func TestLabelOrdinals(t *testing.T) {
	doc := Parse([]byte(orderedLabelsSource), nil)
	checkDiagnostics(t, doc, nil)

	if got, want := doc.Labels().Labels(), []string{"fig-a", "fig-b", "eq-a"}; !cmp.Equal(want, got) {
		t.Errorf("Labels() = %v; want %v", got, want)
	}
	wantEntries := map[string]LabelEntry{
		"fig-a": {Kind: FigureLabel, Ordinal: 1, Line: 1},
		"fig-b": {Kind: FigureLabel, Ordinal: 2, Line: 5},
		"eq-a":  {Kind: EquationLabel, Ordinal: 1, Line: 9},
	}
	for label, want := range wantEntries {
		got, ok := doc.Labels().Lookup(label)
		if !ok {
			t.Errorf("Lookup(%q) not found", label)
			continue
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Lookup(%q) (-want +got):\n%s", label, diff)
		}
	}

	wantRefs := []int{2, 1, 1}
	if got := collectCrossRefOrdinals(doc); !cmp.Equal(wantRefs, got) {
		t.Errorf("cross-reference ordinals = %v; want %v", got, wantRefs)
	}
}

func TestDirectiveLabelResolution(t *testing.T) {
	// A label attribute on any directive enters the label table,
	// not just figures and math.
	source := "```{csv-table}\n" +
		":label: tbl-stats\n" +
		"a,b\n" +
		"```\n" +
		"\n" +
		"```{note}\n" +
		":label: note-well\n" +
		"Careful.\n" +
		"```\n" +
		"\n" +
		"See [](#tbl-stats) and [](#note-well).\n"
	doc := Parse([]byte(source), nil)
	checkDiagnostics(t, doc, nil)

	wantEntries := map[string]LabelEntry{
		"tbl-stats": {Kind: OtherLabel, Ordinal: 1, Line: 1},
		"note-well": {Kind: OtherLabel, Ordinal: 2, Line: 6},
	}
	for label, want := range wantEntries {
		got, ok := doc.Labels().Lookup(label)
		if !ok {
			t.Errorf("Lookup(%q) not found", label)
			continue
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Lookup(%q) (-want +got):\n%s", label, diff)
		}
	}
	if got, want := collectCrossRefOrdinals(doc), []int{1, 2}; !cmp.Equal(want, got) {
		t.Errorf("cross-reference ordinals = %v; want %v", got, want)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	doc := Parse([]byte(orderedLabelsSource), nil)
	before := dumpDoc(doc)
	diagsBefore := len(doc.Diagnostics())

	resolveReferences(doc)

	if diff := cmp.Diff(before, dumpDoc(doc)); diff != "" {
		t.Errorf("tree changed on re-resolve (-before +after):\n%s", diff)
	}
	if got := len(doc.Diagnostics()); got != diagsBefore {
		t.Errorf("re-resolve added diagnostics: %d -> %d", diagsBefore, got)
	}
	entry, _ := doc.Labels().Lookup("fig-b")
	if entry.Ordinal != 2 {
		t.Errorf("fig-b ordinal = %d after re-resolve; want 2", entry.Ordinal)
	}
}

func TestDuplicateLabel(t *testing.T) {
	source := "```{figure} a.png\n" +
		":label: fig\n" +
		"```\n" +
		"\n" +
		"$$\n" +
		"\\label{fig}\n" +
		"y\n" +
		"$$\n"
	doc := Parse([]byte(source), nil)
	checkDiagnostics(t, doc, []ErrorKind{DuplicateLabel})

	// The first claimant keeps the label.
	entry, ok := doc.Labels().Lookup("fig")
	if !ok {
		t.Fatal(`Lookup("fig") not found`)
	}
	if entry.Kind != FigureLabel || entry.Ordinal != 1 || entry.Line != 1 {
		t.Errorf("Lookup(\"fig\") = %+v; want figure ordinal 1 on line 1", entry)
	}
}

func TestUnresolvedReferences(t *testing.T) {
	source := "See [](#ghost) and [^ghost] and {term}`ghost`.\n"
	doc := Parse([]byte(source), nil)
	if doc == nil {
		t.Fatal("Parse returned nil")
	}
	checkDiagnostics(t, doc, []ErrorKind{UnresolvedLabel, UnresolvedFootnote, UnresolvedTerm})
	if got := collectCrossRefOrdinals(doc); !cmp.Equal([]int{0}, got) {
		t.Errorf("unresolved cross-reference ordinals = %v; want [0]", got)
	}
	for _, d := range doc.Diagnostics() {
		if d.Line != 1 {
			t.Errorf("diagnostic %v on line %d; want line 1", d.Kind, d.Line)
		}
	}
}

func TestFootnoteResolution(t *testing.T) {
	source := "A[^b] and C[^a].\n" +
		"\n" +
		"[^a]: one\n" +
		"\n" +
		"[^B]: two\n"
	doc := Parse([]byte(source), nil)
	checkDiagnostics(t, doc, nil)

	// Ordinals follow definition order; lookup folds case.
	if def := doc.Footnote("b"); def.Identifier() != "B" {
		t.Errorf("Footnote(\"b\").Identifier() = %q; want \"B\"", def.Identifier())
	}
	var got []int
	Walk(doc.AsNode(), &WalkOptions{Pre: func(c *Cursor) bool {
		if inline := c.Node().Inline(); inline.Kind() == FootnoteRefKind {
			got = append(got, inline.Ordinal())
		}
		return true
	}})
	if want := []int{2, 1}; !cmp.Equal(want, got) {
		t.Errorf("footnote ref ordinals = %v; want %v", got, want)
	}
}

func TestTermResolution(t *testing.T) {
	source := "```{glossary}\n" +
		"API\n" +
		"  An interface.\n" +
		"```\n" +
		"\n" +
		"Use {term}`api` daily.\n"
	doc := Parse([]byte(source), nil)
	checkDiagnostics(t, doc, nil)
	if entry := doc.Term("API"); entry.Term() != "API" {
		t.Errorf(`Term("API").Term() = %q; want "API"`, entry.Term())
	}
	if entry := doc.Term("api"); entry == nil {
		t.Error(`Term("api") = nil; want the API entry`)
	}
}

func collectCrossRefOrdinals(doc *Document) []int {
	var got []int
	Walk(doc.AsNode(), &WalkOptions{Pre: func(c *Cursor) bool {
		if inline := c.Node().Inline(); inline.Kind() == CrossRefKind {
			got = append(got, inline.Ordinal())
		}
		return true
	}})
	return got
}
