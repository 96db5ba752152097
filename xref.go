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

	"golang.org/x/text/cases"
)

var keyFolder = cases.Fold()

// foldKey normalizes a footnote identifier or glossary term
// for Unicode case-insensitive lookup.
func foldKey(s string) string {
	return keyFolder.String(s)
}

// resolveReferences is the final parse pass.
// It collects labeled entities in document order,
// assigns per-kind ordinals,
// indexes footnote definitions and glossary entries,
// and annotates every reference with its target's ordinal.
// Numbering is idempotent:
// an entry that already carries an ordinal keeps it,
// so re-running the pass never renumbers.
func resolveReferences(doc *Document) {
	r := &refResolver{
		doc:          doc,
		footnoteNums: make(map[*Block]int),
	}
	r.collect(&doc.root)
	r.number()
	r.annotate(&doc.root)
}

type refResolver struct {
	doc          *Document
	footnoteNums map[*Block]int
}

// collect walks the block tree in document order,
// recording labeled entities and indexing
// footnote definitions and glossary entries.
// A label claimed twice is a DuplicateLabel error;
// the first claimant keeps it.
// Duplicate footnote identifiers and glossary terms
// likewise resolve to their first definition.
func (r *refResolver) collect(root *Block) {
	for _, child := range root.Children() {
		b := child.Block()
		if b == nil {
			continue
		}
		switch b.kind {
		case FootnoteDefinitionKind:
			key := foldKey(b.identifier)
			if _, exists := r.doc.footnotes[key]; !exists {
				r.doc.footnotes[key] = b
			}
			if r.doc.footnotes[key] == b {
				r.footnoteNums[b] = len(r.footnoteNums) + 1
			}
		case GlossaryEntryKind:
			key := foldKey(b.term)
			if _, exists := r.doc.glossary[key]; !exists {
				r.doc.glossary[key] = b
			}
		}
		if b.label != "" {
			if prev, exists := r.doc.labels.entries[b.label]; exists {
				if prev.Line == b.line {
					// Same entity on a re-resolve; keep its entry.
					r.collect(b)
					continue
				}
				r.doc.diags = append(r.doc.diags, Diagnostic{
					Kind:    DuplicateLabel,
					Message: fmt.Sprintf("label %q on line %d is already defined on line %d", b.label, b.line, prev.Line),
					Line:    b.line,
					Offset:  b.span.Start,
				})
			} else {
				r.doc.labels.entries[b.label] = &LabelEntry{
					Kind: labelKindOf(b),
					Line: b.line,
				}
				r.doc.labels.order = append(r.doc.labels.order, b.label)
			}
		}
		r.collect(b)
	}
}

func labelKindOf(b *Block) LabelKind {
	switch b.kind {
	case FigureKind:
		return FigureLabel
	case MathBlockKind:
		return EquationLabel
	default:
		return OtherLabel
	}
}

// number assigns ordinals to labeled entities,
// counting each [LabelKind] independently in first-appearance order.
func (r *refResolver) number() {
	var counters [OtherLabel + 1]int
	for _, label := range r.doc.labels.order {
		entry := r.doc.labels.entries[label]
		counters[entry.Kind]++
		if entry.Ordinal == 0 {
			entry.Ordinal = counters[entry.Kind]
		}
	}
}

// annotate resolves every reference inline under the given block.
// A reference without a target produces a diagnostic
// and is left with a zero ordinal;
// the tree is usable regardless.
func (r *refResolver) annotate(root *Block) {
	for _, child := range root.Children() {
		if b := child.Block(); b != nil {
			r.annotate(b)
			continue
		}
		if inline := child.Inline(); inline != nil {
			r.annotateInline(inline)
		}
	}
}

func (r *refResolver) annotateInline(inline *Inline) {
	switch inline.kind {
	case CrossRefKind:
		if entry, ok := r.doc.labels.entries[inline.label]; ok {
			inline.ordinal = entry.Ordinal
		} else {
			r.refDiag(UnresolvedLabel, inline, "no entity is labeled %q", inline.label)
		}
	case FootnoteRefKind:
		if def := r.doc.footnotes[foldKey(inline.identifier)]; def != nil {
			inline.ordinal = r.footnoteNums[def]
		} else {
			r.refDiag(UnresolvedFootnote, inline, "footnote [^%s] is never defined", inline.identifier)
		}
	case TermRefKind:
		if r.doc.glossary[foldKey(inline.identifier)] == nil {
			r.refDiag(UnresolvedTerm, inline, "term %q is not in the glossary", inline.identifier)
		}
	}
	for _, c := range inline.children {
		r.annotateInline(c)
	}
}

func (r *refResolver) refDiag(kind ErrorKind, inline *Inline, format string, args ...any) {
	r.doc.diags = append(r.doc.diags, Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    r.doc.lineOf(inline.span.Start),
		Offset:  inline.span.Start,
	})
}
