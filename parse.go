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

/*
Package mystmark parses a MyST-flavored Markdown dialect
into a position-annotated document tree.

Parsing runs in four passes over the source:
block scanning, inline tokenization,
directive specialization, and cross-reference resolution.
Errors do not abort a parse.
Structurally broken regions degrade to literal paragraphs,
unresolved references stay in the tree unannotated,
and every problem is reported through [*Document.Diagnostics].
Parsing the same bytes always produces the same tree,
diagnostics, and ordinals.
*/
package mystmark

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"
)

// Options control parsing.
// The zero value is usable.
type Options struct {
	// MaxDepth is the maximum block quote nesting depth.
	// Quote markers past the limit are treated as literal text.
	// Zero means the default of 16.
	MaxDepth int
}

const defaultMaxDepth = 16

func (opts *Options) maxDepth() int {
	if opts == nil || opts.MaxDepth <= 0 {
		return defaultMaxDepth
	}
	return opts.MaxDepth
}

// Parse parses a single document.
// source must be UTF-8;
// NUL bytes are replaced with the Unicode replacement character.
//
// Parse always returns a document.
// Malformed input produces diagnostics, never a nil tree.
func Parse(source []byte, opts *Options) *Document {
	if bytes.IndexByte(source, 0) >= 0 {
		source = bytes.ReplaceAll(source, []byte{0}, []byte("�"))
	}

	doc := &Document{
		Source:    source,
		labels:    newLabelTable(),
		footnotes: make(map[string]*Block),
		glossary:  make(map[string]*Block),
	}
	doc.root = Block{
		kind: documentKind,
		span: Span{0, len(source)},
		line: 1,
	}

	lines := splitLines(source)
	doc.lineOffsets = make([]int, len(lines))
	for i, ln := range lines {
		doc.lineOffsets[i] = ln.span.Start
	}

	s := &scanner{source: source, doc: doc, maxDepth: opts.maxDepth()}
	for _, b := range s.scanBlocks(lines, 0, false) {
		doc.root.children = append(doc.root.children, b.AsNode())
	}

	p := &inlineParser{source: source}
	p.rewrite(&doc.root)

	sp := &specializer{scan: s, inlines: p}
	sp.rewrite(&doc.root, 0)

	resolveReferences(doc)
	return doc
}

// ParseReader reads r to completion and parses the result.
func ParseReader(r io.Reader, opts *Options) (*Document, error) {
	source, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return Parse(source, opts), nil
}

// ParseFiles parses the named files concurrently.
// Documents are independent,
// so the result for each path is identical to
// reading the file and calling [Parse] on it directly.
// The first read error cancels the remaining reads.
func ParseFiles(ctx context.Context, paths []string, opts *Options) (map[string]*Document, error) {
	docs := make([]*Document, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			source, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			docs[i] = Parse(source, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	byPath := make(map[string]*Document, len(paths))
	for i, path := range paths {
		byPath[path] = docs[i]
	}
	return byPath, nil
}

// splitLines splits source into lines,
// excluding end-of-line bytes from each line's span.
func splitLines(source []byte) []line {
	var lines []line
	start := 0
	num := 1
	for i := 0; i < len(source); i++ {
		if source[i] != '\n' {
			continue
		}
		end := i
		if end > start && source[end-1] == '\r' {
			end--
		}
		lines = append(lines, line{span: Span{start, end}, num: num})
		start = i + 1
		num++
	}
	if start < len(source) {
		end := len(source)
		if source[end-1] == '\r' {
			end--
		}
		lines = append(lines, line{span: Span{start, end}, num: num})
	}
	return lines
}
