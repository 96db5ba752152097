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

import "fmt"

// ErrorKind identifies a class of parse problem.
type ErrorKind uint8

const (
	// UnterminatedBlock is a fence or math block
	// opened but never closed before end of input.
	UnterminatedBlock ErrorKind = 1 + iota
	// UnresolvedLabel is a cross-reference
	// whose target label was never defined.
	UnresolvedLabel
	// DuplicateLabel is a label claimed by two entities.
	DuplicateLabel
	// UnresolvedFootnote is a footnote reference with no matching definition.
	UnresolvedFootnote
	// UnresolvedTerm is a glossary reference with no matching entry.
	UnresolvedTerm
	// MalformedTable is a column-count mismatch
	// between a table's header and one of its rows.
	MalformedTable
	// MalformedDirective is a directive missing a required attribute
	// or carrying a body the directive cannot interpret.
	MalformedDirective
)

// String returns the kind as a name like "UnterminatedBlock".
func (kind ErrorKind) String() string {
	switch kind {
	case UnterminatedBlock:
		return "UnterminatedBlock"
	case UnresolvedLabel:
		return "UnresolvedLabel"
	case DuplicateLabel:
		return "DuplicateLabel"
	case UnresolvedFootnote:
		return "UnresolvedFootnote"
	case UnresolvedTerm:
		return "UnresolvedTerm"
	case MalformedTable:
		return "MalformedTable"
	case MalformedDirective:
		return "MalformedDirective"
	default:
		return fmt.Sprintf("ErrorKind(%d)", uint8(kind))
	}
}

// A Diagnostic is a structured parse error.
// Diagnostics are collected rather than returned at the point of failure,
// so a caller sees every problem in a document at once.
type Diagnostic struct {
	Kind    ErrorKind
	Message string
	// Line is the 1-based line the problem was detected on.
	Line int
	// Offset is the byte offset of the start of that line.
	Offset int
}

// String formats the diagnostic as "line N: Kind: message".
func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %v: %s", d.Line, d.Kind, d.Message)
}
