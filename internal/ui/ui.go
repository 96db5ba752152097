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

// Package ui formats parser results for the terminal.
package ui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"zombiezen.com/go/mystmark"
)

var (
	pathColor = color.New(color.FgCyan)
	kindColor = color.New(color.FgRed, color.Bold)
	lineColor = color.New(color.Faint)
)

// PrintDiagnostics writes one line per diagnostic,
// prefixed with the document's path.
func PrintDiagnostics(w io.Writer, path string, diags []mystmark.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s%s %s %s\n",
			pathColor.Sprint(path),
			lineColor.Sprintf(":%d:", d.Line),
			kindColor.Sprint(d.Kind.String()),
			d.Message,
		)
	}
}

// WriteLabelTable renders a document's label table.
func WriteLabelTable(w io.Writer, doc *mystmark.Document) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"LABEL", "KIND", "ORDINAL", "LINE"})
	for _, label := range doc.Labels().Labels() {
		entry, _ := doc.Labels().Lookup(label)
		t.AppendRow(table.Row{
			label,
			entry.Kind.String(),
			strconv.Itoa(entry.Ordinal),
			strconv.Itoa(entry.Line),
		})
	}
	t.Render()
}
