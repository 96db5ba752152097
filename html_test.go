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
	"zombiezen.com/go/mystmark/internal/normhtml"
)

func TestRenderHTML(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "Heading",
			source: "# Hi\n",
			want:   "<h1>Hi</h1>\n",
		},
		{
			name:   "InlineStyles",
			source: "*a* **b** ~~c~~ H{sub}`2`O\n",
			want:   "<p><em>a</em> <strong>b</strong> <del>c</del> H<sub>2</sub>O</p>\n",
		},
		{
			name:   "EscapesSpecialCharacters",
			source: "a < b & c\n",
			want:   "<p>a &lt; b &amp; c</p>\n",
		},
		{
			name:   "BlockQuoteWithAttribution",
			source: "> Words.\n>\n> - Someone\n",
			want: "<blockquote>\n" +
				"<p>Words.</p>\n" +
				"<footer>— Someone</footer>\n" +
				"</blockquote>\n",
		},
		{
			name:   "TableAlignment",
			source: "| A | B |\n| :-- | --: |\n| 1 | 2 |\n",
			want: "<table>\n" +
				`<tr><th style="text-align: left;">A</th><th style="text-align: right;">B</th></tr>` + "\n" +
				`<tr><td style="text-align: left;">1</td><td style="text-align: right;">2</td></tr>` + "\n" +
				"</table>\n",
		},
		{
			name: "FigureWithCrossReference",
			source: "```{figure} cat.png\n" +
				":label: fig-cat\n" +
				":alt: A cat\n" +
				"\n" +
				"A very fine cat.\n" +
				"```\n" +
				"\n" +
				"See [](#fig-cat).\n",
			want: `<figure id="fig-cat">` + "\n" +
				`<img src="cat.png" alt="A cat">` + "\n" +
				"<figcaption>Figure 1: A very fine cat.</figcaption>\n" +
				"</figure>\n" +
				`<p>See <a href="#fig-cat">Figure 1</a>.</p>` + "\n",
		},
		{
			name:   "MathBlockAndEquationReference",
			source: "$$\n\\label{eq}\nx\n$$\n\nAs [](#eq).\n",
			want: `<div class="math" id="eq">\[x\]</div>` + "\n" +
				`<p>As <a href="#eq">Equation 1</a>.</p>` + "\n",
		},
		{
			name:   "InlineMath",
			source: "where {math}`x > 0` holds\n",
			want:   `<p>where <span class="math">\(x &gt; 0\)</span> holds</p>` + "\n",
		},
		{
			name:   "Footnote",
			source: "Fact[^a].\n\n[^a]: Source.\n",
			want: `<p>Fact<sup class="footnote-ref"><a href="#fn-a">1</a></sup>.</p>` + "\n" +
				`<div class="footnote" id="fn-a">Source.</div>` + "\n",
		},
		{
			name:   "Citation",
			source: "[see @doe99, p. 3]\n",
			want:   `<p><span class="citation">(see doe99, p. 3)</span></p>` + "\n",
		},
		{
			name:   "Admonition",
			source: "```{note}\nBe careful.\n```\n",
			want: `<div class="admonition note">` + "\n" +
				`<p class="admonition-title">Note</p>` + "\n" +
				"<p>Be careful.</p>\n" +
				"</div>\n",
		},
		{
			name:   "GlossaryAndTermReference",
			source: "```{glossary}\nAPI\n  An interface.\n```\n\nUse {term}`API`.\n",
			want: "<dl>\n" +
				`<dt id="term-api">API</dt>` + "\n" +
				"<dd>An interface.</dd>\n" +
				"</dl>\n" +
				`<p>Use <a class="term" href="#term-api">API</a>.</p>` + "\n",
		},
		{
			name:   "Mermaid",
			source: "```{mermaid}\ngraph TD\n```\n",
			want:   `<pre class="mermaid">graph TD</pre>` + "\n",
		},
		{
			name:   "CsvTable",
			source: "```{csv-table}\n:header-rows: 1\n\nName, Qty\nApple, 3\n```\n",
			want: "<table>\n" +
				"<tr><th>Name</th><th>Qty</th></tr>\n" +
				"<tr><td>Apple</td><td>3</td></tr>\n" +
				"</table>\n",
		},
		{
			name:   "UnresolvedCrossReferenceKeepsLabelText",
			source: "See [](#ghost).\n",
			want:   `<p>See <a href="#ghost">ghost</a>.</p>` + "\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := Parse([]byte(test.source), nil)
			got := string(normhtml.NormalizeHTML(AppendHTML(nil, doc)))
			want := string(normhtml.NormalizeHTML([]byte(test.want)))
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("html (-want +got):\n%s", diff)
			}
		})
	}
}
