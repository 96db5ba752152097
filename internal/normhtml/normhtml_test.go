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

package normhtml

import "testing"

func TestNormalizeHTML(t *testing.T) {
	tests := []struct {
		b    string
		want string
	}{
		{"<p>a  \t b</p>", "<p>a b</p>"},
		{"<p>a  \t\nb</p>", "<p>a b</p>"},
		{" <p>a  b</p>", "<p>a b</p>"},
		{"<p>a  b</p> ", "<p>a b</p>"},
		{"\n\t<p>\n\t\ta  b\t\t</p>\n\t", "<p>a b</p>"},
		{"<em>a  b</em> ", "<em>a b</em> "},
		{"<table>\n<tr> <td>x</td> </tr>\n</table>", "<table><tr><td>x</td></tr></table>"},
		{`<figure id="fig1"> <img alt="" src="a.png"> </figure>`, `<figure id="fig1"><img alt="" src="a.png"></figure>`},
		{`<td style="text-align: left;" id="c">x</td>`, `<td id="c" style="text-align: left;">x</td>`},
		{"<pre>a  b\n c</pre>", "<pre>a  b\n c</pre>"},
		{"&forall;&amp;&gt;&lt;&quot;", "∀&amp;&gt;&lt;&quot;"},
	}
	for _, test := range tests {
		if got := NormalizeHTML([]byte(test.b)); string(got) != test.want {
			t.Errorf("NormalizeHTML(%q) = %q; want %q", test.b, got, test.want)
		}
	}
}
