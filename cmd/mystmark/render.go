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

package main

import (
	"context"
	"os"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"
	"zombiezen.com/go/mystmark"
)

func newRenderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Render a document to HTML",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write HTML to a file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Refuse to render documents with diagnostics",
			},
		},
		Action: renderAction,
	}
}

func renderAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return oops.
			Code("INVALID_ARGS").
			Hint("Usage: mystmark render <file>").
			Errorf("expected 1 argument, got %d", cmd.Args().Len())
	}
	path := cmd.Args().First()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	strict := cfg.Strict || cmd.Bool("strict")

	source, err := os.ReadFile(path)
	if err != nil {
		return oops.Code("READ_ERROR").Wrapf(err, "reading %q", path)
	}
	doc := mystmark.Parse(source, parseOptions(cfg))

	if diags := doc.Diagnostics(); len(diags) > 0 {
		printDiagnostics(path, diags)
		if strict {
			return oops.
				Code("RENDER_REFUSED").
				With("path", path).
				Hint("Fix the reported problems or drop --strict").
				Errorf("%d problem(s) in %q", len(diags), path)
		}
	}

	out := os.Stdout
	if outPath := cmd.String("output"); outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return oops.Code("WRITE_ERROR").Wrapf(err, "creating %q", outPath)
		}
		defer f.Close()
		out = f
	}
	if err := mystmark.RenderHTML(out, doc); err != nil {
		return oops.Code("WRITE_ERROR").Wrapf(err, "rendering %q", path)
	}
	return nil
}
