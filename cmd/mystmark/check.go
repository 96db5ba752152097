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
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/oops"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"zombiezen.com/go/mystmark"
)

func newCheckCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Parse documents and report diagnostics",
		ArgsUsage: "<glob...>",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:    "parallel",
				Aliases: []string{"p"},
				Usage:   "Maximum files parsed concurrently (0 = use config default)",
			},
		},
		Action: checkAction,
	}
}

func checkAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return oops.
			Code("INVALID_ARGS").
			Hint("Usage: mystmark check '<glob>'").
			Errorf("expected at least 1 glob argument")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	parallel := cfg.Parallel
	if cmd.IsSet("parallel") && cmd.Int("parallel") > 0 {
		parallel = cmd.Int("parallel")
	}

	paths, err := expandGlobs(cmd.Args().Slice())
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return oops.
			Code("NO_FILES").
			With("globs", cmd.Args().Slice()).
			Hint("Quote globs so the shell does not expand them first").
			Errorf("no files matched")
	}

	opts := parseOptions(cfg)
	docs := make([]*mystmark.Document, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			source, err := os.ReadFile(path)
			if err != nil {
				return oops.Code("READ_ERROR").Wrapf(err, "reading %q", path)
			}
			docs[i] = mystmark.Parse(source, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	problems := 0
	for i, path := range paths {
		diags := docs[i].Diagnostics()
		problems += len(diags)
		printDiagnostics(path, diags)
	}
	if problems > 0 {
		return oops.
			Code("CHECK_FAILED").
			With("files", len(paths)).
			Errorf("found %d problem(s)", problems)
	}
	return nil
}

// expandGlobs resolves doublestar patterns to a sorted, de-duplicated path list.
// A pattern without metacharacters is kept as a literal path.
func expandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, oops.
				Code("BAD_GLOB").
				With("pattern", pattern).
				Wrapf(err, "expanding glob %q", pattern)
		}
		if matches == nil && !hasGlobMeta(pattern) {
			matches = []string{pattern}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func hasGlobMeta(pattern string) bool {
	for _, c := range pattern {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
