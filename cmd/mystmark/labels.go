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
	"zombiezen.com/go/mystmark/internal/ui"
)

func newLabelsCommand() *cli.Command {
	return &cli.Command{
		Name:      "labels",
		Usage:     "List a document's labels and assigned ordinals",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: labelsAction,
	}
}

func labelsAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return oops.
			Code("INVALID_ARGS").
			Hint("Usage: mystmark labels <file>").
			Errorf("expected 1 argument, got %d", cmd.Args().Len())
	}
	path := cmd.Args().First()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return oops.Code("READ_ERROR").Wrapf(err, "reading %q", path)
	}
	doc := mystmark.Parse(source, parseOptions(cfg))
	ui.WriteLabelTable(os.Stdout, doc)
	return nil
}
