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

// mystmark is a command-line front end for the mystmark parser.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"zombiezen.com/go/mystmark"
	"zombiezen.com/go/mystmark/internal/config"
	"zombiezen.com/go/mystmark/internal/ui"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	return newRootCommand().Run(context.Background(), args)
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "mystmark",
		Usage:   "Parse, check, and render MyST Markdown documents",
		Version: versionString(),
		Commands: []*cli.Command{
			newCheckCommand(),
			newRenderCommand(),
			newLabelsCommand(),
		},
	}
}

func versionString() string {
	return fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildTime)
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to config file",
	}
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	return config.Load(cmd.String("config"))
}

func parseOptions(cfg *config.Config) *mystmark.Options {
	return &mystmark.Options{MaxDepth: cfg.MaxDepth}
}

func printDiagnostics(path string, diags []mystmark.Diagnostic) {
	ui.PrintDiagnostics(os.Stderr, path, diags)
}
