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

// Package config loads mystmark.toml settings for the CLI.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
)

// Config holds the CLI's settings.
type Config struct {
	// MaxDepth is the block quote nesting limit passed to the parser.
	MaxDepth int `koanf:"max_depth"`
	// Strict makes render refuse documents that carry diagnostics.
	Strict bool `koanf:"strict"`
	// Parallel is the maximum number of files checked concurrently.
	Parallel int `koanf:"parallel"`
}

const (
	defaultMaxDepth = 16
	defaultParallel = 4
)

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.MaxDepth <= 0 {
		c.MaxDepth = defaultMaxDepth
	}
	if c.Parallel <= 0 {
		c.Parallel = defaultParallel
	}
}

func configFilenames() []string {
	return []string{"mystmark.toml", ".mystmark.toml"}
}

// Load reads the config file at configPath.
// An empty configPath searches the working directory and its parents;
// if no file is found, the defaults are returned without error.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		found, err := findConfigFile()
		if err != nil {
			return nil, err
		}
		if found == "" {
			cfg := &Config{}
			cfg.ApplyDefaults()
			return cfg, nil
		}
		configPath = found
	} else if _, err := os.Stat(configPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, oops.
				Code("CONFIG_NOT_FOUND").
				With("path", configPath).
				Hint("Create the file or pass a valid --config path").
				Errorf("config file %q does not exist", configPath)
		}
		return nil, oops.Wrapf(err, "checking config file %q", configPath)
	}

	absConfigPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, oops.Wrapf(err, "resolving absolute config path")
	}

	cfg := &Config{}
	k := koanf.New(".")
	if loadErr := k.Load(file.Provider(absConfigPath), toml.Parser()); loadErr != nil {
		return nil, oops.
			Code("CONFIG_INVALID").
			With("path", absConfigPath).
			Hint("Fix TOML syntax in your config").
			Wrapf(loadErr, "loading config from %q", absConfigPath)
	}
	if unmarshalErr := k.Unmarshal("", cfg); unmarshalErr != nil {
		return nil, oops.
			Code("CONFIG_INVALID").
			With("path", absConfigPath).
			Hint("Fix config structure to match the mystmark schema").
			Wrapf(unmarshalErr, "decoding config from %q", absConfigPath)
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// findConfigFile walks from the working directory to the filesystem root
// looking for a config file.
// An empty path with a nil error means no file exists.
func findConfigFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", oops.Wrapf(err, "getting working directory")
	}

	for {
		for _, name := range configFilenames() {
			path := filepath.Join(dir, name)
			if _, statErr := os.Stat(path); statErr == nil {
				return path, nil
			} else if !errors.Is(statErr, os.ErrNotExist) {
				return "", oops.Wrapf(statErr, "checking for config file at %q", path)
			}
		}
		parentDir := filepath.Dir(dir)
		if parentDir == dir {
			return "", nil
		}
		dir = parentDir
	}
}
