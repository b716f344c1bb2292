/*
Copyright 2014 The Perkeep Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config loads the TOML file that describes a repository's
// backup targets and defaults, searching the same style of well-known
// locations osutil uses for Perkeep's own config.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"but-next.dev/pkg/codec"
	"but-next.dev/pkg/osutil"
	"but-next.dev/pkg/repoerr"
)

// Target is one named backup source as read from the config file.
type Target struct {
	Name    string   `toml:"name"`
	Path    string   `toml:"path"`
	Exclude []string `toml:"exclude"`
}

// Config is the full parsed contents of a but-next.toml file.
type Config struct {
	RepoPath    string   `toml:"repo_path"`
	Compression string   `toml:"compression"`
	ZstdLevel   int      `toml:"zstd_level"`
	IntervalSec int      `toml:"interval"`
	Targets     []Target `toml:"targets"`
}

// Defaults mirror the reference tool's own defaults, used to fill in
// whatever the loaded file leaves unset.
const (
	DefaultRepoPath    = ".but"
	DefaultCompression = "zstd"
	DefaultZstdLevel   = 3
	DefaultIntervalSec = 300
)

// SearchPaths returns the ordered list of locations Load checks, most
// specific first: an explicit override, a repo-local file, the user's
// XDG config directory, their home directory, and finally /etc.
func SearchPaths(explicit string) []string {
	if explicit != "" {
		return []string{explicit}
	}

	var paths []string
	paths = append(paths, "but-next.toml")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "but-next.toml"))
	}
	if home := osutil.HomeDir(); home != "" {
		paths = append(paths, filepath.Join(home, ".config", "but-next.toml"))
	}
	paths = append(paths, filepath.Join(string(filepath.Separator), "etc", "but-next.toml"))
	return paths
}

// Load reads the first file found among SearchPaths(explicit), applying
// Defaults to any field the file leaves at its zero value. It returns an
// all-defaults Config, not an error, if no config file exists anywhere —
// a repository with no targets configured is a valid (if useless) state,
// not a failure.
func Load(explicit string) (*Config, error) {
	cfg := &Config{
		RepoPath:    DefaultRepoPath,
		Compression: DefaultCompression,
		ZstdLevel:   DefaultZstdLevel,
		IntervalSec: DefaultIntervalSec,
	}

	for _, path := range SearchPaths(explicit) {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
		applyDefaults(cfg)
		return cfg, nil
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.RepoPath == "" {
		cfg.RepoPath = DefaultRepoPath
	}
	if cfg.Compression == "" {
		cfg.Compression = DefaultCompression
	}
	if cfg.ZstdLevel == 0 {
		cfg.ZstdLevel = DefaultZstdLevel
	}
	if cfg.IntervalSec == 0 {
		cfg.IntervalSec = DefaultIntervalSec
	}
}

// CompressionKind resolves the configured compression name to a
// codec.Kind, falling back to Zstd for an empty or unrecognized value.
func (c *Config) CompressionKind() codec.Kind {
	if kind, ok := codec.ParseKind(c.Compression); ok {
		return kind
	}
	return codec.Zstd
}

// WriteDefault writes a starter but-next.toml to path, with one example
// target to edit, and fails rather than overwriting if path already
// exists.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return &repoerr.AlreadyExists{Path: path}
	}

	cfg := Config{
		RepoPath:    DefaultRepoPath,
		Compression: DefaultCompression,
		ZstdLevel:   DefaultZstdLevel,
		IntervalSec: DefaultIntervalSec,
		Targets: []Target{
			{
				Name:    "documents",
				Path:    filepath.Join(osutil.HomeDir(), "Documents"),
				Exclude: []string{"*.tmp", "*.cache"},
			},
		},
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
