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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"but-next.dev/pkg/codec"
)

func TestLoadDefaultsWithNoFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RepoPath != DefaultRepoPath || cfg.ZstdLevel != DefaultZstdLevel {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "but-next.toml")
	contents := `
repo_path = "/var/backups/but-next"
compression = "gzip"
zstd_level = 9

[[targets]]
name = "home"
path = "/home/user"
exclude = ["*.tmp", "node_modules"]
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RepoPath != "/var/backups/but-next" {
		t.Fatalf("RepoPath = %q", cfg.RepoPath)
	}
	if cfg.CompressionKind() != codec.Gzip {
		t.Fatalf("CompressionKind() = %v, want Gzip", cfg.CompressionKind())
	}
	if len(cfg.Targets) != 1 || cfg.Targets[0].Name != "home" {
		t.Fatalf("Targets = %+v", cfg.Targets)
	}
	if len(cfg.Targets[0].Exclude) != 2 {
		t.Fatalf("Exclude = %v", cfg.Targets[0].Exclude)
	}
}

func TestWriteDefaultThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "but-next.toml")
	if err := WriteDefault(path); err != nil {
		t.Fatal(err)
	}
	if err := WriteDefault(path); err == nil {
		t.Fatal("WriteDefault should refuse to overwrite an existing file")
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Targets) != 1 {
		t.Fatalf("Targets = %+v, want one starter target", cfg.Targets)
	}
}

func TestSearchPathsExplicitOverride(t *testing.T) {
	paths := SearchPaths("/explicit/path.toml")
	if len(paths) != 1 || paths[0] != "/explicit/path.toml" {
		t.Fatalf("SearchPaths with explicit override = %v", paths)
	}
}
