/*
Copyright 2013 The Camlistore Authors.

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

package main

import (
	"flag"
	"fmt"
	"os"

	"but-next.dev/pkg/backup"
	"but-next.dev/pkg/cmdmain"
	"but-next.dev/pkg/config"
)

type backupCmd struct {
	configPath string
	repoPath   string
	target     string
	password   string
	verbose    bool
}

func init() {
	cmdmain.RegisterCommand("backup", func(flags *flag.FlagSet) cmdmain.CommandRunner {
		cmd := &backupCmd{}
		flags.StringVar(&cmd.configPath, "config", "", "Path to but-next.toml. Defaults to the usual search locations.")
		flags.StringVar(&cmd.repoPath, "repo", "", "Repository path. Overrides the config file's repo_path.")
		flags.StringVar(&cmd.target, "target", "", "Name of a single configured target to back up. If empty, every configured target is backed up.")
		flags.StringVar(&cmd.password, "password", "", "Encrypt stored blobs with this password. Empty disables encryption.")
		flags.BoolVar(&cmd.verbose, "verbose", false, "Log every file as it is stored or deduplicated.")
		return cmd
	})
}

func (c *backupCmd) Describe() string { return "Back up one or all configured targets." }

func (c *backupCmd) Usage() {
	fmt.Fprintf(cmdmain.Stderr, "Usage: butnext backup [-target=name] [-password=secret]\n")
}

func (c *backupCmd) Examples() []string {
	return []string{"-target=home", "-target=home -password=hunter2"}
}

func (c *backupCmd) RunCommand(args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	repoPath := c.repoPath
	if repoPath == "" {
		repoPath = cfg.RepoPath
	}

	targets := cfg.Targets
	if c.target != "" {
		targets = nil
		for _, t := range cfg.Targets {
			if t.Name == c.target {
				targets = append(targets, t)
			}
		}
		if len(targets) == 0 {
			return fmt.Errorf("no configured target named %q", c.target)
		}
	}
	if len(targets) == 0 {
		return fmt.Errorf("no targets configured; add a [[targets]] entry to but-next.toml")
	}

	eng := backup.New(repoPath)
	opts := backup.Options{
		Compression: cfg.CompressionKind(),
		ZstdLevel:   cfg.ZstdLevel,
		Password:    c.password,
		Verbose:     c.verbose || *cmdmain.FlagVerbose,
	}

	var failed int
	for _, t := range targets {
		snap, err := eng.BackupTarget(backup.Target{Name: t.Name, Path: t.Path, Exclude: t.Exclude}, opts)
		if err != nil {
			// A per-target failure doesn't stop the remaining targets
			// in this run from being attempted.
			fmt.Fprintf(cmdmain.Stderr, "backup %q: %v\n", t.Name, err)
			failed++
			continue
		}
		fmt.Fprintf(os.Stdout, "%s: %d files (%d new, %d deduplicated), %dms\n",
			snap.ID, snap.Stats.TotalFiles, snap.Stats.NewFiles, snap.Stats.UnchangedFiles, snap.Stats.DurationMS)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d targets failed", failed, len(targets))
	}
	return nil
}
