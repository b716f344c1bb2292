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
	"strings"

	"but-next.dev/pkg/cmdmain"
	"but-next.dev/pkg/config"
	"but-next.dev/pkg/manifest"
	"but-next.dev/pkg/restore"
)

type restoreCmd struct {
	configPath string
	repoPath   string
	snapshot   string
	to         string
	filter     string
	force      bool
	password   string
	verify     bool
}

func init() {
	cmdmain.RegisterCommand("restore", func(flags *flag.FlagSet) cmdmain.CommandRunner {
		cmd := &restoreCmd{}
		flags.StringVar(&cmd.configPath, "config", "", "Path to but-next.toml. Defaults to the usual search locations.")
		flags.StringVar(&cmd.repoPath, "repo", "", "Repository path. Overrides the config file's repo_path.")
		flags.StringVar(&cmd.snapshot, "snapshot", "", "Snapshot ID or unambiguous prefix to restore. Required.")
		flags.StringVar(&cmd.to, "to", "", "Destination directory. Required.")
		flags.StringVar(&cmd.filter, "filter", "", "Comma-separated path substrings; only matching files are restored.")
		flags.BoolVar(&cmd.force, "force", false, "Restore into a non-empty destination directory.")
		flags.StringVar(&cmd.password, "password", "", "Password to decrypt an encrypted snapshot.")
		flags.BoolVar(&cmd.verify, "verify", false, "Recompute each file's content hash after decoding and abort on mismatch.")
		return cmd
	})
}

func (c *restoreCmd) Describe() string { return "Restore a snapshot to a directory." }

func (c *restoreCmd) Usage() {
	fmt.Fprintf(cmdmain.Stderr, "Usage: butnext restore -snapshot=id -to=dir\n")
}

func (c *restoreCmd) Examples() []string {
	return []string{"-snapshot=20260101-120000-home -to=/tmp/restored"}
}

func (c *restoreCmd) RunCommand(args []string) error {
	if c.snapshot == "" || c.to == "" {
		return cmdmain.UsageError("both -snapshot and -to are required")
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	repoPath := c.repoPath
	if repoPath == "" {
		repoPath = cfg.RepoPath
	}

	snap, err := manifest.Find(repoPath, c.snapshot)
	if err != nil {
		return err
	}

	var filter []string
	if c.filter != "" {
		filter = strings.Split(c.filter, ",")
	}

	eng := restore.New(repoPath)
	stats, err := eng.RestoreSnapshot(snap, c.to, restore.Options{
		Filter:   filter,
		Force:    c.force,
		Password: c.password,
		Verify:   c.verify,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "restored %d files, %d bytes\n", stats.FilesRestored, stats.BytesWritten)
	return nil
}
