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

	"but-next.dev/pkg/cmdmain"
	"but-next.dev/pkg/config"
	"but-next.dev/pkg/diff"
	"but-next.dev/pkg/manifest"
)

type diffCmd struct {
	configPath string
	repoPath   string
	old        string
	new        string
}

func init() {
	cmdmain.RegisterCommand("diff", func(flags *flag.FlagSet) cmdmain.CommandRunner {
		cmd := &diffCmd{}
		flags.StringVar(&cmd.configPath, "config", "", "Path to but-next.toml. Defaults to the usual search locations.")
		flags.StringVar(&cmd.repoPath, "repo", "", "Repository path. Overrides the config file's repo_path.")
		flags.StringVar(&cmd.old, "old", "", "Older snapshot ID or prefix. Required.")
		flags.StringVar(&cmd.new, "new", "", "Newer snapshot ID or prefix. Required.")
		return cmd
	})
}

func (c *diffCmd) Describe() string { return "Show added, modified, and removed files between two snapshots." }

func (c *diffCmd) Usage() {
	fmt.Fprintf(cmdmain.Stderr, "Usage: butnext diff -old=id1 -new=id2\n")
}

func (c *diffCmd) Examples() []string {
	return []string{"-old=20260101-120000-home -new=20260102-120000-home"}
}

func (c *diffCmd) RunCommand(args []string) error {
	if c.old == "" || c.new == "" {
		return cmdmain.UsageError("both -old and -new are required")
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	repoPath := c.repoPath
	if repoPath == "" {
		repoPath = cfg.RepoPath
	}

	older, err := manifest.Find(repoPath, c.old)
	if err != nil {
		return err
	}
	newer, err := manifest.Find(repoPath, c.new)
	if err != nil {
		return err
	}

	res := diff.Diff(older, newer)
	for _, e := range res.Added {
		fmt.Fprintf(os.Stdout, "+ %s (%d bytes)\n", e.Path, e.Size)
	}
	for _, e := range res.Modified {
		fmt.Fprintf(os.Stdout, "~ %s (%d bytes)\n", e.Path, e.Size)
	}
	for _, e := range res.Removed {
		fmt.Fprintf(os.Stdout, "- %s (%d bytes)\n", e.Path, e.Size)
	}
	fmt.Fprintf(os.Stdout, "%d added, %d modified, %d removed\n", len(res.Added), len(res.Modified), len(res.Removed))
	fmt.Fprintf(os.Stdout, "+%d bytes added, %+d bytes modified delta, -%d bytes removed\n",
		res.AddedSize, res.ModifiedSizeDelta, res.RemovedSize)
	return nil
}
