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
	"but-next.dev/pkg/prune"
)

type pruneCmd struct {
	configPath string
	repoPath   string
	target     string
	keep       int
}

func init() {
	cmdmain.RegisterCommand("prune", func(flags *flag.FlagSet) cmdmain.CommandRunner {
		cmd := &pruneCmd{}
		flags.StringVar(&cmd.configPath, "config", "", "Path to but-next.toml. Defaults to the usual search locations.")
		flags.StringVar(&cmd.repoPath, "repo", "", "Repository path. Overrides the config file's repo_path.")
		flags.StringVar(&cmd.target, "target", "", "Target whose snapshots should be pruned. Required.")
		flags.IntVar(&cmd.keep, "keep", 0, "Number of most recent snapshots to keep. Required, must be > 0.")
		return cmd
	})
}

func (c *pruneCmd) Describe() string {
	return "Delete old snapshots of a target and reclaim their unreferenced blobs."
}

func (c *pruneCmd) Usage() {
	fmt.Fprintf(cmdmain.Stderr, "Usage: butnext prune -target=name -keep=N\n")
}

func (c *pruneCmd) Examples() []string { return []string{"-target=home -keep=7"} }

func (c *pruneCmd) RunCommand(args []string) error {
	if c.target == "" || c.keep <= 0 {
		return cmdmain.UsageError("both -target and a positive -keep are required")
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	repoPath := c.repoPath
	if repoPath == "" {
		repoPath = cfg.RepoPath
	}

	res, err := prune.Prune(repoPath, c.target, c.keep)
	if err != nil {
		return err
	}
	for _, id := range res.Deleted {
		fmt.Fprintf(os.Stdout, "deleted %s\n", id)
	}
	fmt.Fprintf(os.Stdout, "%d snapshots deleted, %d bytes freed\n", len(res.Deleted), res.FreedBytes)
	return nil
}
