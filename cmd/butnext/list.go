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
	"but-next.dev/pkg/manifest"
)

type listCmd struct {
	configPath string
	repoPath   string
	target     string
}

func init() {
	cmdmain.RegisterCommand("list", func(flags *flag.FlagSet) cmdmain.CommandRunner {
		cmd := &listCmd{}
		flags.StringVar(&cmd.configPath, "config", "", "Path to but-next.toml. Defaults to the usual search locations.")
		flags.StringVar(&cmd.repoPath, "repo", "", "Repository path. Overrides the config file's repo_path.")
		flags.StringVar(&cmd.target, "target", "", "List only snapshots of this target.")
		return cmd
	})
}

func (c *listCmd) Describe() string { return "List snapshots in a repository, oldest first." }

func (c *listCmd) Usage() {
	fmt.Fprintf(cmdmain.Stderr, "Usage: butnext list [-target=name]\n")
}

func (c *listCmd) Examples() []string { return []string{"", "-target=home"} }

func (c *listCmd) RunCommand(args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	repoPath := c.repoPath
	if repoPath == "" {
		repoPath = cfg.RepoPath
	}

	var snaps []*manifest.Snapshot
	if c.target != "" {
		snaps, err = manifest.ListForTarget(repoPath, c.target)
	} else {
		snaps, err = manifest.List(repoPath)
	}
	if err != nil {
		return err
	}

	for _, s := range snaps {
		fmt.Fprintf(os.Stdout, "%s\t%s\t%d files\t%d bytes\n", s.ID, s.Target, s.Stats.TotalFiles, s.Stats.TotalSize)
	}
	return nil
}
