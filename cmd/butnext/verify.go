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

	"but-next.dev/pkg/blobstore"
	"but-next.dev/pkg/cmdmain"
	"but-next.dev/pkg/config"
	"but-next.dev/pkg/manifest"
)

type verifyCmd struct {
	configPath string
	repoPath   string
	snapshot   string
}

func init() {
	cmdmain.RegisterCommand("verify", func(flags *flag.FlagSet) cmdmain.CommandRunner {
		cmd := &verifyCmd{}
		flags.StringVar(&cmd.configPath, "config", "", "Path to but-next.toml. Defaults to the usual search locations.")
		flags.StringVar(&cmd.repoPath, "repo", "", "Repository path. Overrides the config file's repo_path.")
		flags.StringVar(&cmd.snapshot, "snapshot", "", "Snapshot ID or unambiguous prefix to verify. Required.")
		return cmd
	})
}

func (c *verifyCmd) Describe() string {
	return "Check that every blob a snapshot references is still present."
}

func (c *verifyCmd) Usage() {
	fmt.Fprintf(cmdmain.Stderr, "Usage: butnext verify -snapshot=id\n")
}

func (c *verifyCmd) Examples() []string { return []string{"-snapshot=20260101-120000-home"} }

// RunCommand checks blob presence only — it does not decode or
// hash-verify content, which is restore's -verify flag's job.
func (c *verifyCmd) RunCommand(args []string) error {
	if c.snapshot == "" {
		return cmdmain.UsageError("-snapshot is required")
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

	var missing int
	for path, entry := range snap.Files {
		if !blobstore.Exists(repoPath, entry.Hash) {
			missing++
			fmt.Fprintf(os.Stdout, "missing blob for %s (%s)\n", path, entry.Hash)
		}
	}

	if missing > 0 {
		return fmt.Errorf("%d of %d files have missing blobs", missing, len(snap.Files))
	}
	fmt.Fprintf(os.Stdout, "all %d files verified\n", len(snap.Files))
	return nil
}
