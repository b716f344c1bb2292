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
	"errors"
	"flag"
	"fmt"
	"os"

	"but-next.dev/pkg/cmdmain"
	"but-next.dev/pkg/config"
	"but-next.dev/pkg/repoerr"
)

type initCmd struct {
	output string
}

func init() {
	cmdmain.RegisterCommand("init", func(flags *flag.FlagSet) cmdmain.CommandRunner {
		cmd := &initCmd{}
		flags.StringVar(&cmd.output, "output", "but-next.toml", "Path to write the new configuration file.")
		return cmd
	})
}

func (c *initCmd) Describe() string { return "Write a starter configuration file." }

func (c *initCmd) Usage() {
	fmt.Fprintf(cmdmain.Stderr, "Usage: butnext init [-output=but-next.toml]\n")
}

func (c *initCmd) Examples() []string { return []string{"", "-output=/etc/but-next.toml"} }

func (c *initCmd) RunCommand(args []string) error {
	if err := config.WriteDefault(c.output); err != nil {
		var exists *repoerr.AlreadyExists
		if errors.As(err, &exists) {
			return fmt.Errorf("config file already exists: %s", c.output)
		}
		return err
	}
	fmt.Fprintf(os.Stdout, "wrote %s; edit it to add your backup targets\n", c.output)
	return nil
}
