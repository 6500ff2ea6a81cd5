// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/mediclaim/mediclaimd/configuration"
	"github.com/mediclaim/mediclaimd/fault"
)

func runConfiguration(c *cli.Context) error {

	configurationFile := c.String("config-file")
	if "" == configurationFile {
		return fault.InvalidFileName
	}

	cfg, err := configuration.GetConfiguration(configurationFile)
	if nil != err {
		return err
	}

	printJson(os.Stdout, cfg)
	return nil
}
