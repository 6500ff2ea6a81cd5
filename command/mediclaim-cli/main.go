// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/urfave/cli"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	defer exitwithstatus.Handler()

	app := cli.NewApp()
	app.Name = "mediclaim-cli"
	app.Usage = "inspect a mediclaimd node from the outside"
	app.Version = version

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "generate",
			Usage:     "generate a key pair, printed and not stored",
			ArgsUsage: "\n   (* = required)",
			Action:    runGenerate,
		},
		{
			Name:      "configuration",
			Usage:     "parse a node configuration file and print it",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "config-file, c",
					Value: "",
					Usage: "*node configuration `FILE`",
				},
			},
			Action: runConfiguration,
		},
		{
			Name:      "record",
			Usage:     "show the latest version of a record in a store",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "database, d",
					Value: "",
					Usage: "*store database `PATH`",
				},
				cli.StringFlag{
					Name:  "linear-id, l",
					Value: "",
					Usage: "*record linear id `HEX`",
				},
			},
			Action: runRecord,
		},
		{
			Name:      "history",
			Usage:     "show every version id of a record in a store",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "database, d",
					Value: "",
					Usage: "*store database `PATH`",
				},
				cli.StringFlag{
					Name:  "linear-id, l",
					Value: "",
					Usage: "*record linear id `HEX`",
				},
			},
			Action: runHistory,
		},
		{
			Name:      "receipts",
			Usage:     "show the receipts settling a pre-authorization",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "database, d",
					Value: "",
					Usage: "*store database `PATH`",
				},
				cli.StringFlag{
					Name:  "linear-id, l",
					Value: "",
					Usage: "*pre-authorization linear id `HEX`",
				},
			},
			Action: runReceipts,
		},
	}

	err := app.Run(os.Args)
	if nil != err {
		exitwithstatus.Message("terminated with error: %s", err)
	}
}
