// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/mediclaim/mediclaimd/identity"
)

func runGenerate(c *cli.Context) error {

	public, private, err := identity.NewKeyPair()
	if nil != err {
		return err
	}

	keyPair := struct {
		Identity   string `json:"identity"`
		PrivateKey string `json:"privateKey"`
	}{
		Identity:   public.String(),
		PrivateKey: private.String(),
	}

	printJson(os.Stdout, keyPair)
	return nil
}
