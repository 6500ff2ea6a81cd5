// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/urfave/cli"
)

func runHistory(c *cli.Context) error {

	db, linearId, err := openStore(c)
	if nil != err {
		return err
	}
	defer db.Close()

	versionIds, err := db.History(linearId)
	if nil != err {
		return err
	}

	versions := make([]string, len(versionIds))
	for i, versionId := range versionIds {
		versions[i] = versionId.String()
	}

	reply := struct {
		LinearId string   `json:"linearId"`
		Versions []string `json:"versions"`
	}{
		LinearId: linearId.String(),
		Versions: versions,
	}

	printJson(os.Stdout, reply)
	return nil
}
