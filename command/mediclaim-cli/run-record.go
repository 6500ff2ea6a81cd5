// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/mediclaim/mediclaimd/record"
)

func runRecord(c *cli.Context) error {

	db, linearId, err := openStore(c)
	if nil != err {
		return err
	}
	defer db.Close()

	latest, versionId, err := db.LatestByLinearId(linearId)
	if nil != err {
		return err
	}

	name, _ := record.RecordName(latest)
	reply := struct {
		Record    string      `json:"record"`
		VersionId string      `json:"versionId"`
		Data      interface{} `json:"data"`
	}{
		Record:    name,
		VersionId: versionId.String(),
		Data:      latest,
	}

	printJson(os.Stdout, reply)
	return nil
}
