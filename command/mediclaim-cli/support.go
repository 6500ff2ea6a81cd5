// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/urfave/cli"

	"github.com/mediclaim/mediclaimd/fault"
	"github.com/mediclaim/mediclaimd/record"
	"github.com/mediclaim/mediclaimd/store"
)

// open the database named on the command line and parse the linear id
// argument; the caller must close the store
func openStore(c *cli.Context) (*store.Store, record.LinearId, error) {

	databaseFile := c.String("database")
	if "" == databaseFile {
		return nil, record.LinearId{}, fault.InvalidFileName
	}

	linearId, err := record.LinearIdFromString(c.String("linear-id"))
	if nil != err {
		return nil, record.LinearId{}, err
	}

	db, err := store.New(databaseFile)
	if nil != err {
		return nil, record.LinearId{}, err
	}

	return db, linearId, nil
}
