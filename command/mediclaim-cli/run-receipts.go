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

func runReceipts(c *cli.Context) error {

	db, linearId, err := openStore(c)
	if nil != err {
		return err
	}
	defer db.Close()

	receipts, err := db.ByReference(linearId)
	if nil != err {
		return err
	}

	total := record.Amount(0)
	for _, receipt := range receipts {
		total += receipt.Amount
	}

	reply := struct {
		PreAuthorizationId string                   `json:"preAuthorizationId"`
		Settled            record.Amount            `json:"settled,string"`
		Receipts           []*record.PaymentReceipt `json:"receipts"`
	}{
		PreAuthorizationId: linearId.String(),
		Settled:            total,
		Receipts:           receipts,
	}

	printJson(os.Stdout, reply)
	return nil
}
