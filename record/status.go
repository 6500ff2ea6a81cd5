// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package record

import (
	"fmt"

	"github.com/mediclaim/mediclaimd/fault"
)

// PreAuthorizationStatus - lifecycle of a pre-authorization
//
// the only permitted transition is CREATED → APPROVED
type PreAuthorizationStatus uint64

// possible pre-authorization status values
const (
	PreAuthorizationCreated  PreAuthorizationStatus = iota
	PreAuthorizationApproved PreAuthorizationStatus = iota
	preAuthorizationStatusLimit
)

// PaymentReceiptStatus - lifecycle of a payment receipt
//
// creation is terminal, no further transition is modelled
type PaymentReceiptStatus uint64

// possible payment receipt status values
const (
	PaymentReceiptCreated PaymentReceiptStatus = iota
	paymentReceiptStatusLimit
)

// String - convert a pre-authorization status to text
func (status PreAuthorizationStatus) String() string {
	switch status {
	case PreAuthorizationCreated:
		return "CREATED"
	case PreAuthorizationApproved:
		return "APPROVED"
	default:
		return fmt.Sprintf("*unknown-status:%d*", uint64(status))
	}
}

// IsValid - status within the defined range
func (status PreAuthorizationStatus) IsValid() bool {
	return status < preAuthorizationStatusLimit
}

// MarshalText - convert a pre-authorization status into JSON
func (status PreAuthorizationStatus) MarshalText() ([]byte, error) {
	if !status.IsValid() {
		return nil, fault.InvalidStatusTransition
	}
	return []byte(status.String()), nil
}

// UnmarshalText - convert status name from JSON
func (status *PreAuthorizationStatus) UnmarshalText(s []byte) error {
	switch string(s) {
	case "CREATED":
		*status = PreAuthorizationCreated
	case "APPROVED":
		*status = PreAuthorizationApproved
	default:
		return fault.InvalidStatusTransition
	}
	return nil
}

// String - convert a payment receipt status to text
func (status PaymentReceiptStatus) String() string {
	switch status {
	case PaymentReceiptCreated:
		return "CREATED"
	default:
		return fmt.Sprintf("*unknown-status:%d*", uint64(status))
	}
}

// IsValid - status within the defined range
func (status PaymentReceiptStatus) IsValid() bool {
	return status < paymentReceiptStatusLimit
}

// MarshalText - convert a payment receipt status into JSON
func (status PaymentReceiptStatus) MarshalText() ([]byte, error) {
	if !status.IsValid() {
		return nil, fault.InvalidStatusTransition
	}
	return []byte(status.String()), nil
}

// UnmarshalText - convert status name from JSON
func (status *PaymentReceiptStatus) UnmarshalText(s []byte) error {
	switch string(s) {
	case "CREATED":
		*status = PaymentReceiptCreated
	default:
		return fault.InvalidStatusTransition
	}
	return nil
}
