// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package record

import (
	"fmt"

	"github.com/mediclaim/mediclaimd/fault"
	"github.com/mediclaim/mediclaimd/identity"
)

// Role - the organisational account roles
//
// role names are globally unique; each resolves to exactly one active
// identity at a time via the role directory
type Role uint64

// possible role values
const (
	NoRole               Role = iota // this must be the first value
	InsurerClaimsOfficer Role = iota
	InsurerFinanceClerk  Role = iota
	HospitalRegistrar    Role = iota
	HospitalFinanceClerk Role = iota
	roleLimit            Role = iota // this must be the last value
)

// Account - a (party identity, role) pair as carried inside a record
//
// the identity is a single-use pseudonymous key minted for one
// transition, never the long-term key of the organisation
type Account struct {
	Identity *identity.Identity `json:"identity"` // base58
	Role     Role               `json:"role"`     // role name
}

// PartyRole - logical party tags used to derive required signers
type PartyRole uint64

// possible party tags
const (
	PartyPatient  PartyRole = iota + 1 // the policy holder
	PartyHospital PartyRole = iota + 1 // the care provider
	PartyInsurer  PartyRole = iota + 1 // the policy issuer
	PartyPayer    PartyRole = iota + 1 // the settling party
	PartyPayee    PartyRole = iota + 1 // the settled party
)

// internal conversion
func roleToString(role Role) ([]byte, error) {
	switch role {
	case InsurerClaimsOfficer:
		return []byte("insurer-claims-officer"), nil
	case InsurerFinanceClerk:
		return []byte("insurer-finance-clerk"), nil
	case HospitalRegistrar:
		return []byte("hospital-registrar"), nil
	case HospitalFinanceClerk:
		return []byte("hospital-finance-clerk"), nil
	default:
		return []byte{}, fault.UnknownRole
	}
}

// RoleFromString - convert a role name to a role
func RoleFromString(name string) (Role, error) {
	switch name {
	case "insurer-claims-officer":
		return InsurerClaimsOfficer, nil
	case "insurer-finance-clerk":
		return InsurerFinanceClerk, nil
	case "hospital-registrar":
		return HospitalRegistrar, nil
	case "hospital-finance-clerk":
		return HospitalFinanceClerk, nil
	default:
		return NoRole, fault.UnknownRole
	}
}

// RoleFromUint64 - convert a number to a role
func RoleFromUint64(n uint64) (Role, error) {
	if Role(n) > NoRole && Role(n) < roleLimit {
		return Role(n), nil
	}
	return NoRole, fault.UnknownRole
}

// String - convert a role to its name
func (role Role) String() string {
	s, err := roleToString(role)
	if nil != err {
		return fmt.Sprintf("*unknown-role:%d*", uint64(role))
	}
	return string(s)
}

// IsValid - valid role if in the defined range
func (role Role) IsValid() bool {
	return role > NoRole && role < roleLimit
}

// MarshalText - convert a role into JSON
func (role Role) MarshalText() ([]byte, error) {
	return roleToString(role)
}

// UnmarshalText - convert role name to a role from JSON
func (role *Role) UnmarshalText(s []byte) error {
	r, err := RoleFromString(string(s))
	if nil != err {
		return err
	}
	*role = r
	return nil
}

// RoleOwner - map a logical party tag to the identity on the record
func (preAuthorization *PreAuthorization) RoleOwner(party PartyRole) (*identity.Identity, error) {
	switch party {
	case PartyPatient:
		return preAuthorization.PolicyHolder, nil
	case PartyHospital:
		return preAuthorization.ProviderAccount.Identity, nil
	case PartyInsurer:
		return preAuthorization.PolicyIssuerAccount.Identity, nil
	default:
		return nil, fault.UnknownRole
	}
}

// RoleOwner - map a logical party tag to the identity on the record
func (receipt *PaymentReceipt) RoleOwner(party PartyRole) (*identity.Identity, error) {
	switch party {
	case PartyPayer:
		return receipt.PayerAccount.Identity, nil
	case PartyPayee:
		return receipt.PayeeAccount.Identity, nil
	default:
		return nil, fault.UnknownRole
	}
}
