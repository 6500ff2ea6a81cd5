// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type (
	ConflictError     GenericError // a racing transition already consumed the version
	ConsistencyError  GenericError // cross-record field mismatch
	ExistsError       GenericError // duplicate registration
	IncompleteError   GenericError // session failed mid-transition, nothing committed
	InvalidError      GenericError // malformed data or transition
	MismatchError     GenericError // resolved account host is not the local node
	NotFoundError     GenericError // directory or store lookup failure
	ProcessError      GenericError // internal processing failure
	UnauthorizedError GenericError // wrong, missing or extra signer
)

// common errors - keep in alphabetic order
var (
	AccountAlreadyExists       = ExistsError("account name already exists")
	AccountNotFound            = NotFoundError("account name is not registered")
	AccountNotLocal            = MismatchError("resolved account host does not match this node")
	CannotDecodeIdentity       = InvalidError("cannot decode identity")
	ChecksumMismatch           = InvalidError("checksum mismatch")
	DataLengthMismatch         = InvalidError("data length mismatch")
	DiagnosisTooLong           = InvalidError("diagnosis description is too long")
	DoubleConsumptionAttempt   = ConflictError("version already consumed by another transition")
	IllegalFieldMutation       = InvalidError("illegal field mutation")
	IncompleteTransition       = IncompleteError("transition could not be completed")
	InvalidAction              = InvalidError("transition action is not allowed here")
	InvalidAmount              = InvalidError("amount is invalid")
	InvalidConsumedCount       = InvalidError("transition consumed record count is invalid")
	InvalidCurrency            = InvalidError("currency is invalid")
	InvalidFileName            = InvalidError("file name is invalid")
	InvalidIdentity            = InvalidError("identity is invalid")
	InvalidKeyLength           = InvalidError("key length is invalid")
	InvalidKeyType             = InvalidError("key type is invalid")
	InvalidLinearId            = InvalidError("linear id is invalid")
	InvalidPrivateKey          = InvalidError("private key is invalid")
	InvalidProducedCount       = InvalidError("transition produced record count is invalid")
	InvalidProducedStatus      = InvalidError("produced record status is invalid")
	InvalidReferenceCount      = InvalidError("transition reference record count is invalid")
	InvalidSignature           = UnauthorizedError("signature is invalid")
	InvalidStatusTransition    = InvalidError("status transition is not permitted")
	InvalidTimeout             = InvalidError("timeout is invalid")
	KeyNotHeld                 = NotFoundError("no private key is held for this identity")
	MembershipNumberIsRequired = InvalidError("membership number is required")
	MembershipNumberTooLong    = InvalidError("membership number is too long")
	MissingAuthorization       = UnauthorizedError("required signer is missing")
	NotIdentity                = InvalidError("encoded data is not an identity")
	NotInitialised             = ProcessError("not initialised")
	NotPrivateKey              = InvalidError("encoded data is not a private key")
	PayeeProviderHostMismatch  = ConsistencyError("payee host does not match provider host of referenced pre-authorization")
	PayerIssuerHostMismatch    = ConsistencyError("payer host does not match policy issuer host of referenced pre-authorization")
	PreAuthorizationNotFound   = NotFoundError("pre-authorization with this linear id is not found")
	RateLimiting               = ProcessError("rate limited")
	RecordNotFound             = NotFoundError("record version is not found")
	ReferenceNotFound          = NotFoundError("referenced record is not found")
	SessionReceiveFailed       = IncompleteError("session receive failed")
	SessionRejected            = IncompleteError("counter-party rejected the transition")
	SessionSendFailed          = IncompleteError("session send failed")
	SignatureTooLong           = InvalidError("signature is too long")
	TransitionAlreadyRecorded  = ExistsError("transition already recorded")
	UnauthorizedSigner         = UnauthorizedError("signer is not authorized")
	UnexpectedPayload          = ProcessError("unexpected session payload")
	UnknownRole                = InvalidError("account role is unknown")
	UnknownTag                 = InvalidError("record tag is unknown")
	VersionMismatch            = InvalidError("version id does not match record content")
	WrongRecordKind            = InvalidError("record kind does not match the action")
)

// Error - the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ConflictError) Error() string     { return string(e) }
func (e ConsistencyError) Error() string  { return string(e) }
func (e ExistsError) Error() string       { return string(e) }
func (e IncompleteError) Error() string   { return string(e) }
func (e InvalidError) Error() string      { return string(e) }
func (e MismatchError) Error() string     { return string(e) }
func (e NotFoundError) Error() string     { return string(e) }
func (e ProcessError) Error() string      { return string(e) }
func (e UnauthorizedError) Error() string { return string(e) }

// determine the class of an error
func IsErrConflict(e error) bool     { _, ok := e.(ConflictError); return ok }
func IsErrConsistency(e error) bool  { _, ok := e.(ConsistencyError); return ok }
func IsErrExists(e error) bool       { _, ok := e.(ExistsError); return ok }
func IsErrIncomplete(e error) bool   { _, ok := e.(IncompleteError); return ok }
func IsErrInvalid(e error) bool      { _, ok := e.(InvalidError); return ok }
func IsErrMismatch(e error) bool     { _, ok := e.(MismatchError); return ok }
func IsErrNotFound(e error) bool     { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool      { _, ok := e.(ProcessError); return ok }
func IsErrUnauthorized(e error) bool { _, ok := e.(UnauthorizedError); return ok }
