// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"fmt"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type (
	AuthorizationError GenericError
	ValidationError    GenericError
	StateError         GenericError
	TimingError        GenericError
	IntegrityError     GenericError
	ResourceError      GenericError
	NotFoundError      GenericError
	ProcessError       GenericError
)

// common errors - keep in alphabetic order
var (
	ErrActivationTooEarly           = TimingError("activation delay has not elapsed")
	ErrAlreadyInitialised           = ProcessError("already initialised")
	ErrBatchTooLarge                = ResourceError("batch exceeds maximum size")
	ErrCertificateFileAlreadyExists = ProcessError("certificate file already exists")
	ErrCodeFingerprintMismatch      = IntegrityError("code fingerprint mismatch")
	ErrCodeTooLarge                 = ResourceError("code exceeds maximum size")
	ErrDeployedContentMismatch      = StateError("address already deployed with different code")
	ErrDuplicateRouteKey            = ValidationError("duplicate route key in batch")
	ErrEmptyBatch                   = ValidationError("batch is empty")
	ErrEntryCountMismatch           = ValidationError("entries and proofs differ in count")
	ErrFeeNotSatisfied              = ResourceError("fee not satisfied")
	ErrFrozen                       = StateError("instance is frozen")
	ErrInvalidAddress               = ValidationError("address is invalid")
	ErrInvalidCount                 = ValidationError("count is invalid")
	ErrInvalidIdentity              = ValidationError("identity is invalid")
	ErrInvalidSalt                  = ValidationError("salt is invalid")
	ErrInvalidSignature             = ValidationError("invalid signature")
	ErrKeyFileAlreadyExists         = ProcessError("key file already exists")
	ErrMissingParameters            = ValidationError("missing parameters")
	ErrNoPendingRoot                = StateError("no pending root")
	ErrNotADigest                   = ValidationError("not a digest")
	ErrNotARouteKey                 = ValidationError("not a route key")
	ErrNotAuthorised                = AuthorizationError("caller lacks required role")
	ErrNotInitialised               = ProcessError("not initialised")
	ErrPendingRootExists            = StateError("a different pending root already exists")
	ErrProofLengthMismatch          = ValidationError("proof and direction bit lengths differ")
	ErrProofVerificationFailed      = ValidationError("merkle proof verification failed")
	ErrRateLimiting                 = ResourceError("rate limit exceeded")
	ErrResultTooLarge               = ResourceError("handler result exceeds maximum size")
	ErrRootAlreadyConsumed          = StateError("root has already been activated")
	ErrStagedSetOverflow            = ResourceError("staged route set is full")
	ErrStorageDowngrade             = ProcessError("database version is newer than this binary")
	ErrTransactionInUse             = ProcessError("transaction already in use")
	ErrUnknownChunk                 = NotFoundError("content chunk not found")
	ErrUnknownDeployment            = NotFoundError("deployment not found")
	ErrUnknownHandler               = NotFoundError("handler not found")
	ErrUnknownRoute                 = NotFoundError("route key is not bound")
	ErrWrongEpoch                   = StateError("epoch must be active epoch + 1")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e AuthorizationError) Error() string { return string(e) }
func (e ValidationError) Error() string    { return string(e) }
func (e StateError) Error() string         { return string(e) }
func (e TimingError) Error() string        { return string(e) }
func (e IntegrityError) Error() string     { return string(e) }
func (e ResourceError) Error() string      { return string(e) }
func (e NotFoundError) Error() string      { return string(e) }
func (e ProcessError) Error() string       { return string(e) }

// determine the class of an error
func IsErrAuthorization(e error) bool { _, ok := e.(AuthorizationError); return ok }
func IsErrValidation(e error) bool    { _, ok := e.(ValidationError); return ok }
func IsErrState(e error) bool         { _, ok := e.(StateError); return ok }
func IsErrTiming(e error) bool        { _, ok := e.(TimingError); return ok }
func IsErrIntegrity(e error) bool     { _, ok := e.(IntegrityError); return ok }
func IsErrResource(e error) bool      { _, ok := e.(ResourceError); return ok }
func IsErrNotFound(e error) bool      { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool       { _, ok := e.(ProcessError); return ok }

// formatted constructors
//
// used where the error must carry expected/actual context so that
// off-chain tooling can diagnose a failure without further queries;
// the result still satisfies the matching IsErr* predicate
func ValidationErrorf(format string, arguments ...interface{}) error {
	return ValidationError(fmt.Sprintf(format, arguments...))
}

func StateErrorf(format string, arguments ...interface{}) error {
	return StateError(fmt.Sprintf(format, arguments...))
}

func TimingErrorf(format string, arguments ...interface{}) error {
	return TimingError(fmt.Sprintf(format, arguments...))
}

func IntegrityErrorf(format string, arguments ...interface{}) error {
	return IntegrityError(fmt.Sprintf(format, arguments...))
}

func ResourceErrorf(format string, arguments ...interface{}) error {
	return ResourceError(fmt.Sprintf(format, arguments...))
}

func ProcessErrorf(format string, arguments ...interface{}) error {
	return ProcessError(fmt.Sprintf(format, arguments...))
}
