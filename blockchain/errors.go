// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The Shield developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "fmt"

// ErrorCode identifies a kind of error returned by header verification
// or chain storage.
type ErrorCode int

const (
	// ErrDecode indicates malformed header bytes: wrong length or a
	// malformed bits field.
	ErrDecode ErrorCode = iota

	// ErrLinkage indicates a header's PrevBlock does not match the
	// expected predecessor hash.
	ErrLinkage

	// ErrBits indicates a header's declared bits disagree with the
	// target engine's recomputed target.
	ErrBits

	// ErrPoW indicates a header's proof-of-work hash did not beat its
	// target, for an algorithm that is actually checked.
	ErrPoW

	// ErrMissingHeader indicates the target engine needed a header
	// that is not present in the store.
	ErrMissingHeader

	// ErrStateCorrupt indicates a chain's headers file is missing
	// while its headers directory still exists.
	ErrStateCorrupt

	// ErrStateLost indicates the entire headers directory is missing.
	ErrStateLost
)

var errorCodeStrings = map[ErrorCode]string{
	ErrDecode:        "DECODE",
	ErrLinkage:       "LINKAGE",
	ErrBits:          "BITS",
	ErrPoW:           "POW",
	ErrMissingHeader: "MISSING_HEADER",
	ErrStateCorrupt:  "STATE_CORRUPT",
	ErrStateLost:     "STATE_LOST",
}

// String returns the tag associated with the error code.
func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return "UNKNOWN"
}

// RuleError identifies an error verifying a header or chunk against
// the consensus rules this store enforces. It carries the machine
// readable ErrorCode the coordinator and its callers switch on, plus a
// human description for logs.
type RuleError struct {
	ErrorCode   ErrorCode
	Description string
}

// Error satisfies the error interface.
func (e RuleError) Error() string {
	return e.Description
}

// Is lets errors.Is match RuleError values by ErrorCode alone, ignoring
// Description, so a caller can write errors.Is(err, RuleError{ErrorCode: ErrStateLost}).
func (e RuleError) Is(target error) bool {
	t, ok := target.(RuleError)
	return ok && t.ErrorCode == e.ErrorCode
}

// ruleError creates a RuleError given a code and a formatted
// description.
func ruleError(c ErrorCode, format string, args ...interface{}) RuleError {
	return RuleError{ErrorCode: c, Description: fmt.Sprintf(format, args...)}
}

// AssertError identifies an error that indicates an internal code
// consistency issue and should be treated as an unexpected condition
// rather than a verification failure.
type AssertError string

// Error satisfies the error interface.
func (e AssertError) Error() string {
	return "assertion failed: " + string(e)
}
