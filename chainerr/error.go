// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainerr defines the error taxonomy shared across the codec,
// covenant state machine, coin view, tx rules and block connector. It
// follows the teacher repo's ruleError idiom (a typed ErrorKind plus a
// constructor that wraps it with a free-text reason) but is promoted to
// its own package since spec-level error kinds span several components.
package chainerr

import (
	"errors"
	"fmt"
)

// Class groups ErrorKinds into the seven coarse categories used by the
// block connector to decide whether a failing tx is also block-fatal and
// by the networking layer (out of scope here) to size a ban score.
type Class uint8

const (
	// ClassDecode indicates malformed byte input (C1).
	ClassDecode Class = iota
	// ClassStructural indicates a context-free check failure (C7).
	ClassStructural
	// ClassContextual indicates a contextual check failure (C8).
	ClassContextual
	// ClassCovenant indicates a covenant state machine failure (C5).
	ClassCovenant
	// ClassScript indicates an error propagated from the script
	// collaborator (out of scope here; this core only forwards it).
	ClassScript
	// ClassStateConflict indicates two txs within one block or mempool
	// view disagree about the same name (e.g. DuplicateOpen).
	ClassStateConflict
	// ClassInternal indicates an invariant violation. Fatal; the
	// connector aborts and refuses to advance the tip.
	ClassInternal
)

func (c Class) String() string {
	switch c {
	case ClassDecode:
		return "Decode"
	case ClassStructural:
		return "Structural"
	case ClassContextual:
		return "Contextual"
	case ClassCovenant:
		return "Covenant"
	case ClassScript:
		return "Script"
	case ClassStateConflict:
		return "StateConflict"
	case ClassInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// ErrorKind identifies a specific consensus error condition. It is a
// sentinel implementing the error interface so callers can compare with
// errors.Is without needing a type switch.
type ErrorKind string

// Error satisfies the error interface.
func (e ErrorKind) Error() string {
	return string(e)
}

// The full kind enumeration. Subkinds of ClassCovenant are listed
// separately below per spec §7.
const (
	// Decode (C1).
	ErrDecodeShortRead   = ErrorKind("ErrDecodeShortRead")
	ErrDecodeOutOfRange  = ErrorKind("ErrDecodeOutOfRange")
	ErrDecodeTrailingData = ErrorKind("ErrDecodeTrailingData")

	// Structural (C7).
	ErrNoInputs          = ErrorKind("ErrNoInputs")
	ErrNoOutputs         = ErrorKind("ErrNoOutputs")
	ErrTxTooBig          = ErrorKind("ErrTxTooBig")
	ErrTxWeightTooHigh   = ErrorKind("ErrTxWeightTooHigh")
	ErrOutputValueRange  = ErrorKind("ErrOutputValueRange")
	ErrOutputTotalRange  = ErrorKind("ErrOutputTotalRange")
	ErrDuplicateInput    = ErrorKind("ErrDuplicateInput")
	ErrBadCoinbaseShape  = ErrorKind("ErrBadCoinbaseShape")
	ErrBadCovenantShape  = ErrorKind("ErrBadCovenantShape")

	// Contextual (C8).
	ErrMissingPrevout     = ErrorKind("ErrMissingPrevout")
	ErrImmatureCoinbase   = ErrorKind("ErrImmatureCoinbase")
	ErrInsufficientFee    = ErrorKind("ErrInsufficientFee")
	ErrFeeOutOfRange      = ErrorKind("ErrFeeOutOfRange")
	ErrTooManySigops      = ErrorKind("ErrTooManySigops")
	ErrDoubleSpend        = ErrorKind("ErrDoubleSpend")

	// Covenant (C5) subkinds.
	ErrBadPhase         = ErrorKind("ErrBadPhase")
	ErrBadItems         = ErrorKind("ErrBadItems")
	ErrBadBlind         = ErrorKind("ErrBadBlind")
	ErrBadOwner         = ErrorKind("ErrBadOwner")
	ErrDuplicateOpen    = ErrorKind("ErrDuplicateOpen")
	ErrClaimInvalid     = ErrorKind("ErrClaimInvalid")
	ErrTransferNotReady = ErrorKind("ErrTransferNotReady")
	ErrRevoked          = ErrorKind("ErrRevoked")
	ErrCapExceeded      = ErrorKind("ErrCapExceeded")

	// StateConflict.
	ErrDuplicateOpenInBlock = ErrorKind("ErrDuplicateOpenInBlock")

	// Block connector (C9).
	ErrUnknownParent      = ErrorKind("ErrUnknownParent")
	ErrBadBlockTimestamp  = ErrorKind("ErrBadBlockTimestamp")
	ErrBadProofOfWork     = ErrorKind("ErrBadProofOfWork")
	ErrBadMerkleRoot      = ErrorKind("ErrBadMerkleRoot")
	ErrBadTreeRoot        = ErrorKind("ErrBadTreeRoot")
	ErrBadWitnessRoot     = ErrorKind("ErrBadWitnessRoot")
	ErrBadSubsidy         = ErrorKind("ErrBadSubsidy")
	ErrBlockWeightTooHigh = ErrorKind("ErrBlockWeightTooHigh")
	ErrNoUndoRecord       = ErrorKind("ErrNoUndoRecord")

	// Internal.
	ErrInvariantViolation = ErrorKind("ErrInvariantViolation")
)

// classOf maps a kind to its coarse class. Unknown kinds are Internal,
// since an unrecognized kind is itself a programmer error.
var classOf = map[ErrorKind]Class{
	ErrDecodeShortRead:    ClassDecode,
	ErrDecodeOutOfRange:   ClassDecode,
	ErrDecodeTrailingData: ClassDecode,

	ErrNoInputs:         ClassStructural,
	ErrNoOutputs:        ClassStructural,
	ErrTxTooBig:         ClassStructural,
	ErrTxWeightTooHigh:  ClassStructural,
	ErrOutputValueRange: ClassStructural,
	ErrOutputTotalRange: ClassStructural,
	ErrDuplicateInput:   ClassStructural,
	ErrBadCoinbaseShape: ClassStructural,
	ErrBadCovenantShape: ClassStructural,

	ErrMissingPrevout:   ClassContextual,
	ErrImmatureCoinbase: ClassContextual,
	ErrInsufficientFee:  ClassContextual,
	ErrFeeOutOfRange:    ClassContextual,
	ErrTooManySigops:    ClassContextual,
	ErrDoubleSpend:      ClassContextual,

	ErrBadPhase:         ClassCovenant,
	ErrBadItems:         ClassCovenant,
	ErrBadBlind:         ClassCovenant,
	ErrBadOwner:         ClassCovenant,
	ErrDuplicateOpen:    ClassCovenant,
	ErrClaimInvalid:     ClassCovenant,
	ErrTransferNotReady: ClassCovenant,
	ErrRevoked:          ClassCovenant,
	ErrCapExceeded:      ClassCovenant,

	ErrDuplicateOpenInBlock: ClassStateConflict,

	ErrUnknownParent:      ClassContextual,
	ErrBadBlockTimestamp:  ClassContextual,
	ErrBadProofOfWork:     ClassContextual,
	ErrBadMerkleRoot:      ClassStructural,
	ErrBadTreeRoot:        ClassStructural,
	ErrBadWitnessRoot:     ClassStructural,
	ErrBadSubsidy:         ClassContextual,
	ErrBlockWeightTooHigh: ClassStructural,
	ErrNoUndoRecord:       ClassInternal,

	ErrInvariantViolation: ClassInternal,
}

// banScoreOf assigns the ban score the spec's §7 user-visible behavior
// calls for: 100 for anything consensus-fatal, 0-50 for policy-grade.
// This core never acts on the score itself; it only attaches it so the
// (out of scope) networking layer can.
var banScoreOf = map[ErrorKind]int{
	ErrDecodeShortRead:    100,
	ErrDecodeOutOfRange:   100,
	ErrDecodeTrailingData: 100,

	ErrNoInputs:         100,
	ErrNoOutputs:        100,
	ErrTxTooBig:         100,
	ErrTxWeightTooHigh:  100,
	ErrOutputValueRange: 100,
	ErrOutputTotalRange: 100,
	ErrDuplicateInput:   100,
	ErrBadCoinbaseShape: 100,
	ErrBadCovenantShape: 100,

	ErrMissingPrevout:   50,
	ErrImmatureCoinbase: 100,
	ErrInsufficientFee:  100,
	ErrFeeOutOfRange:    100,
	ErrTooManySigops:    100,
	ErrDoubleSpend:      100,

	ErrBadPhase:         100,
	ErrBadItems:         100,
	ErrBadBlind:         100,
	ErrBadOwner:         100,
	ErrDuplicateOpen:    100,
	ErrClaimInvalid:     100,
	ErrTransferNotReady: 100,
	ErrRevoked:          100,
	ErrCapExceeded:      100,

	ErrDuplicateOpenInBlock: 100,

	ErrUnknownParent:      100,
	ErrBadBlockTimestamp:  50,
	ErrBadProofOfWork:     100,
	ErrBadMerkleRoot:      100,
	ErrBadTreeRoot:        100,
	ErrBadWitnessRoot:     100,
	ErrBadSubsidy:         100,
	ErrBlockWeightTooHigh: 100,
	ErrNoUndoRecord:       0,

	ErrInvariantViolation: 0,
}

// RuleError wraps an ErrorKind with a free-text reason, mirroring the
// teacher's ruleError(ErrXxx, str) values. The kind is always available
// through errors.Is/errors.As.
type RuleError struct {
	Kind   ErrorKind
	Reason string
}

// Error implements the error interface.
func (e RuleError) Error() string {
	if e.Reason == "" {
		return e.Kind.Error()
	}
	return e.Reason
}

// Unwrap returns the underlying ErrorKind so errors.Is(err, ErrBadPhase)
// works without a type switch.
func (e RuleError) Unwrap() error {
	return e.Kind
}

// Class reports the coarse error class for this error's kind.
func (e RuleError) Class() Class {
	if class, ok := classOf[e.Kind]; ok {
		return class
	}
	return ClassInternal
}

// BanScore reports the ban score the networking layer should assign a
// peer whose block or tx produced this error.
func (e RuleError) BanScore() int {
	return banScoreOf[e.Kind]
}

// New constructs a RuleError, mirroring the teacher's ruleError helper.
func New(kind ErrorKind, reason string) error {
	return RuleError{Kind: kind, Reason: reason}
}

// Newf is New with fmt.Sprintf-style formatting of the reason.
func Newf(kind ErrorKind, format string, args ...interface{}) error {
	return RuleError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Is reports whether err's kind equals target, supporting
// errors.Is(err, chainerr.ErrBadPhase).
func Is(err error, kind ErrorKind) bool {
	return errors.Is(err, kind)
}

// ClassOf reports the coarse class of err if it is (or wraps) a
// RuleError, and ClassInternal with ok=false otherwise.
func ClassOf(err error) (Class, bool) {
	var re RuleError
	if errors.As(err, &re) {
		return re.Class(), true
	}
	return ClassInternal, false
}
