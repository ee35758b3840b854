// Package xlerr defines the tagged error kinds shared across the decoder.
//
// Every fallible operation in the codestream/container/entropy layers
// returns (or wraps) one of these kinds, per spec §7. Suspension
// (OutOfBounds) is distinguished from a hard parse failure so that the
// codestream and box parsers can convert it into NeedsMoreInput while
// letting everything else propagate to the caller unchanged.
package xlerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind tags a decode error with the spec's named failure condition.
type Kind int

const (
	OutOfBounds Kind = iota
	InvalidSignature
	InvalidBox
	InvalidHuffman
	AlphabetTooLargeHuff
	InvalidPredictor
	InvalidNumNonZeros
	EndOfBlockResidualNonZeros
	UnexpectedLz77Repeat
	ArithmeticOverflow
	Lz77Disallowed
	SectionTooShort
	InvalidChannelRange
	MixingDifferentChannels
	TooManySqueezes
	SplinesTooMany
	SplinesCoordinatesLimit
	SplinesPointOutOfRange
	SplinesAreaTooLarge
	SplinesDeltaLimit
	SplinesDistanceTooLarge
	SplineAdjacentCoincidingControlPoints
	PipelineChannelTypeMismatch
	PipelineChannelUnused
	PipelineShiftAfterExpand
	NumPassesTooLarge
	InvalidEcUpsampling
	NotGrayscale
	InvalidPadding
	UnsavedReference
)

func (k Kind) String() string {
	switch k {
	case OutOfBounds:
		return "OutOfBounds"
	case InvalidSignature:
		return "InvalidSignature"
	case InvalidBox:
		return "InvalidBox"
	case InvalidHuffman:
		return "InvalidHuffman"
	case AlphabetTooLargeHuff:
		return "AlphabetTooLargeHuff"
	case InvalidPredictor:
		return "InvalidPredictor"
	case InvalidNumNonZeros:
		return "InvalidNumNonZeros"
	case EndOfBlockResidualNonZeros:
		return "EndOfBlockResidualNonZeros"
	case UnexpectedLz77Repeat:
		return "UnexpectedLz77Repeat"
	case ArithmeticOverflow:
		return "ArithmeticOverflow"
	case Lz77Disallowed:
		return "Lz77Disallowed"
	case SectionTooShort:
		return "SectionTooShort"
	case InvalidChannelRange:
		return "InvalidChannelRange"
	case MixingDifferentChannels:
		return "MixingDifferentChannels"
	case TooManySqueezes:
		return "TooManySqueezes"
	case SplinesTooMany:
		return "SplinesTooMany"
	case SplinesCoordinatesLimit:
		return "SplinesCoordinatesLimit"
	case SplinesPointOutOfRange:
		return "SplinesPointOutOfRange"
	case SplinesAreaTooLarge:
		return "SplinesAreaTooLarge"
	case SplinesDeltaLimit:
		return "SplinesDeltaLimit"
	case SplinesDistanceTooLarge:
		return "SplinesDistanceTooLarge"
	case SplineAdjacentCoincidingControlPoints:
		return "SplineAdjacentCoincidingControlPoints"
	case PipelineChannelTypeMismatch:
		return "PipelineChannelTypeMismatch"
	case PipelineChannelUnused:
		return "PipelineChannelUnused"
	case PipelineShiftAfterExpand:
		return "PipelineShiftAfterExpand"
	case NumPassesTooLarge:
		return "NumPassesTooLarge"
	case InvalidEcUpsampling:
		return "InvalidEcUpsampling"
	case NotGrayscale:
		return "NotGrayscale"
	case InvalidPadding:
		return "InvalidPadding"
	case UnsavedReference:
		return "UnsavedReference"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type carried through the decoder.
type Error struct {
	Kind   Kind
	Detail string
	// Need is populated for Kind == OutOfBounds: the number of
	// additional bytes/bits the caller must supply before retrying.
	Need uint64
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// New builds a bare Error of the given kind.
func New(k Kind, detail string, args ...any) error {
	return &Error{Kind: k, Detail: fmt.Sprintf(detail, args...)}
}

// NeedMore builds an OutOfBounds error recording how much more input
// (bytes or bits, context-dependent) is required.
func NeedMore(need uint64) error {
	return &Error{Kind: OutOfBounds, Need: need, Detail: fmt.Sprintf("need %d more", need)}
}

// Wrap annotates err with additional context while preserving the Kind
// recoverable via As. Used by the frame decoder to label which part of a
// frame (header, TOC, sections, modular/VarDCT steps) failed (see
// SPEC_FULL.md "Error handling").
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, context)
}

// As reports whether err (or any error it wraps) is an *Error. and
// returns it.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err's Kind (unwrapping through Wrap/pkg/errors
// annotations) equals k.
func Is(err error, k Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == k
}
