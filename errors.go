package elf

import "fmt"

// ParseErrorKind classifies the error kinds this package can raise,
// exhaustively enumerated per the format's supported feature set,
// collapsed into one enum since every kind here is fatal to the
// operation that raised it.
type ParseErrorKind int

const (
	KindTooShort ParseErrorKind = iota
	KindBadMagic
	KindUnsupportedClass
	KindUnsupportedData
	KindUnsupportedVersion
	KindUnsupportedABI
	KindUnsupportedType
	KindUnsupportedMachine
	KindMalformedDynamic
	KindDuplicateDynamic
	KindInconsistentRelocation
	KindRoundTripMismatch
	KindNotParsed
	KindNoRoom
	KindOutOfSegment
	KindAddressUnmapped
	KindNotFound
	KindInvalidConfig
	KindMalformedRecord
	KindUnsupportedLayout
)

func (k ParseErrorKind) String() string {
	switch k {
	case KindTooShort:
		return "TooShort"
	case KindBadMagic:
		return "BadMagic"
	case KindUnsupportedClass:
		return "UnsupportedClass"
	case KindUnsupportedData:
		return "UnsupportedData"
	case KindUnsupportedVersion:
		return "UnsupportedVersion"
	case KindUnsupportedABI:
		return "UnsupportedABI"
	case KindUnsupportedType:
		return "UnsupportedType"
	case KindUnsupportedMachine:
		return "UnsupportedMachine"
	case KindMalformedDynamic:
		return "MalformedDynamic"
	case KindDuplicateDynamic:
		return "DuplicateDynamic"
	case KindInconsistentRelocation:
		return "InconsistentRelocation"
	case KindRoundTripMismatch:
		return "RoundTripMismatch"
	case KindNotParsed:
		return "NotParsed"
	case KindNoRoom:
		return "NoRoom"
	case KindOutOfSegment:
		return "OutOfSegment"
	case KindAddressUnmapped:
		return "AddressUnmapped"
	case KindNotFound:
		return "NotFound"
	case KindInvalidConfig:
		return "InvalidConfig"
	case KindMalformedRecord:
		return "MalformedRecord"
	case KindUnsupportedLayout:
		return "UnsupportedLayout"
	default:
		return "Unknown"
	}
}

// ParseError is the single error type this package returns; Kind
// discriminates the exhaustive list of failure modes instead of one Go
// type per kind.
type ParseError struct {
	Kind    ParseErrorKind
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Cause }

func newErr(kind ParseErrorKind, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapErr(kind ParseErrorKind, cause error, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}
