package pdu

import "fmt"

// ParseErrorKind is the closed set of ways a PDU can fail to parse.
type ParseErrorKind int

// PDU parse error kinds.
const (
	LengthTooLong ParseErrorKind = iota
	LengthTooShort
	LengthLongerThanPdu
	NotEnoughBytes
	COctetStringTooLong
	COctetStringDoesNotEndWithNul
	COctetStringNotAscii
	IncorrectLength
	StatusIsNotZero
	BodyNotAllowedWhenStatusIsNotZero
	UnknownCommandId
	OtherIoError
)

func (k ParseErrorKind) String() string {
	switch k {
	case LengthTooLong:
		return "LengthTooLong"
	case LengthTooShort:
		return "LengthTooShort"
	case LengthLongerThanPdu:
		return "LengthLongerThanPdu"
	case NotEnoughBytes:
		return "NotEnoughBytes"
	case COctetStringTooLong:
		return "COctetStringTooLong"
	case COctetStringDoesNotEndWithNul:
		return "COctetStringDoesNotEndWithNul"
	case COctetStringNotAscii:
		return "COctetStringNotAscii"
	case IncorrectLength:
		return "IncorrectLength"
	case StatusIsNotZero:
		return "StatusIsNotZero"
	case BodyNotAllowedWhenStatusIsNotZero:
		return "BodyNotAllowedWhenStatusIsNotZero"
	case UnknownCommandId:
		return "UnknownCommandId"
	case OtherIoError:
		return "OtherIoError"
	}
	return "Unknown"
}

// ParseError is the structured error returned by any part of the PDU
// codec. Fields are filled in progressively as the error travels back
// up through field parser -> body parser -> frame parser, matching the
// "progressive enrichment" design used throughout this package.
type ParseError struct {
	Kind    ParseErrorKind
	Message string

	// Context, filled in as it becomes known. A nil pointer renders as
	// UNKNOWN.
	CommandID      *uint32
	CommandStatus  *uint32
	SequenceNumber *uint32
	FieldName      string

	// ValidUpTo is only meaningful for COctetStringNotAscii.
	ValidUpTo int
	// DeclaredLength is only meaningful for length-related kinds.
	DeclaredLength uint32
}

// newParseError builds a bare error of the given kind.
func newParseError(kind ParseErrorKind, message string) *ParseError {
	return &ParseError{Kind: kind, Message: message}
}

// WithCommandID returns a copy of e enriched with a command id.
func (e *ParseError) WithCommandID(id uint32) *ParseError {
	out := *e
	out.CommandID = &id
	return &out
}

// WithCommandStatus returns a copy of e enriched with a command status.
func (e *ParseError) WithCommandStatus(status uint32) *ParseError {
	out := *e
	out.CommandStatus = &status
	return &out
}

// WithSequenceNumber returns a copy of e enriched with a sequence number.
func (e *ParseError) WithSequenceNumber(seq uint32) *ParseError {
	out := *e
	out.SequenceNumber = &seq
	return &out
}

// WithField returns a copy of e enriched with the field that caused it,
// unless the error already names one (innermost field parser wins).
func (e *ParseError) WithField(name string) *ParseError {
	if e.FieldName != "" {
		return e
	}
	out := *e
	out.FieldName = name
	return &out
}

func renderContext(v *uint32) string {
	if v == nil {
		return "UNKNOWN"
	}
	return fmt.Sprintf("0x%08X", *v)
}

// Error implements the error interface with the stable rendering
// required of this package: callers and tests may depend on the exact
// text format.
func (e *ParseError) Error() string {
	field := e.FieldName
	if field == "" {
		field = "UNKNOWN"
	}
	return fmt.Sprintf(
		"Error parsing PDU (command_id=%s, command_status=%s, sequence_number=%s, field_name=%s): %s",
		renderContext(e.CommandID),
		renderContext(e.CommandStatus),
		renderContext(e.SequenceNumber),
		field,
		e.Message,
	)
}

// Status maps a parse error to the SMPP command_status that the
// session engine should use in its best-effort error response. The
// mapping is intentionally conservative: it only distinguishes the
// cases the specification requires and falls back to ESME_RSYSERR for
// everything else field-shaped.
func (e *ParseError) Status() uint32 {
	switch e.Kind {
	case LengthTooLong, LengthTooShort, LengthLongerThanPdu, NotEnoughBytes:
		return StatusInvCmdLen
	case UnknownCommandId:
		return StatusInvCmdID
	case COctetStringTooLong, COctetStringDoesNotEndWithNul, COctetStringNotAscii, IncorrectLength:
		if e.FieldName == PasswordFld {
			return StatusInvPaswd
		}
		return StatusSysErr
	case StatusIsNotZero, BodyNotAllowedWhenStatusIsNotZero:
		return StatusSysErr
	case OtherIoError:
		return StatusSysErr
	}
	return StatusSysErr
}

// LengthTooLongError builds the LengthTooLong error for a declared
// command_length over MaxPDULength. Exported so the frame package can
// reject an oversized declaration before a full header is even
// buffered.
func LengthTooLongError(declared uint32) *ParseError {
	return lengthTooLong(declared)
}

// LengthTooShortError builds the LengthTooShort error for a declared
// command_length under MinPDULength. Exported for the same reason as
// LengthTooLongError.
func LengthTooShortError(declared uint32) *ParseError {
	return lengthTooShort(declared)
}

// lengthTooLong builds the error for a declared command_length over
// MaxPDULength.
func lengthTooLong(declared uint32) *ParseError {
	e := newParseError(LengthTooLong, fmt.Sprintf("command_length %d is greater than the maximum allowed %d", declared, MaxPDULength))
	e.DeclaredLength = declared
	return e
}

// lengthTooShort builds the error for a declared command_length under
// MinPDULength.
func lengthTooShort(declared uint32) *ParseError {
	e := newParseError(LengthTooShort, fmt.Sprintf("command_length %d is less than the minimum allowed %d", declared, MinPDULength))
	e.DeclaredLength = declared
	return e
}

// lengthLongerThanPdu builds the error for unconsumed bytes left in
// the frame after the body parser returned.
func lengthLongerThanPdu(remaining uint32) *ParseError {
	e := newParseError(LengthLongerThanPdu, fmt.Sprintf("%d byte(s) remained in the PDU after the body was parsed", remaining))
	e.DeclaredLength = remaining
	return e
}

// notEnoughBytes builds the error for truncation mid-field.
func notEnoughBytes() *ParseError {
	return newParseError(NotEnoughBytes, "reached end of PDU length (or end of input) before finding all fields of the PDU")
}

// cOctetStringTooLong builds the error for a C-octet string that ran
// to max_len bytes without a NUL terminator.
func cOctetStringTooLong(maxLen int) *ParseError {
	e := newParseError(COctetStringTooLong, fmt.Sprintf("string value is too long; max length is %d including the terminating NUL", maxLen))
	e.DeclaredLength = uint32(maxLen)
	return e
}

// cOctetStringDoesNotEndWithNul builds the COctetStringDoesNotEndWithNul
// error. reader.ReadCOctetString does not return it: a max_len run
// without a NUL is reported as COctetStringTooLong.
func cOctetStringDoesNotEndWithNul() *ParseError {
	return newParseError(COctetStringDoesNotEndWithNul, "string value did not end with a NUL byte")
}

// cOctetStringNotAscii builds the error for a C-octet string
// containing a non-ASCII byte.
func cOctetStringNotAscii(validUpTo int) *ParseError {
	e := newParseError(COctetStringNotAscii, fmt.Sprintf("string value is not ASCII (valid up to byte %d)", validUpTo))
	e.ValidUpTo = validUpTo
	return e
}

// incorrectLength builds the error for a domain-specific length
// mismatch, e.g. schedule_delivery_time/validity_period.
func incorrectLength(field string, got int) *ParseError {
	return newParseError(IncorrectLength, fmt.Sprintf("%s has an invalid length of %d", field, got)).WithField(field)
}

// statusIsNotZero builds the error for a request body whose header
// carries a non-zero command_status.
func statusIsNotZero(status uint32) *ParseError {
	e := newParseError(StatusIsNotZero, fmt.Sprintf("request PDU must have command_status 0x%08X but has 0x%08X", StatusOK, status))
	e.CommandStatus = &status
	return e.WithField(CommandStatusFld)
}

// bodyNotAllowedWhenStatusIsNotZero builds the error for a response
// body that carries bytes beyond the header despite a non-zero status.
func bodyNotAllowedWhenStatusIsNotZero(status uint32) *ParseError {
	e := newParseError(BodyNotAllowedWhenStatusIsNotZero, fmt.Sprintf("response PDU with non-zero command_status 0x%08X must not carry a body", status))
	e.CommandStatus = &status
	return e.WithField(CommandStatusFld)
}

// unknownCommandID builds the error for an unrecognized command_id.
func unknownCommandID(id uint32) *ParseError {
	return newParseError(UnknownCommandId, fmt.Sprintf("command_id 0x%08X is not a known or supported SMPP command", id)).WithCommandID(id)
}

// otherIoError wraps an unexpected I/O failure encountered while
// reading the PDU body.
func otherIoError(err error) *ParseError {
	return newParseError(OtherIoError, err.Error())
}
