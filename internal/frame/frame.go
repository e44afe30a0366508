// Package frame implements the cheap, allocation-free check for
// whether a complete PDU is already buffered, before the pdu package
// does any length-proportional parsing. It mirrors the two-step
// "check then parse" split of the original smsc.rs implementation:
// check() never allocates beyond the fixed 4-byte length prefix.
package frame

import (
	"encoding/binary"

	"github.com/ajankovic/smsc/pdu"
)

// Status is the outcome of Check.
type Status int

// Frame check outcomes.
const (
	// Incomplete means fewer than command_length bytes are currently
	// buffered; the caller should keep reading and try again.
	Incomplete Status = iota
	// Ready means a full PDU (command_length bytes) is buffered at the
	// front of buf.
	Ready
	// Invalid means the declared command_length violates the [8,
	// 70000] bound and the connection should be dropped; err carries
	// the *pdu.ParseError describing why.
	Invalid
)

// Check inspects buf (the bytes read so far for the current
// connection) and reports whether a full PDU is ready to be handed to
// pdu.ParsePDU. It never mutates or copies buf. On Ready, n is the
// number of bytes the next PDU occupies (buf[:n]); the caller slices
// buf itself.
func Check(buf []byte) (status Status, n uint32, err error) {
	if len(buf) < 4 {
		return Incomplete, 0, nil
	}
	length := binary.BigEndian.Uint32(buf[:4])
	if length < pdu.MinPDULength {
		return Invalid, 0, pdu.LengthTooShortError(length)
	}
	if length > pdu.MaxPDULength {
		return Invalid, 0, pdu.LengthTooLongError(length)
	}
	if uint32(len(buf)) < length {
		return Incomplete, 0, nil
	}
	return Ready, length, nil
}
