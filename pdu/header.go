package pdu

import "encoding/binary"

// Header is the fixed 16-byte prefix carried by every PDU.
type Header struct {
	Length    uint32
	CommandID uint32
	Status    uint32
	Sequence  uint32
}

// DecodeHeader parses the 16-byte header and applies the
// command_length bounds from spec §4.1. It does not validate
// command_id or command_status; callers enrich the returned error
// with those once they are known to the caller, or validate them
// separately once the full PDU is available.
func DecodeHeader(raw []byte) (Header, error) {
	if len(raw) < HeaderLength {
		return Header{}, notEnoughBytes().WithField(CommandLengthFld)
	}
	h := Header{
		Length:    binary.BigEndian.Uint32(raw[0:4]),
		CommandID: binary.BigEndian.Uint32(raw[4:8]),
		Status:    binary.BigEndian.Uint32(raw[8:12]),
		Sequence:  binary.BigEndian.Uint32(raw[12:16]),
	}
	if h.Length < MinPDULength {
		return h, lengthTooShort(h.Length).WithCommandID(h.CommandID).WithSequenceNumber(h.Sequence)
	}
	if h.Length > MaxPDULength {
		return h, lengthTooLong(h.Length).WithCommandID(h.CommandID).WithSequenceNumber(h.Sequence)
	}
	return h, nil
}

// Encode writes the header fields in wire order.
func (h Header) Encode() []byte {
	buf := make([]byte, HeaderLength)
	binary.BigEndian.PutUint32(buf[0:4], h.Length)
	binary.BigEndian.PutUint32(buf[4:8], h.CommandID)
	binary.BigEndian.PutUint32(buf[8:12], h.Status)
	binary.BigEndian.PutUint32(buf[12:16], h.Sequence)
	return buf
}
