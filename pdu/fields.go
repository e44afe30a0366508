package pdu

import (
	"errors"
	"sync"
)

// EsmClass is used to indicate special message attributes associated
// with the short message.
type EsmClass struct {
	Mode    int
	Type    int
	Feature int
}

// Byte converts EsmClass into a single byte for pdu encoding.
func (ec EsmClass) Byte() byte {
	out := byte(0)
	out |= byte(ec.Mode)
	out |= byte(ec.Type) << 2
	out |= byte(ec.Feature) << 6
	return out
}

// ParseEsmClass parses esm_class from a PDU byte.
func ParseEsmClass(b byte) EsmClass {
	return EsmClass{
		Mode:    int(b & 0x03),
		Type:    int((b >> 2) & 0x0F),
		Feature: int(b >> 6),
	}
}

// esm_class mode/type/feature values used by this SMSC.
const (
	DefaultEsmMode = 0x0

	DefaultEsmType = 0x0
	DelRecEsmType  = 0x1

	NoEsmFeat   = 0x0
	UDHIEsmFeat = 0x1
)

// RegisteredDelivery requests an SMSC delivery receipt and/or SME
// originated acknowledgements.
type RegisteredDelivery struct {
	Receipt           int
	SMEAck            int
	InterNotification int
}

// Byte converts RegisteredDelivery into a single byte for pdu encoding.
func (rd RegisteredDelivery) Byte() byte {
	out := byte(0)
	out |= byte(rd.Receipt)
	out |= byte(rd.SMEAck) << 2
	out |= byte(rd.InterNotification) << 4
	return out
}

// ParseRegisteredDelivery parses registered_delivery from a PDU byte.
func ParseRegisteredDelivery(b byte) RegisteredDelivery {
	return RegisteredDelivery{
		Receipt:           int(b & 0x03),
		SMEAck:            int((b >> 2) & 0x0F),
		InterNotification: int((b >> 4) & 0x01),
	}
}

// Delivery receipt request values.
const (
	NoDeliveryReceipt  = 0x0
	YesDeliveryReceipt = 0x1
)

// SeparateUDH splits a short_message payload that carries a User Data
// Header (esm_class UDHI feature set) into the header and the
// remaining content.
func SeparateUDH(c []byte) ([]byte, []byte, error) {
	if len(c) == 0 {
		return nil, c, errors.New("smsc/pdu: empty short_message, no udh present")
	}
	l := int(c[0])
	if l >= len(c) {
		return nil, c, errors.New("smsc/pdu: udh length exceeds short_message size")
	}
	return c[:l+1], c[l+1:], nil
}

// Sequencer hands out sequence_number values for PDUs this SMSC
// originates (bind responses are echoed, but deliver_sm to a bound
// ESME needs a fresh one per spec §4.7). Safe for concurrent use: the
// router dispatches each inbound delivery as its own transient task
// against a connection's shared handle (spec §4.8), so more than one
// goroutine may allocate a sequence_number for the same connection at
// once.
type Sequencer struct {
	mu sync.Mutex
	n  uint32
}

// NewSequencer creates a Sequencer starting at n (1 if n == 0, since
// 0 is not a valid SMPP sequence_number).
func NewSequencer(n uint32) *Sequencer {
	if n == 0 {
		n = 1
	}
	return &Sequencer{n: n}
}

// Next returns the next sequence_number, wrapping at the SMPP
// maximum rather than overflowing into the reserved high bit.
func (s *Sequencer) Next() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.n
	if s.n >= 0x7FFFFFFF {
		s.n = 1
	} else {
		s.n++
	}
	return n
}
