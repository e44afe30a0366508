package pdu

// Body is implemented by every mandatory-parameter PDU body this SMSC
// understands. CommandID identifies which command_id a concrete body
// belongs to; MarshalBody/UnmarshalBody (de)serialize everything after
// the 16-byte header.
type Body interface {
	CommandID() uint32
	MarshalBody() []byte
	UnmarshalBody(body []byte) error
}

// PDU pairs a decoded Header with its Body.
type PDU struct {
	Header Header
	Body   Body
}

// NewBody returns a zero-value Body for the given command_id, or a
// *ParseError of kind UnknownCommandId if this SMSC does not support
// it.
func NewBody(commandID uint32) (Body, error) {
	switch commandID {
	case GenericNackID:
		return &GenericNack{}, nil
	case BindTransmitterID:
		return &Bind{Mode: BindTransmitter}, nil
	case BindTransmitterRespID:
		return &BindResp{Mode: BindTransmitter}, nil
	case BindReceiverID:
		return &Bind{Mode: BindReceiver}, nil
	case BindReceiverRespID:
		return &BindResp{Mode: BindReceiver}, nil
	case BindTransceiverID:
		return &Bind{Mode: BindTransceiver}, nil
	case BindTransceiverRespID:
		return &BindResp{Mode: BindTransceiver}, nil
	case UnbindID:
		return &Unbind{}, nil
	case UnbindRespID:
		return &UnbindResp{}, nil
	case EnquireLinkID:
		return &EnquireLink{}, nil
	case EnquireLinkRespID:
		return &EnquireLinkResp{}, nil
	case SubmitSmID:
		return &SubmitSm{}, nil
	case SubmitSmRespID:
		return &SubmitSmResp{}, nil
	case DeliverSmID:
		return &DeliverSm{}, nil
	case DeliverSmRespID:
		return &DeliverSmResp{}, nil
	}
	return nil, unknownCommandID(commandID)
}

// IsRequestCommand reports whether a command_id belongs to a request
// PDU (as opposed to its _resp or generic_nack).
func IsRequestCommand(id uint32) bool {
	switch id {
	case GenericNackID,
		BindTransmitterRespID,
		BindReceiverRespID,
		BindTransceiverRespID,
		UnbindRespID,
		EnquireLinkRespID,
		SubmitSmRespID,
		DeliverSmRespID:
		return false
	}
	return true
}

// ParsePDU decodes one complete PDU frame (exactly Header.Length bytes
// as produced by the frame checker) into a *PDU, or a *ParseError
// enriched with whatever context is known at each stage.
func ParsePDU(raw []byte) (*PDU, error) {
	header, err := DecodeHeader(raw)
	if err != nil {
		return nil, err
	}

	enrich := func(e error) error {
		if pe, ok := e.(*ParseError); ok {
			return pe.WithCommandID(header.CommandID).
				WithCommandStatus(header.Status).
				WithSequenceNumber(header.Sequence)
		}
		return e
	}

	// Command-id validity is checked before the status-zero rule: an
	// unrecognized command_id must map to UnknownCommandId (ESME_RINVCMDID)
	// even if it also happens to carry a non-zero command_status, rather
	// than being misrouted into StatusIsNotZero's ESME_RSYSERR.
	body, err := NewBody(header.CommandID)
	if err != nil {
		return nil, enrich(err)
	}

	if IsRequestCommand(header.CommandID) && header.Status != StatusOK {
		return nil, enrich(statusIsNotZero(header.Status))
	}

	bodyBytes := raw[HeaderLength:]
	if !IsRequestCommand(header.CommandID) && header.Status != StatusOK {
		if len(bodyBytes) > 0 {
			return nil, enrich(bodyNotAllowedWhenStatusIsNotZero(header.Status))
		}
		return &PDU{Header: header, Body: body}, nil
	}

	if err := body.UnmarshalBody(bodyBytes); err != nil {
		return nil, enrich(err)
	}

	return &PDU{Header: header, Body: body}, nil
}

// WritePDU serializes a Body with the given command_status and
// sequence_number into a complete wire frame, including the header.
// A response with a non-zero command_status is written header-only,
// since ParsePDU rejects such a response if it carries a body.
func WritePDU(body Body, status uint32, sequence uint32) []byte {
	var payload []byte
	if status == StatusOK || IsRequestCommand(body.CommandID()) {
		payload = body.MarshalBody()
	}
	header := Header{
		Length:    uint32(HeaderLength + len(payload)),
		CommandID: body.CommandID(),
		Status:    status,
		Sequence:  sequence,
	}
	out := header.Encode()
	return append(out, payload...)
}
