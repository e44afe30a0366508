package pdu

import "unicode/utf8"

// shortMessage is the mandatory-parameter block shared byte-for-byte
// by submit_sm and deliver_sm (SMPP v3.4 §4.4 and §4.6): only the
// command_id differs.
type shortMessage struct {
	ServiceType          string
	SourceAddrTon        byte
	SourceAddrNpi        byte
	SourceAddr           string
	DestAddrTon          byte
	DestAddrNpi          byte
	DestinationAddr      string
	EsmClass             EsmClass
	ProtocolID           byte
	PriorityFlag         byte
	ScheduleDeliveryTime string
	ValidityPeriod       string
	RegisteredDelivery   RegisteredDelivery
	ReplaceIfPresentFlag byte
	DataCoding           byte
	SmDefaultMsgID       byte
	ShortMessage         string
	Options              *Options
}

func (p *shortMessage) marshal() []byte {
	w := &writer{}
	w.WriteCOctetString(p.ServiceType)
	w.WriteU8(p.SourceAddrTon)
	w.WriteU8(p.SourceAddrNpi)
	w.WriteCOctetString(p.SourceAddr)
	w.WriteU8(p.DestAddrTon)
	w.WriteU8(p.DestAddrNpi)
	w.WriteCOctetString(p.DestinationAddr)
	w.WriteU8(p.EsmClass.Byte())
	w.WriteU8(p.ProtocolID)
	w.WriteU8(p.PriorityFlag)
	w.WriteCOctetString(p.ScheduleDeliveryTime)
	w.WriteCOctetString(p.ValidityPeriod)
	w.WriteU8(p.RegisteredDelivery.Byte())
	w.WriteU8(p.ReplaceIfPresentFlag)
	w.WriteU8(p.DataCoding)
	w.WriteU8(p.SmDefaultMsgID)
	w.WriteU8(byte(len(p.ShortMessage)))
	w.WriteOctetString([]byte(p.ShortMessage))
	if p.Options != nil {
		opts, _ := p.Options.MarshalBinary()
		w.WriteOctetString(opts)
	}
	return w.Bytes()
}

// readScheduleField reads schedule_delivery_time/validity_period,
// which must be either absent (a bare NUL, declared length 1) or a
// full 16 character SMPP absolute/relative timestamp plus NUL
// (declared length 17). Any other length is a protocol error distinct
// from a plain C-octet-string overflow.
func readScheduleField(r *reader, field string) (string, error) {
	v, err := r.ReadCOctetString(field, ScheduleValidityLength2)
	if err != nil {
		return "", err
	}
	if len(v) != 0 && len(v) != ScheduleValidityLength2-1 {
		return "", incorrectLength(field, len(v)+1)
	}
	return v, nil
}

func (p *shortMessage) unmarshal(body []byte) error {
	r := newReader(body)
	var err error
	if p.ServiceType, err = r.ReadCOctetString(ServiceTypeFld, ServiceTypeMaxLength); err != nil {
		return err
	}
	if p.SourceAddrTon, err = r.ReadU8(SourceAddrTonFld); err != nil {
		return err
	}
	if p.SourceAddrNpi, err = r.ReadU8(SourceAddrNpiFld); err != nil {
		return err
	}
	if p.SourceAddr, err = r.ReadCOctetString(SourceAddrFld, SourceAddrMaxLength); err != nil {
		return err
	}
	if p.DestAddrTon, err = r.ReadU8(DestAddrTonFld); err != nil {
		return err
	}
	if p.DestAddrNpi, err = r.ReadU8(DestAddrNpiFld); err != nil {
		return err
	}
	if p.DestinationAddr, err = r.ReadCOctetString(DestinationAddrFld, DestinationAddrMaxLength); err != nil {
		return err
	}
	esm, err := r.ReadU8(EsmClassFld)
	if err != nil {
		return err
	}
	p.EsmClass = ParseEsmClass(esm)
	if p.ProtocolID, err = r.ReadU8(ProtocolIDFld); err != nil {
		return err
	}
	if p.PriorityFlag, err = r.ReadU8(PriorityFlagFld); err != nil {
		return err
	}
	if p.ScheduleDeliveryTime, err = readScheduleField(r, ScheduleDeliveryTimeFld); err != nil {
		return err
	}
	if p.ValidityPeriod, err = readScheduleField(r, ValidityPeriodFld); err != nil {
		return err
	}
	regDlvr, err := r.ReadU8(RegisteredDeliveryFld)
	if err != nil {
		return err
	}
	p.RegisteredDelivery = ParseRegisteredDelivery(regDlvr)
	if p.ReplaceIfPresentFlag, err = r.ReadU8(ReplaceIfPresentFlagFld); err != nil {
		return err
	}
	if p.DataCoding, err = r.ReadU8(DataCodingFld); err != nil {
		return err
	}
	if p.SmDefaultMsgID, err = r.ReadU8(SmDefaultMsgIDFld); err != nil {
		return err
	}
	smLen, err := r.ReadU8(SmLengthFld)
	if err != nil {
		return err
	}
	if smLen > ShortMessageMaxLength {
		return incorrectLength(ShortMessageFld, int(smLen))
	}
	sm, err := r.ReadOctetString(ShortMessageFld, int(smLen))
	if err != nil {
		return err
	}
	p.ShortMessage = string(sm)
	if r.Len() > 0 {
		p.Options = NewOptions()
		if err := p.Options.UnmarshalBinary(r.Remaining()); err != nil {
			return incorrectLength("optional_parameters", r.Len())
		}
	}
	return nil
}

// SubmitSm is the mandatory body of submit_sm: an ESME asking this
// SMSC to accept a short message for delivery.
type SubmitSm struct {
	shortMessage
}

// CommandID implements Body.
func (p *SubmitSm) CommandID() uint32 { return SubmitSmID }

// Response builds the matching submit_sm_resp.
func (p *SubmitSm) Response(messageID string) *SubmitSmResp {
	return &SubmitSmResp{MessageID: messageID}
}

// MarshalBody implements Body.
func (p *SubmitSm) MarshalBody() []byte { return p.marshal() }

// UnmarshalBody implements Body.
func (p *SubmitSm) UnmarshalBody(body []byte) error { return p.unmarshal(body) }

// SubmitSmResp is the mandatory body of submit_sm_resp.
type SubmitSmResp struct {
	MessageID string
	Options   *Options
}

// CommandID implements Body.
func (p *SubmitSmResp) CommandID() uint32 { return SubmitSmRespID }

// MarshalBody implements Body.
func (p *SubmitSmResp) MarshalBody() []byte {
	w := &writer{}
	w.WriteCOctetString(p.MessageID)
	if p.Options != nil {
		opts, _ := p.Options.MarshalBinary()
		w.WriteOctetString(opts)
	}
	return w.Bytes()
}

// UnmarshalBody implements Body.
func (p *SubmitSmResp) UnmarshalBody(body []byte) error {
	r := newReader(body)
	var err error
	if p.MessageID, err = r.ReadCOctetString(MessageIDFld, MessageIDMaxLength); err != nil {
		return err
	}
	if r.Len() > 0 {
		p.Options = NewOptions()
		if err := p.Options.UnmarshalBinary(r.Remaining()); err != nil {
			return incorrectLength("optional_parameters", r.Len())
		}
	}
	return nil
}

// DeliverSm is the mandatory body of deliver_sm: this SMSC delivering
// either an inbound short message or a delivery receipt to a bound
// Receiver/Transceiver.
type DeliverSm struct {
	shortMessage
}

// CommandID implements Body.
func (p *DeliverSm) CommandID() uint32 { return DeliverSmID }

// Response builds the matching deliver_sm_resp.
func (p *DeliverSm) Response() *DeliverSmResp { return &DeliverSmResp{} }

// MarshalBody implements Body.
func (p *DeliverSm) MarshalBody() []byte { return p.marshal() }

// UnmarshalBody implements Body.
func (p *DeliverSm) UnmarshalBody(body []byte) error { return p.unmarshal(body) }

// IsDeliveryReceipt reports whether esm_class marks this deliver_sm as
// carrying an SMSC delivery receipt rather than a regular inbound
// message (SMPP v3.4 §5.2.12).
func (p *DeliverSm) IsDeliveryReceipt() bool {
	return p.EsmClass.Type == DelRecEsmType
}

// ReceiptedMessageID extracts the message_id a delivery receipt refers
// to. It prefers the receipted_message_id TLV (SMPP v3.4 §5.3.2.36);
// if that is absent it falls back to parsing the full "id:...
// text:..." delivery-receipt format out of short_message.
func (p *DeliverSm) ReceiptedMessageID() (string, bool) {
	if p.Options != nil {
		if id := p.Options.ReceiptedMessageID(); id != "" {
			return id, true
		}
	}
	if !p.IsDeliveryReceipt() {
		return "", false
	}
	dr, err := ParseDeliveryReceipt(p.ShortMessage)
	if err != nil {
		return "", false
	}
	return dr.Id, true
}

const idPrefix = "id:"

// CandidateMessageID is the router's routing heuristic, independent of
// ReceiptedMessageID's stricter delivery-receipt parsing: any
// short_message beginning with the bare ASCII prefix "id:" yields the
// remaining bytes as a candidate message_id, whether or not esm_class
// marks the PDU as a delivery receipt. It tries the TLV first since
// that is unambiguous when present.
func (p *DeliverSm) CandidateMessageID() (string, bool) {
	if p.Options != nil {
		if id := p.Options.ReceiptedMessageID(); id != "" {
			return id, true
		}
	}
	if len(p.ShortMessage) <= len(idPrefix) || p.ShortMessage[:len(idPrefix)] != idPrefix {
		return "", false
	}
	rest := p.ShortMessage[len(idPrefix):]
	if !utf8.ValidString(rest) {
		return "", false
	}
	return rest, true
}

// DeliverSmResp is the mandatory body of deliver_sm_resp. message_id
// is conventionally empty for deliver_sm_resp.
type DeliverSmResp struct {
	MessageID string
}

// CommandID implements Body.
func (p *DeliverSmResp) CommandID() uint32 { return DeliverSmRespID }

// MarshalBody implements Body.
func (p *DeliverSmResp) MarshalBody() []byte {
	w := &writer{}
	w.WriteCOctetString(p.MessageID)
	return w.Bytes()
}

// UnmarshalBody implements Body.
func (p *DeliverSmResp) UnmarshalBody(body []byte) error {
	r := newReader(body)
	var err error
	if p.MessageID, err = r.ReadCOctetString(MessageIDFld, MessageIDMaxLength); err != nil {
		return err
	}
	if r.Len() > 0 {
		return lengthLongerThanPdu(uint32(r.Len()))
	}
	return nil
}
