package pdu

// BindMode is the role an ESME requests when it binds.
type BindMode int

// Bind modes.
const (
	BindTransmitter BindMode = iota
	BindReceiver
	BindTransceiver
)

// Bind is the body common to bind_transmitter, bind_receiver and
// bind_transceiver: they differ only in command_id.
type Bind struct {
	Mode             BindMode
	SystemID         string
	Password         string
	SystemType       string
	InterfaceVersion byte
	AddrTon          byte
	AddrNpi          byte
	AddressRange     string
}

// CommandID implements Body.
func (p *Bind) CommandID() uint32 {
	switch p.Mode {
	case BindReceiver:
		return BindReceiverID
	case BindTransceiver:
		return BindTransceiverID
	default:
		return BindTransmitterID
	}
}

// Response builds the matching *_resp for this bind.
func (p *Bind) Response(systemID string) *BindResp {
	return &BindResp{Mode: p.Mode, SystemID: systemID}
}

// MarshalBody implements Body.
func (p *Bind) MarshalBody() []byte {
	w := &writer{}
	w.WriteCOctetString(p.SystemID)
	w.WriteCOctetString(p.Password)
	w.WriteCOctetString(p.SystemType)
	w.WriteU8(p.InterfaceVersion)
	w.WriteU8(p.AddrTon)
	w.WriteU8(p.AddrNpi)
	w.WriteCOctetString(p.AddressRange)
	return w.Bytes()
}

// UnmarshalBody implements Body.
func (p *Bind) UnmarshalBody(body []byte) error {
	r := newReader(body)
	var err error
	if p.SystemID, err = r.ReadCOctetString(SystemIDFld, SystemIDMaxLength); err != nil {
		return err
	}
	if p.Password, err = r.ReadCOctetString(PasswordFld, PasswordMaxLength); err != nil {
		return err
	}
	if p.SystemType, err = r.ReadCOctetString(SystemTypeFld, SystemTypeMaxLength); err != nil {
		return err
	}
	if p.InterfaceVersion, err = r.ReadU8(InterfaceVersionFld); err != nil {
		return err
	}
	if p.AddrTon, err = r.ReadU8(AddrTonFld); err != nil {
		return err
	}
	if p.AddrNpi, err = r.ReadU8(AddrNpiFld); err != nil {
		return err
	}
	if p.AddressRange, err = r.ReadCOctetString(AddressRangeFld, AddressRangeMaxLength); err != nil {
		return err
	}
	if r.Len() > 0 {
		return lengthLongerThanPdu(uint32(r.Len()))
	}
	return nil
}

// BindResp is the body shared by bind_transmitter_resp,
// bind_receiver_resp and bind_transceiver_resp.
type BindResp struct {
	Mode     BindMode
	SystemID string
	Options  *Options
}

// CommandID implements Body.
func (p *BindResp) CommandID() uint32 {
	switch p.Mode {
	case BindReceiver:
		return BindReceiverRespID
	case BindTransceiver:
		return BindTransceiverRespID
	default:
		return BindTransmitterRespID
	}
}

// MarshalBody implements Body.
func (p *BindResp) MarshalBody() []byte {
	w := &writer{}
	w.WriteCOctetString(p.SystemID)
	if p.Options != nil {
		opts, _ := p.Options.MarshalBinary()
		w.WriteOctetString(opts)
	}
	return w.Bytes()
}

// UnmarshalBody implements Body.
func (p *BindResp) UnmarshalBody(body []byte) error {
	r := newReader(body)
	var err error
	if p.SystemID, err = r.ReadCOctetString(SystemIDFld, SystemIDMaxLength); err != nil {
		return err
	}
	if r.Len() > 0 {
		p.Options = NewOptions()
		if uerr := p.Options.UnmarshalBinary(r.Remaining()); uerr != nil {
			return incorrectLength("optional_parameters", r.Len())
		}
	}
	return nil
}
