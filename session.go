package smsc

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ajankovic/smsc/pdu"
)

// Role is the bind mode an ESME has negotiated on this session.
type Role int

// Session roles.
const (
	RoleUnbound Role = iota
	RoleTransmitter
	RoleReceiver
	RoleTransceiver
)

func (r Role) String() string {
	switch r {
	case RoleTransmitter:
		return "transmitter"
	case RoleReceiver:
		return "receiver"
	case RoleTransceiver:
		return "transceiver"
	default:
		return "unbound"
	}
}

func (r Role) canSubmit() bool {
	return r == RoleTransmitter || r == RoleTransceiver
}

func (r Role) canReceive() bool {
	return r == RoleReceiver || r == RoleTransceiver
}

type sessionState int

const (
	stateUnbound sessionState = iota
	stateBound
	stateClosing
	stateClosed
)

// Session is the per-connection state machine described in spec
// §4.6-4.7: Unbound -> Bound(role) -> Closing/Closed, with
// enquire_link legal in any state.
type Session struct {
	conn   *Connection
	router *Router
	log    *zap.SugaredLogger

	mu       sync.Mutex
	state    sessionState
	role     Role
	systemID string

	pendingMu sync.Mutex
	pending   map[uint32]chan error
}

func newSession(conn *Connection, router *Router, log *zap.SugaredLogger) *Session {
	return &Session{
		conn:    conn,
		router:  router,
		log:     log,
		pending: make(map[uint32]chan error),
	}
}

func (s *Session) snapshot() (sessionState, Role, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.role, s.systemID
}

// Run drives the read loop until the connection closes or ctx is
// canceled. It never returns a non-nil error for a clean close; only
// unexpected I/O failures are reported.
func (s *Session) Run(ctx context.Context) error {
	defer s.close()
	for {
		if st, _, _ := s.snapshot(); st == stateClosed {
			return nil
		}
		p, err := s.conn.ReadPDU()
		if err != nil {
			if pe, ok := err.(*pdu.ParseError); ok {
				s.handleParseError(pe)
				return nil
			}
			// Any other error (EOF, reset, closed connection) ends the
			// session. A peer EOF, or a read failing because this
			// session was already closed, is a clean close.
			if st, _, _ := s.snapshot(); st == stateClosed || err == io.EOF {
				return nil
			}
			return err
		}
		s.dispatch(ctx, p)
	}
}

// handleParseError writes a best-effort generic_nack for a PDU this
// SMSC could not parse, then unconditionally ends the session: spec
// §4.6's state diagram sends every parse error to Closing, and §7
// requires any error surfaced from read_pdu to terminate the session
// after writing a response.
func (s *Session) handleParseError(pe *pdu.ParseError) {
	s.log.Warnw("pdu parse error", "error", pe.Error())
	seq := uint32(0)
	if pe.SequenceNumber != nil {
		seq = *pe.SequenceNumber
	}
	// A malformed or unrecognized command_id gets a generic_nack; we
	// cannot build a command-specific _resp because we never learned
	// which command it was trying to be, or couldn't trust it if we
	// did.
	if err := s.conn.WritePDU(&pdu.GenericNack{}, pe.Status(), seq); err != nil {
		s.log.Errorw("failed writing generic_nack", "error", err)
	}
	s.close()
}

func (s *Session) dispatch(ctx context.Context, p *pdu.PDU) {
	switch body := p.Body.(type) {
	case *pdu.Bind:
		s.handleBind(ctx, body, p.Header.Sequence)
	case *pdu.EnquireLink:
		s.handleEnquireLink(body, p.Header.Sequence)
	case *pdu.SubmitSm:
		s.handleSubmitSm(ctx, body, p.Header.Sequence)
	case *pdu.Unbind:
		s.handleUnbind(body, p.Header.Sequence)
	case *pdu.DeliverSmResp:
		s.handleDeliverSmResp(body, p.Header.Sequence)
	default:
		s.respondStatus(p.Header.CommandID, p.Header.Sequence, pdu.StatusInvCmdID)
	}
}

func (s *Session) respondStatus(commandID uint32, seq uint32, status uint32) {
	// Build a minimal _resp of the matching command so the ESME gets
	// a correctly-shaped rejection.
	body, err := pdu.NewBody(commandID | 0x80000000)
	if err != nil {
		_ = s.conn.WritePDU(&pdu.GenericNack{}, status, seq)
		return
	}
	_ = s.conn.WritePDU(body, status, seq)
}

func (s *Session) handleBind(ctx context.Context, b *pdu.Bind, seq uint32) {
	st, _, _ := s.snapshot()
	if st != stateUnbound {
		_ = s.conn.WritePDU(b.Response(""), pdu.StatusAlyBnd, seq)
		return
	}

	role := RoleTransmitter
	switch b.Mode {
	case pdu.BindReceiver:
		role = RoleReceiver
	case pdu.BindTransceiver:
		role = RoleTransceiver
	}

	if err := s.router.logic.Bind(ctx, b.SystemID, b.Password, b.SystemType); err != nil {
		status := pdu.StatusSysErr
		if be, ok := err.(*BindError); ok {
			status = be.Status
		}
		s.log.Infow("bind rejected", "system_id", b.SystemID, "status", status)
		_ = s.conn.WritePDU(b.Response(""), status, seq)
		return
	}

	s.mu.Lock()
	s.state = stateBound
	s.role = role
	s.systemID = b.SystemID
	s.mu.Unlock()

	s.log.Infow("bind accepted", "system_id", b.SystemID, "role", role.String())
	_ = s.conn.WritePDU(b.Response(s.router.systemID), pdu.StatusOK, seq)
}

func (s *Session) handleEnquireLink(el *pdu.EnquireLink, seq uint32) {
	_ = s.conn.WritePDU(el.Response(), pdu.StatusOK, seq)
}

func (s *Session) handleSubmitSm(ctx context.Context, sm *pdu.SubmitSm, seq uint32) {
	_, role, _ := s.snapshot()
	if !role.canSubmit() {
		_ = s.conn.WritePDU(sm.Response(""), pdu.StatusInvBnd, seq)
		return
	}

	messageID, key, err := s.router.logic.SubmitSm(ctx, sm)
	if err != nil {
		status := pdu.StatusSubmitFail
		if se, ok := err.(*SubmitSmError); ok {
			status = se.Status
		}
		_ = s.conn.WritePDU(sm.Response(""), status, seq)
		return
	}
	if key != "" {
		s.router.registerMessage(key, s)
	}
	_ = s.conn.WritePDU(sm.Response(messageID), pdu.StatusOK, seq)
}

func (s *Session) handleUnbind(u *pdu.Unbind, seq uint32) {
	_ = s.conn.WritePDU(u.Response(), pdu.StatusOK, seq)
	s.close()
}

func (s *Session) handleDeliverSmResp(resp *pdu.DeliverSmResp, seq uint32) {
	s.pendingMu.Lock()
	ch, ok := s.pending[seq]
	if ok {
		delete(s.pending, seq)
	}
	s.pendingMu.Unlock()
	if ok {
		close(ch)
	}
}

// DeliverSm sends dsm to this session's ESME and waits up to timeout
// for the matching deliver_sm_resp. It is called by Router when an
// inbound message needs routing to the connection that owns the
// matching MessageUniqueKey.
func (s *Session) DeliverSm(ctx context.Context, dsm *pdu.DeliverSm, timeout time.Duration) error {
	if _, role, _ := s.snapshot(); !role.canReceive() {
		return fmt.Errorf("smsc: session is not bound to receive deliveries")
	}
	if id, ok := dsm.ReceiptedMessageID(); ok {
		s.log.Infow("delivering receipt", "receipted_message_id", id)
	}
	seq := s.conn.NextSequence()
	done := make(chan error, 1)
	s.pendingMu.Lock()
	s.pending[seq] = done
	s.pendingMu.Unlock()

	if err := s.conn.WritePDU(dsm, pdu.StatusOK, seq); err != nil {
		s.pendingMu.Lock()
		delete(s.pending, seq)
		s.pendingMu.Unlock()
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.pendingMu.Lock()
		delete(s.pending, seq)
		s.pendingMu.Unlock()
		return ctx.Err()
	}
}

func (s *Session) close() {
	s.mu.Lock()
	if s.state == stateClosed {
		s.mu.Unlock()
		return
	}
	s.state = stateClosed
	s.mu.Unlock()
	s.router.unregisterSession(s)
	_ = s.conn.Disconnect()
}
