package smsc

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajankovic/smsc/internal/smsclog"
	"github.com/ajankovic/smsc/mock"
	"github.com/ajankovic/smsc/pdu"
)

// TestRouter_AdmissionControlRejectsExtraConnection matches spec
// §4.8.2/S7: once MaxOpenSockets connections are held, the next one is
// closed immediately with zero response bytes, rather than queued.
func TestRouter_AdmissionControlRejectsExtraConnection(t *testing.T) {
	r := NewRouter(Config{
		MaxOpenSockets: 1,
		Logic:          NewExampleLogic(nil),
		Logger:         smsclog.Nop(),
	})

	held, heldPeer := net.Pipe()
	defer held.Close()
	defer heldPeer.Close()
	r.acceptConnection(heldPeer)

	// Give acceptConnection's goroutine a chance to take the admission
	// slot before the second connection is offered.
	time.Sleep(20 * time.Millisecond)

	rejected, rejectedPeer := net.Pipe()
	r.acceptConnection(rejectedPeer)

	buf := make([]byte, 1)
	rejected.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	n, err := rejected.Read(buf)
	assert.Equal(t, 0, n)
	assert.Error(t, err)

	require.NoError(t, r.Close())
}

// TestRouter_ReceivePDUReturnsErrorForUnknownKey matches spec §4.8.4:
// routing to a key nothing registered must fail rather than silently
// drop the message.
func TestRouter_ReceivePDUReturnsErrorForUnknownKey(t *testing.T) {
	r := NewRouter(Config{Logic: NewExampleLogic(nil), Logger: smsclog.Nop()})
	dsm := &pdu.DeliverSm{}
	dsm.ShortMessage = "id:missing"
	err := r.ReceivePDU(context.Background(), &pdu.PDU{Body: dsm})
	require.Error(t, err)
	re, ok := err.(*RouterError)
	require.True(t, ok)
	assert.Equal(t, RouterErrorUnknownMessage, re.Kind)
}

// TestRouter_ReceivePDURejectsNonDeliverSm matches spec §4.8.4's "if
// the PDU is of any other kind, return UnexpectedPduType".
func TestRouter_ReceivePDURejectsNonDeliverSm(t *testing.T) {
	r := NewRouter(Config{Logic: NewExampleLogic(nil), Logger: smsclog.Nop()})
	err := r.ReceivePDU(context.Background(), &pdu.PDU{Body: &pdu.EnquireLink{}})
	require.Error(t, err)
	re, ok := err.(*RouterError)
	require.True(t, ok)
	assert.Equal(t, RouterErrorUnexpectedPduType, re.Kind)
}

// TestRouter_ReceivePDURoutesToOriginatingConnection matches scenario
// S6: after a submit_sm registers a MessageUniqueKey against a bound
// Transceiver's connection, an inbound deliver_sm carrying that key is
// written to that connection, with the body unchanged and the
// connection's next sequence_number, and to no other.
func TestRouter_ReceivePDURoutesToOriginatingConnection(t *testing.T) {
	r := NewRouter(Config{
		Logic:         NewExampleLogic(nil),
		Logger:        smsclog.Nop(),
		WindowTimeout: 20 * time.Millisecond,
	})

	conn := mock.NewConn()
	c := newConnection(conn, "127.0.0.1:4000", smsclog.Nop())
	sess := newSession(c, r, smsclog.Nop())
	sess.mu.Lock()
	sess.state = stateBound
	sess.role = RoleTransceiver
	sess.systemID = "esme"
	sess.mu.Unlock()
	r.registerSession(sess)

	key := MessageUniqueKey("8765")
	r.registerMessage(key, sess)

	dsm := &pdu.DeliverSm{}
	dsm.ShortMessage = "id:8765"
	expected := pdu.WritePDU(dsm, pdu.StatusOK, 1)
	conn.ByteWrite(expected).NoResp()

	// No other connection is registered for this key, so only sess's
	// mock connection should ever see a write; DeliverSm itself times
	// out waiting for a deliver_sm_resp nothing in this test sends.
	err := r.ReceivePDU(context.Background(), &pdu.PDU{Body: dsm})
	assert.Error(t, err)
	assert.Empty(t, conn.Validate())
}

var _ io.Closer = (*Router)(nil)
