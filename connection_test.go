package smsc

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajankovic/smsc/internal/smsclog"
	"github.com/ajankovic/smsc/mock"
	"github.com/ajankovic/smsc/pdu"
)

func fromHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	require.NoError(t, err)
	return b
}

// TestConnection_ReadPDU_AssemblesSplitReads mirrors spec §4.2's
// "frame check before parse" design: a PDU arriving across two TCP
// reads must still be recognized once enough bytes have accumulated.
func TestConnection_ReadPDU_AssemblesSplitReads(t *testing.T) {
	raw := fromHex(t, "00 00 00 10 00 00 00 15 00 00 00 00 00 00 00 12")

	conn := mock.NewConn().
		ByteRead(raw[:6]).NoResp().
		ByteRead(raw[6:]).NoResp()

	c := newConnection(conn, "127.0.0.1:1234", smsclog.Nop())
	p, err := c.ReadPDU()
	require.NoError(t, err)
	_, ok := p.Body.(*pdu.EnquireLink)
	assert.True(t, ok)
	assert.Empty(t, conn.Validate())
}

func TestConnection_WritePDU(t *testing.T) {
	expected := fromHex(t, "00 00 00 10 80 00 00 15 00 00 00 00 00 00 00 12")
	conn := mock.NewConn().ByteWrite(expected).NoResp()

	c := newConnection(conn, "127.0.0.1:1234", smsclog.Nop())
	err := c.WritePDU(&pdu.EnquireLinkResp{}, pdu.StatusOK, 0x12)
	require.NoError(t, err)
	assert.Empty(t, conn.Validate())
}

func TestConnection_RemoteAddr(t *testing.T) {
	conn := mock.NewConn()
	c := newConnection(conn, "10.0.0.5:9999", smsclog.Nop())
	assert.Equal(t, "10.0.0.5:9999", c.RemoteAddr())
}
