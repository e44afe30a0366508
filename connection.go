package smsc

import (
	"io"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/ajankovic/smsc/internal/frame"
	"github.com/ajankovic/smsc/pdu"
)

// Connection wraps one accepted connection with the growable read
// buffer the frame checker inspects and a write mutex so the
// persistent read-loop goroutine and any transient delivery-write
// goroutines never interleave partial PDUs on the wire. Go's net.Conn
// already supports concurrent Read/Write, so unlike the original
// Rust implementation only the write side needs synchronizing. Like
// the teacher's Session, it holds the transport as a plain
// io.ReadWriteCloser so tests can swap in mock.Conn.
type Connection struct {
	rwc        io.ReadWriteCloser
	remoteAddr string
	log        *zap.SugaredLogger

	readBuf []byte

	writeMu sync.Mutex
	seq     *pdu.Sequencer
}

// NewConnection wraps conn for use by a Session.
func NewConnection(conn net.Conn, log *zap.SugaredLogger) *Connection {
	return newConnection(conn, conn.RemoteAddr().String(), log)
}

func newConnection(rwc io.ReadWriteCloser, remoteAddr string, log *zap.SugaredLogger) *Connection {
	return &Connection{
		rwc:        rwc,
		remoteAddr: remoteAddr,
		log:        log,
		seq:        pdu.NewSequencer(1),
	}
}

// RemoteAddr returns the remote address of the underlying connection.
func (c *Connection) RemoteAddr() string {
	return c.remoteAddr
}

// ReadPDU blocks until a complete PDU is available, reading more off
// the wire as needed, and returns it already parsed. It implements
// the "check before parse" split of spec §4.2/§4.3: frame.Check runs
// on the unparsed buffer before pdu.ParsePDU ever allocates a body.
func (c *Connection) ReadPDU() (*pdu.PDU, error) {
	for {
		status, n, err := frame.Check(c.readBuf)
		if err != nil {
			return nil, err
		}
		switch status {
		case frame.Ready:
			raw := c.readBuf[:n]
			c.readBuf = append([]byte(nil), c.readBuf[n:]...)
			return pdu.ParsePDU(raw)
		case frame.Invalid:
			// unreachable: frame.Check only returns Invalid with a
			// non-nil err, handled above.
		}

		chunk := make([]byte, 4096)
		read, err := c.rwc.Read(chunk)
		if read > 0 {
			c.readBuf = append(c.readBuf, chunk[:read]...)
		}
		if err != nil {
			return nil, err
		}
	}
}

// WritePDU serializes body with the given status/sequence and writes
// it atomically to the connection.
func (c *Connection) WritePDU(body pdu.Body, status uint32, sequence uint32) error {
	wire := pdu.WritePDU(body, status, sequence)
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err := c.rwc.Write(wire)
	return err
}

// NextSequence allocates the next sequence_number this SMSC will use
// for a connection-originated request (e.g. deliver_sm).
func (c *Connection) NextSequence() uint32 {
	return c.seq.Next()
}

// Disconnect closes the underlying connection.
func (c *Connection) Disconnect() error {
	return c.rwc.Close()
}
