package smsc

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ajankovic/smsc/internal/smsclog"
	"github.com/ajankovic/smsc/pdu"
)

// tcpKeepAliveListener mirrors the teacher's Server: it keeps
// half-dead TCP peers from lingering forever.
type tcpKeepAliveListener struct {
	*net.TCPListener
}

func (ln tcpKeepAliveListener) Accept() (net.Conn, error) {
	tc, err := ln.AcceptTCP()
	if err != nil {
		return nil, err
	}
	tc.SetKeepAlive(true)
	tc.SetKeepAlivePeriod(3 * time.Minute)
	return tc, nil
}

// Router is the SMSC described in spec §4.8: it accepts connections
// (subject to admission control), tracks bound sessions, and routes
// inbound deliveries to the connection that owns the matching
// MessageUniqueKey. It generalizes the original Rust implementation's
// single-stub-connection limitation into a full registry, since this
// SMSC must support many concurrently bound connections.
type Router struct {
	cfg      Config
	log      *zap.SugaredLogger
	logic    Logic
	systemID string

	admission     chan struct{}
	nextSessionID uint64

	wg       sync.WaitGroup
	mu       sync.Mutex
	listener net.Listener
	doneChan chan struct{}

	sessions map[*Session]struct{}

	registryMu sync.Mutex
	byKey      map[MessageUniqueKey]*Session
	bySession  map[*Session][]MessageUniqueKey
}

// NewRouter builds a Router from cfg. cfg.Logic must be non-nil.
func NewRouter(cfg Config) *Router {
	cfg.setDefaults()
	if cfg.Logic == nil {
		panic("smsc: Config.Logic must not be nil")
	}
	r := &Router{
		cfg:       cfg,
		log:       cfg.Logger,
		logic:     cfg.Logic,
		systemID:  cfg.SystemID,
		sessions:  make(map[*Session]struct{}),
		byKey:     make(map[MessageUniqueKey]*Session),
		bySession: make(map[*Session][]MessageUniqueKey),
	}
	if cfg.MaxOpenSockets > 0 {
		// A buffered channel used as a counting semaphore: the Go
		// idiomatic equivalent of the original's
		// tokio::sync::Semaphore + try_acquire (spec §4.8.2).
		r.admission = make(chan struct{}, cfg.MaxOpenSockets)
	}
	return r
}

// ListenAndServe starts listening on cfg.BindAddress and blocks
// serving connections until Close is called.
func (r *Router) ListenAndServe() error {
	addr := r.cfg.BindAddress
	if addr == "" {
		addr = ":2775"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if tl, ok := ln.(*net.TCPListener); ok {
		ln = tcpKeepAliveListener{tl}
	}
	return r.Serve(ln)
}

// Serve accepts connections on ln until Close is called.
func (r *Router) Serve(ln net.Listener) error {
	r.mu.Lock()
	r.listener = ln
	r.mu.Unlock()
	defer ln.Close()

	var tempDelay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-r.getDoneChan():
				return nil
			default:
			}
			if ne, ok := err.(net.Error); ok && ne.Temporary() {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if tempDelay > time.Second {
					tempDelay = time.Second
				}
				time.Sleep(tempDelay)
				continue
			}
			return err
		}
		tempDelay = 0
		r.acceptConnection(conn)
	}
}

// acceptConnection applies admission control (spec §4.8.2): the
// (N+1)th concurrent connection is refused with no response bytes at
// all, just an immediate close.
func (r *Router) acceptConnection(conn net.Conn) {
	if r.admission != nil {
		select {
		case r.admission <- struct{}{}:
		default:
			r.log.Warnw("admission control rejected connection", "remote_addr", conn.RemoteAddr().String())
			conn.Close()
			return
		}
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if r.admission != nil {
				<-r.admission
			}
		}()
		r.serveConnection(conn)
	}()
}

func (r *Router) serveConnection(conn net.Conn) {
	remote := conn.RemoteAddr().String()
	sessionID := atomic.AddUint64(&r.nextSessionID, 1)
	log := smsclog.ForConnection(r.log, remote, sessionID)
	c := NewConnection(conn, log)
	sess := newSession(c, r, log)
	// Tracked from acceptance, not from a successful bind: Close must
	// be able to tear down a connection that never got around to
	// binding.
	r.registerSession(sess)
	log.Infow("connection accepted")
	if err := sess.Run(context.Background()); err != nil {
		log.Errorw("session ended with error", "error", err)
	}
	log.Infow("connection closed")
}

func (r *Router) registerSession(s *Session) {
	r.mu.Lock()
	r.sessions[s] = struct{}{}
	r.mu.Unlock()
}

func (r *Router) unregisterSession(s *Session) {
	r.mu.Lock()
	delete(r.sessions, s)
	r.mu.Unlock()

	r.registryMu.Lock()
	for _, key := range r.bySession[s] {
		delete(r.byKey, key)
	}
	delete(r.bySession, s)
	r.registryMu.Unlock()
}

// registerMessage records that a later deliver_sm bearing key should
// be routed back to s.
func (r *Router) registerMessage(key MessageUniqueKey, s *Session) {
	r.registryMu.Lock()
	defer r.registryMu.Unlock()
	r.byKey[key] = s
	r.bySession[s] = append(r.bySession[s], key)
}

// RouterErrorKind enumerates the ways ReceivePDU can fail to route an
// inbound PDU, per spec §4.8.4/§6.
type RouterErrorKind int

// RouterError kinds.
const (
	// RouterErrorUnknownMessage means the PDU was a deliver_sm but its
	// message_id (or the PDU itself) does not match anything in the
	// registry.
	RouterErrorUnknownMessage RouterErrorKind = iota
	// RouterErrorUnexpectedPduType means the PDU was not a deliver_sm
	// at all; only deliver_sm is a valid host-injected inbound PDU.
	RouterErrorUnexpectedPduType
)

// RouterError is returned by Router.ReceivePDU.
type RouterError struct {
	Kind RouterErrorKind
	Msg  string
}

func (e *RouterError) Error() string { return e.Msg }

// ReceivePDU is the host application's entry point for injecting an
// inbound deliver_sm (spec §4.8.3-4.8.4, §6): the router extracts a
// candidate message_id from p's short_message (or its
// receipted_message_id TLV), looks up the connection that registered
// that key on a prior submit_sm, and writes p's deliver_sm body to it
// under a sequence_number that connection allocates; p's own header
// (sequence_number, command_status) is not sent. It then waits up to
// Config.WindowTimeout for the matching deliver_sm_resp. Any other PDU
// kind, or one whose message_id was never registered, is rejected
// rather than silently dropped.
func (r *Router) ReceivePDU(ctx context.Context, p *pdu.PDU) error {
	dsm, ok := p.Body.(*pdu.DeliverSm)
	if !ok {
		return &RouterError{Kind: RouterErrorUnexpectedPduType, Msg: "smsc: receive_pdu only accepts deliver_sm"}
	}
	id, ok := dsm.CandidateMessageID()
	if !ok {
		return &RouterError{Kind: RouterErrorUnknownMessage, Msg: "smsc: deliver_sm carries no extractable message_id"}
	}
	key := MessageUniqueKey(id)
	r.registryMu.Lock()
	sess, ok := r.byKey[key]
	r.registryMu.Unlock()
	if !ok {
		return &RouterError{Kind: RouterErrorUnknownMessage, Msg: "smsc: no connection registered for message key"}
	}
	return sess.DeliverSm(ctx, dsm, r.cfg.WindowTimeout)
}

func (r *Router) getDoneChan() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.doneChan == nil {
		r.doneChan = make(chan struct{})
	}
	return r.doneChan
}

// Close stops accepting new connections, closes all tracked sessions,
// and waits for their goroutines to finish.
func (r *Router) Close() error {
	r.mu.Lock()
	ch := r.getDoneChanLocked()
	select {
	case <-ch:
	default:
		close(ch)
	}
	var err error
	if r.listener != nil {
		err = r.listener.Close()
	}
	sessions := make([]*Session, 0, len(r.sessions))
	for s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	r.wg.Wait()
	return err
}

func (r *Router) getDoneChanLocked() chan struct{} {
	if r.doneChan == nil {
		r.doneChan = make(chan struct{})
	}
	return r.doneChan
}
