package smsc

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ajankovic/smsc/pdu"
)

// ExampleLogic is an illustrative in-memory Logic implementation kept
// as a testable reference: it is not part of the router's public
// contract (spec treats Logic as an external collaborator specified
// only by its interface), but gives the MessageUniqueKey scheme
// concrete, working code instead of a TODO.
type ExampleLogic struct {
	// Credentials maps system_id to the expected password. A nil map
	// accepts any system_id/password pair; an empty non-nil map
	// accepts none.
	Credentials map[string]string

	counter uint64

	mu       sync.Mutex
	messages map[MessageUniqueKey]*pdu.SubmitSm
}

// NewExampleLogic builds an ExampleLogic with the given credential
// table (nil accepts anything).
func NewExampleLogic(credentials map[string]string) *ExampleLogic {
	return &ExampleLogic{
		Credentials: credentials,
		messages:    make(map[MessageUniqueKey]*pdu.SubmitSm),
	}
}

// Bind implements Logic.
func (l *ExampleLogic) Bind(ctx context.Context, systemID, password, systemType string) error {
	if l.Credentials == nil {
		return nil
	}
	want, ok := l.Credentials[systemID]
	if !ok || want != password {
		return &BindError{Status: pdu.StatusInvPaswd, Msg: "smsc: invalid system_id/password"}
	}
	return nil
}

// SubmitSm implements Logic: it assigns an incrementing message_id
// and uses that same string as the MessageUniqueKey, so a later
// deliver_sm carrying "id:<message_id>" in its short_message routes
// back to the submitting connection.
func (l *ExampleLogic) SubmitSm(ctx context.Context, sm *pdu.SubmitSm) (string, MessageUniqueKey, error) {
	n := atomic.AddUint64(&l.counter, 1)
	messageID := fmt.Sprintf("%d", n)
	key := MessageUniqueKey(messageID)

	l.mu.Lock()
	l.messages[key] = sm
	l.mu.Unlock()

	return messageID, key, nil
}
