package smsc

import (
	"context"

	"github.com/ajankovic/smsc/pdu"
)

// MessageUniqueKey identifies a message this SMSC has accepted, for
// the sole purpose of routing a later inbound deliver_sm (typically a
// delivery receipt) back to the connection that submitted it. It is
// opaque to the router: Logic chooses the scheme (e.g. the
// message_id it assigns).
type MessageUniqueKey string

// BindError is returned by Logic.Bind to refuse a bind attempt with a
// specific SMPP command_status, e.g. ESME_RINVPASWD.
type BindError struct {
	Status uint32
	Msg    string
}

func (e *BindError) Error() string { return e.Msg }

// SubmitSmError is returned by Logic.SubmitSm to refuse a submission
// with a specific SMPP command_status.
type SubmitSmError struct {
	Status uint32
	Msg    string
}

func (e *SubmitSmError) Error() string { return e.Msg }

// Logic is the application collaborator this SMSC delegates business
// decisions to: whether to accept a bind, and whether/how to accept a
// submit_sm. It is intentionally the only extension point a caller
// must implement; the router and session engine own everything about
// the wire protocol and connection lifecycle.
type Logic interface {
	// Bind validates credentials for a bind_transmitter,
	// bind_receiver or bind_transceiver request. A non-nil *BindError
	// becomes the command_status of the bind response; any other
	// error is treated as ESME_RSYSERR.
	Bind(ctx context.Context, systemID, password, systemType string) error

	// SubmitSm accepts a short message for delivery and returns the
	// message_id to report back in submit_sm_resp, plus the
	// MessageUniqueKey this SMSC will use if it later needs to route
	// an inbound deliver_sm (e.g. a delivery receipt) back to this
	// connection.
	SubmitSm(ctx context.Context, sm *pdu.SubmitSm) (messageID string, key MessageUniqueKey, err error)
}
