package smsc

import (
	"time"

	"go.uber.org/zap"

	"github.com/ajankovic/smsc/internal/smsclog"
)

// Config configures a Router, mirroring the teacher's plain
// SessionConf/BindConf pattern: a struct of zero-value-defaulted
// fields rather than a flag/file parsing layer (CLI wiring is out of
// scope, see SPEC_FULL.md §2.3).
type Config struct {
	// BindAddress is the TCP address to listen on, e.g. ":2775".
	BindAddress string
	// SystemID identifies this SMSC in bind responses. Defaults to
	// "smsc".
	SystemID string
	// MaxOpenSockets bounds the number of concurrently accepted
	// connections (spec §4.8.2's admission control). Zero means
	// unlimited.
	MaxOpenSockets int
	// WindowTimeout bounds how long the router waits for a response
	// to a PDU it sent (e.g. deliver_sm) before giving up.
	WindowTimeout time.Duration
	// Logger receives all structured log output. Defaults to a
	// smsclog.New("info") logger if nil.
	Logger *zap.SugaredLogger
	// Logic is the application callback invoked for bind and submit_sm
	// requests. It must be provided by the caller; NewRouter panics
	// if it is nil, the same way the teacher's Server requires a
	// SessionConf before Serve is useful.
	Logic Logic
}

func (c *Config) setDefaults() {
	if c.SystemID == "" {
		c.SystemID = "smsc"
	}
	if c.WindowTimeout <= 0 {
		c.WindowTimeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = smsclog.New("info")
	}
}
