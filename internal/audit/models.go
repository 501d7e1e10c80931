package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action names a step of the startup lifecycle.
type Action string

const (
	ActionStartupStarted   Action = "startup_started"
	ActionStartupSucceeded Action = "startup_succeeded"
	ActionStartupFailed    Action = "startup_failed"
	ActionStartupCancelled Action = "startup_cancelled"
)

// Event records one startup step of a player. Events of one startup share
// a SessionID.
type Event struct {
	ID        uuid.UUID
	Timestamp time.Time
	UserID    string
	SessionID uuid.UUID
	Action    Action
	Outcome   int
	Reason    string
}
