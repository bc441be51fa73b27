package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Mykel-Eze/tcn-invite/cmd/identity/ids"
)

// Subprotocol is negotiated on every check-in feed connection.
const Subprotocol = "tcn.checkins.v1"

// Version is embedded into every envelope.
const Version = 1

// Envelope types.
const (
	TypeHello            = "hello"
	TypeHelloAck         = "hello.ack"
	TypeCheckInConfirmed = "checkin.confirmed"
	TypeError            = "error"
)

var inboundTypes = map[string]struct{}{
	TypeHello: {},
}

// Envelope is the frame exchanged on the feed.
type Envelope struct {
	V       int             `json:"v"`
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	TS      time.Time       `json:"ts"`
	Payload json.RawMessage `json:"payload"`
}

// Validate checks an inbound envelope.
func (e Envelope) Validate() error {
	if e.V != Version {
		return fmt.Errorf("invalid protocol version: got=%d want=%d", e.V, Version)
	}
	if e.Type == "" {
		return errors.New("missing type")
	}
	if _, ok := inboundTypes[e.Type]; !ok {
		return fmt.Errorf("unsupported type: %s", e.Type)
	}
	if e.ID == "" {
		return errors.New("missing id")
	}
	return nil
}

// HelloAckPayload answers a hello.
type HelloAckPayload struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
}

// CheckInPayload describes one confirmed attendance.
type CheckInPayload struct {
	InvitationID string    `json:"invitation_id"`
	GuestName    string    `json:"guest_name"`
	CampusID     string    `json:"campus_id"`
	CampusName   string    `json:"campus_name,omitempty"`
	ServiceTime  string    `json:"service_time,omitempty"`
	InviterID    string    `json:"inviter_id"`
	InviterName  string    `json:"inviter_name,omitempty"`
	VerifiedBy   string    `json:"verified_by"`
	AttendedAt   time.Time `json:"attended_at"`
}

// ErrorPayload carries a stable code and a short message.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newEnvelope(typ string, payload any, ts time.Time) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	id, err := ids.New(ts)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{V: Version, Type: typ, ID: id, TS: ts, Payload: b}, nil
}
