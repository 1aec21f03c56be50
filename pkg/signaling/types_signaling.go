// Package signaling contains the public domain models for the call-signaling
// relay. Signal payloads are opaque to the server: they are carried as raw
// JSON and never parsed or validated here.
package signaling

import "encoding/json"

// Kind discriminates the three relayed signaling events.
type Kind string

const (
	KindCallInitiate  Kind = "call-initiate"
	KindCallAnswer    Kind = "call-answer"
	KindCallTerminate Kind = "call-terminate"
)

// Envelope is the message forwarded to a target connection. It exists only
// for the duration of one relay operation and is never persisted.
//
// From is set for call-initiate so the callee knows who is ringing. A
// call-answer is always directed back at the original caller, so it carries
// no From. A call-terminate carries neither From nor Payload.
type Envelope struct {
	Kind    Kind            `json:"kind"`
	From    string          `json:"from,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Outcome is the result of a single relay operation. Relay failures are
// recoverable-by-caller outcomes, never errors: the caller decides whether
// to notify the originating connection.
type Outcome int

const (
	// OutcomeDelivered means the envelope was handed to the target's transport.
	OutcomeDelivered Outcome = iota
	// OutcomeTargetUnknown means the target user id has never registered.
	OutcomeTargetUnknown
	// OutcomeTargetOffline means the target is registered but has no live connection.
	OutcomeTargetOffline
	// OutcomeSendFailed means the presence entry resolved to a connection that
	// was stale or closed at send time. Callers treat this like TargetOffline.
	OutcomeSendFailed
)

// Delivered reports whether the envelope reached the target's transport.
func (o Outcome) Delivered() bool { return o == OutcomeDelivered }

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeTargetUnknown:
		return "target-unknown"
	case OutcomeTargetOffline:
		return "target-offline"
	case OutcomeSendFailed:
		return "send-failed"
	default:
		return "unknown"
	}
}
