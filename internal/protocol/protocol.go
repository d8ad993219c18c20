// Package protocol defines the wire frames replicating expedition state
// between the authoritative side and its peers. A frame is one kind byte
// followed by a JSON payload; the channel underneath must be ordered and
// reliable, receivers overwrite their mirror with the latest sync.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind is the single-byte frame discriminator.
type Kind byte

const (
	// Handshake (client -> server, first frame on a connection).
	KindHello Kind = 0x01

	// Server -> client(s): full-state overwrite of one player's mirror.
	KindSyncPlayer Kind = 0x02

	// Client -> server requests. Never direct mutations; a failed request
	// produces no sync and is silently absorbed.
	KindStartExpedition    Kind = 0x10
	KindConditionProgress  Kind = 0x11
	KindCompleteExpedition Kind = 0x12
	KindClaimRewards       Kind = 0x13
)

func (k Kind) String() string {
	switch k {
	case KindHello:
		return "HELLO"
	case KindSyncPlayer:
		return "SYNC_PLAYER"
	case KindStartExpedition:
		return "START_EXPEDITION"
	case KindConditionProgress:
		return "CONDITION_PROGRESS"
	case KindCompleteExpedition:
		return "COMPLETE_EXPEDITION"
	case KindClaimRewards:
		return "CLAIM_REWARDS"
	default:
		return fmt.Sprintf("KIND_0x%02X", byte(k))
	}
}

var errEmptyFrame = errors.New("protocol: empty frame")

// Encode builds a frame from a kind and its payload struct.
func Encode(kind Kind, payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", kind, err)
	}
	frame := make([]byte, 0, 1+len(b))
	frame = append(frame, byte(kind))
	frame = append(frame, b...)
	return frame, nil
}

// Split peels the kind byte off a frame. The payload is decoded by the
// caller once it knows the kind; a corrupt payload is the caller's cue to
// discard the frame, never to crash.
func Split(frame []byte) (Kind, []byte, error) {
	if len(frame) == 0 {
		return 0, nil, errEmptyFrame
	}
	return Kind(frame[0]), frame[1:], nil
}
