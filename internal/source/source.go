// Package source defines the inbound message feed consumed by the
// sniffer: framed application messages, not raw link-layer packets.
package source

import (
	"context"
	"time"
)

// Direction tells which way a message crossed the wire.
type Direction int

const (
	DirectionOutbound Direction = iota // client → server
	DirectionInbound                   // server → client
)

func (d Direction) String() string {
	if d == DirectionInbound {
		return "IN"
	}
	return "OUT"
}

// Message is one complete, already-framed application message. Payload
// excludes the opcode header.
type Message struct {
	Opcode    uint32
	Payload   []byte
	Direction Direction
	Timestamp time.Time
}

// Source delivers messages one at a time through emit, in capture
// order. Run returns when the feed is exhausted or ctx is cancelled;
// emit is never called concurrently.
type Source interface {
	Run(ctx context.Context, emit func(Message)) error
}
