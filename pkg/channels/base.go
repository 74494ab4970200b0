// Package channels contains the chat platform adapters. Each adapter parses
// platform traffic into bus messages and delivers replies back out.
package channels

import (
	"time"

	"github.com/daus212/it-helper-bot/pkg/bus"
)

// Presence states a channel can advertise while handling a message.
const (
	PresenceComposing = "composing"
	PresenceAvailable = "available"
)

// Channel is the interface for chat channels.
type Channel interface {
	Start() error
	Stop() error
	Send(msg bus.OutboundMessage) error
	SetPresence(to, state string) error
	Name() string
}

// BaseChannel provides common functionality for channels.
type BaseChannel struct {
	Bus *bus.MessageBus
}

// HandleMessage publishes a parsed incoming message to the bus. A zero
// receivedAt is stamped with the current time.
func (c *BaseChannel) HandleMessage(msg bus.InboundMessage) {
	if msg.ReceivedAt == 0 {
		msg.ReceivedAt = time.Now().UnixMilli()
	}
	if msg.Kind == "" {
		msg.Kind = bus.KindText
	}
	c.Bus.PublishInbound(msg)
}
