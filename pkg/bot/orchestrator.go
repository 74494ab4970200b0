package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/daus212/it-helper-bot/pkg/audit"
	"github.com/daus212/it-helper-bot/pkg/bus"
	"github.com/daus212/it-helper-bot/pkg/channels"
	"github.com/daus212/it-helper-bot/pkg/classifier"
	"github.com/daus212/it-helper-bot/pkg/ratelimit"
	"github.com/daus212/it-helper-bot/pkg/router"
)

// Replies are the orchestrator's own user-visible strings; the router
// carries its error replies separately.
type Replies struct {
	RateLimited string
	Image       string
}

// Orchestrator consumes the message bus and runs each message through the
// full handling pipeline. It is the bus's single consumer, so messages are
// processed strictly in arrival order.
type Orchestrator struct {
	Bus        *bus.MessageBus
	Channels   map[string]channels.Channel
	State      *State
	Commands   *Commands
	Classifier *classifier.Classifier
	Limiter    *ratelimit.Limiter
	Router     *router.Router
	Audit      *audit.Log
	Replies    Replies
}

// Run consumes the bus until it is stopped.
func (o *Orchestrator) Run(ctx context.Context) {
	log.Printf("message orchestrator running")
	for {
		select {
		case <-o.Bus.Done():
			return
		case msg := <-o.Bus.ConsumeInbound():
			o.process(ctx, msg)
		}
	}
}

// process wraps handleMessage in a recover boundary. A panic while handling
// one message is recorded and must never take down the loop.
func (o *Orchestrator) process(ctx context.Context, msg bus.InboundMessage) {
	defer func() {
		if r := recover(); r != nil {
			o.auditError(msg.Sender, fmt.Sprintf("panic handling message: %v", r))
		}
	}()
	o.handleMessage(ctx, msg)
}

func (o *Orchestrator) handleMessage(ctx context.Context, msg bus.InboundMessage) {
	if msg.Text == "" && msg.Kind != bus.KindImage {
		return
	}

	if err := o.Audit.Append(audit.KindIncoming, msg.Sender, auditText(msg), msg.ID, msg.ReceivedAt); err != nil {
		log.Printf("failed to record incoming message: %v", err)
	}

	if o.Commands.IsOwner(msg.Sender) && o.Commands.IsCommand(msg.Text) {
		if reply, handled := o.Commands.Handle(msg.Text); handled {
			o.reply(msg, reply)
			return
		}
	}

	if !o.State.Active() {
		return
	}

	if !o.isAnswerable(msg) {
		return
	}

	if msg.Kind == bus.KindImage {
		o.reply(msg, o.Replies.Image)
		return
	}

	if !o.Classifier.IsRelevant(msg.Text) {
		return
	}

	if !o.Limiter.CheckAndRecord(msg.Sender) {
		log.Printf("rate limit exceeded for %s", msg.Sender)
		o.reply(msg, o.Replies.RateLimited)
		return
	}

	o.setPresence(msg, channels.PresenceComposing)
	answer := o.Router.Answer(ctx, msg.Text)
	o.reply(msg, answer)
	o.setPresence(msg, channels.PresenceAvailable)
}

// isAnswerable drops traffic the bot never answers: group chats, status
// broadcasts and protocol stub events.
func (o *Orchestrator) isAnswerable(msg bus.InboundMessage) bool {
	if msg.Stub {
		return false
	}
	if strings.HasSuffix(msg.Sender, "@g.us") {
		return false
	}
	if msg.Sender == "status@broadcast" {
		return false
	}
	return true
}

// reply sends text back to the message's sender and records the outcome.
// The outgoing audit entry is written only after the send succeeded.
func (o *Orchestrator) reply(msg bus.InboundMessage, text string) {
	ch, ok := o.Channels[msg.Channel]
	if !ok {
		o.auditError(msg.Sender, fmt.Sprintf("no channel %q to reply on", msg.Channel))
		return
	}

	if err := ch.Send(bus.OutboundMessage{Channel: msg.Channel, To: msg.Sender, Text: text}); err != nil {
		o.auditError(msg.Sender, fmt.Sprintf("send failed: %v", err))
		return
	}

	if err := o.Audit.Append(audit.KindOutgoing, msg.Sender, text, "", 0); err != nil {
		log.Printf("failed to record outgoing message: %v", err)
	}
}

func (o *Orchestrator) setPresence(msg bus.InboundMessage, state string) {
	ch, ok := o.Channels[msg.Channel]
	if !ok {
		return
	}
	if err := ch.SetPresence(msg.Sender, state); err != nil {
		log.Printf("failed to set presence %s: %v", state, err)
	}
}

// auditError records a handling failure. If even the audit write fails the
// error still reaches the process log.
func (o *Orchestrator) auditError(sender, message string) {
	log.Printf("error handling message from %s: %s", sender, message)
	if err := o.Audit.Append(audit.KindError, sender, message, "", 0); err != nil {
		log.Printf("failed to record error entry: %v", err)
	}
}

// auditText is what lands in the audit trail for an incoming message. Media
// without a caption is recorded by its kind.
func auditText(msg bus.InboundMessage) string {
	if msg.Text != "" {
		return msg.Text
	}
	return fmt.Sprintf("[%s]", msg.Kind)
}
