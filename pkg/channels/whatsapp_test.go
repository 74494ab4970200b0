package channels

import (
	"testing"

	"github.com/daus212/it-helper-bot/pkg/bus"
	"github.com/daus212/it-helper-bot/pkg/config"
)

func newTestWhatsApp() *WhatsAppChannel {
	cfg := &config.WhatsAppConfig{Enabled: true, BridgeURL: "ws://localhost:3001"}
	return NewWhatsAppChannel(cfg, bus.NewMessageBus())
}

func takeInbound(b *bus.MessageBus) (bus.InboundMessage, bool) {
	select {
	case msg := <-b.ConsumeInbound():
		return msg, true
	default:
		return bus.InboundMessage{}, false
	}
}

func TestHandleIncomingPublishes(t *testing.T) {
	c := newTestWhatsApp()

	c.handleIncoming(bridgeFrame{
		Type:      "message",
		ID:        "m1",
		From:      "628222@s.whatsapp.net",
		FromName:  "Budi",
		Content:   "kenapa wifi putus",
		Kind:      "text",
		Timestamp: 1700000000000,
	})

	msg, ok := takeInbound(c.Bus)
	if !ok {
		t.Fatal("no message published")
	}
	if msg.Channel != "whatsapp" || msg.ID != "m1" {
		t.Errorf("msg = %+v", msg)
	}
	if msg.Sender != "628222@s.whatsapp.net" || msg.SenderName != "Budi" {
		t.Errorf("sender = %q (%q)", msg.Sender, msg.SenderName)
	}
	if msg.Text != "kenapa wifi putus" || msg.Kind != bus.KindText {
		t.Errorf("text = %q kind = %q", msg.Text, msg.Kind)
	}
	if msg.ReceivedAt != 1700000000000 {
		t.Errorf("receivedAt = %d", msg.ReceivedAt)
	}
}

func TestHandleIncomingDropsEchoesAndAnonymous(t *testing.T) {
	c := newTestWhatsApp()

	frames := []bridgeFrame{
		{Type: "message", From: "628222", Content: "halo", FromMe: true},
		{Type: "message", From: "", Content: "halo"},
	}
	for _, f := range frames {
		c.handleIncoming(f)
	}

	if msg, ok := takeInbound(c.Bus); ok {
		t.Errorf("frame should have been dropped, got %+v", msg)
	}
}

func TestHandleIncomingImageCaption(t *testing.T) {
	c := newTestWhatsApp()

	c.handleIncoming(bridgeFrame{
		Type:    "message",
		From:    "628222",
		Content: "screenshot error ini kenapa ya",
		Kind:    "image",
	})

	msg, ok := takeInbound(c.Bus)
	if !ok {
		t.Fatal("no message published")
	}
	if msg.Kind != bus.KindImage || msg.Text != "screenshot error ini kenapa ya" {
		t.Errorf("kind = %q text = %q", msg.Kind, msg.Text)
	}
}

func TestHandleIncomingCaptionlessImageStillFlows(t *testing.T) {
	c := newTestWhatsApp()

	c.handleIncoming(bridgeFrame{Type: "message", From: "628222", Kind: "image"})

	msg, ok := takeInbound(c.Bus)
	if !ok {
		t.Fatal("captionless image should still reach the bus")
	}
	if msg.Kind != bus.KindImage || msg.Text != "" {
		t.Errorf("kind = %q text = %q", msg.Kind, msg.Text)
	}
}

func TestHandleIncomingStubFlag(t *testing.T) {
	c := newTestWhatsApp()

	c.handleIncoming(bridgeFrame{Type: "message", From: "628222", Content: "x", Stub: true})

	msg, ok := takeInbound(c.Bus)
	if !ok {
		t.Fatal("no message published")
	}
	if !msg.Stub {
		t.Error("stub flag should survive parsing")
	}
}

func TestContentKind(t *testing.T) {
	tests := []struct {
		in   string
		want bus.ContentKind
	}{
		{"text", bus.KindText},
		{"", bus.KindText},
		{"image", bus.KindImage},
		{"audio", bus.KindAudio},
		{"sticker", bus.KindSticker},
		{"location", bus.KindLocation},
		{"gif", bus.KindUnknown},
		{"reaction", bus.KindUnknown},
	}

	for _, tt := range tests {
		if got := contentKind(tt.in); got != tt.want {
			t.Errorf("contentKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
