package channels

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mdp/qrterminal/v3"

	"github.com/daus212/it-helper-bot/pkg/bus"
	"github.com/daus212/it-helper-bot/pkg/config"
)

// DefaultReconnectDelay is how long the channel waits between bridge
// reconnect attempts.
const DefaultReconnectDelay = 5 * time.Second

// bridgeFrame is the wire shape for both directions of bridge traffic.
// Inbound frames are "message", "qr" and "status"; outbound frames are
// "message", "presence" and "logout".
type bridgeFrame struct {
	Type string `json:"type"`

	// message fields
	ID        string `json:"id,omitempty"`
	From      string `json:"from,omitempty"`
	FromName  string `json:"from_name,omitempty"`
	Chat      string `json:"chat,omitempty"`
	To        string `json:"to,omitempty"`
	Content   string `json:"content,omitempty"`
	Kind      string `json:"kind,omitempty"`
	FromMe    bool   `json:"from_me,omitempty"`
	Stub      bool   `json:"stub,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`

	// qr fields
	Data string `json:"data,omitempty"`

	// status and presence fields
	State     string `json:"state,omitempty"`
	Error     string `json:"error,omitempty"`
	LoggedOut bool   `json:"logged_out,omitempty"`
}

// WhatsAppChannel connects to a WhatsApp bridge over WebSocket. The bridge
// speaks the actual WhatsApp protocol; this channel exchanges JSON frames
// with it and renders the pairing QR in the terminal.
type WhatsAppChannel struct {
	BaseChannel
	Config *config.WhatsAppConfig

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	running   bool
	stopChan  chan struct{}
}

// NewWhatsAppChannel creates a new WhatsAppChannel.
func NewWhatsAppChannel(cfg *config.WhatsAppConfig, messageBus *bus.MessageBus) *WhatsAppChannel {
	return &WhatsAppChannel{
		BaseChannel: BaseChannel{Bus: messageBus},
		Config:      cfg,
		stopChan:    make(chan struct{}),
	}
}

func (c *WhatsAppChannel) Name() string {
	return "whatsapp"
}

func (c *WhatsAppChannel) Start() error {
	if !c.Config.Enabled {
		return nil
	}
	if c.Config.BridgeURL == "" {
		return fmt.Errorf("whatsapp bridge URL is required")
	}

	c.mu.Lock()
	c.running = true
	c.mu.Unlock()

	if err := c.connect(); err != nil {
		// The listen loop keeps retrying; startup should not fail hard.
		log.Printf("initial WhatsApp bridge connection failed, will retry: %v", err)
	}

	go c.listenLoop()
	return nil
}

// Stop asks the bridge to log the session out, then closes the connection.
func (c *WhatsAppChannel) Stop() error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	c.mu.Unlock()

	close(c.stopChan)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		if err := c.writeFrame(bridgeFrame{Type: "logout"}); err != nil {
			log.Printf("failed to send logout frame: %v", err)
		}
		c.conn.Close()
		c.conn = nil
	}
	c.connected = false
	return nil
}

func (c *WhatsAppChannel) Send(msg bus.OutboundMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return fmt.Errorf("whatsapp bridge not connected")
	}

	return c.writeFrame(bridgeFrame{
		Type:    "message",
		ID:      uuid.New().String()[:8],
		To:      msg.To,
		Content: msg.Text,
	})
}

// SetPresence advertises composing or available to the chat. Presence is
// cosmetic; failures are reported but never block a reply.
func (c *WhatsAppChannel) SetPresence(to, state string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return fmt.Errorf("whatsapp bridge not connected")
	}
	return c.writeFrame(bridgeFrame{Type: "presence", To: to, State: state})
}

// writeFrame marshals and sends a frame. Callers must hold c.mu.
func (c *WhatsAppChannel) writeFrame(frame bridgeFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("marshal bridge frame: %w", err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write bridge frame: %w", err)
	}
	return nil
}

// stopped reports whether Stop has been called, without touching c.mu.
func (c *WhatsAppChannel) stopped() bool {
	select {
	case <-c.stopChan:
		return true
	default:
		return false
	}
}

func (c *WhatsAppChannel) connect() error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.Dial(c.Config.BridgeURL, nil)
	if err != nil {
		return fmt.Errorf("dial whatsapp bridge %s: %w", c.Config.BridgeURL, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	log.Printf("WhatsApp bridge connected at %s", c.Config.BridgeURL)
	return nil
}

func (c *WhatsAppChannel) reconnectDelay() time.Duration {
	if c.Config.ReconnectDelaySeconds > 0 {
		return time.Duration(c.Config.ReconnectDelaySeconds) * time.Second
	}
	return DefaultReconnectDelay
}

// listenLoop reads bridge frames and reconnects on failure with a fixed
// delay. It is the only reader of the connection.
func (c *WhatsAppChannel) listenLoop() {
	for {
		select {
		case <-c.stopChan:
			return
		default:
		}

		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()

		if conn == nil {
			select {
			case <-c.stopChan:
				return
			case <-time.After(c.reconnectDelay()):
			}

			if err := c.connect(); err != nil {
				log.Printf("WhatsApp bridge reconnect failed: %v", err)
			}
			continue
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if !c.stopped() {
				log.Printf("WhatsApp bridge read error, reconnecting: %v", err)
			}
			c.mu.Lock()
			if c.conn != nil {
				c.conn.Close()
				c.conn = nil
			}
			c.connected = false
			c.mu.Unlock()
			continue
		}

		var frame bridgeFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			log.Printf("invalid bridge frame: %v", err)
			continue
		}

		switch frame.Type {
		case "message":
			c.handleIncoming(frame)
		case "qr":
			c.renderQR(frame.Data)
		case "status":
			c.handleStatus(frame)
		}
	}
}

// handleIncoming converts a bridge message frame into a bus message. Echoes
// of our own sends and frames without a sender are dropped here; everything
// else is the orchestrator's call.
func (c *WhatsAppChannel) handleIncoming(frame bridgeFrame) {
	if frame.FromMe || frame.From == "" {
		return
	}

	// Media frames carry the caption as content; a captionless media frame
	// still flows through so the orchestrator can answer it by kind.
	c.HandleMessage(bus.InboundMessage{
		Channel:    c.Name(),
		ID:         frame.ID,
		Sender:     frame.From,
		SenderName: frame.FromName,
		Text:       frame.Content,
		Kind:       contentKind(frame.Kind),
		Stub:       frame.Stub,
		ReceivedAt: frame.Timestamp,
	})
}

func (c *WhatsAppChannel) renderQR(data string) {
	if data == "" {
		return
	}
	log.Printf("WhatsApp pairing required, scan the QR code below")
	qrterminal.GenerateWithConfig(data, qrterminal.Config{
		Level:     qrterminal.L,
		Writer:    os.Stdout,
		BlackChar: qrterminal.BLACK,
		WhiteChar: qrterminal.WHITE,
		QuietZone: 1,
	})
}

func (c *WhatsAppChannel) handleStatus(frame bridgeFrame) {
	switch frame.State {
	case "open":
		log.Printf("WhatsApp session open")
	case "close":
		if frame.LoggedOut {
			log.Printf("WhatsApp session logged out, delete the bridge session and re-pair")
			return
		}
		log.Printf("WhatsApp session closed: %s", frame.Error)
	}
}

func contentKind(kind string) bus.ContentKind {
	switch bus.ContentKind(kind) {
	case bus.KindText, bus.KindImage, bus.KindVideo, bus.KindAudio,
		bus.KindDocument, bus.KindSticker, bus.KindLocation, bus.KindContact:
		return bus.ContentKind(kind)
	case "":
		return bus.KindText
	default:
		return bus.KindUnknown
	}
}
