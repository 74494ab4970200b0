package bus

// ContentKind identifies the payload type of an incoming message.
type ContentKind string

const (
	KindText     ContentKind = "text"
	KindImage    ContentKind = "image"
	KindVideo    ContentKind = "video"
	KindAudio    ContentKind = "audio"
	KindDocument ContentKind = "document"
	KindSticker  ContentKind = "sticker"
	KindLocation ContentKind = "location"
	KindContact  ContentKind = "contact"
	KindUnknown  ContentKind = "unknown"
)

// InboundMessage represents a parsed message received from a chat channel.
// Channels only materialize messages that carry a text body and do not
// originate from the bot itself; anything else is dropped at the adapter.
type InboundMessage struct {
	Channel    string      `json:"channel"`
	ID         string      `json:"id"`
	Sender     string      `json:"sender"`
	SenderName string      `json:"sender_name,omitempty"`
	Text       string      `json:"text"`
	Kind       ContentKind `json:"kind"`
	Stub       bool        `json:"stub,omitempty"`
	ReceivedAt int64       `json:"received_at"` // unix milliseconds
}

// OutboundMessage represents a reply to send through a chat channel.
type OutboundMessage struct {
	Channel string `json:"channel"`
	To      string `json:"to"`
	Text    string `json:"text"`
}
