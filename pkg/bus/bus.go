package bus

// MessageBus decouples chat channels from the message orchestrator.
// Channels publish from their own receive loops; the orchestrator is the
// single consumer, so messages are processed strictly in arrival order.
type MessageBus struct {
	inbound  chan InboundMessage
	stopChan chan struct{}
}

// NewMessageBus creates a new MessageBus.
func NewMessageBus() *MessageBus {
	return &MessageBus{
		inbound:  make(chan InboundMessage, 100),
		stopChan: make(chan struct{}),
	}
}

// PublishInbound publishes a message from a channel to the orchestrator.
// Messages published after Stop are discarded.
func (b *MessageBus) PublishInbound(msg InboundMessage) {
	select {
	case b.inbound <- msg:
	case <-b.stopChan:
	}
}

// ConsumeInbound returns the channel to consume inbound messages from.
func (b *MessageBus) ConsumeInbound() <-chan InboundMessage {
	return b.inbound
}

// Done is closed when the bus is stopped.
func (b *MessageBus) Done() <-chan struct{} {
	return b.stopChan
}

// Stop stops the bus.
func (b *MessageBus) Stop() {
	close(b.stopChan)
}
