package channels

import (
	"fmt"
	"log"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/daus212/it-helper-bot/pkg/bus"
	"github.com/daus212/it-helper-bot/pkg/config"
)

// TelegramChannel implements the Telegram channel.
type TelegramChannel struct {
	BaseChannel
	Config *config.TelegramConfig
	bot    *tgbotapi.BotAPI

	mu      sync.Mutex
	running bool
}

// NewTelegramChannel creates a new TelegramChannel.
func NewTelegramChannel(cfg *config.TelegramConfig, messageBus *bus.MessageBus) *TelegramChannel {
	return &TelegramChannel{
		BaseChannel: BaseChannel{Bus: messageBus},
		Config:      cfg,
	}
}

func (c *TelegramChannel) Name() string {
	return "telegram"
}

func (c *TelegramChannel) Start() error {
	if !c.Config.Enabled || c.Config.Token == "" {
		return nil
	}

	var err error
	c.bot, err = tgbotapi.NewBotAPI(c.Config.Token)
	if err != nil {
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	log.Printf("Telegram bot authorized on account %s", c.bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := c.bot.GetUpdatesChan(u)
	c.mu.Lock()
	c.running = true
	c.mu.Unlock()

	go func() {
		for update := range updates {
			if !c.isRunning() {
				break
			}
			if update.Message == nil {
				continue
			}
			c.handleUpdate(update)
		}
	}()

	return nil
}

func (c *TelegramChannel) Stop() error {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
	if c.bot != nil {
		c.bot.StopReceivingUpdates()
	}
	return nil
}

func (c *TelegramChannel) isRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *TelegramChannel) Send(msg bus.OutboundMessage) error {
	if c.bot == nil {
		return fmt.Errorf("telegram bot not initialized")
	}

	chatID, err := strconv.ParseInt(msg.To, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID: %s", msg.To)
	}

	reply := tgbotapi.NewMessage(chatID, msg.Text)
	_, err = c.bot.Send(reply)
	return err
}

// SetPresence maps composing to Telegram's typing chat action. Telegram has
// no explicit available state, so that direction is a no-op.
func (c *TelegramChannel) SetPresence(to, state string) error {
	if c.bot == nil {
		return fmt.Errorf("telegram bot not initialized")
	}
	if state != PresenceComposing {
		return nil
	}

	chatID, err := strconv.ParseInt(to, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID: %s", to)
	}

	_, err = c.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
	return err
}

func (c *TelegramChannel) handleUpdate(update tgbotapi.Update) {
	msg := update.Message
	sender := strconv.FormatInt(msg.Chat.ID, 10)

	// From is optional on channel posts and some service messages.
	senderName := ""
	if msg.From != nil {
		senderName = msg.From.FirstName
	}

	// Group chats get the same suffix convention the bot's validity checks
	// key on, so group traffic is ignored uniformly across channels.
	if msg.Chat.IsGroup() || msg.Chat.IsSuperGroup() {
		sender += "@g.us"
	}

	text := msg.Text
	kind := bus.KindText
	switch {
	case msg.Photo != nil:
		kind = bus.KindImage
		text = msg.Caption
	case msg.Voice != nil, msg.Audio != nil:
		kind = bus.KindAudio
		text = msg.Caption
	case msg.Video != nil:
		kind = bus.KindVideo
		text = msg.Caption
	case msg.Document != nil:
		kind = bus.KindDocument
		text = msg.Caption
	case msg.Sticker != nil:
		kind = bus.KindSticker
	}

	c.HandleMessage(bus.InboundMessage{
		Channel:    c.Name(),
		ID:         strconv.Itoa(msg.MessageID),
		Sender:     sender,
		SenderName: senderName,
		Text:       text,
		Kind:       kind,
		ReceivedAt: int64(msg.Date) * 1000,
	})
}
