package bot

import (
	"fmt"
	"log"
	"strings"

	"github.com/daus212/it-helper-bot/pkg/audit"
	"github.com/daus212/it-helper-bot/pkg/knowledge"
)

// Owner command confirmations.
const (
	ReplyActivated   = "✅ Bot telah diaktifkan"
	ReplyDeactivated = "❌ Bot telah dinonaktifkan"
	ReplyStatusOn    = "Status Bot: Aktif ✅"
	ReplyStatusOff   = "Status Bot: Nonaktif ❌"
	ReplyLearnUsage  = "Format: /learn <pemicu> = <jawaban>"
	ReplyLearnFailed = "Gagal menyimpan jawaban, coba lagi"
	ReplyStatsFailed = "Gagal membaca statistik, coba lagi"
)

// Commands handles the owner's control commands.
type Commands struct {
	Owner     string
	State     *State
	Knowledge *knowledge.Store
	Audit     *audit.Log
}

// IsOwner reports whether sender is the configured owner. Platform IDs carry
// device and server suffixes, so both sides are reduced to their digits and
// compared for full equality. A prefixed lookalike number therefore never
// matches.
func (c *Commands) IsOwner(sender string) bool {
	owner := digitsOnly(c.Owner)
	if owner == "" {
		return false
	}
	return digitsOnly(sender) == owner
}

// IsCommand reports whether text looks like a control command.
func (c *Commands) IsCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "/")
}

// Handle executes an owner command and returns the confirmation to send
// back. Unrecognized commands return handled=false and flow on as ordinary
// messages.
func (c *Commands) Handle(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	switch lower {
	case "/bot on", "/on":
		c.State.SetActive(true)
		log.Printf("bot activated by owner")
		return ReplyActivated, true
	case "/bot off", "/off":
		c.State.SetActive(false)
		log.Printf("bot deactivated by owner")
		return ReplyDeactivated, true
	case "/status":
		if c.State.Active() {
			return ReplyStatusOn, true
		}
		return ReplyStatusOff, true
	case "/stats":
		return c.handleStats(), true
	}

	// Exact "/learn" or "/learn <args>", not lookalikes such as "/learned".
	if lower == "/learn" || strings.HasPrefix(lower, "/learn ") {
		return c.handleLearn(trimmed), true
	}

	return "", false
}

func (c *Commands) handleStats() string {
	stats, err := c.Audit.GetStats()
	if err != nil {
		log.Printf("failed to compute stats: %v", err)
		return ReplyStatsFailed
	}
	return fmt.Sprintf(
		"📊 Statistik Bot\nTotal pesan: %d\nMasuk: %d\nKeluar: %d\nError: %d\nPengirim unik: %d",
		stats.Total, stats.Incoming, stats.Outgoing, stats.Errors, stats.UniqueSenders,
	)
}

// handleLearn parses "/learn <trigger> = <answer>" and stores the pair.
func (c *Commands) handleLearn(text string) string {
	rest := strings.TrimSpace(text[len("/learn"):])
	trigger, answer, found := strings.Cut(rest, "=")
	trigger = strings.TrimSpace(trigger)
	answer = strings.TrimSpace(answer)

	if !found || trigger == "" || answer == "" {
		return ReplyLearnUsage
	}

	if err := c.Knowledge.Add(trigger, answer); err != nil {
		log.Printf("failed to store knowledge entry: %v", err)
		return ReplyLearnFailed
	}

	log.Printf("knowledge entry stored for trigger %q", trigger)
	return fmt.Sprintf("✅ Jawaban untuk %q telah disimpan", trigger)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
