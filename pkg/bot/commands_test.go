package bot

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/daus212/it-helper-bot/pkg/audit"
	"github.com/daus212/it-helper-bot/pkg/knowledge"
)

func newTestCommands(t *testing.T, owner string, active bool) *Commands {
	t.Helper()
	dir := t.TempDir()
	return &Commands{
		Owner:     owner,
		State:     NewState(active),
		Knowledge: knowledge.NewStore(filepath.Join(dir, "kb.json")),
		Audit:     audit.NewLog(filepath.Join(dir, "audit.json")),
	}
}

func TestIsOwner(t *testing.T) {
	tests := []struct {
		name   string
		owner  string
		sender string
		want   bool
	}{
		{"bare number", "628131914634", "628131914634", true},
		{"device suffix", "628131914634", "628131914634@s.whatsapp.net", true},
		{"formatted owner", "+62 813-1914-634", "628131914634@s.whatsapp.net", true},
		{"prefixed lookalike", "628131914634", "1628131914634@s.whatsapp.net", false},
		{"different number", "628131914634", "628999999999@s.whatsapp.net", false},
		{"owner unset", "", "628131914634", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCommands(t, tt.owner, true)
			if got := c.IsOwner(tt.sender); got != tt.want {
				t.Errorf("IsOwner(%q) = %v, want %v", tt.sender, got, tt.want)
			}
		})
	}
}

func TestActivationCommands(t *testing.T) {
	tests := []struct {
		cmd        string
		wantReply  string
		wantActive bool
	}{
		{"/bot on", ReplyActivated, true},
		{"/on", ReplyActivated, true},
		{"/BOT ON", ReplyActivated, true},
		{"/bot off", ReplyDeactivated, false},
		{"/off", ReplyDeactivated, false},
	}

	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			c := newTestCommands(t, "628111", !tt.wantActive)

			reply, handled := c.Handle(tt.cmd)
			if !handled {
				t.Fatalf("Handle(%q) not handled", tt.cmd)
			}
			if reply != tt.wantReply {
				t.Errorf("reply = %q, want %q", reply, tt.wantReply)
			}
			if c.State.Active() != tt.wantActive {
				t.Errorf("active = %v, want %v", c.State.Active(), tt.wantActive)
			}
		})
	}
}

func TestStatusCommand(t *testing.T) {
	c := newTestCommands(t, "628111", true)
	if reply, _ := c.Handle("/status"); reply != ReplyStatusOn {
		t.Errorf("reply = %q", reply)
	}

	c.State.SetActive(false)
	if reply, _ := c.Handle("/status"); reply != ReplyStatusOff {
		t.Errorf("reply = %q", reply)
	}
}

func TestLearnCommand(t *testing.T) {
	c := newTestCommands(t, "628111", true)

	reply, handled := c.Handle("/learn printer macet = Matikan printer lalu cabut kertas yang tersangkut.")
	if !handled {
		t.Fatal("not handled")
	}
	if !strings.Contains(reply, "printer macet") {
		t.Errorf("reply = %q", reply)
	}

	answer, ok := c.Knowledge.Lookup("kenapa printer macet terus")
	if !ok || answer != "Matikan printer lalu cabut kertas yang tersangkut." {
		t.Errorf("Lookup = %q, %v", answer, ok)
	}
}

func TestLearnCommandUsage(t *testing.T) {
	c := newTestCommands(t, "628111", true)

	for _, cmd := range []string{"/learn", "/learn no separator", "/learn = jawaban", "/learn pemicu ="} {
		if reply, _ := c.Handle(cmd); reply != ReplyLearnUsage {
			t.Errorf("Handle(%q) = %q, want usage reply", cmd, reply)
		}
	}
}

func TestStatsCommand(t *testing.T) {
	c := newTestCommands(t, "628111", true)
	c.Audit.Append(audit.KindIncoming, "628222", "wifi putus", "m1", 0)
	c.Audit.Append(audit.KindOutgoing, "628222", "Coba restart router.", "", 0)

	reply, handled := c.Handle("/stats")
	if !handled {
		t.Fatal("not handled")
	}
	if !strings.Contains(reply, "Total pesan: 2") || !strings.Contains(reply, "Pengirim unik: 1") {
		t.Errorf("reply = %q", reply)
	}
}

func TestUnknownCommandNotHandled(t *testing.T) {
	c := newTestCommands(t, "628111", true)

	for _, cmd := range []string{"/restart", "/learned sesuatu", "/learnxyz a = b"} {
		if _, handled := c.Handle(cmd); handled {
			t.Errorf("Handle(%q) should not be handled", cmd)
		}
	}
}
