package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

type BotConfig struct {
	Active      bool   `json:"active"`
	OwnerNumber string `json:"ownerNumber"`
	Workspace   string `json:"workspace"`
}

type WhatsAppConfig struct {
	Enabled               bool   `json:"enabled"`
	BridgeURL             string `json:"bridgeUrl"`
	ReconnectDelaySeconds int    `json:"reconnectDelaySeconds"`
}

type TelegramConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
}

type ChannelsConfig struct {
	WhatsApp WhatsAppConfig `json:"whatsapp"`
	Telegram TelegramConfig `json:"telegram"`
}

// ModelsConfig carries the completion API credentials, the two model tiers
// and the sampling parameters shared between them.
type ModelsConfig struct {
	APIKey           string  `json:"apiKey"`
	APIBase          string  `json:"apiBase,omitempty"`
	FastModel        string  `json:"fastModel"`
	DeepModel        string  `json:"deepModel"`
	MaxTokensFast    int     `json:"maxTokensFast"`
	MaxTokensDeep    int     `json:"maxTokensDeep"`
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"topP"`
	PresencePenalty  float64 `json:"presencePenalty"`
	FrequencyPenalty float64 `json:"frequencyPenalty"`
	SystemPrompt     string  `json:"systemPrompt"`
	TimeoutSeconds   int     `json:"timeoutSeconds"`
}

type RateLimitConfig struct {
	WindowSeconds int    `json:"windowSeconds"`
	MaxRequests   int    `json:"maxRequests"`
	SweepSchedule string `json:"sweepSchedule"`
}

type StorageConfig struct {
	LexiconPath   string `json:"lexiconPath"`
	KnowledgePath string `json:"knowledgePath"`
	AuditPath     string `json:"auditPath"`
}

// RepliesConfig holds every fixed user-visible string so operators can
// localize without rebuilding.
type RepliesConfig struct {
	RateLimited string `json:"rateLimited"`
	Image       string `json:"image"`
	ConfigError string `json:"configError"`
	Busy        string `json:"busy"`
	ServerError string `json:"serverError"`
	Timeout     string `json:"timeout"`
	Generic     string `json:"generic"`
}

type Config struct {
	Bot       BotConfig       `json:"bot"`
	Channels  ChannelsConfig  `json:"channels"`
	Models    ModelsConfig    `json:"models"`
	RateLimit RateLimitConfig `json:"rateLimit"`
	Storage   StorageConfig   `json:"storage"`
	Replies   RepliesConfig   `json:"replies"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	workspace := ".helperbot"
	return &Config{
		Bot: BotConfig{
			Active:    true,
			Workspace: workspace,
		},
		Channels: ChannelsConfig{
			WhatsApp: WhatsAppConfig{
				Enabled:               true,
				BridgeURL:             "ws://localhost:3001",
				ReconnectDelaySeconds: 5,
			},
		},
		Models: ModelsConfig{
			FastModel:        "mistralai/mistral-7b-instruct",
			DeepModel:        "deepseek/deepseek-r1",
			MaxTokensFast:    400,
			MaxTokensDeep:    800,
			Temperature:      0.7,
			TopP:             0.9,
			PresencePenalty:  0.3,
			FrequencyPenalty: 0.2,
			SystemPrompt: "Kamu adalah asisten IT yang membantu menjawab pertanyaan seputar " +
				"komputer, laptop, jaringan dan software dalam bahasa Indonesia. " +
				"Jawab dengan singkat, jelas dan praktis.",
			TimeoutSeconds: 30,
		},
		RateLimit: RateLimitConfig{
			WindowSeconds: 60,
			MaxRequests:   8,
			SweepSchedule: "@every 5m",
		},
		Storage: StorageConfig{
			LexiconPath:   filepath.Join(workspace, "lexicon.yaml"),
			KnowledgePath: filepath.Join(workspace, "knowledgebase.json"),
			AuditPath:     filepath.Join(workspace, "logs", "log.json"),
		},
		Replies: RepliesConfig{
			RateLimited: "⏳ Terlalu banyak pertanyaan. Silakan tunggu sebentar ya.",
			Image:       "Maaf, saya belum bisa memproses gambar saat ini.",
			ConfigError: "Maaf, terjadi masalah dengan konfigurasi bot. Silakan hubungi admin.",
			Busy:        "Maaf, bot sedang sibuk. Silakan coba lagi dalam beberapa menit.",
			ServerError: "Maaf, terjadi gangguan server. Silakan coba lagi nanti.",
			Timeout:     "Maaf, response terlalu lama. Silakan coba dengan pertanyaan yang lebih singkat.",
			Generic:     "Maaf, terjadi kesalahan teknis. Silakan coba lagi nanti.",
		},
	}
}

// LoadConfig loads the configuration from the given path, overlaying the
// defaults, then applies environment overrides on top.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = filepath.Join(".helperbot", "config.json")
	}

	config := DefaultConfig()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			config.applyEnv()
			return config, nil
		}
		return nil, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}

	config.applyEnv()
	return config, nil
}

// applyEnv maps the environment variables the bot has historically used
// onto the config. Environment wins over the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		c.Models.APIKey = v
	}
	if v := os.Getenv("OWNER_NUMBER"); v != "" {
		c.Bot.OwnerNumber = v
	}
	if v := os.Getenv("BOT_ACTIVE"); v != "" {
		c.Bot.Active = v == "true"
	}
	if v := os.Getenv("PRIMARY_MODEL"); v != "" {
		c.Models.FastModel = v
	}
	if v := os.Getenv("FALLBACK_MODEL"); v != "" {
		c.Models.DeepModel = v
	}
	if v := os.Getenv("MAX_TOKENS_PRIMARY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Models.MaxTokensFast = n
		}
	}
	if v := os.Getenv("MAX_TOKENS_FALLBACK"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Models.MaxTokensDeep = n
		}
	}
	if v := os.Getenv("SYSTEM_PROMPT"); v != "" {
		c.Models.SystemPrompt = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Channels.Telegram.Token = v
	}
	if v := os.Getenv("WHATSAPP_BRIDGE_URL"); v != "" {
		c.Channels.WhatsApp.BridgeURL = v
	}
}
