package config

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
)

// Config defines the global application configuration structure.
// This structure maps directly to the config.json file and holds
// business-level settings like channel API keys and LLM provider choices.
type Config struct {
	// Channels contains a map of channel identifiers (e.g., "telegram", "web")
	// to their specific configuration payloads in raw JSON format.
	Channels map[string]jsoniter.RawMessage `json:"channels"`
	// LLM holds the ordered LLM provider list ("providers") and an optional
	// "default_model" in raw JSON; main.go chains the providers as fallbacks.
	LLM jsoniter.RawMessage `json:"llm"`
	// SystemPrompt is the global persona/instruction string sent to the AI
	// as the initial system message in every conversation.
	SystemPrompt string `json:"system_prompt"`
}

// DeepCopy creates a shallow copy of Config.
// Since Channels is a map, we need to clone the map itself.
func (c *Config) DeepCopy() *Config {
	newCfg := *c
	if c.Channels != nil {
		newCfg.Channels = make(map[string]jsoniter.RawMessage)
		for k, v := range c.Channels {
			newCfg.Channels[k] = v
		}
	}
	return &newCfg
}

// Validate ensures the configuration structure contains all mandatory fields.
// It acts as a primary guard before the system proceeds to initialization.
func (c *Config) Validate() error {
	if len(c.LLM) == 0 {
		return fmt.Errorf("mandatory 'llm' configuration is missing or empty")
	}
	return nil
}

// SystemConfig defines engine-level technical parameters.
// These settings are usually stored in system.json and control the
// performance, reliability, and technical behavior of the core.
type SystemConfig struct {
	// MaxRetries is the number of times the system will attempt to
	// recover from a transient LLM or network error before giving up.
	MaxRetries int `json:"max_retries"`
	// RetryDelayMs is the duration to wait (in milliseconds) between
	// consecutive retry attempts.
	RetryDelayMs int `json:"retry_delay_ms"`
	// LLMTimeoutMs is a cutoff time (in milliseconds) for an LLM request.
	// Nothing in this module reads it: LLM calls run under the turn's
	// context with no timeout of their own.
	LLMTimeoutMs int `json:"llm_timeout_ms"`
	// OllamaDefaultURL is the fallback endpoint used when connecting
	// to a local Ollama instance if no specific URL is provided.
	OllamaDefaultURL string `json:"ollama_default_url"`
	// InternalChannelBuffer is a buffer size for stream-chunk channels.
	// Nothing in this module reads it; LLM calls are non-streaming.
	InternalChannelBuffer int `json:"internal_channel_buffer"`
	// ThinkingInitDelayMs is a delay (in milliseconds) before an "AI is
	// thinking" status. Nothing in this module reads it or shows such a status.
	ThinkingInitDelayMs int `json:"thinking_init_delay_ms"`
	// TelegramMessageLimit is a maximum character count for one Telegram
	// message. Nothing in this module reads it; the telegram push adapter
	// sends each reply as a single message without splitting it.
	TelegramMessageLimit int `json:"telegram_message_limit"`
	// DownloadTimeoutMs is a timeout (in milliseconds) for fetching
	// external media. Nothing in this module reads it or downloads media.
	DownloadTimeoutMs int `json:"download_timeout_ms"`
	// ShowThinking is a switch for displaying the model's reasoning to the
	// end user. Nothing in this module reads it.
	ShowThinking bool `json:"show_thinking"`
	// DebugChunks is a switch for saving raw LLM response chunks. Nothing
	// in this module reads it; no chunk files are written.
	DebugChunks bool `json:"debug_chunks"`
	// LogLevel sets the minimum severity for log output.
	// Accepted values: "debug", "info", "warn", "error". Default: "info".
	LogLevel string `json:"log_level"`
	// EnableTools is a switch for tool calling. Nothing in this module
	// reads it; main.go registers the tool nodes regardless of its value.
	EnableTools bool `json:"enable_tools"`
	// HistorySummarizeThreshold is the carried message count past which the
	// turn coordinator trims its per-session history to a sliding window
	// (no summary is produced; older messages are dropped). 0 disables trimming.
	HistorySummarizeThreshold int `json:"history_summarize_threshold"`
	// HistoryKeepRecentCount is the number of most recent messages kept when trimming.
	HistoryKeepRecentCount int `json:"history_keep_recent_count"`
	// HistoryMaxChars caps the combined text length of the kept window when trimming.
	HistoryMaxChars int `json:"history_max_chars"`
	// HistoryMaxTokens caps the kept window when trimming, converted to a
	// character limit at an estimated 4 characters per token; no tokenizer
	// or LLM-reported usage is involved. The tighter of this and
	// HistoryMaxChars applies.
	HistoryMaxTokens int `json:"history_max_tokens"`
	// RecentConversationsLimit is N in "N most recent past conversations"
	// fed into the unified decision node's system prompt.
	RecentConversationsLimit int `json:"recent_conversations_limit"`
	// DefaultInactivityTimeoutSec is the fallback inactivity_timeout used
	// when a turn fails before the decision node can choose one.
	DefaultInactivityTimeoutSec int `json:"default_inactivity_timeout_sec"`
}

// DeepCopy creates a full copy of SystemConfig.
func (s *SystemConfig) DeepCopy() *SystemConfig {
	newSys := *s
	return &newSys
}

// DefaultSystemConfig returns a SystemConfig pointer initialized with hardcoded safe defaults.
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		MaxRetries:                3,
		RetryDelayMs:              500,
		LLMTimeoutMs:              600000,
		OllamaDefaultURL:          "http://localhost:11434/v1",
		InternalChannelBuffer:     100,
		ThinkingInitDelayMs:       500,
		TelegramMessageLimit:      4000,
		DownloadTimeoutMs:         10000,
		ShowThinking:              true,
		LogLevel:                  "info",
		EnableTools:               true,
		HistorySummarizeThreshold: 10,
		HistoryKeepRecentCount:    5,
		HistoryMaxChars:           10000,
		HistoryMaxTokens:          4000,
		RecentConversationsLimit:  5,
		DefaultInactivityTimeoutSec: 60,
	}
}

// Load reads and parses the JSON configuration files and returns configuration objects.
func Load() (*Config, *SystemConfig, error) {
	appPath := "config.json"
	if _, err := os.Stat(appPath); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("config file '%s' not found. please create one", appPath)
	}

	appFile, err := os.ReadFile(appPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(appFile, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	sysCfg := LoadSystemConfig("system.json")

	return &cfg, sysCfg, nil
}

// LoadSystemConfig attempts to load system settings, returns defaults if it fails
func LoadSystemConfig(path string) *SystemConfig {
	cfg := DefaultSystemConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(file, cfg); err != nil {
		return cfg
	}

	return cfg
}
