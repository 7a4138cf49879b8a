package config

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ListenAddr         string       `toml:"listen_addr"`
	Region             string       `toml:"region"`
	Profile            string       `toml:"profile"`
	Toolsets           []string     `toml:"toolsets"`
	ReadOnly           bool         `toml:"read_only"`
	DisableDestructive bool         `toml:"disable_destructive"`
	LogLevel           string       `toml:"log_level"`
	AuditLog           string       `toml:"audit_log"`
	Safety             SafetyConfig `toml:"safety"`
	Chat               ChatConfig   `toml:"chat"`
}

type SafetyConfig struct {
	AllowDestructiveTools []string `toml:"allow_destructive_tools"`
}

type ChatConfig struct {
	Provider      string         `toml:"provider"`
	MaxToolRounds int            `toml:"max_tool_rounds"`
	HistoryPairs  int            `toml:"history_pairs"`
	Gemini        ProviderConfig `toml:"gemini"`
	DeepSeek      ProviderConfig `toml:"deepseek"`
}

type ProviderConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

type Overrides struct {
	ListenAddr         *string
	Region             *string
	Profile            *string
	Toolsets           *[]string
	ReadOnly           *bool
	DisableDestructive *bool
	LogLevel           *string
	ChatProvider       *string
}

func DefaultConfig() Config {
	return Config{
		ListenAddr: ":8080",
		Toolsets: []string{
			"compute", "storage", "database", "network", "security",
			"containers", "messaging", "management", "mlai",
		},
		LogLevel: "info",
		Chat: ChatConfig{
			Provider:      "gemini",
			MaxToolRounds: 5,
			HistoryPairs:  10,
			Gemini: ProviderConfig{
				Model:   "gemini-2.5-flash",
				BaseURL: "https://generativelanguage.googleapis.com/v1beta",
			},
			DeepSeek: ProviderConfig{
				Model:   "deepseek-chat",
				BaseURL: "https://api.deepseek.com",
			},
		},
	}
}

func Load(path string, dir string, overrides Overrides) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv("AWSPANEL_CONFIG")
	}
	if path != "" {
		fileCfg, err := readFile(path)
		if err != nil {
			return cfg, err
		}
		merge(&cfg, fileCfg)
	}

	if dir != "" {
		files, err := dropInFiles(dir)
		if err != nil {
			return cfg, err
		}
		for _, file := range files {
			fileCfg, err := readFile(file)
			if err != nil {
				return cfg, err
			}
			merge(&cfg, fileCfg)
		}
	}

	applyEnv(&cfg)
	applyOverrides(&cfg, overrides)
	return cfg, nil
}

func readFile(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); err != nil {
		return cfg, err
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func dropInFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func merge(dst *Config, src Config) {
	if src.ListenAddr != "" {
		dst.ListenAddr = src.ListenAddr
	}
	if src.Region != "" {
		dst.Region = src.Region
	}
	if src.Profile != "" {
		dst.Profile = src.Profile
	}
	if len(src.Toolsets) > 0 {
		dst.Toolsets = append([]string{}, src.Toolsets...)
	}
	if src.ReadOnly {
		dst.ReadOnly = src.ReadOnly
	}
	if src.DisableDestructive {
		dst.DisableDestructive = src.DisableDestructive
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.AuditLog != "" {
		dst.AuditLog = src.AuditLog
	}
	if len(src.Safety.AllowDestructiveTools) > 0 {
		dst.Safety.AllowDestructiveTools = append([]string{}, src.Safety.AllowDestructiveTools...)
	}
	mergeChat(&dst.Chat, src.Chat)
}

func mergeChat(dst *ChatConfig, src ChatConfig) {
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.MaxToolRounds > 0 {
		dst.MaxToolRounds = src.MaxToolRounds
	}
	if src.HistoryPairs > 0 {
		dst.HistoryPairs = src.HistoryPairs
	}
	mergeProvider(&dst.Gemini, src.Gemini)
	mergeProvider(&dst.DeepSeek, src.DeepSeek)
}

func mergeProvider(dst *ProviderConfig, src ProviderConfig) {
	if src.APIKey != "" {
		dst.APIKey = src.APIKey
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.BaseURL != "" {
		dst.BaseURL = src.BaseURL
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("AWS_REGION"); v != "" && cfg.Region == "" {
		cfg.Region = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Chat.Gemini.APIKey = v
	}
	if v := os.Getenv("DEEPSEEK_API_KEY"); v != "" {
		cfg.Chat.DeepSeek.APIKey = v
	}
	if v := os.Getenv("CHAT_PROVIDER"); v != "" {
		cfg.Chat.Provider = v
	}
}

func applyOverrides(cfg *Config, overrides Overrides) {
	if overrides.ListenAddr != nil {
		cfg.ListenAddr = *overrides.ListenAddr
	}
	if overrides.Region != nil {
		cfg.Region = *overrides.Region
	}
	if overrides.Profile != nil {
		cfg.Profile = *overrides.Profile
	}
	if overrides.Toolsets != nil {
		cfg.Toolsets = append([]string{}, (*overrides.Toolsets)...)
	}
	if overrides.ReadOnly != nil {
		cfg.ReadOnly = *overrides.ReadOnly
	}
	if overrides.DisableDestructive != nil {
		cfg.DisableDestructive = *overrides.DisableDestructive
	}
	if overrides.LogLevel != nil {
		cfg.LogLevel = *overrides.LogLevel
	}
	if overrides.ChatProvider != nil {
		cfg.Chat.Provider = *overrides.ChatProvider
	}
}
