package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix   = "DOCFIX_"
	envFile     = "DOCFIX_CONFIG"
	defaultFile = "config.yaml"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Rewriter  RewriterConfig  `koanf:"rewriter"`
	Processor ProcessorConfig `koanf:"processor"`
	Watcher   WatcherConfig   `koanf:"watcher"`
	Queue     QueueConfig     `koanf:"queue"`
	Storage   StorageConfig   `koanf:"storage"`
	Redis     RedisConfig     `koanf:"redis"`
	Notifier  NotifierConfig  `koanf:"notifier"`
}

type ServerConfig struct {
	Port      string `koanf:"port"`
	CacheSize int    `koanf:"cache_size"`
}

type RewriterConfig struct {
	DecodeEntities bool           `koanf:"decode_entities"`
	Substitutions  []Substitution `koanf:"substitutions"`
}

type Substitution struct {
	From string `koanf:"from"`
	To   string `koanf:"to"`
}

type ProcessorConfig struct {
	Concurrency int  `koanf:"concurrency"`
	DryRun      bool `koanf:"dry_run"`
}

type WatcherConfig struct {
	Interval  time.Duration `koanf:"interval"`
	Documents []string      `koanf:"documents"`
}

type QueueConfig struct {
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
	GroupID string   `koanf:"group_id"`
}

type StorageConfig struct {
	DSN string `koanf:"dsn"`
}

type RedisConfig struct {
	Addr string `koanf:"addr"`
}

type NotifierConfig struct {
	TelegramToken   string   `koanf:"telegram_token"`
	TelegramChatIDs []string `koanf:"telegram_chat_ids"`
}

func defaults() map[string]any {
	return map[string]any{
		"server.port":              ":8080",
		"server.cache_size":        4096,
		"rewriter.decode_entities": true,
		"rewriter.substitutions": []any{
			map[string]any{
				"from": `<div class="comparison-box">`,
				"to":   `<div class="comparison-box-vertical">`,
			},
		},
		"processor.concurrency": 4,
		"watcher.interval":      "30s",
		"queue.brokers":         []string{"localhost:9092"},
		"queue.topic":           "docfix.jobs",
		"queue.group_id":        "docfix",
		"redis.addr":            "localhost:6379",
	}
}

// Load reads .env (a missing file is fine), then the YAML file named by DOCFIX_CONFIG
// (default config.yaml, optional), then DOCFIX_* environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	path := os.Getenv(envFile)
	if path == "" {
		path = defaultFile
	}
	return LoadFile(path)
}

// LoadFile is Load without the .env step and with an explicit file path.
// A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if err := k.Load(env.ProviderWithValue(envPrefix, ".", envValue), nil); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// listKeys accept a comma separated environment value.
var listKeys = map[string]bool{
	"queue.brokers":     true,
	"watcher.documents": true,

	"notifier.telegram_chat_ids": true,
}

// envValue maps DOCFIX_QUEUE__GROUP_ID to queue.group_id. Sections are
// separated by a double underscore so single underscores survive in keys.
func envValue(name, value string) (string, any) {
	if name == envFile {
		return "", nil
	}
	key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, envPrefix)), "__", ".")
	if listKeys[key] {
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return key, items
	}
	return key, value
}
