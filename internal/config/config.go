// Package config loads the outliner configuration from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	StoreDriverMySQL = "mysql"
	StoreDriverLocal = "local"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Store    StoreConfig    `mapstructure:"store"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Editor   EditorConfig   `mapstructure:"editor"`
	Export   ExportConfig   `mapstructure:"export"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port" validate:"gte=0,lte=65535"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

// StoreConfig selects where notes are persisted.
type StoreConfig struct {
	Driver         string `mapstructure:"driver" validate:"oneof=mysql local"`
	LocalDirectory string `mapstructure:"local_directory" validate:"required_if=Driver local"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
}

type EditorConfig struct {
	SaveDebounceMS int    `mapstructure:"save_debounce_ms" validate:"gte=0,lte=60000"`
	UserID         string `mapstructure:"user_id" validate:"omitempty,keysafe"`
}

// SaveDebounce returns the autosave quiet period.
func (c EditorConfig) SaveDebounce() time.Duration {
	return time.Duration(c.SaveDebounceMS) * time.Millisecond
}

type ExportConfig struct {
	BulletStyle     string `mapstructure:"bullet_style" validate:"oneof=disc dash number none"`
	FontFamily      string `mapstructure:"font_family" validate:"oneof=sans serif mono"`
	OutputDirectory string `mapstructure:"output_directory"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/outliner")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "outliner")
	v.SetDefault("database.username", "user")
	v.SetDefault("store.driver", StoreDriverLocal)
	v.SetDefault("store.local_directory", filepath.Join("data", "notes"))
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("editor.save_debounce_ms", 400)
	v.SetDefault("export.bullet_style", "disc")
	v.SetDefault("export.font_family", "sans")
	v.SetDefault("export.output_directory", filepath.Join("outputs", "export"))

	envs := []struct {
		key string
		env string
	}{
		{key: "openai.api_key", env: "OPENAI_API_KEY"},
		{key: "openai.model", env: "OPENAI_MODEL"},
		{key: "openai.base_url", env: "OPENAI_BASE_URL"},
		{key: "database.password", env: "DB_PASSWORD"},
		{key: "editor.user_id", env: "OUTLINER_USER_ID"},
	}
	for _, e := range envs {
		if err := v.BindEnv(e.key, e.env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", e.env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, fmt.Errorf("validator.Struct() > %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
