package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
			CORS: CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     3306,
			Database: "outliner",
			Username: "user",
		},
		Store: StoreConfig{
			Driver:         StoreDriverLocal,
			LocalDirectory: filepath.Join("data", "notes"),
		},
		OpenAI: OpenAIConfig{
			Model:   "gpt-4o-mini",
			BaseURL: "https://api.openai.com/v1",
		},
		Editor: EditorConfig{SaveDebounceMS: 400},
		Export: ExportConfig{
			BulletStyle:     "disc",
			FontFamily:      "sans",
			OutputDirectory: filepath.Join("outputs", "export"),
		},
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL", "DB_PASSWORD", "OUTLINER_USER_ID"} {
		t.Setenv(env, "")
	}
}

func TestConfigLoader_Load(t *testing.T) {
	tests := []struct {
		name              string
		configContent     string
		useExplicitPath   bool
		env               map[string]string
		want              func() *Config
		wantErrorContains []string
	}{
		{
			name:          "no config file uses defaults",
			configContent: "",
			want:          defaultConfig,
		},
		{
			name: "custom values",
			configContent: `store:
  driver: mysql
database:
  host: db.example.com
  database: notes
editor:
  save_debounce_ms: 250
  user_id: alice
export:
  bullet_style: number
  font_family: serif
`,
			useExplicitPath: true,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Store.Driver = StoreDriverMySQL
				cfg.Database.Host = "db.example.com"
				cfg.Database.Database = "notes"
				cfg.Editor = EditorConfig{SaveDebounceMS: 250, UserID: "alice"}
				cfg.Export.BulletStyle = "number"
				cfg.Export.FontFamily = "serif"
				return cfg
			},
		},
		{
			name:            "environment variables fill secrets",
			configContent:   "server:\n  port: 9090\n",
			useExplicitPath: true,
			env: map[string]string{
				"OPENAI_API_KEY":   "sk-test",
				"DB_PASSWORD":      "secret",
				"OUTLINER_USER_ID": "bob",
			},
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Server.Port = 9090
				cfg.OpenAI.APIKey = "sk-test"
				cfg.Database.Password = "secret"
				cfg.Editor.UserID = "bob"
				return cfg
			},
		},
		{
			name: "invalid YAML format",
			configContent: `store:
  driver: local
  invalid yaml format here [[[
`,
			wantErrorContains: []string{
				"configuration file found but could not be read",
				"Please check the file format and permissions",
			},
		},
		{
			name:              "unknown store driver",
			configContent:     "store:\n  driver: sqlite\n",
			useExplicitPath:   true,
			wantErrorContains: []string{"invalid configuration", "driver must be one of [mysql local]"},
		},
		{
			name:              "local store without directory",
			configContent:     "store:\n  driver: local\n  local_directory: \"\"\n",
			useExplicitPath:   true,
			wantErrorContains: []string{"invalid configuration", "local_directory"},
		},
		{
			name:              "user id with a path separator",
			configContent:     "editor:\n  user_id: ../alice\n",
			useExplicitPath:   true,
			wantErrorContains: []string{"editor.user_id must not contain path separators or dot segments"},
		},
		{
			name:              "unknown bullet style",
			configContent:     "export:\n  bullet_style: star\n",
			useExplicitPath:   true,
			wantErrorContains: []string{"bullet_style must be one of [disc dash number none]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			tempDir := t.TempDir()

			var configPath string
			if tt.useExplicitPath {
				configPath = filepath.Join(tempDir, "outliner.yml")
				require.NoError(t, os.WriteFile(configPath, []byte(tt.configContent), 0644))
			} else {
				if tt.configContent != "" {
					require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(tt.configContent), 0644))
				}
				t.Chdir(tempDir)
			}

			loader, err := NewConfigLoader(configPath)
			require.NoError(t, err)
			got, err := loader.Load()

			if len(tt.wantErrorContains) > 0 {
				require.Error(t, err)
				assert.Nil(t, got)
				for _, wantMsg := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), wantMsg)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want(), got)
		})
	}
}

func TestEditorConfig_SaveDebounce(t *testing.T) {
	assert.Equal(t, 400*time.Millisecond, EditorConfig{SaveDebounceMS: 400}.SaveDebounce())
	assert.Equal(t, time.Duration(0), EditorConfig{}.SaveDebounce())
}

func TestKeySafe(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{key: "alice", want: true},
		{key: "user-1@example.com", want: true},
		{key: "", want: false},
		{key: "..", want: false},
		{key: "a/b", want: false},
		{key: `a\b`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, KeySafe(tt.key))
		})
	}
}
