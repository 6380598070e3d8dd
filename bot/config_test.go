package bot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testConfigYAML = `
telegram:
  token: "123456:test-token"
  admin_id: 99
  run_mode: longpoll
logging:
  level: debug
  format: kv
data:
  dir: ./data
plan:
  session_ttl_minutes: 45
  max_recommendations: 3
database:
  host: localhost
  port: "5432"
  user: tashi
  name: tashi
  sslmode: disable
notify:
  email:
    enabled: true
    host: smtp.example.com
    to: team@example.com
    username: bot@example.com
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, testConfigYAML))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Telegram.Token != "123456:test-token" {
		t.Errorf("token = %q", cfg.Telegram.Token)
	}
	if cfg.Database.Host != "localhost" || cfg.Database.Name != "tashi" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if got := cfg.Plan.SessionTTL().Minutes(); got != 45 {
		t.Errorf("session ttl = %v minutes", got)
	}
	if cfg.Plan.MaxRecommendations != 3 {
		t.Errorf("max recommendations = %d", cfg.Plan.MaxRecommendations)
	}
	// Normalize fills email defaults.
	if cfg.Notify.Email.Port != 587 {
		t.Errorf("email port default = %d", cfg.Notify.Email.Port)
	}
	if cfg.Notify.Email.From != "bot@example.com" {
		t.Errorf("email from default = %q", cfg.Notify.Email.From)
	}
	if core := cfg.CoreConfig(); core == nil || core.Telegram.AdminID != 99 {
		t.Errorf("CoreConfig = %+v", cfg.CoreConfig())
	}
}

func TestLoadConfigRejectsBadRunMode(t *testing.T) {
	bad := strings.Replace(testConfigYAML, "run_mode: longpoll", "run_mode: carrier-pigeon", 1)
	if _, err := LoadConfig(writeConfig(t, bad)); err == nil {
		t.Fatalf("bad run mode accepted")
	}
}

func TestLoadConfigRequiresDataDir(t *testing.T) {
	bad := strings.Replace(testConfigYAML, "dir: ./data", "dir: \"\"", 1)
	if _, err := LoadConfig(writeConfig(t, bad)); err == nil {
		t.Fatalf("empty data dir accepted")
	}
}
