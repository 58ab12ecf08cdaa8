package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	uploads := filepath.Join(t.TempDir(), "uploads")
	dir := writeConfig(t, `
server:
  port: "9090"
jwt:
  secret: "dev"
storage:
  local_path: "`+uploads+`"
`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Database.Driver != "mysql" {
		t.Fatalf("unexpected config %+v", cfg.Server)
	}
	if cfg.JWT.ExpireTime != 72*time.Hour {
		t.Fatalf("jwt expiry = %v", cfg.JWT.ExpireTime)
	}
	if cfg.Assignments.SnapshotGraceMinutes != 10 || cfg.Assignments.SnapshotDefaultHours != 24 {
		t.Fatalf("assignments = %+v", cfg.Assignments)
	}
	if _, err := os.Stat(uploads); err != nil {
		t.Fatalf("local storage dir not created: %v", err)
	}
}

func TestLoadConfigRejectsSnapshotsWithoutRedis(t *testing.T) {
	dir := writeConfig(t, `
storage:
  type: minio
assignments:
  snapshot_attempts: true
redis:
  enabled: false
`)
	_, err := LoadConfig(dir)
	if err == nil || !strings.Contains(err.Error(), "requires redis") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadConfigRejectsShortSecretInRelease(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: release
jwt:
  secret: "short"
storage:
  type: minio
`)
	if _, err := LoadConfig(dir); err == nil {
		t.Fatal("short secret accepted in release mode")
	}
}
