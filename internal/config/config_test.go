package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "")
	t.Setenv("ORDER_NODE_ID", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8081" {
		t.Errorf("port: got %s, want 8081", cfg.Port)
	}
	if cfg.OrderNodeID != 1 {
		t.Errorf("order node id: got %d, want 1", cfg.OrderNodeID)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("cors origins: got %v", cfg.CORSOrigins)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "port: \"9000\"\njwt_secret: from-file\norder_node_id: 7\ncors_origins:\n  - https://admin.example.com\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ORDER_NODE_ID", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9100" {
		t.Errorf("port: got %s, want env value 9100", cfg.Port)
	}
	if cfg.JWTSecret != "from-file" {
		t.Errorf("jwt secret: got %s, want from-file", cfg.JWTSecret)
	}
	if cfg.OrderNodeID != 7 {
		t.Errorf("order node id: got %d, want 7", cfg.OrderNodeID)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "https://admin.example.com" {
		t.Errorf("cors origins: got %v", cfg.CORSOrigins)
	}
}

func TestLoad_CORSOriginsFromEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ORDER_NODE_ID", "")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, ,https://b.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("cors origins: got %v, want 2 entries", cfg.CORSOrigins)
	}
	if cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Errorf("second origin: got %s", cfg.CORSOrigins[1])
	}
}

func TestLoad_InvalidNodeID(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ORDER_NODE_ID", "2048")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for out of range node id")
	}

	t.Setenv("ORDER_NODE_ID", "abc")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric node id")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	t.Setenv("ORDER_NODE_ID", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
