package zoneapi

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tzserve.yaml")
	doc := "address: 0.0.0.0:9000\nzoneinfo_dir: /opt/zoneinfo\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	want := Config{Address: "0.0.0.0:9000", ZoneinfoDir: "/opt/zoneinfo", LogLevel: "debug"}
	if cfg != want {
		t.Errorf("LoadConfig() = %+v, want %+v", cfg, want)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil for missing file", err)
	}
	if cfg != (Config{}) {
		t.Errorf("LoadConfig() = %+v, want zero config", cfg)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tzserve.yaml")
	if err := os.WriteFile(path, []byte("address: [not, a, string"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() error = nil, want parse error")
	}
}

func TestResolveZoneinfoDir(t *testing.T) {
	dir, err := ResolveZoneinfoDir("/configured/zoneinfo")
	if err != nil {
		t.Fatalf("ResolveZoneinfoDir() error = %v", err)
	}
	if dir != "/configured/zoneinfo" {
		t.Errorf("ResolveZoneinfoDir() = %q, want configured value", dir)
	}
}

func TestResolveZoneinfoDir_SearchPaths(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("ZONEINFO", tmp)

	dir, err := ResolveZoneinfoDir("")
	if err != nil {
		t.Fatalf("ResolveZoneinfoDir() error = %v", err)
	}
	if dir != tmp {
		t.Errorf("ResolveZoneinfoDir() = %q, want %q", dir, tmp)
	}
}
