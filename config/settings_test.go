package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSettings(t *testing.T) {
	defer SetIndexWidth(IndexWidth32)

	fpath := filepath.Join(t.TempDir(), "settings.yaml")
	data := "listen_addr: \":9000\"\nindex_width: 16\n"
	if err := os.WriteFile(fpath, []byte(data), 0666); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(fpath)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.ListenAddr != ":9000" {
		t.Errorf("ListenAddr = %q; expected :9000", s.ListenAddr)
	}
	if GetIndexWidth() != IndexWidth16 {
		t.Errorf("GetIndexWidth() = %d; expected 16", GetIndexWidth())
	}
}

func TestLoadSettingsRejectsBadWidth(t *testing.T) {
	defer SetIndexWidth(IndexWidth32)

	fpath := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(fpath, []byte("index_width: 24\n"), 0666); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadSettings(fpath); err == nil {
		t.Error("LoadSettings accepted index_width 24")
	}
}

func TestSetIndexWidth(t *testing.T) {
	defer SetIndexWidth(IndexWidth32)

	if err := SetIndexWidth(IndexWidth16); err != nil {
		t.Errorf("SetIndexWidth(16): %v", err)
	}
	if err := SetIndexWidth(8); err == nil {
		t.Error("SetIndexWidth(8) accepted")
	}
}
