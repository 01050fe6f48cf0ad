package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}

	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}

	if cfg.Document.OutputFormat != OutputFmtBundle {
		t.Errorf("Default output format = %v, want bundle", cfg.Document.OutputFormat)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `version: 1
document:
  output_format: tree
  output_name_template: "{{ .Title }}"
  file_name_transliterate: true
  images:
    scale_factor: 1.5
    jpeg_quality_level: 85
logging:
  console:
    level: normal
  file:
    level: debug
    destination: /tmp/test.log
    mode: append
reporting:
  destination: /tmp/test-report.zip
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}

	if cfg.Document.OutputFormat != OutputFmtTree {
		t.Errorf("OutputFormat = %v, want tree", cfg.Document.OutputFormat)
	}

	if cfg.Document.OutputNameTemplate != "{{ .Title }}" {
		t.Errorf("OutputNameTemplate = %q, template field must not be expanded", cfg.Document.OutputNameTemplate)
	}

	if !cfg.Document.FileNameTransliterate {
		t.Error("Expected FileNameTransliterate to be true")
	}

	if cfg.Document.Images.ScaleFactor != 1.5 {
		t.Errorf("ScaleFactor = %f, want 1.5", cfg.Document.Images.ScaleFactor)
	}

	if cfg.Document.Images.JPEGQuality != 85 {
		t.Errorf("JPEGQuality = %d, want 85", cfg.Document.Images.JPEGQuality)
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	_, err := LoadConfiguration("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `version: 1
document:
  file_name_transliterate: true
  invalid indent
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoadConfiguration_UnknownFields(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "unknown.yaml")

	configWithUnknown := `version: 1
unknown_field: value
document:
  file_name_transliterate: true
`

	if err := os.WriteFile(configPath, []byte(configWithUnknown), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected error for unknown fields")
	}
}

func TestLoadConfiguration_ValidationError(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_values.yaml")

	configContent := `version: 1
document:
  images:
    jpeg_quality_level: 10
reporting:
  destination: /tmp/test-report.zip
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := LoadConfiguration(configPath); err == nil {
		t.Error("Expected validation error for out of range jpeg quality")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Prepare() returned empty data")
	}
	if !strings.Contains(string(data), "version:") {
		t.Error("Prepared config has no version field")
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	reloaded, err := unmarshalConfig(data, &Config{}, false)
	if err != nil {
		t.Fatalf("Dumped config does not reload: %v", err)
	}
	if reloaded.Version != cfg.Version {
		t.Errorf("Reloaded version = %d, want %d", reloaded.Version, cfg.Version)
	}
}

func TestOutputFmt_StringRoundTrip(t *testing.T) {
	for _, name := range OutputFmtNames() {
		parsed, err := ParseOutputFmt(name)
		if err != nil {
			t.Fatalf("ParseOutputFmt(%q) error = %v", name, err)
		}
		if parsed.String() != name {
			t.Errorf("String() = %q, want %q", parsed.String(), name)
		}
		if !parsed.IsValid() {
			t.Errorf("IsValid() = false for %q", name)
		}
	}
}

func TestParseOutputFmt_Invalid(t *testing.T) {
	_, err := ParseOutputFmt("pdf")
	if err == nil {
		t.Fatal("Expected error for unknown format")
	}
	if !errors.Is(err, ErrInvalidOutputFmt) {
		t.Errorf("error = %v, want ErrInvalidOutputFmt", err)
	}
}

func TestOutputFmt_Ext(t *testing.T) {
	tests := []struct {
		format OutputFmt
		want   string
	}{
		{OutputFmtBundle, ".folio"},
		{OutputFmtTree, ".ion"},
	}
	for _, tc := range tests {
		if got := tc.format.Ext(); got != tc.want {
			t.Errorf("%v.Ext() = %q, want %q", tc.format, got, tc.want)
		}
	}
}

func TestOutputFmt_Ext_Panic(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for invalid format")
		}
	}()
	_ = OutputFmt(42).Ext()
}
