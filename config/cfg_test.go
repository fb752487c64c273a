package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rupor-github/gencfg"

	"svgsprite/common"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

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
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	s := cfg.Sprite
	if s.Mode != common.OutputModeFile {
		t.Errorf("Mode = %v, want file", s.Mode)
	}
	if s.Output != "spritesheet.svg" {
		t.Errorf("Output = %q", s.Output)
	}
	if s.Dimensions != common.DimensionsViewbox {
		t.Errorf("Dimensions = %v, want viewbox", s.Dimensions)
	}
	if s.OnError != common.ErrorPolicyAbort {
		t.Errorf("OnError = %v, want abort", s.OnError)
	}
	if len(s.Extensions) != 1 || s.Extensions[0] != ".svg" {
		t.Errorf("Extensions = %v", s.Extensions)
	}
	if !s.Stubs.Enable || s.Stubs.Extension != ".js" {
		t.Errorf("Stubs = %+v", s.Stubs)
	}
	if !strings.Contains(s.Stubs.Template, "{{ .ID }}") {
		t.Errorf("stub template was expanded: %q", s.Stubs.Template)
	}
	if !strings.Contains(s.AssetNameTemplate, "{{ .Name }}") {
		t.Errorf("asset name template was expanded: %q", s.AssetNameTemplate)
	}
	if cfg.Cache.Enable {
		t.Error("cache enabled by default")
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("Debounce = %v", cfg.Watch.Debounce)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	path := writeConfig(t, `version: 1
sprite:
  mode: asset
  output: icons.svg
  public_path: /static/
  dimensions: all
  clean_symbols: [fill, stroke]
  symbol_attrs:
    aria-hidden: "true"
  overrides:
    - match: "brand/**/*.svg"
      clean_symbols: []
      symbol_attrs:
        role: img
  on_error: skip
  stubs:
    enable: false
watch:
  debounce: 1s
logging:
  console:
    level: debug
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	s := cfg.Sprite
	if s.Mode != common.OutputModeAsset {
		t.Errorf("Mode = %v, want asset", s.Mode)
	}
	if s.Output != "icons.svg" || s.PublicPath != "/static/" {
		t.Errorf("Output = %q, PublicPath = %q", s.Output, s.PublicPath)
	}
	if s.Dimensions != common.DimensionsAll {
		t.Errorf("Dimensions = %v, want all", s.Dimensions)
	}
	if len(s.CleanSymbols) != 2 {
		t.Errorf("CleanSymbols = %v", s.CleanSymbols)
	}
	if s.SymbolAttrs["aria-hidden"] != "true" {
		t.Errorf("SymbolAttrs = %v", s.SymbolAttrs)
	}
	if len(s.Overrides) != 1 || s.Overrides[0].SymbolAttrs["role"] != "img" {
		t.Errorf("Overrides = %+v", s.Overrides)
	}
	if s.OnError != common.ErrorPolicySkip {
		t.Errorf("OnError = %v, want skip", s.OnError)
	}
	if s.Stubs.Enable {
		t.Error("stubs should be disabled")
	}
	// not mentioned in file - comes from defaults
	if s.Stubs.Extension != ".js" {
		t.Errorf("Stubs.Extension = %q, want default", s.Stubs.Extension)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("Debounce = %v", cfg.Watch.Debounce)
	}
	if cfg.Logging.ConsoleLogger.Level != "debug" {
		t.Errorf("console level = %q", cfg.Logging.ConsoleLogger.Level)
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid yaml", content: "version: 1\nsprite:\n  mode: file\n  invalid indent\n"},
		{name: "unknown field", content: "version: 1\nunknown_field: value\n"},
		{name: "bad version", content: "version: 2\n"},
		{name: "unknown mode", content: "version: 1\nsprite:\n  mode: stream\n"},
		{name: "unknown dimensions", content: "version: 1\nsprite:\n  dimensions: some\n"},
		{name: "extension without dot", content: "version: 1\nsprite:\n  extensions: [svg]\n"},
		{name: "no extensions", content: "version: 1\nsprite:\n  extensions: []\n"},
		{name: "broken stub template", content: "version: 1\nsprite:\n  stubs:\n    template: \"{{ .ID \"\n"},
		{name: "broken override glob", content: "version: 1\nsprite:\n  overrides:\n    - match: \"icons/[a-\"\n"},
		{name: "override without match", content: "version: 1\nsprite:\n  overrides:\n    - clean_symbols: [fill]\n"},
		{name: "empty output", content: "version: 1\nsprite:\n  output: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {
		// Options are opaque, just test that we can pass them
	}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
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

	// Verify it's valid YAML by trying to unmarshal
	if _, err = unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump_RoundTrip(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Sprite.Mode = common.OutputModeAsset
	cfg.Sprite.Dimensions = common.DimensionsAll

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	for _, want := range []string{"mode: asset", "dimensions: all", "on_error: abort", "debounce: 250ms"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("dump does not contain %q:\n%s", want, data)
		}
	}

	back, err := unmarshalConfig(data, &Config{}, true)
	if err != nil {
		t.Fatalf("dumped configuration cannot be loaded: %v", err)
	}
	if back.Sprite.Mode != common.OutputModeAsset || back.Sprite.Dimensions != common.DimensionsAll {
		t.Errorf("round trip lost values: %+v", back.Sprite)
	}
}

func TestSpriteConfig_HasExtension(t *testing.T) {
	conf := SpriteConfig{Extensions: []string{".svg", ".SVGZ"}}

	tests := []struct {
		ext  string
		want bool
	}{
		{".svg", true},
		{".SVG", true},
		{".svgz", true},
		{".png", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := conf.HasExtension(tt.ext); got != tt.want {
			t.Errorf("HasExtension(%q) = %v, want %v", tt.ext, got, tt.want)
		}
	}
}

func TestUnmarshalConfig_WrapsValidationError(t *testing.T) {
	// version: 99 will fail validation (validate:"eq=1").
	data := []byte("version: 99\n")

	_, err := unmarshalConfig(data, &Config{}, true)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "validat") {
		t.Errorf("expected error to mention validation, got: %v", err)
	}
	if errors.Unwrap(err) == nil {
		t.Errorf("expected wrapped error (errors.Unwrap non-nil), got bare error: %v", err)
	}
}
