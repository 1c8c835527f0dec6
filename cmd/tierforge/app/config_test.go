package app

import (
	"testing"

	"github.com/eftimios/tierforge/pkg/constants"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if config.LRSDir != constants.DefaultLRSDir {
		t.Errorf("Expected default lrs dir %q, got %q", constants.DefaultLRSDir, config.LRSDir)
	}

	want := []string{constants.StyleRegistry, constants.PersonRegistry}
	if len(config.Registries) != len(want) {
		t.Fatalf("Expected %d default registries, got %d", len(want), len(config.Registries))
	}
	for i, name := range want {
		if config.Registries[i] != name {
			t.Errorf("Registry %d: expected %q, got %q", i, name, config.Registries[i])
		}
	}

	if config.LogFormat != "auto" {
		t.Errorf("Expected auto log format, got %q", config.LogFormat)
	}
	if config.LogOutput != "stderr" {
		t.Errorf("Expected stderr log output, got %q", config.LogOutput)
	}
}

func TestUpdateFromFlags(t *testing.T) {
	config := &Config{LogLevel: "info"}

	config.UpdateFromFlags(true, false, true, "debug")

	if !config.Verbose {
		t.Error("Expected Verbose to be set")
	}
	if config.Quiet {
		t.Error("Expected Quiet to stay unset")
	}
	if !config.NoColor {
		t.Error("Expected NoColor to be set")
	}
	if config.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %q", config.LogLevel)
	}

	// Empty log level leaves the previous value alone
	config.UpdateFromFlags(false, false, false, "")
	if config.LogLevel != "debug" {
		t.Errorf("Expected log level to stay debug, got %q", config.LogLevel)
	}
}
