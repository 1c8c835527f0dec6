package app

import "testing"

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{"default", Config{}, "info"},
		{"verbose", Config{Verbose: true}, "debug"},
		{"quiet", Config{Quiet: true}, "warn"},
		{"both prefers quiet", Config{Verbose: true, Quiet: true}, "warn"},
		{"explicit wins over verbose", Config{Verbose: true, LogLevel: "error"}, "error"},
		{"explicit wins over quiet", Config{Quiet: true, LogLevel: "trace"}, "trace"},
		{"invalid explicit falls back", Config{LogLevel: "loud"}, "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := determineLogLevel(&tt.config)
			if got != tt.want {
				t.Errorf("determineLogLevel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateLogLevel(t *testing.T) {
	for _, valid := range []string{"trace", "debug", "info", "warn", "error"} {
		if got := validateLogLevel(valid); got != valid {
			t.Errorf("validateLogLevel(%q) = %q, want unchanged", valid, got)
		}
	}
	for _, invalid := range []string{"", "verbose", "INFO", "3"} {
		if got := validateLogLevel(invalid); got != "info" {
			t.Errorf("validateLogLevel(%q) = %q, want info", invalid, got)
		}
	}
}
