package shell

import (
	"strings"
	"testing"

	"github.com/sxtool/sx/internal/config"
)

func TestPromptIndicatorPlain(t *testing.T) {
	got := PromptIndicator(config.NetworkOffline, StylePlain)
	if got != "[sx:offline] " {
		t.Errorf("PromptIndicator() = %q", got)
	}
}

func TestPromptIndicatorColored(t *testing.T) {
	tests := []struct {
		mode  config.NetworkMode
		color string
	}{
		{config.NetworkOffline, ansiRed},
		{config.NetworkLocalhost, ansiYellow},
		{config.NetworkOnline, ansiGreen},
	}
	for _, tt := range tests {
		got := PromptIndicator(tt.mode, StyleColored)
		if !strings.HasPrefix(got, tt.color) {
			t.Errorf("PromptIndicator(%q) = %q, want prefix %q", tt.mode, got, tt.color)
		}
		if !strings.Contains(got, string(tt.mode)) || !strings.Contains(got, ansiReset) {
			t.Errorf("PromptIndicator(%q) = %q", tt.mode, got)
		}
	}
}

func TestTypeFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Type
	}{
		{"/bin/zsh", Zsh},
		{"/opt/homebrew/bin/bash", Bash},
		{"/usr/local/bin/fish", Fish},
		{"zsh", Zsh},
		{"/bin/tcsh", Unknown},
		{"", Unknown},
	}
	for _, tt := range tests {
		if got := TypeFromPath(tt.path); got != tt.want {
			t.Errorf("TypeFromPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
