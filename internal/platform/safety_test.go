package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveVaultPath(t *testing.T) {
	t.Parallel()

	tempRoot := os.TempDir()
	devBase := filepath.Join(tempRoot, "dossier-dev")
	inTemp := filepath.Join(tempRoot, "some-test-vault")

	tests := []struct {
		name      string
		userPath  string
		forceTemp bool
		expected  string
	}{
		{name: "Normal Mode - Empty", userPath: "", forceTemp: false, expected: "."},
		{name: "Normal Mode - Specific Path", userPath: "/cases/acme", forceTemp: false, expected: "/cases/acme"},
		{name: "Dev Mode - Empty Path", userPath: "", forceTemp: true, expected: filepath.Join(devBase, "default")},
		{name: "Dev Mode - Current Dir", userPath: ".", forceTemp: true, expected: filepath.Join(devBase, "default")},
		{name: "Dev Mode - Relative Name", userPath: "acme", forceTemp: true, expected: filepath.Join(devBase, "acme")},
		{name: "Dev Mode - Clean Name", userPath: "../bad/path", forceTemp: true, expected: filepath.Join(devBase, "path")},
		{name: "Dev Mode - Exception for Temp Dir", userPath: inTemp, forceTemp: true, expected: inTemp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveVaultPath(tt.userPath, tt.forceTemp)
			if got != tt.expected {
				t.Errorf("ResolveVaultPath(%q, %v) = %q, want %q", tt.userPath, tt.forceTemp, got, tt.expected)
			}
		})
	}
}

func TestIsDevRun(t *testing.T) {
	if !IsDevRun() {
		t.Error("expected a test binary to be detected as a dev run")
	}
}
