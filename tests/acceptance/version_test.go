package acceptance

import (
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	output, err := agentdex(t, t.TempDir(), "version")
	if err != nil {
		t.Fatalf("Failed to execute version command: %v", err)
	}

	outputStr := strings.TrimSpace(output)
	if !strings.Contains(outputStr, "Version:") || !strings.Contains(outputStr, "GitCommit:") {
		t.Errorf("Version output should contain Version and GitCommit fields. Got: %s", outputStr)
	}
}

func TestVersionCommandJSON(t *testing.T) {
	output, err := agentdex(t, t.TempDir(), "version", "--json")
	if err != nil {
		t.Fatalf("Failed to execute version --json: %v", err)
	}

	if !strings.Contains(output, "\"version\"") || !strings.Contains(output, "\"gitCommit\"") {
		t.Errorf("JSON version output should contain version and gitCommit keys. Got: %s", output)
	}
}
