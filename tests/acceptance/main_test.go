package acceptance

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

const binaryPath = "../../bin/agentdex"

// TestMain runs setup and teardown for acceptance tests
func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

// agentdex runs the binary against an isolated store directory and returns
// the combined output. Tests are skipped when the binary has not been built.
func agentdex(t *testing.T, storeDir string, args ...string) (string, error) {
	t.Helper()
	if _, err := os.Stat(binaryPath); err != nil {
		t.Skipf("binary not built at %s", binaryPath)
	}
	args = append([]string{"--store-path", storeDir}, args...)
	cmd := exec.Command(binaryPath, args...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func writeIndexDocument(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "AGENT_CLUSTERS.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write index document: %v", err)
	}
	return path
}
