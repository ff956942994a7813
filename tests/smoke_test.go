// Package tests provides smoke tests that validate every beam command
// exists, runs, and exits cleanly without panicking.
// These tests run the compiled binary — they are integration tests. They do
// NOT require an account, an API key, or network access.
package tests

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// beamBin returns the path to the compiled beam binary, skipping the test
// when it has not been built.
func beamBin(t *testing.T) string {
	t.Helper()
	_, filename, _, _ := runtime.Caller(0)
	root := filepath.Join(filepath.Dir(filename), "..")
	bin := filepath.Join(root, "bin", "beam")
	if runtime.GOOS == "windows" {
		bin += ".exe"
	}
	if _, err := os.Stat(bin); os.IsNotExist(err) {
		t.Skipf("beam binary not found at %s — run 'make build' first", bin)
	}
	return bin
}

// run executes beam with args and returns stdout, stderr, and exit code.
func run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	cmd := exec.Command(beamBin(t), args...)
	cmd.Env = append(os.Environ(), "BEAM_NO_TELEMETRY=1", "BEAM_CONFIG_DIR="+t.TempDir())
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	code := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
	}
	return stdout.String(), stderr.String(), code
}

// TestAllCommandsExist validates that every command appears in --help.
func TestAllCommandsExist(t *testing.T) {
	commands := []string{
		"accounts", "apps", "auth", "bench", "channels",
		"config", "integrations", "logs", "push", "queues",
		"spaces", "stats", "status",
		"shell", "completion", "version",
	}

	stdout, _, code := run(t, "--help")
	if code != 0 {
		t.Fatalf("beam --help exited with code %d", code)
	}
	for _, cmd := range commands {
		if !strings.Contains(stdout, cmd) {
			t.Errorf("command %q not found in beam --help output", cmd)
		}
	}
}

// TestVersion validates the version command output shape.
func TestVersion(t *testing.T) {
	stdout, _, code := run(t, "version")
	if code != 0 {
		t.Fatal("beam version should exit 0")
	}
	if !strings.HasPrefix(stdout, "beam ") {
		t.Errorf("version output = %q", stdout)
	}
}

// TestSubcommandHelp validates help for every topic group exits cleanly.
func TestSubcommandHelp(t *testing.T) {
	topics := []string{"accounts", "apps", "channels", "queues", "stats", "bench"}
	for _, topic := range topics {
		_, _, code := run(t, topic, "--help")
		if code != 0 {
			t.Errorf("beam %s --help exited with code %d", topic, code)
		}
	}
}

// TestChannelsPublishRequiresKey validates the auth guard message without a
// configured app.
func TestChannelsPublishRequiresKey(t *testing.T) {
	_, stderr, code := run(t, "channels", "publish", "updates", "hi")
	if code == 0 {
		t.Fatal("publish without credentials should fail")
	}
	if !strings.Contains(stderr, "API key") {
		t.Errorf("stderr = %q", stderr)
	}
}

// TestAccountsListWithoutLogin validates the login guard message.
func TestAccountsListWithoutLogin(t *testing.T) {
	_, stderr, code := run(t, "accounts", "current")
	if code == 0 {
		t.Fatal("accounts current without login should fail")
	}
	if !strings.Contains(stderr, "not logged in") {
		t.Errorf("stderr = %q", stderr)
	}
}

// TestShellEvalUnknownCommand validates one-shot eval of a bad line fails.
func TestShellEvalUnknownCommand(t *testing.T) {
	_, stderr, code := run(t, "shell", "--eval", "frobnicate")
	if code == 0 {
		t.Fatal("eval of an unknown command should fail")
	}
	if !strings.Contains(stderr, "is not a beam command") {
		t.Errorf("stderr = %q", stderr)
	}
}

// TestShellEvalHelp validates one-shot eval of help succeeds.
func TestShellEvalHelp(t *testing.T) {
	stdout, _, code := run(t, "shell", "--eval", "help")
	if code != 0 {
		t.Fatal("eval help should exit 0")
	}
	if !strings.Contains(stdout, "channels") {
		t.Errorf("help output = %q", stdout)
	}
}

// TestUnknownCommandExitCode validates unknown top-level commands error.
func TestUnknownCommandExitCode(t *testing.T) {
	_, _, code := run(t, "frobnicate")
	if code == 0 {
		t.Error("unknown command should exit non-zero")
	}
}
