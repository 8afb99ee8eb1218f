package main

import (
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestMainExitsOnBadConfig(t *testing.T) {
	if os.Getenv("SPELLBEE_RUN_MAIN") == "1" {
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestMainExitsOnBadConfig$")
	cmd.Env = append(os.Environ(), "SPELLBEE_RUN_MAIN=1", "RATE_LIMIT=lots")
	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
		t.Fatalf("main() error = %v, want exit status 1; output %s", err, out)
	}
	if !strings.Contains(string(out), "Failed to load configuration") {
		t.Errorf("output = %q, want a configuration error", out)
	}
	if strings.Contains(string(out), "panic") {
		t.Errorf("main() panicked: %s", out)
	}
}
