// Package main provides tests for the layerlint CLI.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/leapstack-labs/layerlint/internal/cli"
	"github.com/leapstack-labs/layerlint/internal/cli/config"
	"github.com/leapstack-labs/layerlint/internal/testutil"
	"github.com/leapstack-labs/layerlint/pkg/layering"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := execute(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "layerlint v") {
		t.Errorf("version output should contain 'layerlint v', got: %s", output)
	}
}

func TestVersionFlag(t *testing.T) {
	output, err := execute(t, "--version")
	if err != nil {
		t.Errorf("--version error = %v", err)
	}
	if output != "layerlint "+cli.Version+"\n" {
		t.Errorf("unexpected --version output: %q", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := execute(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	expectedCommands := []string{"check", "units", "graph", "rules", "init", "mcp", "completion", "version"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestCheckCommand(t *testing.T) {
	dir := testutil.ShopModule(t)

	output, err := execute(t, "check", dir)
	if !errors.Is(err, layering.ErrViolations) {
		t.Fatalf("check error = %v, want ErrViolations", err)
	}
	if !strings.Contains(output, "service/order.go:10") {
		t.Errorf("check output should name the violation position, got: %s", output)
	}
}

func TestCheckCommandJSON(t *testing.T) {
	dir := testutil.ShopModule(t)

	output, err := execute(t, "check", dir, "--output", "json", "--severity", "LY01=warning")
	if err != nil {
		t.Fatalf("check --output json error = %v", err)
	}

	var result struct {
		RunID    string `json:"run_id"`
		Passed   bool   `json:"passed"`
		Warnings int    `json:"warnings"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, output)
	}
	if result.RunID == "" || !result.Passed || result.Warnings != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestCompletionCommand(t *testing.T) {
	output, err := execute(t, "completion", "bash")
	if err != nil {
		t.Errorf("completion command error = %v", err)
	}
	if !strings.Contains(output, "layerlint") {
		t.Errorf("completion script should mention layerlint")
	}
}
