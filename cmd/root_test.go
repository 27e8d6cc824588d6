package cmd

import "testing"

func TestRootCommandRegistersFilterAndVersion(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	if !names["filter"] {
		t.Fatal("expected \"filter\" subcommand to be registered")
	}
	if !names["version"] {
		t.Fatal("expected \"version\" subcommand to be registered")
	}
}

func TestRootCommandUseIsToolName(t *testing.T) {
	if rootCmd.Use != toolName {
		t.Fatalf("Use = %q, want %q", rootCmd.Use, toolName)
	}
}
