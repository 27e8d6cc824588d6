package cmd

import (
	"bytes"
	"testing"
)

func TestVersionLineFormat(t *testing.T) {
	want := toolName + " version " + version
	if got := versionLine(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestVersionCommandWritesToOut(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)

	want := versionLine() + "\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}
