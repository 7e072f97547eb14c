package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestCommandsRegistered(t *testing.T) {
	want := []string{"quotes", "history", "simulations", "watch", "backfill", "show", "version"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd == rootCmd {
			t.Fatalf("command %q not registered", name)
		}
	}

	for _, sub := range []string{"list", "create", "update", "delete"} {
		cmd, _, err := rootCmd.Find([]string{"simulations", sub})
		if err != nil || cmd.Name() != sub {
			t.Fatalf("simulations %s not registered", sub)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version", "--config", ""})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(out.String(), "finantrack ") {
		t.Fatalf("unexpected output %q", out.String())
	}
}
