package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

type failingNotifier struct{ calls int }

func (f *failingNotifier) Notify(ctx context.Context, note Notification) error {
	f.calls++
	return errors.New("unavailable")
}

func TestConsoleNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewConsoleNotifier(&buf)
	if err := n.Notify(context.Background(), Notification{Level: LevelInfo, Message: "Simulation deleted"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := buf.String(); got != "[info] Simulation deleted\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestMultiCallsEveryNotifier(t *testing.T) {
	var buf bytes.Buffer
	failing := &failingNotifier{}
	m := Multi{failing, nil, NewConsoleNotifier(&buf), NewLogNotifier(testLogger())}

	err := m.Notify(context.Background(), Notification{Level: LevelError, Message: "boom"})
	if err == nil {
		t.Fatal("failing notifier error should be reported")
	}
	if failing.calls != 1 {
		t.Fatalf("expected one call, got %d", failing.calls)
	}
	if buf.String() != "[error] boom\n" {
		t.Fatalf("console notifier should still run, got %q", buf.String())
	}
}
