package notify

import (
	"reflect"
	"testing"
	"time"
)

func TestArgs(t *testing.T) {
	n := NewNotifier("taskdeck")

	got := n.Args(Notification{
		Title:   "taskdeck",
		Body:    "Task added",
		Urgency: UrgencyCritical,
		Timeout: 1500 * time.Millisecond,
		Icon:    "dialog-error-symbolic",
	})
	want := []string{"-u", "critical", "-t", "1500", "-i", "dialog-error-symbolic", "-a", "taskdeck", "taskdeck", "Task added"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Args() = %v, want %v", got, want)
	}

	got = n.Args(Notification{Title: "only title"})
	want = []string{"-u", "normal", "-a", "taskdeck", "only title"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Args() = %v, want %v", got, want)
	}
}

func TestSendRespectsEnabled(t *testing.T) {
	n := NewNotifier("taskdeck")

	var calls [][]string
	n.run = func(name string, args ...string) error {
		if name != "notify-send" {
			t.Errorf("unexpected command %q", name)
		}
		calls = append(calls, args)
		return nil
	}

	if err := n.SendSuccess("saved"); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 0 {
		t.Fatalf("disabled notifier ran %d commands", len(calls))
	}

	n.SetEnabled(true)
	if err := n.SendError("failed"); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 1 {
		t.Fatalf("expected one command, got %d", len(calls))
	}
	if calls[0][1] != "critical" || calls[0][len(calls[0])-1] != "failed" {
		t.Errorf("unexpected args %v", calls[0])
	}
}
