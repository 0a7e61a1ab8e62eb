package notify

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotifier_BoundedOldestDropped(t *testing.T) {
	n := New(3, nil)
	for i := 0; i < 5; i++ {
		n.Info(fmt.Sprintf("m%d", i))
	}
	got := n.Drain()
	if len(got) != 3 || got[0].Message != "m2" || got[2].Message != "m4" {
		t.Fatalf("unexpected queue %+v", got)
	}
	if n.Len() != 0 {
		t.Fatalf("drain must empty the queue")
	}
}

func TestNotifier_ErrorPrefixesAction(t *testing.T) {
	n := New(0, nil)
	n.Error("move task", errors.New("api: 500 boom"))
	n.Error("ignored", nil)
	last, ok := n.Latest()
	if !ok || last.Level != Error || last.Message != "move task: api: 500 boom" {
		t.Fatalf("unexpected latest %+v", last)
	}
	if n.Len() != 1 {
		t.Fatalf("nil errors must not be queued")
	}
}

func TestNotifier_NilIsSafe(t *testing.T) {
	var n *Notifier
	n.Push(Info, "x")
	if n.Drain() != nil || n.Len() != 0 {
		t.Fatalf("nil notifier must be inert")
	}
}
