package worker

import (
	"context"
	"testing"
	"time"

	"pocketbook/internal/amqp"
	"pocketbook/internal/log"
)

func TestFeedWorkerTracksTotals(t *testing.T) {
	w := NewFeedWorker(log.Discard())
	ctx := context.Background()
	ts := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)

	msgs := []*amqp.ChangeMessage{
		{Kind: "seed", Count: 10},
		{Kind: "add", Count: 11, Amount: "-500", TransactionID: "a"},
		{Kind: "add", Count: 12, Amount: "3000", TransactionID: "b"},
		{Kind: "add", Count: 13, Amount: "-120.5", TransactionID: "c", Timestamp: ts},
	}
	for _, m := range msgs {
		if err := w.HandleChange(ctx, m); err != nil {
			t.Fatalf("handle %s: %v", m.Kind, err)
		}
	}

	s := w.Summary()
	if s.Count != 13 || s.Messages != 4 || s.Gaps != 0 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.Expense.String() != "620.5" || s.Income.String() != "3000" {
		t.Fatalf("totals = %s / %s", s.Income, s.Expense)
	}
	if s.LastKind != "add" || !s.LastChange.Equal(ts) {
		t.Fatalf("last change not recorded: %+v", s)
	}

	if err := w.HandleChange(ctx, &amqp.ChangeMessage{Kind: "reset"}); err != nil {
		t.Fatal(err)
	}
	if s := w.Summary(); s.Count != 0 || !s.Income.IsZero() || !s.Expense.IsZero() {
		t.Fatalf("reset did not clear totals: %+v", s)
	}
}

func TestFeedWorkerDetectsGaps(t *testing.T) {
	w := NewFeedWorker(log.Discard())
	ctx := context.Background()

	steps := []struct {
		msg      *amqp.ChangeMessage
		wantGaps int64
	}{
		{&amqp.ChangeMessage{Kind: "add", Count: 7, Amount: "-1"}, 0},
		{&amqp.ChangeMessage{Kind: "add", Count: 8, Amount: "-1"}, 0},
		{&amqp.ChangeMessage{Kind: "add", Count: 11, Amount: "-1"}, 1},
		{&amqp.ChangeMessage{Kind: "add", Count: 12, Amount: "-1"}, 1},
	}
	for i, st := range steps {
		_ = w.HandleChange(ctx, st.msg)
		if got := w.Summary().Gaps; got != st.wantGaps {
			t.Fatalf("step %d: gaps = %d, want %d", i, got, st.wantGaps)
		}
	}
}

func TestFeedWorkerIgnoresBadMessages(t *testing.T) {
	w := NewFeedWorker(log.Discard())
	ctx := context.Background()

	if err := w.HandleChange(ctx, &amqp.ChangeMessage{Kind: "rename", Count: 99}); err != nil {
		t.Fatalf("unknown kind should be acknowledged: %v", err)
	}
	if err := w.HandleChange(ctx, &amqp.ChangeMessage{Kind: "add", Count: 1, Amount: "lots"}); err != nil {
		t.Fatalf("bad amount should be acknowledged: %v", err)
	}
	s := w.Summary()
	if s.Count != 1 || !s.Income.IsZero() || !s.Expense.IsZero() || s.Messages != 2 {
		t.Fatalf("unexpected summary: %+v", s)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := w.HandleChange(cancelled, &amqp.ChangeMessage{Kind: "reset"}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestFeedWorkerRunStops(t *testing.T) {
	w := NewFeedWorker(log.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx, time.Millisecond)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
