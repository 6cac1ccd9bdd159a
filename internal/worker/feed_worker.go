// Package worker consumes the transaction change feed.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"pocketbook/internal/amqp"
	"pocketbook/internal/log"
	"pocketbook/internal/store"
)

// Summary is what the feed has told the worker so far. Income and Expense
// cover additions since the last reset or seed; both are positive.
type Summary struct {
	Count      int
	Income     decimal.Decimal
	Expense    decimal.Decimal
	Messages   int64
	Gaps       int64
	LastKind   string
	LastChange time.Time
}

// FeedWorker mirrors the store's size and running totals from change
// messages and reports gaps in the sequence.
type FeedWorker struct {
	logger *log.Logger

	mu      sync.Mutex
	summary Summary
	synced  bool // false until a reset or seed fixes the baseline
}

func NewFeedWorker(logger *log.Logger) *FeedWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &FeedWorker{logger: logger.WithComponent(log.ComponentAMQP)}
}

// HandleChange applies one message. Malformed messages are logged and
// acknowledged; only a cancelled context is returned as an error so that
// the delivery is requeued.
func (w *FeedWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	s := &w.summary
	s.Messages++

	switch store.ChangeKind(msg.Kind) {
	case store.ChangeReset, store.ChangeSeed:
		s.Income, s.Expense = decimal.Zero, decimal.Zero
		w.synced = true

	case store.ChangeAdd:
		if w.synced && msg.Count != s.Count+1 {
			s.Gaps++
			w.logger.WarnContext(ctx, "Change feed gap detected",
				"expected_count", s.Count+1, log.FieldCount, msg.Count)
		}
		amount, err := decimal.NewFromString(msg.Amount)
		if err != nil {
			w.logger.WarnContext(ctx, "Ignoring add message with bad amount",
				log.FieldTransactionID, msg.TransactionID, log.FieldAmount, msg.Amount)
			break
		}
		if amount.IsNegative() {
			s.Expense = s.Expense.Sub(amount)
		} else {
			s.Income = s.Income.Add(amount)
		}
		w.synced = true

	default:
		w.logger.WarnContext(ctx, "Ignoring unknown change kind", log.FieldChangeKind, msg.Kind)
		return nil
	}

	s.Count = msg.Count
	s.LastKind = msg.Kind
	s.LastChange = msg.Timestamp

	w.logger.DebugContext(ctx, "Processed change message",
		log.FieldChangeKind, msg.Kind,
		log.FieldCount, msg.Count,
		log.FieldTransactionID, msg.TransactionID)
	return nil
}

// Summary returns a copy of the current mirror.
func (w *FeedWorker) Summary() Summary {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.summary
}

// LogSummary writes the mirror at info level.
func (w *FeedWorker) LogSummary(ctx context.Context) {
	s := w.Summary()
	w.logger.InfoContext(ctx, "Change feed summary",
		log.FieldCount, s.Count,
		"income", s.Income.String(),
		"expense", s.Expense.String(),
		"messages", s.Messages,
		"gaps", s.Gaps,
		"last_kind", s.LastKind)
}

// Run calls LogSummary every interval until ctx ends.
func (w *FeedWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.LogSummary(ctx)
		}
	}
}
