package amqp

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"pocketbook/internal/log"
	"pocketbook/internal/store"
)

// Publisher sends change messages to the broker.
type Publisher interface {
	PublishChange(ctx context.Context, msg *ChangeMessage) error
}

// Notifier turns store changes into feed messages. Listen never blocks: a
// full queue drops the message with a warning.
type Notifier struct {
	publisher  Publisher
	queue      chan *ChangeMessage
	logger     *log.Logger
	maxRetries int
	sleep      func(context.Context, time.Duration) error

	published atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

// NewNotifier buffers up to size messages.
func NewNotifier(publisher Publisher, size int, logger *log.Logger) *Notifier {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Notifier{
		publisher:  publisher,
		queue:      make(chan *ChangeMessage, size),
		logger:     logger.WithComponent(log.ComponentAMQP),
		maxRetries: 3,
		sleep:      sleepContext,
	}
}

// Listen is a store.Listener.
func (n *Notifier) Listen(change store.Change) {
	if change.Kind == store.ChangeLoad {
		return
	}
	msg := NewChangeMessage(change)
	select {
	case n.queue <- msg:
	default:
		n.dropped.Add(1)
		n.logger.Warn("Change feed queue full, dropping message", log.FieldChangeKind, msg.Kind)
	}
}

// Run publishes queued messages until ctx is done.
func (n *Notifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-n.queue:
			n.publish(ctx, msg)
		}
	}
}

// publish retries connection failures with exponential backoff. Other
// errors, including an open circuit, drop the message.
func (n *Notifier) publish(ctx context.Context, msg *ChangeMessage) {
	for attempt := 0; ; attempt++ {
		err := n.publisher.PublishChange(ctx, msg)
		if err == nil {
			n.published.Add(1)
			return
		}
		if ctx.Err() != nil {
			return
		}
		if !isConnectionError(err) || errors.Is(err, ErrCircuitOpen) || attempt >= n.maxRetries {
			n.failed.Add(1)
			n.logger.WarnContext(ctx, "Publish change failed",
				log.FieldChangeKind, msg.Kind, log.FieldError, err, "attempts", attempt+1)
			return
		}
		if n.sleep(ctx, exponentialBackoff(attempt)) != nil {
			return
		}
	}
}

// NotifierStats are cumulative counters.
type NotifierStats struct {
	Published int64 `json:"published"`
	Dropped   int64 `json:"dropped"`
	Failed    int64 `json:"failed"`
}

func (n *Notifier) Stats() NotifierStats {
	return NotifierStats{
		Published: n.published.Load(),
		Dropped:   n.dropped.Load(),
		Failed:    n.failed.Load(),
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
