// Package store owns the authoritative, sorted list of transactions for the
// running process and persists it on a debounced schedule.
//
// Reads and writes of the in-memory list never wait for disk I/O. Every
// mutation schedules a save after a quiet interval; a mutation arriving
// before the interval elapses replaces the pending save, so bursts of adds
// collapse into a single write of the final state. Persistence failures are
// logged and never surface to callers.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pocketbook/internal/core"
	"pocketbook/internal/log"
	"pocketbook/internal/storage"
)

// DefaultDebounce is the quiet interval before a save.
const DefaultDebounce = 500 * time.Millisecond

// ErrDuplicateID is returned by Add when the ID is already present.
var ErrDuplicateID = errors.New("duplicate transaction id")

// ChangeKind names the mutation behind a Change.
type ChangeKind string

const (
	ChangeLoad  ChangeKind = "load"
	ChangeSeed  ChangeKind = "seed"
	ChangeAdd   ChangeKind = "add"
	ChangeReset ChangeKind = "reset"
)

// Change is delivered to listeners after every mutation. Transactions is a
// private copy; Added is set for ChangeAdd only.
type Change struct {
	Kind         ChangeKind
	Transactions []core.Transaction
	Added        *core.Transaction
}

// Listener observes store changes. Listeners run synchronously on the
// mutating goroutine, outside the store lock, one change at a time and in
// mutation order. They must not block or mutate the store.
type Listener func(Change)

// SeedFunc produces demo data for an empty store.
type SeedFunc func() []core.Transaction

// Stats is a read-only view of the store's persistence health.
type Stats struct {
	Count         int       `json:"count"`
	PendingSave   bool      `json:"pending_save"`
	WriteFailures int64     `json:"write_failures"`
	LastError     string    `json:"last_error,omitempty"`
	LastSavedAt   time.Time `json:"last_saved_at"`
}

// Option configures a Store.
type Option func(*Store)

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(s Scheduler) Option {
	return func(st *Store) { st.scheduler = s }
}

// WithDebounce sets the quiet interval before a save.
func WithDebounce(d time.Duration) Option {
	return func(st *Store) { st.debounce = d }
}

// WithWriteTimeout bounds a single save.
func WithWriteTimeout(d time.Duration) Option {
	return func(st *Store) { st.writeTimeout = d }
}

// WithSeed sets the demo data generator used by Initialize.
func WithSeed(f SeedFunc) Option {
	return func(st *Store) { st.seed = f }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(st *Store) { st.logger = l }
}

// Store is the single owner of the transaction list.
type Store struct {
	backend      storage.Backend
	scheduler    Scheduler
	debounce     time.Duration
	writeTimeout time.Duration
	seed         SeedFunc
	logger       *log.Logger

	// notifyMu is taken before mu by every mutation and held until its
	// listeners return, so listeners see changes in mutation order.
	notifyMu sync.Mutex

	mu           sync.Mutex
	transactions []core.Transaction
	ids          map[uuid.UUID]struct{}
	version      uint64 // bumped by every mutation
	pending      Timer
	pendingSeq   uint64
	listeners    map[int]Listener
	nextListener int

	// writeMu serializes saves; written is the version last persisted.
	writeMu     sync.Mutex
	written     uint64
	failures    int64
	lastErr     error
	lastSavedAt time.Time
}

// New creates a store over backend. Call Initialize before use.
func New(backend storage.Backend, opts ...Option) *Store {
	s := &Store{
		backend:      backend,
		scheduler:    ClockScheduler{},
		debounce:     DefaultDebounce,
		writeTimeout: 10 * time.Second,
		ids:          map[uuid.UUID]struct{}{},
		listeners:    map[int]Listener{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentStore)
	}
	return s
}

// Initialize loads the persisted snapshot. It reports whether prior state
// was found. When nothing usable was found and seedIfEmpty is set, the list
// is filled with demo data and saved right away.
//
// Load failures are logged and treated as a cold start; a corrupt file is
// left in place and overwritten by the next save.
func (s *Store) Initialize(ctx context.Context, seedIfEmpty bool) bool {
	txs, err := s.backend.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNoState):
		s.logger.InfoContext(ctx, "No persisted transactions", log.FieldLocation, s.backend.Location())
	case err != nil:
		s.logger.ErrorContext(ctx, "Load transactions failed, starting empty",
			log.FieldLocation, s.backend.Location(), log.FieldError, err)
	default:
		s.replace(ctx, txs, ChangeLoad)
		s.logger.InfoContext(ctx, "Loaded transactions",
			log.FieldLocation, s.backend.Location(), log.FieldCount, len(txs))
		return true
	}

	if seedIfEmpty && s.seed != nil {
		s.replace(ctx, s.seed(), ChangeSeed)
		if err := s.Flush(ctx); err != nil {
			s.logger.ErrorContext(ctx, "Persist seed data failed", log.FieldError, err)
		}
	}
	return false
}

// replace swaps the whole list, dropping duplicate IDs (first one wins).
func (s *Store) replace(ctx context.Context, txs []core.Transaction, kind ChangeKind) {
	list := make([]core.Transaction, 0, len(txs))
	ids := make(map[uuid.UUID]struct{}, len(txs))
	for _, tx := range txs {
		if _, dup := ids[tx.ID]; dup {
			s.logger.WarnContext(ctx, "Dropping duplicate transaction", log.FieldTransactionID, tx.ID.String())
			continue
		}
		ids[tx.ID] = struct{}{}
		list = append(list, tx)
	}
	core.Sort(list)

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.transactions = list
	s.ids = ids
	if kind != ChangeLoad {
		s.version++
	}
	change, listeners := s.changeLocked(kind, nil)
	s.mu.Unlock()

	notify(listeners, change)
}

// Add inserts tx, keeps the list sorted and schedules a debounced save.
// The transaction is visible to Transactions as soon as Add returns.
func (s *Store) Add(tx core.Transaction) error {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if _, dup := s.ids[tx.ID]; dup {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateID, tx.ID)
	}
	i, _ := slices.BinarySearchFunc(s.transactions, tx, core.Compare)
	s.transactions = slices.Insert(s.transactions, i, tx)
	s.ids[tx.ID] = struct{}{}
	s.version++
	s.scheduleLocked(s.debounce)
	change, listeners := s.changeLocked(ChangeAdd, &tx)
	s.mu.Unlock()

	notify(listeners, change)
	return nil
}

// AddIncome records a positive amount without a category.
func (s *Store) AddIncome(amount decimal.Decimal, note string, date time.Time) (core.Transaction, error) {
	tx := core.NewTransaction(date, amount.Abs(), "", note, "")
	if err := s.Add(tx); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// Reset empties the list, drops any pending debounced save and schedules
// an immediate one.
func (s *Store) Reset() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.transactions = nil
	s.ids = map[uuid.UUID]struct{}{}
	s.version++
	s.scheduleLocked(0)
	change, listeners := s.changeLocked(ChangeReset, nil)
	s.mu.Unlock()

	notify(listeners, change)
}

// Transactions returns a copy of the current sorted list.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.transactions)
}

// Len returns the number of transactions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions)
}

// Subscribe registers l and returns the function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Flush cancels the pending save and writes unsaved state now.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	snapshot, version := slices.Clone(s.transactions), s.version
	s.mu.Unlock()

	return s.write(ctx, snapshot, version)
}

// Close flushes unsaved state. The store stays usable afterwards.
func (s *Store) Close(ctx context.Context) error {
	return s.Flush(ctx)
}

// Stats reports persistence health.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	count, pending := len(s.transactions), s.pending != nil
	s.mu.Unlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	st := Stats{
		Count:         count,
		PendingSave:   pending,
		WriteFailures: s.failures,
		LastSavedAt:   s.lastSavedAt,
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

// scheduleLocked replaces the pending save. Callers hold s.mu.
func (s *Store) scheduleLocked(delay time.Duration) {
	if s.pending != nil {
		s.pending.Stop()
	}
	s.pendingSeq++
	seq := s.pendingSeq
	s.pending = s.scheduler.AfterFunc(delay, func() { s.fire(seq) })
}

// fire runs on the scheduler's goroutine. The snapshot is taken here, not
// when the save was scheduled.
func (s *Store) fire(seq uint64) {
	s.mu.Lock()
	if s.pendingSeq == seq {
		s.pending = nil
	}
	snapshot, version := slices.Clone(s.transactions), s.version
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()
	if err := s.write(ctx, snapshot, version); err != nil {
		s.logger.ErrorContext(ctx, "Save transactions failed",
			log.FieldLocation, s.backend.Location(), log.FieldError, err)
	}
}

// write persists snapshot unless a newer version is already on disk.
func (s *Store) write(ctx context.Context, snapshot []core.Transaction, version uint64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if version <= s.written {
		return nil
	}
	if err := s.backend.Save(ctx, snapshot); err != nil {
		s.failures++
		s.lastErr = err
		return err
	}
	s.written = version
	s.lastErr = nil
	s.lastSavedAt = time.Now()
	s.logger.DebugContext(ctx, "Saved transactions",
		log.FieldCount, len(snapshot), log.FieldLocation, s.backend.Location())
	return nil
}

// changeLocked builds the notification and the listener set to call.
func (s *Store) changeLocked(kind ChangeKind, added *core.Transaction) (Change, []Listener) {
	if len(s.listeners) == 0 {
		return Change{}, nil
	}
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	return Change{Kind: kind, Transactions: slices.Clone(s.transactions), Added: added}, listeners
}

func notify(listeners []Listener, change Change) {
	for _, l := range listeners {
		l(change)
	}
}
