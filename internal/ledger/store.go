// Package ledger holds the in-memory transaction collection of a session.
package ledger

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"pocketwise/internal/core"
	applog "pocketwise/internal/log"
)

// Persister writes the full collection after every mutation.
type Persister interface {
	Save(ctx context.Context, txns []core.Transaction) error
}

// Store is the insertion-ordered collection of transactions. It is not safe
// for concurrent use; callers serialize access.
type Store struct {
	txns      []core.Transaction
	ids       map[string]struct{}
	persister Persister
	newID     func() string
	revision  uint64
	logger    *applog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the default ID source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithLogger sets the store logger.
func WithLogger(l *applog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a store seeded with initial. Entries repeating an earlier ID
// are dropped.
func New(p Persister, initial []core.Transaction, opts ...Option) *Store {
	s := &Store{
		ids:       make(map[string]struct{}, len(initial)),
		persister: p,
		newID:     newTransactionID,
		logger:    applog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.WithComponent(applog.ComponentLedger)

	s.txns = make([]core.Transaction, 0, len(initial))
	for _, t := range initial {
		if _, dup := s.ids[t.ID]; dup {
			s.logger.Warn("Dropping duplicate transaction id", applog.FieldTxnID, t.ID)
			continue
		}
		s.ids[t.ID] = struct{}{}
		s.txns = append(s.txns, t)
	}
	return s
}

func newTransactionID() string {
	return "tx_" + uuid.NewString()
}

// Add validates the draft, appends the resulting transaction under a fresh
// ID and persists the collection. A failed write is rolled back.
func (s *Store) Add(ctx context.Context, d core.Draft) (core.Transaction, error) {
	txn, err := d.Normalize()
	if err != nil {
		return core.Transaction{}, err
	}

	txn.ID = s.uniqueID()
	s.txns = append(s.txns, txn)
	s.ids[txn.ID] = struct{}{}

	if err := s.persist(ctx, applog.OpCreate); err != nil {
		s.txns = s.txns[:len(s.txns)-1]
		delete(s.ids, txn.ID)
		return core.Transaction{}, err
	}

	s.revision++
	s.logger.InfoContext(ctx, "Transaction created",
		applog.NewFields().
			WithTransaction(txn.ID, txn.Type.String(), txn.Amount.String(), txn.Category, txn.Date.String()).
			WithOperation(applog.OpCreate).
			ToSlice()...)
	return txn, nil
}

// Remove deletes the transaction with the given ID. An unknown ID is a
// no-op and reports false.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	idx := slices.IndexFunc(s.txns, func(t core.Transaction) bool { return t.ID == id })
	if idx < 0 {
		return false, nil
	}

	removed := s.txns[idx]
	prev := s.txns
	s.txns = slices.Concat(prev[:idx], prev[idx+1:])
	delete(s.ids, id)

	if err := s.persist(ctx, applog.OpDelete); err != nil {
		s.txns = prev
		s.ids[id] = struct{}{}
		return false, err
	}

	s.revision++
	s.logger.InfoContext(ctx, "Transaction deleted",
		applog.FieldTxnID, removed.ID, applog.FieldOperation, applog.OpDelete)
	return true, nil
}

// All returns a copy of the collection in insertion order.
func (s *Store) All() []core.Transaction {
	return slices.Clone(s.txns)
}

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	return len(s.txns)
}

// Revision increases by one on every successful mutation.
func (s *Store) Revision() uint64 {
	return s.revision
}

func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if _, taken := s.ids[id]; !taken && id != "" {
			return id
		}
	}
}

func (s *Store) persist(ctx context.Context, op string) error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(ctx, s.txns); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist transactions, change rolled back",
			applog.NewFields().WithError(err).WithOperation(op).WithErrorType(applog.ErrorTypePersistence).ToSlice()...)
		return &core.PersistenceWriteError{Op: op, Err: err}
	}
	return nil
}
