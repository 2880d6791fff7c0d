package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"pocketwise/internal/core"
	applog "pocketwise/internal/log"
)

// DefaultKey names the blob holding the transaction collection.
const DefaultKey = "pocketwise_txns_v1"

// record is the persisted shape of a transaction. Amount is written as a
// JSON number.
type record struct {
	ID       string      `json:"id"`
	Type     string      `json:"type"`
	Amount   json.Number `json:"amount"`
	Category string      `json:"category"`
	Date     string      `json:"date"`
	Note     string      `json:"note"`
}

// Adapter reads and writes the whole collection as one blob.
type Adapter struct {
	kv     KV
	key    string
	logger *applog.Logger
}

func NewAdapter(kv KV, key string, logger *applog.Logger) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = applog.Nop()
	}
	return &Adapter{kv: kv, key: key, logger: logger.WithComponent(applog.ComponentStorage)}
}

// Key returns the blob name the adapter uses.
func (a *Adapter) Key() string {
	return a.key
}

// Load returns the stored collection. It never fails: a missing, unreadable
// or malformed blob yields an empty collection, and individual records that
// break the transaction invariants are dropped.
func (a *Adapter) Load(ctx context.Context) []core.Transaction {
	blob, ok, err := a.kv.Get(ctx, a.key)
	if err != nil {
		a.logger.WarnContext(ctx, "Failed to read stored transactions, starting empty",
			applog.NewFields().WithError(err).WithOperation(applog.OpLoad).WithErrorType(applog.ErrorTypePersistence).ToSlice()...)
		return []core.Transaction{}
	}
	if !ok || strings.TrimSpace(blob) == "" {
		return []core.Transaction{}
	}

	var records []record
	dec := json.NewDecoder(strings.NewReader(blob))
	dec.UseNumber()
	if err := dec.Decode(&records); err != nil {
		a.logger.WarnContext(ctx, "Stored transactions are malformed, starting empty",
			applog.FieldKey, a.key, applog.FieldError, err.Error())
		return []core.Transaction{}
	}

	txns := make([]core.Transaction, 0, len(records))
	for i, r := range records {
		txn, err := r.toTransaction()
		if err != nil {
			a.logger.WarnContext(ctx, "Dropping invalid stored transaction",
				"index", i, applog.FieldTxnID, r.ID, applog.FieldError, err.Error())
			continue
		}
		txns = append(txns, txn)
	}

	a.logger.DebugContext(ctx, "Loaded transactions", applog.FieldKey, a.key, applog.FieldCount, len(txns))
	return txns
}

// Save overwrites the blob with the full collection.
func (a *Adapter) Save(ctx context.Context, txns []core.Transaction) error {
	records := make([]record, len(txns))
	for i, t := range txns {
		records[i] = fromTransaction(t)
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal transactions: %w", err)
	}
	if err := a.kv.Set(ctx, a.key, string(data)); err != nil {
		return fmt.Errorf("write blob %s: %w", a.key, err)
	}
	return nil
}

func fromTransaction(t core.Transaction) record {
	return record{
		ID:       t.ID,
		Type:     t.Type.String(),
		Amount:   json.Number(t.Amount.String()),
		Category: t.Category,
		Date:     t.Date.String(),
		Note:     t.Note,
	}
}

func (r record) toTransaction() (core.Transaction, error) {
	typ, ok := core.ParseTxnType(r.Type)
	if !ok {
		return core.Transaction{}, core.ErrInvalidType
	}
	amount, err := decimal.NewFromString(r.Amount.String())
	if err != nil {
		return core.Transaction{}, core.ErrInvalidAmount
	}
	txn := core.Transaction{
		ID:       r.ID,
		Type:     typ,
		Amount:   amount,
		Category: r.Category,
		Date:     core.Date(r.Date),
		Note:     r.Note,
	}
	if err := txn.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return txn, nil
}
