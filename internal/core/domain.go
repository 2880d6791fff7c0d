package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TxnType = "income"
	Expense TxnType = "expense"
)

// DefaultIncomeCategory is used when an income is recorded without a category.
const DefaultIncomeCategory = "Income"

const dateLayout = "2006-01-02"

type (
	TxnType string

	// Date is a calendar date kept in its YYYY-MM-DD text form. Persisted
	// data may carry text that does not parse; it is preserved as-is.
	Date string

	Transaction struct {
		ID       string
		Type     TxnType
		Amount   decimal.Decimal
		Category string
		Date     Date
		Note     string
	}

	// Draft holds the raw values of a create-transaction intent.
	Draft struct {
		Type     string
		Amount   string
		Category string
		Date     string
		Note     string
	}
)

var (
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrMissingDate     = errors.New("missing or invalid date")
	ErrMissingCategory = errors.New("category is required for expenses")
)

// ParseTxnType accepts "income" or "expense" in any case.
func ParseTxnType(s string) (TxnType, bool) {
	switch TxnType(strings.ToLower(strings.TrimSpace(s))) {
	case Income:
		return Income, true
	case Expense:
		return Expense, true
	}
	return "", false
}

func (t TxnType) String() string {
	return string(t)
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return DateOf(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
}

// DateOf formats t as a calendar date.
func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

// Time parses the date. RFC 3339 timestamps are accepted as well since
// older exports stored full timestamps; they keep their own offset so the
// calendar day matches the text.
func (d Date) Time() (time.Time, bool) {
	s := strings.TrimSpace(string(d))
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Prefix returns the first seven characters of the raw text, which is the
// YYYY-MM bucket for well-formed dates. It does not require the date to parse.
func (d Date) Prefix() string {
	s := string(d)
	if len(s) > 7 {
		return s[:7]
	}
	return s
}

// Bucket returns the YYYY-MM key of a parseable date.
func (d Date) Bucket() (string, bool) {
	t, ok := d.Time()
	if !ok {
		return "", false
	}
	return t.Format("2006-01"), true
}

func (d Date) String() string {
	return string(d)
}

// Normalize validates the draft and returns the transaction it describes,
// without an ID.
func (d Draft) Normalize() (Transaction, error) {
	typ, ok := ParseTxnType(d.Type)
	if !ok {
		return Transaction{}, &ValidationError{Field: "type", Err: ErrInvalidType}
	}

	amount, err := ParseAmount(d.Amount)
	if err != nil {
		return Transaction{}, &ValidationError{Field: "amount", Err: err}
	}

	parsed, ok := Date(strings.TrimSpace(d.Date)).Time()
	if !ok {
		return Transaction{}, &ValidationError{Field: "date", Err: ErrMissingDate}
	}
	date := DateOf(parsed)

	category := strings.TrimSpace(d.Category)
	if category == "" {
		if typ == Expense {
			return Transaction{}, &ValidationError{Field: "category", Err: ErrMissingCategory}
		}
		category = DefaultIncomeCategory
	}

	return Transaction{
		Type:     typ,
		Amount:   amount,
		Category: category,
		Date:     date,
		Note:     strings.TrimSpace(d.Note),
	}, nil
}

// Validate checks the invariants of a stored transaction.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("transaction id cannot be empty")
	}
	if _, ok := ParseTxnType(string(t.Type)); !ok {
		return ErrInvalidType
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}
