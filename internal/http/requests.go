package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"pocketwise/internal/core"
	"pocketwise/internal/query"
)

// looseString accepts a JSON string or number.
type looseString string

func (l *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = looseString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*l = looseString(n.String())
	return nil
}

type createTransactionRequest struct {
	Type     string      `json:"type" validate:"required,oneof=income expense"`
	Amount   looseString `json:"amount" validate:"required"`
	Category string      `json:"category" validate:"max=100"`
	Date     string      `json:"date" validate:"required"`
	Note     string      `json:"note" validate:"max=500"`
}

func (r createTransactionRequest) draft() core.Draft {
	return core.Draft{
		Type:     r.Type,
		Amount:   string(r.Amount),
		Category: sanitizeInput(r.Category),
		Date:     r.Date,
		Note:     sanitizeInput(r.Note),
	}
}

type filtersRequest struct {
	Month    string `json:"month" validate:"omitempty,max=7"`
	Category string `json:"category" validate:"max=100"`
	Sort     string `json:"sort" validate:"omitempty,oneof=latest amountHigh amountLow"`
}

func (r filtersRequest) config() query.Config {
	return query.Config{Month: r.Month, Category: r.Category, Sort: query.SortMode(r.Sort)}
}

type searchRequest struct {
	Query string `json:"query" validate:"max=200"`
	// Immediate skips the debounce, e.g. when the user presses enter.
	Immediate bool `json:"immediate"`
}

// sanitizeInput removes control characters except tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
