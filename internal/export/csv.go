// Package export serializes the transaction collection for download.
package export

import (
	"strings"

	"pocketwise/internal/core"
)

// FileName is the suggested name of the downloaded file.
const FileName = "pocketwise_transactions.csv"

// ContentType of the CSV payload.
const ContentType = "text/csv"

var header = []string{"Type", "Amount", "Category", "Date", "Note"}

// CSV renders txns in the given order. Category and note are always quoted.
// Type and amount are validated on load and never need quoting; the date is
// quoted only when loaded text holds a separator. Rows are joined by "\n"
// with no trailing newline.
func CSV(txns []core.Transaction) ([]byte, error) {
	if len(txns) == 0 {
		return nil, core.ErrExportEmpty
	}

	rows := make([]string, 0, len(txns)+1)
	rows = append(rows, strings.Join(header, ","))
	for _, t := range txns {
		rows = append(rows, strings.Join([]string{
			t.Type.String(),
			t.Amount.String(),
			quote(t.Category),
			quoteIfNeeded(t.Date.String()),
			quote(t.Note),
		}, ","))
	}
	return []byte(strings.Join(rows, "\n")), nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}
