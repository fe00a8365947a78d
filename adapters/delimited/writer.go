package delimited

import (
	"bytes"
	"encoding/csv"

	"goeda/domain/table"
)

// Writer serializes tables as delimited text: UTF-8, header row, no index
// column, the configured separator and decimal marker.
type Writer struct {
	Separator rune
	Parser    table.Parser
}

// NewWriter creates a writer.
func NewWriter(sep rune, p table.Parser) *Writer {
	return &Writer{Separator: sep, Parser: p}
}

// Encode writes t. Nulls are written as empty cells.
func (w *Writer) Encode(t *table.Table) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	cw.Comma = w.Separator
	if err := cw.Write(t.Names()); err != nil {
		return nil, err
	}
	cols := t.Columns()
	row := make([]string, len(cols))
	for r := 0; r < t.NumRows(); r++ {
		for j, c := range cols {
			row[j] = w.Parser.Format(c.Cells[r], c.Type)
		}
		if err := cw.Write(row); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
