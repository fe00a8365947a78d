package excel

import (
	"goeda/domain/table"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Sheet1"

// Writer exports tables as single-sheet workbooks. Numbers are written as
// numeric cells, timestamps as text in the export layout so they read back
// unchanged.
type Writer struct{}

// NewWriter creates a workbook writer.
func NewWriter() *Writer { return &Writer{} }

// Encode writes t to a new workbook and returns its bytes.
func (w *Writer) Encode(t *table.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, 0, t.NumColumns())
	for _, n := range t.Names() {
		header = append(header, n)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, err
	}

	cols := t.Columns()
	for r := 0; r < t.NumRows(); r++ {
		row := make([]interface{}, len(cols))
		for j, c := range cols {
			v := c.Cells[r]
			switch {
			case v.IsNull():
				row[j] = nil
			case c.Type.IsNumeric():
				f64, _ := v.Float()
				row[j] = f64
			default:
				row[j] = v.String()
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
