// Package excel reads spreadsheet sheets into raw tables and exports tables
// as .xlsx workbooks.
package excel

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/xuri/excelize/v2"

	"goeda/domain/table"
	"goeda/internal/errors"
)

// Reader reads one sheet of a workbook.
type Reader struct {
	// Sheet names the sheet to read. Empty means the first sheet.
	Sheet string
}

// NewReader creates a reader for the named sheet, or the first sheet when
// sheet is empty.
func NewReader(sheet string) *Reader {
	return &Reader{Sheet: sheet}
}

// Read parses the workbook in r. The first row of the sheet is the header.
func (r *Reader) Read(src io.Reader) (*table.Raw, error) {
	start := time.Now()
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, errors.LoadError("failed to open Excel workbook", err)
	}
	defer f.Close()
	log.Printf("[ExcelReader] workbook opened in %.2fms", float64(time.Since(start).Nanoseconds())/1e6)

	sheet := r.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.LoadError("the workbook has no sheets", nil)
		}
		sheet = sheets[0]
	}

	readStart := time.Now()
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.LoadError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}
	log.Printf("[ExcelReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.LoadError(fmt.Sprintf("sheet %q is empty", sheet), nil)
	}
	return table.NewRaw(rows[0], rows[1:])
}
