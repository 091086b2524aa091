package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// spreadsheetText reads every sheet of an xlsx workbook into tab-separated
// lines, one sheet per "page".
func spreadsheetText(data []byte) (string, int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", 0, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	var b strings.Builder
	for si, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", 0, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if si > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		for _, row := range rows {
			for i, cell := range row {
				if i > 0 {
					b.WriteByte('\t')
				}
				b.WriteString(strings.TrimSpace(cell))
			}
			b.WriteByte('\n')
		}
	}
	return b.String(), len(sheets), nil
}
