package extract

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// convertXLSX renders each non-empty sheet as a section headed by the sheet name.
// Every sheet counts as one page.
func convertXLSX(path string, structured bool) (*ConversionResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	sections := make([]string, 0, len(sheets))
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		table := renderTable(rows, structured)
		if table == "" {
			continue
		}
		sections = append(sections, "## "+sheet+"\n\n"+table)
	}
	return &ConversionResult{Document: Document{Markdown: strings.Join(sections, "\n\n"), Pages: pagesOf(len(sheets))}}, nil
}
