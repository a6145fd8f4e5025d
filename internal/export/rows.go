package export

import (
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/gosuda/boardexport/internal/domain"
)

// FilterByStatus keeps the items whose status column, trimmed, equals allowed.
// Items without the status column never match. Input order is preserved.
func FilterByStatus(items []domain.Item, statusColumnID, allowed string) []domain.Item {
	matched := make([]domain.Item, 0)
	for _, it := range items {
		text, ok := it.ColumnText(statusColumnID)
		if ok && strings.TrimSpace(text) == allowed {
			matched = append(matched, it)
		}
	}
	return matched
}

// BuildRows produces one row per item: the item name followed by the text of
// each requested column in order, or "" when the item lacks that column.
func BuildRows(items []domain.Item, columns []domain.Column) []domain.Row {
	rows := make([]domain.Row, 0, len(items))
	for _, it := range items {
		row := make(domain.Row, 0, len(columns)+1)
		row = append(row, it.Name)
		for _, col := range columns {
			text, _ := it.ColumnText(col.ID)
			row = append(row, text)
		}
		rows = append(rows, row)
	}
	return rows
}

// LongCell is a cell whose text exceeds excelize.TotalCellChars. The workbook
// keeps only the first TotalCellChars characters of it.
type LongCell struct {
	ItemID string
	Column string
	Length int
}

// LongCells lists the cells BuildRows would produce for items that the
// workbook will truncate. Column is "name" for the item name, otherwise the
// column id.
func LongCells(items []domain.Item, columns []domain.Column) []LongCell {
	var long []LongCell
	for _, it := range items {
		if n := utf8.RuneCountInString(it.Name); n > excelize.TotalCellChars {
			long = append(long, LongCell{ItemID: it.ID, Column: "name", Length: n})
		}
		for _, col := range columns {
			text, _ := it.ColumnText(col.ID)
			if n := utf8.RuneCountInString(text); n > excelize.TotalCellChars {
				long = append(long, LongCell{ItemID: it.ID, Column: col.ID, Length: n})
			}
		}
	}
	return long
}
