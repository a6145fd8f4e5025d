package domain

// ColumnValue is the display text of one column on a board item.
type ColumnValue struct {
	ID   string
	Text string
}

// Item is a board item as read from the upstream API.
type Item struct {
	ID           string
	Name         string
	ColumnValues []ColumnValue
}

// ColumnText returns the text of the given column and whether the item has it.
func (it *Item) ColumnText(columnID string) (string, bool) {
	for _, cv := range it.ColumnValues {
		if cv.ID == columnID {
			return cv.Text, true
		}
	}
	return "", false
}

// Row is one export row, with cells aligned to ExportRequest.Headers.
type Row []string
