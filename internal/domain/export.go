package domain

import (
	"fmt"
	"strings"
)

// NameHeader is the fixed header of the first export column.
const NameHeader = "Name"

// Column selects one board column for export and names its header.
type Column struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ExportRequest describes a single export run.
type ExportRequest struct {
	Token          string // caller-supplied session token; empty in server-secret mode
	BoardID        string
	StatusColumnID string
	AllowedStatus  string
	TargetStatus   string
	Columns        []Column
}

// Validate checks that every field needed by the pipeline is present.
// The token is checked by the credential strategy, not here.
func (r *ExportRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.BoardID) == "":
		return invalid("boardId is required")
	case r.StatusColumnID == "":
		return invalid("statusColumnId is required")
	case r.AllowedStatus == "":
		return invalid("allowedStatus is required")
	case r.TargetStatus == "":
		return invalid("targetStatus is required")
	case r.Columns == nil:
		return invalid("columnIds must be an array")
	}

	seen := make(map[string]struct{}, len(r.Columns))
	for i, c := range r.Columns {
		if c.ID == "" || c.Label == "" {
			return invalid(fmt.Sprintf("columnIds[%d] needs a non-empty id and label", i))
		}
		if _, dup := seen[c.ID]; dup {
			return invalid(fmt.Sprintf("columnIds[%d]: duplicate column id %q", i, c.ID))
		}
		seen[c.ID] = struct{}{}
	}

	return nil
}

// Headers returns the export header row: Name followed by the column labels
// in request order.
func (r *ExportRequest) Headers() []string {
	headers := make([]string, 0, len(r.Columns)+1)
	headers = append(headers, NameHeader)
	for _, c := range r.Columns {
		headers = append(headers, c.Label)
	}
	return headers
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, msg)
}
