package v1

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gosuda/boardexport/internal/domain"
)

// maxBodyBytes bounds the export request body.
const maxBodyBytes = 1 << 20

// exportBody is the raw JSON body. Fields are decoded loosely so type errors
// can be reported per field.
type exportBody struct {
	Token          any `json:"token"`
	BoardID        any `json:"boardId"`
	Context        any `json:"context"`
	StatusColumnID any `json:"statusColumnId"`
	AllowedStatus  any `json:"allowedStatus"`
	TargetStatus   any `json:"targetStatus"`
	ColumnIDs      any `json:"columnIds"`
}

// decodeExportRequest parses and validates an export request body. Every
// returned error wraps domain.ErrInvalidRequest. The token is required only
// when requireToken is set.
func decodeExportRequest(r io.Reader, requireToken bool) (*domain.ExportRequest, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBodyBytes+1))
	if err != nil {
		return nil, invalidf("reading body: %v", err)
	}
	if len(data) > maxBodyBytes {
		return nil, invalidf("body exceeds %d bytes", maxBodyBytes)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, invalidf("body must be a JSON object")
	}

	var body exportBody
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, invalidf("body is not valid JSON")
	}
	// Exactly one value; trailing data is rejected.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, invalidf("body is not valid JSON")
	}

	req := &domain.ExportRequest{}

	if req.BoardID, err = boardID(body); err != nil {
		return nil, err
	}
	if req.StatusColumnID, err = requiredString("statusColumnId", body.StatusColumnID); err != nil {
		return nil, err
	}
	if req.AllowedStatus, err = requiredString("allowedStatus", body.AllowedStatus); err != nil {
		return nil, err
	}
	if req.TargetStatus, err = requiredString("targetStatus", body.TargetStatus); err != nil {
		return nil, err
	}
	if req.Columns, err = columns(body.ColumnIDs); err != nil {
		return nil, err
	}

	if requireToken {
		if req.Token, err = requiredString("token", body.Token); err != nil {
			return nil, err
		}
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// boardID takes the top-level boardId, falling back to context.boardId.
func boardID(body exportBody) (string, error) {
	raw := body.BoardID
	field := "boardId"
	if raw == nil {
		if ctx, ok := body.Context.(map[string]any); ok {
			raw = ctx["boardId"]
			field = "context.boardId"
		} else if body.Context != nil {
			return "", invalidf("context must be an object")
		}
	}

	switch v := raw.(type) {
	case nil:
		return "", invalidf("boardId is required")
	case string:
		if strings.TrimSpace(v) == "" {
			return "", invalidf("%s must not be empty", field)
		}
		return strings.TrimSpace(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil || n <= 0 {
			return "", invalidf("%s must be a positive integer", field)
		}
		return v.String(), nil
	default:
		return "", invalidf("%s must be a string or a number", field)
	}
}

func requiredString(field string, v any) (string, error) {
	s, ok := v.(string)
	switch {
	case v == nil:
		return "", invalidf("%s is required", field)
	case !ok:
		return "", invalidf("%s must be a string", field)
	case s == "":
		return "", invalidf("%s must not be empty", field)
	}
	return s, nil
}

func columns(v any) ([]domain.Column, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, invalidf("columnIds must be an array")
	}

	cols := make([]domain.Column, 0, len(list))
	for i, entry := range list {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, invalidf("columnIds[%d] must be an object", i)
		}
		id, idOK := obj["id"].(string)
		label, labelOK := obj["label"].(string)
		if !idOK || !labelOK {
			return nil, invalidf("columnIds[%d] needs a non-empty id and label", i)
		}
		cols = append(cols, domain.Column{ID: id, Label: label})
	}
	return cols, nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// validationMessage strips the sentinel prefix so clients see only the detail.
func validationMessage(err error) string {
	msg := err.Error()
	prefix := domain.ErrInvalidRequest.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	if errors.Is(err, domain.ErrInvalidRequest) {
		return "invalid request"
	}
	return msg
}
