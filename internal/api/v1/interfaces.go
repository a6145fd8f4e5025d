package v1

import (
	"context"

	"github.com/gosuda/boardexport/internal/domain"
	"github.com/gosuda/boardexport/internal/export"
)

// Exporter runs one export for handler testing.
// *export.Service satisfies this interface.
type Exporter interface {
	Run(ctx context.Context, token string, req *domain.ExportRequest) (*export.Result, error)
}

// Credentials resolves the upstream token for a request.
// credential.Strategy satisfies this interface.
type Credentials interface {
	Token(req *domain.ExportRequest) (string, error)
	RequiresRequestToken() bool
	Mode() string
}
