// Package export runs the board-to-workbook pipeline: fetch items, filter by
// status, build the workbook, then relabel every exported item.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/gosuda/boardexport/internal/domain"
)

// BoardClient is the subset of the board API used by the pipeline.
// *monday.Client satisfies this interface.
type BoardClient interface {
	BoardItems(ctx context.Context, token, boardID string) ([]domain.Item, error)
	SetStatusLabel(ctx context.Context, token, boardID, itemID, columnID, label string) error
}

// Result is the outcome of one export run. Workbook is nil when nothing
// matched. TruncatedCells counts cells cut to excelize.TotalCellChars.
type Result struct {
	ID             uuid.UUID
	Workbook       []byte
	Filename       string
	Fetched        int
	Matched        int
	TruncatedCells int
	MutatedIDs     []string
}

// Empty reports whether no item matched the allowed status.
func (r *Result) Empty() bool { return r.Matched == 0 }

// Options configures the workbook output.
type Options struct {
	SheetName      string
	FilenamePrefix string
}

// Service runs exports against a board client.
type Service struct {
	client BoardClient
	opts   Options
	now    func() time.Time
}

// NewService creates an export Service.
func NewService(client BoardClient, opts Options) *Service {
	return &Service{client: client, opts: opts, now: time.Now}
}

// Run executes the pipeline for req using token for every upstream call.
// Steps run one after another. The workbook is built before any item is
// relabelled, and a failed relabel stops the run without undoing the earlier
// ones.
func (s *Service) Run(ctx context.Context, token string, req *domain.ExportRequest) (*Result, error) {
	res := &Result{ID: uuid.New()}
	logger := log.With().Str("export_id", res.ID.String()).Str("board_id", req.BoardID).Logger()

	items, err := s.client.BoardItems(ctx, token, req.BoardID)
	if err != nil {
		logger.Error().Err(err).Msg("export: fetch items failed")
		return nil, fmt.Errorf("export.Service.Run: fetch items: %w", err)
	}
	res.Fetched = len(items)

	matched := FilterByStatus(items, req.StatusColumnID, req.AllowedStatus)
	res.Matched = len(matched)
	logger.Info().Int("items", res.Fetched).Int("matched", res.Matched).Msg("export: items filtered")

	if len(matched) == 0 {
		return res, nil
	}

	rows := BuildRows(matched, req.Columns)
	long := LongCells(matched, req.Columns)
	for _, lc := range long {
		logger.Warn().Str("item_id", lc.ItemID).Str("column", lc.Column).Int("length", lc.Length).
			Int("limit", excelize.TotalCellChars).Msg("export: cell text truncated")
	}
	res.TruncatedCells = len(long)
	workbook, err := WriteWorkbook(s.opts.SheetName, req.Headers(), rows)
	if err != nil {
		logger.Error().Err(err).Msg("export: workbook build failed")
		return nil, fmt.Errorf("export.Service.Run: %w", err)
	}

	res.MutatedIDs = make([]string, 0, len(matched))
	for _, it := range matched {
		if err := s.client.SetStatusLabel(ctx, token, req.BoardID, it.ID, req.StatusColumnID, req.TargetStatus); err != nil {
			logger.Error().Err(err).Str("item_id", it.ID).Int("already_relabelled", len(res.MutatedIDs)).
				Msg("export: status update failed; earlier updates are kept")
			return nil, fmt.Errorf("export.Service.Run: relabel item %s: %w", it.ID, err)
		}
		res.MutatedIDs = append(res.MutatedIDs, it.ID)
		logger.Debug().Str("item_id", it.ID).Str("status", req.TargetStatus).Msg("export: item relabelled")
	}

	res.Workbook = workbook
	res.Filename = Filename(s.opts.FilenamePrefix, s.now())

	logger.Info().Int("rows", len(rows)).Int("bytes", len(workbook)).Str("filename", res.Filename).Msg("export: completed")

	return res, nil
}
