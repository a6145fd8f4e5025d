package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/boardexport/internal/domain"
	"github.com/gosuda/boardexport/internal/export"
	"github.com/gosuda/boardexport/internal/server/middleware"
)

// Response messages of the export endpoint.
const (
	MsgNoRecords         = "No records to export."
	MsgExportFailed      = "Excel export failed"
	MsgMethodNotAllowed  = "Method Not Allowed"
	MsgCredentialMissing = "server credential is not configured"
)

// HeaderExportID carries the per-run export ID for log correlation.
const HeaderExportID = "X-Export-ID"

// ExportHandler serves POST /api/excel_export. It is a plain http.Handler
// rather than a huma operation because the endpoint answers with
// {"error": ...} bodies instead of problem documents.
type ExportHandler struct {
	exporter Exporter
	creds    Credentials
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(exporter Exporter, creds Credentials) *ExportHandler {
	return &ExportHandler{exporter: exporter, creds: creds}
}

func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		WriteError(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
		return
	}

	logger := log.With().Str("request_id", chimw.GetReqID(r.Context())).Logger()
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		logger = logger.With().Str("account_id", sess.AccountID).Str("user_id", sess.UserID).Logger()
	}

	req, err := decodeExportRequest(r.Body, h.creds.RequiresRequestToken())
	if err != nil {
		logger.Debug().Err(err).Msg("export: rejected request")
		WriteError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	token, err := h.creds.Token(req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			WriteError(w, http.StatusBadRequest, validationMessage(err))
		case errors.Is(err, domain.ErrMissingCredential):
			logger.Error().Err(err).Str("credential_mode", h.creds.Mode()).Msg("export: no upstream credential")
			WriteError(w, http.StatusInternalServerError, MsgCredentialMissing)
		default:
			logger.Error().Err(err).Msg("export: credential lookup failed")
			WriteError(w, http.StatusInternalServerError, MsgExportFailed)
		}
		return
	}

	res, err := h.exporter.Run(r.Context(), token, req)
	if err != nil {
		logger.Error().Err(err).Str("board_id", req.BoardID).Msg("export: run failed")
		WriteError(w, http.StatusInternalServerError, MsgExportFailed)
		return
	}

	w.Header().Set(HeaderExportID, res.ID.String())

	if res.Empty() {
		writeJSON(w, http.StatusOK, map[string]string{"message": MsgNoRecords})
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Workbook)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Workbook); err != nil {
		logger.Warn().Err(err).Str("export_id", res.ID.String()).Msg("export: writing response failed")
	}
}

// WriteError writes {"error": msg} with the given status.
func WriteError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("v1: encoding response failed")
	}
}
