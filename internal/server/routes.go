package server

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/boardexport/internal/api/v1"
)

// ExportPath is the export endpoint.
const ExportPath = "/api/excel_export"

func registerExportRoutes(r chi.Router, handler http.Handler) {
	// The handler answers OPTIONS and 405 itself.
	r.Handle(ExportPath, handler)
}

func registerAPIRoutes(api huma.API, info v1.ServiceInfo) {
	v1.RegisterInfoRoutes(api, info)
}
