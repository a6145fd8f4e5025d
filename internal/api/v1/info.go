package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// ServiceInfo describes the running service configuration. It never carries
// secrets.
type ServiceInfo struct {
	Service             string `json:"service"             doc:"Service name"`
	Version             string `json:"version"             doc:"Build version"`
	CredentialMode      string `json:"credentialMode"      doc:"Where the upstream token comes from" enum:"request,env"`
	APIVersion          string `json:"apiVersion"          doc:"Upstream API version header"`
	SheetName           string `json:"sheetName"           doc:"Worksheet name of produced workbooks"`
	FilenamePrefix      string `json:"filenamePrefix"      doc:"Prefix of produced workbook filenames"`
	SessionVerification bool   `json:"sessionVerification" doc:"Whether export requests must carry a signed session token"`
}

type GetInfoOutput struct {
	Body *ServiceInfo
}

func RegisterInfoRoutes(api huma.API, info ServiceInfo) {
	huma.Register(api, huma.Operation{
		OperationID: "get-info",
		Method:      http.MethodGet,
		Path:        "/info",
		Summary:     "Get service information",
		Tags:        []string{"Service"},
	}, func(_ context.Context, _ *struct{}) (*GetInfoOutput, error) {
		out := info
		return &GetInfoOutput{Body: &out}, nil
	})
}
