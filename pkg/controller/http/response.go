package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/ctxlog"

	"github.com/defmon-lab/argos/pkg/utils/apperr"
)

// Every API response takes exactly one of two shapes:
//
//	{"status":"ok", ...payload}
//	{"status":"fail", "errorMessage":"..."}
//
// The consuming dashboard dispatches on the status field alone, so the
// two shapes are never mixed and failures are always HTTP 200 with a
// fail envelope rather than a transport-level error.

type okRowsResponse struct {
	Status string `json:"status"`
	Rows   any    `json:"rows"`
}

type okValueResponse struct {
	Status string `json:"status"`
	Value  any    `json:"value"`
}

type okValuesResponse struct {
	Status string `json:"status"`
	Values any    `json:"values"`
}

type failResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		ctxlog.From(ctx).Error("Failed to encode response", "error", err)
	}
}

// respondRows writes an ok envelope with a rows payload. A nil slice is
// rendered as an empty list; zero rows is a valid result.
func respondRows[T any](ctx context.Context, w http.ResponseWriter, rows []T) {
	if rows == nil {
		rows = []T{}
	}
	writeJSON(ctx, w, okRowsResponse{Status: "ok", Rows: rows})
}

// respondValue writes an ok envelope with a scalar payload.
func respondValue(ctx context.Context, w http.ResponseWriter, value any) {
	writeJSON(ctx, w, okValueResponse{Status: "ok", Value: value})
}

// respondValues writes an ok envelope with a named-values payload.
func respondValues(ctx context.Context, w http.ResponseWriter, values any) {
	writeJSON(ctx, w, okValuesResponse{Status: "ok", Values: values})
}

// respondFail logs the full error server-side and writes a fail envelope
// with the summarized message.
func respondFail(ctx context.Context, w http.ResponseWriter, err error) {
	apperr.Handle(ctx, err)
	writeJSON(ctx, w, failResponse{Status: "fail", ErrorMessage: err.Error()})
}
