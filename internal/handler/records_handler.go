package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/studytrack/internal/records"
)

// RecordsServiceInterface は学習記録集計のインターフェース。
type RecordsServiceInterface interface {
	ComputeFilteredRecords(ctx context.Context, userID string, req records.Request) (*records.Result, error)
}

// RecordsHandler は学習記録集計のHTTPハンドラー。
type RecordsHandler struct {
	responder
	service RecordsServiceInterface
}

// NewRecordsHandler はRecordsHandlerを生成する。
func NewRecordsHandler(service RecordsServiceInterface, errCfg ErrorConfig) *RecordsHandler {
	return &RecordsHandler{responder: responder{errors: errCfg}, service: service}
}

// Filtered はフィルタ条件に一致したセッションの集計と全体集計を返す。
// POST /records/filtered
func (h *RecordsHandler) Filtered(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req records.Request
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.service.ComputeFilteredRecords(r.Context(), userID, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
