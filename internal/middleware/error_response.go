package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/studytrack/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// errorsはバリデーション違反の一覧、detailは開発環境でのみ付与される内部エラー文字列。
type ErrorResponseBody struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Category string   `json:"category"`
	Errors   []string `json:"errors,omitempty"`
	Detail   string   `json:"detail,omitempty"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeErrorBody(w, statusCode, ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Errors:   apiErr.Errors,
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// detailが空でなければレスポンスに含める。呼び出し側は開発環境でのみ渡すこと。
func WriteInternalServerError(w http.ResponseWriter, detail string) {
	writeErrorBody(w, http.StatusInternalServerError, ErrorResponseBody{
		Code:     model.ErrCodeInternal,
		Message:  "Internal server error",
		Category: "system",
		Detail:   detail,
	})
}

func writeErrorBody(w http.ResponseWriter, statusCode int, body ErrorResponseBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
