package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/studytrack/internal/middleware"
	"github.com/hitoshi/studytrack/internal/model"
)

// maxBodyBytes はリクエストボディの上限。
const maxBodyBytes = 1 << 20

// ErrorConfig はエラーレスポンスの出力設定。
type ErrorConfig struct {
	// ExposeDetail がtrueの場合、500レスポンスに内部エラー文字列をdetailとして含める。
	// APP_ENV=development のときのみ有効にする。
	ExposeDetail bool
}

// responder はハンドラー共通のレスポンス出力を提供する。
type responder struct {
	errors ErrorConfig
}

// writeJSON はステータスコードとJSONボディを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeMessage は {"message": ...} 形式のレスポンスを書き込む。
func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"message": message})
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func (rs responder) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		if statusCode := mapAPIErrorToHTTPStatus(apiErr); statusCode != http.StatusInternalServerError {
			writeAPIErrorResponse(w, statusCode, apiErr)
			return
		}
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	detail := ""
	if rs.errors.ExposeDetail {
		detail = err.Error()
	}
	middleware.WriteInternalServerError(w, detail)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidation, model.ErrCodeInvalidRequest,
		model.ErrCodeConflict, model.ErrCodeInvalidCredentials:
		return http.StatusBadRequest
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// requireUserID は認証済みユーザーIDを返す。
// 取得できない場合は401を書き込みfalseを返す。
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return "", false
	}
	return userID, true
}

// decodeBody はJSONボディをdstにデコードする。
// 失敗時は400 INVALID_REQUESTを書き込みfalseを返す。
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		msg := "Invalid JSON body"
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			msg = "Request body is required"
		case errors.As(err, &maxErr):
			msg = "Request body too large"
		}
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError(msg))
		return false
	}
	return true
}

// idParam はURLパラメータ {id} を返す。
func idParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// notFoundHandler はどのルートにも一致しない場合の404を返す。
func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeAPIErrorResponse(w, http.StatusNotFound, model.NewNotFoundError("Route"))
}

// methodNotAllowedHandler はメソッド不一致時の405を返す。
func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeAPIErrorResponse(w, http.StatusMethodNotAllowed, &model.APIError{
		Code:     model.ErrCodeInvalidRequest,
		Message:  "Method not allowed",
		Category: "validation",
	})
}
