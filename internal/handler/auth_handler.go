package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/studytrack/internal/auth"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register はユーザーを作成してアクセストークンを返す。
	Register(ctx context.Context, in auth.RegisterInput) (string, error)
	// Login は資格情報を検証してアクセストークンを返す。
	Login(ctx context.Context, in auth.LoginInput) (string, error)
}

// AuthHandler は登録・ログインのHTTPハンドラー。
type AuthHandler struct {
	responder
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, errCfg ErrorConfig) *AuthHandler {
	return &AuthHandler{responder: responder{errors: errCfg}, service: service}
}

// Register は新規登録を処理する。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if !decodeBody(w, r, &in) {
		return
	}

	token, err := h.service.Register(r.Context(), in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
}

// Login はログインを処理する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if !decodeBody(w, r, &in) {
		return
	}

	token, err := h.service.Login(r.Context(), in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}
