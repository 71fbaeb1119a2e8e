// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hitoshi/blogman/internal/middleware"
	"github.com/hitoshi/blogman/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Login は資格情報を検証しセッショントークンを発行する。
	Login(ctx context.Context, email, password string) (string, error)
}

// UserGetter はプロフィール取得に必要なインターフェース。
// user.Serviceの部分集合として定義する。
type UserGetter interface {
	Get(ctx context.Context, id string) (*model.User, error)
}

// LoginMetricsRecorder はログイン結果のメトリクス記録インターフェース。
// metrics.MetricsCollectorの部分集合として定義する。
type LoginMetricsRecorder interface {
	RecordLoginSuccess()
	RecordLoginFailure()
}

// AuthHandler はログインとプロフィール取得のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	users   UserGetter
	metrics LoginMetricsRecorder
}

// NewAuthHandler はAuthHandlerを生成する。metricsはnilでもよい。
func NewAuthHandler(service AuthServiceInterface, users UserGetter, metrics LoginMetricsRecorder) *AuthHandler {
	return &AuthHandler{
		service: service,
		users:   users,
		metrics: metrics,
	}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse はログイン成功時のレスポンス。
type loginResponse struct {
	Token string `json:"token"`
}

// Login はログインを処理する。
// POST /auth/login
// 成功時は200でトークンを返す。失敗時は原因によらず同一ボディの401を返す。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディを解析できません"))
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordLoginFailure()
		}

		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeInvalidCredentials {
			writeAPIErrorResponse(w, http.StatusUnauthorized, apiErr)
			return
		}
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordLoginSuccess()
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

// Profile は現在のログインユーザー情報を返す。
// GET /auth/profile
// トークンが有効でもユーザーが発行後に削除されている場合は404を返す。
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	user, err := h.users.Get(r.Context(), claims.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}
