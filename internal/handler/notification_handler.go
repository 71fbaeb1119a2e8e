package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/blogman/internal/model"
)

// NotificationServiceInterface は通知ハンドラーが必要とするサービスインターフェース。
type NotificationServiceInterface interface {
	// List は全通知を新しい順に取得する。
	List(ctx context.Context) ([]*model.Notification, error)
	// Create は通知を作成する。
	Create(ctx context.Context, userID, message string) (*model.Notification, error)
}

// NotificationHandler は通知管理のHTTPハンドラー。
type NotificationHandler struct {
	service NotificationServiceInterface
}

// NewNotificationHandler はNotificationHandlerを生成する。
func NewNotificationHandler(service NotificationServiceInterface) *NotificationHandler {
	return &NotificationHandler{
		service: service,
	}
}

// createNotificationRequest は通知作成リクエストのボディ。
type createNotificationRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// notificationResponse は通知のAPIレスポンス。
type notificationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// toNotificationResponse はmodel.NotificationをnotificationResponseに変換する。
func toNotificationResponse(n *model.Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
	}
}

// ListNotifications は全通知の一覧を返す。
// GET /notifications
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	notis, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]notificationResponse, len(notis))
	for i, n := range notis {
		results[i] = toNotificationResponse(n)
	}

	writeJSON(w, http.StatusOK, results)
}

// CreateNotification は通知作成を処理する。
// POST /notifications
func (h *NotificationHandler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	var req createNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディを解析できません"))
		return
	}

	created, err := h.service.Create(r.Context(), req.UserID, req.Message)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toNotificationResponse(created))
}
