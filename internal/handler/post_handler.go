package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/blogman/internal/auth"
	"github.com/hitoshi/blogman/internal/middleware"
	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/post"
)

// PostServiceInterface は記事ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	// List は全記事を著者名付きで新しい順に取得する。
	List(ctx context.Context) ([]*model.PostWithAuthor, error)
	// Get は指定IDの記事を取得する。
	Get(ctx context.Context, id string) (*model.PostWithAuthor, error)
	// ListByAuthor は指定著者の記事を新しい順に取得する。
	ListByAuthor(ctx context.Context, authorID string) ([]*model.Post, error)
	// Create は新規記事を作成する。著者はClaimsから確定する。
	Create(ctx context.Context, claims *auth.Claims, input post.CreateInput) (*model.Post, error)
	// Update は記事を部分更新する。存在確認→所有権チェックの順で検証する。
	Update(ctx context.Context, claims *auth.Claims, id string, update model.PostUpdate) (*model.Post, error)
	// Delete は記事を削除する。存在確認→所有権チェックの順で検証する。
	Delete(ctx context.Context, claims *auth.Claims, id string) error
}

// PostMetricsRecorder は記事作成のメトリクス記録インターフェース。
type PostMetricsRecorder interface {
	RecordPostCreated()
}

// PostHandler は記事管理のHTTPハンドラー。
type PostHandler struct {
	service PostServiceInterface
	metrics PostMetricsRecorder
}

// NewPostHandler はPostHandlerを生成する。metricsはnilでもよい。
func NewPostHandler(service PostServiceInterface, metrics PostMetricsRecorder) *PostHandler {
	return &PostHandler{
		service: service,
		metrics: metrics,
	}
}

// createPostRequest は記事作成リクエストのボディ。
type createPostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	ImageURL string `json:"image_url"`
}

// updatePostRequest は記事更新リクエストのボディ。nilフィールドは更新しない。
type updatePostRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
	ImageURL *string `json:"image_url"`
}

// postResponse は記事のAPIレスポンス。
type postResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	ImageURL  string    `json:"image_url"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// postWithAuthorResponse は著者名付き記事一覧のAPIレスポンス。
type postWithAuthorResponse struct {
	postResponse
	AuthorName string `json:"author_name"`
}

// postDetailResponse は記事詳細のAPIレスポンス。
// 本文は段落ごとに分割した配列で返す（フロントエンドの複数行表示用）。
type postDetailResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    []string  `json:"content"`
	Category   string    `json:"category"`
	ImageURL   string    `json:"image_url"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// toPostResponse はmodel.PostをpostResponseに変換する。
func toPostResponse(p *model.Post) postResponse {
	return postResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Category:  p.Category,
		ImageURL:  p.ImageURL,
		AuthorID:  p.AuthorID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// splitParagraphs は本文を改行で分割し、空行を除いた段落の配列を返す。
func splitParagraphs(content string) []string {
	paragraphs := []string{}
	for _, p := range strings.Split(content, "\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// ListPosts は全記事の一覧を返す。認証不要。
// GET /posts
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]postWithAuthorResponse, len(posts))
	for i, p := range posts {
		results[i] = postWithAuthorResponse{
			postResponse: toPostResponse(&p.Post),
			AuthorName:   p.AuthorName,
		}
	}

	writeJSON(w, http.StatusOK, results)
}

// GetPost は記事詳細を返す。認証不要。
// GET /posts/{id}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, postDetailResponse{
		ID:         p.ID,
		Title:      p.Title,
		Content:    splitParagraphs(p.Content),
		Category:   p.Category,
		ImageURL:   p.ImageURL,
		AuthorName: p.AuthorName,
		CreatedAt:  p.CreatedAt,
	})
}

// ListUserPosts は指定ユーザーの記事一覧を返す。認証不要。
// GET /users/{id}/posts
func (h *PostHandler) ListUserPosts(w http.ResponseWriter, r *http.Request) {
	authorID := chi.URLParam(r, "id")

	posts, err := h.service.ListByAuthor(r.Context(), authorID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]postResponse, len(posts))
	for i, p := range posts {
		results[i] = toPostResponse(p)
	}

	writeJSON(w, http.StatusOK, results)
}

// CreatePost は記事作成を処理する。要認証。
// POST /posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディを解析できません"))
		return
	}

	created, err := h.service.Create(r.Context(), claims, post.CreateInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordPostCreated()
	}

	writeJSON(w, http.StatusCreated, toPostResponse(created))
}

// UpdatePost は記事更新を処理する。要認証。著者本人のみ更新できる。
// PUT /posts/{id}
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	id := chi.URLParam(r, "id")

	var req updatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディを解析できません"))
		return
	}

	updated, err := h.service.Update(r.Context(), claims, id, model.PostUpdate{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPostResponse(updated))
}

// DeletePost は記事削除を処理する。要認証。著者本人のみ削除できる。
// DELETE /posts/{id}
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), claims, id); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "記事を削除しました。"})
}

// --- 共通レスポンスヘルパー ---

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層のエラーをHTTPレスポンスに変換する。
// APIError以外のエラーは詳細をログに残し、クライアントには一般的な500を返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     model.ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はエラーコードをHTTPステータスコードに対応付ける。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidCredentials, model.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodePostNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeValidation:
		return http.StatusBadRequest
	case model.ErrCodeEmailTaken:
		return http.StatusConflict
	case model.ErrCodeHashingFailure:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
