package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/blogman/internal/metrics"
	"github.com/hitoshi/blogman/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	HTTPMetrics       middleware.HTTPMetricsRecorder // nilの場合はメトリクス記録なし

	// ヘルスチェック
	HealthChecker HealthChecker

	// メトリクス
	MetricsGatherer prometheus.Gatherer // nilの場合は/metricsを公開しない

	// 認証
	AuthService  AuthServiceInterface
	LoginMetrics LoginMetricsRecorder

	// ユーザー
	UserService UserServiceInterface

	// 記事
	PostService PostServiceInterface
	PostMetrics PostMetricsRecorder

	// 通知
	NotificationService NotificationServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics → (認証ルートのみ) Auth → RateLimit(General)
//
// 認証チェックは所有権チェックより必ず先に実行される。未認証リクエストは
// ミドルウェアで401となり、リソースの存在有無（404/403の区別）を観測できない。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルート共通ミドルウェア
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))

	authHandler := NewAuthHandler(deps.AuthService, deps.UserService, deps.LoginMetrics)
	userHandler := NewUserHandler(deps.UserService)
	postHandler := NewPostHandler(deps.PostService, deps.PostMetrics)
	notiHandler := NewNotificationHandler(deps.NotificationService)

	// --- 認証不要のルート ---

	r.Get("/health", NewHealthHandler(deps.HealthChecker))

	if deps.MetricsGatherer != nil {
		r.Get("/metrics", metrics.Handler(deps.MetricsGatherer).ServeHTTP)
	}

	// ログイン（IP単位のブルートフォース対策レート制限付き）
	if deps.RateLimiter != nil {
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/auth/login", authHandler.Login)
	} else {
		r.Post("/auth/login", authHandler.Login)
	}

	// 記事の閲覧は公開
	r.Get("/posts", postHandler.ListPosts)
	r.Get("/posts/{id}", postHandler.GetPost)
	r.Get("/users/{id}/posts", postHandler.ListUserPosts)

	// ユーザーの閲覧と登録は公開
	r.Get("/users", userHandler.ListUsers)
	r.Post("/users", userHandler.CreateUser)

	// 通知
	r.Get("/notifications", notiHandler.ListNotifications)
	r.Post("/notifications", notiHandler.CreateNotification)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		// プロフィール
		r.Get("/auth/profile", authHandler.Profile)

		// 記事の作成・更新・削除（更新・削除は著者本人のみ）
		r.Post("/posts", postHandler.CreatePost)
		r.Put("/posts/{id}", postHandler.UpdatePost)
		r.Delete("/posts/{id}", postHandler.DeletePost)

		// ユーザーの更新・削除（本人のみ）
		r.Put("/users/{id}", userHandler.UpdateUser)
		r.Delete("/users/{id}", userHandler.DeleteUser)
	})

	return r
}
