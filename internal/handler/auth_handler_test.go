package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/blogman/internal/auth"
	"github.com/hitoshi/blogman/internal/middleware"
	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/user"
)

// AuthServiceInterfaceのモック実装
type mockAuthService struct {
	loginFunc func(ctx context.Context, email, password string) (string, error)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, error) {
	return m.loginFunc(ctx, email, password)
}

// UserServiceInterfaceのモック実装
type mockUserService struct {
	registerFunc func(ctx context.Context, input user.RegisterInput) (*model.User, error)
	listFunc     func(ctx context.Context) ([]*model.User, error)
	getFunc      func(ctx context.Context, id string) (*model.User, error)
	updateFunc   func(ctx context.Context, claims *auth.Claims, id string, update model.UserUpdate) (*model.User, error)
	deleteFunc   func(ctx context.Context, claims *auth.Claims, id string) error
}

func (m *mockUserService) Register(ctx context.Context, input user.RegisterInput) (*model.User, error) {
	return m.registerFunc(ctx, input)
}

func (m *mockUserService) List(ctx context.Context) ([]*model.User, error) {
	return m.listFunc(ctx)
}

func (m *mockUserService) Get(ctx context.Context, id string) (*model.User, error) {
	return m.getFunc(ctx, id)
}

func (m *mockUserService) Update(ctx context.Context, claims *auth.Claims, id string, update model.UserUpdate) (*model.User, error) {
	return m.updateFunc(ctx, claims, id, update)
}

func (m *mockUserService) Delete(ctx context.Context, claims *auth.Claims, id string) error {
	return m.deleteFunc(ctx, claims, id)
}

// ログイン結果メトリクスのモック
type mockLoginMetrics struct {
	successes int
	failures  int
}

func (m *mockLoginMetrics) RecordLoginSuccess() { m.successes++ }
func (m *mockLoginMetrics) RecordLoginFailure() { m.failures++ }

// ログイン成功時に200とトークンが返ることを検証する
func TestAuthHandler_Login_Success(t *testing.T) {
	service := &mockAuthService{
		loginFunc: func(ctx context.Context, email, password string) (string, error) {
			if email != "taro@example.com" || password != "secret" {
				t.Errorf("unexpected credentials: %q / %q", email, password)
			}
			return "issued-token", nil
		},
	}
	metrics := &mockLoginMetrics{}
	handler := NewAuthHandler(service, &mockUserService{}, metrics)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"taro@example.com","password":"secret"}`))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d\nbody: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var body loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Token != "issued-token" {
		t.Errorf("token = %q, want %q", body.Token, "issued-token")
	}
	if metrics.successes != 1 || metrics.failures != 0 {
		t.Errorf("metrics = %d successes / %d failures, want 1 / 0", metrics.successes, metrics.failures)
	}
}

// 資格情報エラーが401と統一エラーボディになることを検証する
func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	service := &mockAuthService{
		loginFunc: func(ctx context.Context, email, password string) (string, error) {
			return "", model.NewInvalidCredentialsError()
		},
	}
	metrics := &mockLoginMetrics{}
	handler := NewAuthHandler(service, &mockUserService{}, metrics)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"any@example.com","password":"wrong"}`))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	var body apiErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInvalidCredentials)
	}
	if metrics.failures != 1 {
		t.Errorf("failures = %d, want 1", metrics.failures)
	}
}

// 解析できないボディは400になることを検証する
func TestAuthHandler_Login_MalformedBody(t *testing.T) {
	service := &mockAuthService{
		loginFunc: func(ctx context.Context, email, password string) (string, error) {
			t.Error("Login must not be called for a malformed body")
			return "", nil
		},
	}
	handler := NewAuthHandler(service, &mockUserService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// サービス層の想定外エラーが一般的な500に変換されることを検証する
func TestAuthHandler_Login_InternalError(t *testing.T) {
	service := &mockAuthService{
		loginFunc: func(ctx context.Context, email, password string) (string, error) {
			return "", context.DeadlineExceeded
		},
	}
	handler := NewAuthHandler(service, &mockUserService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"a@example.com","password":"pw"}`))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	// 内部エラーの詳細がレスポンスに漏れていないこと
	if strings.Contains(rec.Body.String(), "deadline") {
		t.Error("internal error details must not leak to the client")
	}
}

// 認証済みプロフィール取得を検証する
func TestAuthHandler_Profile(t *testing.T) {
	users := &mockUserService{
		getFunc: func(ctx context.Context, id string) (*model.User, error) {
			if id != "user-1" {
				t.Errorf("unexpected user lookup: %q", id)
			}
			return &model.User{ID: "user-1", Name: "山田太郎", Email: "taro@example.com", Role: model.RoleUser}, nil
		},
	}
	handler := NewAuthHandler(&mockAuthService{}, users, nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	req = req.WithContext(middleware.ContextWithClaims(req.Context(), &auth.Claims{UserID: "user-1"}))
	rec := httptest.NewRecorder()

	handler.Profile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.ID != "user-1" {
		t.Errorf("ID = %q, want user-1", body.ID)
	}
	// パスワードハッシュがレスポンスに含まれないこと
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response must not contain password fields")
	}
}

// トークンは有効だがユーザーが削除済みの場合に404が返ることを検証する
func TestAuthHandler_Profile_DeletedUser(t *testing.T) {
	users := &mockUserService{
		getFunc: func(ctx context.Context, id string) (*model.User, error) {
			return nil, model.NewUserNotFoundError()
		},
	}
	handler := NewAuthHandler(&mockAuthService{}, users, nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	req = req.WithContext(middleware.ContextWithClaims(req.Context(), &auth.Claims{UserID: "deleted-user"}))
	rec := httptest.NewRecorder()

	handler.Profile(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
