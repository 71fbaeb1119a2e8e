package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/blogman/internal/model"
)

// UserRepositoryのモック実装
type mockUserRepo struct {
	findByIDFunc    func(ctx context.Context, id string) (*model.User, error)
	findByEmailFunc func(ctx context.Context, email string) (*model.User, error)
	listFunc        func(ctx context.Context) ([]*model.User, error)
	createFunc      func(ctx context.Context, user *model.User) error
	updateFunc      func(ctx context.Context, user *model.User) error
	deleteByIDFunc  func(ctx context.Context, id string) (bool, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.findByEmailFunc(ctx, email)
}

func (m *mockUserRepo) List(ctx context.Context) ([]*model.User, error) {
	return m.listFunc(ctx)
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return m.createFunc(ctx, user)
}

func (m *mockUserRepo) Update(ctx context.Context, user *model.User) error {
	return m.updateFunc(ctx, user)
}

func (m *mockUserRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	return m.deleteByIDFunc(ctx, id)
}

func newTestService(t *testing.T, repo *mockUserRepo) (*Service, *TokenManager) {
	t.Helper()

	hasher := NewPasswordHasher(4)
	tokens, err := NewTokenManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}
	return NewService(repo, hasher, tokens), tokens
}

// 正しい資格情報でログインするとClaimsの一致する有効なトークンが返ることを検証する
func TestService_Login_Success(t *testing.T) {
	hasher := NewPasswordHasher(4)
	digest, err := hasher.Hash("secret-password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	storedUser := &model.User{
		ID:           "user-1",
		Name:         "山田太郎",
		Email:        "taro@example.com",
		PasswordHash: digest,
		Role:         model.RoleUser,
	}

	repo := &mockUserRepo{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			if email != "taro@example.com" {
				t.Errorf("unexpected email lookup: %q", email)
			}
			return storedUser, nil
		},
	}

	service, tokens := newTestService(t, repo)

	token, err := service.Login(context.Background(), "taro@example.com", "secret-password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	claims, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("issued token should verify: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-1")
	}
	if claims.Role != model.RoleUser {
		t.Errorf("Role = %q, want %q", claims.Role, model.RoleUser)
	}
}

// 未知のメールとパスワード不一致で同一のエラーが返ることを検証する（アカウント列挙対策）
func TestService_Login_UniformRejection(t *testing.T) {
	hasher := NewPasswordHasher(4)
	digest, err := hasher.Hash("real-password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	storedUser := &model.User{
		ID:           "user-1",
		Email:        "known@example.com",
		PasswordHash: digest,
		Role:         model.RoleUser,
	}

	repo := &mockUserRepo{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			if email == "known@example.com" {
				return storedUser, nil
			}
			return nil, nil
		},
	}

	service, _ := newTestService(t, repo)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "未知のメールアドレス", email: "unknown@example.com", password: "real-password"},
		{name: "パスワード不一致", email: "known@example.com", password: "wrong-password"},
	}

	var codes []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := service.Login(context.Background(), tt.email, tt.password)
			if err == nil {
				t.Fatal("expected login to fail")
			}
			if token != "" {
				t.Error("no token should be issued on failure")
			}

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %T", err)
			}
			if apiErr.Code != model.ErrCodeInvalidCredentials {
				t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeInvalidCredentials)
			}
			codes = append(codes, apiErr.Code)
		})
	}

	// どちらの失敗理由でも外部に見えるエラーは同一であること
	if len(codes) == 2 && codes[0] != codes[1] {
		t.Errorf("rejection codes differ: %q vs %q", codes[0], codes[1])
	}
}

// リポジトリのエラーが資格情報エラーに変換されず伝播することを検証する
func TestService_Login_RepositoryError(t *testing.T) {
	repoErr := errors.New("connection refused")

	repo := &mockUserRepo{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return nil, repoErr
		},
	}

	service, _ := newTestService(t, repo)

	_, err := service.Login(context.Background(), "any@example.com", "any")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, repoErr) {
		t.Errorf("expected wrapped repository error, got: %v", err)
	}

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		t.Error("infrastructure failure must not be reported as invalid credentials")
	}
}
