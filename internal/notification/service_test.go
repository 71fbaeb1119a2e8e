package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/blogman/internal/model"
)

// NotificationRepositoryのモック実装
type mockNotiRepo struct {
	listFunc   func(ctx context.Context) ([]*model.Notification, error)
	createFunc func(ctx context.Context, noti *model.Notification) error
}

func (m *mockNotiRepo) List(ctx context.Context) ([]*model.Notification, error) {
	return m.listFunc(ctx)
}

func (m *mockNotiRepo) Create(ctx context.Context, noti *model.Notification) error {
	return m.createFunc(ctx, noti)
}

// 宛先存在確認にのみ使用するUserRepositoryのモック
type mockUserRepo struct {
	findByIDFunc func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *model.User) error {
	return nil
}

func (m *mockUserRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	return false, nil
}

// 通知作成の成功パスを検証する
func TestService_Create(t *testing.T) {
	var created *model.Notification
	notiRepo := &mockNotiRepo{
		createFunc: func(ctx context.Context, noti *model.Notification) error {
			created = noti
			return nil
		},
	}
	userRepo := &mockUserRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id}, nil
		},
	}
	service := NewService(notiRepo, userRepo)

	noti, err := service.Create(context.Background(), "user-1", "新着コメントがあります")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created == nil {
		t.Fatal("repository Create was not called")
	}
	if noti.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", noti.UserID, "user-1")
	}
	if noti.Message != "新着コメントがあります" {
		t.Errorf("Message = %q", noti.Message)
	}
	if noti.ID == "" {
		t.Error("expected generated notification ID")
	}
}

// 宛先ユーザーが存在しない場合にUSER_NOT_FOUNDが返ることを検証する
func TestService_Create_UnknownUser(t *testing.T) {
	notiRepo := &mockNotiRepo{
		createFunc: func(ctx context.Context, noti *model.Notification) error {
			t.Error("Create must not be called for an unknown user")
			return nil
		},
	}
	userRepo := &mockUserRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
			return nil, nil
		},
	}
	service := NewService(notiRepo, userRepo)

	_, err := service.Create(context.Background(), "missing-user", "message")
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeUserNotFound)
	}
}

// 入力不備でバリデーションエラーが返ることを検証する
func TestService_Create_Validation(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		message string
	}{
		{name: "userId欠落", userID: "", message: "msg"},
		{name: "message欠落", userID: "user-1", message: ""},
		{name: "空白のみのmessage", userID: "user-1", message: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewService(&mockNotiRepo{}, &mockUserRepo{})

			_, err := service.Create(context.Background(), tt.userID, tt.message)
			if err == nil {
				t.Fatal("expected validation error")
			}

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %T", err)
			}
			if apiErr.Code != model.ErrCodeValidation {
				t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeValidation)
			}
		})
	}
}
