// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/blogman/internal/auth"
	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/repository"
)

// RegisterInput はユーザー登録の入力を表す。
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Service はユーザー管理のサービス層。
// 登録・更新時のパスワードハッシュ化と、更新・削除時の本人確認を提供する。
type Service struct {
	userRepo repository.UserRepository
	hasher   *auth.PasswordHasher
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, hasher *auth.PasswordHasher) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// Register は新規ユーザーを作成する。
// パスワードはbcryptでハッシュ化してから永続化し、平文は保持しない。
// ロールは"ADMIN"以外すべて"USER"に正規化する。
func (s *Service) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, model.NewValidationError("nameは必須です")
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, model.NewValidationError("emailは必須です")
	}
	if input.Password == "" {
		return nil, model.NewValidationError("passwordは必須です")
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		slog.Error("password hashing failed", slog.String("error", err.Error()))
		return nil, model.NewHashingFailureError()
	}

	now := time.Now()
	newUser := &model.User{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         model.NormalizeRole(input.Role),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewEmailTakenError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered",
		slog.String("user_id", newUser.ID),
		slog.String("role", string(newUser.Role)),
	)

	return newUser, nil
}

// List は全ユーザーを取得する。
func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Get は指定IDのユーザーを取得する。見つからない場合はUSER_NOT_FOUNDを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// Update はユーザー情報を部分更新する。
// 本人のみ自分のレコードを更新できる。存在確認を所有権チェックより先に行い、
// 不在の場合は403ではなく404を返す。
// パスワードが指定された場合は再ハッシュしてから保存する。
func (s *Service) Update(ctx context.Context, claims *auth.Claims, id string, update model.UserUpdate) (*model.User, error) {
	if claims == nil || claims.UserID == "" {
		return nil, model.NewUnauthenticatedError()
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	if err := auth.Authorize(claims, user.ID); err != nil {
		return nil, err
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Role != nil {
		user.Role = model.NormalizeRole(*update.Role)
	}
	if update.Password != nil {
		hash, err := s.hasher.Hash(*update.Password)
		if err != nil {
			slog.Error("password hashing failed", slog.String("error", err.Error()))
			return nil, model.NewHashingFailureError()
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewEmailTakenError()
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	slog.Info("user updated", slog.String("user_id", user.ID))

	return user, nil
}

// Delete はユーザーを削除する。本人のみ自分のアカウントを削除できる。
// 関連するpostsとnotificationsはCASCADE削除される。
func (s *Service) Delete(ctx context.Context, claims *auth.Claims, id string) error {
	if claims == nil || claims.UserID == "" {
		return model.NewUnauthenticatedError()
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	if err := auth.Authorize(claims, user.ID); err != nil {
		return err
	}

	deleted, err := s.userRepo.DeleteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if !deleted {
		return model.NewUserNotFoundError()
	}

	slog.Info("user deleted", slog.String("user_id", id))

	return nil
}
