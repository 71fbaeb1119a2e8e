package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/repository"
)

// Service はログインのビジネスロジックを提供する。
// 資格情報の検証に成功した場合のみトークンを発行する。
type Service struct {
	userRepo repository.UserRepository
	hasher   *PasswordHasher
	tokens   *TokenManager
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, hasher *PasswordHasher, tokens *TokenManager) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// Login はメールアドレスとパスワードを検証し、セッショントークンを発行する。
// ユーザー不在とパスワード不一致はクライアントに同一のエラーを返す
// （アカウント列挙対策）。原因の区別はログにのみ記録する。
// 部分的な成功はない。トークンを返すか、一様な拒否を返すかのいずれかである。
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil {
		slog.Info("login rejected: unknown email")
		return "", model.NewInvalidCredentialsError()
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		slog.Info("login rejected: password mismatch",
			slog.String("user_id", user.ID),
		)
		return "", model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("login succeeded",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return token, nil
}
