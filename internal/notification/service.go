// Package notification は通知管理のドメインロジックを提供する。
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/repository"
)

// Service は通知管理のサービス層。
type Service struct {
	notiRepo repository.NotificationRepository
	userRepo repository.UserRepository
}

// NewService はServiceを生成する。
func NewService(notiRepo repository.NotificationRepository, userRepo repository.UserRepository) *Service {
	return &Service{
		notiRepo: notiRepo,
		userRepo: userRepo,
	}
}

// List は全通知を新しい順に取得する。
func (s *Service) List(ctx context.Context) ([]*model.Notification, error) {
	notis, err := s.notiRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notis, nil
}

// Create は通知を作成する。宛先ユーザーが存在しない場合はUSER_NOT_FOUNDを返す。
func (s *Service) Create(ctx context.Context, userID, message string) (*model.Notification, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, model.NewValidationError("userIdは必須です")
	}
	if strings.TrimSpace(message) == "" {
		return nil, model.NewValidationError("messageは必須です")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	noti := &model.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Message:   message,
		CreatedAt: time.Now(),
	}

	if err := s.notiRepo.Create(ctx, noti); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	slog.Info("notification created",
		slog.String("notification_id", noti.ID),
		slog.String("user_id", userID),
	)

	return noti, nil
}
