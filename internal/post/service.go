// Package post は記事管理のドメインロジックを提供する。
// 更新・削除は認証済みユーザーが著者本人である場合のみ許可する。
package post

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/blogman/internal/auth"
	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/repository"
)

// CreateInput は記事作成の入力を表す。
// AuthorIDは含めない。著者は常に認証済みClaimsから取得する。
type CreateInput struct {
	Title    string
	Content  string
	Category string
	ImageURL string
}

// ContentSanitizer は記事本文のサニタイズインターフェース。
// security.ContentSanitizerServiceの部分集合として定義する。
type ContentSanitizer interface {
	Sanitize(rawHTML string) string
}

// Service は記事管理のサービス層。
type Service struct {
	postRepo  repository.PostRepository
	sanitizer ContentSanitizer
}

// NewService はServiceを生成する。
func NewService(postRepo repository.PostRepository, sanitizer ContentSanitizer) *Service {
	return &Service{
		postRepo:  postRepo,
		sanitizer: sanitizer,
	}
}

// List は全記事を著者名付きで新しい順に取得する。認証不要。
func (s *Service) List(ctx context.Context) ([]*model.PostWithAuthor, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// Get は指定IDの記事を取得する。見つからない場合はPOST_NOT_FOUNDを返す。認証不要。
func (s *Service) Get(ctx context.Context, id string) (*model.PostWithAuthor, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(id)
	}
	return post, nil
}

// ListByAuthor は指定著者の記事を新しい順に取得する。認証不要。
func (s *Service) ListByAuthor(ctx context.Context, authorID string) ([]*model.Post, error) {
	posts, err := s.postRepo.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts by author: %w", err)
	}
	return posts, nil
}

// Create は新規記事を作成する。著者はClaimsのユーザーIDで確定し、以後変更されない。
// 本文はXSS対策のため保存前にサニタイズする。
func (s *Service) Create(ctx context.Context, claims *auth.Claims, input CreateInput) (*model.Post, error) {
	if claims == nil || claims.UserID == "" {
		return nil, model.NewUnauthenticatedError()
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, model.NewValidationError("titleは必須です")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, model.NewValidationError("contentは必須です")
	}

	now := time.Now()
	newPost := &model.Post{
		ID:        uuid.New().String(),
		Title:     input.Title,
		Content:   s.sanitizer.Sanitize(input.Content),
		Category:  input.Category,
		ImageURL:  input.ImageURL,
		AuthorID:  claims.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.postRepo.Create(ctx, newPost); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	slog.Info("post created",
		slog.String("post_id", newPost.ID),
		slog.String("author_id", newPost.AuthorID),
	)

	return newPost, nil
}

// Update は記事を部分更新する。
// 認証（401）→存在確認（404）→所有権チェック（403）の順で検証してから更新する。
func (s *Service) Update(ctx context.Context, claims *auth.Claims, id string, update model.PostUpdate) (*model.Post, error) {
	if claims == nil || claims.UserID == "" {
		return nil, model.NewUnauthenticatedError()
	}

	existing, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	if existing == nil {
		return nil, model.NewPostNotFoundError(id)
	}

	if err := auth.Authorize(claims, existing.AuthorID); err != nil {
		slog.Warn("post update denied",
			slog.String("post_id", id),
			slog.String("requester_id", claims.UserID),
		)
		return nil, err
	}

	updated := existing.Post
	if update.Title != nil {
		updated.Title = *update.Title
	}
	if update.Content != nil {
		updated.Content = s.sanitizer.Sanitize(*update.Content)
	}
	if update.Category != nil {
		updated.Category = *update.Category
	}
	if update.ImageURL != nil {
		updated.ImageURL = *update.ImageURL
	}
	updated.UpdatedAt = time.Now()

	if err := s.postRepo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	slog.Info("post updated", slog.String("post_id", id))

	return &updated, nil
}

// Delete は記事を削除する。認証（401）→存在確認（404）→所有権チェック（403）の順で検証する。
func (s *Service) Delete(ctx context.Context, claims *auth.Claims, id string) error {
	if claims == nil || claims.UserID == "" {
		return model.NewUnauthenticatedError()
	}

	existing, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find post: %w", err)
	}
	if existing == nil {
		return model.NewPostNotFoundError(id)
	}

	if err := auth.Authorize(claims, existing.AuthorID); err != nil {
		slog.Warn("post delete denied",
			slog.String("post_id", id),
			slog.String("requester_id", claims.UserID),
		)
		return err
	}

	deleted, err := s.postRepo.DeleteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if !deleted {
		return model.NewPostNotFoundError(id)
	}

	slog.Info("post deleted", slog.String("post_id", id))

	return nil
}
