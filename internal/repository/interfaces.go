// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/blogman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// List は全ユーザーを取得する。
	List(ctx context.Context) ([]*model.User, error)

	// Create はユーザーを作成する。メールアドレス重複時はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// Update はユーザーを更新する。対象が存在しない場合は何もせずnilユーザーを返す扱いとし、
	// 呼び出し側で存在確認を行うこと。
	Update(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するpostsとnotificationsはCASCADE削除される。
	// 対象が存在しない場合はfalseを返す。
	DeleteByID(ctx context.Context, id string) (bool, error)
}

// PostRepository は記事データの永続化インターフェース。
type PostRepository interface {
	// List は全記事を著者名付きで作成日時の降順に取得する。
	List(ctx context.Context) ([]*model.PostWithAuthor, error)

	// FindByID は指定IDの記事を著者名付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.PostWithAuthor, error)

	// ListByAuthor は指定著者の記事を作成日時の降順に取得する。
	ListByAuthor(ctx context.Context, authorID string) ([]*model.Post, error)

	// Create は記事を作成する。
	Create(ctx context.Context, post *model.Post) error

	// Update は記事を更新する。AuthorIDは変更しない。
	Update(ctx context.Context, post *model.Post) error

	// DeleteByID は指定IDの記事を削除する。対象が存在しない場合はfalseを返す。
	DeleteByID(ctx context.Context, id string) (bool, error)
}

// NotificationRepository は通知データの永続化インターフェース。
type NotificationRepository interface {
	// List は全通知を作成日時の降順に取得する。
	List(ctx context.Context) ([]*model.Notification, error)

	// Create は通知を作成する。
	Create(ctx context.Context, noti *model.Notification) error
}
