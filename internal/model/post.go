// Package model はドメインモデルを定義する。
package model

import "time"

// Post はユーザーが作成した記事を表す。
// AuthorIDは作成時に確定し、以後変更されない。
type Post struct {
	ID        string
	Title     string
	Content   string
	Category  string
	ImageURL  string
	AuthorID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostWithAuthor は著者名を含む記事一覧用のビュー。
type PostWithAuthor struct {
	Post
	AuthorName string
}

// PostUpdate は記事の部分更新を表す。
// nilのフィールドは更新対象外とする。
type PostUpdate struct {
	Title    *string
	Content  *string
	Category *string
	ImageURL *string
}
