package repository

import (
	"errors"
	"fmt"
	"testing"
)

// コンストラクターが有効なリポジトリを返すことを検証する。
// SQLの実行はDBが必要なため、結合テスト環境でのみ行う。
func TestConstructors(t *testing.T) {
	if NewPostgresUserRepo(nil) == nil {
		t.Error("NewPostgresUserRepo returned nil")
	}
	if NewPostgresPostRepo(nil) == nil {
		t.Error("NewPostgresPostRepo returned nil")
	}
	if NewPostgresNotificationRepo(nil) == nil {
		t.Error("NewPostgresNotificationRepo returned nil")
	}
}

// ErrDuplicateEmailがラップ越しにerrors.Isで判定できることを検証する
func TestErrDuplicateEmail_Identity(t *testing.T) {
	wrapped := fmt.Errorf("failed to create user: %w", ErrDuplicateEmail)

	if !errors.Is(wrapped, ErrDuplicateEmail) {
		t.Error("errors.Is should match wrapped ErrDuplicateEmail")
	}
}
