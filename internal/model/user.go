// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの権限ロールを表す。
type Role string

const (
	// RoleUser は一般ユーザーを示す。
	RoleUser Role = "USER"
	// RoleAdmin は管理者ユーザーを示す。
	RoleAdmin Role = "ADMIN"
)

// NormalizeRole は入力文字列をRoleに正規化する。
// "ADMIN"以外の値はすべてRoleUserとして扱う。
func NormalizeRole(s string) Role {
	if s == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptダイジェストであり、APIレスポンスには含めない。
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserUpdate はユーザーの部分更新を表す。
// nilのフィールドは更新対象外とする。
// Passwordは平文で受け取り、サービス層でハッシュ化してから永続化する。
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
}
