// Package model はドメインモデルを定義する。
package model

import "time"

// Notification はユーザーへの通知を表す。
type Notification struct {
	ID        string
	UserID    string
	Message   string
	CreatedAt time.Time
}
