package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/blogman/internal/model"
)

// PostgresNotificationRepo はPostgreSQLを使用した通知リポジトリ。
type PostgresNotificationRepo struct {
	db *sql.DB
}

// NewPostgresNotificationRepo はPostgresNotificationRepoを生成する。
func NewPostgresNotificationRepo(db *sql.DB) *PostgresNotificationRepo {
	return &PostgresNotificationRepo{db: db}
}

// List は全通知を作成日時の降順に取得する。
func (r *PostgresNotificationRepo) List(ctx context.Context) ([]*model.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, message, created_at
		 FROM notifications ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notis := []*model.Notification{}
	for rows.Next() {
		noti := &model.Notification{}
		if err := rows.Scan(&noti.ID, &noti.UserID, &noti.Message, &noti.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notis = append(notis, noti)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notis, nil
}

// Create は通知を作成する。
func (r *PostgresNotificationRepo) Create(ctx context.Context, noti *model.Notification) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, message, created_at)
		 VALUES ($1, $2, $3, $4)`,
		noti.ID, noti.UserID, noti.Message, noti.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}

// compile-time interface check
var _ NotificationRepository = (*PostgresNotificationRepo)(nil)
