package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/blogman/internal/model"
)

// DefaultTokenTTL はトークン有効期間のデフォルト値。
const DefaultTokenTTL = 24 * time.Hour

// Claims はセッショントークンに埋め込む認証情報を表す。
// サーバー側にセッションレコードは持たず、署名済みトークンの所持のみを
// 認証の根拠とする。検証を通過したClaimsは発行時点で実在したユーザーに
// 対応するが、その後の削除は再確認しない。
type Claims struct {
	UserID string     `json:"user_id"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager はセッショントークンの発行と検証を行う。
// 署名シークレットは起動時に一度注入され、以後変更されない。
// 検証は(トークン, 現在時刻, シークレット)のみに依存する純粋な処理であり、
// 共有可変状態を持たないため並行呼び出しに対して安全。
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager はTokenManagerを生成する。
// secretが空の場合は起動時設定の不備としてエラーを返す。
// 署名なし・弱い署名のトークンを黙って発行してはならない。
func NewTokenManager(secret []byte, ttl time.Duration) (*TokenManager, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("token signing secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock は現在時刻の取得関数を差し替えたTokenManagerを返す。
// テストで固定時刻を注入するために使用する。
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	return &TokenManager{
		secret: m.secret,
		ttl:    m.ttl,
		now:    now,
	}
}

// Issue は検証済みユーザーのIDとロールから署名済みトークンを発行する。
// issuedAtは現在時刻、expiresAtは現在時刻+TTLを設定する。
// 返却値は呼び出し側にとって不透明な文字列として扱う。
func (m *TokenManager) Issue(userID string, role model.Role) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンの構造・署名・有効期限を検証し、Claimsを返す。
// 失敗原因（不正形式、署名不一致、期限切れ）はエラーとして区別して返すが、
// クライアントへの応答ではすべて401に集約すること。
// HS256以外の署名アルゴリズムは拒否する。
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("token verification failed: missing subject")
	}

	return claims, nil
}
