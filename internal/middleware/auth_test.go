package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/blogman/internal/auth"
	"github.com/hitoshi/blogman/internal/model"
)

// TokenVerifierのモック実装
type mockVerifier struct {
	verifyFunc func(tokenString string) (*auth.Claims, error)
}

func (m *mockVerifier) Verify(tokenString string) (*auth.Claims, error) {
	return m.verifyFunc(tokenString)
}

// 有効なBearerトークンでClaimsがコンテキストに注入されることを検証する
func TestAuthMiddleware_ValidToken(t *testing.T) {
	verifier := &mockVerifier{
		verifyFunc: func(tokenString string) (*auth.Claims, error) {
			if tokenString != "valid-token" {
				t.Errorf("unexpected token: %q", tokenString)
			}
			return &auth.Claims{UserID: "user-1", Role: model.RoleUser}, nil
		},
	}

	var gotClaims *auth.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := ClaimsFromContext(r.Context())
		if err != nil {
			t.Errorf("ClaimsFromContext failed: %v", err)
		}
		gotClaims = claims
		w.WriteHeader(http.StatusOK)
	})

	handler := NewAuthMiddleware(verifier)(next)

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotClaims == nil || gotClaims.UserID != "user-1" {
		t.Errorf("claims = %+v, want UserID user-1", gotClaims)
	}
}

// ヘッダー欠如・不正形式・検証失敗がすべて同一の401レスポンスになることを検証する
func TestAuthMiddleware_UniformRejection(t *testing.T) {
	verifier := &mockVerifier{
		verifyFunc: func(tokenString string) (*auth.Claims, error) {
			return nil, errors.New("token is expired")
		},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not be reached on authentication failure")
	})
	handler := NewAuthMiddleware(verifier)(next)

	tests := []struct {
		name   string
		header string
	}{
		{name: "ヘッダーなし", header: ""},
		{name: "Bearerスキームでない", header: "Basic dXNlcjpwdw=="},
		{name: "トークン部が空", header: "Bearer "},
		{name: "検証に失敗するトークン", header: "Bearer expired-token"},
	}

	var bodies []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/posts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}

			var body ErrorResponseBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode response body: %v", err)
			}
			if body.Code != model.ErrCodeUnauthenticated {
				t.Errorf("code = %q, want %q", body.Code, model.ErrCodeUnauthenticated)
			}
			bodies = append(bodies, rec.Body.String())
		})
	}

	// どの失敗経路でもレスポンスボディが同一であること（失敗理由を漏らさない）
	for i := 1; i < len(bodies); i++ {
		if bodies[i] != bodies[0] {
			t.Errorf("rejection bodies differ:\n%s\n%s", bodies[0], bodies[i])
		}
	}
}

// 大文字小文字を区別しないBearerスキームを検証する
func TestAuthMiddleware_CaseInsensitiveScheme(t *testing.T) {
	verifier := &mockVerifier{
		verifyFunc: func(tokenString string) (*auth.Claims, error) {
			return &auth.Claims{UserID: "user-1"}, nil
		},
	}

	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	})
	handler := NewAuthMiddleware(verifier)(next)

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "bearer some-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !reached {
		t.Error("lowercase bearer scheme should be accepted")
	}
}

// コンテキストにClaimsがない場合のClaimsFromContextの挙動を検証する
func TestClaimsFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if _, err := ClaimsFromContext(req.Context()); err == nil {
		t.Error("expected error for context without claims")
	}
}
