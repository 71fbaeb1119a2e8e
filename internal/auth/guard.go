package auth

import "github.com/hitoshi/blogman/internal/model"

// Authorize は認証済みユーザーが対象リソースの所有者であるかを判定する。
// claims.UserIDとownerIDが一致する場合のみnilを返し、それ以外はFORBIDDENを返す。
// 必ずトークン検証を通過したClaimsに対してのみ呼び出すこと。
// 未認証リクエストが所有権チェックに到達してはならない（認証→所有権の順序不変条件）。
// リソースの存在確認は呼び出し側が所有権チェックより先に行い、
// 不在のリソースには403ではなく404を返すこと。
func Authorize(claims *Claims, ownerID string) error {
	if claims == nil || claims.UserID == "" || claims.UserID != ownerID {
		return model.NewForbiddenError()
	}
	return nil
}
