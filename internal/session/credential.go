package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
)

// ParseCredential はバックエンドのトークンから role / user id / exp を読む。
// 署名はバックエンドが検証するのでここでは見ない。JWTでなければ fallback を使う。
func ParseCredential(token string, fallbackRole model.Role, fallbackUserID string) model.Credential {
	cred := model.Credential{Token: token, Role: fallbackRole, UserID: fallbackUserID}
	if strings.Count(token, ".") != 2 {
		return cred
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return cred
	}

	if exp, ok := claims["exp"].(float64); ok && exp > 0 {
		cred.ExpiresAt = time.Unix(int64(exp), 0)
	}
	if role := stringClaim(claims, "role"); role != "" {
		cred.Role = model.Role(role)
	}
	if cred.UserID == "" {
		for _, key := range []string{"sub", "id", "userId", "_id"} {
			if id := stringClaim(claims, key); id != "" {
				cred.UserID = id
				break
			}
		}
	}
	return cred
}

func stringClaim(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}
