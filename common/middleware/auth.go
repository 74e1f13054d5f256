package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken indicates a malformed, expired, or wrongly signed token.
var ErrInvalidToken = errors.New("invalid token")

// InvestigatorKey is the context key for the authenticated investigator name.
const InvestigatorKey = contextKey("investigator")

// Claims carried by casetrace access tokens.
type Claims struct {
	Investigator string   `json:"investigator"`
	Roles        []string `json:"roles"`
	jwt.RegisteredClaims
}

// BearerAuth validates HS256 bearer tokens on every request. When secret is
// empty the middleware is a no-op, so local deployments can run open.
func BearerAuth(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := validateBearer(r.Header.Get("Authorization"), key)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), InvestigatorKey, claims.Investigator)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validateBearer(header string, key []byte) (*Claims, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, prefix), &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return key, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GetInvestigator extracts the authenticated investigator from the context.
// Returns empty string when authentication is disabled or absent.
func GetInvestigator(ctx context.Context) string {
	if name, ok := ctx.Value(InvestigatorKey).(string); ok {
		return name
	}
	return ""
}
