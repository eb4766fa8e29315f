package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var errMissingBearer = errors.New("authorization header must be Bearer {token}")

// AuthMiddleware validates HS256 bearer tokens. The token subject is the
// ledger owner and is stored in the request context for the handlers.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (any, error) { return []byte(jwtSecret), nil }

	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		raw, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			logger.Warn("Rejected request without bearer token")
			unauthorized(c, err.Error())
			return
		}

		claims := &jwt.RegisteredClaims{}
		if _, err := parser.ParseWithClaims(raw, claims, keyFunc); err != nil {
			logger.Warn("Rejected invalid token", slog.String("error", err.Error()))
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				unauthorized(c, "token has expired")
			case errors.Is(err, jwt.ErrTokenNotValidYet):
				unauthorized(c, "token not valid yet")
			default:
				unauthorized(c, "invalid token")
			}
			return
		}
		if claims.Subject == "" {
			logger.Warn("Rejected token without subject")
			unauthorized(c, "invalid token claims")
			return
		}

		ctx := context.WithValue(c.Request.Context(), userIDKey, claims.Subject)
		c.Request = c.Request.WithContext(WithLogger(ctx, logger.With(slog.String("user_id", claims.Subject))))
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", errMissingBearer
	}
	return strings.TrimSpace(token), nil
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "kind": "UNAUTHORIZED"})
}

// IssueToken signs an HS256 token for userID that AuthMiddleware accepts.
func IssueToken(jwtSecret, issuer, userID string, ttl time.Duration, now time.Time) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
}
