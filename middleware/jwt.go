package middleware

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"catering/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ctxUserID    = "userID"
	ctxUserEmail = "userEmail"
)

// Claims tokens issued by the identity provider: sub carries the user id
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

var (
	hmacSecret []byte
	rsaKey     *rsa.PublicKey
	issuer     string
)

// InitJWT configures token verification. A public key file selects RS256,
// otherwise tokens are HS256 signed with the shared secret.
func InitJWT(cfg *config.Config) error {
	hmacSecret, rsaKey = nil, nil
	issuer = cfg.Auth.Issuer

	if cfg.Auth.PublicKeyFile != "" {
		pem, err := os.ReadFile(cfg.Auth.PublicKeyFile)
		if err != nil {
			return fmt.Errorf("read public key: %w", err)
		}
		key, err := jwt.ParseRSAPublicKeyFromPEM(pem)
		if err != nil {
			return fmt.Errorf("parse public key: %w", err)
		}
		rsaKey = key
		return nil
	}

	if cfg.Auth.Secret == "" {
		return errors.New("auth.secret or auth.public_key_file is required")
	}
	hmacSecret = []byte(cfg.Auth.Secret)
	return nil
}

// GenerateToken signs an HS256 token, used by the token command in development
func GenerateToken(userID, email string, ttl time.Duration) (string, error) {
	if hmacSecret == nil {
		return "", errors.New("token signing needs auth.secret")
	}
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(hmacSecret)
}

// ParseToken verifies signature, expiry and issuer
func ParseToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("empty token")
	}

	opts := []jwt.ParserOption{}
	if rsaKey != nil {
		opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	} else {
		opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if rsaKey != nil {
			return rsaKey, nil
		}
		if hmacSecret == nil {
			return nil, errors.New("token verification not configured")
		}
		return hmacSecret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// JWTAuth rejects requests without a valid bearer token and stores the caller identity
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			unauthorized(c)
			return
		}

		claims, err := ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			unauthorized(c)
			return
		}

		c.Set(ctxUserID, claims.Subject)
		c.Set(ctxUserEmail, claims.Email)
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   "Unauthorized",
	})
}

// GetCurrentUserID the authenticated user id, empty when absent
func GetCurrentUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// GetCurrentUserEmail the authenticated user email, may be empty
func GetCurrentUserEmail(c *gin.Context) string {
	return c.GetString(ctxUserEmail)
}

// SetCurrentUser stores an identity on the context
func SetCurrentUser(c *gin.Context, userID, email string) {
	c.Set(ctxUserID, userID)
	c.Set(ctxUserEmail, email)
}
