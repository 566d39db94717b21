package utils

import (
	"AssetVault/internal/apperr"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type Claims struct {
	UserId uint64 `json:"id"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the verified caller extracted from a bearer token.
type Identity struct {
	UserID uint64
	Role   string
}

// TokenManager issues and verifies HS256 bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken creates a JWT.
func (m *TokenManager) GenerateToken(userId uint64, role string) (string, error) {
	now := m.now()
	claims := Claims{
		UserId: userId,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// VerifyToken parses and validates a JWT. It never consults the database.
func (m *TokenManager) VerifyToken(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, apperr.New(apperr.Unauthenticated, "missing bearer token")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, apperr.Wrap(apperr.InvalidCredential, "invalid or expired token", err)
	}
	if claims.UserId == 0 {
		return Identity{}, apperr.New(apperr.InvalidCredential, "token carries no user id")
	}
	return Identity{UserID: claims.UserId, Role: claims.Role}, nil
}
