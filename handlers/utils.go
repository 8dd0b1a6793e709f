package handlers

import (
	"time"

	"joygiver-server/config"
	"joygiver-server/database"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var db *database.DB

// InitializeHandlers wires the shared database handle into the
// handlers package.
func InitializeHandlers(d *database.DB) {
	db = d
}

// Claims represents the JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
)

// generateTokenPair issues an access and a refresh token for a user
func generateTokenPair(userID, email, role string) (access string, refresh string, err error) {
	access, err = generateToken(userID, email, role, tokenTypeAccess, accessTokenTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = generateToken(userID, email, role, tokenTypeRefresh, refreshTokenTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func generateToken(userID, email, role, tokenType string, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

func parseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// generateUUID generates a new UUID string
func generateUUID() string {
	return uuid.New().String()
}
