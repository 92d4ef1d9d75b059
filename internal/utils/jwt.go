package utils

import (
	"errors"
	"strconv"
	"time"

	"payvault/internal/config"
	"payvault/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "payvault-api"

var (
	ErrNoSigningSecret = errors.New("JWT_SECRET not configured")
	ErrInvalidToken    = errors.New("invalid token")
)

// GenerateTokens issues the access/refresh pair for a user. The access
// token carries the role's permission set so authorization never needs a
// user lookup; the refresh token carries identity and version only and
// cannot authorize requests by itself.
func GenerateTokens(userID uint, email, role string, tokenVersion int) (string, string, error) {
	secret := config.JWTSecret()
	if secret == "" {
		return "", "", ErrNoSigningSecret
	}

	now := time.Now()
	base := func(ttl time.Duration) jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
		}
	}

	accessToken, err := signClaims(&models.UserClaims{
		RegisteredClaims: base(config.AccessTokenTTL()),
		UserID:           userID,
		Email:            email,
		Role:             role,
		Permissions:      models.GetDefaultPermissions(role),
		TokenVersion:     tokenVersion,
	}, secret)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := signClaims(&models.UserClaims{
		RegisteredClaims: base(config.RefreshTokenTTL()),
		UserID:           userID,
		Email:            email,
		Role:             role,
		TokenVersion:     tokenVersion,
	}, secret)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func signClaims(claims *models.UserClaims, secret string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates tokenStr, including issuer and signing method,
// and returns its claims.
func ParseToken(tokenStr string) (*models.UserClaims, error) {
	secret := config.JWTSecret()
	if secret == "" {
		return nil, ErrNoSigningSecret
	}

	token, err := jwt.ParseWithClaims(tokenStr, &models.UserClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*models.UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
