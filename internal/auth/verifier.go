// Package auth verifies the bearer tokens issued by the account service
// and resolves them into the caller identity.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"saga-server/internal/models"
)

var (
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenInvalid   = errors.New("token is invalid")
)

// Claims is the saga token payload.
type Claims struct {
	UserID               string `json:"user_id"`
	DisplayName          string `json:"display_name"`
	Gender               string `json:"gender"`
	IsPremium            bool   `json:"is_premium"`
	jwt.RegisteredClaims        // Issuer, Subject, ExpiresAt, IssuedAt, ID
}

// JWTVerifier validates HMAC-signed tokens.
type JWTVerifier struct {
	jwtSecret string
	logger    *zap.Logger
}

// NewJWTVerifier creates a verifier. A nil logger falls back to Noop.
func NewJWTVerifier(jwtSecret string, logger *zap.Logger) (*JWTVerifier, error) {
	if jwtSecret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JWTVerifier{
		jwtSecret: jwtSecret,
		logger:    logger.Named("JWTVerifier"),
	}, nil
}

// VerifyToken checks the signature and validity and resolves the caller.
func (v *JWTVerifier) VerifyToken(ctx context.Context, tokenString string) (*models.User, error) {
	log := v.logger.With(zap.String("token_snippet", tokenSnippet(tokenString)))
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			log.Warn("Unexpected signing method", zap.Any("alg", token.Header["alg"]))
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.jwtSecret), nil
	})
	if err != nil {
		log.Warn("Failed to parse or verify token", zap.Error(err))
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		log.Warn("Token carries an invalid user id", zap.String("user_id", claims.UserID))
		return nil, fmt.Errorf("%w: bad user id", ErrTokenInvalid)
	}

	gender := models.UserGender(claims.Gender)
	switch gender {
	case models.GenderFemale, models.GenderMale:
	default:
		gender = models.GenderUnknown
	}

	return &models.User{
		ID:          userID,
		DisplayName: claims.DisplayName,
		Gender:      gender,
		IsPremium:   claims.IsPremium,
	}, nil
}

func tokenSnippet(tokenString string) string {
	limit := 15
	if len(tokenString) > limit {
		return tokenString[:limit] + "..."
	}
	return tokenString
}
