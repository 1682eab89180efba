package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims represents the JWT claims
type Claims struct {
	UserID uint                 `json:"user_id"`
	Kind   models.PrincipalKind `json:"kind"`
	Role   models.AdminRole     `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Principal converts the claims into the caller identity used by the services
func (c *Claims) Principal() models.Principal {
	return models.Principal{ID: c.UserID, Kind: c.Kind, Role: c.Role}
}

// TokenService signs and verifies HS256 tokens with a shared secret
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a token service
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken creates a new JWT token for a principal
func (s *TokenService) GenerateToken(p models.Principal) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: p.ID,
		Kind:   p.Kind,
		Role:   p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "projecthub",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates a JWT token and returns the claims
func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	switch claims.Kind {
	case models.PrincipalStudent:
		if claims.Role != "" {
			return nil, ErrInvalidToken
		}
	case models.PrincipalAdmin:
		if !claims.Role.Valid() {
			return nil, ErrInvalidToken
		}
	default:
		return nil, ErrInvalidToken
	}

	return claims, nil
}
